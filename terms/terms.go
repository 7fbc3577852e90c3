/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package terms describes the filterable entry fields offered to users: each
// Term pairs a machine tag with the comparison operators (Conditions) valid
// for it and how raw input should be coerced.
package terms

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mikeb26/topdeck-standings/internal"
	"github.com/mikeb26/topdeck-standings/query"
)

type InputType string

const (
	InputNumber InputType = "number"
	InputSelect InputType = "select"
	// InputDate values are coerced to Unix seconds.
	InputDate InputType = "date"
)

var (
	ErrUnknownTerm     = errors.New("unknown filter term")
	ErrUnknownOperator = errors.New("operator not offered for term")
	ErrInvalidValue    = errors.New("invalid filter value")
	ErrInvalidOption   = errors.New("value is not a selectable option")
)

// Option is one choice of a select Condition. A nil Value is a placeholder.
type Option struct {
	Value    any
	Label    string
	Disabled bool
	Selected bool
}

// Condition is an operator offered for a Term.
type Condition struct {
	Operator  string
	Label     string
	InputType InputType
	Options   []Option
}

// Term is a filterable field. Tag may be a Delimiter-joined path such as
// tourney_filter__dateCreated for fields nested in a namespace.
type Term struct {
	Name       string
	Tag        string
	Conditions []Condition
}

// Path returns the filter path of the term, without an operator.
func (t Term) Path() query.KeyPath {
	p, err := query.ParseKeyPath(t.Tag)
	if err != nil {
		return nil
	}
	return p
}

// Condition returns the condition offered for op.
func (t Term) Condition(op string) (Condition, bool) {
	for _, c := range t.Conditions {
		if c.Operator == op {
			return c, true
		}
	}
	return Condition{}, false
}

// Coerce converts raw user or link input into the value stored in a filter.
// Numbers become float64 and dates become Unix seconds as float64.
func (c Condition) Coerce(raw any) (any, error) {
	switch c.InputType {
	case InputNumber:
		return toNumber(raw)
	case InputDate:
		return toUnixSeconds(raw)
	case InputSelect:
		return c.coerceOption(raw)
	}
	return nil, fmt.Errorf("%w: unsupported input type %q", ErrInvalidValue,
		c.InputType)
}

func (c Condition) coerceOption(raw any) (any, error) {
	for _, opt := range c.Options {
		if opt.Disabled || opt.Value == nil {
			continue
		}
		if _, isNum := query.Number(opt.Value); isNum {
			n, err := toNumber(raw)
			if err != nil {
				continue
			}
			if optNum, _ := query.Number(opt.Value); optNum == n {
				return n, nil
			}
			continue
		}
		if s, ok := raw.(string); ok && s == query.FormatScalar(opt.Value) {
			return opt.Value, nil
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidOption, raw)
}

func toNumber(raw any) (any, error) {
	if n, ok := query.Number(raw); ok {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidValue, raw)
		}
		return n, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %v is not a number", ErrInvalidValue, raw)
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, s)
	}
	return n, nil
}

func toUnixSeconds(raw any) (any, error) {
	switch v := raw.(type) {
	case time.Time:
		if v.IsZero() {
			return nil, fmt.Errorf("%w: zero time", ErrInvalidValue)
		}
		return float64(v.Unix()), nil
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			// links carry dates already converted to seconds
			return toNumber(n)
		}
		t, err := internal.ParseDateOrZero(v)
		if err != nil || t.IsZero() {
			return nil, fmt.Errorf("%w: %q is not a date", ErrInvalidValue, v)
		}
		return float64(t.Unix()), nil
	}
	return toNumber(raw)
}
