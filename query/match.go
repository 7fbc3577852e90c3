/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package query

import (
	"fmt"
	"sort"
	"strings"
)

// Match evaluates q against a flat or nested document locally. Top-level keys
// missing from doc are namespaces the source has already scoped (for example
// tourney_filter on a single-tournament export) and count as satisfied.
// Supported operators are $eq, $gte, $lte, $gt and $lt; any other operator is
// an error. Values that cannot be compared do not match.
func Match(q FilterQuery, doc map[string]any) (bool, error) {
	return matchDoc(q, doc, true)
}

func matchDoc(q FilterQuery, doc map[string]any, root bool) (bool, error) {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		docVal, present := doc[key]
		if !present && root {
			continue
		}
		ok, err := matchField(q[key], docVal, present)
		if err != nil {
			return false, fmt.Errorf("%v: %w", key, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matchField(cond any, docVal any, present bool) (bool, error) {
	sub, isQuery := asQuery(cond)
	if !isQuery {
		return present && scalarEqual(cond, docVal), nil
	}

	var ops, fields []string
	for k := range sub {
		if IsOperator(k) {
			ops = append(ops, k)
		} else {
			fields = append(fields, k)
		}
	}
	if len(ops) > 0 && len(fields) > 0 {
		return false, fmt.Errorf("cannot mix operators %v with fields %v",
			ops, fields)
	}

	if len(fields) > 0 {
		nested, ok := docVal.(map[string]any)
		if !ok {
			return false, nil
		}
		return matchDoc(sub, nested, false)
	}

	sort.Strings(ops)
	for _, op := range ops {
		ok, err := matchOp(op, sub[op], docVal, present)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchOp(op string, operand any, docVal any, present bool) (bool, error) {
	if op == OpEq {
		return present && scalarEqual(operand, docVal), nil
	}

	var want func(int) bool
	switch op {
	case OpGte:
		want = func(c int) bool { return c >= 0 }
	case OpLte:
		want = func(c int) bool { return c <= 0 }
	case "$gt":
		want = func(c int) bool { return c > 0 }
	case "$lt":
		want = func(c int) bool { return c < 0 }
	default:
		return false, fmt.Errorf("%w %v", ErrUnknownOperator, op)
	}
	if !present {
		return false, nil
	}

	c, ok := compareScalars(docVal, operand)
	return ok && want(c), nil
}

// compareScalars orders numbers numerically and strings lexically; any
// other pairing is not comparable.
func compareScalars(a, b any) (int, bool) {
	af, aNum := Number(a)
	bf, bNum := Number(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}

	as, aStr := a.(string)
	bs, bStr := b.(string)
	if aStr && bStr {
		return strings.Compare(as, bs), true
	}
	return 0, false
}
