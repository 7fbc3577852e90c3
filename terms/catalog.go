/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package terms

import (
	"fmt"

	"github.com/mikeb26/topdeck-standings/query"
)

// Catalog is an immutable set of terms, in display order.
type Catalog struct {
	terms []Term
	byTag map[string]int
}

// NewCatalog validates terms and builds a Catalog. Tags must be unique and
// parse as filter paths; operators must be unique within a term.
func NewCatalog(terms ...Term) (*Catalog, error) {
	c := &Catalog{byTag: make(map[string]int, len(terms))}
	for _, t := range terms {
		if _, err := query.ParseKeyPath(t.Tag); err != nil {
			return nil, fmt.Errorf("term %q: %w", t.Name, err)
		}
		if _, dup := c.byTag[t.Tag]; dup {
			return nil, fmt.Errorf("term %q: duplicate tag %q", t.Name, t.Tag)
		}
		seen := make(map[string]bool)
		for _, cond := range t.Conditions {
			if !query.IsOperator(cond.Operator) {
				return nil, fmt.Errorf("term %q: %w %q", t.Tag,
					query.ErrUnknownOperator, cond.Operator)
			}
			if seen[cond.Operator] {
				return nil, fmt.Errorf("term %q: duplicate operator %v", t.Tag,
					cond.Operator)
			}
			seen[cond.Operator] = true
		}
		c.byTag[t.Tag] = len(c.terms)
		c.terms = append(c.terms, copyTerm(t))
	}

	return c, nil
}

// Terms returns a copy of every term in display order.
func (c *Catalog) Terms() []Term {
	out := make([]Term, len(c.terms))
	for i, t := range c.terms {
		out[i] = copyTerm(t)
	}
	return out
}

// Lookup returns the term with the given tag.
func (c *Catalog) Lookup(tag string) (Term, bool) {
	idx, ok := c.byTag[tag]
	if !ok {
		return Term{}, false
	}
	return copyTerm(c.terms[idx]), true
}

// Condition returns the condition offered for tag and op.
func (c *Catalog) Condition(tag string, op string) (Condition, error) {
	t, ok := c.Lookup(tag)
	if !ok {
		return Condition{}, fmt.Errorf("%w %q", ErrUnknownTerm, tag)
	}
	cond, ok := t.Condition(op)
	if !ok {
		return Condition{}, fmt.Errorf("%w %q: %v", ErrUnknownOperator, tag, op)
	}
	return cond, nil
}

// CoercePath is a query.CoerceFunc: when path is <term tag>__<operator> for a
// catalog term, raw is coerced by that condition. Paths naming no term keep the
// raw string, so non-catalog keys like tourney_filter__TID survive a link.
func (c *Catalog) CoercePath(path query.KeyPath, raw string) (any, error) {
	if len(path) < 2 {
		return raw, nil
	}
	tag := path[:len(path)-1].String()
	if _, ok := c.Lookup(tag); !ok {
		return raw, nil
	}
	cond, err := c.Condition(tag, path[len(path)-1])
	if err != nil {
		return nil, err
	}
	return cond.Coerce(raw)
}

func copyTerm(t Term) Term {
	out := t
	out.Conditions = make([]Condition, len(t.Conditions))
	for i, cond := range t.Conditions {
		out.Conditions[i] = cond
		if cond.Options != nil {
			out.Conditions[i].Options = append([]Option(nil), cond.Options...)
		}
	}
	return out
}
