/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package filterstate holds the filter a user is editing (pending) and the
// filter last committed for fetching (applied). Both are replaced wholesale on
// every change; readers always receive copies.
package filterstate

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/mikeb26/topdeck-standings/query"
	"github.com/mikeb26/topdeck-standings/terms"
)

// DefaultFilter scopes results to a single tournament.
func DefaultFilter(tid string) query.FilterQuery {
	return query.FilterQuery{
		"tourney_filter": query.FilterQuery{"TID": tid},
	}
}

type Manager struct {
	catalog *terms.Catalog

	mu      sync.RWMutex
	pending query.FilterQuery
	applied query.FilterQuery
}

// New returns a Manager whose pending and applied filters both start as
// defaults. A nil catalog means terms.Default().
func New(catalog *terms.Catalog, defaults query.FilterQuery) *Manager {
	if catalog == nil {
		catalog = terms.Default()
	}
	return &Manager{
		catalog: catalog,
		pending: query.Clone(defaults),
		applied: query.Clone(defaults),
	}
}

func (m *Manager) Catalog() *terms.Catalog {
	return m.catalog
}

// SetTerm sets the pending value of the catalog term tag for operator op.
// value is coerced by the term's condition, so link strings and typed values
// are both accepted. On any error pending is left as it was.
func (m *Manager) SetTerm(tag string, op string, value any) error {
	t, ok := m.catalog.Lookup(tag)
	if !ok {
		return fmt.Errorf("filterstate.setterm: %w %q", terms.ErrUnknownTerm, tag)
	}
	cond, ok := t.Condition(op)
	if !ok {
		return fmt.Errorf("filterstate.setterm: %w %q: %v",
			terms.ErrUnknownOperator, tag, op)
	}
	v, err := cond.Coerce(value)
	if err != nil {
		return fmt.Errorf("filterstate.setterm: %v %v: %w", tag, op, err)
	}

	return m.SetPath(t.Path().Append(op), v)
}

// SetPath sets an arbitrary pending path, for keys outside the catalog such
// as tourney_filter__TID. A conflicting path is rejected with a logged
// warning and pending is retained.
func (m *Manager) SetPath(path query.KeyPath, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := query.BuildFilterPath(m.pending, path, value)
	if err != nil {
		log.Printf("filterstate.set: warning rejected %v=%v: %v", path, value,
			err)
		return fmt.Errorf("filterstate.set: %w", err)
	}
	m.pending = next

	return nil
}

// RemoveTerm clears the pending value of tag for op, if any.
func (m *Manager) RemoveTerm(tag string, op string) error {
	t, ok := m.catalog.Lookup(tag)
	if !ok {
		return fmt.Errorf("filterstate.removeterm: %w %q", terms.ErrUnknownTerm,
			tag)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = query.RemovePath(m.pending, t.Path().Append(op))

	return nil
}

// Commit makes the pending filter the applied one and returns a copy of it.
func (m *Manager) Commit() query.FilterQuery {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.applied = query.Clone(m.pending)
	return query.Clone(m.applied)
}

// Reset replaces both pending and applied with defaults.
func (m *Manager) Reset(defaults query.FilterQuery) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pending = query.Clone(defaults)
	m.applied = query.Clone(defaults)
}

func (m *Manager) Pending() query.FilterQuery {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return query.Clone(m.pending)
}

func (m *Manager) Applied() query.FilterQuery {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return query.Clone(m.applied)
}

// Load restores pending and applied from a shareable link query string.
// Malformed segments are logged and dropped. If no segment survives, defaults
// are used instead. The returned error lists the dropped segments; it is
// informational and the Manager is always usable afterwards.
func (m *Manager) Load(rawQuery string, defaults query.FilterQuery) error {
	q, errs := query.DecodeString(rawQuery, m.catalog.CoercePath)
	for _, err := range errs {
		log.Printf("filterstate.load: %v", err)
	}

	if len(q) == 0 {
		m.Reset(defaults)
	} else {
		m.Reset(q)
	}

	if len(errs) > 0 {
		return fmt.Errorf("filterstate.load: dropped %v malformed segment(s): %w",
			len(errs), errors.Join(errs...))
	}
	return nil
}

// Link returns the applied filter as a shareable query string.
func (m *Manager) Link() string {
	return query.Encode(m.Applied())
}
