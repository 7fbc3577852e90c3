/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package query

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyPath       = errors.New("filter path is empty")
	ErrEmptySegment    = errors.New("filter path has an empty segment")
	ErrConflictingPath = errors.New("conflicting filter path")
	ErrNonScalar       = errors.New("filter value is not a scalar")
	ErrUnknownOperator = errors.New("unknown filter operator")
)

// ConflictError is returned when a path would replace a scalar leaf with a
// nested mapping, or a nested mapping with a scalar leaf.
type ConflictError struct {
	// Path is the full path being inserted.
	Path KeyPath
	// At is the prefix of Path where the conflicting value lives.
	At KeyPath
	// Existing is the value found at At.
	Existing any
}

func (e *ConflictError) Error() string {
	if _, ok := e.Existing.(FilterQuery); ok {
		return fmt.Sprintf("%v %v: %v already holds a nested filter",
			ErrConflictingPath, e.Path, e.At)
	}
	return fmt.Sprintf("%v %v: %v already holds scalar %v",
		ErrConflictingPath, e.Path, e.At, e.Existing)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflictingPath
}
