// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique key is already taken.
var ErrDuplicate = errors.New("duplicate")

// ErrInvalidCredentials is returned by login when the username is unknown or
// the password does not match. The two cases are indistinguishable.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrSessionNotFound is returned by the refresh flows when the presented
// refresh token does not identify a live session.
var ErrSessionNotFound = errors.New("session not found or expired")

// Field names reported in validation errors.
const (
	FieldUsername = "username"
	FieldPassword = "password"
)

// ValidationError reports a single malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// MultiValidationErrors aggregates field failures when more than one input
// field is invalid. A single failure is always reported as a bare
// *ValidationError.
type MultiValidationErrors struct {
	Errors []*ValidationError
}

func (e *MultiValidationErrors) Error() string {
	parts := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		parts[i] = ve.Error()
	}
	return strings.Join(parts, "; ")
}

// Unwrap exposes the individual field errors to errors.As.
func (e *MultiValidationErrors) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, ve := range e.Errors {
		errs[i] = ve
	}
	return errs
}

// joinValidation returns nil, the single failure, or the aggregate form.
func joinValidation(errs []*ValidationError) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return &MultiValidationErrors{Errors: errs}
	}
}

// InternalError is the opaque error callers see for storage and other
// unexpected faults. The underlying cause is logged, never exposed.
type InternalError struct {
	Op string
}

func (e *InternalError) Error() string {
	if e.Op == "" {
		return "internal service error"
	}
	return "internal service error during " + e.Op
}

// NotFoundError is returned by storage ports when no entity matches a lookup.
type NotFoundError struct {
	Object string
	Field  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found by %s", e.Object, e.Field)
}

// Is reports ErrNotFound equivalence.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// DuplicationError is returned by storage ports when an add would violate a
// uniqueness constraint. Value is kept for diagnostics and never rendered,
// since it may be a secret such as a refresh token.
type DuplicationError struct {
	Object string
	Field  string
	Value  any
}

func (e *DuplicationError) Error() string {
	return fmt.Sprintf("%s with this %s already exists", e.Object, e.Field)
}

// Is reports ErrDuplicate equivalence.
func (e *DuplicationError) Is(target error) bool {
	return target == ErrDuplicate
}
