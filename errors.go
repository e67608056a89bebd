// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package edf

import (
	"errors"
	"fmt"
)

var (
	// ErrEncoding is returned when a text field does not hold valid text.
	ErrEncoding = errors.New("invalid text encoding")
	// ErrVersion is returned when the version field is not "0       ".
	ErrVersion = errors.New("invalid version")
	// ErrField is returned when a header field is malformed.
	ErrField = errors.New("malformed header field")
	// ErrParse is returned when signal metadata or sample data cannot be parsed.
	ErrParse = errors.New("parse error")
	// ErrUnsupported is returned for well formed values this package cannot decode.
	ErrUnsupported = errors.New("unsupported value")
)

// FieldError describes a field that could not be decoded.
type FieldError struct {
	Field string // Name of the field
	Value string // Raw field contents
	Kind  error  // One of the package sentinel errors
	Err   error  // Underlying cause, may be nil
}

func (e *FieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %q: %v: %v", e.Field, e.Value, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Kind)
}

func (e *FieldError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func fieldError(field string, value []byte, kind, err error) *FieldError {
	return &FieldError{Field: field, Value: string(value), Kind: kind, Err: err}
}
