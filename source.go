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
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// source reads fixed size fields sequentially and tracks the file offset.
type source struct {
	r    io.Reader
	pos  int64
	opts *options
}

func newSource(r io.Reader, opts *options) *source {
	return &source{r: r, opts: opts}
}

// readExact reads exactly n bytes. Running out of input is always
// io.ErrUnexpectedEOF, even when no bytes were read.
func (s *source) readExact(n int) ([]byte, error) {
	b := make([]byte, n)
	m, err := io.ReadFull(s.r, b)
	s.pos += int64(m)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("error reading %d bytes at offset %d: %w", n, s.pos-int64(m), err)
	}
	return b, nil
}

// text converts the raw bytes of a field to a string.
func (s *source) text(field string, b []byte) (string, error) {
	var t transform.Transformer = encoding.UTF8Validator
	if s.opts.encoding != nil {
		t = s.opts.encoding.NewDecoder()
	}

	out, _, err := transform.Bytes(t, b)
	if err != nil {
		return "", fieldError(field, b, ErrEncoding, err)
	}
	return string(out), nil
}

// readText reads a width byte field and decodes it as text.
func (s *source) readText(field string, width int) (string, []byte, error) {
	b, err := s.readExact(width)
	if err != nil {
		return "", nil, err
	}
	str, err := s.text(field, b)
	if err != nil {
		return "", nil, err
	}
	return str, b, nil
}
