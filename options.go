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
	"io"
	"log/slog"

	"golang.org/x/text/encoding"
)

// Option configures a decoder.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	encoding encoding.Encoding
}

// WithLogger sets the logger used for debug output. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTextEncoding decodes text fields with enc instead of requiring valid
// UTF-8. Devices that write "µV" in Latin-1 need charmap.ISO8859_1.
func WithTextEncoding(enc encoding.Encoding) Option {
	return func(o *options) {
		o.encoding = enc
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
