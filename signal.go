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
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// SignalHeaderSize is the number of header bytes used by each signal.
const SignalHeaderSize = 256

type signalField struct {
	name  string
	width int
	set   func(sig *Signal, s string) error
}

// Signal headers are stored field by field: all labels, then all transducer
// types, and so on.
var signalFields = []signalField{
	{"label", 16, func(sig *Signal, s string) error {
		sig.Label = trimText(s)
		return nil
	}},
	{"transducer type", 80, func(sig *Signal, s string) error {
		sig.TransducerType = trimText(s)
		return nil
	}},
	{"physical dimension", 8, func(sig *Signal, s string) error {
		sig.PhysicalDimension = trimText(s)
		return nil
	}},
	{"physical minimum", 8, func(sig *Signal, s string) (err error) {
		sig.PhysicalMin, err = parsePhysical(s)
		return err
	}},
	{"physical maximum", 8, func(sig *Signal, s string) (err error) {
		sig.PhysicalMax, err = parsePhysical(s)
		return err
	}},
	{"digital minimum", 8, func(sig *Signal, s string) (err error) {
		sig.DigitalMin, err = strconv.Atoi(strings.TrimSpace(s))
		return err
	}},
	{"digital maximum", 8, func(sig *Signal, s string) (err error) {
		sig.DigitalMax, err = strconv.Atoi(strings.TrimSpace(s))
		return err
	}},
	{"prefiltering", 80, func(sig *Signal, s string) error {
		sig.Prefiltering = trimText(s)
		return nil
	}},
	{"samples per record", 8, func(sig *Signal, s string) error {
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 31)
		if err != nil {
			return err
		}
		sig.SamplesPerRecord = int(n)
		return nil
	}},
	{"reserved", 32, func(sig *Signal, s string) error {
		sig.Reserved = trimText(s)
		return nil
	}},
}

// DecodeSignals reads the signal headers of n signals from r. It expects r
// to be positioned directly after the fixed header.
func DecodeSignals(r io.Reader, n int, opts ...Option) ([]Signal, error) {
	return decodeSignals(newSource(r, newOptions(opts)), n)
}

func decodeSignals(s *source, n int) ([]Signal, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative signal count %d: %w", n, ErrUnsupported)
	}

	signals := make([]Signal, n)
	for _, f := range signalFields {
		for i := range signals {
			str, raw, err := s.readText(f.name, f.width)
			if err != nil {
				return nil, fmt.Errorf("error reading signal headers: %w", err)
			}

			if err := f.set(&signals[i], str); err != nil {
				return nil, fieldError(fmt.Sprintf("%s of signal %d", f.name, i), raw, ErrParse, err)
			}
		}
	}

	s.opts.logger.Debug("decoded edf signal headers", "signals", n, "labels", labels(signals))

	return signals, nil
}

// parsePhysical parses a physical range limit, which must be finite.
func parsePhysical(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value %v", f)
	}
	return f, nil
}

func trimText(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

func labels(signals []Signal) []string {
	l := make([]string, len(signals))
	for i, sig := range signals {
		l[i] = sig.Label
	}
	return l
}
