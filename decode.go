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
	"bufio"
	"fmt"
	"io"
)

// Decode reads a complete EDF file from r: the header, the signal headers
// and every data record. Nothing is returned if any part fails to decode.
func Decode(r io.Reader, opts ...Option) (*Record, error) {
	o := newOptions(opts)
	s := newSource(bufio.NewReader(r), o)

	hdr, err := decodeHeader(s)
	if err != nil {
		o.logger.Debug("failed to decode edf header", "offset", s.pos, "error", err)
		return nil, fmt.Errorf("error decoding header: %w", err)
	}

	signals, err := decodeSignals(s, hdr.SignalCount)
	if err != nil {
		o.logger.Debug("failed to decode edf signal headers", "offset", s.pos, "error", err)
		return nil, fmt.Errorf("error decoding signal headers: %w", err)
	}

	samples, err := decodeData(s, hdr, signals)
	if err != nil {
		o.logger.Debug("failed to decode edf data records", "offset", s.pos, "error", err)
		return nil, fmt.Errorf("error decoding data records: %w", err)
	}

	return &Record{
		Header:  *hdr,
		Signals: signals,
		Samples: samples,
	}, nil
}
