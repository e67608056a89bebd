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
	"strconv"
	"strings"
	"time"
)

// HeaderSize is the size in bytes of the fixed part of the header.
const HeaderSize = 256

// Years below the pivot belong to the 21st century.
const datePivotYear = 1985

// DecodeHeader reads the fixed 256 byte header from r.
func DecodeHeader(r io.Reader, opts ...Option) (*Header, error) {
	return decodeHeader(newSource(r, newOptions(opts)))
}

func decodeHeader(s *source) (*Header, error) {
	hdr := &Header{}

	b, err := s.readExact(8)
	if err != nil {
		return nil, fmt.Errorf("error reading version: %w", err)
	}
	if err := checkVersion(b); err != nil {
		return nil, err
	}
	hdr.Version = Version0

	hdr.PatientID, _, err = s.readText("patient identification", 80)
	if err != nil {
		return nil, fmt.Errorf("error reading patient identification: %w", err)
	}

	hdr.RecordingID, _, err = s.readText("recording identification", 80)
	if err != nil {
		return nil, fmt.Errorf("error reading recording identification: %w", err)
	}

	dateStr, b, err := s.readText("start date", 8)
	if err != nil {
		return nil, fmt.Errorf("error reading start date: %w", err)
	}
	startDate, err := parseStartDate(dateStr)
	if err != nil {
		return nil, fieldError("start date", b, ErrField, err)
	}

	timeStr, b, err := s.readText("start time", 8)
	if err != nil {
		return nil, fmt.Errorf("error reading start time: %w", err)
	}
	startTime, err := time.Parse("15.04.05", timeStr)
	if err != nil {
		return nil, fieldError("start time", b, ErrField, err)
	}
	hdr.StartTime = time.Date(startDate.Year(), startDate.Month(), startDate.Day(),
		startTime.Hour(), startTime.Minute(), startTime.Second(), 0, time.UTC)

	str, b, err := s.readText("header bytes", 8)
	if err != nil {
		return nil, fmt.Errorf("error reading header bytes: %w", err)
	}
	if hdr.HeaderBytes, err = parseCount("header bytes", str, b); err != nil {
		return nil, err
	}

	hdr.Reserved, _, err = s.readText("reserved", 44)
	if err != nil {
		return nil, fmt.Errorf("error reading reserved: %w", err)
	}

	str, b, err = s.readText("number of data records", 8)
	if err != nil {
		return nil, fmt.Errorf("error reading number of data records: %w", err)
	}
	if hdr.DataRecords, err = parseRecordCount(str, b); err != nil {
		return nil, err
	}

	str, b, err = s.readText("data record duration", 8)
	if err != nil {
		return nil, fmt.Errorf("error reading data record duration: %w", err)
	}
	seconds, err := parseDuration(str, b)
	if err != nil {
		return nil, err
	}
	hdr.DataRecordDuration = time.Duration(seconds) * time.Second

	str, b, err = s.readText("number of signals", 4)
	if err != nil {
		return nil, fmt.Errorf("error reading number of signals: %w", err)
	}
	if hdr.SignalCount, err = parseCount("number of signals", str, b); err != nil {
		return nil, err
	}

	s.opts.logger.Debug("decoded edf header",
		"start", hdr.StartTime,
		"records", hdr.DataRecords.String(),
		"duration", hdr.DataRecordDuration,
		"signals", hdr.SignalCount)

	return hdr, nil
}

// checkVersion accepts only "0" followed by seven spaces.
func checkVersion(b []byte) error {
	if b[0] != '0' {
		return fieldError("version", b, ErrVersion, nil)
	}
	for _, c := range b[1:] {
		if c != ' ' {
			return fieldError("version", b, ErrVersion, nil)
		}
	}
	return nil
}

// parseStartDate parses a dd.mm.yy date. Two digit years below 85 are in
// the 2000s, the rest in the 1900s.
func parseStartDate(s string) (time.Time, error) {
	d, err := time.Parse("02.01.06", s)
	if err != nil {
		return time.Time{}, err
	}

	year := 1900 + d.Year()%100
	if year < datePivotYear {
		year += 100
	}
	return time.Date(year, d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
}

func parseCount(field, s string, raw []byte) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fieldError(field, raw, ErrField, err)
	}
	if n < 0 {
		return 0, fieldError(field, raw, ErrField, fmt.Errorf("negative value %d", n))
	}
	return n, nil
}

func parseRecordCount(s string, raw []byte) (RecordCount, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return RecordCount{}, fieldError("number of data records", raw, ErrField, err)
	}
	switch {
	case n == -1:
		return RecordCount{}, nil
	case n > 0:
		return KnownRecords(n), nil
	default:
		return RecordCount{}, fieldError("number of data records", raw, ErrField,
			fmt.Errorf("must be -1 or positive, got %d", n))
	}
}

// parseDuration returns the data record duration in whole seconds. A
// fractional part is accepted only if all of its digits are zero.
func parseDuration(s string, raw []byte) (int, error) {
	s = strings.TrimSpace(s)

	integral, fraction, hasFraction := strings.Cut(s, ".")
	if hasFraction {
		if fraction == "" {
			return 0, fieldError("data record duration", raw, ErrField, errors.New("empty fraction"))
		}
		nonzero := false
		for _, c := range fraction {
			if c < '0' || c > '9' {
				return 0, fieldError("data record duration", raw, ErrField, fmt.Errorf("invalid fraction %q", fraction))
			}
			if c != '0' {
				nonzero = true
			}
		}
		if nonzero {
			return 0, fieldError("data record duration", raw, ErrUnsupported, fmt.Errorf("fractional duration %s", s))
		}
	}

	return parseCount("data record duration", integral, raw)
}
