// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package edftest encodes synthetic EDF files for tests. Every header field
// is given as the text that ends up in the file, so malformed files can be
// built as easily as valid ones.
package edftest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
)

// File describes an EDF file. Empty header fields take a valid default.
type File struct {
	Version     string // Defaults to "0"
	PatientID   string
	RecordingID string
	StartDate   string // dd.mm.yy, defaults to "01.01.20"
	StartTime   string // hh.mm.ss, defaults to "00.00.00"
	HeaderBytes string // Defaults to 256 * (signals + 1)
	Reserved    string
	DataRecords string // Defaults to len(Records)
	Duration    string // Defaults to "1"
	SignalCount string // Defaults to len(Signals)
	Signals     []Signal
	// Records holds the digital samples of each data record, indexed by
	// record then signal.
	Records [][][]int16
}

// Signal describes one signal header.
type Signal struct {
	Label             string
	TransducerType    string
	PhysicalDimension string
	PhysicalMin       string
	PhysicalMax       string
	DigitalMin        string
	DigitalMax        string
	Prefiltering      string
	SamplesPerRecord  string
	Reserved          string
}

// NewSignal returns a signal header with the given calibration.
func NewSignal(label string, pmin, pmax float64, dmin, dmax, samplesPerRecord int) Signal {
	return Signal{
		Label:             label,
		PhysicalDimension: "uV",
		PhysicalMin:       formatPhysicalValue(pmin),
		PhysicalMax:       formatPhysicalValue(pmax),
		DigitalMin:        strconv.Itoa(dmin),
		DigitalMax:        strconv.Itoa(dmax),
		SamplesPerRecord:  strconv.Itoa(samplesPerRecord),
	}
}

// Encode returns the bytes of the file.
func Encode(f File) []byte {
	var buf bytes.Buffer

	field(&buf, orDefault(f.Version, "0"), 8)
	field(&buf, f.PatientID, 80)
	field(&buf, f.RecordingID, 80)
	field(&buf, orDefault(f.StartDate, "01.01.20"), 8)
	field(&buf, orDefault(f.StartTime, "00.00.00"), 8)
	field(&buf, orDefault(f.HeaderBytes, strconv.Itoa(256*(len(f.Signals)+1))), 8)
	field(&buf, f.Reserved, 44)
	field(&buf, orDefault(f.DataRecords, strconv.Itoa(len(f.Records))), 8)
	field(&buf, orDefault(f.Duration, "1"), 8)
	field(&buf, orDefault(f.SignalCount, strconv.Itoa(len(f.Signals))), 4)

	for _, sig := range f.Signals {
		field(&buf, sig.Label, 16)
	}
	for _, sig := range f.Signals {
		field(&buf, sig.TransducerType, 80)
	}
	for _, sig := range f.Signals {
		field(&buf, sig.PhysicalDimension, 8)
	}
	for _, sig := range f.Signals {
		field(&buf, sig.PhysicalMin, 8)
	}
	for _, sig := range f.Signals {
		field(&buf, sig.PhysicalMax, 8)
	}
	for _, sig := range f.Signals {
		field(&buf, sig.DigitalMin, 8)
	}
	for _, sig := range f.Signals {
		field(&buf, sig.DigitalMax, 8)
	}
	for _, sig := range f.Signals {
		field(&buf, sig.Prefiltering, 80)
	}
	for _, sig := range f.Signals {
		field(&buf, sig.SamplesPerRecord, 8)
	}
	for _, sig := range f.Signals {
		field(&buf, sig.Reserved, 32)
	}

	for _, record := range f.Records {
		for _, samples := range record {
			for _, sample := range samples {
				// Writes to a bytes.Buffer never fail.
				_ = binary.Write(&buf, binary.LittleEndian, sample)
			}
		}
	}

	return buf.Bytes()
}

// field writes s left aligned and space padded, cut to width bytes.
func field(buf *bytes.Buffer, s string, width int) {
	s = fmt.Sprintf("%-*s", width, s)
	buf.WriteString(s[:width])
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func formatPhysicalValue(val float64) string {
	// Try with 2 decimal places
	s := fmt.Sprintf("%.2f", val)
	if len(s) > 8 {
		// Fall back to no decimal
		s = fmt.Sprintf("%.0f", val)
	}
	return s
}
