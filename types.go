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
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"
)

type Version string

const (
	// Version0 represents the version of the EDF/EDF+ standard.
	Version0 Version = "0"
)

// RecordCount is the number of data records declared in the header.
// The zero value means the count is unknown.
type RecordCount struct {
	n     int
	known bool
}

// KnownRecords returns a RecordCount holding n records.
func KnownRecords(n int) RecordCount {
	return RecordCount{n: n, known: true}
}

// Known reports whether the header declared a concrete record count.
func (c RecordCount) Known() bool {
	return c.known
}

// Value returns the record count and whether it is known.
func (c RecordCount) Value() (int, bool) {
	return c.n, c.known
}

// String returns the count as it is written in the header, "-1" if unknown.
func (c RecordCount) String() string {
	if !c.known {
		return "-1"
	}
	return strconv.Itoa(c.n)
}

// Header represents the EDF/EDF+ file header.
type Header struct {
	Version            Version       // Version of the EDF/EDF+ standard (always "0")
	PatientID          string        // Identification of the patient, untrimmed
	RecordingID        string        // Identification of the recording session, untrimmed
	StartTime          time.Time     // Start date and time of the recording
	HeaderBytes        int           // Number of bytes in the header
	Reserved           string        // Reserved block, passed through as-is
	DataRecords        RecordCount   // Number of data records, unknown if not declared
	DataRecordDuration time.Duration // Duration of a single data record, whole seconds
	SignalCount        int           // Number of signals in each data record
}

// Signal represents the characteristics of each signal in the EDF/EDF+ file.
type Signal struct {
	Label             string  // Label of the signal (e.g., EEG Fpz-Cz)
	TransducerType    string  // Type of transducer used
	PhysicalDimension string  // Physical dimension (e.g., uV, mV)
	PhysicalMin       float64 // Minimum physical value
	PhysicalMax       float64 // Maximum physical value
	DigitalMin        int     // Minimum digital value
	DigitalMax        int     // Maximum digital value
	Prefiltering      string  // Pre-filtering information
	SamplesPerRecord  int     // Number of samples in each data record for this signal
	Reserved          string  // Reserved for future use
}

// Record is a fully decoded EDF file.
type Record struct {
	Header  Header
	Signals []Signal
	// Samples holds one row per signal of physical values. Each data record
	// occupies a stride of the largest SamplesPerRecord columns.
	Samples *mat.Dense
}

// Signal returns a copy of the physical values of signal i.
func (rec *Record) Signal(i int) []float64 {
	return mat.Row(nil, i, rec.Samples)
}

// Duration returns the length of the recording, zero if the number of
// data records is unknown.
func (rec *Record) Duration() time.Duration {
	n, ok := rec.Header.DataRecords.Value()
	if !ok {
		return 0
	}
	return time.Duration(n) * rec.Header.DataRecordDuration
}
