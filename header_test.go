// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package edf_test

import (
	"bytes"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/OpenPSG/edf/v2"
	"github.com/OpenPSG/edf/v2/internal/edftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestDecodeHeader(t *testing.T) {
	b := edftest.Encode(edftest.File{
		PatientID:   "X F 02-MAY-1951 Haagse_Harry",
		RecordingID: "Startdate 02-MAR-2002 EMG561 BK/JOP Sony.",
		StartDate:   "02.03.02",
		StartTime:   "14.27.05",
		Reserved:    "EDF+C",
		DataRecords: "100",
		Duration:    "30",
		Signals: []edftest.Signal{
			edftest.NewSignal("EEG Fpz-Cz", -500, 500, -2048, 2047, 256),
			edftest.NewSignal("EEG Pz-Oz", -500, 500, -2048, 2047, 256),
		},
	})

	r := bytes.NewReader(b)
	hdr, err := edf.DecodeHeader(r)
	require.NoError(t, err)

	assert.Equal(t, edf.Version0, hdr.Version)
	assert.Equal(t, fmt.Sprintf("%-80s", "X F 02-MAY-1951 Haagse_Harry"), hdr.PatientID)
	assert.Equal(t, fmt.Sprintf("%-80s", "Startdate 02-MAR-2002 EMG561 BK/JOP Sony."), hdr.RecordingID)
	assert.Equal(t, time.Date(2002, time.March, 2, 14, 27, 5, 0, time.UTC), hdr.StartTime)
	assert.Equal(t, 768, hdr.HeaderBytes)
	assert.Equal(t, fmt.Sprintf("%-44s", "EDF+C"), hdr.Reserved)
	assert.Equal(t, edf.KnownRecords(100), hdr.DataRecords)
	assert.Equal(t, 30*time.Second, hdr.DataRecordDuration)
	assert.Equal(t, 2, hdr.SignalCount)

	// Exactly the fixed header is consumed.
	assert.Equal(t, len(b)-edf.HeaderSize, r.Len())
}

func TestDecodeHeaderVersion(t *testing.T) {
	tests := []struct {
		version string
		valid   bool
	}{
		{"0", true},
		{"0       ", true},
		{"1", false},
		{" 0", false},
		{"00", false},
		{"0      x", false},
		{"\x000", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.version), func(t *testing.T) {
			b := edftest.Encode(edftest.File{Version: tt.version, DataRecords: "1"})
			_, err := edf.DecodeHeader(bytes.NewReader(b))
			if tt.valid {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, edf.ErrVersion)
		})
	}
}

func TestDecodeHeaderStartDate(t *testing.T) {
	tests := []struct {
		date string
		want time.Time
	}{
		{"31.01.01", time.Date(2001, time.January, 31, 0, 0, 0, 0, time.UTC)},
		{"01.01.00", time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"01.01.85", time.Date(1985, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"31.12.84", time.Date(2084, time.December, 31, 0, 0, 0, 0, time.UTC)},
		{"15.06.99", time.Date(1999, time.June, 15, 0, 0, 0, 0, time.UTC)},
		{"29.02.72", time.Date(2072, time.February, 29, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			b := edftest.Encode(edftest.File{StartDate: tt.date, DataRecords: "1"})
			hdr, err := edf.DecodeHeader(bytes.NewReader(b))
			require.NoError(t, err)
			assert.Equal(t, tt.want, hdr.StartTime)
		})
	}
}

func TestDecodeHeaderMalformedDateTime(t *testing.T) {
	tests := []struct {
		name string
		file edftest.File
	}{
		{"month out of range", edftest.File{StartDate: "01.13.20"}},
		{"day out of range", edftest.File{StartDate: "30.02.20"}},
		{"slashes", edftest.File{StartDate: "01/01/20"}},
		{"single digit day", edftest.File{StartDate: "1.01.20"}},
		{"hour out of range", edftest.File{StartTime: "24.00.00"}},
		{"colons", edftest.File{StartTime: "12:00:00"}},
		{"short time", edftest.File{StartTime: "1.2.3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.file.DataRecords = "1"
			_, err := edf.DecodeHeader(bytes.NewReader(edftest.Encode(tt.file)))
			require.ErrorIs(t, err, edf.ErrField)

			var fieldErr *edf.FieldError
			require.ErrorAs(t, err, &fieldErr)
		})
	}
}

func TestDecodeHeaderRecordCount(t *testing.T) {
	tests := []struct {
		records string
		want    edf.RecordCount
		wantErr bool
	}{
		{"-1", edf.RecordCount{}, false},
		{"-1      ", edf.RecordCount{}, false},
		{"100", edf.KnownRecords(100), false},
		{"1", edf.KnownRecords(1), false},
		{"0", edf.RecordCount{}, true},
		{"-5", edf.RecordCount{}, true},
		{"ten", edf.RecordCount{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.records, func(t *testing.T) {
			b := edftest.Encode(edftest.File{DataRecords: tt.records})
			hdr, err := edf.DecodeHeader(bytes.NewReader(b))
			if tt.wantErr {
				require.ErrorIs(t, err, edf.ErrField)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, hdr.DataRecords)
		})
	}
}

func TestRecordCount(t *testing.T) {
	var unknown edf.RecordCount
	assert.False(t, unknown.Known())
	assert.Equal(t, "-1", unknown.String())

	n, ok := edf.KnownRecords(42).Value()
	assert.True(t, ok)
	assert.Equal(t, 42, n)
	assert.Equal(t, "42", edf.KnownRecords(42).String())
}

func TestDecodeHeaderDuration(t *testing.T) {
	tests := []struct {
		duration string
		want     time.Duration
		wantErr  error
	}{
		{"1", time.Second, nil},
		{"30", 30 * time.Second, nil},
		{"0", 0, nil},
		{"1.0", time.Second, nil},
		{"10.000", 10 * time.Second, nil},
		{"0.5", 0, edf.ErrUnsupported},
		{"1.25", 0, edf.ErrUnsupported},
		{"1.", 0, edf.ErrField},
		{"1.x", 0, edf.ErrField},
		{".0", 0, edf.ErrField},
		{"-1", 0, edf.ErrField},
		{"one", 0, edf.ErrField},
	}

	for _, tt := range tests {
		t.Run(tt.duration, func(t *testing.T) {
			b := edftest.Encode(edftest.File{Duration: tt.duration, DataRecords: "1"})
			hdr, err := edf.DecodeHeader(bytes.NewReader(b))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, hdr.DataRecordDuration)
		})
	}
}

func TestDecodeHeaderNumericFields(t *testing.T) {
	_, err := edf.DecodeHeader(bytes.NewReader(edftest.Encode(edftest.File{HeaderBytes: "big", DataRecords: "1"})))
	require.ErrorIs(t, err, edf.ErrField)

	_, err = edf.DecodeHeader(bytes.NewReader(edftest.Encode(edftest.File{SignalCount: "-2", DataRecords: "1"})))
	require.ErrorIs(t, err, edf.ErrField)

	hdr, err := edf.DecodeHeader(bytes.NewReader(edftest.Encode(edftest.File{SignalCount: "  3 ", DataRecords: "1"})))
	require.NoError(t, err)
	assert.Equal(t, 3, hdr.SignalCount)
}

func TestDecodeHeaderEncoding(t *testing.T) {
	b := edftest.Encode(edftest.File{PatientID: "Patient \xb5", DataRecords: "1"})

	_, err := edf.DecodeHeader(bytes.NewReader(b))
	require.ErrorIs(t, err, edf.ErrEncoding)

	hdr, err := edf.DecodeHeader(bytes.NewReader(b), edf.WithTextEncoding(charmap.ISO8859_1))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%-80s", "Patient µ"), hdr.PatientID)
}

func TestDecodeHeaderShortRead(t *testing.T) {
	_, err := edf.DecodeHeader(bytes.NewReader(nil))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	b := edftest.Encode(edftest.File{DataRecords: "1"})
	_, err = edf.DecodeHeader(bytes.NewReader(b[:200]))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
