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
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Reader reads EDF/EDF+ files one signal at a time.
type Reader struct {
	r          io.ReadSeeker
	hdr        *Header
	signals    []Signal
	dataOffset int64 // Offset of the first data record
}

// Open reads the header and signal headers of an EDF/EDF+ file. Sample data
// is read lazily through SignalReader.
func Open(r io.ReadSeeker, opts ...Option) (*Reader, error) {
	o := newOptions(opts)
	s := newSource(bufio.NewReader(r), o)

	hdr, err := decodeHeader(s)
	if err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	signals, err := decodeSignals(s, hdr.SignalCount)
	if err != nil {
		return nil, fmt.Errorf("error reading signal headers: %w", err)
	}

	return &Reader{
		r:          r,
		hdr:        hdr,
		signals:    signals,
		dataOffset: s.pos,
	}, nil
}

// Header returns the file header.
func (er *Reader) Header() Header {
	return *er.hdr
}

// Signals returns the signal headers in declared order.
func (er *Reader) Signals() []Signal {
	return append([]Signal(nil), er.signals...)
}

// SignalReader reads continuous signal data from an EDF/EDF+ file.
type SignalReader struct {
	r                io.ReadSeeker
	records          RecordCount
	dataOffset       int64
	recordSize       int     // Total size of one data record
	signalOffset     int     // Byte offset of the signal in a record
	samplesPerRecord int     // Number of samples per record for the signal
	scale, offset    float64 // Calibration of the signal
	currentRecord    int     // Current record being processed
	currentSample    int     // Current sample in the record
	buf              []byte  // Samples of the signal in the current record
}

// Signal creates a new SignalReader for a specified signal index.
func (er *Reader) Signal(signalIndex int) (*SignalReader, error) {
	if signalIndex < 0 || signalIndex >= len(er.signals) {
		return nil, fmt.Errorf("signal index %d out of range", signalIndex)
	}

	signal := er.signals[signalIndex]
	if err := checkCalibration(er.signals[signalIndex : signalIndex+1]); err != nil {
		return nil, err
	}

	layout, err := layoutOf(er.signals)
	if err != nil {
		return nil, err
	}

	signalOffset := 0
	for _, sig := range er.signals[:signalIndex] {
		signalOffset += sig.SamplesPerRecord * sampleSize
	}

	scale, offset := calibration(signal)

	return &SignalReader{
		r:                er.r,
		records:          er.hdr.DataRecords,
		dataOffset:       er.dataOffset,
		recordSize:       layout.bytes(),
		signalOffset:     signalOffset,
		samplesPerRecord: signal.SamplesPerRecord,
		scale:            scale,
		offset:           offset,
		buf:              make([]byte, signal.SamplesPerRecord*sampleSize),
	}, nil
}

// Read fills the provided float64 slice with the physical values from the
// signal. It returns io.EOF once every data record has been read. If the
// header does not declare the number of data records, reading stops at the
// end of the data.
func (sr *SignalReader) Read(data []float64) (int, error) {
	n := 0
	for n < len(data) {
		if sr.currentSample == 0 {
			if err := sr.loadRecord(); err != nil {
				return n, err
			}
		}

		digitalValue := int16(binary.LittleEndian.Uint16(sr.buf[sr.currentSample*sampleSize:]))
		data[n] = float64(digitalValue)*sr.scale + sr.offset

		n++

		// Move to the next sample
		sr.currentSample++
		if sr.currentSample >= sr.samplesPerRecord {
			sr.currentSample = 0
			sr.currentRecord++
		}
	}

	return n, nil
}

// loadRecord reads the samples of the signal in the current data record.
func (sr *SignalReader) loadRecord() error {
	if n, ok := sr.records.Value(); ok && sr.currentRecord >= n {
		return io.EOF // End of data records
	}
	if sr.samplesPerRecord == 0 {
		return io.EOF
	}

	pos := sr.dataOffset + int64(sr.currentRecord)*int64(sr.recordSize) + int64(sr.signalOffset)
	if _, err := sr.r.Seek(pos, io.SeekStart); err != nil {
		return fmt.Errorf("error seeking to position: %w", err)
	}

	_, err := io.ReadFull(sr.r, sr.buf)
	if err == io.EOF && !sr.records.Known() {
		return io.EOF
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("error reading sample data: %w", err)
	}

	return nil
}
