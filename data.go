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
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// sampleSize is the size of a digital sample in bytes.
const sampleSize = 2

const (
	// MaxRecordBytes is the largest data record this package decodes.
	MaxRecordBytes = 64 << 20
	// MaxSamples is the largest number of cells in a decoded sample matrix.
	MaxSamples = 1 << 28
)

// initialCodes caps the up-front capacity of the raw sample buffer.
const initialCodes = 1 << 16

// recordLayout describes the shape of one data record.
type recordLayout struct {
	samples int // Samples in one data record across all signals
	stride  int // Largest number of samples per record of any signal
}

func layoutOf(signals []Signal) (recordLayout, error) {
	var l recordLayout
	for _, sig := range signals {
		if sig.SamplesPerRecord < 0 {
			return l, fmt.Errorf("negative samples per record for signal %q: %w", sig.Label, ErrParse)
		}
		if l.samples > math.MaxInt/sampleSize-sig.SamplesPerRecord {
			return l, fmt.Errorf("data record too large: %w", ErrUnsupported)
		}
		l.samples += sig.SamplesPerRecord
		l.stride = max(l.stride, sig.SamplesPerRecord)
	}
	if l.bytes() > MaxRecordBytes {
		return l, fmt.Errorf("data record of %s exceeds %s: %w",
			humanize.Bytes(uint64(l.bytes())), humanize.Bytes(MaxRecordBytes), ErrUnsupported)
	}
	if l.stride == 0 {
		return l, fmt.Errorf("data records hold no samples: %w", ErrUnsupported)
	}
	return l, nil
}

// bytes returns the size of one data record in bytes.
func (l recordLayout) bytes() int {
	return l.samples * sampleSize
}

// calibration returns the linear transform from digital codes to physical
// values of a signal.
func calibration(sig Signal) (scale, offset float64) {
	scale = (sig.PhysicalMin - sig.PhysicalMax) / float64(sig.DigitalMin-sig.DigitalMax)
	offset = sig.PhysicalMin - scale*float64(sig.DigitalMin)
	return scale, offset
}

func checkCalibration(signals []Signal) error {
	for i, sig := range signals {
		if sig.DigitalMin == sig.DigitalMax {
			return fieldError(fmt.Sprintf("digital range of signal %d", i),
				[]byte(strconv.Itoa(sig.DigitalMin)), ErrUnsupported, errors.New("digital minimum equals digital maximum"))
		}
	}
	return nil
}

// DecodeData reads all data records from r and returns the physical values
// of every signal, one row per signal. Each data record occupies a stride of
// the largest SamplesPerRecord columns. Signals with fewer samples per record
// leave the tail of each stride at the value a digital zero maps to.
// Records larger than MaxRecordBytes and matrices larger than MaxSamples
// are rejected with ErrUnsupported.
func DecodeData(r io.Reader, hdr *Header, signals []Signal, opts ...Option) (*mat.Dense, error) {
	return decodeData(newSource(r, newOptions(opts)), hdr, signals)
}

func decodeData(s *source, hdr *Header, signals []Signal) (*mat.Dense, error) {
	if len(signals) != hdr.SignalCount {
		return nil, fmt.Errorf("header declares %d signals, got %d: %w", hdr.SignalCount, len(signals), ErrParse)
	}

	records, ok := hdr.DataRecords.Value()
	if !ok {
		return nil, fmt.Errorf("number of data records is unknown: %w", ErrUnsupported)
	}

	layout, err := layoutOf(signals)
	if err != nil {
		return nil, err
	}
	if records > MaxSamples/layout.stride || records*layout.stride > MaxSamples/len(signals) {
		return nil, fmt.Errorf("%d data records of %d signals exceed %d samples: %w",
			records, len(signals), MaxSamples, ErrUnsupported)
	}

	if err := checkCalibration(signals); err != nil {
		return nil, err
	}

	// The matrix is only allocated once every record has been read, so a
	// header claiming more data than the file holds fails at the short read.
	codes := make([]int16, 0, min(records*layout.samples, initialCodes))
	record := make([]int16, layout.samples)
	for rec := 0; rec < records; rec++ {
		b, err := s.readExact(layout.bytes())
		if err != nil {
			return nil, fmt.Errorf("error reading data record %d: %w", rec, err)
		}

		if err := decodeCodes(record, b); err != nil {
			return nil, err
		}
		codes = append(codes, record...)
	}

	data := mat.NewDense(len(signals), records*layout.stride, nil)
	for rec := 0; rec < records; rec++ {
		deinterleave(data, codes[rec*layout.samples:(rec+1)*layout.samples], signals, rec*layout.stride)
	}

	scaleRows(data, signals)

	s.opts.logger.Debug("decoded edf data records",
		"records", records,
		"size", humanize.Bytes(uint64(records)*uint64(layout.bytes())),
		"columns", records*layout.stride)

	return data, nil
}

// decodeCodes decodes little-endian 16-bit two's complement samples.
func decodeCodes(dst []int16, b []byte) error {
	if len(b)%sampleSize != 0 {
		return fmt.Errorf("%d bytes is not a whole number of samples: %w", len(b), ErrParse)
	}
	if len(b)/sampleSize != len(dst) {
		return fmt.Errorf("expected %d samples, got %d: %w", len(dst), len(b)/sampleSize, ErrParse)
	}
	for i := range dst {
		dst[i] = int16(binary.LittleEndian.Uint16(b[i*sampleSize:]))
	}
	return nil
}

// deinterleave copies the codes of one data record into the rows of dst,
// starting at column col. Signals appear in declared order, each with its own
// number of samples.
func deinterleave(dst *mat.Dense, codes []int16, signals []Signal, col int) {
	cursor := 0
	for i, sig := range signals {
		row := dst.RawRowView(i)[col : col+sig.SamplesPerRecord]
		for j, c := range codes[cursor : cursor+sig.SamplesPerRecord] {
			row[j] = float64(c)
		}
		cursor += sig.SamplesPerRecord
	}
}

// scaleRows converts every row of digital codes to physical values in place.
func scaleRows(data *mat.Dense, signals []Signal) {
	for i, sig := range signals {
		scale, offset := calibration(sig)
		row := data.RawRowView(i)
		floats.Scale(scale, row)
		floats.AddConst(offset, row)
	}
}
