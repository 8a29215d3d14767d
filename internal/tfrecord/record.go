// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package tfrecord

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/gzip"
)

// ErrCorrupt is returned when a record checksum does not match.
var ErrCorrupt = errors.New("corrupt tfrecord")

const (
	headerSize  = 12
	footerSize  = 4
	maskDelta   = 0xa282ead8
	maxRecordSz = 1 << 30
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

func maskedCRC(b []byte) uint32 {
	crc := crc32.Checksum(b, castagnoli)
	return ((crc >> 15) | (crc << 17)) + maskDelta
}

// Writer frames records onto an underlying writer.
type Writer struct {
	w      io.Writer
	header [headerSize]byte
	footer [footerSize]byte
}

// NewWriter returns a Writer appending records to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write appends one record.
func (w *Writer) Write(data []byte) error {
	binary.LittleEndian.PutUint64(w.header[:8], uint64(len(data)))
	binary.LittleEndian.PutUint32(w.header[8:], maskedCRC(w.header[:8]))
	binary.LittleEndian.PutUint32(w.footer[:], maskedCRC(data))

	for _, chunk := range [][]byte{w.header[:], data, w.footer[:]} {
		if _, err := w.w.Write(chunk); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	return nil
}

// Reader reads framed records.
type Reader struct {
	r      io.Reader
	gz     *gzip.Reader
	header [headerSize]byte
	footer [footerSize]byte
	buf    []byte
}

// NewReader returns a Reader for r. A gzip-compressed stream is detected by
// its magic bytes and decompressed.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("peek header: %w", err)
	}

	rd := &Reader{r: br}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		rd.gz = gz
		rd.r = gz
	}
	return rd, nil
}

// Next returns the next record. The slice is valid until the next call.
// It returns io.EOF after the last record.
func (r *Reader) Next() ([]byte, error) {
	if _, err := io.ReadFull(r.r, r.header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: truncated header: %v", ErrCorrupt, err)
	}

	if binary.LittleEndian.Uint32(r.header[8:]) != maskedCRC(r.header[:8]) {
		return nil, fmt.Errorf("%w: length checksum mismatch", ErrCorrupt)
	}
	length := binary.LittleEndian.Uint64(r.header[:8])
	if length > maxRecordSz {
		return nil, fmt.Errorf("%w: record length %d too large", ErrCorrupt, length)
	}

	if uint64(cap(r.buf)) < length {
		r.buf = make([]byte, length)
	}
	data := r.buf[:length]
	if _, err := io.ReadFull(r.r, data); err != nil {
		return nil, fmt.Errorf("%w: truncated data: %v", ErrCorrupt, err)
	}
	if _, err := io.ReadFull(r.r, r.footer[:]); err != nil {
		return nil, fmt.Errorf("%w: truncated footer: %v", ErrCorrupt, err)
	}
	if binary.LittleEndian.Uint32(r.footer[:]) != maskedCRC(data) {
		return nil, fmt.Errorf("%w: data checksum mismatch", ErrCorrupt)
	}
	return data, nil
}

// Close releases the gzip reader, if any. It does not close the source.
func (r *Reader) Close() error {
	if r.gz != nil {
		return r.gz.Close()
	}
	return nil
}
