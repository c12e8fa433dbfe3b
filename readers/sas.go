//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2026 Dana Whitfield dana.whitfield@auroradata.io
//
// This file is part of i94etl.
//
// i94etl is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// i94etl is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with i94etl. If not, see https://www.gnu.org/licenses/.

// sas.go - reader for the SAS7BDAT statistical dataset format.
//
// Supports little-endian, uncompressed files in both 32- and 64-bit
// layouts, which covers the I94 monthly extracts this pipeline ingests.
// Compressed pages are reported as an unsupported-input error rather than
// silently skipped.
package readers

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/aurora-data/i94etl"
)

// SASReaderError wraps structured error information for the SAS reader.
type SASReaderError struct {
	Op  string
	Err error
}

func (e *SASReaderError) Error() string {
	return fmt.Sprintf("sas reader %s: %v", e.Op, e.Err)
}

func (e *SASReaderError) Unwrap() error {
	return e.Err
}

// sasMagic is the 32-byte signature at the start of every sas7bdat file.
var sasMagic = []byte{
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xc2, 0xea, 0x81, 0x60,
	0xb3, 0x14, 0x11, 0xcf, 0xbd, 0x92, 0x08, 0x00,
	0x09, 0xc7, 0x31, 0x8c, 0x18, 0x1f, 0x10, 0x11,
}

// Subheader signatures, compared as 32-bit little-endian words.
const (
	sigRowSize    = 0xf7f7f7f7
	sigColumnSize = 0xf6f6f6f6
	sigColumnText = 0xfffffffd
	sigColumnName = 0xffffffff
	sigColumnAttr = 0xfffffffc
)

// Page type flags.
const (
	pageTypeMeta  = 0x0000
	pageTypeData  = 0x0100
	pageTypeMix1  = 0x0200
	pageTypeMix2  = 0x0280
	pageTypeAMD   = 0x0400
	pageTypeMeta2 = 0x4000
)

// truncated/compressed subheader pointer markers
const (
	ptrTruncated  = 1
	ptrCompressed = 4
)

type sasColumn struct {
	name    string
	offset  int
	width   int
	numeric bool
}

// SASReader implements DataSource for sas7bdat files.
type SASReader struct {
	file         *os.File
	u64          bool
	intLength    int
	headerLength int
	pageLength   int
	pageCount    int
	rowLength    int
	rowCount     int
	mixRows      int // rows stored on a mix page

	columns     []sasColumn
	textBlobs   [][]byte
	namePtrs    []sasNamePointer
	attrs       []sasAttr
	columnCount int

	page        []byte
	pageIdx     int
	pageRows    int // rows on the current page
	rowOnPage   int
	dataOffset  int // byte offset of the first row on the current page
	recordsRead int64
}

type sasNamePointer struct {
	textIdx    int
	nameOffset int
	nameLength int
}

type sasAttr struct {
	offset  int
	width   int
	colType int
}

// NewSASReader opens a sas7bdat file and parses its metadata pages.
func NewSASReader(filename string) (*SASReader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, &SASReaderError{Op: "open_file", Err: err}
	}

	r := &SASReader{file: f}
	if err := r.readHeader(); err != nil {
		f.Close()
		return nil, err
	}
	if err := r.readMetadata(); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// readHeader validates the magic number and decodes the file-level layout.
func (r *SASReader) readHeader() error {
	head := make([]byte, 288)
	if _, err := io.ReadFull(r.file, head); err != nil {
		return &SASReaderError{Op: "read_header", Err: err}
	}
	if !bytes.Equal(head[:32], sasMagic) {
		return &SASReaderError{Op: "read_header", Err: fmt.Errorf("not a sas7bdat file")}
	}

	// Alignment bytes select the 32- vs 64-bit layout; the header fields
	// shift by align1 in 64-bit files.
	align1 := 0
	if head[32] == 0x33 {
		r.u64 = true
		r.intLength = 8
	} else {
		r.intLength = 4
	}
	if head[35] == 0x33 {
		align1 = 4
	}
	if head[37] != 0x01 {
		return &SASReaderError{Op: "read_header", Err: fmt.Errorf("big-endian sas7bdat not supported")}
	}

	r.headerLength = int(binary.LittleEndian.Uint32(head[196+align1 : 200+align1]))
	r.pageLength = int(binary.LittleEndian.Uint32(head[200+align1 : 204+align1]))
	if r.intLength == 8 {
		r.pageCount = int(binary.LittleEndian.Uint64(head[204+align1 : 212+align1]))
	} else {
		r.pageCount = int(binary.LittleEndian.Uint32(head[204+align1 : 208+align1]))
	}

	if r.pageLength <= 0 || r.headerLength <= 0 {
		return &SASReaderError{Op: "read_header", Err: fmt.Errorf("corrupt header: page length %d", r.pageLength)}
	}
	if _, err := r.file.Seek(int64(r.headerLength), io.SeekStart); err != nil {
		return &SASReaderError{Op: "read_header", Err: err}
	}
	return nil
}

func (r *SASReader) pageBitOffset() int {
	if r.u64 {
		return 32
	}
	return 16
}

func (r *SASReader) pointerLength() int {
	if r.u64 {
		return 24
	}
	return 12
}

// readMetadata walks pages until the row layout and all column metadata are
// known, then rewinds so Read can stream rows from the first page.
func (r *SASReader) readMetadata() error {
	for i := 0; i < r.pageCount && !r.metadataComplete(); i++ {
		page := make([]byte, r.pageLength)
		if _, err := io.ReadFull(r.file, page); err != nil {
			return &SASReaderError{Op: "read_page", Err: err}
		}
		pageType := int(binary.LittleEndian.Uint16(page[r.pageBitOffset() : r.pageBitOffset()+2]))
		if err := r.processPageSubheaders(page, pageType); err != nil {
			return err
		}
	}
	if !r.metadataComplete() {
		return &SASReaderError{Op: "read_metadata", Err: fmt.Errorf("incomplete column metadata")}
	}
	if err := r.resolveColumns(); err != nil {
		return err
	}

	// Rewind to the first page; Read skips pages without rows.
	if _, err := r.file.Seek(int64(r.headerLength), io.SeekStart); err != nil {
		return &SASReaderError{Op: "seek", Err: err}
	}
	r.pageIdx = 0
	return nil
}

func (r *SASReader) metadataComplete() bool {
	return r.rowLength > 0 && r.columnCount > 0 &&
		len(r.attrs) >= r.columnCount && len(r.namePtrs) >= r.columnCount
}

// processPageSubheaders scans a page's subheader pointers for metadata.
func (r *SASReader) processPageSubheaders(page []byte, pageType int) error {
	if pageType&pageTypeData != 0 {
		return nil // pure data page, no subheaders
	}
	bitOffset := r.pageBitOffset()
	subheaderCount := int(binary.LittleEndian.Uint16(page[bitOffset+4 : bitOffset+6]))
	ptrLen := r.pointerLength()

	for i := 0; i < subheaderCount; i++ {
		base := bitOffset + 8 + i*ptrLen
		if base+ptrLen > len(page) {
			break
		}
		offset := int(r.readInt(page, base))
		length := int(r.readInt(page, base+r.intLength))
		compression := page[base+2*r.intLength]
		if length == 0 || compression == ptrTruncated {
			continue
		}
		if compression == ptrCompressed {
			return &SASReaderError{Op: "read_subheader", Err: fmt.Errorf("compressed sas7bdat not supported")}
		}
		if offset+length > len(page) || offset < 0 {
			continue
		}
		r.processSubheader(page, offset, length)
	}
	return nil
}

// readInt reads an intLength-sized little-endian integer.
func (r *SASReader) readInt(buf []byte, offset int) uint64 {
	if r.u64 {
		return binary.LittleEndian.Uint64(buf[offset : offset+8])
	}
	return uint64(binary.LittleEndian.Uint32(buf[offset : offset+4]))
}

func (r *SASReader) processSubheader(page []byte, offset, length int) {
	sig := binary.LittleEndian.Uint32(page[offset : offset+4])
	if r.u64 && (sig == 0 || sig == 0xffffffff) {
		// 64-bit signatures repeat or pad the 32-bit word; the
		// distinguishing word may sit in the second half.
		alt := binary.LittleEndian.Uint32(page[offset+4 : offset+8])
		if alt != 0 && alt != 0xffffffff {
			sig = alt
		}
	}

	switch sig {
	case sigRowSize:
		r.rowLength = int(r.readInt(page, offset+5*r.intLength))
		r.rowCount = int(r.readInt(page, offset+6*r.intLength))
		r.mixRows = int(r.readInt(page, offset+15*r.intLength))
	case sigColumnSize:
		r.columnCount = int(r.readInt(page, offset+r.intLength))
	case sigColumnText:
		blockSize := int(binary.LittleEndian.Uint16(page[offset+r.intLength : offset+r.intLength+2]))
		if offset+r.intLength+blockSize <= len(page) {
			blob := make([]byte, blockSize)
			copy(blob, page[offset+r.intLength:offset+r.intLength+blockSize])
			r.textBlobs = append(r.textBlobs, blob)
		}
	case sigColumnName:
		count := (length - 2*r.intLength - 12) / 8
		for i := 0; i < count; i++ {
			base := offset + r.intLength + 8 + i*8
			r.namePtrs = append(r.namePtrs, sasNamePointer{
				textIdx:    int(binary.LittleEndian.Uint16(page[base : base+2])),
				nameOffset: int(binary.LittleEndian.Uint16(page[base+2 : base+4])),
				nameLength: int(binary.LittleEndian.Uint16(page[base+4 : base+6])),
			})
		}
	case sigColumnAttr:
		vectorLen := r.intLength + 8
		count := (length - 2*r.intLength - 12) / vectorLen
		for i := 0; i < count; i++ {
			base := offset + r.intLength + 8 + i*vectorLen
			r.attrs = append(r.attrs, sasAttr{
				offset:  int(r.readInt(page, base)),
				width:   int(binary.LittleEndian.Uint32(page[base+r.intLength : base+r.intLength+4])),
				colType: int(page[base+r.intLength+6]),
			})
		}
	}
}

// resolveColumns stitches names, offsets, and types into the column list.
func (r *SASReader) resolveColumns() error {
	if len(r.namePtrs) < r.columnCount || len(r.attrs) < r.columnCount {
		return &SASReaderError{Op: "resolve_columns", Err: fmt.Errorf("column metadata mismatch")}
	}
	for i := 0; i < r.columnCount; i++ {
		ptr := r.namePtrs[i]
		if ptr.textIdx >= len(r.textBlobs) {
			return &SASReaderError{Op: "resolve_columns", Err: fmt.Errorf("column %d references missing text block %d", i, ptr.textIdx)}
		}
		blob := r.textBlobs[ptr.textIdx]
		if ptr.nameOffset+ptr.nameLength > len(blob) {
			return &SASReaderError{Op: "resolve_columns", Err: fmt.Errorf("column %d name out of range", i)}
		}
		name := strings.TrimRight(string(blob[ptr.nameOffset:ptr.nameOffset+ptr.nameLength]), "\x00 ")
		attr := r.attrs[i]
		r.columns = append(r.columns, sasColumn{
			name:    name,
			offset:  attr.offset,
			width:   attr.width,
			numeric: attr.colType == 1,
		})
	}
	return nil
}

// Read implements the DataSource interface, yielding one row per call.
func (r *SASReader) Read(ctx context.Context) (i94etl.Record, error) {
	select {
	case <-ctx.Done():
		return nil, &SASReaderError{Op: "read", Err: ctx.Err()}
	default:
	}

	for r.page == nil || r.rowOnPage >= r.pageRows {
		if err := r.loadNextDataPage(); err != nil {
			return nil, err
		}
	}

	rowStart := r.dataOffset + r.rowOnPage*r.rowLength
	if rowStart+r.rowLength > len(r.page) {
		return nil, &SASReaderError{Op: "read", Err: fmt.Errorf("row extends past page boundary")}
	}
	row := r.page[rowStart : rowStart+r.rowLength]
	r.rowOnPage++
	r.recordsRead++

	return r.decodeRow(row), nil
}

// loadNextDataPage advances to the next page that carries rows.
func (r *SASReader) loadNextDataPage() error {
	for {
		if r.pageIdx >= r.pageCount {
			return io.EOF
		}
		page := make([]byte, r.pageLength)
		if _, err := io.ReadFull(r.file, page); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return io.EOF
			}
			return &SASReaderError{Op: "read_page", Err: err}
		}
		r.pageIdx++

		bitOffset := r.pageBitOffset()
		pageType := int(binary.LittleEndian.Uint16(page[bitOffset : bitOffset+2]))
		blockCount := int(binary.LittleEndian.Uint16(page[bitOffset+2 : bitOffset+4]))
		subheaderCount := int(binary.LittleEndian.Uint16(page[bitOffset+4 : bitOffset+6]))

		switch {
		case pageType == pageTypeMix1 || pageType == pageTypeMix2:
			// Rows follow the subheader pointers, 8-byte aligned.
			start := bitOffset + 8 + subheaderCount*r.pointerLength()
			if rem := start % 8; rem != 0 {
				start += 8 - rem
			}
			rows := r.mixRows
			if max := (len(page) - start) / r.rowLength; rows > max || rows <= 0 {
				rows = max
			}
			r.page = page
			r.dataOffset = start
			r.pageRows = rows
			r.rowOnPage = 0
			return nil
		case pageType&pageTypeData != 0:
			r.page = page
			r.dataOffset = bitOffset + 8
			r.pageRows = blockCount
			r.rowOnPage = 0
			return nil
		default:
			// Metadata-only page; a compressed data subheader here is
			// the one thing we must not skip silently.
			if err := r.processPageSubheaders(page, pageType); err != nil {
				return err
			}
		}
	}
}

// decodeRow converts one raw row into a Record. Numeric columns are SAS
// right-aligned IEEE doubles; NaN doubles and blank strings become nil.
func (r *SASReader) decodeRow(row []byte) i94etl.Record {
	record := make(i94etl.Record, len(r.columns))
	for _, col := range r.columns {
		if col.offset+col.width > len(row) || col.width == 0 {
			record[col.name] = nil
			continue
		}
		raw := row[col.offset : col.offset+col.width]
		if col.numeric {
			record[col.name] = decodeSASNumber(raw)
		} else {
			s := strings.TrimRight(string(raw), "\x00 ")
			if s == "" {
				record[col.name] = nil
			} else {
				record[col.name] = strings.TrimSpace(s)
			}
		}
	}
	return record
}

// decodeSASNumber widens a truncated (3-8 byte) SAS double to float64.
func decodeSASNumber(raw []byte) interface{} {
	var buf [8]byte
	copy(buf[8-len(raw):], raw)
	f := math.Float64frombits(binary.LittleEndian.Uint64(buf[:]))
	if math.IsNaN(f) {
		return nil
	}
	return f
}

// Close implements the DataSource interface.
func (r *SASReader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// RecordsRead reports how many rows have been decoded so far.
func (r *SASReader) RecordsRead() int64 { return r.recordsRead }
