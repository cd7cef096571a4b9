package testsupport

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"
)

// TableBuilder assembles .dat64 table bytes for tests: a little-endian row
// count, fixed-width rows, the 0xBB boundary magic, and a variable section
// holding UTF-16LE strings referenced by offset.
type TableBuilder struct {
	rowSize  int
	rows     [][]byte
	variable []byte
}

// NewTableBuilder creates a builder for rows of the given fixed width.
func NewTableBuilder(rowSize int) *TableBuilder {
	return &TableBuilder{
		rowSize:  rowSize,
		variable: bytes.Repeat([]byte{0xBB}, 8),
	}
}

// Row appends a zeroed row and returns a writer for its columns.
func (b *TableBuilder) Row() *RowBuilder {
	row := make([]byte, b.rowSize)
	b.rows = append(b.rows, row)
	return &RowBuilder{table: b, row: row}
}

// Bytes serializes the table.
func (b *TableBuilder) Bytes() []byte {
	out := make([]byte, 4, 4+len(b.rows)*b.rowSize+len(b.variable))
	binary.LittleEndian.PutUint32(out, uint32(len(b.rows)))
	for _, row := range b.rows {
		out = append(out, row...)
	}
	return append(out, b.variable...)
}

// RowBuilder writes columns into a single row.
type RowBuilder struct {
	table *TableBuilder
	row   []byte
}

func (r *RowBuilder) PutU64(off int, v uint64) *RowBuilder {
	binary.LittleEndian.PutUint64(r.row[off:], v)
	return r
}

func (r *RowBuilder) PutBool(off int, v bool) *RowBuilder {
	if v {
		r.row[off] = 1
	}
	return r
}

// PutString appends text to the variable section and stores its offset.
func (r *RowBuilder) PutString(off int, text string) *RowBuilder {
	offset := uint64(len(r.table.variable))
	for _, u := range utf16.Encode([]rune(text)) {
		r.table.variable = binary.LittleEndian.AppendUint16(r.table.variable, u)
	}
	r.table.variable = append(r.table.variable, 0, 0)
	return r.PutU64(off, offset)
}

// PutDanglingString stores a string offset pointing past the variable
// section, producing a handle that fails to decode.
func (r *RowBuilder) PutDanglingString(off int) *RowBuilder {
	return r.PutU64(off, 1<<32)
}
