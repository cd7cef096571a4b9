package dat

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// boundary separates the fixed-width row section from the variable-length
// data section. String offsets are relative to the start of the boundary.
var boundary = bytes.Repeat([]byte{0xBB}, 8)

var (
	ErrTruncated  = errors.New("dat: truncated table")
	ErrNoBoundary = errors.New("dat: variable section boundary not found")
)

// Table is a parsed .dat64 file.
type Table struct {
	rowCount int
	rowSize  int
	fixed    []byte
	variable []byte
}

// Parse decodes the table framing of raw. Row contents stay untyped; the
// typed accessors in rows.go interpret them.
func Parse(raw []byte) (*Table, error) {
	if len(raw) < 4 {
		return nil, ErrTruncated
	}
	rowCount := int(binary.LittleEndian.Uint32(raw[:4]))

	body := raw[4:]
	split := bytes.Index(body, boundary)
	if split < 0 {
		return nil, ErrNoBoundary
	}

	t := &Table{
		rowCount: rowCount,
		fixed:    body[:split],
		variable: body[split:],
	}
	if rowCount > 0 {
		if len(t.fixed)%rowCount != 0 {
			return nil, fmt.Errorf("dat: fixed section of %d bytes does not divide into %d rows", len(t.fixed), rowCount)
		}
		t.rowSize = len(t.fixed) / rowCount
	}
	return t, nil
}

// Rows returns the number of rows in the table.
func (t *Table) Rows() int {
	return t.rowCount
}

// RowSize returns the fixed width of each row in bytes.
func (t *Table) RowSize() int {
	return t.rowSize
}

func (t *Table) row(i int) []byte {
	return t.fixed[i*t.rowSize : (i+1)*t.rowSize]
}

func (t *Table) u64(row []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(row[off:])
}

func (t *Table) boolean(row []byte, off int) bool {
	return row[off] != 0
}

// stringAt resolves the string handle stored at off in row. An offset that
// does not point into the variable section yields an unresolved handle whose
// Decode fails; the table itself is never considered corrupt because of one
// bad reference.
func (t *Table) stringAt(row []byte, off int) String {
	offset := t.u64(row, off)
	if offset < uint64(len(boundary)) || offset >= uint64(len(t.variable)) {
		return String{}
	}
	data := t.variable[offset:]
	// UTF-16LE, terminated by a zero code unit.
	end := -1
	for i := 0; i+1 < len(data); i += 2 {
		if data[i] == 0 && data[i+1] == 0 {
			end = i
			break
		}
	}
	if end < 0 {
		return String{}
	}
	return String{raw: data[:end], resolved: true}
}

func (t *Table) checkRowSize(table string, min int) error {
	if t.rowCount > 0 && t.rowSize < min {
		return fmt.Errorf("dat: %s rows are %d bytes, need at least %d", table, t.rowSize, min)
	}
	return nil
}
