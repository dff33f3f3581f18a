// internal/game/codec.go
//
// Text encoding of a Board for storage.
// Format: rows joined by ";" and cells by ",", row-major, e.g. "2,0;0,4".
// Decode is strict: it rejects ragged rows, non-square shapes, non-numeric
// cells and values that are not tiles with ErrCorruptBoard. It never returns
// a partial board.
//
// Board also implements driver.Valuer / sql.Scanner on top of this format
// and validates shape when unmarshalled from JSON.

package game

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	rowSep  = ";"
	cellSep = ","
)

// Encode renders b in the storage format.
func Encode(b Board) string {
	var sb strings.Builder
	for r, row := range b {
		if r > 0 {
			sb.WriteString(rowSep)
		}
		for c, v := range row {
			if c > 0 {
				sb.WriteString(cellSep)
			}
			sb.WriteString(strconv.Itoa(v))
		}
	}
	return sb.String()
}

// Decode parses the storage format back into a validated board.
func Decode(s string) (Board, error) {
	if s == "" {
		return nil, corrupt("empty encoding")
	}
	rows := strings.Split(s, rowSep)
	b := make(Board, len(rows))
	for r, raw := range rows {
		cells := strings.Split(raw, cellSep)
		row := make([]int, len(cells))
		for c, cell := range cells {
			v, err := strconv.Atoi(cell)
			if err != nil {
				return nil, corrupt("row %d cell %d: %q is not a number", r, c, cell)
			}
			row[c] = v
		}
		b[r] = row
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Value implements driver.Valuer.
func (b Board) Value() (driver.Value, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return Encode(b), nil
}

// Scan implements sql.Scanner.
func (b *Board) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		return corrupt("NULL board")
	default:
		return corrupt("unsupported column type %T", src)
	}
	decoded, err := Decode(s)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

// UnmarshalJSON decodes a [][]int and validates it.
func (b *Board) UnmarshalJSON(data []byte) error {
	var rows [][]int
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptBoard, err)
	}
	decoded := Board(rows)
	if err := decoded.Validate(); err != nil {
		return err
	}
	*b = decoded
	return nil
}
