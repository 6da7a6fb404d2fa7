// Package wins decodes the authority's win description and translates it
// into on-screen cell coordinates.
//
// The authority numbers visible rows from 1 at the bottom up to R at the top,
// while the display numbers rows from 0 at the top. For a grid of R rows:
//
//	uiRow = R - backendRow
//
// so with three rows backend row 1 is UI row 2, row 2 is row 1 and row 3 is
// row 0. Any other backend row, or a column outside the reels, is a contract
// violation and is reported as a MalformedWinDataError.
package wins

import (
	"fmt"
	"sort"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Entry is one row of the win description: the winning symbol on a backend
// row and the reel indices that form the win.
type Entry struct {
	BackendRow int
	Symbol     string
	Columns    []int
}

// Description is a decoded win description ordered by backend row. A nil
// description means the authority reported no wins.
type Description []Entry

// Cell addresses one on-screen cell.
type Cell struct {
	Reel int
	Row  int
}

func (c Cell) String() string {
	return fmt.Sprintf("reel %d row %d", c.Reel, c.Row)
}

// MalformedWinDataError reports win data that breaks the authority contract.
type MalformedWinDataError struct {
	Reason string
}

func (e *MalformedWinDataError) Error() string {
	return "malformed win data: " + e.Reason
}

func malformed(format string, args ...interface{}) error {
	return &MalformedWinDataError{Reason: fmt.Sprintf(format, args...)}
}

// Decode parses a win_data value. JSON null or an empty object decode to a
// nil description.
func Decode(raw []byte) (Description, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var rows map[string]jsoniter.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, malformed("expected an object keyed by row: %v", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	desc := make(Description, 0, len(rows))
	for key, value := range rows {
		row, err := strconv.Atoi(key)
		if err != nil {
			return nil, malformed("row key %q is not an integer", key)
		}

		var tuple []jsoniter.RawMessage
		if err := json.Unmarshal(value, &tuple); err != nil || len(tuple) != 2 {
			return nil, malformed("row %d: expected [symbol, columns]", row)
		}
		var entry Entry
		entry.BackendRow = row
		if err := json.Unmarshal(tuple[0], &entry.Symbol); err != nil {
			return nil, malformed("row %d: symbol is not a string", row)
		}
		if err := json.Unmarshal(tuple[1], &entry.Columns); err != nil {
			return nil, malformed("row %d: columns are not a list of integers", row)
		}
		desc = append(desc, entry)
	}

	sort.Slice(desc, func(i, j int) bool {
		return desc[i].BackendRow < desc[j].BackendRow
	})
	return desc, nil
}

// Translator converts win entries to cells for a grid of Reels x Rows.
type Translator struct {
	Reels int
	Rows  int
}

// UIRow maps a backend row to the display row.
func (t Translator) UIRow(backendRow int) (int, error) {
	if backendRow < 1 || backendRow > t.Rows {
		return 0, malformed("backend row %d outside [1, %d]", backendRow, t.Rows)
	}
	return t.Rows - backendRow, nil
}

// Translate returns one cell per column of the entry.
func (t Translator) Translate(entry Entry) ([]Cell, error) {
	row, err := t.UIRow(entry.BackendRow)
	if err != nil {
		return nil, err
	}
	cells := make([]Cell, 0, len(entry.Columns))
	for _, col := range entry.Columns {
		if col < 0 || col >= t.Reels {
			return nil, malformed("backend row %d: column %d outside [0, %d)", entry.BackendRow, col, t.Reels)
		}
		cells = append(cells, Cell{Reel: col, Row: row})
	}
	return cells, nil
}

// Cells translates a whole description. Any invalid entry fails the lot so
// that nothing is highlighted from a broken description.
func (t Translator) Cells(desc Description) ([]Cell, error) {
	var cells []Cell
	for _, entry := range desc {
		translated, err := t.Translate(entry)
		if err != nil {
			return nil, err
		}
		cells = append(cells, translated...)
	}
	return cells, nil
}
