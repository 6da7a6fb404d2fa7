package grid

import (
	"math/rand"
	"testing"
	"time"

	"github.com/cbodonnell/reels/pkg/symbols"
	"github.com/cbodonnell/reels/pkg/wins"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGrid() *Grid {
	return New(5, 3, symbols.Default())
}

func TestGrid_roundTrip(t *testing.T) {
	g := newTestGrid()
	result := [][]string{
		{"diamond", "floppy", "seven"},
		{"seven_gold", "telephone", "hourglass"},
		{"seven", "seven", "seven"},
		{"floppy", "diamond", "telephone"},
		{"hourglass", "hourglass", "diamond"},
	}
	for reel, column := range result {
		require.NoError(t, g.SetReel(reel, column))
	}
	assert.Equal(t, result, g.Symbols())

	cell, err := g.Cell(1, 0)
	require.NoError(t, err)
	assert.Equal(t, "seven_gold", cell.Symbol)
	assert.Equal(t, symbols.AssetRef("/static/slots_app/images/symbols/0_seven.png"), cell.Asset)
}

func TestGrid_SetCell(t *testing.T) {
	g := newTestGrid()

	tests := []struct {
		name      string
		reel, row int
		symbol    string
		wantAsset symbols.AssetRef
		wantErr   error
		wantSet   bool
	}{
		{name: "known", reel: 0, row: 0, symbol: "seven", wantAsset: "/static/slots_app/images/symbols/0_seven.png", wantSet: true},
		{name: "unknown gets placeholder", reel: 4, row: 2, symbol: "cherry", wantAsset: symbols.Placeholder, wantErr: symbols.ErrUnknownSymbol, wantSet: true},
		{name: "reel out of range", reel: 5, row: 0, symbol: "seven", wantErr: ErrOutOfRange},
		{name: "row out of range", reel: 0, row: 3, symbol: "seven", wantErr: ErrOutOfRange},
		{name: "negative", reel: -1, row: 0, symbol: "seven", wantErr: ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.SetCell(tt.reel, tt.row, tt.symbol)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			if !tt.wantSet {
				return
			}
			cell, err := g.Cell(tt.reel, tt.row)
			require.NoError(t, err)
			assert.Equal(t, tt.symbol, cell.Symbol)
			assert.Equal(t, tt.wantAsset, cell.Asset)
		})
	}
}

func TestGrid_SetReel_unknownSymbols(t *testing.T) {
	g := newTestGrid()
	err := g.SetReel(1, []string{"cherry", "seven", "lemon"})
	assert.ErrorIs(t, err, symbols.ErrUnknownSymbol)
	assert.ErrorContains(t, err, "row 0")
	assert.ErrorContains(t, err, "row 2")

	assert.Equal(t, []string{"cherry", "seven", "lemon"}, g.Symbols()[1])
	cell, err := g.Cell(1, 2)
	require.NoError(t, err)
	assert.Equal(t, symbols.Placeholder, cell.Asset)
}

func TestGrid_SetReel_wrongLength(t *testing.T) {
	g := newTestGrid()
	assert.ErrorIs(t, g.SetReel(0, []string{"seven"}), ErrOutOfRange)
}

func TestGrid_SetReelSpinning(t *testing.T) {
	g := newTestGrid()
	require.NoError(t, g.SetReelSpinning(2, true, 100*time.Millisecond))

	for row := 0; row < 3; row++ {
		cell, err := g.Cell(2, row)
		require.NoError(t, err)
		assert.True(t, cell.Spinning)
		assert.Equal(t, 100*time.Millisecond, cell.SpinOffset)

		other, err := g.Cell(1, row)
		require.NoError(t, err)
		assert.False(t, other.Spinning)
	}

	require.NoError(t, g.SetSpinning(2, 1, false))
	cell, _ := g.Cell(2, 1)
	assert.False(t, cell.Spinning)
}

func TestGrid_DimAllThenHighlight(t *testing.T) {
	tests := []struct {
		name    string
		winning []wins.Cell
	}{
		{name: "no winners dims everything"},
		{name: "single winner", winning: []wins.Cell{{Reel: 2, Row: 2}}},
		{name: "full line", winning: []wins.Cell{{Reel: 0, Row: 1}, {Reel: 1, Row: 1}, {Reel: 2, Row: 1}, {Reel: 3, Row: 1}, {Reel: 4, Row: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGrid()
			require.NoError(t, g.DimAllThenHighlight(tt.winning))

			isWinner := map[wins.Cell]bool{}
			for _, c := range tt.winning {
				isWinner[c] = true
			}
			for reel, column := range g.Snapshot() {
				for row, cell := range column {
					want := HighlightNonWinning
					if isWinner[wins.Cell{Reel: reel, Row: row}] {
						want = HighlightWinning
					}
					assert.Equal(t, want, cell.Highlight, "reel %d row %d", reel, row)
				}
			}

			g.ResetHighlights()
			for _, column := range g.Snapshot() {
				for _, cell := range column {
					assert.Equal(t, HighlightNone, cell.Highlight)
				}
			}
		})
	}
}

func TestGrid_DimAllThenHighlight_rejectsOutOfRange(t *testing.T) {
	g := newTestGrid()
	err := g.DimAllThenHighlight([]wins.Cell{{Reel: 0, Row: 0}, {Reel: 9, Row: 0}})
	assert.ErrorIs(t, err, ErrOutOfRange)

	// nothing was touched
	for _, column := range g.Snapshot() {
		for _, cell := range column {
			assert.Equal(t, HighlightNone, cell.Highlight)
		}
	}
}

func TestGrid_Fill(t *testing.T) {
	g := newTestGrid()
	registry := symbols.Default()
	rng := rand.New(rand.NewSource(7))
	g.Fill(func(_, _ int) string { return registry.RandomSymbol(rng) })

	for _, column := range g.Snapshot() {
		for _, cell := range column {
			assert.NotEmpty(t, cell.Symbol)
			assert.NotEqual(t, symbols.Placeholder, cell.Asset)
		}
	}
}

func TestGrid_SnapshotIsACopy(t *testing.T) {
	g := newTestGrid()
	require.NoError(t, g.SetCell(0, 0, "seven"))
	snap := g.Snapshot()
	snap[0][0].Symbol = "mutated"

	cell, _ := g.Cell(0, 0)
	assert.Equal(t, "seven", cell.Symbol)
}
