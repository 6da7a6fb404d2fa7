package grid

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cbodonnell/reels/pkg/log"
	"github.com/cbodonnell/reels/pkg/symbols"
	"github.com/cbodonnell/reels/pkg/wins"
	"github.com/samber/lo"
)

// ErrOutOfRange is returned for a reel or row outside the grid.
var ErrOutOfRange = errors.New("cell out of range")

// Highlight is the mutually exclusive highlight state of a cell.
type Highlight int

const (
	HighlightNone Highlight = iota
	HighlightWinning
	HighlightNonWinning
)

func (h Highlight) String() string {
	switch h {
	case HighlightNone:
		return "None"
	case HighlightWinning:
		return "Winning"
	case HighlightNonWinning:
		return "NonWinning"
	}
	return "Unknown"
}

// Cell is the visual state of one reel position.
type Cell struct {
	// Symbol is the symbol id as sent by the authority, variant included.
	Symbol string
	// Asset is what gets drawn for Symbol.
	Asset symbols.AssetRef
	// Spinning is true while the reel animates.
	Spinning bool
	// SpinOffset delays the start of the spin animation. Cosmetic only.
	SpinOffset time.Duration
	Highlight  Highlight
}

// Grid holds Reels x Rows cells indexed [reel][row], row 0 at the top.
type Grid struct {
	mu       sync.RWMutex
	registry *symbols.Registry
	cells    [][]Cell
	reels    int
	rows     int
}

func New(reels, rows int, registry *symbols.Registry) *Grid {
	cells := make([][]Cell, reels)
	for i := range cells {
		cells[i] = make([]Cell, rows)
	}
	return &Grid{
		registry: registry,
		cells:    cells,
		reels:    reels,
		rows:     rows,
	}
}

func (g *Grid) Reels() int { return g.reels }

func (g *Grid) Rows() int { return g.rows }

func (g *Grid) check(reel, row int) error {
	if reel < 0 || reel >= g.reels || row < 0 || row >= g.rows {
		return fmt.Errorf("%w: reel %d row %d in %dx%d grid", ErrOutOfRange, reel, row, g.reels, g.rows)
	}
	return nil
}

// SetCell stores a symbol and its asset. An unknown symbol still lands with
// the placeholder asset; the returned error then wraps
// symbols.ErrUnknownSymbol so the caller can report it.
func (g *Grid) SetCell(reel, row int, symbolID string) error {
	if err := g.check(reel, row); err != nil {
		return err
	}
	asset, missErr := g.registry.AssetOrPlaceholder(symbolID)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.cells[reel][row].Symbol = symbolID
	g.cells[reel][row].Asset = asset
	if missErr != nil {
		return fmt.Errorf("placeholder at reel %d row %d: %w", reel, row, missErr)
	}
	return nil
}

func (g *Grid) SetSpinning(reel, row int, spinning bool) error {
	if err := g.check(reel, row); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cells[reel][row].Spinning = spinning
	return nil
}

// SetReelSpinning toggles every cell of a reel and records the animation
// start offset.
func (g *Grid) SetReelSpinning(reel int, spinning bool, offset time.Duration) error {
	if err := g.check(reel, 0); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for row := range g.cells[reel] {
		g.cells[reel][row].Spinning = spinning
		g.cells[reel][row].SpinOffset = offset
	}
	return nil
}

// SetReel renders a whole reel from the authority's result column. Every
// unknown symbol is still rendered and joined into the returned error.
func (g *Grid) SetReel(reel int, column []string) error {
	if len(column) != g.rows {
		return fmt.Errorf("%w: reel %d has %d symbols, want %d", ErrOutOfRange, reel, len(column), g.rows)
	}
	var misses []error
	for row, symbolID := range column {
		err := g.SetCell(reel, row, symbolID)
		if errors.Is(err, symbols.ErrUnknownSymbol) {
			misses = append(misses, err)
			continue
		}
		if err != nil {
			return err
		}
	}
	return errors.Join(misses...)
}

func (g *Grid) SetHighlight(reel, row int, h Highlight) error {
	if err := g.check(reel, row); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cells[reel][row].Highlight = h
	return nil
}

// ResetHighlights clears every cell to HighlightNone.
func (g *Grid) ResetHighlights() {
	g.setAll(HighlightNone)
}

// DimAllThenHighlight marks every cell NonWinning and then the given cells
// Winning. With no winning cells the whole grid ends up dimmed.
func (g *Grid) DimAllThenHighlight(winning []wins.Cell) error {
	for _, c := range winning {
		if err := g.check(c.Reel, c.Row); err != nil {
			return err
		}
	}
	g.setAll(HighlightNonWinning)

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range winning {
		g.cells[c.Reel][c.Row].Highlight = HighlightWinning
	}
	return nil
}

func (g *Grid) setAll(h Highlight) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for reel := range g.cells {
		for row := range g.cells[reel] {
			g.cells[reel][row].Highlight = h
		}
	}
}

// Cell returns a copy of one cell.
func (g *Grid) Cell(reel, row int) (Cell, error) {
	if err := g.check(reel, row); err != nil {
		return Cell{}, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cells[reel][row], nil
}

// Snapshot returns a deep copy of every cell.
func (g *Grid) Snapshot() [][]Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return lo.Map(g.cells, func(reel []Cell, _ int) []Cell {
		return append([]Cell(nil), reel...)
	})
}

// Symbols reads back the stored symbol ids, [reel][row].
func (g *Grid) Symbols() [][]string {
	return lo.Map(g.Snapshot(), func(reel []Cell, _ int) []string {
		return lo.Map(reel, func(c Cell, _ int) string { return c.Symbol })
	})
}

// Fill sets every cell from pick. Used for idle decoration.
func (g *Grid) Fill(pick func(reel, row int) string) {
	for reel := 0; reel < g.reels; reel++ {
		for row := 0; row < g.rows; row++ {
			if err := g.SetCell(reel, row, pick(reel, row)); err != nil {
				log.Warn("Failed to fill reel %d row %d: %v", reel, row, err)
			}
		}
	}
}
