package account

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Limits bounds the bet size.
type Limits struct {
	Min  decimal.Decimal
	Max  decimal.Decimal
	Step decimal.Decimal
}

// DefaultLimits allows bets from 5 to 100 in steps of 5.
func DefaultLimits() Limits {
	return Limits{
		Min:  decimal.NewFromInt(5),
		Max:  decimal.NewFromInt(100),
		Step: decimal.NewFromInt(5),
	}
}

// Clamp bounds a bet to [Min, Max].
func (l Limits) Clamp(bet decimal.Decimal) decimal.Decimal {
	if bet.LessThan(l.Min) {
		return l.Min
	}
	if bet.GreaterThan(l.Max) {
		return l.Max
	}
	return bet
}

// Align clamps a bet and snaps it to the nearest step counted from Min.
// A bet that would round past Max drops one step.
func (l Limits) Align(bet decimal.Decimal) decimal.Decimal {
	bet = l.Clamp(bet)
	if !l.Step.IsPositive() {
		return bet
	}
	steps := bet.Sub(l.Min).Div(l.Step).Round(0)
	aligned := l.Min.Add(steps.Mul(l.Step))
	if aligned.GreaterThan(l.Max) {
		aligned = aligned.Sub(l.Step)
	}
	return l.Clamp(aligned)
}

// Store holds the account state shown to the player. The client only ever
// changes the bet size; everything else comes from the authority.
type Store struct {
	mu     sync.RWMutex
	state  State
	limits Limits
}

// NewStore aligns the initial bet to the limits.
func NewStore(initial State, limits Limits) *Store {
	initial.BetSize = limits.Align(initial.BetSize)
	return &Store{
		state:  initial,
		limits: limits,
	}
}

// Limits returns the bet limits of the store.
func (s *Store) Limits() Limits {
	return s.limits
}

// Current returns a snapshot of the account state.
func (s *Store) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Replace overwrites the whole state with one confirmed by the authority.
func (s *Store) Replace(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// AdjustBet moves the bet by delta, aligned to the limits, and returns the
// stored bet. Out of range requests clamp silently.
func (s *Store) AdjustBet(delta decimal.Decimal) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.BetSize = s.limits.Align(s.state.BetSize.Add(delta))
	return s.state.BetSize
}

// IncreaseBet adjusts the bet up by one step.
func (s *Store) IncreaseBet() decimal.Decimal {
	return s.AdjustBet(s.limits.Step)
}

// DecreaseBet adjusts the bet down by one step.
func (s *Store) DecreaseBet() decimal.Decimal {
	return s.AdjustBet(s.limits.Step.Neg())
}
