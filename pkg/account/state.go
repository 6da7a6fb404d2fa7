package account

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// State is the player's account as last confirmed by the authority.
type State struct {
	Balance decimal.Decimal
	BetSize decimal.Decimal

	// Statistics reported alongside the balance. LastPayout is nil when the
	// authority reports no previous payout.
	LastPayout *decimal.Decimal
	TotalWon   decimal.Decimal
	TotalWager decimal.Decimal
}

// BalanceString formats the balance with two decimals.
func (s State) BalanceString() string {
	return s.Balance.StringFixed(2)
}

// BetString formats the bet size with two decimals.
func (s State) BetString() string {
	return s.BetSize.StringFixed(2)
}

// CanAfford reports whether the balance covers one bet.
func (s State) CanAfford() bool {
	return !s.Balance.LessThan(s.BetSize)
}

// Equal compares two states by value.
func (s State) Equal(other State) bool {
	if !s.Balance.Equal(other.Balance) || !s.BetSize.Equal(other.BetSize) {
		return false
	}
	if !s.TotalWon.Equal(other.TotalWon) || !s.TotalWager.Equal(other.TotalWager) {
		return false
	}
	if (s.LastPayout == nil) != (other.LastPayout == nil) {
		return false
	}
	return s.LastPayout == nil || s.LastPayout.Equal(*other.LastPayout)
}

type wireState struct {
	Balance    jsoniter.RawMessage `json:"balance"`
	BetSize    jsoniter.RawMessage `json:"bet_size"`
	BetSizeAlt jsoniter.RawMessage `json:"betSize"`
	LastPayout jsoniter.RawMessage `json:"last_payout"`
	TotalWon   jsoniter.RawMessage `json:"total_won"`
	TotalWager jsoniter.RawMessage `json:"total_wager"`
}

// UnmarshalJSON accepts the authority's player_data object. Amounts may be
// strings or numbers; the bet may be keyed bet_size or betSize.
func (s *State) UnmarshalJSON(data []byte) error {
	var w wireState
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	balance, err := parseAmount("balance", w.Balance, true)
	if err != nil {
		return err
	}
	betRaw := w.BetSize
	if len(betRaw) == 0 {
		betRaw = w.BetSizeAlt
	}
	bet, err := parseAmount("bet_size", betRaw, true)
	if err != nil {
		return err
	}
	totalWon, err := parseAmount("total_won", w.TotalWon, false)
	if err != nil {
		return err
	}
	totalWager, err := parseAmount("total_wager", w.TotalWager, false)
	if err != nil {
		return err
	}

	var lastPayout *decimal.Decimal
	if isPresent(w.LastPayout) && !bytes.Equal(w.LastPayout, []byte(`"N/A"`)) {
		v, err := parseAmount("last_payout", w.LastPayout, true)
		if err != nil {
			return err
		}
		lastPayout = &v
	}

	*s = State{
		Balance:    balance,
		BetSize:    bet,
		LastPayout: lastPayout,
		TotalWon:   totalWon,
		TotalWager: totalWager,
	}
	return nil
}

// MarshalJSON writes the same shape the authority sends.
func (s State) MarshalJSON() ([]byte, error) {
	out := map[string]string{
		"balance":     s.BalanceString(),
		"bet_size":    s.BetString(),
		"total_won":   s.TotalWon.StringFixed(2),
		"total_wager": s.TotalWager.StringFixed(2),
		"last_payout": "N/A",
	}
	if s.LastPayout != nil {
		out["last_payout"] = s.LastPayout.StringFixed(2)
	}
	return json.Marshal(out)
}

func isPresent(raw jsoniter.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

func parseAmount(field string, raw jsoniter.RawMessage, required bool) (decimal.Decimal, error) {
	if !isPresent(raw) {
		if required {
			return decimal.Zero, fmt.Errorf("missing %s", field)
		}
		return decimal.Zero, nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", field, err)
	}
	return d, nil
}
