package spin

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	MessageInsufficientBalance = "Insufficient balance to place bet!"
	MessageTransportError      = "An error occurred. Please try again."
	MessageInvalidResult       = "Received an invalid result from the server."
)

// ErrSpinInProgress is returned by Trigger while a spin is in flight.
var ErrSpinInProgress = errors.New("spin in progress")

// InsufficientBalanceError is returned by Trigger when the balance does not
// cover the bet. No request is sent.
type InsufficientBalanceError struct {
	Balance decimal.Decimal
	BetSize decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: %s < %s", e.Balance.StringFixed(2), e.BetSize.StringFixed(2))
}
