// Package spin drives one spin at a time from trigger to settle. All methods
// must be called from the goroutine that runs the scheduler's actions.
package spin

import (
	"context"
	"errors"
	"time"

	"github.com/cbodonnell/reels/client/flow"
	"github.com/cbodonnell/reels/client/network"
	"github.com/cbodonnell/reels/pkg/account"
	"github.com/cbodonnell/reels/pkg/grid"
	"github.com/cbodonnell/reels/pkg/log"
	"github.com/cbodonnell/reels/pkg/schedule"
	"github.com/cbodonnell/reels/pkg/symbols"
	"github.com/cbodonnell/reels/pkg/wins"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Timings are the delays of the spin sequence.
type Timings struct {
	// StartStagger offsets each reel's spin animation by StartStagger x reel.
	StartStagger time.Duration
	// Reel i stops StopBase + StopStagger x i after the response arrives.
	StopBase    time.Duration
	StopStagger time.Duration
	// Settle is the pause between the last stop and the highlight pass.
	Settle time.Duration
	// WinMessage is the delay from response arrival to the win message.
	// The message never appears before the highlight pass.
	WinMessage time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		StartStagger: 50 * time.Millisecond,
		StopBase:     500 * time.Millisecond,
		StopStagger:  300 * time.Millisecond,
		Settle:       500 * time.Millisecond,
		WinMessage:   2500 * time.Millisecond,
	}
}

func (t Timings) stopDelay(reel int) time.Duration {
	return t.StopBase + time.Duration(reel)*t.StopStagger
}

// OutcomeRequester asks the authority for a spin outcome.
type OutcomeRequester interface {
	RequestSpin(ctx context.Context, bet decimal.Decimal) (*network.SpinResponse, error)
}

// Display is what the orchestrator shows the player besides the grid.
type Display interface {
	SetControlsEnabled(enabled bool)
	ShowAccount(state account.State)
	// ShowWinMessage replaces the win message. An empty string clears it.
	ShowWinMessage(message string)
	Alert(message string)
}

type OrchestratorOptions struct {
	Timings   Timings
	Account   *account.Store
	Grid      *grid.Grid
	Requester OutcomeRequester
	Scheduler schedule.Scheduler
	Display   Display
	Logger    *log.Logger
}

type Orchestrator struct {
	timings    Timings
	account    *account.Store
	grid       *grid.Grid
	translator wins.Translator
	requester  OutcomeRequester
	scheduler  schedule.Scheduler
	display    Display
	baseLogger *log.Logger

	state  flow.SpinState
	spinID string
	// reel is the reel currently stopping or aborting.
	reel   int
	logger *log.Logger
}

func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		timings: opts.Timings,
		account: opts.Account,
		grid:    opts.Grid,
		translator: wins.Translator{
			Reels: opts.Grid.Reels(),
			Rows:  opts.Grid.Rows(),
		},
		requester:  opts.Requester,
		scheduler:  opts.Scheduler,
		display:    opts.Display,
		baseLogger: logger,
		logger:     logger,
	}
}

func (o *Orchestrator) State() flow.SpinState {
	return o.state
}

// SpinID identifies the current or last spin in logs. Empty before the first spin.
func (o *Orchestrator) SpinID() string {
	return o.spinID
}

// Reel returns the reel last stopped or aborted.
func (o *Orchestrator) Reel() int {
	return o.reel
}

func (o *Orchestrator) Account() account.State {
	return o.account.Current()
}

// AdjustBet changes the bet by delta within the limits. It is ignored while
// a spin is in flight and returns the bet in effect.
func (o *Orchestrator) AdjustBet(delta decimal.Decimal) decimal.Decimal {
	if o.state.Busy() {
		o.logger.Debug("Ignoring bet adjustment while %s", o.state)
		return o.account.Current().BetSize
	}
	bet := o.account.AdjustBet(delta)
	o.display.ShowAccount(o.account.Current())
	return bet
}

// Trigger starts a spin. It returns ErrSpinInProgress when a spin is already
// in flight and *InsufficientBalanceError when the balance does not cover
// the bet. Both leave everything unchanged.
func (o *Orchestrator) Trigger(ctx context.Context) error {
	if o.state.Busy() {
		return ErrSpinInProgress
	}

	current := o.account.Current()
	if !current.CanAfford() {
		o.display.Alert(MessageInsufficientBalance)
		return &InsufficientBalanceError{Balance: current.Balance, BetSize: current.BetSize}
	}

	o.state = flow.SpinStateLocked
	o.spinID = uuid.New().String()
	o.logger = o.baseLogger.With("spin_id", o.spinID)
	o.logger.Debug("Spin triggered with bet %s", current.BetString())

	o.display.SetControlsEnabled(false)
	o.display.ShowWinMessage("")
	o.grid.ResetHighlights()
	for reel := 0; reel < o.grid.Reels(); reel++ {
		if err := o.grid.SetReelSpinning(reel, true, time.Duration(reel)*o.timings.StartStagger); err != nil {
			o.logger.Error("Failed to start reel %d: %v", reel, err)
		}
	}

	o.state = flow.SpinStateSpinning
	bet := current.BetSize
	spinID := o.spinID
	o.scheduler.Go(func() func() {
		resp, err := o.requester.RequestSpin(ctx, bet)
		return func() {
			o.handleOutcome(spinID, resp, err)
		}
	})
	return nil
}

func (o *Orchestrator) handleOutcome(spinID string, resp *network.SpinResponse, err error) {
	if spinID != o.spinID || o.state != flow.SpinStateSpinning {
		o.logger.Warn("Dropping outcome for stale spin %s", spinID)
		return
	}
	if err != nil {
		o.logger.Error("Spin request failed: %v", err)
		o.abort(MessageTransportError)
		return
	}

	// a result that cannot be rendered fails the spin before the account moves
	if err := resp.Validate(o.grid.Reels(), o.grid.Rows()); err != nil {
		o.logger.Error("Authority contract violation: %v", err)
		o.abort(MessageTransportError)
		return
	}

	o.account.Replace(resp.Player)
	o.display.ShowAccount(resp.Player)

	cells, winErr := o.resolveWins(resp)
	if winErr != nil {
		o.logger.Error("Authority contract violation: %v", winErr)
	}

	o.state = flow.SpinStateStopping
	steps := make([]schedule.Step, 0, len(resp.Result)+2)
	for reel, column := range resp.Result {
		reel, column := reel, column
		steps = append(steps, schedule.Step{
			Delay:  o.timings.stopDelay(reel),
			Action: func() { o.stopReel(reel, column) },
		})
	}
	settleAt := o.timings.stopDelay(len(resp.Result)-1) + o.timings.Settle
	steps = append(steps, schedule.Step{
		Delay:  settleAt,
		Action: func() { o.settle(cells, winErr) },
	})
	if resp.Payout.IsPositive() {
		message := "WIN! $" + resp.Payout.StringFixed(2)
		steps = append(steps, schedule.Step{
			Delay: maxDuration(o.timings.WinMessage, settleAt),
			Action: func() {
				if o.spinID != spinID {
					return
				}
				o.display.ShowWinMessage(message)
			},
		})
	}
	o.scheduler.Submit(steps...)
}

// resolveWins translates the win description into grid cells. Any problem
// with it fails the whole description.
func (o *Orchestrator) resolveWins(resp *network.SpinResponse) ([]wins.Cell, error) {
	if resp.WinDataErr != nil {
		return nil, resp.WinDataErr
	}
	if resp.WinData == nil {
		return nil, nil
	}
	return o.translator.Cells(resp.WinData)
}

func (o *Orchestrator) stopReel(reel int, column []string) {
	o.reel = reel
	if err := o.grid.SetReel(reel, column); errors.Is(err, symbols.ErrUnknownSymbol) {
		o.logger.Warn("Rendering placeholder on reel %d: %v", reel, err)
	} else if err != nil {
		o.logger.Error("Failed to render reel %d: %v", reel, err)
	}
	if err := o.grid.SetReelSpinning(reel, false, 0); err != nil {
		o.logger.Error("Failed to stop reel %d: %v", reel, err)
	}
	o.logger.Trace("Reel %d stopped", reel)
}

func (o *Orchestrator) settle(cells []wins.Cell, winErr error) {
	o.state = flow.SpinStateSettling
	if winErr != nil {
		o.grid.ResetHighlights()
		o.display.Alert(MessageInvalidResult)
	} else if err := o.grid.DimAllThenHighlight(cells); err != nil {
		o.logger.Error("Failed to highlight wins: %v", err)
		o.grid.ResetHighlights()
	}
	o.display.SetControlsEnabled(true)
	o.state = flow.SpinStateIdle
	o.logger.Debug("Spin settled with %d winning cells", len(cells))
}

// abort stops every reel on the usual stagger without touching the symbols
// and unlocks after the last one.
func (o *Orchestrator) abort(message string) {
	o.state = flow.SpinStateAborting
	o.display.Alert(message)

	reels := o.grid.Reels()
	steps := make([]schedule.Step, 0, reels)
	for reel := 0; reel < reels; reel++ {
		reel := reel
		steps = append(steps, schedule.Step{
			Delay: o.timings.stopDelay(reel),
			Action: func() {
				o.reel = reel
				if err := o.grid.SetReelSpinning(reel, false, 0); err != nil {
					o.logger.Error("Failed to stop reel %d: %v", reel, err)
				}
				if reel == reels-1 {
					o.display.SetControlsEnabled(true)
					o.state = flow.SpinStateIdle
					o.logger.Debug("Spin aborted")
				}
			},
		})
	}
	o.scheduler.Submit(steps...)
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

// IsUserError reports whether err from Trigger is a refusal the player
// already saw, as opposed to a fault.
func IsUserError(err error) bool {
	var insufficient *InsufficientBalanceError
	return errors.Is(err, ErrSpinInProgress) || errors.As(err, &insufficient)
}
