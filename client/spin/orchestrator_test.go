package spin

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/cbodonnell/reels/client/flow"
	"github.com/cbodonnell/reels/client/network"
	"github.com/cbodonnell/reels/pkg/account"
	"github.com/cbodonnell/reels/pkg/grid"
	"github.com/cbodonnell/reels/pkg/log"
	"github.com/cbodonnell/reels/pkg/schedule"
	"github.com/cbodonnell/reels/pkg/symbols"
	"github.com/cbodonnell/reels/pkg/wins"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const settleAt = 2200 * time.Millisecond

type mockRequester struct {
	mock.Mock
}

func (m *mockRequester) RequestSpin(ctx context.Context, bet decimal.Decimal) (*network.SpinResponse, error) {
	args := m.Called(ctx, bet)
	resp, _ := args.Get(0).(*network.SpinResponse)
	return resp, args.Error(1)
}

type recordingDisplay struct {
	controlsEnabled bool
	account         account.State
	winMessage      string
	alerts          []string
}

func (d *recordingDisplay) SetControlsEnabled(enabled bool) { d.controlsEnabled = enabled }
func (d *recordingDisplay) ShowAccount(state account.State) { d.account = state }
func (d *recordingDisplay) ShowWinMessage(message string)   { d.winMessage = message }
func (d *recordingDisplay) Alert(message string)            { d.alerts = append(d.alerts, message) }

type harness struct {
	orchestrator *Orchestrator
	requester    *mockRequester
	scheduler    *schedule.Manual
	grid         *grid.Grid
	account      *account.Store
	display      *recordingDisplay
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newHarness(t *testing.T, balance, bet string) *harness {
	t.Helper()
	h := &harness{
		requester: &mockRequester{},
		scheduler: schedule.NewManual(),
		grid:      grid.New(5, 3, symbols.Default()),
		account:   account.NewStore(account.State{Balance: dec(balance), BetSize: dec(bet)}, account.DefaultLimits()),
		display:   &recordingDisplay{controlsEnabled: true},
	}
	h.grid.Fill(func(_, _ int) string { return "diamond" })
	h.orchestrator = NewOrchestrator(OrchestratorOptions{
		Timings:   DefaultTimings(),
		Account:   h.account,
		Grid:      h.grid,
		Requester: h.requester,
		Scheduler: h.scheduler,
		Display:   h.display,
		Logger:    log.New(io.Discard, log.FormatJSON, log.LogLevelError),
	})
	return h
}

func (h *harness) expectSpin(bet string, resp *network.SpinResponse, err error) *mock.Call {
	return h.requester.On("RequestSpin", mock.Anything, mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(dec(bet))
	})).Return(resp, err)
}

var sevens = [][]string{
	{"seven", "floppy", "hourglass"},
	{"floppy", "telephone", "hourglass"},
	{"hourglass", "floppy", "seven_gold"},
	{"telephone", "floppy", "diamond"},
	{"hourglass", "telephone", "diamond"},
}

func outcome(payout, balance, bet string, winData wins.Description) *network.SpinResponse {
	return &network.SpinResponse{
		Result:  sevens,
		WinData: winData,
		Payout:  dec(payout),
		Player:  account.State{Balance: dec(balance), BetSize: dec(bet)},
	}
}

func (h *harness) highlights() map[grid.Highlight]int {
	counts := map[grid.Highlight]int{}
	for _, column := range h.grid.Snapshot() {
		for _, cell := range column {
			counts[cell.Highlight]++
		}
	}
	return counts
}

func (h *harness) anySpinning() bool {
	for _, column := range h.grid.Snapshot() {
		for _, cell := range column {
			if cell.Spinning {
				return true
			}
		}
	}
	return false
}

func TestOrchestrator_insufficientBalance(t *testing.T) {
	h := newHarness(t, "10", "20")

	err := h.orchestrator.Trigger(context.Background())

	var insufficient *InsufficientBalanceError
	require.True(t, errors.As(err, &insufficient))
	assert.True(t, IsUserError(err))
	assert.Equal(t, []string{MessageInsufficientBalance}, h.display.alerts)
	assert.Equal(t, flow.SpinStateIdle, h.orchestrator.State())
	assert.True(t, h.display.controlsEnabled)
	assert.Equal(t, 0, h.scheduler.Pending())
	assert.False(t, h.anySpinning())
	h.requester.AssertNotCalled(t, "RequestSpin", mock.Anything, mock.Anything)
}

func TestOrchestrator_triggerLocksSynchronously(t *testing.T) {
	h := newHarness(t, "1000", "25")
	h.expectSpin("25", outcome("0", "975", "25", nil), nil).Once()

	require.NoError(t, h.orchestrator.Trigger(context.Background()))
	assert.Equal(t, flow.SpinStateSpinning, h.orchestrator.State())
	assert.False(t, h.display.controlsEnabled)
	assert.NotEmpty(t, h.orchestrator.SpinID())

	for reel, column := range h.grid.Snapshot() {
		for _, cell := range column {
			assert.True(t, cell.Spinning)
			assert.Equal(t, time.Duration(reel)*50*time.Millisecond, cell.SpinOffset)
		}
	}

	// rapid re-trigger before the response is handled
	err := h.orchestrator.Trigger(context.Background())
	assert.ErrorIs(t, err, ErrSpinInProgress)
	assert.True(t, IsUserError(err))
	h.requester.AssertNumberOfCalls(t, "RequestSpin", 1)
}

func TestOrchestrator_reelsStopInOrder(t *testing.T) {
	h := newHarness(t, "1000", "25")
	h.expectSpin("25", outcome("0", "975", "25", nil), nil).Once()

	require.NoError(t, h.orchestrator.Trigger(context.Background()))
	h.scheduler.Flush()
	assert.Equal(t, flow.SpinStateStopping, h.orchestrator.State())

	for reel := 0; reel < 5; reel++ {
		stopAt := time.Duration(500+300*reel) * time.Millisecond
		h.scheduler.Advance(stopAt - h.scheduler.Now() - time.Millisecond)
		cell, err := h.grid.Cell(reel, 0)
		require.NoError(t, err)
		assert.True(t, cell.Spinning, "reel %d stopped early", reel)
		assert.Equal(t, "diamond", cell.Symbol)

		h.scheduler.Advance(time.Millisecond)
		for row := 0; row < 3; row++ {
			cell, err := h.grid.Cell(reel, row)
			require.NoError(t, err)
			assert.False(t, cell.Spinning)
			assert.Equal(t, sevens[reel][row], cell.Symbol)
		}
		assert.Equal(t, reel, h.orchestrator.Reel())
		assert.Equal(t, flow.SpinStateStopping, h.orchestrator.State())
		assert.False(t, h.display.controlsEnabled)
	}

	h.scheduler.Advance(settleAt - h.scheduler.Now() - time.Millisecond)
	assert.Equal(t, flow.SpinStateStopping, h.orchestrator.State())
	h.scheduler.Advance(time.Millisecond)
	assert.Equal(t, flow.SpinStateIdle, h.orchestrator.State())
	assert.True(t, h.display.controlsEnabled)
	assert.Equal(t, sevens, h.grid.Symbols())
}

func TestOrchestrator_accountReplacedOnArrival(t *testing.T) {
	h := newHarness(t, "1000", "25")
	h.expectSpin("25", outcome("0", "975.00", "25.00", nil), nil).Once()

	require.NoError(t, h.orchestrator.Trigger(context.Background()))
	assert.Equal(t, "1000.00", h.orchestrator.Account().BalanceString())

	h.scheduler.Flush()
	assert.Equal(t, "975.00", h.orchestrator.Account().BalanceString())
	assert.Equal(t, "975.00", h.display.account.BalanceString())
	assert.True(t, h.anySpinning())
}

func TestOrchestrator_noWinsDimsEverything(t *testing.T) {
	h := newHarness(t, "1000", "25")
	h.expectSpin("25", outcome("0", "975", "25", nil), nil).Once()

	require.NoError(t, h.orchestrator.Trigger(context.Background()))
	h.scheduler.Advance(10 * time.Second)

	assert.Equal(t, map[grid.Highlight]int{grid.HighlightNonWinning: 15}, h.highlights())
	assert.Empty(t, h.display.winMessage)
	assert.Empty(t, h.display.alerts)
	h.requester.AssertExpectations(t)
}

func TestOrchestrator_highlightsTranslatedCells(t *testing.T) {
	h := newHarness(t, "1000", "25")
	h.expectSpin("25", outcome("0", "975", "25", wins.Description{
		{BackendRow: 1, Symbol: "seven", Columns: []int{2}},
	}), nil).Once()

	require.NoError(t, h.orchestrator.Trigger(context.Background()))
	h.scheduler.Flush()
	h.scheduler.Advance(settleAt - time.Millisecond)
	assert.Equal(t, map[grid.Highlight]int{grid.HighlightNone: 15}, h.highlights())

	h.scheduler.Advance(time.Millisecond)
	cell, err := h.grid.Cell(2, 2)
	require.NoError(t, err)
	assert.Equal(t, grid.HighlightWinning, cell.Highlight)
	assert.Equal(t, map[grid.Highlight]int{grid.HighlightWinning: 1, grid.HighlightNonWinning: 14}, h.highlights())
}

func TestOrchestrator_winMessage(t *testing.T) {
	tests := []struct {
		name       string
		winMessage time.Duration
		wantAt     time.Duration
	}{
		{name: "after settle", winMessage: 2500 * time.Millisecond, wantAt: 2500 * time.Millisecond},
		{name: "never before settle", winMessage: 100 * time.Millisecond, wantAt: settleAt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "1000", "25")
			h.orchestrator.timings.WinMessage = tt.winMessage
			h.expectSpin("25", outcome("12.5", "987.50", "25", wins.Description{
				{BackendRow: 2, Symbol: "floppy", Columns: []int{0, 1, 2, 3}},
			}), nil).Once()

			require.NoError(t, h.orchestrator.Trigger(context.Background()))
			h.scheduler.Flush()
			h.scheduler.Advance(tt.wantAt - time.Millisecond)
			assert.Empty(t, h.display.winMessage)

			h.scheduler.Advance(time.Millisecond)
			assert.Equal(t, "WIN! $12.50", h.display.winMessage)
			assert.Equal(t, flow.SpinStateIdle, h.orchestrator.State())
		})
	}
}

func TestOrchestrator_newSpinClearsWinMessage(t *testing.T) {
	h := newHarness(t, "1000", "25")
	h.expectSpin("25", outcome("50", "1025", "25", wins.Description{
		{BackendRow: 3, Symbol: "seven", Columns: []int{0, 1, 2}},
	}), nil).Once()
	h.expectSpin("25", outcome("0", "1000", "25", nil), nil).Once()

	require.NoError(t, h.orchestrator.Trigger(context.Background()))
	h.scheduler.Advance(settleAt)
	require.Equal(t, flow.SpinStateIdle, h.orchestrator.State())

	// second spin starts before the first win message is due
	require.NoError(t, h.orchestrator.Trigger(context.Background()))
	assert.Empty(t, h.display.winMessage)
	h.scheduler.Advance(10 * time.Second)
	assert.Empty(t, h.display.winMessage)
	h.requester.AssertExpectations(t)
}

func TestOrchestrator_transportFailure(t *testing.T) {
	h := newHarness(t, "1000", "25")
	before := h.grid.Symbols()
	h.expectSpin("25", nil, &network.TransportError{StatusCode: 500, Message: "boom"}).Once()

	require.NoError(t, h.orchestrator.Trigger(context.Background()))
	h.scheduler.Flush()
	assert.Equal(t, flow.SpinStateAborting, h.orchestrator.State())
	assert.Equal(t, []string{MessageTransportError}, h.display.alerts)

	h.scheduler.Advance(1700*time.Millisecond - time.Millisecond)
	assert.Equal(t, flow.SpinStateAborting, h.orchestrator.State())
	assert.False(t, h.display.controlsEnabled)
	cell, _ := h.grid.Cell(4, 0)
	assert.True(t, cell.Spinning)

	h.scheduler.Advance(time.Millisecond)
	assert.Equal(t, flow.SpinStateIdle, h.orchestrator.State())
	assert.True(t, h.display.controlsEnabled)
	assert.False(t, h.anySpinning())
	assert.Equal(t, before, h.grid.Symbols())
	assert.Equal(t, "1000.00", h.orchestrator.Account().BalanceString())
	assert.Equal(t, map[grid.Highlight]int{grid.HighlightNone: 15}, h.highlights())
	assert.Equal(t, 0, h.scheduler.Pending())
}

func TestOrchestrator_malformedWinData(t *testing.T) {
	tests := []struct {
		name string
		resp *network.SpinResponse
	}{
		{
			name: "row out of range",
			resp: outcome("10", "985", "25", wins.Description{{BackendRow: 0, Symbol: "seven", Columns: []int{0, 1, 2}}}),
		},
		{
			name: "column out of range",
			resp: outcome("10", "985", "25", wins.Description{{BackendRow: 1, Symbol: "seven", Columns: []int{3, 4, 5}}}),
		},
		{
			name: "undecodable",
			resp: func() *network.SpinResponse {
				resp := outcome("10", "985", "25", nil)
				resp.WinDataErr = &wins.MalformedWinDataError{Reason: "row key \"x\" is not an integer"}
				return resp
			}(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "1000", "25")
			h.expectSpin("25", tt.resp, nil).Once()

			require.NoError(t, h.orchestrator.Trigger(context.Background()))
			h.scheduler.Advance(10 * time.Second)

			assert.Equal(t, flow.SpinStateIdle, h.orchestrator.State())
			assert.True(t, h.display.controlsEnabled)
			assert.Equal(t, []string{MessageInvalidResult}, h.display.alerts)
			assert.Equal(t, map[grid.Highlight]int{grid.HighlightNone: 15}, h.highlights())
			assert.Equal(t, sevens, h.grid.Symbols())
			assert.Equal(t, "985.00", h.orchestrator.Account().BalanceString())
		})
	}
}

func TestOrchestrator_malformedResultShape(t *testing.T) {
	short := outcome("0", "975", "25", nil)
	short.Result = sevens[:4]

	tests := []struct {
		name string
		resp *network.SpinResponse
		err  error
	}{
		{
			name: "short result reaches the orchestrator",
			resp: short,
		},
		{
			name: "client rejects the shape",
			err: &network.TransportError{
				StatusCode: 200,
				Err:        &network.MalformedResultError{Reason: "got 4 reels, want 5"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "1000", "25")
			before := h.grid.Symbols()
			h.expectSpin("25", tt.resp, tt.err).Once()

			require.NoError(t, h.orchestrator.Trigger(context.Background()))
			h.scheduler.Advance(10 * time.Second)

			assert.Equal(t, flow.SpinStateIdle, h.orchestrator.State())
			assert.True(t, h.display.controlsEnabled)
			assert.Equal(t, []string{MessageTransportError}, h.display.alerts)
			assert.Equal(t, before, h.grid.Symbols())
			assert.False(t, h.anySpinning())
			assert.Equal(t, "1000.00", h.orchestrator.Account().BalanceString(), "account is untouched")
			assert.Zero(t, h.display.account, "no account update is shown")
		})
	}
}

func TestOrchestrator_unknownSymbolIsLoggedWithSpin(t *testing.T) {
	h := newHarness(t, "1000", "25")
	buf := &bytes.Buffer{}
	h.orchestrator = NewOrchestrator(OrchestratorOptions{
		Timings:   DefaultTimings(),
		Account:   h.account,
		Grid:      h.grid,
		Requester: h.requester,
		Scheduler: h.scheduler,
		Display:   h.display,
		Logger:    log.New(buf, log.FormatJSON, log.LogLevelWarn),
	})
	resp := outcome("0", "975", "25", nil)
	resp.Result = [][]string{
		{"seven", "floppy", "hourglass"},
		{"floppy", "telephone", "hourglass"},
		{"seven", "cherry", "floppy"},
		{"telephone", "hourglass", "floppy"},
		{"hourglass", "floppy", "telephone"},
	}
	h.expectSpin("25", resp, nil).Once()

	require.NoError(t, h.orchestrator.Trigger(context.Background()))
	spinID := h.orchestrator.SpinID()
	h.scheduler.Advance(10 * time.Second)

	cell, err := h.grid.Cell(2, 1)
	require.NoError(t, err)
	assert.Equal(t, "cherry", cell.Symbol)
	assert.Equal(t, symbols.Placeholder, cell.Asset)
	assert.Empty(t, h.display.alerts)

	var warning string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "placeholder") {
			warning = line
		}
	}
	require.NotEmpty(t, warning, "placeholder warning logged")
	assert.Contains(t, warning, `"spin_id":"`+spinID+`"`)
	assert.Contains(t, warning, `"level":"warn"`)
}

func TestOrchestrator_AdjustBet(t *testing.T) {
	h := newHarness(t, "1000", "25")
	h.expectSpin("30", outcome("0", "970", "30", nil), nil).Once()

	assert.True(t, h.orchestrator.AdjustBet(dec("5")).Equal(dec("30")))
	assert.Equal(t, "30.00", h.display.account.BetString())

	require.NoError(t, h.orchestrator.Trigger(context.Background()))
	assert.True(t, h.orchestrator.AdjustBet(dec("5")).Equal(dec("30")), "adjustment during a spin is ignored")
	assert.True(t, h.orchestrator.AdjustBet(dec("-50")).Equal(dec("30")))

	h.scheduler.Advance(10 * time.Second)
	assert.True(t, h.orchestrator.AdjustBet(dec("500")).Equal(dec("100")))
	h.requester.AssertExpectations(t)
}

func TestOrchestrator_staleOutcomeIsDropped(t *testing.T) {
	h := newHarness(t, "1000", "25")
	h.orchestrator.handleOutcome("not-a-spin", outcome("0", "1", "5", nil), nil)

	assert.Equal(t, flow.SpinStateIdle, h.orchestrator.State())
	assert.Equal(t, "1000.00", h.orchestrator.Account().BalanceString())
	assert.Equal(t, 0, h.scheduler.Pending())
}
