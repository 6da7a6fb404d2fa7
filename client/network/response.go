package network

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/cbodonnell/reels/pkg/account"
	"github.com/cbodonnell/reels/pkg/wins"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SpinRequest is the body of POST /api/spin/.
type SpinRequest struct {
	BetSize string `json:"bet_size"`
}

// SpinResponse is the authority's outcome for one spin.
type SpinResponse struct {
	// Result holds the symbol ids indexed [reel][row].
	Result [][]string
	// WinData is nil when the authority reported no wins or when the
	// description could not be decoded, see WinDataErr.
	WinData wins.Description
	// WinDataErr is set when win_data was present but malformed.
	WinDataErr error
	Payout     decimal.Decimal
	Player     account.State
	// MachineBalance is nil when the authority does not report it.
	MachineBalance *decimal.Decimal
}

type wireSpinResponse struct {
	Result         jsoniter.RawMessage `json:"result"`
	WinData        jsoniter.RawMessage `json:"win_data"`
	Payout         decimal.Decimal     `json:"payout"`
	Player         *account.State      `json:"player_data"`
	MachineBalance *decimal.Decimal    `json:"machine_balance"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// DecodeSpinResponse decodes a 2xx body. A malformed win_data does not fail
// the decode: the result and account are still authoritative.
func DecodeSpinResponse(body []byte) (*SpinResponse, error) {
	wire := &wireSpinResponse{}
	if err := json.Unmarshal(body, wire); err != nil {
		return nil, fmt.Errorf("failed to decode spin response: %w", err)
	}
	if wire.Player == nil {
		return nil, fmt.Errorf("spin response is missing player_data")
	}
	result, err := decodeResult(wire.Result)
	if err != nil {
		return nil, err
	}

	resp := &SpinResponse{
		Result:         result,
		Payout:         wire.Payout,
		Player:         *wire.Player,
		MachineBalance: wire.MachineBalance,
	}
	resp.WinData, resp.WinDataErr = wins.Decode(wire.WinData)
	return resp, nil
}

// decodeResult accepts either an array of reels or an object keyed by reel
// index ("0", "1", ...).
func decodeResult(raw jsoniter.RawMessage) ([][]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("spin response is missing result")
	}

	if trimmed[0] == '[' {
		result := [][]string{}
		if err := json.Unmarshal(trimmed, &result); err != nil {
			return nil, fmt.Errorf("failed to decode result: %w", err)
		}
		return result, nil
	}

	byReel := map[string][]string{}
	if err := json.Unmarshal(trimmed, &byReel); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	indices := make([]int, 0, len(byReel))
	for key := range byReel {
		idx, err := strconv.Atoi(key)
		if err != nil {
			return nil, &MalformedResultError{Reason: fmt.Sprintf("result key %q is not a reel index", key)}
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	result := make([][]string, len(indices))
	for i, idx := range indices {
		if idx != i {
			return nil, &MalformedResultError{Reason: fmt.Sprintf("result reels are not contiguous: missing reel %d", i)}
		}
		result[i] = byReel[strconv.Itoa(idx)]
	}
	return result, nil
}

// Validate checks the result grid against the machine's shape.
func (r *SpinResponse) Validate(reels, rows int) error {
	if len(r.Result) != reels {
		return &MalformedResultError{Reason: fmt.Sprintf("got %d reels, want %d", len(r.Result), reels)}
	}
	for i, column := range r.Result {
		if len(column) != rows {
			return &MalformedResultError{Reason: fmt.Sprintf("reel %d has %d rows, want %d", i, len(column), rows)}
		}
	}
	return nil
}
