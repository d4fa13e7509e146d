package natsledger

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/nats-io/nats.go"

	"teenpatti-client/pkg/cards"
	"teenpatti-client/pkg/ledger"
)

// request is the JSON envelope of every command and query. Unused fields are
// omitted per subject; ID lets the broker dedupe retried commands.
type request struct {
	ID        string         `json:"id"`
	From      string         `json:"from"`
	GameID    ledger.GameID  `json:"gameId,omitempty"`
	Amount    dcrutil.Amount `json:"amount,omitempty"`
	PlayBlind bool           `json:"playBlind,omitempty"`
}

// wireError is the structured rejection in a response envelope.
type wireError struct {
	Code   string `json:"code"`
	Reason string `json:"reason,omitempty"`
}

// response is the JSON envelope of every reply. Result carries the
// subject-specific payload when OK.
type response struct {
	OK     bool            `json:"ok"`
	Error  *wireError      `json:"error,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

// Error codes a ledger broker may return.
const (
	codeNotFound          = "not_found"
	codeRejected          = "rejected"
	codeInsufficientFunds = "insufficient_funds"
	codeUserRejected      = "user_rejected"
	codeCardsNotDealt     = "cards_not_dealt"
)

type createResult struct {
	GameID ledger.GameID `json:"gameId"`
}

type cardsResult struct {
	Cards []cards.Card `json:"cards"`
}

// decodeResponse unwraps a reply envelope, mapping structured rejections onto
// the ledger error taxonomy. A nil out skips result decoding.
func decodeResponse(data []byte, out any) error {
	var resp response
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("malformed ledger reply: %w", err)
	}
	if !resp.OK {
		return mapWireError(resp.Error)
	}
	if out == nil {
		return nil
	}
	if len(resp.Result) == 0 {
		return fmt.Errorf("ledger reply missing result")
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("malformed ledger result: %w", err)
	}
	return nil
}

// mapWireError translates a broker error code into the taxonomy callers match
// on. Unknown codes become remote rejections so their reason survives.
func mapWireError(we *wireError) error {
	if we == nil {
		return ledger.NewRemoteError("")
	}
	switch we.Code {
	case codeNotFound:
		return ledger.ErrGameNotFound
	case codeInsufficientFunds:
		return ledger.ErrInsufficientFunds
	case codeUserRejected:
		return ledger.ErrUserRejected
	case codeCardsNotDealt:
		return ledger.ErrCardsNotDealt
	default:
		return ledger.NewRemoteError(we.Reason)
	}
}

// mapTransportError classifies request transport failures. Timeouts, missing
// responders and closed connections all mean the ledger cannot be reached
// right now.
func mapTransportError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, nats.ErrTimeout),
		errors.Is(err, nats.ErrNoResponders),
		errors.Is(err, nats.ErrConnectionClosed),
		errors.Is(err, nats.ErrConnectionDraining):
		return fmt.Errorf("%w: %v", ledger.ErrLedgerUnavailable, err)
	default:
		return err
	}
}
