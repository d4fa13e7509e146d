package ledger

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes every Gateway implementation must
// map remote outcomes onto. Callers match them with errors.Is.
var (
	// ErrGameNotFound means the queried game id does not exist on the
	// ledger.
	ErrGameNotFound = errors.New("game not found")

	// ErrLedgerUnavailable means the gateway could not reach the ledger.
	// The condition is transient; the next scheduled refresh retries.
	ErrLedgerUnavailable = errors.New("ledger unavailable")

	// ErrUserRejected means the signing party declined to authorize the
	// command. No state changed anywhere.
	ErrUserRejected = errors.New("rejected by user")

	// ErrInsufficientFunds means the caller's balance cannot cover the
	// staked amount plus fees.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrCardsNotDealt means the ledger has not dealt cards to the caller
	// yet. Synchronizers treat this as an expected transient, not a
	// failure.
	ErrCardsNotDealt = errors.New("cards not dealt")
)

// RemoteError is a rejection by the ledger's own rule engine: the command
// reached the ledger and was refused (not your turn, game full, bet too low,
// and so on). Reason carries the ledger-provided text verbatim when
// available.
type RemoteError struct {
	Reason string
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.Reason == "" {
		return "command rejected by ledger"
	}
	return fmt.Sprintf("command rejected by ledger: %s", e.Reason)
}

// NewRemoteError returns a RemoteError carrying the ledger's reason.
func NewRemoteError(reason string) error {
	return &RemoteError{Reason: reason}
}

// IsRemoteRejection reports whether err is a ledger rule-engine rejection
// and, if so, returns the ledger's reason.
func IsRemoteRejection(err error) (string, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Reason, true
	}
	return "", false
}
