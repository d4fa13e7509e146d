package natsledger

import (
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teenpatti-client/pkg/ledger"
)

func TestDecodeResponseResult(t *testing.T) {
	data := []byte(`{"ok":true,"result":{"gameId":42}}`)

	var res createResult
	require.NoError(t, decodeResponse(data, &res))
	assert.Equal(t, ledger.GameID(42), res.GameID)
}

func TestDecodeResponseNoResult(t *testing.T) {
	require.NoError(t, decodeResponse([]byte(`{"ok":true}`), nil))
}

func TestDecodeResponseMissingResult(t *testing.T) {
	var res createResult
	err := decodeResponse([]byte(`{"ok":true}`), &res)
	require.Error(t, err)
}

func TestDecodeResponseMalformed(t *testing.T) {
	err := decodeResponse([]byte(`not json`), nil)
	require.Error(t, err)
}

func TestDecodeResponseErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{{
		name: "not found",
		data: `{"ok":false,"error":{"code":"not_found"}}`,
		want: ledger.ErrGameNotFound,
	}, {
		name: "insufficient funds",
		data: `{"ok":false,"error":{"code":"insufficient_funds"}}`,
		want: ledger.ErrInsufficientFunds,
	}, {
		name: "user rejected",
		data: `{"ok":false,"error":{"code":"user_rejected"}}`,
		want: ledger.ErrUserRejected,
	}, {
		name: "cards not dealt",
		data: `{"ok":false,"error":{"code":"cards_not_dealt"}}`,
		want: ledger.ErrCardsNotDealt,
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := decodeResponse([]byte(tc.data), nil)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDecodeResponseRemoteRejection(t *testing.T) {
	data := []byte(`{"ok":false,"error":{"code":"rejected","reason":"not your turn"}}`)

	err := decodeResponse(data, nil)
	reason, ok := ledger.IsRemoteRejection(err)
	require.True(t, ok)
	assert.Equal(t, "not your turn", reason)
}

func TestDecodeResponseUnknownCode(t *testing.T) {
	// Codes this client does not know still surface as rule rejections so
	// the reason is not lost.
	data := []byte(`{"ok":false,"error":{"code":"table_full","reason":"table full"}}`)

	err := decodeResponse(data, nil)
	reason, ok := ledger.IsRemoteRejection(err)
	require.True(t, ok)
	assert.Equal(t, "table full", reason)
}

func TestDecodeResponseErrorWithoutDetail(t *testing.T) {
	err := decodeResponse([]byte(`{"ok":false}`), nil)
	_, ok := ledger.IsRemoteRejection(err)
	assert.True(t, ok)
}

func TestMapTransportError(t *testing.T) {
	for _, nerr := range []error{
		nats.ErrTimeout,
		nats.ErrNoResponders,
		nats.ErrConnectionClosed,
		nats.ErrConnectionDraining,
	} {
		err := mapTransportError(nerr)
		assert.ErrorIs(t, err, ledger.ErrLedgerUnavailable, "for %v", nerr)
	}

	other := errors.New("boom")
	assert.Equal(t, other, mapTransportError(other))
	assert.NoError(t, mapTransportError(nil))
}
