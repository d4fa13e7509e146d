package cards

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardString(t *testing.T) {
	assert.Equal(t, "A♥", Card{Rank: Ace, Suit: Hearts}.String())
	assert.Equal(t, "10♠", Card{Rank: Ten, Suit: Spades}.String())
	assert.Equal(t, "J♦", Card{Rank: Jack, Suit: Diamonds}.String())
	assert.Equal(t, "2♣", Card{Rank: Two, Suit: Clubs}.String())
}

func TestCardValid(t *testing.T) {
	assert.True(t, Card{Rank: Two, Suit: Hearts}.Valid())
	assert.True(t, Card{Rank: Ace, Suit: Spades}.Valid())
	assert.False(t, Card{Rank: 0, Suit: Hearts}.Valid())
	assert.False(t, Card{Rank: 1, Suit: Hearts}.Valid())
	assert.False(t, Card{Rank: 15, Suit: Hearts}.Valid())
	assert.False(t, Card{Rank: Five, Suit: Suit(4)}.Valid())
}

// TestCardJSON checks the wire encoding matches the ledger's (rank, suit)
// tuple form.
func TestCardJSON(t *testing.T) {
	data, err := json.Marshal(Card{Rank: Ace, Suit: Diamonds})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rank":14,"suit":1}`, string(data))

	var card Card
	require.NoError(t, json.Unmarshal([]byte(`{"rank":2,"suit":3}`), &card))
	assert.Equal(t, Card{Rank: Two, Suit: Spades}, card)
}
