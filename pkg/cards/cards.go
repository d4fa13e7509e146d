package cards

import "fmt"

// Suit represents a card suit. The numeric values match the ledger's wire
// encoding: Hearts=0, Diamonds=1, Clubs=2, Spades=3.
type Suit uint8

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// String returns the suit symbol.
func (s Suit) String() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return fmt.Sprintf("Suit(%d)", uint8(s))
	}
}

// Name returns the full suit name as used by the ledger roster queries.
func (s Suit) Name() string {
	switch s {
	case Hearts:
		return "Hearts"
	case Diamonds:
		return "Diamonds"
	case Clubs:
		return "Clubs"
	case Spades:
		return "Spades"
	default:
		return fmt.Sprintf("Suit(%d)", uint8(s))
	}
}

// Rank represents a card rank. Valid ranks run 2 through 14 where 14 is the
// ace; the ledger never deals ranks 0 or 1.
type Rank uint8

const (
	Two   Rank = 2
	Three Rank = 3
	Four  Rank = 4
	Five  Rank = 5
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

// String returns the short display form of the rank.
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", uint8(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return fmt.Sprintf("Rank(%d)", uint8(r))
	}
}

// Card represents an immutable playing card as dealt by the ledger. The JSON
// encoding mirrors the ledger's (rank, suit) tuple.
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

// String returns a string representation of the card, e.g. "A♥".
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Valid reports whether the card carries a rank and suit the ledger can
// actually deal.
func (c Card) Valid() bool {
	return c.Rank >= Two && c.Rank <= Ace && c.Suit <= Spades
}
