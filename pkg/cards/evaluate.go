package cards

// HandCategory represents the rank of a three card hand. Higher categories
// beat lower ones.
type HandCategory int

const (
	HighCard HandCategory = iota
	Pair
	Flush
	Straight
	StraightFlush
	Trail
)

// String returns a human-readable name for the hand category.
func (hc HandCategory) String() string {
	switch hc {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case Flush:
		return "Flush"
	case Straight:
		return "Straight"
	case StraightFlush:
		return "Straight Flush"
	case Trail:
		return "Trail"
	default:
		return "Unknown"
	}
}

// HandValue represents a complete evaluation of a three card hand.
type HandValue struct {
	Category HandCategory
	// High is the highest rank present in the hand. It is the tie-break
	// value between hands of the same category.
	High Rank
}

// Evaluate classifies a three card hand. It is pure and total: any triple of
// cards maps to exactly one category, independent of the order the cards are
// given in.
//
// The A-2-3 triple counts as a sequential run (the "low straight") even
// though the ace ranks high everywhere else. That exact rank set is the only
// exception; no other gap is bridged.
func Evaluate(a, b, c Card) HandValue {
	r0, r1, r2 := a.Rank, b.Rank, c.Rank
	s0, s1, s2 := a.Suit, b.Suit, c.Suit

	// Sort the three cards by rank ascending, keeping suits parallel.
	if r0 > r1 {
		r0, r1 = r1, r0
		s0, s1 = s1, s0
	}
	if r1 > r2 {
		r1, r2 = r2, r1
		s1, s2 = s2, s1
	}
	if r0 > r1 {
		r0, r1 = r1, r0
		s0, s1 = s1, s0
	}

	isFlush := s0 == s1 && s1 == s2
	isStraight := (r2 == r1+1 && r1 == r0+1) ||
		(r0 == Two && r1 == Three && r2 == Ace)

	var category HandCategory
	switch {
	case r0 == r1 && r1 == r2:
		category = Trail
	case isFlush && isStraight:
		category = StraightFlush
	case isStraight:
		category = Straight
	case isFlush:
		category = Flush
	case r0 == r1 || r1 == r2:
		// r0 == r2 is impossible after sorting unless all three match.
		category = Pair
	default:
		category = HighCard
	}

	return HandValue{Category: category, High: r2}
}

// Compare compares two hand values and returns:
//
//	-1 if a is worse than b
//	 0 if they tie
//	 1 if a is better than b
func Compare(a, b HandValue) int {
	switch {
	case a.Category < b.Category:
		return -1
	case a.Category > b.Category:
		return 1
	case a.High < b.High:
		return -1
	case a.High > b.High:
		return 1
	default:
		return 0
	}
}
