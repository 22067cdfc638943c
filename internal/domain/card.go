package domain

import (
	"fmt"
	"strings"
)

// Suit is one of the four French suits.
type Suit string

const (
	SuitHearts   Suit = "hearts"
	SuitDiamonds Suit = "diamonds"
	SuitClubs    Suit = "clubs"
	SuitSpades   Suit = "spades"
)

// Suits lists every suit in deck construction order.
var Suits = []Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}

// Symbol returns the single-letter suit code used in card strings.
func (s Suit) Symbol() string {
	switch s {
	case SuitHearts:
		return "H"
	case SuitDiamonds:
		return "D"
	case SuitClubs:
		return "C"
	case SuitSpades:
		return "S"
	default:
		return "?"
	}
}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	switch s {
	case SuitHearts, SuitDiamonds, SuitClubs, SuitSpades:
		return true
	}
	return false
}

// Rank is the face of a card. The numeric value doubles as the card value,
// so Ace (14) is the highest.
type Rank int

const (
	Rank2  Rank = 2
	Rank3  Rank = 3
	Rank4  Rank = 4
	Rank5  Rank = 5
	Rank6  Rank = 6
	Rank7  Rank = 7
	Rank8  Rank = 8
	Rank9  Rank = 9
	Rank10 Rank = 10
	RankJ  Rank = 11
	RankQ  Rank = 12
	RankK  Rank = 13
	RankA  Rank = 14
)

// Ranks lists every rank from highest to lowest.
var Ranks = []Rank{RankA, RankK, RankQ, RankJ, Rank10, Rank9, Rank8, Rank7, Rank6, Rank5, Rank4, Rank3, Rank2}

func (r Rank) String() string {
	switch r {
	case RankJ:
		return "J"
	case RankQ:
		return "Q"
	case RankK:
		return "K"
	case RankA:
		return "A"
	default:
		if r >= Rank2 && r <= Rank10 {
			return fmt.Sprintf("%d", int(r))
		}
		return "?"
	}
}

// Valid reports whether r is within 2..A.
func (r Rank) Valid() bool {
	return r >= Rank2 && r <= RankA
}

// Card is an immutable playing card. Two cards are equal when suit and rank match.
type Card struct {
	Suit Suit
	Rank Rank
}

// Value is the card's position in the total rank order (2 lowest, A highest).
func (c Card) Value() int {
	return int(c.Rank)
}

// IsTen reports whether the card counts toward captured tens.
func (c Card) IsTen() bool {
	return c.Rank == Rank10
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.Symbol()
}

// ParseCard parses the short form produced by Card.String, e.g. "10H" or "as".
func ParseCard(s string) (Card, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}

	var suit Suit
	switch s[len(s)-1] {
	case 'H':
		suit = SuitHearts
	case 'D':
		suit = SuitDiamonds
	case 'C':
		suit = SuitClubs
	case 'S':
		suit = SuitSpades
	default:
		return Card{}, fmt.Errorf("invalid suit in card %q", s)
	}

	face := s[:len(s)-1]
	for _, r := range Ranks {
		if r.String() == face {
			return Card{Suit: suit, Rank: r}, nil
		}
	}
	return Card{}, fmt.Errorf("invalid rank in card %q", s)
}

// MustParseCards parses a list of short-form cards and panics on error.
// Intended for fixtures.
func MustParseCards(items ...string) []Card {
	out := make([]Card, 0, len(items))
	for _, item := range items {
		c, err := ParseCard(item)
		if err != nil {
			panic(err)
		}
		out = append(out, c)
	}
	return out
}
