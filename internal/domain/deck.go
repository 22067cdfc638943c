package domain

import (
	"fmt"
	"math/rand"
	"sort"
)

// DeckSize is the number of cards in a standard deck.
const DeckSize = 52

// HandSize is the number of cards each seat is dealt.
const HandSize = 13

// Hands holds one hand per seat, indexed by Seat.
type Hands [SeatCount][]Card

// NewDeck returns an ordered 52-card deck.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for _, r := range Ranks {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// ShuffleDeck returns a shuffled copy of the given deck using Fisher-Yates.
func ShuffleDeck(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// dealPasses is the number of cards each seat receives in each pass.
var dealPasses = []int{5, 4, 4}

// Deal distributes the deck in passes of 5, 4 and 4 rounds, one card per seat
// per round in E, S, W, N order, drawing from the end of the deck. A deck that is not consumed exactly is a construction defect
// and panics.
func Deal(deck []Card) Hands {
	if len(deck) != DeckSize {
		panic(fmt.Sprintf("invalid deal: deck holds %d cards, want %d", len(deck), DeckSize))
	}

	remaining := append([]Card(nil), deck...)
	var hands Hands
	for _, seat := range DealOrder {
		hands[seat] = make([]Card, 0, HandSize)
	}

	for _, count := range dealPasses {
		for i := 0; i < count; i++ {
			for _, seat := range DealOrder {
				last := len(remaining) - 1
				hands[seat] = append(hands[seat], remaining[last])
				remaining = remaining[:last]
			}
		}
	}

	if len(remaining) != 0 {
		panic(fmt.Sprintf("invalid deal: %d cards left undealt", len(remaining)))
	}
	return hands
}

// SortHand orders a hand by suit, then by descending value.
func SortHand(cards []Card) {
	sort.Slice(cards, func(i, j int) bool {
		si, sj := suitOrder(cards[i].Suit), suitOrder(cards[j].Suit)
		if si != sj {
			return si < sj
		}
		return cards[i].Value() > cards[j].Value()
	})
}

func suitOrder(s Suit) int {
	for i, suit := range Suits {
		if suit == s {
			return i
		}
	}
	return len(Suits)
}

// ContainsCard reports whether the hand holds card.
func ContainsCard(hand []Card, card Card) bool {
	for _, c := range hand {
		if c == card {
			return true
		}
	}
	return false
}

// HasSuit reports whether the hand holds any card of suit.
func HasSuit(hand []Card, suit Suit) bool {
	for _, c := range hand {
		if c.Suit == suit {
			return true
		}
	}
	return false
}

// RemoveCard returns a copy of hand without card. The hand is returned
// unchanged (as a copy) when it does not hold the card.
func RemoveCard(hand []Card, card Card) []Card {
	updated := make([]Card, 0, len(hand))
	removed := false
	for _, c := range hand {
		if !removed && c == card {
			removed = true
			continue
		}
		updated = append(updated, c)
	}
	return updated
}
