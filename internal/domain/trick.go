package domain

import "errors"

// ErrEmptyTrick is returned when a trick is evaluated before all four seats played.
var ErrEmptyTrick = errors.New("trick evaluated with fewer than four plays")

// Play is a single card laid on the table by a seat.
type Play struct {
	Seat Seat
	Card Card
}

// Trick is the set of cards played in one exchange around the table.
type Trick struct {
	Leader Seat
	Plays  []Play
}

// NewTrick starts an empty trick led by leader.
func NewTrick(leader Seat) Trick {
	return Trick{Leader: leader}
}

// LedSuit returns the suit of the first card played, if any.
func (t Trick) LedSuit() (Suit, bool) {
	if len(t.Plays) == 0 {
		return "", false
	}
	return t.Plays[0].Card.Suit, true
}

// Complete reports whether every seat has played.
func (t Trick) Complete() bool {
	return len(t.Plays) == SeatCount
}

// NextToAct returns the seat whose card is expected next.
func (t Trick) NextToAct() Seat {
	seat := t.Leader
	for range t.Plays {
		seat = seat.Next()
	}
	return seat
}

func (t Trick) clone() Trick {
	out := Trick{Leader: t.Leader}
	if t.Plays != nil {
		out.Plays = append([]Play(nil), t.Plays...)
	}
	return out
}

// TrickResult is the outcome of a completed trick.
type TrickResult struct {
	Winner       Seat
	WinningCard  Card
	CapturedTens int
}

// Team returns the partnership credited with the trick.
func (r TrickResult) Team() Team {
	return r.Winner.Team()
}

// EvaluateTrick resolves four plays to a winner. Trump only contends once it
// has been revealed; cards of other suits never win.
func EvaluateTrick(plays []Play, trump Trump) (TrickResult, error) {
	if len(plays) < SeatCount {
		return TrickResult{}, ErrEmptyTrick
	}

	ledSuit := plays[0].Card.Suit
	tens := 0
	for _, p := range plays {
		if p.Card.IsTen() {
			tens++
		}
	}

	contending := ledSuit
	if trump.Revealed() {
		for _, p := range plays {
			if p.Card.Suit == trump.Suit {
				contending = trump.Suit
				break
			}
		}
	}

	best := -1
	for i, p := range plays {
		if p.Card.Suit != contending {
			continue
		}
		if best < 0 || p.Card.Value() > plays[best].Card.Value() {
			best = i
		}
	}

	return TrickResult{
		Winner:       plays[best].Seat,
		WinningCard:  plays[best].Card,
		CapturedTens: tens,
	}, nil
}
