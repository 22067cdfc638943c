package app

import "mendikot/internal/domain"

// EventKind identifies emitted domain events for host dispatch.
type EventKind string

const (
	EventRoundStarted   EventKind = "round_started"
	EventHandDealt      EventKind = "hand_dealt"
	EventTrumpPlaced    EventKind = "trump_placed"
	EventCardPlayed     EventKind = "card_played"
	EventRevealRequired EventKind = "reveal_required"
	EventTrumpRevealed  EventKind = "trump_revealed"
	EventTrickCompleted EventKind = "trick_completed"
	EventRoundEnded     EventKind = "round_ended"
	EventGameEnded      EventKind = "game_ended"
)

// Event is an engine event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []domain.Seat // empty means broadcast
}

type RoundStartedPayload struct {
	Round  int
	Dealer domain.Seat
	Leader domain.Seat
}

type HandDealtPayload struct {
	Seat domain.Seat
	Hand []domain.Card
}

// TrumpPlacedPayload is broadcast without the card; only the owner learns it
// through the private copy carrying Card.
type TrumpPlacedPayload struct {
	Owner domain.Seat
	Card  *domain.Card
}

type CardPlayedPayload struct {
	Seat         domain.Seat
	Card         domain.Card
	NextTurnSeat domain.Seat
}

type RevealRequiredPayload struct {
	Seat domain.Seat
}

type TrumpRevealedPayload struct {
	RequestedBy domain.Seat
	Owner       domain.Seat
	Card        domain.Card
	Trick       int
}

type TrickCompletedPayload struct {
	Number   int
	Plays    []domain.Play
	Result   domain.TrickResult
	Tally    domain.RoundTally
	Standing domain.RoundResult
}

type RoundEndedPayload struct {
	Round  int
	Result domain.RoundResult
	Points int
	Match  domain.MatchTally
}

type GameEndedPayload struct {
	Winner domain.Team
	Match  domain.MatchTally
}
