package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"mendikot/internal/domain"
)

// Service runs the Mendikot state machine. Every operation takes a game value
// and returns a new one; the input is never modified, so a rejected action
// leaves the caller's state untouched.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

var (
	ErrIllegalMove           = errors.New("illegal move")
	ErrIllegalTrumpPlacement = errors.New("illegal trump placement")
	ErrNoRoundResultYet      = errors.New("round has no result yet")
	ErrGameOver              = errors.New("match already decided")

	ErrNotYourTurn   = fmt.Errorf("%w: not your turn", ErrIllegalMove)
	ErrRevealNotDue  = fmt.Errorf("%w: trump cannot be revealed now", ErrIllegalMove)
	ErrRevealPending = fmt.Errorf("%w: trump must be revealed first", ErrIllegalMove)
)

// NewGame starts a match: a random dealer is chosen and the first round is
// dealt. The returned game waits for the leader to place trump.
func (s *Service) NewGame() (domain.Game, []Event) {
	g := domain.NewGameState()
	dealer := domain.Seats[s.rng.Intn(domain.SeatCount)]
	return s.beginRound(g, dealer)
}

// PlaceTrumpCard sets card aside face down as the round's trump.
func (s *Service) PlaceTrumpCard(g domain.Game, seat domain.Seat, card domain.Card) (domain.Game, []Event, error) {
	if !domain.CanPlaceTrumpCard(g.RuleContext(seat)) {
		return g, nil, fmt.Errorf("%w: seat %s in phase %s", ErrIllegalTrumpPlacement, seat, g.Phase)
	}
	if !domain.ContainsCard(g.Hands[seat], card) {
		return g, nil, fmt.Errorf("%w: %s not in hand of %s", ErrIllegalTrumpPlacement, card, seat)
	}

	next := g.Clone()
	next.Hands[seat] = domain.RemoveCard(next.Hands[seat], card)
	next.Trump = domain.Trump{
		Suit:   card.Suit,
		Card:   card,
		Owner:  seat,
		Status: domain.TrumpHidden,
	}
	next.Phase = domain.PhasePreReveal

	hidden := card
	events := []Event{
		{Kind: EventTrumpPlaced, Payload: TrumpPlacedPayload{Owner: seat}},
		{Kind: EventTrumpPlaced, Payload: TrumpPlacedPayload{Owner: seat, Card: &hidden}, Recipients: []domain.Seat{seat}},
	}
	events = append(events, s.settleTurn(&next)...)
	return next, events, nil
}

// PlayCard lays card from seat's hand onto the current trick. Completing the
// trick resolves it and may end the round and the match.
func (s *Service) PlayCard(g domain.Game, seat domain.Seat, card domain.Card) (domain.Game, []Event, error) {
	if g.Phase == domain.PhaseTrumpReveal && seat == g.CurrentSeat {
		return g, nil, ErrRevealPending
	}
	if g.Phase.Playable() && seat != g.CurrentSeat {
		return g, nil, ErrNotYourTurn
	}
	if !domain.IsLegalPlay(card, g.RuleContext(seat)) {
		return g, nil, fmt.Errorf("%w: %s by %s in phase %s", ErrIllegalMove, card, seat, g.Phase)
	}

	next := g.Clone()
	next.Hands[seat] = domain.RemoveCard(next.Hands[seat], card)
	next.Trick.Plays = append(next.Trick.Plays, domain.Play{Seat: seat, Card: card})
	next.CurrentSeat = seat.Next()

	var resolved []Event
	if next.Trick.Complete() {
		resolved = s.resolveTrick(&next)
	}

	events := []Event{{
		Kind:    EventCardPlayed,
		Payload: CardPlayedPayload{Seat: seat, Card: card, NextTurnSeat: next.CurrentSeat},
	}}
	events = append(events, resolved...)
	events = append(events, s.settleTurn(&next)...)
	return next, events, nil
}

// RevealTrump turns the hidden trump face up and returns the card to its
// owner's hand. It is a no-op when no trump is hidden.
func (s *Service) RevealTrump(g domain.Game, seat domain.Seat) (domain.Game, []Event, error) {
	if g.Trump.Status != domain.TrumpHidden {
		return g, nil, nil
	}
	if g.Phase != domain.PhaseTrumpReveal {
		return g, nil, ErrRevealNotDue
	}
	if seat != g.CurrentSeat {
		return g, nil, ErrNotYourTurn
	}

	next := g.Clone()
	owner := next.Trump.Owner
	next.Hands[owner] = append(next.Hands[owner], next.Trump.Card)
	domain.SortHand(next.Hands[owner])
	next.Trump.Status = domain.TrumpRevealed
	next.Trump.RevealedAtTrick = next.TrickNumber
	next.Phase = domain.PhasePostReveal

	return next, []Event{{
		Kind: EventTrumpRevealed,
		Payload: TrumpRevealedPayload{
			RequestedBy: seat,
			Owner:       owner,
			Card:        next.Trump.Card,
			Trick:       next.TrickNumber,
		},
	}}, nil
}

// StartNewRound deals the next round once the previous one has been scored.
func (s *Service) StartNewRound(g domain.Game) (domain.Game, []Event, error) {
	if g.Phase == domain.PhaseGameEnd {
		return g, nil, ErrGameOver
	}
	if g.Phase != domain.PhaseRoundEnd || g.LastRound == nil || !g.LastRound.Decided() {
		return g, nil, ErrNoRoundResultYet
	}

	dealer := domain.NextDealer(g.Dealer, *g.LastRound)
	next, events := s.beginRound(g.Clone(), dealer)
	return next, events, nil
}

// LegalMoves returns the cards seat may play right now. It is empty whenever
// it is not that seat's turn to play a card.
func (s *Service) LegalMoves(g domain.Game, seat domain.Seat) []domain.Card {
	if seat != g.CurrentSeat {
		return []domain.Card{}
	}
	return domain.LegalMoves(g.RuleContext(seat))
}

func (s *Service) beginRound(g domain.Game, dealer domain.Seat) (domain.Game, []Event) {
	g.Dealer = dealer
	g.Deck = domain.ShuffleDeck(domain.NewDeck(), s.rng)
	g.Phase = domain.PhaseDealing
	g.RoundNumber++
	g.TrickNumber = 1
	g.Round = domain.RoundTally{}
	g.Trump = domain.Trump{Status: domain.TrumpUnset}
	g.History = nil
	g.LastRound = nil

	leader := dealer.Next()
	g.Trick = domain.NewTrick(leader)
	g.CurrentSeat = leader

	g.Hands = domain.Deal(g.Deck)
	g.Deck = nil
	for _, seat := range domain.Seats {
		domain.SortHand(g.Hands[seat])
	}
	g.Phase = domain.PhaseTrumpPlacement

	events := []Event{{
		Kind:    EventRoundStarted,
		Payload: RoundStartedPayload{Round: g.RoundNumber, Dealer: dealer, Leader: leader},
	}}
	for _, seat := range domain.DealOrder {
		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{Seat: seat, Hand: g.Hand(seat)},
			Recipients: []domain.Seat{seat},
		})
	}
	return g, events
}

// settleTurn moves a pre-reveal game into trump_reveal when the seat to act
// cannot follow the led suit, or is the trump owner left with no cards.
func (s *Service) settleTurn(g *domain.Game) []Event {
	if g.Phase != domain.PhasePreReveal {
		return nil
	}
	seat := g.CurrentSeat
	if !domain.CanRevealTrump(g.RuleContext(seat)) && len(g.Hands[seat]) > 0 {
		return nil
	}
	g.Phase = domain.PhaseTrumpReveal
	return []Event{{Kind: EventRevealRequired, Payload: RevealRequiredPayload{Seat: seat}}}
}

func (s *Service) resolveTrick(g *domain.Game) []Event {
	result, err := domain.EvaluateTrick(g.Trick.Plays, g.Trump)
	if err != nil {
		panic(fmt.Sprintf("resolve trick %d: %v", g.TrickNumber, err))
	}

	team := result.Team()
	g.Round.TricksWon = g.Round.TricksWon.Add(team, 1)
	g.Round.CapturedTens = g.Round.CapturedTens.Add(team, result.CapturedTens)
	g.History = append(g.History, domain.TrickRecord{
		Number: g.TrickNumber,
		Plays:  g.Trick.Plays,
		Result: result,
	})

	events := []Event{{
		Kind: EventTrickCompleted,
		Payload: TrickCompletedPayload{
			Number:   g.TrickNumber,
			Plays:    append([]domain.Play(nil), g.Trick.Plays...),
			Result:   result,
			Tally:    g.Round,
			Standing: domain.CheckRoundEnd(g.Round),
		},
	}}

	g.Trick = domain.NewTrick(result.Winner)
	g.CurrentSeat = result.Winner
	if g.Round.TricksPlayed() < domain.TricksPerRound {
		g.TrickNumber++
		return events
	}

	return append(events, s.finishRound(g)...)
}

func (s *Service) finishRound(g *domain.Game) []Event {
	result := domain.CheckRoundEnd(g.Round)
	if !result.Decided() {
		panic(fmt.Sprintf("round %d finished without a winner: %+v", g.RoundNumber, g.Round))
	}

	points := result.Points()
	g.LastRound = &result
	g.Match.RoundsWon = g.Match.RoundsWon.Add(result.Winner, points)
	g.Phase = domain.PhaseRoundEnd

	events := []Event{{
		Kind: EventRoundEnded,
		Payload: RoundEndedPayload{
			Round:  g.RoundNumber,
			Result: result,
			Points: points,
			Match:  g.Match,
		},
	}}

	if over := domain.CheckGameEnd(g.Match); over.IsOver {
		g.Phase = domain.PhaseGameEnd
		events = append(events, Event{
			Kind:    EventGameEnded,
			Payload: GameEndedPayload{Winner: over.Winner, Match: g.Match},
		})
	}
	return events
}
