package domain

// Phase represents the lifecycle stage of a Mendikot game.
type Phase string

const (
	// PhaseInitializing is the state before the first deck is built.
	PhaseInitializing Phase = "initializing"
	// PhaseDealing is entered once a shuffled deck and a dealer exist.
	PhaseDealing Phase = "dealing"
	// PhaseTrumpPlacement waits for the leader to set a trump card aside.
	PhaseTrumpPlacement Phase = "trump_placement"
	// PhasePreReveal is normal play while trump is hidden.
	PhasePreReveal Phase = "pre_reveal"
	// PhaseTrumpReveal waits for the seat that cannot follow suit to reveal trump.
	PhaseTrumpReveal Phase = "trump_reveal"
	// PhasePostReveal is play with trump active.
	PhasePostReveal Phase = "post_reveal"
	// PhaseRoundEnd holds the scored round until the next deal.
	PhaseRoundEnd Phase = "round_end"
	// PhaseGameEnd is terminal: the match has a winner.
	PhaseGameEnd Phase = "game_end"
)

// Playable reports whether cards may be played in this phase.
func (p Phase) Playable() bool {
	return p == PhasePreReveal || p == PhasePostReveal
}

// TrumpStatus tracks the visibility of the trump card.
type TrumpStatus string

const (
	TrumpUnset    TrumpStatus = "unset"
	TrumpHidden   TrumpStatus = "hidden"
	TrumpRevealed TrumpStatus = "revealed"
)

// Trump is the face-down card that designates the trump suit for a round.
type Trump struct {
	Suit   Suit
	Card   Card
	Owner  Seat
	Status TrumpStatus
	// RevealedAtTrick is the 1-based trick number during which trump was
	// revealed, 0 while hidden.
	RevealedAtTrick int
}

// Set reports whether a trump card has been placed this round.
func (t Trump) Set() bool {
	return t.Status == TrumpHidden || t.Status == TrumpRevealed
}

// Revealed reports whether trump is face up.
func (t Trump) Revealed() bool {
	return t.Status == TrumpRevealed
}

// TeamCount is a per-partnership counter.
type TeamCount struct {
	NS int
	EW int
}

// Get returns the counter for team.
func (c TeamCount) Get(team Team) int {
	if team == TeamNS {
		return c.NS
	}
	return c.EW
}

// Add returns a copy with n added to team.
func (c TeamCount) Add(team Team, n int) TeamCount {
	if team == TeamNS {
		c.NS += n
	} else {
		c.EW += n
	}
	return c
}

// RoundTally accumulates captured tens and tricks across one round.
type RoundTally struct {
	CapturedTens TeamCount
	TricksWon    TeamCount
}

// TricksPlayed is the number of tricks resolved so far this round.
func (t RoundTally) TricksPlayed() int {
	return t.TricksWon.NS + t.TricksWon.EW
}

// MatchTally accumulates round points across the match.
type MatchTally struct {
	RoundsWon TeamCount
}

// TrickRecord keeps a resolved trick for the round history.
type TrickRecord struct {
	Number int
	Plays  []Play
	Result TrickResult
}

// Game is the aggregate root owned by the engine. Transitions work on clones;
// callers only ever see values they cannot use to mutate the engine's copy.
type Game struct {
	Phase       Phase
	Deck        []Card
	Hands       Hands
	CurrentSeat Seat
	Dealer      Seat
	Trump       Trump
	Trick       Trick
	Round       RoundTally
	Match       MatchTally
	RoundNumber int
	// TrickNumber is the 1-based number of the trick in progress.
	TrickNumber int
	History     []TrickRecord
	LastRound   *RoundResult
}

// NewGameState returns an empty game in the initializing phase.
func NewGameState() Game {
	return Game{
		Phase: PhaseInitializing,
		Trump: Trump{Status: TrumpUnset},
	}
}

// Clone returns a deep copy of the game.
func (g Game) Clone() Game {
	out := g
	if g.Deck != nil {
		out.Deck = append([]Card(nil), g.Deck...)
	}
	for i := range g.Hands {
		if g.Hands[i] != nil {
			out.Hands[i] = append([]Card(nil), g.Hands[i]...)
		}
	}
	out.Trick = g.Trick.clone()
	if g.History != nil {
		out.History = make([]TrickRecord, len(g.History))
		for i, rec := range g.History {
			rec.Plays = append([]Play(nil), rec.Plays...)
			out.History[i] = rec
		}
	}
	if g.LastRound != nil {
		rr := *g.LastRound
		out.LastRound = &rr
	}
	return out
}

// Hand returns a copy of the seat's hand.
func (g Game) Hand(seat Seat) []Card {
	return append([]Card(nil), g.Hands[seat]...)
}

// RuleContext builds the rules snapshot for actor.
func (g Game) RuleContext(actor Seat) RuleContext {
	return RuleContext{
		Phase:         g.Phase,
		Actor:         actor,
		Hand:          g.Hands[actor],
		Trick:         g.Trick,
		TrumpSuit:     g.Trump.Suit,
		TrumpSet:      g.Trump.Set(),
		TrumpRevealed: g.Trump.Revealed(),
	}
}

// CardsInPlay counts every card still allocated: deck, hands, the current
// trick, the face-down trump and resolved tricks. It is 52 for any
// consistent dealt state.
func (g Game) CardsInPlay() int {
	n := len(g.Deck) + len(g.Trick.Plays)
	for _, h := range g.Hands {
		n += len(h)
	}
	if g.Trump.Status == TrumpHidden {
		n++
	}
	for _, rec := range g.History {
		n += len(rec.Plays)
	}
	return n
}
