package bot

import (
	"fmt"
	"math/rand"

	"mendikot/internal/domain"
)

// ActionKind is what an agent wants to do on its turn.
type ActionKind int

const (
	ActionPlaceTrump ActionKind = iota
	ActionRevealTrump
	ActionPlayCard
)

func (k ActionKind) String() string {
	switch k {
	case ActionPlaceTrump:
		return "place_trump"
	case ActionRevealTrump:
		return "reveal_trump"
	case ActionPlayCard:
		return "play_card"
	default:
		return fmt.Sprintf("action(%d)", int(k))
	}
}

// Action is the decision made by the AI. Card is unused for reveals.
type Action struct {
	Kind ActionKind
	Card domain.Card
}

// Agent represents an autonomous bot player bound to a seat.
type Agent struct {
	ID       string
	Name     string
	Seat     domain.Seat
	Level    Level
	Strategy Strategy
}

// NewAgent builds an agent for seat using the strategy for level.
func NewAgent(id string, seat domain.Seat, level Level, rng *rand.Rand) (*Agent, error) {
	strategy, err := NewStrategy(level, rng)
	if err != nil {
		return nil, err
	}
	return &Agent{
		ID:       id,
		Name:     GetBotDisplayName(id),
		Seat:     seat,
		Level:    level,
		Strategy: strategy,
	}, nil
}

// Decide returns the action the agent takes in g. The agent only acts when
// its seat is the one the game is waiting on.
func (a *Agent) Decide(g domain.Game) (Action, error) {
	if g.CurrentSeat != a.Seat {
		return Action{}, ErrNotMyTurn
	}
	hand := g.Hand(a.Seat)

	switch {
	case g.Phase == domain.PhaseTrumpPlacement:
		card, err := a.Strategy.ChooseTrump(hand)
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionPlaceTrump, Card: card}, nil
	case g.Phase == domain.PhaseTrumpReveal:
		return Action{Kind: ActionRevealTrump}, nil
	case g.Phase.Playable():
		card, err := a.Strategy.SelectMove(hand, g.RuleContext(a.Seat))
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionPlayCard, Card: card}, nil
	default:
		return Action{}, ErrNotMyTurn
	}
}
