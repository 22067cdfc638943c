package bot

import (
	"math/rand"
	"time"

	"mendikot/internal/domain"
)

// Novice plays a uniformly random legal card.
type Novice struct {
	rng *rand.Rand
}

// NewNovice constructs a Novice with provided rng or a time-seeded default.
func NewNovice(rng *rand.Rand) *Novice {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Novice{rng: rng}
}

func (n *Novice) SelectMove(hand []domain.Card, ctx domain.RuleContext) (domain.Card, error) {
	ctx.Hand = hand
	moves := domain.LegalMoves(ctx)
	if len(moves) == 0 {
		return domain.Card{}, ErrNoLegalMove
	}
	return moves[n.rng.Intn(len(moves))], nil
}

func (n *Novice) ChooseTrump(hand []domain.Card) (domain.Card, error) {
	if len(hand) == 0 {
		return domain.Card{}, ErrNoLegalMove
	}
	return hand[n.rng.Intn(len(hand))], nil
}
