package bot

import (
	"errors"
	"fmt"
	"strings"

	"mendikot/internal/domain"
)

// Level selects how a bot chooses its moves.
type Level string

const (
	LevelNovice Level = "novice"
	LevelExpert Level = "expert"
)

var (
	ErrNotImplemented = errors.New("strategy not implemented")
	ErrNoLegalMove    = errors.New("no legal move")
	ErrNotMyTurn      = errors.New("not the bot's turn")
)

// ParseLevel maps a config string onto a Level.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelNovice, "":
		return LevelNovice, nil
	case LevelExpert:
		return LevelExpert, nil
	default:
		return "", fmt.Errorf("unknown bot level: %q", s)
	}
}

// Strategy is the interface that all bot strategies must implement.
type Strategy interface {
	// SelectMove picks a card to play from hand under the rules in ctx.
	SelectMove(hand []domain.Card, ctx domain.RuleContext) (domain.Card, error)
	// ChooseTrump picks the card to set aside face down as trump.
	ChooseTrump(hand []domain.Card) (domain.Card, error)
}
