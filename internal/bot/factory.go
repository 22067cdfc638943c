package bot

import (
	"fmt"
	"math/rand"
)

// NewStrategy creates a strategy for the specified level.
func NewStrategy(level Level, rng *rand.Rand) (Strategy, error) {
	switch level {
	case LevelNovice:
		return NewNovice(rng), nil
	case LevelExpert:
		return Expert{}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %q", level)
	}
}
