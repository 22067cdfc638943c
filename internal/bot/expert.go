package bot

import "mendikot/internal/domain"

// Expert is reserved for a lookahead player and has no move logic yet.
type Expert struct{}

func (Expert) SelectMove([]domain.Card, domain.RuleContext) (domain.Card, error) {
	return domain.Card{}, ErrNotImplemented
}

func (Expert) ChooseTrump([]domain.Card) (domain.Card, error) {
	return domain.Card{}, ErrNotImplemented
}
