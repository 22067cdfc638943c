package rewards

import (
	"context"
	"fmt"

	"mendikot/internal/domain"
	"mendikot/internal/ports"
)

// Service pays out match rewards to human players.
type Service struct {
	economy ports.EconomyPort
	amount  int64
}

// NewService constructs a reward service crediting amount gold per winning player.
// A non-positive amount disables payouts.
func NewService(economy ports.EconomyPort, amount int64) *Service {
	return &Service{economy: economy, amount: amount}
}

// SettleMatch credits each human on the winning team.
// userIDs holds the account seated at each position; bots and empty seats are "".
// Returns the wallet updates that were applied.
func (s *Service) SettleMatch(ctx context.Context, matchID string, winner domain.Team, userIDs [domain.SeatCount]string) ([]ports.WalletUpdate, error) {
	if s == nil || s.economy == nil || s.amount <= 0 {
		return nil, nil
	}

	var updates []ports.WalletUpdate
	for _, seat := range winner.Members() {
		if userIDs[seat] == "" {
			continue
		}
		updates = append(updates, ports.WalletUpdate{
			UserID: userIDs[seat],
			Amount: s.amount,
			Metadata: map[string]interface{}{
				"reason":   "match_win",
				"match_id": matchID,
				"team":     string(winner),
				"seat":     seat.String(),
			},
		})
	}
	if len(updates) == 0 {
		return nil, nil
	}

	if err := s.economy.UpdateBalances(ctx, updates); err != nil {
		return nil, fmt.Errorf("failed to credit match reward: %w", err)
	}
	return updates, nil
}
