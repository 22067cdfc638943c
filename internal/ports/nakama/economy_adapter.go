package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"mendikot/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// goldCurrency is the wallet key match rewards are paid in.
const goldCurrency = "gold"

// walletModule is the slice of runtime.NakamaModule the adapter needs.
type walletModule interface {
	AccountGetId(ctx context.Context, userID string) (*api.Account, error)
	MultiUpdate(ctx context.Context, accountUpdates []*runtime.AccountUpdate, storageWrites []*runtime.StorageWrite, storageDeletes []*runtime.StorageDelete, walletUpdates []*runtime.WalletUpdate, updateLedger bool) ([]*api.StorageObjectAck, []*runtime.WalletUpdateResult, error)
}

// NakamaEconomyAdapter pays match rewards into Nakama wallets.
type NakamaEconomyAdapter struct {
	nk walletModule
}

func NewNakamaEconomyAdapter(nk walletModule) *NakamaEconomyAdapter {
	return &NakamaEconomyAdapter{nk: nk}
}

// GetBalance reads a player's gold from their account wallet.
func (a *NakamaEconomyAdapter) GetBalance(ctx context.Context, userID string) (int64, error) {
	account, err := a.nk.AccountGetId(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("read account %s: %w", userID, err)
	}

	var wallet map[string]int64
	if err := json.Unmarshal([]byte(account.Wallet), &wallet); err != nil {
		return 0, fmt.Errorf("decode wallet of %s: %w", userID, err)
	}
	return wallet[goldCurrency], nil
}

// UpdateBalances credits every non-zero update in one ledgered MultiUpdate,
// so a team's reward is paid to all winners or to none.
func (a *NakamaEconomyAdapter) UpdateBalances(ctx context.Context, updates []ports.WalletUpdate) error {
	walletUpdates := make([]*runtime.WalletUpdate, 0, len(updates))
	for _, update := range updates {
		if update.Amount == 0 {
			continue
		}
		walletUpdates = append(walletUpdates, &runtime.WalletUpdate{
			UserID:    update.UserID,
			Changeset: map[string]int64{goldCurrency: update.Amount},
			Metadata:  update.Metadata,
		})
	}
	if len(walletUpdates) == 0 {
		return nil
	}

	if _, _, err := a.nk.MultiUpdate(ctx, nil, nil, nil, walletUpdates, true); err != nil {
		return fmt.Errorf("pay %d match rewards: %w", len(walletUpdates), err)
	}
	return nil
}
