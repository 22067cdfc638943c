package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

const fallbackBotPrefix = "bot-"

type BotIdentity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Level       string `json:"level"` // "novice", "expert"
	AvatarIndex int    `json:"avatar_index"`
}

var (
	identitiesMu  sync.RWMutex
	botIdentities []BotIdentity
	readyBots     []BotIdentity // identities with a provisioned user id
	botConfigMap  map[string]BotIdentity
	loadOnce      sync.Once
	provisionOnce sync.Once
	loadErr       error
)

// LoadIdentities loads the bot profiles from the given path.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}

		var identities []BotIdentity
		if err := json.Unmarshal(data, &identities); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}
		SetIdentities(identities)
	})
	return loadErr
}

// SetIdentities replaces the identity pool.
func SetIdentities(identities []BotIdentity) {
	identitiesMu.Lock()
	defer identitiesMu.Unlock()

	botIdentities = append([]BotIdentity(nil), identities...)
	readyBots = nil
	botConfigMap = make(map[string]BotIdentity, len(identities))
	for _, identity := range botIdentities {
		if identity.UserID != "" {
			readyBots = append(readyBots, identity)
			botConfigMap[identity.UserID] = identity
		}
	}
}

// ProvisionBots ensures that bot accounts exist in the Nakama database and carry is_bot metadata.
func ProvisionBots(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) {
	provisionOnce.Do(func() {
		identitiesMu.RLock()
		pool := append([]BotIdentity(nil), botIdentities...)
		identitiesMu.RUnlock()

		for i := range pool {
			identity := &pool[i]
			if identity.DeviceID == "" {
				continue
			}

			userID, username, _, err := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
			if err != nil {
				logger.Error("ProvisionBots: Failed to authenticate bot %s: %v", identity.Username, err)
				continue
			}
			identity.UserID = userID
			identity.Username = username

			metadata := map[string]interface{}{
				"is_bot":       true,
				"level":        identity.Level,
				"avatar_index": identity.AvatarIndex,
			}
			if err := nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); err != nil {
				logger.Warn("ProvisionBots: Failed to update bot account %s: %v", userID, err)
			}
			logger.Info("ProvisionBots: Bot %s (%s) is ready. Level: %s", identity.DisplayName, userID, identity.Level)
		}

		SetIdentities(pool)
	})
}

// GetBotIdentity returns an identity for a bot by index (mod pool size).
func GetBotIdentity(index int) BotIdentity {
	identitiesMu.RLock()
	defer identitiesMu.RUnlock()

	if len(readyBots) == 0 {
		return FallbackIdentity(index)
	}
	return readyBots[index%len(readyBots)]
}

// FallbackIdentity is an unprovisioned bot identity for index.
func FallbackIdentity(index int) BotIdentity {
	return BotIdentity{
		UserID:      fmt.Sprintf("%s%d", fallbackBotPrefix, index),
		Username:    fmt.Sprintf("bot%d", index),
		DisplayName: fmt.Sprintf("AI Player %d", index),
	}
}

// IsBot reports whether the given user ID belongs to the bot pool.
func IsBot(userID string) bool {
	if userID == "" {
		return false
	}
	if strings.HasPrefix(userID, fallbackBotPrefix) {
		return true
	}
	identitiesMu.RLock()
	defer identitiesMu.RUnlock()

	_, ok := botConfigMap[userID]
	return ok
}

// GetBotDisplayName returns the display name for a bot ID, or an empty string if not a bot.
func GetBotDisplayName(userID string) string {
	identitiesMu.RLock()
	identity, ok := botConfigMap[userID]
	identitiesMu.RUnlock()

	if !ok {
		if strings.HasPrefix(userID, fallbackBotPrefix) {
			return "AI Player " + strings.TrimPrefix(userID, fallbackBotPrefix)
		}
		return ""
	}
	if identity.DisplayName != "" {
		return identity.DisplayName
	}
	return identity.Username
}
