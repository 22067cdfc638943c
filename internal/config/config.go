package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"sync"
)

// DefaultPath is where the runtime looks for the game config, relative to the Nakama data dir.
const DefaultPath = "data/game_config.json"

// Env keys read from the Nakama runtime environment.
const (
	EnvConfigPath       = "mendikot_config_path"
	EnvBotsEnabled      = "mendikot_bots_enabled"
	EnvBotLevel         = "mendikot_bot_level"
	EnvBotMinDelay      = "mendikot_bot_min_delay_sec"
	EnvBotMaxDelay      = "mendikot_bot_max_delay_sec"
	EnvBotAutoFillDelay = "mendikot_bot_auto_fill_delay_sec"
	EnvVivoxSecret      = "vivox_secret"
	EnvVivoxIssuer      = "vivox_issuer"
	EnvVivoxDomain      = "vivox_domain"
)

type GameConfig struct {
	BotsEnabled bool   `json:"bots_enabled"`
	BotLevel    string `json:"bot_level"`
	// BotMinDelaySeconds and BotMaxDelaySeconds bound how long a bot waits before acting.
	BotMinDelaySeconds int `json:"bot_min_delay_seconds"`
	BotMaxDelaySeconds int `json:"bot_max_delay_seconds"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before filling empty seats with bots.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
	// MatchRewardGold is credited to each human on the winning team.
	MatchRewardGold int64 `json:"match_reward_gold"`
}

// Default returns the configuration used when no file is present.
func Default() GameConfig {
	return GameConfig{
		BotsEnabled:             true,
		BotLevel:                "novice",
		BotMinDelaySeconds:      1,
		BotMaxDelaySeconds:      3,
		BotAutoFillDelaySeconds: 5,
		MatchRewardGold:         100,
	}
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// Parse decodes a JSON config on top of the defaults and validates it.
func Parse(data []byte) (GameConfig, error) {
	c := Default()
	if err := json.Unmarshal(data, &c); err != nil {
		return GameConfig{}, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return GameConfig{}, err
	}
	return c, nil
}

// LoadGameConfig loads the game configuration from the given path.
// A missing file is not an error; the defaults apply.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			c := Default()
			cfg = &c
			return
		}
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		c, err := Parse(data)
		if err != nil {
			loadErr = err
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, or the defaults if none was loaded.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return Default()
	}
	return *cfg
}

// Validate reports inconsistent values.
func (c GameConfig) Validate() error {
	switch c.BotLevel {
	case "novice", "expert":
	default:
		return fmt.Errorf("invalid bot_level %q", c.BotLevel)
	}
	if c.BotMinDelaySeconds < 0 || c.BotMaxDelaySeconds < c.BotMinDelaySeconds {
		return fmt.Errorf("invalid bot delay range [%d, %d]", c.BotMinDelaySeconds, c.BotMaxDelaySeconds)
	}
	if c.BotAutoFillDelaySeconds < 0 {
		return fmt.Errorf("invalid bot_auto_fill_delay_seconds %d", c.BotAutoFillDelaySeconds)
	}
	if c.MatchRewardGold < 0 {
		return fmt.Errorf("invalid match_reward_gold %d", c.MatchRewardGold)
	}
	return nil
}

// WithEnv applies runtime environment overrides. Malformed values are ignored
// and the result falls back to c when the overrides do not validate.
func (c GameConfig) WithEnv(env map[string]string) GameConfig {
	out := c
	if val, ok := env[EnvBotsEnabled]; ok {
		if b, err := strconv.ParseBool(val); err == nil {
			out.BotsEnabled = b
		}
	}
	if val, ok := env[EnvBotLevel]; ok && val != "" {
		out.BotLevel = val
	}
	overrideInt(env, EnvBotMinDelay, &out.BotMinDelaySeconds)
	overrideInt(env, EnvBotMaxDelay, &out.BotMaxDelaySeconds)
	overrideInt(env, EnvBotAutoFillDelay, &out.BotAutoFillDelaySeconds)

	if err := out.Validate(); err != nil {
		return c
	}
	return out
}

func overrideInt(env map[string]string, key string, dst *int) {
	if val, ok := env[key]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

// VoiceCredentials holds the Vivox signing settings from the runtime env.
type VoiceCredentials struct {
	Secret string
	Issuer string
	Domain string
}

// VoiceFromEnv reads Vivox credentials; ok is false when any is missing.
func VoiceFromEnv(env map[string]string) (VoiceCredentials, bool) {
	creds := VoiceCredentials{
		Secret: env[EnvVivoxSecret],
		Issuer: env[EnvVivoxIssuer],
		Domain: env[EnvVivoxDomain],
	}
	return creds, creds.Secret != "" && creds.Issuer != "" && creds.Domain != ""
}
