package nakama

import (
	"context"
	"database/sql"

	"mendikot/internal/app"
	"mendikot/internal/bot"
	"mendikot/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

const botIdentitiesPath = "data/bot_identities.json"

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcVoiceToken, rpcVoiceToken)
}

// InitModule wires RPCs and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	path := config.DefaultPath
	if p := env[config.EnvConfigPath]; p != "" {
		path = p
	}
	if err := config.LoadGameConfig(path); err != nil {
		logger.Warn("InitModule: Could not load game config, using defaults: %v", err)
	}

	if err := bot.LoadIdentities(botIdentitiesPath); err != nil {
		logger.Warn("InitModule: Could not load bot identities: %v", err)
	} else {
		bot.ProvisionBots(ctx, nk, logger)
	}

	if creds, ok := config.VoiceFromEnv(env); ok {
		voiceService = app.NewVoiceService(creds.Secret, creds.Issuer, creds.Domain)
	} else {
		logger.Warn("InitModule: Vivox credentials missing, voice tokens disabled.")
	}

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameMendikot, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(), nil
	}); err != nil {
		return err
	}

	logger.Info("Mendikot Go module loaded.")
	return nil
}
