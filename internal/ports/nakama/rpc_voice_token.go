package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mendikot/internal/app"
	"mendikot/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// voiceService is configured by InitModule when Vivox credentials are present.
var voiceService *app.VoiceService

type voiceTokenRequest struct {
	Action  string `json:"action"`
	MatchID string `json:"match_id"`
	// Team selects the team channel ("NS" or "EW"); empty joins the table channel.
	Team string `json:"team"`
}

type voiceTokenResponse struct {
	Token   string `json:"token"`
	Channel string `json:"channel,omitempty"`
}

// rpcVoiceToken signs a Vivox login or join token for the calling user.
func rpcVoiceToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("authentication required", 16)
	}
	if voiceService == nil {
		logger.Warn("rpcVoiceToken [User:%s]: voice is not configured", userID)
		return "", runtime.NewError("voice is not configured", 9)
	}

	var req voiceTokenRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("invalid payload", 3)
	}

	channel, err := voiceChannel(req)
	if err != nil {
		return "", runtime.NewError(err.Error(), 3)
	}
	if req.Action == app.VoiceActionJoin {
		if err := authorizeVoiceJoin(ctx, nk, userID, req); err != nil {
			logger.Warn("rpcVoiceToken [User:%s]: join %s denied: %v", userID, channel, err)
			return "", runtime.NewError(err.Error(), 7)
		}
	}

	token, err := voiceService.GenerateToken(userID, req.Action, channel)
	if err != nil {
		if errors.Is(err, app.ErrVoiceAction) || errors.Is(err, app.ErrVoiceChannel) {
			return "", runtime.NewError(err.Error(), 3)
		}
		logger.Error("rpcVoiceToken [User:%s]: Failed to generate token: %v", userID, err)
		return "", runtime.NewError("internal error", 13)
	}

	resBytes, err := json.Marshal(voiceTokenResponse{Token: token, Channel: channel})
	if err != nil {
		return "", runtime.NewError("internal error", 13)
	}
	return string(resBytes), nil
}

// voiceChannel resolves the channel a join request targets.
func voiceChannel(req voiceTokenRequest) (string, error) {
	if req.Action != app.VoiceActionJoin {
		return "", nil
	}
	if req.MatchID == "" {
		return "", errors.New("match_id is required for join")
	}
	if req.Team == "" {
		return app.TableChannel(req.MatchID), nil
	}
	team := domain.Team(strings.ToUpper(req.Team))
	if team != domain.TeamNS && team != domain.TeamEW {
		return "", errors.New("team must be NS or EW")
	}
	return app.TeamChannel(req.MatchID, team), nil
}

var (
	errNotSeated   = errors.New("not seated in this match")
	errForeignTeam = errors.New("team channel belongs to the other partnership")
)

// authorizeVoiceJoin asks the match for the caller's seat. The table channel
// is open to anyone seated; a team channel only to that team's seats.
func authorizeVoiceJoin(ctx context.Context, nk runtime.NakamaModule, userID string, req voiceTokenRequest) error {
	if nk == nil {
		return errNotSeated
	}
	reply, err := nk.MatchSignal(ctx, req.MatchID, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", errNotSeated, err)
	}
	seat, ok := domain.ParseSeat(reply)
	if !ok {
		return errNotSeated
	}
	if req.Team != "" && seat.Team() != domain.Team(strings.ToUpper(req.Team)) {
		return errForeignTeam
	}
	return nil
}
