package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickMatchResponse is the payload returned to clients when requesting a lobby-capable match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// quickMatchQuery finds lobbies of this game with at least one open seat.
var quickMatchQuery = fmt.Sprintf("+label.game:%s +label.phase:%s +label.open:>=1", GameLabel, lobbyPhase)

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	limit := 10
	authoritative := true
	minSize := 1
	maxSize := 3 // ensure < 4 players

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, quickMatchQuery)
	if err != nil {
		logger.Error("rpcQuickMatch [User:%s]: MatchList error: %v", userID, err)
		return "", runtime.NewError("failed to list matches", 13)
	}

	if len(matches) > 0 {
		logger.Info("rpcQuickMatch [User:%s]: Found existing match %s", userID, matches[0].MatchId)
		return marshalQuickMatch(QuickMatchResponse{MatchID: matches[0].MatchId})
	}

	// Create new match; seat/owner assignment happens in MatchJoin (server-authoritative).
	matchID, err := nk.MatchCreate(ctx, MatchNameMendikot, map[string]interface{}{})
	if err != nil {
		logger.Error("rpcQuickMatch [User:%s]: MatchCreate error: %v", userID, err)
		return "", runtime.NewError("failed to create match", 13)
	}

	logger.Info("rpcQuickMatch [User:%s]: Created new match %s", userID, matchID)
	return marshalQuickMatch(QuickMatchResponse{MatchID: matchID, IsNew: true})
}

func marshalQuickMatch(resp QuickMatchResponse) (string, error) {
	b, err := json.Marshal(resp)
	if err != nil {
		return "", runtime.NewError("failed to encode response", 13)
	}
	return string(b), nil
}
