package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// RpcVoiceToken signs a Vivox token for the caller's table or team channel.
	RpcVoiceToken = "voice_token"

	// MatchNameMendikot is the authoritative match handler name registered with Nakama.
	MatchNameMendikot = "mendikot_match"

	// GameLabel identifies mendikot matches in label queries.
	GameLabel = "mendikot"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame   int64 = 1
	OpPlaceTrump  int64 = 2
	OpPlayCard    int64 = 3
	OpRevealTrump int64 = 4
	OpNextRound   int64 = 5

	// Server -> Client events
	OpMatchState     int64 = 101 // per-viewer snapshot
	OpRoundStarted   int64 = 103
	OpHandDealt      int64 = 104 // send privately
	OpTrumpPlaced    int64 = 105
	OpCardPlayed     int64 = 106
	OpRevealRequired int64 = 107
	OpTrumpRevealed  int64 = 108
	OpTrickCompleted int64 = 109
	OpRoundEnded     int64 = 110
	OpGameEnded      int64 = 111
	OpGameError      int64 = 120
)

// Error codes carried in OpGameError payloads.
const (
	ErrCodeBadRequest  = 400
	ErrCodeForbidden   = 403
	ErrCodeIllegalMove = 422
)

const lobbyPhase = "lobby"
