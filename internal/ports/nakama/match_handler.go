package nakama

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"time"

	"mendikot/internal/app"
	"mendikot/internal/app/rewards"
	"mendikot/internal/bot"
	"mendikot/internal/config"
	"mendikot/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Seats          [domain.SeatCount]string    `json:"seats"`            // User IDs by seat (N, E, S, W); empty string means seat is empty
	OwnerSeat      int                         `json:"owner_seat"`       // Seat index of the match owner
	Tick           int64                       `json:"tick"`             // Current tick of the match
	Presences      map[string]runtime.Presence `json:"-"`                // Map UserId -> Presence for targeted messaging
	App            *app.Service                `json:"-"`                // Engine
	Game           *domain.Game                `json:"-"`                // Current game state (nil while in lobby)
	Config         config.GameConfig           `json:"config"`           // Effective config after env overrides
	BotLevel       bot.Level                   `json:"bot_level"`        // Level given to new bot agents
	BotWaitUntil   int64                       `json:"bot_wait_until"`   // Tick when the waiting bot should act
	LobbyWaitSince int64                       `json:"lobby_wait_since"` // Tick when humans started waiting for seats to fill
	Bots           map[string]*bot.Agent       `json:"-"`                // Active bot agents
	Rewards        *rewards.Service            `json:"-"`                // Credits winners through the wallet
	rng            *rand.Rand
}

// newMatchState builds an empty lobby with cfg applied.
func newMatchState(cfg config.GameConfig, rng *rand.Rand) *MatchState {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	level, err := bot.ParseLevel(cfg.BotLevel)
	if err != nil {
		level = bot.LevelNovice
	}
	return &MatchState{
		OwnerSeat: -1,
		Presences: make(map[string]runtime.Presence),
		App:       app.NewService(rand.New(rand.NewSource(rng.Int63()))),
		Config:    cfg,
		BotLevel:  level,
		Bots:      make(map[string]*bot.Agent),
		rng:       rng,
	}
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	return domain.SeatCount - ms.GetOpenSeatsCount()
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !isBotUserId(seat) {
			count++
		}
	}
	return count
}

// seatOf returns the seat held by userID.
func (ms *MatchState) seatOf(userID string) (domain.Seat, bool) {
	if userID == "" {
		return 0, false
	}
	for i, seatUserID := range ms.Seats {
		if seatUserID == userID {
			return domain.Seat(i), true
		}
	}
	return 0, false
}

// inGame reports whether a game is being played (not lobby, not finished).
func (ms *MatchState) inGame() bool {
	return ms.Game != nil && ms.Game.Phase != domain.PhaseGameEnd
}

// humanUserIDs lists the human account per seat; bots and empty seats are "".
func (ms *MatchState) humanUserIDs() [domain.SeatCount]string {
	var out [domain.SeatCount]string
	for i, userID := range ms.Seats {
		if userID != "" && !isBotUserId(userID) {
			out[i] = userID
		}
	}
	return out
}

func (ms *MatchState) phaseLabel() string {
	if ms.Game == nil {
		return lobbyPhase
	}
	return string(ms.Game.Phase)
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

// isHumanSeat reports whether the seat index belongs to a human player.
func isHumanSeat(seats []string, seatIndex int) bool {
	if seatIndex < 0 || seatIndex >= len(seats) {
		return false
	}
	userId := seats[seatIndex]
	return userId != "" && !isBotUserId(userId)
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func findFirstHumanSeat(seats []string) int {
	for i, userId := range seats {
		if userId != "" && !isBotUserId(userId) {
			return i
		}
	}
	return -1
}

// shouldTerminateNoHumans returns true when there are no humans in the match.
func shouldTerminateNoHumans(seats []string) bool {
	return findFirstHumanSeat(seats) == -1
}

type matchHandler struct{}

func newMatchHandler() *matchHandler {
	return &matchHandler{}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	cfg := config.GetGameConfig().WithEnv(env)

	state := newMatchState(cfg, nil)
	state.Tick = time.Now().Unix()
	if nk != nil {
		state.Rewards = rewards.NewService(NewNakamaEconomyAdapter(nk), cfg.MatchRewardGold)
	}
	if state.BotLevel == bot.LevelExpert {
		logger.Warn("MatchInit: Expert bots cannot play yet, seating novice bots instead.")
		state.BotLevel = bot.LevelNovice
	}

	label, err := encodeLabel(state.GetOpenSeatsCount(), lobbyPhase)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1 // 1 tick per second
	return state, tickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Rejoining players keep their seat.
	if _, seated := matchState.seatOf(presence.GetUserId()); seated {
		return state, true, ""
	}

	// Allow join if there is an empty seat OR a bot to replace (lobby only)
	if matchState.GetOpenSeatsCount() <= 0 {
		if matchState.inGame() {
			return state, false, "Match full"
		}
		for _, seat := range matchState.Seats {
			if isBotUserId(seat) {
				return state, true, ""
			}
		}
		return state, false, "Match full"
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p
		if seat, seated := matchState.seatOf(p.GetUserId()); seated {
			logger.Info("MatchJoin: User %s rejoined seat %s", p.GetUserId(), seat)
			continue
		}

		// Assign seat: Try empty seats first, then bots (if lobby)
		assigned := false
		for i, seatUserId := range matchState.Seats {
			if seatUserId == "" {
				matchState.Seats[i] = p.GetUserId()
				assigned = true
				if matchState.inGame() {
					logger.Info("MatchJoin: User %s took over empty seat %s mid-game", p.GetUserId(), domain.Seat(i))
				}
				break
			}
		}

		if !assigned && !matchState.inGame() {
			for i, seatUserId := range matchState.Seats {
				if isBotUserId(seatUserId) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserId, p.GetUserId(), i)
					delete(matchState.Bots, seatUserId)
					matchState.Seats[i] = p.GetUserId()
					assigned = true
					break
				}
			}
		}

		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", p.GetUserId())
		}
	}

	// Ensure owner seat is assigned to a human player only.
	if !isHumanSeat(matchState.Seats[:], matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstHumanSeat(matchState.Seats[:])
		if matchState.OwnerSeat >= 0 {
			logger.Debug("MatchJoin: Owner set to human seat %d.", matchState.OwnerSeat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)

	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())

		seat, seated := matchState.seatOf(p.GetUserId())
		if !seated {
			continue
		}
		matchState.Seats[seat] = ""
		logger.Debug("MatchLeave: User %s left, seat %s freed.", p.GetUserId(), seat)

		// A game in progress needs all four seats; a bot takes over the hand.
		if matchState.inGame() && matchState.Config.BotsEnabled {
			mh.seatBot(matchState, seat, logger)
		}
	}

	newOwnerSeat := findFirstHumanSeat(matchState.Seats[:])
	if newOwnerSeat != matchState.OwnerSeat {
		matchState.OwnerSeat = newOwnerSeat
		if newOwnerSeat >= 0 {
			logger.Debug("MatchLeave: Owner set to human seat %d.", newOwnerSeat)
		}
	}

	if shouldTerminateNoHumans(matchState.Seats[:]) {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	// Messages are applied one at a time in arrival order.
	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpPlaceTrump:
			mh.handlePlaceTrump(ctx, matchState, dispatcher, logger, msg)
		case OpPlayCard:
			mh.handlePlayCard(ctx, matchState, dispatcher, logger, msg)
		case OpRevealTrump:
			mh.handleRevealTrump(ctx, matchState, dispatcher, logger, msg)
		case OpNextRound:
			mh.handleNextRound(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.Config.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

// seatBot puts a new bot agent in seat.
func (mh *matchHandler) seatBot(state *MatchState, seat domain.Seat, logger runtime.Logger) {
	identity := mh.pickBotIdentity(state, int(seat))
	agent, err := bot.NewAgent(identity.UserID, seat, state.BotLevel, rand.New(rand.NewSource(state.rng.Int63())))
	if err != nil {
		logger.Error("Failed to create bot agent for %s: %v", identity.UserID, err)
		return
	}
	state.Seats[seat] = identity.UserID
	state.Bots[identity.UserID] = agent
	logger.Info("seatBot: Added bot %s (%s) to seat %s", agent.Name, identity.UserID, seat)
}

// pickBotIdentity returns an identity not already seated in this match.
func (mh *matchHandler) pickBotIdentity(state *MatchState, start int) bot.BotIdentity {
	for i := 0; i < 2*domain.SeatCount; i++ {
		identity := bot.GetBotIdentity(start + i)
		if _, taken := state.seatOf(identity.UserID); !taken {
			return identity
		}
	}
	return bot.FallbackIdentity(start)
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Fill empty lobby seats with bots once humans have waited long enough.
	if !state.inGame() {
		if state.GetHumanPlayerCount() >= 1 && state.GetOpenSeatsCount() > 0 {
			if state.LobbyWaitSince == 0 {
				state.LobbyWaitSince = state.Tick
				logger.Debug("processBots: Open seats detected, starting auto-fill timer.")
			}
			if state.Tick-state.LobbyWaitSince >= int64(state.Config.BotAutoFillDelaySeconds) {
				for i, seat := range state.Seats {
					if seat == "" {
						mh.seatBot(state, domain.Seat(i), logger)
					}
				}
				mh.updateLabel(state, dispatcher, logger)
				mh.broadcastMatchState(state, dispatcher, logger)
				state.LobbyWaitSince = 0
			}
		} else {
			state.LobbyWaitSince = 0
		}
		return
	}

	// 2. Handle bot turns in-game
	seat := state.Game.CurrentSeat
	botID := state.Seats[seat]
	if !isBotUserId(botID) || !botCanAct(state.Game.Phase) {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		minDelay, maxDelay := state.Config.BotMinDelaySeconds, state.Config.BotMaxDelaySeconds
		delay := minDelay
		if maxDelay > minDelay {
			delay += state.rng.Intn(maxDelay - minDelay + 1)
		}
		state.BotWaitUntil = state.Tick + int64(delay)
		logger.Debug("processBots: Bot %s (seat %s) will act at tick %d (current %d)", botID, seat, state.BotWaitUntil, state.Tick)
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	agent, exists := state.Bots[botID]
	if !exists {
		var err error
		agent, err = bot.NewAgent(botID, seat, state.BotLevel, rand.New(rand.NewSource(state.rng.Int63())))
		if err != nil {
			logger.Error("processBots: Failed to create fallback agent: %v", err)
			return
		}
		state.Bots[botID] = agent
	}

	action, err := agent.Decide(*state.Game)
	if err != nil {
		logger.Error("processBots: Bot %s failed to choose an action: %v", botID, err)
		return
	}
	if err := mh.apply(ctx, state, dispatcher, logger, seat, action); err != nil {
		logger.Error("processBots: Bot %s action %s rejected: %v", botID, action.Kind, err)
	}
}

func botCanAct(phase domain.Phase) bool {
	return phase == domain.PhaseTrumpPlacement || phase == domain.PhaseTrumpReveal || phase.Playable()
}

// apply runs one seat action through the engine and publishes the result.
func (mh *matchHandler) apply(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, seat domain.Seat, action bot.Action) error {
	var (
		next   domain.Game
		events []app.Event
		err    error
	)
	switch action.Kind {
	case bot.ActionPlaceTrump:
		next, events, err = state.App.PlaceTrumpCard(*state.Game, seat, action.Card)
	case bot.ActionRevealTrump:
		next, events, err = state.App.RevealTrump(*state.Game, seat)
	case bot.ActionPlayCard:
		next, events, err = state.App.PlayCard(*state.Game, seat, action.Card)
	default:
		return errors.New("unknown action")
	}
	if err != nil {
		return err
	}

	state.Game = &next
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	return nil
}

func (mh *matchHandler) seatedSender(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData, op string) (domain.Seat, bool) {
	seat, ok := state.seatOf(msg.GetUserId())
	if !ok {
		logger.Warn("%s: User %s is not seated.", op, msg.GetUserId())
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), ErrCodeForbidden, "not seated")
		return 0, false
	}
	if state.Game == nil {
		logger.Warn("%s: Game not started.", op)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), ErrCodeBadRequest, "game not started")
		return 0, false
	}
	return seat, true
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat, _ := state.seatOf(senderID)

	logger.Info("StartGame: Request received from %s (seat=%s, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	if _, err := decodeRequest(msg.GetData()); err != nil {
		logger.Warn("StartGame: Invalid request from %s: %v", senderID, err)
		return
	}
	if state.OwnerSeat < 0 || state.Seats[state.OwnerSeat] != senderID {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeForbidden, "only the owner can start the game")
		return
	}
	if state.inGame() {
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeBadRequest, "game already in progress")
		return
	}
	if occupied := state.GetOccupiedSeatCount(); occupied < app.SeatsToStart {
		logger.Warn("StartGame: Cannot start with %d players. Need %d.", occupied, app.SeatsToStart)
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeBadRequest, "all four seats must be filled")
		return
	}

	game, events := state.App.NewGame()
	state.Game = &game
	state.BotWaitUntil = 0

	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastMatchState(state, dispatcher, logger)
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)

	logger.Info("StartGame: Game started, dealer %s.", game.Dealer)
}

func (mh *matchHandler) handlePlaceTrump(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	mh.handleCardAction(ctx, state, dispatcher, logger, msg, bot.ActionPlaceTrump, "handlePlaceTrump")
}

func (mh *matchHandler) handlePlayCard(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	mh.handleCardAction(ctx, state, dispatcher, logger, msg, bot.ActionPlayCard, "handlePlayCard")
}

func (mh *matchHandler) handleCardAction(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData, kind bot.ActionKind, op string) {
	seat, ok := mh.seatedSender(state, dispatcher, logger, msg, op)
	if !ok {
		return
	}

	card, err := decodeCardRequest(msg.GetData())
	if err != nil {
		logger.Warn("%s: Bad request from %s: %v", op, msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), ErrCodeBadRequest, err.Error())
		return
	}

	if err := mh.apply(ctx, state, dispatcher, logger, seat, bot.Action{Kind: kind, Card: card}); err != nil {
		logger.Warn("%s: User %s (seat %s) rejected: %v. Requested: %s, Hand: %v", op, msg.GetUserId(), seat, err, card, state.Game.Hands[seat])
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), ErrCodeIllegalMove, err.Error())
	}
}

func (mh *matchHandler) handleRevealTrump(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	seat, ok := mh.seatedSender(state, dispatcher, logger, msg, "handleRevealTrump")
	if !ok {
		return
	}
	if err := mh.apply(ctx, state, dispatcher, logger, seat, bot.Action{Kind: bot.ActionRevealTrump}); err != nil {
		logger.Warn("handleRevealTrump: User %s (seat %s) rejected: %v", msg.GetUserId(), seat, err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), ErrCodeIllegalMove, err.Error())
	}
}

func (mh *matchHandler) handleNextRound(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if _, ok := mh.seatedSender(state, dispatcher, logger, msg, "handleNextRound"); !ok {
		return
	}

	next, events, err := state.App.StartNewRound(*state.Game)
	if err != nil {
		logger.Warn("handleNextRound: User %s rejected: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), ErrCodeIllegalMove, err.Error())
		return
	}
	state.Game = &next
	mh.updateLabel(state, dispatcher, logger)
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

// dispatchEvents sends engine events to their recipients and runs host side effects.
func (mh *matchHandler) dispatchEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)

		switch p := ev.Payload.(type) {
		case app.RoundEndedPayload:
			logger.Info("Round %d won by %s for %d point(s) (mendikot=%t, whitewash=%t)", p.Round, p.Result.Winner, p.Points, p.Result.IsMendikot, p.Result.IsWhitewash)
			mh.updateLabel(state, dispatcher, logger)
		case app.GameEndedPayload:
			logger.Info("Game won by %s (%d-%d)", p.Winner, p.Match.RoundsWon.NS, p.Match.RoundsWon.EW)
			mh.settleRewards(ctx, state, logger, p.Winner)
			mh.updateLabel(state, dispatcher, logger)
		}
	}
}

func (mh *matchHandler) settleRewards(ctx context.Context, state *MatchState, logger runtime.Logger, winner domain.Team) {
	if state.Rewards == nil {
		return
	}
	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	updates, err := state.Rewards.SettleMatch(ctx, matchID, winner, state.humanUserIDs())
	if err != nil {
		logger.Error("Failed to credit match rewards: %v", err)
		return
	}
	logger.Info("Credited %d winning player(s).", len(updates))
}

// broadcastEvent encodes ev and sends it to its recipients (all presences if none).
func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, data, err := encodeEvent(ev)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, seat := range ev.Recipients {
			if p, ok := state.Presences[state.Seats[seat]]; ok {
				recipients = append(recipients, p)
			}
		}
		// Private events for bots or disconnected seats must not fall back to a broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	if err := dispatcher.BroadcastMessage(opCode, data, recipients, nil, true); err != nil {
		logger.Error("Failed to broadcast event %v: %v", ev.Kind, err)
	}
}

// broadcastMatchState sends every presence its own view of the match.
func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	var seats [domain.SeatCount]seatView
	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}
		view := seatView{UserID: userID, DisplayName: userID, IsBot: isBotUserId(userID)}
		if p, ok := state.Presences[userID]; ok {
			view.DisplayName = p.GetUsername()
		} else if name := bot.GetBotDisplayName(userID); name != "" {
			view.DisplayName = name
		}
		seats[i] = view
	}

	for userID, presence := range state.Presences {
		viewer := noViewer
		if seat, ok := state.seatOf(userID); ok {
			viewer = int(seat)
		}
		data, err := encodeSnapshot(seats, state.OwnerSeat, state.Tick, state.Game, viewer)
		if err != nil {
			logger.Error("Failed to marshal snapshot for %s: %v", userID, err)
			continue
		}
		if err := dispatcher.BroadcastMessage(OpMatchState, data, []runtime.Presence{presence}, nil, true); err != nil {
			logger.Error("Failed to send snapshot to %s: %v", userID, err)
		}
	}
}

// sendError sends an error event to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	data, err := encodeError(code, message)
	if err != nil {
		logger.Error("Failed to marshal error event: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	if err := dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Error("Failed to send error to %s: %v", userID, err)
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := encodeLabel(state.GetOpenSeatsCount(), state.phaseLabel())
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	return state
}

// MatchSignal answers seat lookups: data is a user ID and the result is that
// user's seat, or empty when they hold none.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, ""
	}
	if seat, seated := matchState.seatOf(data); seated {
		return state, seat.String()
	}
	return state, ""
}
