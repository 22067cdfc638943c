package nakama

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"

	"mendikot/internal/app/rewards"
	"mendikot/internal/bot"
	"mendikot/internal/config"
	"mendikot/internal/domain"
	"mendikot/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

type sentMessage struct {
	opCode    int64
	data      []byte
	presences []runtime.Presence
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	messages     []sentMessage
	labelUpdates int
	lastLabel    string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.messages = append(md.messages, sentMessage{opCode: opCode, data: append([]byte(nil), data...), presences: presences})
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	md.lastLabel = label
	return nil
}

func (md *mockDispatcher) byOpCode(opCode int64) []sentMessage {
	var out []sentMessage
	for _, m := range md.messages {
		if m.opCode == opCode {
			out = append(out, m)
		}
	}
	return out
}

type fakePresence struct {
	userID string
}

func (p fakePresence) GetHidden() bool                   { return false }
func (p fakePresence) GetPersistence() bool              { return false }
func (p fakePresence) GetUsername() string               { return "name-" + p.userID }
func (p fakePresence) GetStatus() string                 { return "" }
func (p fakePresence) GetReason() runtime.PresenceReason { return runtime.PresenceReasonUnknown }
func (p fakePresence) GetUserId() string                 { return p.userID }
func (p fakePresence) GetSessionId() string              { return "session-" + p.userID }
func (p fakePresence) GetNodeId() string                 { return "node" }

type fakeMatchData struct {
	fakePresence
	opCode int64
	data   []byte
}

func (m fakeMatchData) GetOpCode() int64      { return m.opCode }
func (m fakeMatchData) GetData() []byte       { return m.data }
func (m fakeMatchData) GetReliable() bool     { return true }
func (m fakeMatchData) GetReceiveTime() int64 { return 0 }

type mockEconomy struct {
	updates []ports.WalletUpdate
}

func (me *mockEconomy) GetBalance(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

func (me *mockEconomy) UpdateBalances(ctx context.Context, updates []ports.WalletUpdate) error {
	me.updates = append(me.updates, updates...)
	return nil
}

func decodeFields(t *testing.T, data []byte) map[string]interface{} {
	t.Helper()
	msg := &structpb.Struct{}
	if err := proto.Unmarshal(data, msg); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	return msg.AsMap()
}

func cardMessage(t *testing.T, userID string, opCode int64, card domain.Card) fakeMatchData {
	t.Helper()
	req, err := structpb.NewStruct(map[string]interface{}{"card": card.String()})
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	data, err := proto.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return fakeMatchData{fakePresence: fakePresence{userID: userID}, opCode: opCode, data: data}
}

func testConfig() config.GameConfig {
	cfg := config.Default()
	cfg.BotMinDelaySeconds = 0
	cfg.BotMaxDelaySeconds = 0
	cfg.BotAutoFillDelaySeconds = 2
	return cfg
}

// seatedState returns a lobby with a human owner at N and bots elsewhere.
func seatedState(t *testing.T, seed int64) *MatchState {
	t.Helper()
	state := newMatchState(testConfig(), rand.New(rand.NewSource(seed)))
	state.Tick = 1
	state.Seats[domain.SeatN] = "user-1"
	state.Presences["user-1"] = fakePresence{userID: "user-1"}
	state.OwnerSeat = int(domain.SeatN)
	for _, seat := range []domain.Seat{domain.SeatE, domain.SeatS, domain.SeatW} {
		id := bot.FallbackIdentity(int(seat)).UserID
		agent, err := bot.NewAgent(id, seat, bot.LevelNovice, rand.New(rand.NewSource(seed+int64(seat))))
		if err != nil {
			t.Fatalf("NewAgent: %v", err)
		}
		state.Seats[seat] = id
		state.Bots[id] = agent
	}
	return state
}

func TestFindFirstHumanSeat(t *testing.T) {
	bot1 := bot.FallbackIdentity(0).UserID
	bot2 := bot.FallbackIdentity(1).UserID

	tests := []struct {
		name  string
		seats []string
		want  int
	}{
		{name: "FirstHumanAfterBot", seats: []string{bot1, "user-1", "", ""}, want: 1},
		{name: "AllBots", seats: []string{bot1, bot2, "", ""}, want: -1},
		{name: "AllEmpty", seats: []string{"", "", "", ""}, want: -1},
		{name: "FirstHumanIsSeatZero", seats: []string{"user-1", bot1, "user-2", ""}, want: 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := findFirstHumanSeat(test.seats); got != test.want {
				t.Fatalf("findFirstHumanSeat() = %d, want %d", got, test.want)
			}
			if got := shouldTerminateNoHumans(test.seats); got != (test.want == -1) {
				t.Fatalf("shouldTerminateNoHumans() = %t", got)
			}
		})
	}
}

func TestMatchLabel(t *testing.T) {
	tests := []struct {
		name  string
		open  int
		phase string
	}{
		{name: "LobbyState", open: 3, phase: lobbyPhase},
		{name: "PlayingState", open: 0, phase: string(domain.PhasePreReveal)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			label, err := encodeLabel(test.open, test.phase)
			if err != nil {
				t.Fatalf("Failed to marshal label: %v", err)
			}
			var got map[string]interface{}
			if err := json.Unmarshal([]byte(label), &got); err != nil {
				t.Fatalf("label is not JSON: %v", err)
			}
			if got["game"] != GameLabel || got["phase"] != test.phase || got["open"] != float64(test.open) {
				t.Errorf("label = %v", got)
			}
		})
	}
}

func TestProcessBots_FillsLobbyAfterDelay(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state := newMatchState(testConfig(), rand.New(rand.NewSource(1)))
	state.Seats[domain.SeatS] = "user-1"
	state.Presences["user-1"] = fakePresence{userID: "user-1"}
	state.OwnerSeat = int(domain.SeatS)

	state.Tick = 10
	handler.processBots(context.Background(), state, dispatcher, noopLogger{})
	if state.GetOpenSeatsCount() != 3 || state.LobbyWaitSince != 10 {
		t.Fatalf("bots added before delay: seats=%v wait=%d", state.Seats, state.LobbyWaitSince)
	}

	state.Tick = 12
	handler.processBots(context.Background(), state, dispatcher, noopLogger{})
	if state.GetOpenSeatsCount() != 0 {
		t.Fatalf("Expected full table, got %v", state.Seats)
	}
	if state.GetHumanPlayerCount() != 1 || len(state.Bots) != 3 {
		t.Fatalf("Expected 1 human and 3 bots, got %d humans, %d agents", state.GetHumanPlayerCount(), len(state.Bots))
	}
	for seat, id := range state.Seats {
		if agent, ok := state.Bots[id]; ok && agent.Seat != domain.Seat(seat) {
			t.Fatalf("agent %s bound to %s but seated at %d", id, agent.Seat, seat)
		}
	}
	if state.LobbyWaitSince != 0 {
		t.Fatalf("Expected auto-fill timer reset, got %d", state.LobbyWaitSince)
	}
	if len(dispatcher.byOpCode(OpMatchState)) == 0 || dispatcher.labelUpdates == 0 {
		t.Fatalf("Expected match state broadcast and label update after auto-fill")
	}
}

func TestStartGame_DealsPrivately(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state := seatedState(t, 4)

	notOwner := fakeMatchData{fakePresence: fakePresence{userID: "user-2"}, opCode: OpStartGame}
	state.Presences["user-2"] = notOwner.fakePresence
	handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.MatchData{notOwner})
	if state.Game != nil {
		t.Fatalf("non-owner started the game")
	}
	delete(state.Presences, "user-2")

	start := fakeMatchData{fakePresence: fakePresence{userID: "user-1"}, opCode: OpStartGame}
	state.Config.BotsEnabled = false
	handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 2, state, []runtime.MatchData{start})

	if state.Game == nil || state.Game.Phase != domain.PhaseTrumpPlacement {
		t.Fatalf("game not started: %+v", state.Game)
	}

	dealt := dispatcher.byOpCode(OpHandDealt)
	if len(dealt) != 1 {
		t.Fatalf("Expected exactly one hand delivered (to the human), got %d", len(dealt))
	}
	if len(dealt[0].presences) != 1 || dealt[0].presences[0].GetUserId() != "user-1" {
		t.Fatalf("hand sent to %v", dealt[0].presences)
	}
	fields := decodeFields(t, dealt[0].data)
	if hand, _ := fields["hand"].([]interface{}); len(hand) != domain.HandSize {
		t.Fatalf("dealt hand = %v", fields["hand"])
	}
	if len(dispatcher.byOpCode(OpRoundStarted)) != 1 {
		t.Fatalf("Expected round_started broadcast")
	}

	var label map[string]interface{}
	if err := json.Unmarshal([]byte(dispatcher.lastLabel), &label); err != nil || label["phase"] != string(domain.PhaseTrumpPlacement) {
		t.Fatalf("label = %s", dispatcher.lastLabel)
	}
}

func TestIllegalPlaySendsError(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state := seatedState(t, 8)
	state.Config.BotsEnabled = false

	start := fakeMatchData{fakePresence: fakePresence{userID: "user-1"}, opCode: OpStartGame}
	handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.MatchData{start})
	before := state.Game.Clone()

	// Playing a card during trump placement is illegal for everyone.
	card := state.Game.Hands[domain.SeatN][0]
	handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 2, state, []runtime.MatchData{cardMessage(t, "user-1", OpPlayCard, card)})

	errs := dispatcher.byOpCode(OpGameError)
	if len(errs) != 1 || errs[0].presences[0].GetUserId() != "user-1" {
		t.Fatalf("Expected one private error, got %+v", errs)
	}
	if code := decodeFields(t, errs[0].data)["code"]; code != float64(ErrCodeIllegalMove) {
		t.Fatalf("error code = %v", code)
	}
	if state.Game.CardsInPlay() != before.CardsInPlay() || len(state.Game.Hands[domain.SeatN]) != len(before.Hands[domain.SeatN]) {
		t.Fatalf("rejected play changed the game")
	}

	bad := fakeMatchData{fakePresence: fakePresence{userID: "user-1"}, opCode: OpPlayCard, data: []byte{0xff, 0x01}}
	handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 3, state, []runtime.MatchData{bad})
	errs = dispatcher.byOpCode(OpGameError)
	if len(errs) != 2 || decodeFields(t, errs[1].data)["code"] != float64(ErrCodeBadRequest) {
		t.Fatalf("Expected bad request error, got %d errors", len(errs))
	}
}

func TestMatchLoop_PlaysFullGame(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	economy := &mockEconomy{}
	state := seatedState(t, 21)
	state.Rewards = rewards.NewService(economy, 50)

	human, err := bot.NewAgent("user-1", domain.SeatN, bot.LevelNovice, rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}

	ctx := context.Background()
	handler.MatchLoop(ctx, noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.MatchData{
		fakeMatchData{fakePresence: fakePresence{userID: "user-1"}, opCode: OpStartGame},
	})

	for tick := int64(2); state.Game.Phase != domain.PhaseGameEnd; tick++ {
		if tick > 20000 {
			t.Fatalf("game did not finish, phase %s", state.Game.Phase)
		}
		if got := state.Game.CardsInPlay(); got != domain.DeckSize {
			t.Fatalf("cards in play = %d", got)
		}

		var msgs []runtime.MatchData
		g := *state.Game
		switch {
		case g.Phase == domain.PhaseRoundEnd:
			msgs = append(msgs, fakeMatchData{fakePresence: fakePresence{userID: "user-1"}, opCode: OpNextRound})
		case g.CurrentSeat == domain.SeatN:
			action, err := human.Decide(g)
			if err != nil {
				t.Fatalf("human decide: %v", err)
			}
			switch action.Kind {
			case bot.ActionPlaceTrump:
				msgs = append(msgs, cardMessage(t, "user-1", OpPlaceTrump, action.Card))
			case bot.ActionRevealTrump:
				msgs = append(msgs, fakeMatchData{fakePresence: fakePresence{userID: "user-1"}, opCode: OpRevealTrump})
			case bot.ActionPlayCard:
				msgs = append(msgs, cardMessage(t, "user-1", OpPlayCard, action.Card))
			}
		}
		handler.MatchLoop(ctx, noopLogger{}, nil, nil, dispatcher, tick, state, msgs)
	}

	if errs := dispatcher.byOpCode(OpGameError); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", decodeFields(t, errs[0].data))
	}
	ended := dispatcher.byOpCode(OpGameEnded)
	if len(ended) != 1 {
		t.Fatalf("Expected one game_ended event, got %d", len(ended))
	}
	winner := decodeFields(t, ended[0].data)["winner"]

	if winner == string(domain.TeamNS) {
		if len(economy.updates) != 1 || economy.updates[0].UserID != "user-1" || economy.updates[0].Amount != 50 {
			t.Fatalf("Expected reward for user-1, got %+v", economy.updates)
		}
	} else if len(economy.updates) != 0 {
		t.Fatalf("Losing human must not be credited: %+v", economy.updates)
	}
}

func TestMatchLeave_BotTakesOverMidGame(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state := seatedState(t, 5)
	state.Seats[domain.SeatS] = "user-2"
	state.Presences["user-2"] = fakePresence{userID: "user-2"}
	delete(state.Bots, bot.FallbackIdentity(int(domain.SeatS)).UserID)

	start := fakeMatchData{fakePresence: fakePresence{userID: "user-1"}, opCode: OpStartGame}
	handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.MatchData{start})
	if state.Game == nil {
		t.Fatalf("game not started")
	}

	result := handler.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 2, state, []runtime.Presence{fakePresence{userID: "user-2"}})
	if result == nil {
		t.Fatalf("match terminated with a human still seated")
	}
	id := state.Seats[domain.SeatS]
	if !isBotUserId(id) {
		t.Fatalf("seat S = %q, want a bot", id)
	}
	if agent := state.Bots[id]; agent == nil || agent.Seat != domain.SeatS {
		t.Fatalf("no agent for seat S")
	}

	result = handler.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 3, state, []runtime.Presence{fakePresence{userID: "user-1"}})
	if result != nil {
		t.Fatalf("Expected termination with no humans")
	}
}

func TestMatchJoinAttempt(t *testing.T) {
	handler := newMatchHandler()
	state := seatedState(t, 2)
	newcomer := fakePresence{userID: "user-9"}

	// Lobby: a bot seat can be replaced.
	if _, ok, _ := handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, nil, 0, state, newcomer, nil); !ok {
		t.Fatalf("join should replace a bot in the lobby")
	}

	g := domain.NewGameState()
	g.Phase = domain.PhasePreReveal
	state.Game = &g
	if _, ok, reason := handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, nil, 0, state, newcomer, nil); ok || reason == "" {
		t.Fatalf("join should be refused mid-game when full")
	}
	if _, ok, _ := handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, nil, 0, state, fakePresence{userID: "user-1"}, nil); !ok {
		t.Fatalf("seated player should be able to rejoin")
	}
}

func TestMatchJoin_ReplacesBotInLobby(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state := seatedState(t, 3)

	handler.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, []runtime.Presence{fakePresence{userID: "user-9"}})

	if _, ok := state.seatOf("user-9"); !ok {
		t.Fatalf("newcomer not seated: %v", state.Seats)
	}
	if state.GetHumanPlayerCount() != 2 || len(state.Bots) != 2 {
		t.Fatalf("humans=%d bots=%d", state.GetHumanPlayerCount(), len(state.Bots))
	}
	if snapshots := dispatcher.byOpCode(OpMatchState); len(snapshots) != 2 {
		t.Fatalf("Expected one snapshot per presence, got %d", len(snapshots))
	}
}

func TestMatchSignalSeatLookup(t *testing.T) {
	state := seatedState(t, 5)
	mh := &matchHandler{}

	tests := []struct {
		userID string
		want   string
	}{
		{userID: "user-1", want: "N"},
		{userID: bot.FallbackIdentity(int(domain.SeatE)).UserID, want: "E"},
		{userID: "stranger", want: ""},
		{userID: "", want: ""},
	}
	for _, tt := range tests {
		_, got := mh.MatchSignal(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, 1, state, tt.userID)
		if got != tt.want {
			t.Fatalf("MatchSignal(%q) = %q, want %q", tt.userID, got, tt.want)
		}
	}
}
