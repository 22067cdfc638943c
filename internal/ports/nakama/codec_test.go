package nakama

import (
	"errors"
	"testing"

	"mendikot/internal/app"
	"mendikot/internal/domain"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func hiddenTrumpGame() *domain.Game {
	g := domain.NewGameState()
	g.Phase = domain.PhasePreReveal
	g.RoundNumber, g.TrickNumber = 2, 3
	g.Hands[domain.SeatN] = domain.MustParseCards("2H", "3H")
	g.Hands[domain.SeatE] = domain.MustParseCards("4C", "5C", "6C")
	g.Hands[domain.SeatS] = domain.MustParseCards("7D")
	g.Hands[domain.SeatW] = domain.MustParseCards("8S", "9S")
	g.Trump = domain.Trump{Suit: domain.SuitSpades, Card: domain.MustParseCards("AS")[0], Owner: domain.SeatE, Status: domain.TrumpHidden}
	g.Trick = domain.NewTrick(domain.SeatN)
	g.CurrentSeat = domain.SeatN
	return &g
}

func snapshotGame(t *testing.T, g *domain.Game, viewer int) map[string]interface{} {
	t.Helper()
	var seats [domain.SeatCount]seatView
	seats[0] = seatView{UserID: "user-1", DisplayName: "one"}
	data, err := encodeSnapshot(seats, 0, 7, g, viewer)
	if err != nil {
		t.Fatalf("encodeSnapshot: %v", err)
	}
	fields := decodeFields(t, data)
	game, ok := fields["game"].(map[string]interface{})
	if !ok {
		t.Fatalf("snapshot has no game: %v", fields)
	}
	return game
}

func TestSnapshotHidesPrivateCards(t *testing.T) {
	g := hiddenTrumpGame()

	tests := []struct {
		name      string
		viewer    int
		handSize  int
		seesTrump bool
	}{
		{name: "player sees own hand only", viewer: int(domain.SeatN), handSize: 2},
		{name: "owner sees face-down trump", viewer: int(domain.SeatE), handSize: 3, seesTrump: true},
		{name: "spectator sees no hand", viewer: noViewer, handSize: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game := snapshotGame(t, g, tt.viewer)

			hand, hasHand := game["hand"].([]interface{})
			if tt.handSize < 0 {
				if hasHand {
					t.Fatalf("spectator got a hand: %v", hand)
				}
			} else if len(hand) != tt.handSize {
				t.Fatalf("hand = %v, want %d cards", hand, tt.handSize)
			}

			trump := game["trump"].(map[string]interface{})
			_, hasCard := trump["card"]
			_, hasSuit := trump["suit"]
			if hasCard != tt.seesTrump || hasSuit != tt.seesTrump {
				t.Fatalf("trump view = %v", trump)
			}

			counts := game["hand_counts"].([]interface{})
			if counts[domain.SeatE] != float64(3) || counts[domain.SeatS] != float64(1) {
				t.Fatalf("hand counts = %v", counts)
			}
		})
	}
}

func TestSnapshotRevealedTrumpIsPublic(t *testing.T) {
	g := hiddenTrumpGame()
	g.Trump.Status = domain.TrumpRevealed
	g.Phase = domain.PhasePostReveal

	game := snapshotGame(t, g, int(domain.SeatW))
	trump := game["trump"].(map[string]interface{})
	if trump["suit"] != string(domain.SuitSpades) || trump["card"] != "AS" {
		t.Fatalf("revealed trump view = %v", trump)
	}
	if moves, _ := game["legal_moves"].([]interface{}); len(moves) != 0 {
		t.Fatalf("legal moves offered off turn: %v", moves)
	}

	game = snapshotGame(t, g, int(domain.SeatN))
	if moves, _ := game["legal_moves"].([]interface{}); len(moves) != 2 {
		t.Fatalf("legal moves for leader = %v", game["legal_moves"])
	}
}

func TestEncodeEventTrumpPlacedPublicCopy(t *testing.T) {
	card := domain.MustParseCards("QD")[0]

	_, public, err := encodeEvent(app.Event{Kind: app.EventTrumpPlaced, Payload: app.TrumpPlacedPayload{Owner: domain.SeatW}})
	if err != nil {
		t.Fatalf("encodeEvent: %v", err)
	}
	if _, leaked := decodeFields(t, public)["card"]; leaked {
		t.Fatalf("public trump_placed carries the card")
	}

	opCode, private, err := encodeEvent(app.Event{Kind: app.EventTrumpPlaced, Payload: app.TrumpPlacedPayload{Owner: domain.SeatW, Card: &card}})
	if err != nil {
		t.Fatalf("encodeEvent: %v", err)
	}
	if opCode != OpTrumpPlaced || decodeFields(t, private)["card"] != "QD" {
		t.Fatalf("private trump_placed = %d %v", opCode, decodeFields(t, private))
	}

	if _, _, err := encodeEvent(app.Event{Kind: "mystery", Payload: 42}); !errors.Is(err, errUnknownEvent) {
		t.Fatalf("unknown payload err = %v", err)
	}
}

func TestEncodeEventTrickCompleted(t *testing.T) {
	ev := app.Event{
		Kind: app.EventTrickCompleted,
		Payload: app.TrickCompletedPayload{
			Number: 4,
			Plays: []domain.Play{
				{Seat: domain.SeatE, Card: domain.MustParseCards("10H")[0]},
				{Seat: domain.SeatS, Card: domain.MustParseCards("KH")[0]},
			},
			Result: domain.TrickResult{Winner: domain.SeatS, WinningCard: domain.MustParseCards("KH")[0], CapturedTens: 1},
			Tally:  domain.RoundTally{CapturedTens: domain.TeamCount{NS: 1}, TricksWon: domain.TeamCount{NS: 3, EW: 1}},
		},
	}
	opCode, data, err := encodeEvent(ev)
	if err != nil {
		t.Fatalf("encodeEvent: %v", err)
	}
	fields := decodeFields(t, data)
	if opCode != OpTrickCompleted || fields["winner"] != "S" || fields["winning_card"] != "KH" || fields["kind"] != string(app.EventTrickCompleted) {
		t.Fatalf("fields = %v", fields)
	}
	tally := fields["tally"].(map[string]interface{})
	if tricks := tally["tricks_won"].(map[string]interface{}); tricks["NS"] != float64(3) {
		t.Fatalf("tally = %v", tally)
	}
}

func TestDecodeCardRequest(t *testing.T) {
	encode := func(fields map[string]interface{}) []byte {
		msg, err := structpb.NewStruct(fields)
		if err != nil {
			t.Fatalf("NewStruct: %v", err)
		}
		data, err := proto.Marshal(msg)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		return data
	}

	card, err := decodeCardRequest(encode(map[string]interface{}{"card": "10d"}))
	if err != nil || card != domain.MustParseCards("10D")[0] {
		t.Fatalf("decodeCardRequest = %v, %v", card, err)
	}
	if _, err := decodeCardRequest(nil); !errors.Is(err, errMissingCard) {
		t.Fatalf("empty request err = %v", err)
	}
	if _, err := decodeCardRequest(encode(map[string]interface{}{"card": "1X"})); err == nil {
		t.Fatalf("expected parse error")
	}
}
