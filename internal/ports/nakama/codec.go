package nakama

import (
	"errors"
	"fmt"

	"mendikot/internal/app"
	"mendikot/internal/domain"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	errMissingCard  = errors.New("request is missing a card")
	errUnknownEvent = errors.New("unknown event kind")
)

const noViewer = -1

// seatView is the public description of one seat.
type seatView struct {
	UserID      string
	DisplayName string
	IsBot       bool
}

func cardsValue(cards []domain.Card) []interface{} {
	out := make([]interface{}, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.String())
	}
	return out
}

func playsValue(plays []domain.Play) []interface{} {
	out := make([]interface{}, 0, len(plays))
	for _, p := range plays {
		out = append(out, map[string]interface{}{
			"seat": p.Seat.String(),
			"card": p.Card.String(),
		})
	}
	return out
}

func teamCountValue(c domain.TeamCount) map[string]interface{} {
	return map[string]interface{}{
		string(domain.TeamNS): c.NS,
		string(domain.TeamEW): c.EW,
	}
}

func tallyValue(t domain.RoundTally) map[string]interface{} {
	return map[string]interface{}{
		"captured_tens": teamCountValue(t.CapturedTens),
		"tricks_won":    teamCountValue(t.TricksWon),
	}
}

func roundResultValue(r domain.RoundResult) map[string]interface{} {
	return map[string]interface{}{
		"winner":     string(r.Winner),
		"mendikot":   r.IsMendikot,
		"whitewash":  r.IsWhitewash,
		"points":     r.Points(),
		"is_decided": r.Decided(),
	}
}

// eventFields maps an engine event onto its op code and wire fields.
func eventFields(ev app.Event) (int64, map[string]interface{}, error) {
	switch p := ev.Payload.(type) {
	case app.RoundStartedPayload:
		return OpRoundStarted, map[string]interface{}{
			"round":  p.Round,
			"dealer": p.Dealer.String(),
			"leader": p.Leader.String(),
		}, nil
	case app.HandDealtPayload:
		return OpHandDealt, map[string]interface{}{
			"seat": p.Seat.String(),
			"hand": cardsValue(p.Hand),
		}, nil
	case app.TrumpPlacedPayload:
		fields := map[string]interface{}{"owner": p.Owner.String()}
		if p.Card != nil {
			fields["card"] = p.Card.String()
		}
		return OpTrumpPlaced, fields, nil
	case app.CardPlayedPayload:
		return OpCardPlayed, map[string]interface{}{
			"seat":           p.Seat.String(),
			"card":           p.Card.String(),
			"next_turn_seat": p.NextTurnSeat.String(),
		}, nil
	case app.RevealRequiredPayload:
		return OpRevealRequired, map[string]interface{}{"seat": p.Seat.String()}, nil
	case app.TrumpRevealedPayload:
		return OpTrumpRevealed, map[string]interface{}{
			"requested_by": p.RequestedBy.String(),
			"owner":        p.Owner.String(),
			"card":         p.Card.String(),
			"suit":         string(p.Card.Suit),
			"trick":        p.Trick,
		}, nil
	case app.TrickCompletedPayload:
		return OpTrickCompleted, map[string]interface{}{
			"number":        p.Number,
			"plays":         playsValue(p.Plays),
			"winner":        p.Result.Winner.String(),
			"winning_card":  p.Result.WinningCard.String(),
			"captured_tens": p.Result.CapturedTens,
			"tally":         tallyValue(p.Tally),
			"standing":      roundResultValue(p.Standing),
		}, nil
	case app.RoundEndedPayload:
		return OpRoundEnded, map[string]interface{}{
			"round":  p.Round,
			"result": roundResultValue(p.Result),
			"points": p.Points,
			"match":  teamCountValue(p.Match.RoundsWon),
		}, nil
	case app.GameEndedPayload:
		return OpGameEnded, map[string]interface{}{
			"winner": string(p.Winner),
			"match":  teamCountValue(p.Match.RoundsWon),
		}, nil
	default:
		return 0, nil, fmt.Errorf("%w: %s", errUnknownEvent, ev.Kind)
	}
}

// encodeEvent serialises an engine event as a protobuf Struct.
func encodeEvent(ev app.Event) (int64, []byte, error) {
	opCode, fields, err := eventFields(ev)
	if err != nil {
		return 0, nil, err
	}
	fields["kind"] = string(ev.Kind)
	data, err := marshalFields(fields)
	return opCode, data, err
}

func marshalFields(fields map[string]interface{}) ([]byte, error) {
	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build struct: %w", err)
	}
	return proto.Marshal(msg)
}

// gameView is what viewer may know about g. Other hands are reduced to counts
// and the trump card stays hidden from everyone but its owner until revealed.
func gameView(g *domain.Game, viewer int) map[string]interface{} {
	counts := make([]interface{}, 0, domain.SeatCount)
	for _, seat := range domain.Seats {
		counts = append(counts, len(g.Hands[seat]))
	}

	trump := map[string]interface{}{"status": string(g.Trump.Status)}
	if g.Trump.Set() {
		trump["owner"] = g.Trump.Owner.String()
	}
	if g.Trump.Revealed() {
		trump["suit"] = string(g.Trump.Suit)
		trump["card"] = g.Trump.Card.String()
		trump["revealed_at_trick"] = g.Trump.RevealedAtTrick
	} else if g.Trump.Set() && viewer == int(g.Trump.Owner) {
		trump["card"] = g.Trump.Card.String()
		trump["suit"] = string(g.Trump.Suit)
	}

	view := map[string]interface{}{
		"phase":        string(g.Phase),
		"round":        g.RoundNumber,
		"trick_number": g.TrickNumber,
		"dealer":       g.Dealer.String(),
		"current_seat": g.CurrentSeat.String(),
		"leader":       g.Trick.Leader.String(),
		"trick":        playsValue(g.Trick.Plays),
		"hand_counts":  counts,
		"trump":        trump,
		"tally":        tallyValue(g.Round),
		"match":        teamCountValue(g.Match.RoundsWon),
	}
	if g.LastRound != nil {
		view["last_round"] = roundResultValue(*g.LastRound)
	}
	if viewer >= 0 && viewer < domain.SeatCount {
		seat := domain.Seat(viewer)
		view["hand"] = cardsValue(g.Hands[seat])
		if g.CurrentSeat == seat && g.Phase.Playable() {
			view["legal_moves"] = cardsValue(domain.LegalMoves(g.RuleContext(seat)))
		}
	}
	return view
}

// encodeSnapshot builds the match snapshot as seen from viewer's seat.
func encodeSnapshot(seats [domain.SeatCount]seatView, ownerSeat int, tick int64, g *domain.Game, viewer int) ([]byte, error) {
	players := make([]interface{}, 0, domain.SeatCount)
	for i, s := range seats {
		if s.UserID == "" {
			continue
		}
		players = append(players, map[string]interface{}{
			"seat":         domain.Seat(i).String(),
			"seat_index":   i,
			"team":         string(domain.Seat(i).Team()),
			"user_id":      s.UserID,
			"display_name": s.DisplayName,
			"is_bot":       s.IsBot,
			"is_owner":     i == ownerSeat,
		})
	}

	fields := map[string]interface{}{
		"owner_seat": ownerSeat,
		"tick":       tick,
		"players":    players,
		"you":        viewer,
	}
	if g != nil {
		fields["game"] = gameView(g, viewer)
	}
	return marshalFields(fields)
}

func encodeError(code int, message string) ([]byte, error) {
	return marshalFields(map[string]interface{}{
		"code":    code,
		"message": message,
	})
}

// decodeRequest parses a client payload. An empty payload is an empty request.
func decodeRequest(data []byte) (*structpb.Struct, error) {
	req := &structpb.Struct{}
	if err := proto.Unmarshal(data, req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}

// decodeCardRequest reads the "card" field, e.g. {"card": "10H"}.
func decodeCardRequest(data []byte) (domain.Card, error) {
	req, err := decodeRequest(data)
	if err != nil {
		return domain.Card{}, err
	}
	raw := req.GetFields()["card"].GetStringValue()
	if raw == "" {
		return domain.Card{}, errMissingCard
	}
	return domain.ParseCard(raw)
}

// encodeLabel renders the match label queried by quick match.
func encodeLabel(open int, phase string) (string, error) {
	label, err := structpb.NewStruct(map[string]interface{}{
		"game":  GameLabel,
		"open":  open,
		"phase": phase,
	})
	if err != nil {
		return "", err
	}
	data, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(label)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
