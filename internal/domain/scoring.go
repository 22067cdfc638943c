package domain

const (
	// TotalTens is the number of rank-10 cards in the deck.
	TotalTens = 4
	// TricksPerRound is the number of tricks in a full round.
	TricksPerRound = 13
	// MatchPointsToWin is the round-point total that ends the match.
	MatchPointsToWin = 3

	pointsMendikot  = 4
	pointsWhitewash = 3
	pointsNormal    = 1
)

// RoundResult describes how a round was decided. Winner is empty while the
// round is still open.
type RoundResult struct {
	Winner      Team
	IsMendikot  bool
	IsWhitewash bool
}

// Decided reports whether the round has a winner.
func (r RoundResult) Decided() bool {
	return r.Winner != ""
}

// Points returns the match points the winner earns for the round.
func (r RoundResult) Points() int {
	switch {
	case !r.Decided():
		return 0
	case r.IsMendikot:
		return pointsMendikot
	case r.IsWhitewash:
		return pointsWhitewash
	default:
		return pointsNormal
	}
}

// CheckRoundEnd decides the round from the tally. The order of the checks is
// significant: all four tens beats a whitewash, which beats a plain majority
// of tens, which beats the trick-count tiebreak on a 2-2 split.
func CheckRoundEnd(tally RoundTally) RoundResult {
	for _, team := range Teams {
		if tally.CapturedTens.Get(team) == TotalTens {
			return RoundResult{Winner: team, IsMendikot: true}
		}
	}

	for _, team := range Teams {
		if tally.TricksWon.Get(team) == TricksPerRound {
			return RoundResult{Winner: team, IsWhitewash: true}
		}
	}

	for _, team := range Teams {
		if tally.CapturedTens.Get(team) >= 3 {
			return RoundResult{Winner: team}
		}
	}

	if tally.CapturedTens.NS == 2 && tally.CapturedTens.EW == 2 {
		for _, team := range Teams {
			if tally.TricksWon.Get(team) >= 7 {
				return RoundResult{Winner: team}
			}
		}
	}

	return RoundResult{}
}

// GameResult reports whether the match is over and who won it.
type GameResult struct {
	Winner Team
	IsOver bool
}

// CheckGameEnd reports the match winner once a team reaches MatchPointsToWin.
func CheckGameEnd(tally MatchTally) GameResult {
	for _, team := range Teams {
		if tally.RoundsWon.Get(team) >= MatchPointsToWin {
			return GameResult{Winner: team, IsOver: true}
		}
	}
	return GameResult{}
}

// NextDealer picks the dealer of the following round. After a whitewash the
// dealer's partner deals; if the dealer's team won the dealer keeps the deal;
// otherwise the deal passes to the next seat.
func NextDealer(dealer Seat, result RoundResult) Seat {
	switch {
	case result.IsWhitewash:
		return dealer.Partner()
	case result.Decided() && result.Winner.Has(dealer):
		return dealer
	default:
		return dealer.Next()
	}
}
