package domain

// RuleContext is the read-only snapshot the legality checks operate on.
type RuleContext struct {
	Phase         Phase
	Actor         Seat
	Hand          []Card
	Trick         Trick
	TrumpSuit     Suit
	TrumpSet      bool
	TrumpRevealed bool
}

// IsLegalPlay reports whether card may be played from the actor's hand.
//
// Leading is unconstrained. Followers must follow the led suit when able;
// a follower who cannot may play anything once trump is revealed, but may not
// discard a trump-suit card while it is still hidden.
func IsLegalPlay(card Card, ctx RuleContext) bool {
	if !ctx.Phase.Playable() {
		return false
	}
	if !ContainsCard(ctx.Hand, card) {
		return false
	}

	ledSuit, led := ctx.Trick.LedSuit()
	if !led {
		return true
	}

	if HasSuit(ctx.Hand, ledSuit) {
		return card.Suit == ledSuit
	}

	if ctx.TrumpRevealed {
		return true
	}
	return !ctx.TrumpSet || card.Suit != ctx.TrumpSuit
}

// CanRevealTrump reports whether the actor is entitled to have trump revealed:
// trump is still hidden, a suit has been led, and the actor cannot follow it.
func CanRevealTrump(ctx RuleContext) bool {
	if ctx.Phase != PhasePreReveal {
		return false
	}
	ledSuit, led := ctx.Trick.LedSuit()
	if !led {
		return false
	}
	return !HasSuit(ctx.Hand, ledSuit)
}

// CanPlaceTrumpCard reports whether the actor may set the trump card aside.
// Only the leader of the first trick places trump.
func CanPlaceTrumpCard(ctx RuleContext) bool {
	return ctx.Phase == PhaseTrumpPlacement && ctx.Actor == ctx.Trick.Leader
}

// LegalMoves filters the actor's hand down to the cards IsLegalPlay accepts.
func LegalMoves(ctx RuleContext) []Card {
	moves := make([]Card, 0, len(ctx.Hand))
	for _, c := range ctx.Hand {
		if IsLegalPlay(c, ctx) {
			moves = append(moves, c)
		}
	}
	return moves
}
