package game

// PlayCard plays the card at cardIndex from the seat's hand into the
// current trick. Validation happens strictly before any mutation.
func (r *Room) PlayCard(name string, cardIndex int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started || r.round == nil {
		return rejectf(RejectNotStarted, "game not started")
	}
	rs := r.round
	if rs.Phase != PhasePlaying {
		return rejectf(RejectWrongPhase, "cannot play a card during %s", rs.Phase)
	}
	if rs.EvalPending {
		return rejectf(RejectWrongPhase, "trick is being resolved")
	}
	s := r.seat(name)
	if s == nil {
		return rejectf(RejectUnknownSeat, "no seat named %q", name)
	}
	if !rs.InRound[name] {
		return rejectf(RejectNotYourTurn, "seat %q is not contesting this round", name)
	}
	if rs.TurnSeat != name {
		return rejectf(RejectNotYourTurn, "it is %s's turn", rs.TurnSeat)
	}
	if cardIndex < 0 || cardIndex >= len(s.Hand) {
		return rejectf(RejectCardNotHeld, "card index %d out of range", cardIndex)
	}

	card := s.Hand[cardIndex]
	if rs.LeadSuit != nil && card.Suit != *rs.LeadSuit {
		for _, held := range s.Hand {
			if held.Suit == *rs.LeadSuit {
				return rejectf(RejectMustFollowSuit, "must follow %s", rs.LeadSuit)
			}
		}
	}

	s.Hand = append(s.Hand[:cardIndex], s.Hand[cardIndex+1:]...)
	rs.Trick = append(rs.Trick, TrickPlay{Seat: name, Card: card})
	if len(rs.Trick) == 1 {
		suit := card.Suit
		rs.LeadSuit = &suit
	}

	r.logger.Debug("Card played", "seat", name, "card", card.String())

	if len(rs.Trick) == r.countInRound() {
		// Hold the table briefly so everyone sees the full trick before
		// it is swept.
		rs.EvalPending = true
		r.schedule(r.rules.TrickDelay, PhasePlaying, r.evaluateTrickLocked)
	} else {
		rs.TurnSeat = r.nextInRound(name)
	}

	r.notifyLocked(name + " played " + card.String())
	return nil
}

// evaluateTrickLocked resolves a completed trick: the strongest card of
// the lead suit wins. Strengths within a suit are pairwise distinct, so
// there is always exactly one winner.
func (r *Room) evaluateTrickLocked() {
	rs := r.round

	winner := ""
	best := 0
	for _, play := range rs.Trick {
		if play.Card.Suit == *rs.LeadSuit && play.Card.Strength() > best {
			best = play.Card.Strength()
			winner = play.Seat
		}
	}

	rs.TricksWon[winner]++
	rs.Trick = nil
	rs.LeadSuit = nil
	rs.EvalPending = false
	rs.TricksDone++

	r.logger.Debug("Trick resolved", "winner", winner, "tricks", rs.TricksDone)

	if rs.TricksDone >= r.rules.TricksPerRound {
		r.endRoundLocked()
		return
	}

	rs.TurnSeat = winner
	r.notifyLocked(winner + " won the trick")
}

// Fold abandons the round outright, paying the seat's current entry
// stake. Only legal on the folder's own turn while play is open.
func (r *Room) Fold(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started || r.round == nil {
		return rejectf(RejectNotStarted, "game not started")
	}
	rs := r.round
	if rs.Phase != PhasePlaying {
		return rejectf(RejectWrongPhase, "cannot fold during %s", rs.Phase)
	}
	if rs.EvalPending {
		return rejectf(RejectWrongPhase, "trick is being resolved")
	}
	s := r.seat(name)
	if s == nil {
		return rejectf(RejectUnknownSeat, "no seat named %q", name)
	}
	if !rs.InRound[name] {
		return rejectf(RejectNotYourTurn, "seat %q is not contesting this round", name)
	}
	if rs.TurnSeat != name {
		return rejectf(RejectNotYourTurn, "it is %s's turn", rs.TurnSeat)
	}
	if r.playingForElimination(s) {
		return rejectf(RejectForcedToPlay, "seats playing for elimination cannot fold")
	}

	s.Score += rs.EntryStake[name]
	next := r.nextInRound(name)
	delete(rs.InRound, name)
	r.logger.Info("Seat folded", "seat", name, "penalty", rs.EntryStake[name], "score", s.Score)

	if r.countInRound() == 1 {
		r.endRoundLocked()
		return nil
	}

	rs.TurnSeat = next
	// The fold may have been the last play the trick was waiting on.
	r.maybeFinishTrickLocked()

	r.notifyLocked(name + " folded")
	return nil
}

// dropFromTrickLocked removes a departed seat's card from the open
// trick. The lead re-anchors on the surviving first play so the trick
// still has exactly one winner; an emptied trick waits for a fresh lead.
func (r *Room) dropFromTrickLocked(name string) {
	rs := r.round
	for i, play := range rs.Trick {
		if play.Seat == name {
			rs.Trick = append(rs.Trick[:i], rs.Trick[i+1:]...)
			break
		}
	}
	if len(rs.Trick) == 0 {
		rs.LeadSuit = nil
		return
	}
	suit := rs.Trick[0].Card.Suit
	rs.LeadSuit = &suit
}

// maybeFinishTrickLocked schedules evaluation when the open trick
// already holds a card from every remaining contender. Folds and
// departures can complete a trick without anyone playing.
func (r *Room) maybeFinishTrickLocked() {
	rs := r.round
	if rs.Phase != PhasePlaying || rs.EvalPending {
		return
	}
	if len(rs.Trick) == 0 || len(rs.Trick) != r.countInRound() {
		return
	}
	rs.EvalPending = true
	r.schedule(r.rules.TrickDelay, PhasePlaying, r.evaluateTrickLocked)
}
