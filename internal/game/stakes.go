package game

// Response is one seat's standing in a response window.
type Response int

const (
	ResponsePending Response = iota
	ResponseAccept
	ResponseFold
)

func (d Response) String() string {
	switch d {
	case ResponsePending:
		return "pending"
	case ResponseAccept:
		return "accept"
	case ResponseFold:
		return "fold"
	default:
		return "unknown"
	}
}

// ResponseSet collects accept/fold decisions from a set of seats fixed
// at open time. The same shape backs raise, forced-gamble and blind
// sub-phases; the initiator (if any) is pre-seeded with accept.
type ResponseSet struct {
	decisions map[string]Response
}

// newResponseSet opens a window over the eligible seats. initiator may
// be empty (forced gamble has no initiating seat).
func newResponseSet(eligible []string, initiator string) *ResponseSet {
	rs := &ResponseSet{decisions: make(map[string]Response, len(eligible))}
	for _, name := range eligible {
		rs.decisions[name] = ResponsePending
	}
	if initiator != "" {
		rs.decisions[initiator] = ResponseAccept
	}
	return rs
}

// Get returns the seat's decision and whether it is in the eligible set.
func (rs *ResponseSet) Get(name string) (Response, bool) {
	d, ok := rs.decisions[name]
	return d, ok
}

func (rs *ResponseSet) set(name string, d Response) {
	rs.decisions[name] = d
}

// Done reports whether every eligible seat has answered.
func (rs *ResponseSet) Done() bool {
	for _, d := range rs.decisions {
		if d == ResponsePending {
			return false
		}
	}
	return true
}

// pending returns the seats that have not answered yet.
func (rs *ResponseSet) pending() []string {
	var out []string
	for name, d := range rs.decisions {
		if d == ResponsePending {
			out = append(out, name)
		}
	}
	return out
}

// Raise bumps the table stake ("toep"), locking the raiser in at the
// new value and opening a response window against everyone else.
func (r *Room) Raise(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started || r.round == nil {
		return rejectf(RejectNotStarted, "game not started")
	}
	rs := r.round
	if rs.Phase != PhasePlaying {
		return rejectf(RejectWrongPhase, "cannot raise during %s", rs.Phase)
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
	if rs.LastRaiser == name {
		return rejectf(RejectAlreadyRaised, "cannot raise twice in a row")
	}
	if rs.Stake >= r.rules.MaxStake {
		return rejectf(RejectStakeCeiling, "stake is already at the ceiling of %d", r.rules.MaxStake)
	}
	if r.playingForElimination(s) {
		return rejectf(RejectForcedToPlay, "seats playing for elimination cannot raise")
	}

	rs.PriorEntry = copyStakes(rs.EntryStake)
	rs.Stake++
	rs.LastRaiser = name
	rs.EntryStake[name] = rs.Stake
	rs.Liability = rs.Stake

	eligible := make([]string, 0, r.countInRound())
	for _, seat := range r.seats {
		if rs.InRound[seat.Name] {
			eligible = append(eligible, seat.Name)
		}
	}
	rs.Responses = newResponseSet(eligible, name)

	r.setPhase(PhaseRaiseResponse)
	r.logger.Info("Stake raised", "seat", name, "stake", rs.Stake)
	r.schedule(r.rules.ResponseWindow, PhaseRaiseResponse, r.autoAcceptLocked)
	r.notifyLocked(name + " raised the stake")
	return nil
}

// openGambleLocked starts the forced near-elimination sub-phase: every
// contesting seat must accept the elevated liability or fold out.
func (r *Room) openGambleLocked() {
	rs := r.round

	rs.PriorEntry = copyStakes(rs.EntryStake)
	rs.Liability = r.rules.GambleStake

	eligible := make([]string, 0, r.countInRound())
	for _, seat := range r.seats {
		if rs.InRound[seat.Name] {
			eligible = append(eligible, seat.Name)
		}
	}
	rs.Responses = newResponseSet(eligible, "")

	r.setPhase(PhaseForcedGamble)
	r.logger.Info("Forced gamble opened", "liability", rs.Liability)
	r.schedule(r.rules.ResponseWindow, PhaseForcedGamble, r.autoAcceptLocked)
	r.notifyLocked("forced gamble")
}

// openBlindResponseLocked opens the deferred response window for a
// blind raise honored at this deal.
func (r *Room) openBlindResponseLocked() {
	rs := r.round

	// A fold in this window pays whatever the seat was locked in at
	// coming into it, which after a resolved gamble is the gamble stake.
	rs.PriorEntry = copyStakes(rs.EntryStake)
	rs.Liability = r.rules.BlindStake
	eligible := make([]string, 0, r.countInRound())
	for _, seat := range r.seats {
		if rs.InRound[seat.Name] {
			eligible = append(eligible, seat.Name)
		}
	}
	rs.Responses = newResponseSet(eligible, rs.pendingBlind)
	raiser := rs.pendingBlind
	rs.pendingBlind = ""

	r.setPhase(PhaseBlindResponse)
	r.logger.Info("Blind raise response opened", "seat", raiser, "stake", rs.Stake)
	r.schedule(r.rules.ResponseWindow, PhaseBlindResponse, r.autoAcceptLocked)
	r.notifyLocked(raiser + " raised blind")
}

// Respond answers an open response window with accept or fold. A fold
// pays the seat's pre-raise entry stake and drops it from the round; a
// seat playing for elimination cannot back out and is silently held in.
func (r *Room) Respond(name string, accept bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started || r.round == nil {
		return rejectf(RejectNotStarted, "game not started")
	}
	rs := r.round
	if !rs.Phase.isResponsePhase() {
		return rejectf(RejectWrongPhase, "no response expected during %s", rs.Phase)
	}
	s := r.seat(name)
	if s == nil {
		return rejectf(RejectUnknownSeat, "no seat named %q", name)
	}
	d, eligible := rs.Responses.Get(name)
	if !eligible {
		return rejectf(RejectWrongPhase, "seat %q is not part of this response window", name)
	}
	if d != ResponsePending {
		return rejectf(RejectAlreadyResponded, "seat %q already responded", name)
	}

	if !accept && r.playingForElimination(s) {
		accept = true
	}

	action := name + " accepted"
	if accept {
		rs.Responses.set(name, ResponseAccept)
		rs.EntryStake[name] = rs.Liability
	} else {
		rs.Responses.set(name, ResponseFold)
		s.Score += rs.PriorEntry[name]
		delete(rs.InRound, name)
		// A card the folder already put into the open trick no longer
		// competes.
		r.dropFromTrickLocked(name)
		action = name + " folded"
		r.logger.Info("Seat folded out of window", "seat", name, "penalty", rs.PriorEntry[name], "score", s.Score)
	}

	if !r.resolveResponsesLocked() {
		r.notifyLocked(action)
	}
	return nil
}

// autoAcceptLocked is the response-window timeout: every still-pending
// seat is committed to accept and the window resolves.
func (r *Room) autoAcceptLocked() {
	rs := r.round

	for _, name := range rs.Responses.pending() {
		rs.Responses.set(name, ResponseAccept)
		rs.EntryStake[name] = rs.Liability
	}
	r.logger.Info("Response window expired, auto-accepting")
	if !r.resolveResponsesLocked() {
		r.notifyLocked("responses timed out")
	}
}

// resolveResponsesLocked finishes the window when everyone has answered
// or the round is down to one seat. Returns true if state moved on.
func (r *Room) resolveResponsesLocked() bool {
	rs := r.round

	if r.countInRound() == 1 {
		r.endRoundLocked()
		return true
	}
	if !rs.Responses.Done() {
		return false
	}

	from := rs.Phase
	rs.Responses = nil
	rs.PriorEntry = nil

	// A forced gamble pre-empts the laundry window for its round, but a
	// queued blind raise still has to be answered before play starts.
	if from == PhaseForcedGamble && rs.pendingBlind != "" {
		r.openBlindResponseLocked()
		return true
	}

	r.setPhase(PhasePlaying)
	// Folds during the window may have taken out the seat holding the
	// turn, or left the open trick with a card from every remaining
	// contender already in it.
	if !rs.InRound[rs.TurnSeat] {
		rs.TurnSeat = r.nextInRound(rs.TurnSeat)
	}
	r.maybeFinishTrickLocked()
	r.notifyLocked("play resumes")
	return true
}
