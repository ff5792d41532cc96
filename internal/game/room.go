package game

import (
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// RoomUpdate carries the per-seat filtered views produced after a
// mutation. Views are keyed by seat name; each seat must only ever be
// shown its own entry.
type RoomUpdate struct {
	Code       string
	LastAction string
	Views      map[string]RoomView
}

// Room is the authoritative aggregate for one game session. All engine
// operations go through the room's mutex, so actions for a room are
// handled strictly one at a time; rooms share nothing with each other.
type Room struct {
	Code string

	mu      sync.Mutex
	hostID  string
	seats   []*Seat
	started bool
	round   *RoundState

	// epoch increments on every phase transition and claim change.
	// Deferred callbacks capture the epoch at schedule time and no-op
	// when it has moved on; timers are never cancelled explicitly.
	epoch uint64

	rules    Rules
	clock    quartz.Clock
	rng      *rand.Rand
	logger   *log.Logger
	onUpdate func(RoomUpdate)
}

// NewRoom creates an empty room with the given code.
func NewRoom(code string, rules Rules, clock quartz.Clock, rng *rand.Rand, logger *log.Logger) *Room {
	return &Room{
		Code:   code,
		rules:  rules,
		clock:  clock,
		rng:    rng,
		logger: logger.WithPrefix("room").With("code", code),
	}
}

// SetUpdateHook registers the broadcast fan-out. The hook runs with the
// room lock held so a broadcast always precedes the next accepted
// action; it must not call back into the room.
func (r *Room) SetUpdateHook(fn func(RoomUpdate)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onUpdate = fn
}

// Host returns the current host seat name.
func (r *Room) Host() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostID
}

// Started reports whether the game has begun.
func (r *Room) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

// SeatNames returns the seat names in table order.
func (r *Room) SeatNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.seats))
	for i, s := range r.seats {
		names[i] = s.Name
	}
	return names
}

// AddSeat seats a participant. The first seat becomes host.
func (r *Room) AddSeat(name string, isBot bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return rejectf(RejectAlreadyStarted, "game already started in room %s", r.Code)
	}
	if len(r.seats) >= r.rules.MaxSeats {
		return rejectf(RejectRoomFull, "room %s is full", r.Code)
	}
	for _, s := range r.seats {
		if s.Name == name {
			return rejectf(RejectDuplicateName, "name %q already taken", name)
		}
	}

	r.seats = append(r.seats, &Seat{Name: name, IsBot: isBot})
	if r.hostID == "" {
		r.hostID = name
	}
	r.logger.Info("Seat joined", "name", name, "bot", isBot, "seats", len(r.seats))
	r.notifyLocked(name + " joined")
	return nil
}

// RemoveSeat removes a participant (explicit leave). Returns the new
// host name if host changed, and whether the room is now empty.
func (r *Room) RemoveSeat(name string) (newHost string, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, s := range r.seats {
		if s.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", len(r.seats) == 0
	}

	var turnNext string
	if r.round != nil && r.round.TurnSeat == name {
		turnNext = r.nextInRound(name)
	}

	r.seats = append(r.seats[:idx], r.seats[idx+1:]...)
	if r.round != nil {
		delete(r.round.InRound, name)
		delete(r.round.EntryStake, name)
		delete(r.round.TricksWon, name)
		r.dropFromTrickLocked(name)
		if r.round.TurnSeat == name {
			r.round.TurnSeat = turnNext
		}
	}

	if r.hostID == name {
		r.hostID = ""
		if len(r.seats) > 0 {
			r.hostID = r.seats[0].Name
			newHost = r.hostID
		}
	}

	r.logger.Info("Seat left", "name", name, "seats", len(r.seats))
	if len(r.seats) == 0 {
		return newHost, true
	}

	// A departure mid-round can leave a single contender, strand the
	// turn, or be the answer an open response window was waiting on.
	if r.started && r.round != nil {
		switch {
		case r.round.Phase.isResponsePhase():
			if d, ok := r.round.Responses.Get(name); ok && d == ResponsePending {
				r.round.Responses.set(name, ResponseFold)
			}
			r.resolveResponsesLocked()
		case r.round.Phase == PhasePlaying || r.round.Phase == PhaseLaundry:
			if r.countInRound() <= 1 {
				r.endRoundLocked()
			} else {
				r.maybeFinishTrickLocked()
			}
		}
	}
	r.notifyLocked(name + " left")
	return newHost, false
}

// ReassignHost moves host duties to the next seat. Called by the server
// when the host's transport drops; the seat itself stays (a disconnect
// never folds a hand).
func (r *Room) ReassignHost(gone string) (newHost string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hostID != gone {
		return ""
	}
	for _, s := range r.seats {
		if s.Name != gone && !s.IsBot {
			r.hostID = s.Name
			r.logger.Info("Host reassigned", "from", gone, "to", s.Name)
			return s.Name
		}
	}
	return ""
}

// Start begins the game. Host only, and only with enough seats.
func (r *Room) Start(byName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return rejectf(RejectAlreadyStarted, "game already started in room %s", r.Code)
	}
	if byName != r.hostID {
		return rejectf(RejectNotHost, "only the host may start the game")
	}
	if len(r.seats) < r.rules.MinSeats {
		return rejectf(RejectBadAction, "need at least %d players to start", r.rules.MinSeats)
	}

	r.started = true
	r.round = newRoundState()
	r.logger.Info("Game started", "seats", len(r.seats))
	r.startRoundLocked(r.seats[0].Name)
	return nil
}

// seat looks up a seat by name.
func (r *Room) seat(name string) *Seat {
	for _, s := range r.seats {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// activeSeats returns the non-eliminated seats in table order.
func (r *Room) activeSeats() []*Seat {
	var out []*Seat
	for _, s := range r.seats {
		if s.Active() {
			out = append(out, s)
		}
	}
	return out
}

func (r *Room) countInRound() int {
	n := 0
	for _, s := range r.seats {
		if r.round.InRound[s.Name] {
			n++
		}
	}
	return n
}

// nextInRound returns the next seat after name, cycling table order and
// skipping seats no longer contesting the round.
func (r *Room) nextInRound(name string) string {
	start := -1
	for i, s := range r.seats {
		if s.Name == name {
			start = i
			break
		}
	}
	for off := 1; off <= len(r.seats); off++ {
		s := r.seats[(start+off)%len(r.seats)]
		if r.round.InRound[s.Name] {
			return s.Name
		}
	}
	return name
}

// playingForElimination reports whether losing the current liability
// would eliminate the seat. Such seats may neither raise nor fold.
func (r *Room) playingForElimination(s *Seat) bool {
	return s.Score+r.round.EntryStake[s.Name] >= r.rules.EliminationScore
}

// bumpEpoch invalidates every outstanding deferred callback.
func (r *Room) bumpEpoch() {
	r.epoch++
}

// setPhase transitions the round phase and invalidates stale timers.
func (r *Room) setPhase(p Phase) {
	r.round.Phase = p
	r.bumpEpoch()
}

// schedule arranges fn to run after d, but only if the room is still in
// expect and no phase transition or claim change happened in between.
// This optimistic guard is the room's only timer discipline: stale
// callbacks fire and discover they are obsolete.
func (r *Room) schedule(d time.Duration, expect Phase, fn func()) {
	epoch := r.epoch
	r.clock.AfterFunc(d, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.round == nil || r.round.Phase != expect || r.epoch != epoch {
			return
		}
		fn()
	})
}

// notifyLocked rebuilds every seat's filtered view and hands them to
// the broadcast hook. Must be called with the room lock held.
func (r *Room) notifyLocked(lastAction string) {
	if r.onUpdate == nil {
		return
	}
	views := make(map[string]RoomView, len(r.seats))
	for _, s := range r.seats {
		views[s.Name] = r.viewForLocked(s.Name)
	}
	r.onUpdate(RoomUpdate{Code: r.Code, LastAction: lastAction, Views: views})
}
