package server

import (
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/kaartspel/toepen/internal/deck"
	"github.com/kaartspel/toepen/internal/game"
)

// BotParams are the probabilities steering a bot's play. A bot only
// ever picks among legal moves; the probabilities are its whole
// personality.
type BotParams struct {
	RaiseProb   float64
	FoldProb    float64
	ClaimProb   float64
	InspectProb float64
}

// DefaultBotParams returns a middle-of-the-road bot.
func DefaultBotParams() BotParams {
	return BotParams{
		RaiseProb:   0.15,
		FoldProb:    0.2,
		ClaimProb:   0.8,
		InspectProb: 0.3,
	}
}

// botActDelay is how long a bot waits before moving, so play reads as
// turn-taking rather than instantaneous.
const botActDelay = 500 * time.Millisecond

// Bot is a server-side seat that plays by itself. It receives the same
// filtered views a remote client would, via Observe, and acts on the
// room after a short delay.
type Bot struct {
	Name   string
	room   *game.Room
	clock  quartz.Clock
	logger *log.Logger
	params BotParams

	mu      sync.Mutex
	rng     *rand.Rand
	pending bool
}

// NewBot creates a bot for a room. The rng must be private to the bot.
func NewBot(name string, room *game.Room, clock quartz.Clock, rng *rand.Rand, logger *log.Logger) *Bot {
	return &Bot{
		Name:   name,
		room:   room,
		clock:  clock,
		rng:    rng,
		logger: logger.WithPrefix("bot").With("name", name),
		params: DefaultBotParams(),
	}
}

// SetParams replaces the bot's personality.
func (b *Bot) SetParams(p BotParams) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.params = p
}

// Observe receives a filtered view after a room mutation. Called with
// the room lock held, so it only schedules; the move itself runs later
// from the clock.
func (b *Bot) Observe(view game.RoomView) {
	if !b.actionable(view) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending {
		return
	}
	b.pending = true
	b.clock.AfterFunc(botActDelay, b.act)
}

// actionable reports whether the view shows a move waiting on this bot.
func (b *Bot) actionable(view game.RoomView) bool {
	switch view.Phase {
	case game.PhasePlaying.String():
		return view.TurnSeat == b.Name
	case game.PhaseRaiseResponse.String(), game.PhaseForcedGamble.String(), game.PhaseBlindResponse.String():
		return b.responsePending(view)
	case game.PhaseLaundry.String():
		if view.Claim != nil {
			return view.Claim.Seat != b.Name
		}
		return b.washClaim(view) != nil
	default:
		return false
	}
}

// act re-reads the room and makes one move. The scheduled view may be
// stale by now; every engine call can be rejected and the rejection is
// simply dropped.
func (b *Bot) act() {
	b.mu.Lock()
	b.pending = false
	b.mu.Unlock()

	view := b.room.ViewFor(b.Name)

	switch view.Phase {
	case game.PhasePlaying.String():
		if view.TurnSeat != b.Name {
			return
		}
		b.takeTurn(view)

	case game.PhaseRaiseResponse.String(), game.PhaseForcedGamble.String(), game.PhaseBlindResponse.String():
		if !b.responsePending(view) {
			return
		}
		accept := !b.roll(b.params.FoldProb)
		if err := b.room.Respond(b.Name, accept); err != nil {
			b.logger.Debug("Response rejected", "error", err)
		}

	case game.PhaseLaundry.String():
		b.laundryMove(view)
	}
}

// takeTurn plays the bot's turn: an occasional raise, then a legal
// card. Card legality is discovered by offering indices in random order
// until the engine accepts one.
func (b *Bot) takeTurn(view game.RoomView) {
	if b.roll(b.params.RaiseProb) {
		if err := b.room.Raise(b.Name); err == nil {
			return
		}
	}

	hand := b.ownHand(view)
	order := b.perm(len(hand))
	for _, idx := range order {
		err := b.room.PlayCard(b.Name, idx)
		if err == nil {
			return
		}
		if re, ok := game.AsReject(err); ok && re.Code == game.RejectMustFollowSuit {
			continue
		}
		b.logger.Debug("Play rejected", "error", err)
		return
	}
}

func (b *Bot) laundryMove(view game.RoomView) {
	if view.Claim != nil {
		if view.Claim.Seat != b.Name && b.roll(b.params.InspectProb) {
			if err := b.room.InspectClaim(b.Name); err != nil {
				b.logger.Debug("Inspect rejected", "error", err)
			}
		}
		return
	}

	claim := b.washClaim(view)
	if claim == nil || !b.roll(b.params.ClaimProb) {
		return
	}
	if err := b.room.SubmitClaim(b.Name, *claim); err != nil {
		b.logger.Debug("Claim rejected", "error", err)
	}
}

// washClaim returns the claim type the bot's hand honestly supports,
// or nil. Bots do not bluff.
func (b *Bot) washClaim(view game.RoomView) *game.ClaimType {
	hand := b.ownHand(view)
	if len(hand) == 0 {
		return nil
	}

	faces, sevens := 0, 0
	for _, c := range hand {
		if c.Rank.IsFace() {
			faces++
		}
		if c.Rank == deck.Seven {
			sevens++
		}
	}

	var claim game.ClaimType
	switch {
	case faces == len(hand):
		claim = game.FullWash
	case faces == len(hand)-1 && sevens == 1:
		claim = game.ModestWash
	default:
		return nil
	}
	return &claim
}

func (b *Bot) ownHand(view game.RoomView) []deck.Card {
	for _, sv := range view.Seats {
		if sv.Name != b.Name {
			continue
		}
		hand := make([]deck.Card, 0, len(sv.Hand))
		for _, cv := range sv.Hand {
			if cv.Card != nil {
				hand = append(hand, *cv.Card)
			}
		}
		return hand
	}
	return nil
}

func (b *Bot) responsePending(view game.RoomView) bool {
	for _, sv := range view.Seats {
		if sv.Name == b.Name {
			return sv.Response == "pending"
		}
	}
	return false
}

func (b *Bot) roll(p float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rng.Float64() < p
}

func (b *Bot) perm(n int) []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rng.Perm(n)
}
