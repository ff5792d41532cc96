package game

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/kaartspel/toepen/internal/deck"
	"github.com/kaartspel/toepen/internal/randutil"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// testRoom creates a room with the named seats, first seat hosting.
func testRoom(t *testing.T, names ...string) (*Room, *quartz.Mock) {
	t.Helper()
	mock := quartz.NewMock(t)
	r := NewRoom("TESTRM", DefaultRules(), mock, randutil.New(1), testLogger())
	for _, n := range names {
		require.NoError(t, r.AddSeat(n, false))
	}
	return r, mock
}

// startGame starts the room and returns once the deal pipeline settled.
func startGame(t *testing.T, r *Room) {
	t.Helper()
	require.NoError(t, r.Start(r.seats[0].Name))
}

// advance moves the mock clock and waits for fired callbacks. The mock
// refuses to jump past a registered timer in one go, and stale timers
// stay registered until they fire, so step event by event.
func advance(t *testing.T, mock *quartz.Mock, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		next, ok := mock.Peek()
		if !ok || next >= d {
			mock.Advance(d).MustWait(ctx)
			return
		}
		mock.Advance(next).MustWait(ctx)
		d -= next
	}
}

// toPlaying starts the game and skips the laundry window.
func toPlaying(t *testing.T, r *Room, mock *quartz.Mock) {
	t.Helper()
	startGame(t, r)
	require.Equal(t, PhaseLaundry, r.phase())
	advance(t, mock, r.rules.LaundryWindow)
	require.Equal(t, PhasePlaying, r.phase())
}

// setHands overwrites hands and the seat to act, bypassing the deal.
func setHands(r *Room, turn string, hands map[string][]deck.Card) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, hand := range hands {
		r.seat(name).Hand = hand
	}
	r.round.TurnSeat = turn
}

func (r *Room) phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.round == nil {
		return PhaseLobby
	}
	return r.round.Phase
}

func (r *Room) score(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seat(name).Score
}

func (r *Room) entryStake(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.round.EntryStake[name]
}

func (r *Room) inRound(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.round.InRound[name]
}

func (r *Room) tricksWon(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.round.TricksWon[name]
}

func card(s deck.Suit, rk deck.Rank) deck.Card {
	return deck.NewCard(s, rk)
}

// handIndex finds a card in the seat's current hand.
func handIndex(t *testing.T, r *Room, name string, c deck.Card) int {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, held := range r.seat(name).Hand {
		if held == c {
			return i
		}
	}
	t.Fatalf("seat %s does not hold %s", name, c)
	return -1
}

func rejectCode(t *testing.T, err error) RejectCode {
	t.Helper()
	re, ok := AsReject(err)
	require.True(t, ok, "expected RejectError, got %v", err)
	return re.Code
}
