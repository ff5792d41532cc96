package server

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/kaartspel/toepen/internal/game"
	"github.com/kaartspel/toepen/internal/randutil"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

// testManager builds a manager on a mock clock so tests control every
// timing window.
func testManager(t *testing.T) (*RoomManager, *quartz.Mock) {
	t.Helper()
	mock := quartz.NewMock(t)
	m := NewRoomManager(game.DefaultRules(), mock, randutil.New(1), testLogger())
	return m, mock
}

// testConn builds a connection with no transport behind it; outbound
// messages pile up in the send channel where tests can inspect them.
func testConn(m *RoomManager) *Connection {
	return NewConnection(nil, testLogger(), m)
}

// advance steps the mock clock event by event; the mock refuses to
// jump past a registered timer (stale or not) in a single move.
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

// drain empties the connection's outbound queue and returns what was
// there.
func drain(c *Connection) []*Message {
	var out []*Message
	for {
		select {
		case msg := <-c.send:
			out = append(out, msg)
		default:
			return out
		}
	}
}

// lastOfType returns the most recent queued message of the given type,
// or nil.
func lastOfType(msgs []*Message, mt MessageType) *Message {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Type == mt {
			return msgs[i]
		}
	}
	return nil
}
