package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaartspel/toepen/internal/game"
	"github.com/kaartspel/toepen/internal/roomcode"
)

func TestCreateRoomSeatsHost(t *testing.T) {
	m, _ := testManager(t)
	conn := testConn(m)

	room, err := m.CreateRoom("alice", conn)
	require.NoError(t, err)

	require.NoError(t, roomcode.Validate(room.Code))
	assert.Equal(t, "alice", room.Host())
	assert.Equal(t, []string{"alice"}, room.SeatNames())
	assert.Equal(t, 1, m.RoomCount())
}

func TestCreateRoomCodesAreUnique(t *testing.T) {
	m, _ := testManager(t)

	a, err := m.CreateRoom("alice", testConn(m))
	require.NoError(t, err)
	b, err := m.CreateRoom("bob", testConn(m))
	require.NoError(t, err)

	assert.NotEqual(t, a.Code, b.Code)
	assert.Equal(t, 2, m.RoomCount())
}

func TestCreateRoomRequiresName(t *testing.T) {
	m, _ := testManager(t)

	_, err := m.CreateRoom("", testConn(m))
	re, ok := game.AsReject(err)
	require.True(t, ok)
	assert.Equal(t, game.RejectBadAction, re.Code)
	assert.Equal(t, 0, m.RoomCount())
}

func TestJoinRoomUnknownCode(t *testing.T) {
	m, _ := testManager(t)

	_, err := m.JoinRoom("ZZZZZZ", "bob", testConn(m))
	re, ok := game.AsReject(err)
	require.True(t, ok)
	assert.Equal(t, game.RejectRoomNotFound, re.Code)
}

func TestJoinRoomRejectsMalformedCode(t *testing.T) {
	m, _ := testManager(t)

	_, err := m.JoinRoom("abc", "bob", testConn(m))
	re, ok := game.AsReject(err)
	require.True(t, ok)
	assert.Equal(t, game.RejectRoomNotFound, re.Code)
}

func TestJoinRoomNotifiesExistingSeats(t *testing.T) {
	m, _ := testManager(t)
	aliceConn := testConn(m)

	room, err := m.CreateRoom("alice", aliceConn)
	require.NoError(t, err)
	drain(aliceConn)

	_, err = m.JoinRoom(room.Code, "bob", testConn(m))
	require.NoError(t, err)

	msgs := drain(aliceConn)
	joined := lastOfType(msgs, MessageTypeSeatJoined)
	require.NotNil(t, joined, "existing seats learn about the new player")

	var data SeatJoinedData
	require.NoError(t, json.Unmarshal(joined.Data, &data))
	assert.Equal(t, "bob", data.Name)
	assert.Equal(t, []string{"alice", "bob"}, data.Seats)

	// The mutation itself also fans out as a state update.
	update := lastOfType(msgs, MessageTypeStateUpdate)
	require.NotNil(t, update)
	var state StateUpdateData
	require.NoError(t, json.Unmarshal(update.Data, &state))
	assert.Equal(t, "alice", state.State.You)
	assert.Len(t, state.State.Seats, 2)
}

func TestJoinRoomDuplicateName(t *testing.T) {
	m, _ := testManager(t)

	room, err := m.CreateRoom("alice", testConn(m))
	require.NoError(t, err)

	_, err = m.JoinRoom(room.Code, "alice", testConn(m))
	re, ok := game.AsReject(err)
	require.True(t, ok)
	assert.Equal(t, game.RejectDuplicateName, re.Code)
}

func TestJoinRoomFull(t *testing.T) {
	m, _ := testManager(t)

	room, err := m.CreateRoom("p1", testConn(m))
	require.NoError(t, err)
	for _, name := range []string{"p2", "p3", "p4"} {
		_, err := m.JoinRoom(room.Code, name, testConn(m))
		require.NoError(t, err)
	}

	_, err = m.JoinRoom(room.Code, "p5", testConn(m))
	re, ok := game.AsReject(err)
	require.True(t, ok)
	assert.Equal(t, game.RejectRoomFull, re.Code)
}

func TestStartGameHostOnly(t *testing.T) {
	m, _ := testManager(t)

	room, err := m.CreateRoom("alice", testConn(m))
	require.NoError(t, err)
	_, err = m.JoinRoom(room.Code, "bob", testConn(m))
	require.NoError(t, err)

	err = m.StartGame(room.Code, "bob")
	re, ok := game.AsReject(err)
	require.True(t, ok)
	assert.Equal(t, game.RejectNotHost, re.Code)
	assert.False(t, room.Started())

	require.NoError(t, m.StartGame(room.Code, "alice"))
	assert.True(t, room.Started())
}

func TestAddBotHostOnly(t *testing.T) {
	m, _ := testManager(t)

	room, err := m.CreateRoom("alice", testConn(m))
	require.NoError(t, err)
	_, err = m.JoinRoom(room.Code, "bob", testConn(m))
	require.NoError(t, err)

	_, err = m.AddBot(room.Code, "bob")
	re, ok := game.AsReject(err)
	require.True(t, ok)
	assert.Equal(t, game.RejectNotHost, re.Code)

	name, err := m.AddBot(room.Code, "alice")
	require.NoError(t, err)
	assert.Equal(t, "bot-1", name)
	assert.Contains(t, room.SeatNames(), "bot-1")

	name, err = m.AddBot(room.Code, "alice")
	require.NoError(t, err)
	assert.Equal(t, "bot-2", name)
}

func TestLeaveDestroysEmptyRoom(t *testing.T) {
	m, _ := testManager(t)

	room, err := m.CreateRoom("alice", testConn(m))
	require.NoError(t, err)

	require.NoError(t, m.Leave(room.Code, "alice"))
	assert.Equal(t, 0, m.RoomCount())
	assert.Nil(t, m.Get(room.Code))
}

func TestLeaveDestroysRoomWithOnlyBots(t *testing.T) {
	m, _ := testManager(t)

	room, err := m.CreateRoom("alice", testConn(m))
	require.NoError(t, err)
	_, err = m.AddBot(room.Code, "alice")
	require.NoError(t, err)
	_, err = m.AddBot(room.Code, "alice")
	require.NoError(t, err)

	require.NoError(t, m.Leave(room.Code, "alice"))
	assert.Equal(t, 0, m.RoomCount(), "a room of bots with no humans is torn down")
}

func TestLeaveReassignsHost(t *testing.T) {
	m, _ := testManager(t)
	bobConn := testConn(m)

	room, err := m.CreateRoom("alice", testConn(m))
	require.NoError(t, err)
	_, err = m.JoinRoom(room.Code, "bob", bobConn)
	require.NoError(t, err)
	drain(bobConn)

	require.NoError(t, m.Leave(room.Code, "alice"))
	assert.Equal(t, "bob", room.Host())

	left := lastOfType(drain(bobConn), MessageTypeSeatLeft)
	require.NotNil(t, left)
	var data SeatLeftData
	require.NoError(t, json.Unmarshal(left.Data, &data))
	assert.Equal(t, "alice", data.Name)
	assert.Equal(t, "bob", data.NewHost)
}

func TestDisconnectInLobbyReleasesSeat(t *testing.T) {
	m, _ := testManager(t)
	bobConn := testConn(m)

	room, err := m.CreateRoom("alice", testConn(m))
	require.NoError(t, err)
	_, err = m.JoinRoom(room.Code, "bob", bobConn)
	require.NoError(t, err)
	bobConn.SetPlayer("bob")
	bobConn.SetRoom(room.Code)

	m.HandleDisconnect(bobConn)
	assert.Equal(t, []string{"alice"}, room.SeatNames())
}

func TestDisconnectMidGameKeepsSeat(t *testing.T) {
	m, _ := testManager(t)
	aliceConn := testConn(m)

	room, err := m.CreateRoom("alice", aliceConn)
	require.NoError(t, err)
	aliceConn.SetPlayer("alice")
	aliceConn.SetRoom(room.Code)
	_, err = m.JoinRoom(room.Code, "bob", testConn(m))
	require.NoError(t, err)
	require.NoError(t, m.StartGame(room.Code, "alice"))

	m.HandleDisconnect(aliceConn)

	// The seat stays in the game; only host duties move.
	assert.Contains(t, room.SeatNames(), "alice")
	assert.Equal(t, "bob", room.Host())
}

func TestBroadcastFiltersPerSeat(t *testing.T) {
	m, mock := testManager(t)
	aliceConn := testConn(m)
	bobConn := testConn(m)

	room, err := m.CreateRoom("alice", aliceConn)
	require.NoError(t, err)
	_, err = m.JoinRoom(room.Code, "bob", bobConn)
	require.NoError(t, err)
	require.NoError(t, m.StartGame(room.Code, "alice"))
	advance(t, mock, game.DefaultRules().LaundryWindow)

	drain(aliceConn)
	drain(bobConn)
	require.NoError(t, room.PlayCard("alice", 0))

	for viewer, conn := range map[string]*Connection{"alice": aliceConn, "bob": bobConn} {
		update := lastOfType(drain(conn), MessageTypeStateUpdate)
		require.NotNil(t, update, "every seat hears about the play")

		var data StateUpdateData
		require.NoError(t, json.Unmarshal(update.Data, &data))
		assert.Equal(t, viewer, data.State.You)

		for _, sv := range data.State.Seats {
			for _, cv := range sv.Hand {
				if sv.Name == viewer {
					assert.False(t, cv.Hidden)
				} else {
					assert.True(t, cv.Hidden, "seat %s must not see %s's cards", viewer, sv.Name)
				}
			}
		}
	}
}
