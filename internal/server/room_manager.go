package server

import (
	"fmt"
	rand "math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/kaartspel/toepen/internal/game"
	"github.com/kaartspel/toepen/internal/randutil"
	"github.com/kaartspel/toepen/internal/roomcode"
)

// RoomManager is the arena of open rooms, keyed by join code. It owns
// the code→room map, the per-room connection registry used for
// broadcast fan-out, and the in-process bots seated in each room.
type RoomManager struct {
	rules  game.Rules
	clock  quartz.Clock
	codes  *roomcode.Generator
	logger *log.Logger

	seedMu sync.Mutex
	seeds  *rand.Rand

	mu    sync.RWMutex
	rooms map[string]*game.Room
	bots  map[string]map[string]*Bot

	connMu sync.RWMutex
	conns  map[string]map[string]*Connection
}

// lockedSource guards a shared rand behind RoomManager.seedMu so room
// code generation is safe from concurrent connections.
type lockedSource struct {
	mu  *sync.Mutex
	rng *rand.Rand
}

func (s lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// NewRoomManager creates an empty arena. The rng seeds each room's
// private shuffle stream and the join code generator.
func NewRoomManager(rules game.Rules, clock quartz.Clock, rng *rand.Rand, logger *log.Logger) *RoomManager {
	m := &RoomManager{
		rules:  rules,
		clock:  clock,
		seeds:  rng,
		logger: logger.WithPrefix("rooms"),
		rooms:  make(map[string]*game.Room),
		bots:   make(map[string]map[string]*Bot),
		conns:  make(map[string]map[string]*Connection),
	}
	m.codes = roomcode.NewGenerator(lockedSource{mu: &m.seedMu, rng: rng})
	return m
}

// seed draws a fresh seed for a room or bot rng.
func (m *RoomManager) seed() int64 {
	m.seedMu.Lock()
	defer m.seedMu.Unlock()
	return m.seeds.Int64()
}

// CreateRoom opens a new room with a collision-free code and seats the
// creator as host.
func (m *RoomManager) CreateRoom(name string, conn *Connection) (*game.Room, error) {
	if name == "" {
		return nil, &game.RejectError{Code: game.RejectBadAction, Reason: "player name required"}
	}

	m.mu.Lock()
	code := m.codes.GenerateUnique(func(c string) bool {
		_, taken := m.rooms[c]
		return taken
	})
	room := game.NewRoom(code, m.rules, m.clock, randutil.New(m.seed()), m.logger)
	room.SetUpdateHook(m.broadcast)
	m.rooms[code] = room
	m.bots[code] = make(map[string]*Bot)
	m.mu.Unlock()

	m.addConn(code, name, conn)
	if err := room.AddSeat(name, false); err != nil {
		m.removeConn(code, name)
		m.destroyRoom(code)
		return nil, err
	}

	m.logger.Info("Room created", "code", code, "host", name)
	return room, nil
}

// JoinRoom seats a player in an existing room.
func (m *RoomManager) JoinRoom(code, name string, conn *Connection) (*game.Room, error) {
	if name == "" {
		return nil, &game.RejectError{Code: game.RejectBadAction, Reason: "player name required"}
	}
	if err := roomcode.Validate(code); err != nil {
		return nil, &game.RejectError{Code: game.RejectRoomNotFound, Reason: err.Error()}
	}

	room := m.Get(code)
	if room == nil {
		return nil, &game.RejectError{Code: game.RejectRoomNotFound, Reason: "no room with code " + code}
	}

	m.addConn(code, name, conn)
	if err := room.AddSeat(name, false); err != nil {
		m.removeConn(code, name)
		return nil, err
	}

	m.sendEvent(code, name, MessageTypeSeatJoined, SeatJoinedData{
		Code:  code,
		Name:  name,
		Seats: room.SeatNames(),
	})
	return room, nil
}

// Get returns the room with the given code, or nil.
func (m *RoomManager) Get(code string) *game.Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[code]
}

// RoomCount returns the number of open rooms.
func (m *RoomManager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// StartGame begins play in a room. Host only.
func (m *RoomManager) StartGame(code, name string) error {
	room := m.Get(code)
	if room == nil {
		return &game.RejectError{Code: game.RejectRoomNotFound, Reason: "no room with code " + code}
	}
	return room.Start(name)
}

// AddBot seats a server-side bot in the room. Host only. The bot's
// personality is drawn from the manager rng.
func (m *RoomManager) AddBot(code, byName string) (string, error) {
	room := m.Get(code)
	if room == nil {
		return "", &game.RejectError{Code: game.RejectRoomNotFound, Reason: "no room with code " + code}
	}
	if room.Host() != byName {
		return "", &game.RejectError{Code: game.RejectNotHost, Reason: "only the host may add bots"}
	}

	botName := m.botName(room)
	bot := NewBot(botName, room, m.clock, randutil.New(m.seed()), m.logger)

	m.mu.Lock()
	if m.bots[code] == nil {
		m.mu.Unlock()
		return "", &game.RejectError{Code: game.RejectRoomNotFound, Reason: "no room with code " + code}
	}
	m.bots[code][botName] = bot
	m.mu.Unlock()

	if err := room.AddSeat(botName, true); err != nil {
		m.mu.Lock()
		delete(m.bots[code], botName)
		m.mu.Unlock()
		return "", err
	}

	m.sendEvent(code, botName, MessageTypeSeatJoined, SeatJoinedData{
		Code:  code,
		Name:  botName,
		Seats: room.SeatNames(),
	})
	return botName, nil
}

// botName picks the first free bot-N name for the room.
func (m *RoomManager) botName(room *game.Room) string {
	taken := make(map[string]bool)
	for _, n := range room.SeatNames() {
		taken[n] = true
	}
	for i := 1; ; i++ {
		name := fmt.Sprintf("bot-%d", i)
		if !taken[name] {
			return name
		}
	}
}

// Leave removes a player from their room. If no human seats remain the
// room is destroyed.
func (m *RoomManager) Leave(code, name string) error {
	room := m.Get(code)
	if room == nil {
		return &game.RejectError{Code: game.RejectRoomNotFound, Reason: "no room with code " + code}
	}

	newHost, empty := room.RemoveSeat(name)
	m.removeConn(code, name)

	if empty || !m.hasHumans(code, room) {
		m.destroyRoom(code)
		return nil
	}

	m.sendEvent(code, name, MessageTypeSeatLeft, SeatLeftData{
		Code:    code,
		Name:    name,
		Seats:   room.SeatNames(),
		NewHost: newHost,
	})
	return nil
}

// HandleDisconnect cleans up after a dropped transport. In the lobby
// the seat is released; once the game has started the seat stays and
// only host duties move, so a disconnect never folds a hand.
func (m *RoomManager) HandleDisconnect(conn *Connection) {
	code := conn.GetRoom()
	name := conn.GetPlayer()
	if code == "" || name == "" {
		return
	}

	room := m.Get(code)
	if room == nil {
		m.removeConn(code, name)
		return
	}

	if !room.Started() {
		_ = m.Leave(code, name)
		return
	}

	m.removeConn(code, name)
	newHost := room.ReassignHost(name)
	m.logger.Info("Player disconnected mid-game", "code", code, "player", name, "newHost", newHost)
	if newHost != "" {
		m.notifyRoom(code, room, "host reassigned to "+newHost)
	}
}

// hasHumans reports whether any seat in the room is not a bot.
func (m *RoomManager) hasHumans(code string, room *game.Room) bool {
	m.mu.RLock()
	bots := m.bots[code]
	m.mu.RUnlock()
	for _, n := range room.SeatNames() {
		if _, isBot := bots[n]; !isBot {
			return true
		}
	}
	return false
}

func (m *RoomManager) destroyRoom(code string) {
	m.mu.Lock()
	delete(m.rooms, code)
	delete(m.bots, code)
	m.mu.Unlock()

	m.connMu.Lock()
	delete(m.conns, code)
	m.connMu.Unlock()

	m.logger.Info("Room destroyed", "code", code)
}

// broadcast is the room update hook: fan out each seat's filtered view
// to its transport, or hand it to the seat's bot. Runs with the room
// lock held, so every client sees the mutation before the room accepts
// its next action.
func (m *RoomManager) broadcast(update game.RoomUpdate) {
	for name, view := range update.Views {
		if conn := m.conn(update.Code, name); conn != nil {
			msg, err := NewMessage(MessageTypeStateUpdate, StateUpdateData{
				State:      view,
				LastAction: update.LastAction,
			})
			if err != nil {
				m.logger.Error("Failed to build state update", "error", err)
				continue
			}
			_ = conn.SendMessage(msg)
			continue
		}
		if bot := m.bot(update.Code, name); bot != nil {
			bot.Observe(view)
		}
	}
}

// notifyRoom pushes a fresh state update to every connected seat
// outside the room's own hook path.
func (m *RoomManager) notifyRoom(code string, room *game.Room, lastAction string) {
	for _, name := range room.SeatNames() {
		conn := m.conn(code, name)
		if conn == nil {
			continue
		}
		msg, err := NewMessage(MessageTypeStateUpdate, StateUpdateData{
			State:      room.ViewFor(name),
			LastAction: lastAction,
		})
		if err != nil {
			continue
		}
		_ = conn.SendMessage(msg)
	}
}

// sendEvent sends a lobby event to every connected seat except the one
// named; that seat gets its own tailored response.
func (m *RoomManager) sendEvent(code, except string, mt MessageType, data interface{}) {
	msg, err := NewMessage(mt, data)
	if err != nil {
		m.logger.Error("Failed to build event message", "type", mt, "error", err)
		return
	}

	m.connMu.RLock()
	defer m.connMu.RUnlock()
	for name, conn := range m.conns[code] {
		if name == except {
			continue
		}
		_ = conn.SendMessage(msg)
	}
}

func (m *RoomManager) addConn(code, name string, conn *Connection) {
	if conn == nil {
		return
	}
	m.connMu.Lock()
	defer m.connMu.Unlock()
	if m.conns[code] == nil {
		m.conns[code] = make(map[string]*Connection)
	}
	m.conns[code][name] = conn
}

func (m *RoomManager) removeConn(code, name string) {
	m.connMu.Lock()
	defer m.connMu.Unlock()
	if conns := m.conns[code]; conns != nil {
		delete(conns, name)
		if len(conns) == 0 {
			delete(m.conns, code)
		}
	}
}

func (m *RoomManager) conn(code, name string) *Connection {
	m.connMu.RLock()
	defer m.connMu.RUnlock()
	return m.conns[code][name]
}

func (m *RoomManager) bot(code, name string) *Bot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bots[code][name]
}
