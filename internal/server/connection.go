package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/kaartspel/toepen/internal/game"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	playerID  string
	roomCode  string
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	manager   *RoomManager
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, manager *RoomManager) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:    conn,
		send:    make(chan *Message, 256),
		logger:  logger.WithPrefix("conn"),
		ctx:     ctx,
		cancel:  cancel,
		manager: manager,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, this is expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetPlayer associates this connection with a player name
func (c *Connection) SetPlayer(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = name
}

// GetPlayer returns the associated player name
func (c *Connection) GetPlayer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// SetRoom associates this connection with a room code
func (c *Connection) SetRoom(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomCode = code
}

// GetRoom returns the associated room code
func (c *Connection) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomCode
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client. A panic in
// a handler is contained to this message so one bad room state cannot
// take the server down.
func (c *Connection) handleMessage(msg *Message) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Panic handling message", "type", msg.Type, "panic", r)
			c.sendError("internal_error", "internal server error")
		}
	}()

	c.logger.Debug("Received message", "type", msg.Type, "player", c.GetPlayer())

	switch msg.Type {
	case MessageTypeCreateRoom:
		var data CreateRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse create room data")
			return
		}
		c.handleCreateRoom(data)

	case MessageTypeJoinRoom:
		var data JoinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join room data")
			return
		}
		c.handleJoinRoom(data)

	case MessageTypeStartGame:
		c.handleStartGame()

	case MessageTypeAddBot:
		c.handleAddBot()

	case MessageTypeLeaveRoom:
		c.handleLeaveRoom()

	case MessageTypeGameAction:
		var data GameActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse game action data")
			return
		}
		c.handleGameAction(data)

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}

// sendRejection reports a refused action to the offending client only.
func (c *Connection) sendRejection(err error) {
	re, ok := game.AsReject(err)
	if !ok {
		c.sendError("internal_error", err.Error())
		return
	}

	msg, merr := NewMessage(MessageTypeActionRejected, RejectionFromGame(re))
	if merr != nil {
		c.logger.Error("Failed to create rejection message", "error", merr)
		return
	}
	_ = c.SendMessage(msg)
}

func (c *Connection) handleCreateRoom(data CreateRoomData) {
	c.logger.Info("Create room request", "name", data.Name)

	if c.GetRoom() != "" {
		c.sendError("already_in_room", "Leave the current room first")
		return
	}

	room, err := c.manager.CreateRoom(data.Name, c)
	if err != nil {
		c.sendRejection(err)
		return
	}

	c.SetPlayer(data.Name)
	c.SetRoom(room.Code)

	response, _ := NewMessage(MessageTypeRoomCreated, RoomCreatedData{
		Code:  room.Code,
		Seats: room.SeatNames(),
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleJoinRoom(data JoinRoomData) {
	c.logger.Info("Join room request", "code", data.Code, "name", data.Name)

	if c.GetRoom() != "" {
		c.sendError("already_in_room", "Leave the current room first")
		return
	}

	room, err := c.manager.JoinRoom(data.Code, data.Name, c)
	if err != nil {
		c.sendRejection(err)
		return
	}

	c.SetPlayer(data.Name)
	c.SetRoom(room.Code)

	response, _ := NewMessage(MessageTypeRoomJoined, RoomJoinedData{
		Code:   room.Code,
		Seats:  room.SeatNames(),
		IsHost: room.Host() == data.Name,
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleStartGame() {
	code, name, ok := c.roomContext()
	if !ok {
		return
	}

	c.logger.Info("Start game request", "code", code, "player", name)

	if err := c.manager.StartGame(code, name); err != nil {
		c.sendRejection(err)
	}
}

func (c *Connection) handleAddBot() {
	code, name, ok := c.roomContext()
	if !ok {
		return
	}

	c.logger.Info("Add bot request", "code", code, "player", name)

	if _, err := c.manager.AddBot(code, name); err != nil {
		c.sendRejection(err)
	}
}

func (c *Connection) handleLeaveRoom() {
	code, name, ok := c.roomContext()
	if !ok {
		return
	}

	c.logger.Info("Leave room request", "code", code, "player", name)

	if err := c.manager.Leave(code, name); err != nil {
		c.sendRejection(err)
		return
	}

	c.SetRoom("")
}

func (c *Connection) handleGameAction(data GameActionData) {
	code, name, ok := c.roomContext()
	if !ok {
		return
	}

	room := c.manager.Get(code)
	if room == nil {
		c.sendError("room_not_found", "Room no longer exists")
		return
	}

	c.logger.Debug("Game action", "code", code, "player", name, "action", data.Action)

	var err error
	switch data.Action {
	case ActionPlayCard:
		if data.CardIndex == nil {
			c.sendError("invalid_message", "play_card requires cardIndex")
			return
		}
		err = room.PlayCard(name, *data.CardIndex)
	case ActionRaise:
		err = room.Raise(name)
	case ActionAcceptResponse:
		err = room.Respond(name, true)
	case ActionFoldResponse:
		err = room.Respond(name, false)
	case ActionFold:
		err = room.Fold(name)
	case ActionSubmitClaim:
		ct, ok := game.ParseClaimType(data.ClaimType)
		if !ok {
			c.sendError("invalid_message", "unknown claim type: "+data.ClaimType)
			return
		}
		err = room.SubmitClaim(name, ct)
	case ActionInspectClaim:
		err = room.InspectClaim(name)
	case ActionQueueBlindRaise:
		err = room.QueueBlindRaise(name)
	default:
		c.sendError("invalid_message", "unknown action: "+data.Action)
		return
	}

	if err != nil {
		c.sendRejection(err)
	}
}

// roomContext fetches the connection's room binding, reporting the
// protocol error to the client when there is none.
func (c *Connection) roomContext() (code, name string, ok bool) {
	code = c.GetRoom()
	name = c.GetPlayer()
	if code == "" || name == "" {
		c.sendError("not_in_room", "Join a room first")
		return "", "", false
	}
	return code, name, true
}
