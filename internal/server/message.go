package server

import (
	"encoding/json"
	"time"

	"github.com/kaartspel/toepen/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type CreateRoomData struct {
	Name string `json:"name"`
}

type JoinRoomData struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type StartGameData struct {
	Code string `json:"code,omitempty"`
}

type AddBotData struct {
	Code string `json:"code,omitempty"`
}

type LeaveRoomData struct {
	Code string `json:"code,omitempty"`
}

// GameActionData is the envelope for in-game moves. Action selects the
// move; the remaining fields are read only where the move needs them.
type GameActionData struct {
	Action    string `json:"action"`
	CardIndex *int   `json:"cardIndex,omitempty"`
	ClaimType string `json:"claimType,omitempty"`
}

// Server → Client Messages

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RoomCreatedData struct {
	Code  string   `json:"code"`
	Seats []string `json:"seats"`
}

type RoomJoinedData struct {
	Code   string   `json:"code"`
	Seats  []string `json:"seats"`
	IsHost bool     `json:"isHost"`
}

type SeatJoinedData struct {
	Code  string   `json:"code"`
	Name  string   `json:"name"`
	Seats []string `json:"seats"`
}

type SeatLeftData struct {
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	Seats   []string `json:"seats"`
	NewHost string   `json:"newHost,omitempty"`
}

type StateUpdateData struct {
	State      game.RoomView `json:"state"`
	LastAction string        `json:"lastAction,omitempty"`
}

type ActionRejectedData struct {
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

// RejectionFromGame converts an engine rejection into the wire payload.
func RejectionFromGame(re *game.RejectError) ActionRejectedData {
	return ActionRejectedData{
		Category: re.Code.Category(),
		Reason:   re.Reason,
	}
}
