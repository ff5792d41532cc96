package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
// These are used for client-server communication protocol
const (
	// Client to server messages
	MessageTypeCreateRoom MessageType = "create_room"
	MessageTypeJoinRoom   MessageType = "join_room"
	MessageTypeStartGame  MessageType = "start_game"
	MessageTypeAddBot     MessageType = "add_bot"
	MessageTypeLeaveRoom  MessageType = "leave_room"
	MessageTypeGameAction MessageType = "game_action"

	// Server to client messages
	MessageTypeRoomCreated    MessageType = "room_created"
	MessageTypeRoomJoined     MessageType = "room_joined"
	MessageTypeSeatJoined     MessageType = "seat_joined"
	MessageTypeSeatLeft       MessageType = "seat_left"
	MessageTypeStateUpdate    MessageType = "state_update"
	MessageTypeActionRejected MessageType = "action_rejected"
	MessageTypeError          MessageType = "error"
)

// Game action names carried inside a game_action envelope.
const (
	ActionPlayCard        = "play_card"
	ActionRaise           = "raise"
	ActionAcceptResponse  = "accept_response"
	ActionFoldResponse    = "fold_response"
	ActionFold            = "fold"
	ActionSubmitClaim     = "submit_claim"
	ActionInspectClaim    = "inspect_claim"
	ActionQueueBlindRaise = "queue_blind_raise"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
