package realtime

import "time"

// Outbound event names. Room membership is authoritative server-side; the
// client emits intents and keeps no membership cache of its own.
const (
	EventJoinRoom    = "join_room"
	EventLeaveRoom   = "leave_room"
	EventSendMessage = "send_message"
	EventTypingStart = "typing_start"
	EventTypingStop  = "typing_stop"

	// EventNotification is the inbound event the notification relay
	// subscribes to.
	EventNotification = "notification"
)

type roomPayload struct {
	RoomID string `json:"roomId"`
}

type messagePayload struct {
	RoomID      string    `json:"roomId"`
	Content     string    `json:"content"`
	MessageType string    `json:"messageType"`
	Timestamp   time.Time `json:"timestamp"`
}

// JoinRoom asks the server to add this connection to a room.
func (m *Manager) JoinRoom(roomID string) {
	m.Emit(EventJoinRoom, roomPayload{RoomID: roomID})
}

// LeaveRoom asks the server to remove this connection from a room.
func (m *Manager) LeaveRoom(roomID string) {
	m.Emit(EventLeaveRoom, roomPayload{RoomID: roomID})
}

// SendMessage emits a chat message with a client-generated timestamp.
// Delivery is not acknowledged here; confirmation, if needed, arrives as a
// separate inbound event.
func (m *Manager) SendMessage(roomID, content, messageType string) {
	if messageType == "" {
		messageType = "text"
	}
	m.Emit(EventSendMessage, messagePayload{
		RoomID:      roomID,
		Content:     content,
		MessageType: messageType,
		Timestamp:   m.clock.Now().UTC(),
	})
}

// StartTyping signals a typing indicator for a room.
func (m *Manager) StartTyping(roomID string) {
	m.Emit(EventTypingStart, roomPayload{RoomID: roomID})
}

// StopTyping clears the typing indicator for a room.
func (m *Manager) StopTyping(roomID string) {
	m.Emit(EventTypingStop, roomPayload{RoomID: roomID})
}
