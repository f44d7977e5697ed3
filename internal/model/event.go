package model

// EventType identifies what a session event carries
type EventType string

const (
	EventMessage EventType = "message"
	EventTyping  EventType = "typing"
	EventToast   EventType = "toast"
	EventDone    EventType = "done"
	EventReset   EventType = "reset"
)

// Event is pushed to session subscribers (SSE and WebSocket clients)
type Event struct {
	Type    EventType `json:"type"`
	TurnID  string    `json:"turn_id,omitempty"`
	Message *Message  `json:"message,omitempty"`
	Text    string    `json:"text,omitempty"`
}

// ConversationSnapshot is a point-in-time copy of an engine's observable state
type ConversationSnapshot struct {
	Mode       Mode              `json:"mode"`
	State      ConversationState `json:"state"`
	Pending    *PendingQuestion  `json:"pending_question,omitempty"`
	Transcript []Message         `json:"transcript"`
	Busy       bool              `json:"busy"`
}
