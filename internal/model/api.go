package model

// SessionResponse is returned by session create, read and reset
type SessionResponse struct {
	SessionID string `json:"session_id"`
	ConversationSnapshot
}

// SubmitRequest is a user utterance
type SubmitRequest struct {
	Text string `json:"text" binding:"required"`
}

// SubmitResponse carries the messages emitted by one turn
type SubmitResponse struct {
	SessionID   string            `json:"session_id"`
	TurnID      string            `json:"turn_id"`
	UserMessage Message           `json:"user_message"`
	Messages    []Message         `json:"messages"`
	Cancelled   bool              `json:"cancelled"`
	Mode        Mode              `json:"mode"`
	State       ConversationState `json:"state"`
	Pending     *PendingQuestion  `json:"pending_question,omitempty"`
}

// TripRequest adds a property to the session trip list
type TripRequest struct {
	PropertyID string `json:"property_id" binding:"required"`
}

// TripResponse is the trip list after an add
type TripResponse struct {
	SessionID string   `json:"session_id"`
	Trip      []string `json:"trip"`
	Toast     string   `json:"toast"`
}

// SocketFrame is a client WebSocket frame
type SocketFrame struct {
	Text string `json:"text"`
}
