package model

import "time"

// Mode is the active conversation focus; it gates which clarification rules apply
type Mode string

const (
	ModeDiscovery  Mode = "DISCOVERY"
	ModeTrip       Mode = "TRIP"
	ModeAnalytical Mode = "ANALYTICAL"
	ModeProject    Mode = "PROJECT"
)

// Intent is the transaction the user is after
type Intent string

const (
	IntentBuy  Intent = "buy"
	IntentRent Intent = "rent"
)

// PropertyType is the coarse kind of property being discussed
type PropertyType string

const (
	PropertyTypeLand PropertyType = "land"
	PropertyTypeHome PropertyType = "home"
)

// ConversationState holds the slots accumulated across turns. Empty strings mean unset.
type ConversationState struct {
	Location      string       `json:"location,omitempty"`
	Intent        Intent       `json:"intent,omitempty"`
	PropertyType  PropertyType `json:"property_type,omitempty"`
	Budget        string       `json:"budget,omitempty"` // raw matched token, e.g. "10M"
	PendingChoice string       `json:"pending_choice,omitempty"`
}

// QuestionKind identifies a clarification question
type QuestionKind string

const (
	QuestionIntentConfirmation QuestionKind = "intent_confirmation"
	QuestionProjectScale       QuestionKind = "project_scale"
	QuestionInvestorObjective  QuestionKind = "investor_objective"
	QuestionAdjustSearch       QuestionKind = "adjust_search"
)

// PendingQuestion is an unresolved clarification. Options[0] is the default
// picked on a bare affirmation.
type PendingQuestion struct {
	Kind    QuestionKind      `json:"kind"`
	Options []string          `json:"options"`
	Context ConversationState `json:"context"`
}

// Role is the author of a transcript message
type Role string

const (
	RoleAI   Role = "ai"
	RoleUser Role = "user"
)

// MessageKind selects how a message is rendered
type MessageKind string

const (
	MessageKindText     MessageKind = "text"
	MessageKindProperty MessageKind = "property"
	MessageKindMaterial MessageKind = "material"
	MessageKindOptions  MessageKind = "options"
)

// Message is one transcript entry. Messages are appended, never mutated.
type Message struct {
	ID        string         `json:"id"`
	Role      Role           `json:"role"`
	Kind      MessageKind    `json:"kind"`
	Mode      Mode           `json:"mode"`
	Text      string         `json:"text,omitempty"`
	Property  *PropertyMatch `json:"property,omitempty"`
	Options   []string       `json:"options,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
