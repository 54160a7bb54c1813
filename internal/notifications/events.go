package notifications

import "time"

// Event types pushed to clients.
const (
	EventProjectCreated         = "project_created"
	EventProjectUpvoted         = "project_upvoted"
	EventCommentCreated         = "comment_created"
	EventContactRequestReceived = "contact_request_received"
	EventMessagesDropped        = "messages_dropped"
)

// Event is the envelope every realtime message is sent in.
type Event struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent stamps an event with the current time.
func NewEvent(eventType string, payload any) Event {
	return Event{Type: eventType, Payload: payload, Timestamp: time.Now().UTC()}
}
