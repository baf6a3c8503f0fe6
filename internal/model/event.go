package model

import "time"

// Event types published to the event log.
const (
	EventPasswordChanged = "PASSWORD_CHANGED"
	EventOfferCreated    = "OFFER_CREATED"
	EventOfferAccepted   = "OFFER_ACCEPTED"
	EventOfferRejected   = "OFFER_REJECTED"
)

// Event is the envelope appended to the event log. Timestamp is an
// ISO-8601 string; unused payload fields are omitted. This shape is the
// wire contract between the API and any consumer, so additions must stay
// backward compatible.
type Event struct {
	EventType        string `json:"eventType"`
	UserID           string `json:"userId,omitempty"`
	InitiatingUserID string `json:"initiatingUserId,omitempty"`
	TargetUserID     string `json:"targetUserId,omitempty"`
	Timestamp        string `json:"timestamp"`
}

// NewEvent builds an envelope of the given type stamped with the current
// UTC time.
func NewEvent(eventType string) Event {
	return Event{
		EventType: eventType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
