package model

import "time"

// ExchangeStatus is the lifecycle state of an exchange.
type ExchangeStatus string

const (
	StatusPending   ExchangeStatus = "pending"
	StatusAccepted  ExchangeStatus = "accepted"
	StatusRejected  ExchangeStatus = "rejected"
	StatusCompleted ExchangeStatus = "completed"
)

// Terminal reports whether no further transition is permitted.
func (s ExchangeStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// Exchange is a proposed trade: the initiating user offers GameOffered for
// the target user's GameRequested. Transitions only out of pending; completed
// and rejected are terminal.
type Exchange struct {
	ID               string         `bson:"_id" json:"id"`
	InitiatingUserID string         `bson:"initiating_user_id" json:"initiatingUserId"`
	TargetUserID     string         `bson:"target_user_id" json:"targetUserId"`
	GameOfferedID    string         `bson:"game_offered_id" json:"gameOfferedId"`
	GameRequestedID  string         `bson:"game_requested_id" json:"gameRequestedId"`
	Status           ExchangeStatus `bson:"status" json:"status"`
	CreatedAt        time.Time      `bson:"created_at" json:"createdAt"`
	CompletedAt      *time.Time     `bson:"completed_at" json:"completedAt"`
	UpdatedAt        time.Time      `bson:"updated_at" json:"updatedAt"`
}

// ExchangeView is the read-side projection of an exchange with the
// referenced users and games resolved. A nil summary means the referenced
// entity no longer exists.
type ExchangeView struct {
	Exchange
	InitiatingUser *UserSummary `json:"initiatingUser"`
	TargetUser     *UserSummary `json:"targetUser"`
	GameOffered    *GameSummary `json:"gameOffered"`
	GameRequested  *GameSummary `json:"gameRequested"`
}
