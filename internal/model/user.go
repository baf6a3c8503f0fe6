package model

import "time"

// User represents a registered member of the marketplace.
// PasswordHash is never serialized to JSON.
type User struct {
	ID           string    `bson:"_id" json:"id"`
	Username     string    `bson:"username" json:"username"`
	Email        string    `bson:"email" json:"email"`
	Address      *string   `bson:"address" json:"address"`
	PasswordHash string    `bson:"password" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`

	// GameCount is a read-side projection (number of games currently
	// owned). Never persisted.
	GameCount int64 `bson:"-" json:"gameCount"`
}

// UserSummary is the slim projection embedded in exchange and game reads.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Summary returns the embeddable projection of the user.
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Username: u.Username, Email: u.Email}
}

// UserUpdate carries a partial update. Nil fields are left untouched;
// ClearAddress stores a null address regardless of the Address field.
type UserUpdate struct {
	Username     *string
	Email        *string
	Address      *string
	ClearAddress bool
	PasswordHash *string
}
