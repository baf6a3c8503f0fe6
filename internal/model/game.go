package model

import "time"

// Game is a tradeable item. OwnerID is nil for unassigned stock; when set
// it must reference an existing user. Ownership moves only through direct
// edits or a completed exchange.
type Game struct {
	ID                     string    `bson:"_id" json:"id"`
	Name                   string    `bson:"name" json:"name"`
	Publisher              string    `bson:"publisher" json:"publisher"`
	YearPublished          int       `bson:"year_published" json:"yearPublished"`
	GamingSystem           string    `bson:"gaming_system" json:"gamingSystem"`
	Condition              string    `bson:"condition" json:"condition"`
	NumberOfPreviousOwners *int      `bson:"number_of_previous_owners" json:"numberOfPreviousOwners"`
	OwnerID                *string   `bson:"owner_id" json:"ownerId"`
	CreatedAt              time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt              time.Time `bson:"updated_at" json:"updatedAt"`

	// Owner is a read-side projection of OwnerID. Never persisted.
	Owner *UserSummary `bson:"-" json:"owner,omitempty"`
}

// GameSummary is the slim projection embedded in exchange reads.
type GameSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	GamingSystem string `json:"gamingSystem"`
}

// Summary returns the embeddable projection of the game.
func (g *Game) Summary() *GameSummary {
	return &GameSummary{ID: g.ID, Name: g.Name, GamingSystem: g.GamingSystem}
}

// OwnedBy reports whether the game is currently owned by userID.
func (g *Game) OwnedBy(userID string) bool {
	return g.OwnerID != nil && *g.OwnerID == userID
}

// GameUpdate carries a partial update. Nil fields are left untouched.
// SetOwner distinguishes "clear the owner" from "leave the owner alone".
type GameUpdate struct {
	Name                   *string
	Publisher              *string
	YearPublished          *int
	GamingSystem           *string
	Condition              *string
	NumberOfPreviousOwners *int
	OwnerID                *string
	SetOwner               bool
}
