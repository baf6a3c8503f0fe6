package repository

import (
	"context"
	"time"

	"gameswap-api/internal/model"
)

// UserRepository defines user data access methods.
type UserRepository interface {
	// Create inserts a new user. Returns ErrDuplicateEmail if the email
	// is already taken.
	Create(ctx context.Context, user *model.User) error

	// GetByID returns the user or ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.User, error)

	// GetByEmail returns the user with the given (lowercased) email or
	// ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// List returns all users ordered by creation time.
	List(ctx context.Context) ([]*model.User, error)

	// Update applies the non-nil fields of upd and returns the updated
	// user. Returns ErrNotFound or ErrDuplicateEmail.
	Update(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error)

	// Delete removes the user. Returns ErrNotFound if absent. Cascades
	// are the service's responsibility.
	Delete(ctx context.Context, id string) error
}

// GameRepository defines game data access methods. It is the single source
// of truth for ownership: a game's owner reference lives here and nowhere
// else.
type GameRepository interface {
	Create(ctx context.Context, game *model.Game) error
	GetByID(ctx context.Context, id string) (*model.Game, error)
	List(ctx context.Context) ([]*model.Game, error)
	Update(ctx context.Context, id string, upd model.GameUpdate) (*model.Game, error)
	Delete(ctx context.Context, id string) error

	// ListByOwner returns all games currently owned by userID.
	ListByOwner(ctx context.Context, userID string) ([]*model.Game, error)

	// CountByOwner returns the number of games currently owned by userID.
	CountByOwner(ctx context.Context, userID string) (int64, error)

	// DeleteByOwner removes every game owned by userID, returning the
	// number removed. Used by the user-deletion cascade.
	DeleteByOwner(ctx context.Context, userID string) (int64, error)
}

// ExchangeRepository defines exchange data access plus the atomic
// transition primitives used by the exchange state machine.
type ExchangeRepository interface {
	Create(ctx context.Context, ex *model.Exchange) error
	GetByID(ctx context.Context, id string) (*model.Exchange, error)
	List(ctx context.Context) ([]*model.Exchange, error)

	// ListForUser returns exchanges where userID is initiator or target,
	// ordered by creation time (id as tiebreak).
	ListForUser(ctx context.Context, userID string) ([]*model.Exchange, error)

	// CompleteSwap transitions the exchange from pending to completed and
	// reassigns ownership of both games as one atomic unit: no reader may
	// observe a partial swap, and of two concurrent calls exactly one
	// succeeds. Returns ErrNotFound if the exchange does not exist and
	// ErrNotPending if the status is no longer pending.
	CompleteSwap(ctx context.Context, id string, now time.Time) (*model.Exchange, error)

	// RejectPending transitions the exchange from pending to rejected
	// under the same conditional-update rules as CompleteSwap. No
	// ownership change.
	RejectPending(ctx context.Context, id string, now time.Time) (*model.Exchange, error)

	// DeleteForUser hard-deletes every exchange referencing userID as
	// initiator or target, returning the number removed.
	DeleteForUser(ctx context.Context, userID string) (int64, error)
}

// DeliveryLogRepository records notification emails sent by the consumer.
// The (topic, partition, offset, recipient) key makes redelivered messages
// detectable, so a consumer group never emails twice for the same log entry.
type DeliveryLogRepository interface {
	// MarkSent records a delivery and reports whether it was newly
	// recorded. false means this exact delivery was already logged and
	// the caller should skip the send.
	MarkSent(ctx context.Context, topic string, partition int, offset int64, recipient, subject string) (bool, error)

	// Close releases the underlying connection.
	Close() error
}
