package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"gameswap-api/internal/event"
	"gameswap-api/internal/model"
	"gameswap-api/internal/repository"
	"gameswap-api/pkg/apierror"
	"gameswap-api/pkg/uid"

	"golang.org/x/crypto/bcrypt"
)

// UserService handles user registration, profile updates, and the
// deletion cascade. Password changes publish a PASSWORD_CHANGED event
// through the single consolidated update path.
type UserService struct {
	users     repository.UserRepository
	games     repository.GameRepository
	exchanges repository.ExchangeRepository
	events    event.Publisher
}

// NewUserService creates a new user service. events may be nil.
func NewUserService(
	users repository.UserRepository,
	games repository.GameRepository,
	exchanges repository.ExchangeRepository,
	events event.Publisher,
) *UserService {
	return &UserService{
		users:     users,
		games:     games,
		exchanges: exchanges,
		events:    events,
	}
}

// CreateUserInput carries a registration request.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Address  *string
}

// UpdateUserInput carries a full-update (PUT) request. Nil fields are
// left untouched.
type UpdateUserInput struct {
	Username *string
	Email    *string
	Address  *string
	Password *string
}

// PatchUserInput carries a partial-update (PATCH) request. Nil means the
// field was absent from the request body; an empty string clears the
// field where clearing is meaningful. Email changes are not allowed via
// PATCH.
type PatchUserInput struct {
	Username      *string
	EmailProvided bool
	Address       *string
	Password      *string
}

// Create registers a new user. The email is stored lowercased and must be
// unique; the password is stored as a bcrypt hash, never plaintext.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, apierror.BadRequest("Username, email, and password are required")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uid.New(),
		Username:     in.Username,
		Email:        normalizeEmail(in.Email),
		Address:      in.Address,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apierror.BadRequest("Email already in use")
		}
		return nil, err
	}

	user.GameCount = 0
	return user, nil
}

// Get returns a user with the computed game count.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return s.withGameCount(ctx, user), nil
}

// List returns all users, each with the computed game count.
func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		s.withGameCount(ctx, u)
	}
	return users, nil
}

// Update applies a full update. An email change re-checks uniqueness; a
// password change re-hashes and publishes PASSWORD_CHANGED.
func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*model.User, error) {
	upd := model.UserUpdate{
		Username: in.Username,
		Address:  in.Address,
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		upd.Email = &email
	}

	return s.applyUpdate(ctx, id, upd, in.Password)
}

// Patch applies a partial update. Email changes are rejected; an empty
// string clears the address.
func (s *UserService) Patch(ctx context.Context, id string, in PatchUserInput) (*model.User, error) {
	if in.EmailProvided {
		return nil, apierror.BadRequest("Email cannot be changed")
	}

	upd := model.UserUpdate{}
	changed := false
	if in.Username != nil {
		upd.Username = in.Username
		changed = true
	}
	if in.Address != nil {
		if *in.Address == "" {
			upd.ClearAddress = true
		} else {
			upd.Address = in.Address
		}
		changed = true
	}
	if in.Password == nil && !changed {
		return nil, apierror.BadRequest("No valid fields provided for update")
	}

	return s.applyUpdate(ctx, id, upd, in.Password)
}

// applyUpdate is the single write path for user updates, so the
// PASSWORD_CHANGED publish cannot drift between PUT and PATCH.
func (s *UserService) applyUpdate(ctx context.Context, id string, upd model.UserUpdate, password *string) (*model.User, error) {
	if password != nil {
		hash, err := hashPassword(*password)
		if err != nil {
			return nil, err
		}
		upd.PasswordHash = &hash
	}

	user, err := s.users.Update(ctx, id, upd)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apierror.NotFound("User not found")
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, apierror.BadRequest("Email already in use")
		default:
			return nil, err
		}
	}

	if password != nil && s.events != nil {
		evt := model.NewEvent(model.EventPasswordChanged)
		evt.UserID = user.ID
		if err := s.events.Publish(ctx, event.TopicUserEvents, evt); err != nil {
			log.Printf("[UserService] Failed to publish PASSWORD_CHANGED for %s: %v", user.ID, err)
		}
	}

	return s.withGameCount(ctx, user), nil
}

// Delete removes the user and cascades: owned games are deleted outright
// and every exchange referencing the user (either side) is hard-deleted.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apierror.NotFound("User not found")
		}
		return err
	}

	games, err := s.games.DeleteByOwner(ctx, id)
	if err != nil {
		return err
	}
	exchanges, err := s.exchanges.DeleteForUser(ctx, id)
	if err != nil {
		return err
	}

	log.Printf("[UserService] Deleted user %s (cascade: %d games, %d exchanges)", id, games, exchanges)
	return nil
}

// GamesForUser returns all games owned by the user, or NotFound if the
// user does not exist.
func (s *UserService) GamesForUser(ctx context.Context, id string) ([]*model.Game, error) {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound("User not found")
		}
		return nil, err
	}
	return s.games.ListByOwner(ctx, id)
}

func (s *UserService) withGameCount(ctx context.Context, user *model.User) *model.User {
	count, err := s.games.CountByOwner(ctx, user.ID)
	if err != nil {
		log.Printf("[UserService] Failed to count games for %s: %v", user.ID, err)
		return user
	}
	user.GameCount = count
	return user
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
