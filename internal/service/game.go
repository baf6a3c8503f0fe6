package service

import (
	"context"
	"errors"
	"time"

	"gameswap-api/internal/model"
	"gameswap-api/internal/repository"
	"gameswap-api/pkg/apierror"
	"gameswap-api/pkg/uid"
)

// GameService handles game CRUD. Ownership edits made here are direct
// assignments; the paired swap on trade acceptance belongs to the
// exchange service.
type GameService struct {
	games repository.GameRepository
	users repository.UserRepository
}

// NewGameService creates a new game service.
func NewGameService(games repository.GameRepository, users repository.UserRepository) *GameService {
	return &GameService{games: games, users: users}
}

// CreateGameInput carries a game creation request.
type CreateGameInput struct {
	Name                   string
	Publisher              string
	YearPublished          int
	GamingSystem           string
	Condition              string
	NumberOfPreviousOwners *int
	OwnerID                *string
}

// UpdateGameInput carries a game update. Nil fields are left untouched.
// OwnerProvided distinguishes "set the owner (possibly to null)" from
// "leave the owner alone".
type UpdateGameInput struct {
	Name                   *string
	Publisher              *string
	YearPublished          *int
	GamingSystem           *string
	Condition              *string
	NumberOfPreviousOwners *int
	OwnerID                *string
	OwnerProvided          bool
}

// Create registers a new game, optionally assigned to an owner.
func (s *GameService) Create(ctx context.Context, in CreateGameInput) (*model.Game, error) {
	if in.Name == "" || in.Publisher == "" || in.YearPublished == 0 || in.GamingSystem == "" || in.Condition == "" {
		return nil, apierror.BadRequest("Missing required fields")
	}
	if err := s.checkOwner(ctx, in.OwnerID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	game := &model.Game{
		ID:                     uid.New(),
		Name:                   in.Name,
		Publisher:              in.Publisher,
		YearPublished:          in.YearPublished,
		GamingSystem:           in.GamingSystem,
		Condition:              in.Condition,
		NumberOfPreviousOwners: in.NumberOfPreviousOwners,
		OwnerID:                in.OwnerID,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if err := s.games.Create(ctx, game); err != nil {
		return nil, err
	}
	return s.withOwner(ctx, game), nil
}

// Get returns a game with its owner summary resolved.
func (s *GameService) Get(ctx context.Context, id string) (*model.Game, error) {
	game, err := s.games.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFound("Game not found")
	}
	if err != nil {
		return nil, err
	}
	return s.withOwner(ctx, game), nil
}

// List returns all games with owner summaries resolved.
func (s *GameService) List(ctx context.Context) ([]*model.Game, error) {
	games, err := s.games.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, g := range games {
		s.withOwner(ctx, g)
	}
	return games, nil
}

// Update applies the provided fields. A new owner, if set, must exist.
func (s *GameService) Update(ctx context.Context, id string, in UpdateGameInput) (*model.Game, error) {
	if in.OwnerProvided {
		if err := s.checkOwner(ctx, in.OwnerID); err != nil {
			return nil, err
		}
	}

	upd := model.GameUpdate{
		Name:                   in.Name,
		Publisher:              in.Publisher,
		YearPublished:          in.YearPublished,
		GamingSystem:           in.GamingSystem,
		Condition:              in.Condition,
		NumberOfPreviousOwners: in.NumberOfPreviousOwners,
		OwnerID:                in.OwnerID,
		SetOwner:               in.OwnerProvided,
	}
	game, err := s.games.Update(ctx, id, upd)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFound("Game not found")
	}
	if err != nil {
		return nil, err
	}
	return s.withOwner(ctx, game), nil
}

// Delete removes the game.
func (s *GameService) Delete(ctx context.Context, id string) error {
	err := s.games.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apierror.NotFound("Game not found")
	}
	return err
}

func (s *GameService) checkOwner(ctx context.Context, ownerID *string) error {
	if ownerID == nil {
		return nil
	}
	_, err := s.users.GetByID(ctx, *ownerID)
	if errors.Is(err, repository.ErrNotFound) {
		return apierror.BadRequest("Owner user not found")
	}
	return err
}

func (s *GameService) withOwner(ctx context.Context, game *model.Game) *model.Game {
	if game.OwnerID == nil {
		return game
	}
	if owner, err := s.users.GetByID(ctx, *game.OwnerID); err == nil {
		game.Owner = owner.Summary()
	}
	return game
}
