package service

import (
	"context"
	"errors"
	"log"
	"time"

	"gameswap-api/internal/event"
	"gameswap-api/internal/model"
	"gameswap-api/internal/repository"
	"gameswap-api/pkg/apierror"
	"gameswap-api/pkg/uid"
)

// ExchangeService is the exchange state machine: it validates trade
// proposals, drives the pending -> completed/rejected transitions, and is
// the only code path that moves game ownership between users.
type ExchangeService struct {
	exchanges repository.ExchangeRepository
	games     repository.GameRepository
	users     repository.UserRepository
	events    event.Publisher
}

// NewExchangeService creates a new exchange service. events may be nil
// (no event log configured); everything else is required.
func NewExchangeService(
	exchanges repository.ExchangeRepository,
	games repository.GameRepository,
	users repository.UserRepository,
	events event.Publisher,
) *ExchangeService {
	return &ExchangeService{
		exchanges: exchanges,
		games:     games,
		users:     users,
		events:    events,
	}
}

// ProposeExchangeInput carries a trade proposal.
type ProposeExchangeInput struct {
	InitiatingUserID string `json:"initiatingUserId"`
	TargetUserID     string `json:"targetUserId"`
	GameOfferedID    string `json:"gameOfferedId"`
	GameRequestedID  string `json:"gameRequestedId"`
}

// Propose validates a trade proposal and creates a pending exchange.
// Preconditions are checked in order, each with its own failure message;
// nothing is written unless all of them hold.
func (s *ExchangeService) Propose(ctx context.Context, in ProposeExchangeInput) (*model.ExchangeView, error) {
	if in.InitiatingUserID == "" || in.TargetUserID == "" || in.GameOfferedID == "" || in.GameRequestedID == "" {
		return nil, apierror.BadRequest("Missing required fields")
	}

	initiator, err := s.users.GetByID(ctx, in.InitiatingUserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.BadRequest("Initiating user not found")
	}
	if err != nil {
		return nil, err
	}

	target, err := s.users.GetByID(ctx, in.TargetUserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.BadRequest("Target user not found")
	}
	if err != nil {
		return nil, err
	}

	offered, err := s.games.GetByID(ctx, in.GameOfferedID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.BadRequest("Offered game not found")
	}
	if err != nil {
		return nil, err
	}

	requested, err := s.games.GetByID(ctx, in.GameRequestedID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.BadRequest("Requested game not found")
	}
	if err != nil {
		return nil, err
	}

	if !offered.OwnedBy(initiator.ID) {
		return nil, apierror.BadRequest("Initiating user does not own the offered game")
	}
	if !requested.OwnedBy(target.ID) {
		return nil, apierror.BadRequest("Target user does not own the requested game")
	}

	now := time.Now().UTC()
	ex := &model.Exchange{
		ID:               uid.New(),
		InitiatingUserID: initiator.ID,
		TargetUserID:     target.ID,
		GameOfferedID:    offered.ID,
		GameRequestedID:  requested.ID,
		Status:           model.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.exchanges.Create(ctx, ex); err != nil {
		return nil, err
	}

	s.publishOffer(ctx, model.EventOfferCreated, ex)

	return &model.ExchangeView{
		Exchange:       *ex,
		InitiatingUser: initiator.Summary(),
		TargetUser:     target.Summary(),
		GameOffered:    offered.Summary(),
		GameRequested:  requested.Summary(),
	}, nil
}

// Accept completes a pending exchange: both games change owner and the
// status flips to completed, all in one atomic unit. Of two racing Accept
// calls exactly one wins; the loser gets the state-conflict error.
func (s *ExchangeService) Accept(ctx context.Context, id string) (*model.ExchangeView, error) {
	ex, err := s.exchanges.CompleteSwap(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, mapTransitionError(err)
	}

	s.publishOffer(ctx, model.EventOfferAccepted, ex)

	return s.view(ctx, ex), nil
}

// Reject declines a pending exchange. No ownership change.
func (s *ExchangeService) Reject(ctx context.Context, id string) (*model.ExchangeView, error) {
	ex, err := s.exchanges.RejectPending(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, mapTransitionError(err)
	}

	s.publishOffer(ctx, model.EventOfferRejected, ex)

	return s.view(ctx, ex), nil
}

// Get returns a single exchange with its references resolved.
func (s *ExchangeService) Get(ctx context.Context, id string) (*model.ExchangeView, error) {
	ex, err := s.exchanges.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFound("Exchange not found")
	}
	if err != nil {
		return nil, err
	}
	return s.view(ctx, ex), nil
}

// List returns all exchanges with their references resolved.
func (s *ExchangeService) List(ctx context.Context) ([]*model.ExchangeView, error) {
	exchanges, err := s.exchanges.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, exchanges), nil
}

// ListForUser returns every exchange where the user is initiator or
// target, ordered by creation time.
func (s *ExchangeService) ListForUser(ctx context.Context, userID string) ([]*model.ExchangeView, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound("User not found")
		}
		return nil, err
	}

	exchanges, err := s.exchanges.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, exchanges), nil
}

func mapTransitionError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apierror.NotFound("Exchange not found")
	case errors.Is(err, repository.ErrNotPending):
		return apierror.StateConflict("Exchange is not pending")
	default:
		return err
	}
}

// view resolves the read-side join for one exchange. A reference that no
// longer exists resolves to a nil summary rather than an error.
func (s *ExchangeService) view(ctx context.Context, ex *model.Exchange) *model.ExchangeView {
	v := &model.ExchangeView{Exchange: *ex}
	if u, err := s.users.GetByID(ctx, ex.InitiatingUserID); err == nil {
		v.InitiatingUser = u.Summary()
	}
	if u, err := s.users.GetByID(ctx, ex.TargetUserID); err == nil {
		v.TargetUser = u.Summary()
	}
	if g, err := s.games.GetByID(ctx, ex.GameOfferedID); err == nil {
		v.GameOffered = g.Summary()
	}
	if g, err := s.games.GetByID(ctx, ex.GameRequestedID); err == nil {
		v.GameRequested = g.Summary()
	}
	return v
}

func (s *ExchangeService) views(ctx context.Context, exchanges []*model.Exchange) []*model.ExchangeView {
	views := make([]*model.ExchangeView, 0, len(exchanges))
	for _, ex := range exchanges {
		views = append(views, s.view(ctx, ex))
	}
	return views
}

// publishOffer appends an offer event to the event log. The exchange is
// already committed; a publish failure is logged and goes no further.
func (s *ExchangeService) publishOffer(ctx context.Context, eventType string, ex *model.Exchange) {
	if s.events == nil {
		return
	}
	evt := model.NewEvent(eventType)
	evt.InitiatingUserID = ex.InitiatingUserID
	evt.TargetUserID = ex.TargetUserID
	if err := s.events.Publish(ctx, event.TopicOfferEvents, evt); err != nil {
		log.Printf("[ExchangeService] Failed to publish %s for exchange %s: %v", eventType, ex.ID, err)
	}
}
