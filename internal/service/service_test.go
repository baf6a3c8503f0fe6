package service

import (
	"context"
	"sync"
	"testing"

	"gameswap-api/internal/model"
	"gameswap-api/internal/repository"

	"github.com/stretchr/testify/require"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	Topic string
	Event model.Event
}

func (p *capturePublisher) Publish(_ context.Context, topic string, evt model.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Event: evt})
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) all() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publishedEvent, len(p.events))
	copy(out, p.events)
	return out
}

func (p *capturePublisher) byType(eventType string) []publishedEvent {
	var out []publishedEvent
	for _, e := range p.all() {
		if e.Event.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// testEnv wires the three services over a shared in-memory store.
type testEnv struct {
	users     *UserService
	games     *GameService
	exchanges *ExchangeService
	published *capturePublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := repository.NewMemoryStore()
	pub := &capturePublisher{}
	userRepo := store.Users()
	gameRepo := store.Games()
	exchangeRepo := store.Exchanges()

	return &testEnv{
		users:     NewUserService(userRepo, gameRepo, exchangeRepo, pub),
		games:     NewGameService(gameRepo, userRepo),
		exchanges: NewExchangeService(exchangeRepo, gameRepo, userRepo, pub),
		published: pub,
	}
}

func (e *testEnv) createUser(t *testing.T, username, email string) *model.User {
	t.Helper()
	user, err := e.users.Create(context.Background(), CreateUserInput{
		Username: username,
		Email:    email,
		Password: "hunter2!",
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) createGame(t *testing.T, name string, ownerID *string) *model.Game {
	t.Helper()
	game, err := e.games.Create(context.Background(), CreateGameInput{
		Name:          name,
		Publisher:     "Test Publisher",
		YearPublished: 2001,
		GamingSystem:  "SNES",
		Condition:     "good",
		OwnerID:       ownerID,
	})
	require.NoError(t, err)
	return game
}

func strptr(s string) *string { return &s }
