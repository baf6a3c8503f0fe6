package service

import (
	"context"
	"testing"

	"gameswap-api/internal/event"
	"gameswap-api/internal/model"
	"gameswap-api/pkg/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_Create(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.users.Create(context.Background(), CreateUserInput{
		Username: "alice",
		Email:    "  Alice@Example.COM ",
		Password: "hunter2!",
		Address:  strptr("12 Main St"),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email, "email is normalized on the way in")
	assert.Equal(t, int64(0), user.GameCount)
	require.NotNil(t, user.Address)
	assert.Equal(t, "12 Main St", *user.Address)

	// Stored as a hash, never plaintext.
	assert.NotEqual(t, "hunter2!", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2!")))
}

func TestUserService_Create_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.Create(context.Background(), CreateUserInput{Username: "alice"})

	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Equal(t, "Username, email, and password are required", apiErr.Message)
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@example.com")

	// Same address with different casing still collides.
	_, err := env.users.Create(context.Background(), CreateUserInput{
		Username: "other",
		Email:    "ALICE@example.com",
		Password: "secret123",
	})

	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Equal(t, "Email already in use", apiErr.Message)
}

func TestUserService_Get_IncludesGameCount(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice", "alice@example.com")
	env.createGame(t, "Chrono Trigger", &alice.ID)
	env.createGame(t, "Earthbound", &alice.ID)
	env.createGame(t, "Unowned", nil)

	got, err := env.users.Get(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.GameCount)

	_, err = env.users.Get(context.Background(), "missing")
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)
}

func TestUserService_Update_PasswordChangePublishesEvent(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice", "alice@example.com")

	_, err := env.users.Update(context.Background(), alice.ID, UpdateUserInput{
		Password: strptr("newsecret!"),
	})
	require.NoError(t, err)

	events := env.published.byType(model.EventPasswordChanged)
	require.Len(t, events, 1)
	assert.Equal(t, event.TopicUserEvents, events[0].Topic)
	assert.Equal(t, alice.ID, events[0].Event.UserID)
	assert.NotEmpty(t, events[0].Event.Timestamp)
}

func TestUserService_Update_NoPasswordNoEvent(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice", "alice@example.com")

	updated, err := env.users.Update(context.Background(), alice.ID, UpdateUserInput{
		Username: strptr("alice2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.Empty(t, env.published.byType(model.EventPasswordChanged))
}

func TestUserService_Patch(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice", "alice@example.com")

	t.Run("email change rejected", func(t *testing.T) {
		_, err := env.users.Patch(context.Background(), alice.ID, PatchUserInput{
			EmailProvided: true,
		})

		var apiErr *apierror.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 400, apiErr.StatusCode)
		assert.Equal(t, "Email cannot be changed", apiErr.Message)
	})

	t.Run("no fields rejected", func(t *testing.T) {
		_, err := env.users.Patch(context.Background(), alice.ID, PatchUserInput{})

		var apiErr *apierror.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "No valid fields provided for update", apiErr.Message)
	})

	t.Run("empty string clears address", func(t *testing.T) {
		_, err := env.users.Patch(context.Background(), alice.ID, PatchUserInput{
			Address: strptr("12 Main St"),
		})
		require.NoError(t, err)

		updated, err := env.users.Patch(context.Background(), alice.ID, PatchUserInput{
			Address: strptr(""),
		})
		require.NoError(t, err)
		assert.Nil(t, updated.Address)
	})

	t.Run("password change publishes event", func(t *testing.T) {
		before := len(env.published.byType(model.EventPasswordChanged))

		_, err := env.users.Patch(context.Background(), alice.ID, PatchUserInput{
			Password: strptr("patched-secret"),
		})
		require.NoError(t, err)

		assert.Len(t, env.published.byType(model.EventPasswordChanged), before+1)
	})
}

func TestUserService_Delete_Cascades(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice", "alice@example.com")
	bob := env.createUser(t, "bob", "bob@example.com")
	aliceGame := env.createGame(t, "Chrono Trigger", &alice.ID)
	bobGame := env.createGame(t, "Earthbound", &bob.ID)

	view, err := env.exchanges.Propose(context.Background(), ProposeExchangeInput{
		InitiatingUserID: alice.ID,
		TargetUserID:     bob.ID,
		GameOfferedID:    aliceGame.ID,
		GameRequestedID:  bobGame.ID,
	})
	require.NoError(t, err)

	require.NoError(t, env.users.Delete(context.Background(), alice.ID))

	_, err = env.users.Get(context.Background(), alice.ID)
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)

	// Owned games go with the user.
	_, err = env.games.Get(context.Background(), aliceGame.ID)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)

	// Exchanges referencing the user on either side are gone too, even
	// though bob still exists.
	_, err = env.exchanges.Get(context.Background(), view.ID)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)

	// Bob's own game is untouched.
	got, err := env.games.Get(context.Background(), bobGame.ID)
	require.NoError(t, err)
	assert.Equal(t, "Earthbound", got.Name)
}

func TestUserService_GamesForUser(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice", "alice@example.com")
	first := env.createGame(t, "Chrono Trigger", &alice.ID)
	second := env.createGame(t, "Earthbound", &alice.ID)
	env.createGame(t, "Someone Else's", nil)

	games, err := env.users.GamesForUser(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, first.ID, games[0].ID)
	assert.Equal(t, second.ID, games[1].ID)

	_, err = env.users.GamesForUser(context.Background(), "missing")
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "User not found", apiErr.Message)
}
