package service

import (
	"context"
	"testing"

	"gameswap-api/pkg/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameService_Create(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice", "alice@example.com")

	owners := 2
	game, err := env.games.Create(context.Background(), CreateGameInput{
		Name:                   "Chrono Trigger",
		Publisher:              "Square",
		YearPublished:          1995,
		GamingSystem:           "SNES",
		Condition:              "good",
		NumberOfPreviousOwners: &owners,
		OwnerID:                &alice.ID,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, game.ID)
	require.NotNil(t, game.Owner)
	assert.Equal(t, "alice", game.Owner.Username)
	require.NotNil(t, game.NumberOfPreviousOwners)
	assert.Equal(t, 2, *game.NumberOfPreviousOwners)
}

func TestGameService_Create_Validation(t *testing.T) {
	env := newTestEnv(t)

	t.Run("missing fields", func(t *testing.T) {
		_, err := env.games.Create(context.Background(), CreateGameInput{Name: "Incomplete"})

		var apiErr *apierror.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 400, apiErr.StatusCode)
		assert.Equal(t, "Missing required fields", apiErr.Message)
	})

	t.Run("unknown owner", func(t *testing.T) {
		_, err := env.games.Create(context.Background(), CreateGameInput{
			Name:          "Chrono Trigger",
			Publisher:     "Square",
			YearPublished: 1995,
			GamingSystem:  "SNES",
			Condition:     "good",
			OwnerID:       strptr("missing"),
		})

		var apiErr *apierror.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 400, apiErr.StatusCode)
		assert.Equal(t, "Owner user not found", apiErr.Message)
	})
}

func TestGameService_Update(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice", "alice@example.com")
	bob := env.createUser(t, "bob", "bob@example.com")
	game := env.createGame(t, "Chrono Trigger", &alice.ID)

	t.Run("partial fields", func(t *testing.T) {
		updated, err := env.games.Update(context.Background(), game.ID, UpdateGameInput{
			Condition: strptr("fair"),
		})
		require.NoError(t, err)
		assert.Equal(t, "fair", updated.Condition)
		assert.Equal(t, "Chrono Trigger", updated.Name, "untouched fields survive")
	})

	t.Run("reassign owner", func(t *testing.T) {
		updated, err := env.games.Update(context.Background(), game.ID, UpdateGameInput{
			OwnerID:       &bob.ID,
			OwnerProvided: true,
		})
		require.NoError(t, err)
		require.NotNil(t, updated.Owner)
		assert.Equal(t, "bob", updated.Owner.Username)
	})

	t.Run("clear owner", func(t *testing.T) {
		updated, err := env.games.Update(context.Background(), game.ID, UpdateGameInput{
			OwnerProvided: true,
		})
		require.NoError(t, err)
		assert.Nil(t, updated.OwnerID)
		assert.Nil(t, updated.Owner)
	})

	t.Run("unknown new owner", func(t *testing.T) {
		_, err := env.games.Update(context.Background(), game.ID, UpdateGameInput{
			OwnerID:       strptr("missing"),
			OwnerProvided: true,
		})

		var apiErr *apierror.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "Owner user not found", apiErr.Message)
	})

	t.Run("unknown game", func(t *testing.T) {
		_, err := env.games.Update(context.Background(), "missing", UpdateGameInput{
			Condition: strptr("poor"),
		})

		var apiErr *apierror.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 404, apiErr.StatusCode)
		assert.Equal(t, "Game not found", apiErr.Message)
	})
}

func TestGameService_List(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice", "alice@example.com")
	first := env.createGame(t, "Chrono Trigger", &alice.ID)
	second := env.createGame(t, "Earthbound", nil)

	games, err := env.games.List(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, first.ID, games[0].ID)
	assert.Equal(t, second.ID, games[1].ID)
	require.NotNil(t, games[0].Owner)
	assert.Nil(t, games[1].Owner)
}

func TestGameService_Delete(t *testing.T) {
	env := newTestEnv(t)
	game := env.createGame(t, "Chrono Trigger", nil)

	require.NoError(t, env.games.Delete(context.Background(), game.ID))

	_, err := env.games.Get(context.Background(), game.ID)
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)

	err = env.games.Delete(context.Background(), game.ID)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)
}
