package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gameswap-api/internal/handler"
	"gameswap-api/internal/repository"
	"gameswap-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	store := repository.NewMemoryStore()
	users := store.Users()
	games := store.Games()
	exchanges := store.Exchanges()

	userService := service.NewUserService(users, games, exchanges, nil)
	gameService := service.NewGameService(games, users)
	exchangeService := service.NewExchangeService(exchanges, games, users, nil)

	return New(Config{
		Handler:         handler.New("test"),
		UserHandler:     handler.NewUserHandler(userService),
		GameHandler:     handler.NewGameHandler(gameService),
		ExchangeHandler: handler.NewExchangeHandler(exchangeService),
	})
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// envelope decodes the standard {success, data} response body.
func envelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func dataField(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	body := envelope(t, rec)
	require.Equal(t, true, body["success"])
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "data should be an object, got %T", body["data"])
	return data
}

func errorField(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	body := envelope(t, rec)
	require.Equal(t, false, body["success"])
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok, "error should be an object")
	return errObj
}

func createUserHTTP(t *testing.T, router http.Handler, username, email string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/users", map[string]any{
		"username": username,
		"email":    email,
		"password": "hunter2!",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return dataField(t, rec)["id"].(string)
}

func createGameHTTP(t *testing.T, router http.Handler, name, ownerID string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/games", map[string]any{
		"name":          name,
		"publisher":     "Square",
		"yearPublished": 1995,
		"gamingSystem":  "SNES",
		"condition":     "good",
		"ownerId":       ownerID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return dataField(t, rec)["id"].(string)
}

func TestRouter_UserLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/users", map[string]any{
		"username": "alice",
		"email":    "Alice@Example.com",
		"password": "hunter2!",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := dataField(t, rec)
	id := created["id"].(string)
	assert.Equal(t, "/users/"+id, rec.Header().Get("Location"))
	assert.Equal(t, "alice@example.com", created["email"])
	_, exposed := created["password"]
	assert.False(t, exposed, "password hash must not appear in responses")

	rec = doJSON(t, router, http.MethodGet, "/users/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", dataField(t, rec)["username"])

	rec = doJSON(t, router, http.MethodPatch, "/users/"+id, map[string]any{
		"email": "new@example.com",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email cannot be changed", errorField(t, rec)["message"])

	rec = doJSON(t, router, http.MethodDelete, "/users/"+id, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/users/"+id, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorField(t, rec)["code"])
}

func TestRouter_GamePatchOwner(t *testing.T) {
	router := newTestRouter(t)
	alice := createUserHTTP(t, router, "alice", "alice@example.com")
	game := createGameHTTP(t, router, "Chrono Trigger", alice)

	// Explicit null detaches the owner; an absent field leaves it alone.
	rec := doJSON(t, router, http.MethodPatch, "/games/"+game, map[string]any{
		"ownerId": nil,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, dataField(t, rec)["ownerId"])

	rec = doJSON(t, router, http.MethodPatch, "/games/"+game, map[string]any{
		"condition": "fair",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	data := dataField(t, rec)
	assert.Equal(t, "fair", data["condition"])
	assert.Nil(t, data["ownerId"], "owner untouched by unrelated patch")
}

func TestRouter_ExchangeFlow(t *testing.T) {
	router := newTestRouter(t)
	alice := createUserHTTP(t, router, "alice", "alice@example.com")
	bob := createUserHTTP(t, router, "bob", "bob@example.com")
	aliceGame := createGameHTTP(t, router, "Chrono Trigger", alice)
	bobGame := createGameHTTP(t, router, "Earthbound", bob)

	rec := doJSON(t, router, http.MethodPost, "/exchanges", map[string]any{
		"initiatingUserId": alice,
		"targetUserId":     bob,
		"gameOfferedId":    aliceGame,
		"gameRequestedId":  bobGame,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := dataField(t, rec)
	id := created["id"].(string)
	assert.Equal(t, "pending", created["status"])
	assert.Equal(t, "/exchanges/"+id, rec.Header().Get("Location"))

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/exchanges/%s/accept", id), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	accepted := dataField(t, rec)
	assert.Equal(t, "completed", accepted["status"])
	assert.NotNil(t, accepted["completedAt"])

	// Second accept hits the terminal-state guard.
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/exchanges/%s/accept", id), nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errObj := errorField(t, rec)
	assert.Equal(t, "STATE_CONFLICT", errObj["code"])
	assert.Equal(t, "Exchange is not pending", errObj["message"])

	// Ownership visibly swapped through the games endpoint.
	rec = doJSON(t, router, http.MethodGet, "/games/"+aliceGame, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, bob, dataField(t, rec)["ownerId"])

	// The per-user listing route matches before the id route.
	rec = doJSON(t, router, http.MethodGet, "/exchanges/user/"+alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := envelope(t, rec)
	list, ok := body["data"].([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
}

func TestRouter_InvalidBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString("{nope"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", errorField(t, rec)["code"])
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gameswap-api", dataField(t, rec)["service"])
}

func TestRouter_RequestIDHeader(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
