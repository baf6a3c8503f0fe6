package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"gameswap-api/internal/service"
	"gameswap-api/pkg/apierror"
	"gameswap-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// GameHandler handles game-related HTTP requests.
type GameHandler struct {
	gameService *service.GameService
}

// NewGameHandler creates a new game handler.
func NewGameHandler(gameService *service.GameService) *GameHandler {
	return &GameHandler{gameService: gameService}
}

type createGameRequest struct {
	Name                   string  `json:"name"`
	Publisher              string  `json:"publisher"`
	YearPublished          int     `json:"yearPublished"`
	GamingSystem           string  `json:"gamingSystem"`
	Condition              string  `json:"condition"`
	NumberOfPreviousOwners *int    `json:"numberOfPreviousOwners"`
	OwnerID                *string `json:"ownerId"`
}

type updateGameRequest struct {
	Name                   *string `json:"name"`
	Publisher              *string `json:"publisher"`
	YearPublished          *int    `json:"yearPublished"`
	GamingSystem           *string `json:"gamingSystem"`
	Condition              *string `json:"condition"`
	NumberOfPreviousOwners *int    `json:"numberOfPreviousOwners"`
	OwnerID                *string `json:"ownerId"`
}

// decodeGameUpdate decodes the body twice: once for values, once for key
// presence, because "ownerId": null (clear the owner) and an absent
// ownerId (leave it alone) decode to the same nil pointer.
func decodeGameUpdate(r *http.Request) (service.UpdateGameInput, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return service.UpdateGameInput{}, apierror.BadRequest("failed to read request body")
	}
	defer r.Body.Close()

	var req updateGameRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return service.UpdateGameInput{}, apierror.BadRequest("invalid request body")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return service.UpdateGameInput{}, apierror.BadRequest("invalid request body")
	}
	_, ownerProvided := fields["ownerId"]

	return service.UpdateGameInput{
		Name:                   req.Name,
		Publisher:              req.Publisher,
		YearPublished:          req.YearPublished,
		GamingSystem:           req.GamingSystem,
		Condition:              req.Condition,
		NumberOfPreviousOwners: req.NumberOfPreviousOwners,
		OwnerID:                req.OwnerID,
		OwnerProvided:          ownerProvided,
	}, nil
}

// List handles GET /games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.gameService.List(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, games)
}

// Create handles POST /games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	game, err := h.gameService.Create(r.Context(), service.CreateGameInput{
		Name:                   req.Name,
		Publisher:              req.Publisher,
		YearPublished:          req.YearPublished,
		GamingSystem:           req.GamingSystem,
		Condition:              req.Condition,
		NumberOfPreviousOwners: req.NumberOfPreviousOwners,
		OwnerID:                req.OwnerID,
	})
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, "/games/"+game.ID, game)
}

// Get handles GET /games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	game, err := h.gameService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, game)
}

// Update handles PUT /games/{id}
func (h *GameHandler) Update(w http.ResponseWriter, r *http.Request) {
	in, err := decodeGameUpdate(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	game, err := h.gameService.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, game)
}

// Patch handles PATCH /games/{id}. Empty strings and zero years are
// treated as absent rather than applied.
func (h *GameHandler) Patch(w http.ResponseWriter, r *http.Request) {
	in, err := decodeGameUpdate(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	if in.Name != nil && *in.Name == "" {
		in.Name = nil
	}
	if in.Publisher != nil && *in.Publisher == "" {
		in.Publisher = nil
	}
	if in.YearPublished != nil && *in.YearPublished == 0 {
		in.YearPublished = nil
	}
	if in.GamingSystem != nil && *in.GamingSystem == "" {
		in.GamingSystem = nil
	}
	if in.Condition != nil && *in.Condition == "" {
		in.Condition = nil
	}

	game, err := h.gameService.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, game)
}

// Delete handles DELETE /games/{id}
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.gameService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}
