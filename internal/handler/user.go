package handler

import (
	"encoding/json"
	"net/http"

	"gameswap-api/internal/service"
	"gameswap-api/pkg/apierror"
	"gameswap-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// UserHandler handles user-related HTTP requests.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type createUserRequest struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Address  *string `json:"address"`
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
	Password *string `json:"password"`
}

// List handles GET /users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, users)
}

// Create handles POST /users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	user, err := h.userService.Create(r.Context(), service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Address:  req.Address,
	})
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, "/users/"+user.ID, user)
}

// Get handles GET /users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, user)
}

// Update handles PUT /users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	user, err := h.userService.Update(r.Context(), chi.URLParam(r, "id"), service.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Address:  req.Address,
		Password: req.Password,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, user)
}

// Patch handles PATCH /users/{id}
func (h *UserHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	user, err := h.userService.Patch(r.Context(), chi.URLParam(r, "id"), service.PatchUserInput{
		Username:      req.Username,
		EmailProvided: req.Email != nil,
		Address:       req.Address,
		Password:      req.Password,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, user)
}

// Delete handles DELETE /users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}

// Games handles GET /users/{id}/games
func (h *UserHandler) Games(w http.ResponseWriter, r *http.Request) {
	games, err := h.userService.GamesForUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, games)
}
