package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aidar/project-tracker/internal/domain"
	"github.com/aidar/project-tracker/internal/middleware"
	"github.com/aidar/project-tracker/internal/service"
)

// UserHandler обрабатывает эндпоинты пользователей
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler создает новый UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// UpdateUserRequest представляет тело запроса на изменение пользователя.
// Непереданные поля не меняются
type UpdateUserRequest struct {
	Username  *string      `json:"username"`
	FirstName *string      `json:"first_name"`
	LastName  *string      `json:"last_name"`
	Email     *string      `json:"email"`
	Role      *domain.Role `json:"user_type"`
	Password  *string      `json:"password"`
}

// List обрабатывает GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromRequest(r)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	users, err := h.userService.List(r.Context(), middleware.ActorFromContext(r.Context()), page)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, users)
}

// Get обрабатывает GET /api/users/{userID}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.Get(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "userID"))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, user)
}

// Update обрабатывает PUT и PATCH /api/users/{userID}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.Update(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "userID"), service.UserUpdateInput{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      req.Role,
		Password:  req.Password,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, user)
}

// Delete обрабатывает DELETE /api/users/{userID}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.Delete(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "userID")); err != nil {
		HandleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
