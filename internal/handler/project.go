package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aidar/project-tracker/internal/domain"
	"github.com/aidar/project-tracker/internal/middleware"
	"github.com/aidar/project-tracker/internal/service"
)

// ProjectHandler обрабатывает эндпоинты проектов
type ProjectHandler struct {
	projectService *service.ProjectService
}

// NewProjectHandler создает новый ProjectHandler
func NewProjectHandler(projectService *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// CreateProjectRequest представляет тело запроса на создание проекта
type CreateProjectRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Members     []string `json:"members"`
}

// UpdateProjectRequest представляет тело запроса на изменение проекта.
// Непереданные поля не меняются, переданный members заменяет состав целиком
type UpdateProjectRequest struct {
	Title       *string               `json:"title"`
	Description *string               `json:"description"`
	Status      *domain.ProjectStatus `json:"status"`
	Members     []string              `json:"members"`
}

// List обрабатывает GET /api/projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromRequest(r)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	projects, err := h.projectService.List(r.Context(), middleware.ActorFromContext(r.Context()), page)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, projects)
}

// Create обрабатывает POST /api/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	project, err := h.projectService.Create(r.Context(), middleware.ActorFromContext(r.Context()), service.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Members:     req.Members,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, project)
}

// Get обрабатывает GET /api/projects/{projectID}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.projectService.Get(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "projectID"))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, project)
}

// Update обрабатывает PUT и PATCH /api/projects/{projectID}
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	project, err := h.projectService.Update(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "projectID"), domain.ProjectPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Members:     req.Members,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, project)
}

// Delete обрабатывает DELETE /api/projects/{projectID}
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.projectService.Delete(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "projectID")); err != nil {
		HandleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
