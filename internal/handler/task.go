package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aidar/project-tracker/internal/domain"
	"github.com/aidar/project-tracker/internal/middleware"
	"github.com/aidar/project-tracker/internal/service"
)

// TaskHandler обрабатывает эндпоинты задач проекта
type TaskHandler struct {
	taskService *service.TaskService
}

// NewTaskHandler создает новый TaskHandler
func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateTaskRequest представляет тело запроса на создание задачи
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Developer   string     `json:"developer"`
}

// UpdateTaskRequest представляет тело запроса на изменение задачи.
// developer: отсутствует = не меняется, null = снять разработчика
type UpdateTaskRequest struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	DueDate     *time.Time         `json:"due_date"`
	Status      *domain.TaskStatus `json:"status"`
	Developer   json.RawMessage    `json:"developer"`
}

func (req UpdateTaskRequest) patch() (domain.TaskPatch, error) {
	p := domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      req.Status,
	}

	if req.Developer != nil {
		var developer *string
		if !bytes.Equal(bytes.TrimSpace(req.Developer), []byte("null")) {
			var id string
			if err := json.Unmarshal(req.Developer, &id); err != nil {
				return p, domain.NewValidationError(domain.TaskFieldDeveloper, "Incorrect type. Expected pk value.")
			}
			developer = &id
		}
		p.Developer = &developer
	}

	return p, nil
}

// List обрабатывает GET /api/projects/{projectID}/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromRequest(r)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	tasks, err := h.taskService.List(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "projectID"), page)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, tasks)
}

// Create обрабатывает POST /api/projects/{projectID}/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.taskService.Create(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "projectID"), service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		DeveloperID: req.Developer,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, task)
}

// Get обрабатывает GET /api/projects/{projectID}/tasks/{taskID}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.taskService.Get(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "projectID"), chi.URLParam(r, "taskID"))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, task)
}

// Update обрабатывает PUT и PATCH /api/projects/{projectID}/tasks/{taskID}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch, err := req.patch()
	if err != nil {
		HandleError(w, r, err)
		return
	}

	task, err := h.taskService.Update(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "projectID"), chi.URLParam(r, "taskID"), patch)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, task)
}

// Delete обрабатывает DELETE /api/projects/{projectID}/tasks/{taskID}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.taskService.Delete(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "projectID"), chi.URLParam(r, "taskID")); err != nil {
		HandleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
