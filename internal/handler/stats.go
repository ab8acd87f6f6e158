package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aidar/project-tracker/internal/middleware"
	"github.com/aidar/project-tracker/internal/service"
)

// StatsHandler обрабатывает эндпоинты статистики
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler создает новый StatsHandler
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// GetProjectStats обрабатывает GET /api/projects/{projectID}/stats
func (h *StatsHandler) GetProjectStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.ProjectStats(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "projectID"))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, stats)
}
