package service

import (
	"context"
	"time"

	"github.com/aidar/project-tracker/internal/domain"
	"github.com/aidar/project-tracker/internal/permission"
	"github.com/aidar/project-tracker/internal/repository"
)

// StatsService handles statistics queries
type StatsService struct {
	statsRepo   repository.StatsRepository
	projectRepo repository.ProjectRepository
	now         func() time.Time
}

// NewStatsService creates a new StatsService
func NewStatsService(statsRepo repository.StatsRepository, projectRepo repository.ProjectRepository) *StatsService {
	return &StatsService{
		statsRepo:   statsRepo,
		projectRepo: projectRepo,
		now:         time.Now,
	}
}

// ProjectStats returns task and member counters of a project. Same access rule as project retrieval
func (s *StatsService) ProjectStats(ctx context.Context, actor *domain.User, projectID string) (*domain.ProjectStats, error) {
	if actor == nil {
		return nil, domain.ErrAuthenticationRequired
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	req := permission.Request{Actor: actor, Action: permission.ActionRetrieve, Project: project}
	if err := permission.Check(permission.ProjectPolicy(req.Action), req); err != nil {
		return nil, err
	}

	return s.statsRepo.ProjectStats(ctx, projectID, s.now())
}
