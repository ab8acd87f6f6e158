package memory

import (
	"context"
	"time"

	"github.com/aidar/project-tracker/internal/domain"
)

// StatsRepository реализует repository.StatsRepository в памяти
type StatsRepository struct {
	s *Store
}

// ProjectStats считает задачи по статусам и участников по ролям
func (r *StatsRepository) ProjectStats(_ context.Context, projectID string, now time.Time) (*domain.ProjectStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stats := &domain.ProjectStats{
		ProjectID: projectID,
		TasksByStatus: map[domain.TaskStatus]int{
			domain.TaskToDo:       0,
			domain.TaskInProgress: 0,
			domain.TaskDone:       0,
		},
	}

	for _, t := range r.s.projectTasks(projectID) {
		stats.TasksByStatus[t.Status]++
		stats.TotalTasks++
		if !t.IsDone() && t.DueDate.Before(now) {
			stats.OverdueTasks++
		}
		if t.DeveloperID == nil {
			stats.UnassignedTasks++
		}
	}

	for _, m := range r.s.projects[projectID].Members {
		user := r.s.users[m]
		switch {
		case user.IsManager():
			stats.Managers++
		case user.IsDeveloper():
			stats.Developers++
		}
	}

	return stats, nil
}
