package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/project-tracker/internal/domain"
)

// StatsRepository реализует repository.StatsRepository для PostgreSQL
type StatsRepository struct {
	db *pgxpool.Pool
}

// NewStatsRepository создает новый экземпляр StatsRepository
func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

// ProjectStats считает задачи по статусам и участников по ролям
func (r *StatsRepository) ProjectStats(ctx context.Context, projectID string, now time.Time) (*domain.ProjectStats, error) {
	stats := &domain.ProjectStats{
		ProjectID: projectID,
		TasksByStatus: map[domain.TaskStatus]int{
			domain.TaskToDo:       0,
			domain.TaskInProgress: 0,
			domain.TaskDone:       0,
		},
	}

	statusQuery := `
		SELECT status, COUNT(*)
		FROM tasks
		WHERE project_id = $1
		GROUP BY status
	`

	rows, err := r.db.Query(ctx, statusQuery, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status domain.TaskStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.TasksByStatus[status] = count
		stats.TotalTasks += count
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	summaryQuery := `
		SELECT
			COUNT(CASE WHEN t.status <> 'Done' AND t.due_date < $2 THEN 1 END) AS overdue_tasks,
			COUNT(CASE WHEN t.developer_id IS NULL THEN 1 END) AS unassigned_tasks,
			(SELECT COUNT(*) FROM project_members pm JOIN users u ON u.user_id = pm.user_id
			  WHERE pm.project_id = $1 AND u.user_type = 'Manager') AS managers,
			(SELECT COUNT(*) FROM project_members pm JOIN users u ON u.user_id = pm.user_id
			  WHERE pm.project_id = $1 AND u.user_type = 'Developer') AS developers
		FROM tasks t
		WHERE t.project_id = $1
	`

	if err := r.db.QueryRow(ctx, summaryQuery, projectID, now).Scan(
		&stats.OverdueTasks,
		&stats.UnassignedTasks,
		&stats.Managers,
		&stats.Developers,
	); err != nil {
		return nil, err
	}

	return stats, nil
}
