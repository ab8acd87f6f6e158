package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/project-tracker/internal/domain"
)

// ProjectRepository реализует repository.ProjectRepository для PostgreSQL
type ProjectRepository struct {
	db *pgxpool.Pool
}

// NewProjectRepository создает новый экземпляр ProjectRepository
func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create создает проект вместе с участниками
func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx) // Ignore error as it will fail if transaction was committed
	}()

	query := `
		INSERT INTO projects (project_id, title, description, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err = tx.QueryRow(ctx, query, project.ProjectID, project.Title, project.Description, project.Status).
		Scan(&project.CreatedAt)
	if err != nil {
		return err
	}

	if err := insertMembers(ctx, tx, project.ProjectID, project.Members); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetByID получает проект с участниками
func (r *ProjectRepository) GetByID(ctx context.Context, projectID string) (*domain.Project, error) {
	query := `
		SELECT project_id, title, description, status, created_at
		FROM projects
		WHERE project_id = $1
	`

	var project domain.Project
	err := r.db.QueryRow(ctx, query, projectID).Scan(
		&project.ProjectID,
		&project.Title,
		&project.Description,
		&project.Status,
		&project.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}

	members, err := r.members(ctx, projectID)
	if err != nil {
		return nil, err
	}
	project.Members = members

	return &project, nil
}

// List возвращает страницу проектов и их общее количество
func (r *ProjectRepository) List(ctx context.Context, page domain.Page) ([]*domain.Project, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM projects`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT p.project_id, p.title, p.description, p.status, p.created_at,
		       COALESCE(array_agg(pm.user_id ORDER BY pm.added_at, pm.user_id)
		                FILTER (WHERE pm.user_id IS NOT NULL), '{}')
		FROM projects p
		LEFT JOIN project_members pm ON pm.project_id = p.project_id
		GROUP BY p.project_id
		ORDER BY p.created_at, p.project_id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	projects := []*domain.Project{}
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ProjectID, &p.Title, &p.Description, &p.Status, &p.CreatedAt, &p.Members); err != nil {
			return nil, 0, err
		}
		projects = append(projects, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// Update сохраняет поля проекта и заменяет состав участников в одной транзакции
func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query := `
		UPDATE projects
		SET title = $1, description = $2, status = $3, updated_at = NOW()
		WHERE project_id = $4
	`

	result, err := tx.Exec(ctx, query, project.Title, project.Description, project.Status, project.ProjectID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}

	// Удаляем только выбывших, чтобы сохранить порядок добавления оставшихся
	_, err = tx.Exec(ctx,
		`DELETE FROM project_members WHERE project_id = $1 AND NOT (user_id = ANY($2))`,
		project.ProjectID, project.Members,
	)
	if err != nil {
		return err
	}

	if err := insertMembers(ctx, tx, project.ProjectID, project.Members); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Delete удаляет проект. Задачи и членство удаляются каскадно
func (r *ProjectRepository) Delete(ctx context.Context, projectID string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM projects WHERE project_id = $1`, projectID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}

	return nil
}

func (r *ProjectRepository) members(ctx context.Context, projectID string) ([]string, error) {
	query := `
		SELECT user_id
		FROM project_members
		WHERE project_id = $1
		ORDER BY added_at, user_id
	`

	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []string{}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		members = append(members, userID)
	}

	return members, rows.Err()
}

func insertMembers(ctx context.Context, tx pgx.Tx, projectID string, members []string) error {
	query := `
		INSERT INTO project_members (project_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (project_id, user_id) DO NOTHING
	`

	for _, userID := range members {
		if _, err := tx.Exec(ctx, query, projectID, userID); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
				return domain.ErrUserNotFound
			}
			return err
		}
	}

	return nil
}
