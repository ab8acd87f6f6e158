package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/project-tracker/internal/domain"
	"github.com/aidar/project-tracker/internal/repository"
)

const taskColumns = `task_id, title, description, due_date, status, developer_id, project_id, created_at`

// TaskRepository реализует repository.TaskRepository для PostgreSQL
type TaskRepository struct {
	db *pgxpool.Pool
}

// NewTaskRepository создает новый экземпляр TaskRepository
func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.TaskID,
		&task.Title,
		&task.Description,
		&task.DueDate,
		&task.Status,
		&task.DeveloperID,
		&task.ProjectID,
		&task.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Create создает задачу
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (task_id, project_id, title, description, due_date, status, developer_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		task.TaskID, task.ProjectID, task.Title, task.Description, task.DueDate, task.Status, task.DeveloperID,
	).Scan(&task.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			if pgErr.ConstraintName == "tasks_project_id_fkey" {
				return domain.ErrProjectNotFound
			}
			return domain.ErrUserNotFound
		}
		return err
	}

	return nil
}

// GetByID получает задачу по ID
func (r *TaskRepository) GetByID(ctx context.Context, taskID string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE task_id = $1`

	task, err := scanTask(r.db.QueryRow(ctx, query, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	return task, nil
}

// ListByProject возвращает страницу задач проекта в порядке создания
func (r *TaskRepository) ListByProject(ctx context.Context, projectID string, page domain.Page) ([]*domain.Task, int, error) {
	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE project_id = $1`, projectID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = $1 ORDER BY seq LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, projectID, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// IDsByProject возвращает ID всех задач проекта в порядке создания
func (r *TaskRepository) IDsByProject(ctx context.Context, projectID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT task_id FROM tasks WHERE project_id = $1 ORDER BY seq`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// Update блокирует строку задачи (SELECT ... FOR UPDATE), вызывает fn и записывает результат
// в той же транзакции. Ошибка fn откатывает транзакцию
func (r *TaskRepository) Update(ctx context.Context, taskID string, fn repository.TaskUpdateFunc) (*domain.Task, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE task_id = $1 FOR UPDATE`

	current, err := scanTask(tx.QueryRow(ctx, query, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	updated, err := fn(current)
	if err != nil {
		return nil, err
	}

	updateQuery := `
		UPDATE tasks
		SET title = $1, description = $2, due_date = $3, status = $4, developer_id = $5, updated_at = NOW()
		WHERE task_id = $6
	`

	_, err = tx.Exec(ctx, updateQuery,
		updated.Title, updated.Description, updated.DueDate, updated.Status, updated.DeveloperID, taskID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete удаляет задачу
func (r *TaskRepository) Delete(ctx context.Context, taskID string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE task_id = $1`, taskID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}

	return nil
}

// ListAssignedPending возвращает незавершенные задачи с назначенным разработчиком
func (r *TaskRepository) ListAssignedPending(ctx context.Context) ([]*domain.AssignedTask, error) {
	query := `
		SELECT t.task_id, t.title, t.description, t.due_date, t.status, t.developer_id, t.project_id, t.created_at,
		       u.user_id, u.username, u.email, u.user_type
		FROM tasks t
		INNER JOIN users u ON u.user_id = t.developer_id
		WHERE t.status <> $1
		ORDER BY t.due_date, t.task_id
	`

	rows, err := r.db.Query(ctx, query, domain.TaskDone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assigned []*domain.AssignedTask
	for rows.Next() {
		var a domain.AssignedTask
		err := rows.Scan(
			&a.Task.TaskID,
			&a.Task.Title,
			&a.Task.Description,
			&a.Task.DueDate,
			&a.Task.Status,
			&a.Task.DeveloperID,
			&a.Task.ProjectID,
			&a.Task.CreatedAt,
			&a.Developer.UserID,
			&a.Developer.Username,
			&a.Developer.Email,
			&a.Developer.Role,
		)
		if err != nil {
			return nil, err
		}
		assigned = append(assigned, &a)
	}

	return assigned, rows.Err()
}
