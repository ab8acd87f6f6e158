package repository

import (
	"context"
	"time"

	"github.com/aidar/project-tracker/internal/domain"
)

// UserRepository определяет методы для работы с данными пользователей
type UserRepository interface {
	// Create создает пользователя. Возвращает ErrUserExists при занятом username или email
	Create(ctx context.Context, user *domain.User) error

	// GetByID получает пользователя по ID
	GetByID(ctx context.Context, userID string) (*domain.User, error)

	// GetByUsername получает пользователя по username
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByIDs возвращает найденных пользователей; отсутствующие ID пропускаются
	GetByIDs(ctx context.Context, userIDs []string) ([]*domain.User, error)

	// List возвращает страницу пользователей и их общее количество
	List(ctx context.Context, page domain.Page) ([]*domain.User, int, error)

	// Update сохраняет изменяемые поля пользователя
	Update(ctx context.Context, user *domain.User) error

	// Delete удаляет пользователя, его членство в проектах и снимает его с задач
	Delete(ctx context.Context, userID string) error
}

// ProjectRepository определяет методы для работы с данными проектов
type ProjectRepository interface {
	// Create создает проект вместе с участниками в одной транзакции
	Create(ctx context.Context, project *domain.Project) error

	// GetByID получает проект с участниками
	GetByID(ctx context.Context, projectID string) (*domain.Project, error)

	// List возвращает страницу проектов и их общее количество
	List(ctx context.Context, page domain.Page) ([]*domain.Project, int, error)

	// Update сохраняет поля проекта и атомарно заменяет состав участников
	Update(ctx context.Context, project *domain.Project) error

	// Delete удаляет проект вместе со всеми задачами
	Delete(ctx context.Context, projectID string) error
}

// TaskUpdateFunc получает текущее состояние задачи и возвращает новое.
// Ошибка отменяет обновление без записи
type TaskUpdateFunc func(current *domain.Task) (*domain.Task, error)

// TaskRepository определяет методы для работы с данными задач
type TaskRepository interface {
	// Create создает задачу
	Create(ctx context.Context, task *domain.Task) error

	// GetByID получает задачу по ID
	GetByID(ctx context.Context, taskID string) (*domain.Task, error)

	// ListByProject возвращает страницу задач проекта в порядке создания и их общее количество
	ListByProject(ctx context.Context, projectID string, page domain.Page) ([]*domain.Task, int, error)

	// IDsByProject возвращает ID всех задач проекта в порядке создания
	IDsByProject(ctx context.Context, projectID string) ([]string, error)

	// Update атомарно читает задачу, вызывает fn и записывает результат.
	// Конкурентные обновления одной задачи выполняются последовательно
	Update(ctx context.Context, taskID string, fn TaskUpdateFunc) (*domain.Task, error)

	// Delete удаляет задачу
	Delete(ctx context.Context, taskID string) error

	// ListAssignedPending возвращает незавершенные задачи с назначенным разработчиком
	ListAssignedPending(ctx context.Context) ([]*domain.AssignedTask, error)
}

// StatsRepository определяет запросы для сводной статистики
type StatsRepository interface {
	// ProjectStats считает задачи и участников проекта на момент now
	ProjectStats(ctx context.Context, projectID string, now time.Time) (*domain.ProjectStats, error)
}
