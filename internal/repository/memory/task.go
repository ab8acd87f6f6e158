package memory

import (
	"context"
	"sort"
	"time"

	"github.com/aidar/project-tracker/internal/domain"
	"github.com/aidar/project-tracker/internal/repository"
)

// TaskRepository реализует repository.TaskRepository в памяти
type TaskRepository struct {
	s *Store
}

// Create создает задачу
func (r *TaskRepository) Create(_ context.Context, task *domain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[task.ProjectID]; !ok {
		return domain.ErrProjectNotFound
	}
	if task.DeveloperID != nil {
		if _, ok := r.s.users[*task.DeveloperID]; !ok {
			return domain.ErrUserNotFound
		}
	}

	task.CreatedAt = time.Now().UTC()
	r.s.nextSeq++
	r.s.seq[task.TaskID] = r.s.nextSeq
	r.s.tasks[task.TaskID] = *cloneTask(*task)
	return nil
}

// GetByID получает задачу по ID
func (r *TaskRepository) GetByID(_ context.Context, taskID string) (*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	task, ok := r.s.tasks[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(task), nil
}

// ListByProject возвращает страницу задач проекта в порядке создания
func (r *TaskRepository) ListByProject(_ context.Context, projectID string, page domain.Page) ([]*domain.Task, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := r.s.projectTasks(projectID)
	tasks := make([]*domain.Task, 0, len(all))
	for _, t := range all {
		tasks = append(tasks, cloneTask(t))
	}
	return paginate(tasks, page), len(tasks), nil
}

// IDsByProject возвращает ID всех задач проекта в порядке создания
func (r *TaskRepository) IDsByProject(_ context.Context, projectID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := []string{}
	for _, t := range r.s.projectTasks(projectID) {
		ids = append(ids, t.TaskID)
	}
	return ids, nil
}

// Update читает задачу, вызывает fn и записывает результат.
// fn вызывается без удержания блокировки данных, поэтому может читать другие репозитории
func (r *TaskRepository) Update(ctx context.Context, taskID string, fn repository.TaskUpdateFunc) (*domain.Task, error) {
	r.s.taskWrite.Lock()
	defer r.s.taskWrite.Unlock()

	current, err := r.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	updated, err := fn(current)
	if err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[taskID]; !ok {
		return nil, domain.ErrTaskNotFound
	}
	if updated.DeveloperID != nil {
		if _, ok := r.s.users[*updated.DeveloperID]; !ok {
			return nil, domain.ErrUserNotFound
		}
	}
	r.s.tasks[taskID] = *cloneTask(*updated)
	return updated, nil
}

// Delete удаляет задачу
func (r *TaskRepository) Delete(_ context.Context, taskID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[taskID]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.s.tasks, taskID)
	delete(r.s.seq, taskID)
	return nil
}

// ListAssignedPending возвращает незавершенные задачи с назначенным разработчиком
func (r *TaskRepository) ListAssignedPending(_ context.Context) ([]*domain.AssignedTask, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var assigned []*domain.AssignedTask
	for _, t := range r.s.tasks {
		if t.IsDone() || t.DeveloperID == nil {
			continue
		}
		dev, ok := r.s.users[*t.DeveloperID]
		if !ok {
			continue
		}
		assigned = append(assigned, &domain.AssignedTask{Task: *cloneTask(t), Developer: dev})
	}
	sort.Slice(assigned, func(i, j int) bool {
		a, b := assigned[i].Task, assigned[j].Task
		if a.DueDate.Equal(b.DueDate) {
			return a.TaskID < b.TaskID
		}
		return a.DueDate.Before(b.DueDate)
	})
	return assigned, nil
}
