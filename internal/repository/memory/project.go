package memory

import (
	"context"
	"sort"
	"time"

	"github.com/aidar/project-tracker/internal/domain"
)

// ProjectRepository реализует repository.ProjectRepository в памяти
type ProjectRepository struct {
	s *Store
}

// Create создает проект вместе с участниками
func (r *ProjectRepository) Create(_ context.Context, project *domain.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, m := range project.Members {
		if _, ok := r.s.users[m]; !ok {
			return domain.ErrUserNotFound
		}
	}

	project.CreatedAt = time.Now().UTC()
	r.s.projects[project.ProjectID] = *cloneProject(*project)
	return nil
}

// GetByID получает проект с участниками
func (r *ProjectRepository) GetByID(_ context.Context, projectID string) (*domain.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	project, ok := r.s.projects[projectID]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return cloneProject(project), nil
}

// List возвращает страницу проектов
func (r *ProjectRepository) List(_ context.Context, page domain.Page) ([]*domain.Project, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	projects := make([]*domain.Project, 0, len(r.s.projects))
	for _, p := range r.s.projects {
		projects = append(projects, cloneProject(p))
	}
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].ProjectID < projects[j].ProjectID
		}
		return projects[i].CreatedAt.Before(projects[j].CreatedAt)
	})

	return paginate(projects, page), len(projects), nil
}

// Update сохраняет поля проекта и заменяет состав участников
func (r *ProjectRepository) Update(_ context.Context, project *domain.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.projects[project.ProjectID]
	if !ok {
		return domain.ErrProjectNotFound
	}
	for _, m := range project.Members {
		if _, ok := r.s.users[m]; !ok {
			return domain.ErrUserNotFound
		}
	}

	current.Title = project.Title
	current.Description = project.Description
	current.Status = project.Status
	current.Members = append([]string{}, project.Members...)
	r.s.projects[project.ProjectID] = current
	return nil
}

// Delete удаляет проект вместе с задачами
func (r *ProjectRepository) Delete(_ context.Context, projectID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[projectID]; !ok {
		return domain.ErrProjectNotFound
	}
	delete(r.s.projects, projectID)

	for id, t := range r.s.tasks {
		if t.ProjectID == projectID {
			delete(r.s.tasks, id)
			delete(r.s.seq, id)
		}
	}
	return nil
}
