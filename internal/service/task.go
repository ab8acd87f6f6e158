package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/aidar/project-tracker/internal/domain"
	"github.com/aidar/project-tracker/internal/permission"
	"github.com/aidar/project-tracker/internal/repository"
	"github.com/aidar/project-tracker/internal/validation"
)

// CreateTaskInput holds data for a new task
type CreateTaskInput struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description" validate:"max=3000"`
	DueDate     *time.Time `json:"due_date"` // nil = now + 7 days
	DeveloperID string     `json:"developer" validate:"required"`
}

// TaskService handles business logic for tasks
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	now         func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		now:         time.Now,
	}
}

// List returns a page of the project's tasks to project members
func (s *TaskService) List(ctx context.Context, actor *domain.User, projectID string, page domain.Page) (*domain.List[*domain.Task], error) {
	parent, err := s.parent(ctx, actor, permission.ActionList, projectID)
	if err != nil {
		return nil, err
	}

	req := permission.Request{Actor: actor, Action: permission.ActionList, Parent: parent}
	if err := permission.Check(permission.TaskPolicy(req.Action), req); err != nil {
		return nil, err
	}

	tasks, total, err := s.taskRepo.ListByProject(ctx, projectID, page.Normalize())
	if err != nil {
		return nil, err
	}

	return &domain.List[*domain.Task]{Count: total, Results: tasks}, nil
}

// Create creates a task assigned to a developer who is a member of the project
func (s *TaskService) Create(ctx context.Context, actor *domain.User, projectID string, in CreateTaskInput) (*domain.Task, error) {
	parent, err := s.parent(ctx, actor, permission.ActionCreate, projectID)
	if err != nil {
		return nil, err
	}

	req := permission.Request{Actor: actor, Action: permission.ActionCreate, Parent: parent}
	if err := permission.Check(permission.TaskPolicy(req.Action), req); err != nil {
		return nil, err
	}

	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	developer, err := s.assignee(ctx, in.DeveloperID)
	if err != nil {
		return nil, err
	}
	if err := validation.TaskAssignment(developer, parent); err != nil {
		return nil, err
	}

	now := s.now()
	dueDate := domain.DefaultDueDate(now)
	if in.DueDate != nil {
		dueDate = *in.DueDate
	}

	task := &domain.Task{
		TaskID:      uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		DueDate:     dueDate,
		Status:      domain.TaskToDo,
		DeveloperID: &developer.UserID,
		ProjectID:   parent.ProjectID,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.NewValidationError(domain.TaskFieldDeveloper, domain.MsgUnknownDeveloper)
		}
		return nil, err
	}

	return task, nil
}

// Get retrieves a task of the project
func (s *TaskService) Get(ctx context.Context, actor *domain.User, projectID, taskID string) (*domain.Task, error) {
	parent, err := s.parent(ctx, actor, permission.ActionRetrieve, projectID)
	if err != nil {
		return nil, err
	}

	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeTask(actor, permission.ActionRetrieve, parent, task); err != nil {
		return nil, err
	}

	return task, nil
}

// Update applies a partial update. Authorization, field, field-lock and assignment checks run against
// the locked current state, so a rejected update writes nothing
func (s *TaskService) Update(ctx context.Context, actor *domain.User, projectID, taskID string, patch domain.TaskPatch) (*domain.Task, error) {
	parent, err := s.parent(ctx, actor, permission.ActionUpdate, projectID)
	if err != nil {
		return nil, err
	}

	return s.taskRepo.Update(ctx, taskID, func(current *domain.Task) (*domain.Task, error) {
		if err := s.authorizeTask(actor, permission.ActionUpdate, parent, current); err != nil {
			return nil, err
		}

		if err := validation.Struct(patch); err != nil {
			return nil, err
		}

		if patch.Status != nil {
			if err := validation.TaskStatus(*patch.Status); err != nil {
				return nil, err
			}
		}

		if err := validation.TaskFieldLock(actor, *current, patch); err != nil {
			return nil, err
		}

		// Reassignment by a manager: the new developer must be a developer member of the project
		if patch.Developer != nil && *patch.Developer != nil && !current.IsAssignedTo(**patch.Developer) {
			developer, err := s.assignee(ctx, **patch.Developer)
			if err != nil {
				return nil, err
			}
			if err := validation.TaskAssignment(developer, parent); err != nil {
				return nil, err
			}
		}

		updated := current.Apply(patch)
		return &updated, nil
	})
}

// Delete removes a task of the project
func (s *TaskService) Delete(ctx context.Context, actor *domain.User, projectID, taskID string) error {
	parent, err := s.parent(ctx, actor, permission.ActionDelete, projectID)
	if err != nil {
		return err
	}

	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}

	if err := s.authorizeTask(actor, permission.ActionDelete, parent, task); err != nil {
		return err
	}

	return s.taskRepo.Delete(ctx, taskID)
}

// parent resolves the project from the request path and checks membership before the task
// is loaded. An unknown project fails the membership check instead of returning not found
func (s *TaskService) parent(ctx context.Context, actor *domain.User, action permission.Action, projectID string) (*domain.Project, error) {
	if actor == nil {
		return nil, domain.ErrAuthenticationRequired
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil && !errors.Is(err, domain.ErrProjectNotFound) {
		return nil, err
	}

	req := permission.Request{Actor: actor, Action: action, Parent: project}
	if err := permission.Check(permission.IsTaskProjectMember, req); err != nil {
		return nil, err
	}

	return project, nil
}

func (s *TaskService) authorizeTask(actor *domain.User, action permission.Action, parent *domain.Project, task *domain.Task) error {
	if task.ProjectID != parent.ProjectID {
		return domain.ErrTaskNotFound
	}

	req := permission.Request{Actor: actor, Action: action, Parent: parent, Task: task}
	return permission.Check(permission.TaskPolicy(action), req)
}

func (s *TaskService) assignee(ctx context.Context, userID string) (*domain.User, error) {
	developer, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.NewValidationError(domain.TaskFieldDeveloper, domain.MsgUnknownDeveloper)
		}
		return nil, err
	}
	return developer, nil
}
