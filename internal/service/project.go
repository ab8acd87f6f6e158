package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/aidar/project-tracker/internal/domain"
	"github.com/aidar/project-tracker/internal/permission"
	"github.com/aidar/project-tracker/internal/repository"
	"github.com/aidar/project-tracker/internal/validation"
)

// CreateProjectInput holds data for a new project
type CreateProjectInput struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description" validate:"max=3000"`
	Members     []string `json:"members"`
}

// ProjectService handles business logic for projects
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	taskRepo    repository.TaskRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	taskRepo repository.TaskRepository,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		taskRepo:    taskRepo,
	}
}

// List returns a page of all projects to any authenticated user
func (s *ProjectService) List(ctx context.Context, actor *domain.User, page domain.Page) (*domain.List[*domain.Project], error) {
	req := permission.Request{Actor: actor, Action: permission.ActionList}
	if err := permission.Check(permission.ProjectPolicy(req.Action), req); err != nil {
		return nil, err
	}

	projects, total, err := s.projectRepo.List(ctx, page.Normalize())
	if err != nil {
		return nil, err
	}

	return &domain.List[*domain.Project]{Count: total, Results: projects}, nil
}

// Create creates an opened project. Members must include at least one manager and one developer
func (s *ProjectService) Create(ctx context.Context, actor *domain.User, in CreateProjectInput) (*domain.Project, error) {
	req := permission.Request{Actor: actor, Action: permission.ActionCreate}
	if err := permission.Check(permission.ProjectPolicy(req.Action), req); err != nil {
		return nil, err
	}

	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	members, err := s.resolveMembers(ctx, in.Members)
	if err != nil {
		return nil, err
	}

	if err := validation.ProjectComposition(members); err != nil {
		return nil, err
	}

	project := &domain.Project{
		ProjectID:   uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.ProjectOpened,
		Members:     domain.UniqueIDs(in.Members),
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, memberErr(err)
	}

	return project, nil
}

// Get retrieves a project with the ids of its tasks
func (s *ProjectService) Get(ctx context.Context, actor *domain.User, projectID string) (*domain.ProjectDetail, error) {
	project, err := s.authorized(ctx, actor, permission.ActionRetrieve, projectID)
	if err != nil {
		return nil, err
	}

	taskIDs, err := s.taskRepo.IDsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &domain.ProjectDetail{Project: *project, Tasks: taskIDs}, nil
}

// Update changes project fields and replaces the member set
func (s *ProjectService) Update(ctx context.Context, actor *domain.User, projectID string, patch domain.ProjectPatch) (*domain.ProjectDetail, error) {
	project, err := s.authorized(ctx, actor, permission.ActionUpdate, projectID)
	if err != nil {
		return nil, err
	}

	if err := validation.Struct(patch); err != nil {
		return nil, err
	}

	if patch.Status != nil {
		if err := validation.ProjectStatus(*patch.Status); err != nil {
			return nil, err
		}
	}
	if patch.Members != nil {
		if _, err := s.resolveMembers(ctx, patch.Members); err != nil {
			return nil, err
		}
	}

	updated := project.Apply(patch)
	if err := s.projectRepo.Update(ctx, &updated); err != nil {
		return nil, memberErr(err)
	}

	taskIDs, err := s.taskRepo.IDsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &domain.ProjectDetail{Project: updated, Tasks: taskIDs}, nil
}

// Delete removes a project together with its tasks
func (s *ProjectService) Delete(ctx context.Context, actor *domain.User, projectID string) error {
	if _, err := s.authorized(ctx, actor, permission.ActionDelete, projectID); err != nil {
		return err
	}
	return s.projectRepo.Delete(ctx, projectID)
}

func (s *ProjectService) authorized(ctx context.Context, actor *domain.User, action permission.Action, projectID string) (*domain.Project, error) {
	if actor == nil {
		return nil, domain.ErrAuthenticationRequired
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	req := permission.Request{Actor: actor, Action: action, Project: project}
	if err := permission.Check(permission.ProjectPolicy(action), req); err != nil {
		return nil, err
	}

	return project, nil
}

// resolveMembers loads every member and fails if any id is unknown
func (s *ProjectService) resolveMembers(ctx context.Context, ids []string) ([]*domain.User, error) {
	ids = domain.UniqueIDs(ids)
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(users) != len(ids) {
		return nil, domain.NewValidationError("members", domain.MsgUnknownMember)
	}
	return users, nil
}

// memberErr turns a member deleted between validation and write into a validation error
func memberErr(err error) error {
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.NewValidationError("members", domain.MsgUnknownMember)
	}
	return err
}
