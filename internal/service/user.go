package service

import (
	"context"

	"github.com/aidar/project-tracker/internal/domain"
	"github.com/aidar/project-tracker/internal/permission"
	"github.com/aidar/project-tracker/internal/repository"
	"github.com/aidar/project-tracker/internal/validation"
)

// UserUpdateInput holds user fields sent by the client (nil = not sent)
type UserUpdateInput struct {
	Username  *string      `json:"username" validate:"omitempty,min=1,max=150"`
	FirstName *string      `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string      `json:"last_name" validate:"omitempty,max=150"`
	Email     *string      `json:"email" validate:"omitempty,email"`
	Role      *domain.Role `json:"user_type"`
	Password  *string      `json:"password" validate:"omitempty,min=8,maxbytes=72"`
}

// UserService handles business logic for users
type UserService struct {
	userRepo repository.UserRepository
	auth     *AuthService
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, auth *AuthService) *UserService {
	return &UserService{
		userRepo: userRepo,
		auth:     auth,
	}
}

// List returns a page of users. Managers only
func (s *UserService) List(ctx context.Context, actor *domain.User, page domain.Page) (*domain.List[*domain.User], error) {
	req := permission.Request{Actor: actor, Action: permission.ActionList}
	if err := permission.Check(permission.UserPolicy(req.Action), req); err != nil {
		return nil, err
	}

	users, total, err := s.userRepo.List(ctx, page.Normalize())
	if err != nil {
		return nil, err
	}

	return &domain.List[*domain.User]{Count: total, Results: users}, nil
}

// Get retrieves a user by ID
func (s *UserService) Get(ctx context.Context, actor *domain.User, userID string) (*domain.User, error) {
	return s.authorized(ctx, actor, permission.ActionRetrieve, userID)
}

// Update changes profile fields and password. The role cannot be changed
func (s *UserService) Update(ctx context.Context, actor *domain.User, userID string, in UserUpdateInput) (*domain.User, error) {
	target, err := s.authorized(ctx, actor, permission.ActionUpdate, userID)
	if err != nil {
		return nil, err
	}

	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	patch := domain.UserPatch{
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Role:      in.Role,
	}
	if err := validation.UserRoleUnchanged(*target, patch); err != nil {
		return nil, err
	}

	if in.Password != nil {
		hash, err := s.auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}

	updated := target.Apply(patch)
	if err := s.userRepo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	return &updated, nil
}

// Delete removes a user. Memberships go away, assigned tasks lose their developer
func (s *UserService) Delete(ctx context.Context, actor *domain.User, userID string) error {
	if _, err := s.authorized(ctx, actor, permission.ActionDelete, userID); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, userID)
}

func (s *UserService) authorized(ctx context.Context, actor *domain.User, action permission.Action, userID string) (*domain.User, error) {
	if actor == nil {
		return nil, domain.ErrAuthenticationRequired
	}

	target, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	req := permission.Request{Actor: actor, Action: action, Target: target}
	if err := permission.Check(permission.UserPolicy(action), req); err != nil {
		return nil, err
	}

	return target, nil
}
