package memory

import (
	"context"
	"sort"
	"time"

	"github.com/aidar/project-tracker/internal/domain"
)

// UserRepository реализует repository.UserRepository в памяти
type UserRepository struct {
	s *Store
}

// Create создает пользователя
func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.UserID]; ok {
		return domain.ErrUserExists
	}
	if r.s.taken(user.Username, user.Email, "") {
		return domain.ErrUserExists
	}

	user.CreatedAt = time.Now().UTC()
	r.s.users[user.UserID] = *user
	return nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(_ context.Context, userID string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

// GetByUsername получает пользователя по username
func (r *UserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.users {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// GetByIDs возвращает найденных пользователей
func (r *UserRepository) GetByIDs(_ context.Context, userIDs []string) ([]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := []*domain.User{}
	for _, id := range domain.UniqueIDs(userIDs) {
		if user, ok := r.s.users[id]; ok {
			users = append(users, &user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })
	return users, nil
}

// List возвращает страницу пользователей
func (r *UserRepository) List(_ context.Context, page domain.Page) ([]*domain.User, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]*domain.User, 0, len(r.s.users))
	for _, user := range r.s.users {
		users = append(users, &user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].UserID < users[j].UserID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	return paginate(users, page), len(users), nil
}

// Update сохраняет изменяемые поля пользователя
func (r *UserRepository) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.users[user.UserID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if r.s.taken(user.Username, user.Email, user.UserID) {
		return domain.ErrUserExists
	}

	current.Username = user.Username
	current.FirstName = user.FirstName
	current.LastName = user.LastName
	current.Email = user.Email
	current.PasswordHash = user.PasswordHash
	r.s.users[user.UserID] = current
	return nil
}

// Delete удаляет пользователя, его членство в проектах и снимает его с задач
func (r *UserRepository) Delete(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.users, userID)

	for id, p := range r.s.projects {
		members := make([]string, 0, len(p.Members))
		for _, m := range p.Members {
			if m != userID {
				members = append(members, m)
			}
		}
		p.Members = members
		r.s.projects[id] = p
	}

	for id, t := range r.s.tasks {
		if t.IsAssignedTo(userID) {
			t.DeveloperID = nil
			r.s.tasks[id] = t
		}
	}

	return nil
}

// taken проверяет занятость username или email другим пользователем. Вызывается под блокировкой
func (s *Store) taken(username, email, exceptID string) bool {
	for id, u := range s.users {
		if id == exceptID {
			continue
		}
		if u.Username == username || u.Email == email {
			return true
		}
	}
	return false
}
