package domain

import "time"

// Role представляет роль пользователя в системе
type Role string

// Возможные роли пользователя
const (
	RoleManager   Role = "Manager"   // Создает проекты и управляет задачами
	RoleDeveloper Role = "Developer" // Работает над назначенными задачами
)

// IsValid проверяет, что роль входит в допустимый набор
func (r Role) IsValid() bool {
	return r == RoleManager || r == RoleDeveloper
}

// User представляет зарегистрированного пользователя
type User struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Role         Role      `json:"user_type"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsManager возвращает true если пользователь менеджер
func (u *User) IsManager() bool {
	return u != nil && u.Role == RoleManager
}

// IsDeveloper возвращает true если пользователь разработчик
func (u *User) IsDeveloper() bool {
	return u != nil && u.Role == RoleDeveloper
}

// UserPatch содержит изменяемые поля пользователя (nil = поле не передано)
type UserPatch struct {
	Username     *string
	FirstName    *string
	LastName     *string
	Email        *string
	Role         *Role
	PasswordHash *string
}

// Apply возвращает копию пользователя с примененными изменениями
func (u User) Apply(p UserPatch) User {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	return u
}
