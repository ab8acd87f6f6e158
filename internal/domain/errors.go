package domain

import "errors"

// Доменные ошибки
var (
	// ErrNotFound возвращается когда ресурс не найден
	ErrNotFound = errors.New("resource not found")

	// ErrUserNotFound возвращается когда пользователь не найден
	ErrUserNotFound = errors.New("user not found")

	// ErrProjectNotFound возвращается когда проект не найден
	ErrProjectNotFound = errors.New("project not found")

	// ErrTaskNotFound возвращается когда задача не найдена
	ErrTaskNotFound = errors.New("task not found")

	// ErrUserExists возвращается при регистрации с занятым username или email
	ErrUserExists = errors.New("user with this username or email already exists")

	// ErrAuthenticationRequired возвращается когда запрос пришел без учетных данных
	ErrAuthenticationRequired = errors.New("authentication credentials were not provided")

	// ErrForbidden возвращается при отказе в доступе. Не раскрывает, какая проверка не прошла
	ErrForbidden = errors.New("permission denied")

	// ErrInvalidCredentials возвращается при неверной паре логин/пароль
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken возвращается когда JWT токен невалиден или отозван
	ErrInvalidToken = errors.New("invalid token")
)

// Сообщения об ошибках валидации, которые видит клиент
const (
	MsgProjectComposition  = "Project needs at least one manager and one developer."
	MsgAssigneeNotDev      = "Assigned user must be developer."
	MsgAssigneeNotMember   = "Assigned user must be project member."
	MsgDeveloperStatusOnly = "You can change only task status as developer."
	MsgPasswordsMismatch   = "Passwords do not match."
	MsgRoleImmutable       = "User role cannot be changed."
	MsgUnknownMember       = "Unknown user in members."
	MsgUnknownDeveloper    = "Unknown user in developer."
)

// ValidationError описывает нарушение инварианта или формата данных.
// Field пустой для ошибок, не относящихся к конкретному полю
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError создает ошибку валидации
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ErrorCode представляет коды ошибок API
type ErrorCode string

// Коды ошибок API
const (
	CodeNotFound         ErrorCode = "NOT_FOUND"         // Ресурс не найден
	CodeUserExists       ErrorCode = "USER_EXISTS"       // Пользователь уже существует
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED" // Нарушен инвариант
	CodeForbidden        ErrorCode = "FORBIDDEN"         // Нет прав
	CodeUnauthorized     ErrorCode = "UNAUTHORIZED"      // Нет учетных данных
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// MapErrorToCode преобразует доменные ошибки в коды ошибок API
func MapErrorToCode(err error) ErrorCode {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr), errors.Is(err, ErrInvalidCredentials):
		return CodeValidationFailed
	case errors.Is(err, ErrUserExists):
		return CodeUserExists
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrAuthenticationRequired), errors.Is(err, ErrInvalidToken):
		return CodeUnauthorized
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrProjectNotFound), errors.Is(err, ErrTaskNotFound):
		return CodeNotFound
	default:
		return CodeInternal
	}
}
