// Package permission содержит правила доступа к проектам, задачам и пользователям.
//
// Каждое правило это чистая функция от Request. Правила комбинируются через
// All (логическое И) и Any (логическое ИЛИ), вычисляются слева направо
// с коротким замыканием и не имеют побочных эффектов.
package permission

import "github.com/aidar/project-tracker/internal/domain"

// Action представляет действие над ресурсом
type Action string

// Возможные действия
const (
	ActionList     Action = "list"
	ActionCreate   Action = "create"
	ActionRetrieve Action = "retrieve"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
)

// IsSafe возвращает true для действий только на чтение
func (a Action) IsSafe() bool {
	return a == ActionList || a == ActionRetrieve
}

// Request содержит все, что нужно правилам для принятия решения.
// Actor == nil означает анонимный запрос
type Request struct {
	Actor  *domain.User
	Action Action

	// Project проект, над которым выполняется действие (уровень объекта)
	Project *domain.Project
	// Parent проект из пути запроса, загруженный до задачи. nil если не найден
	Parent *domain.Project
	// Task задача, над которой выполняется действие
	Task *domain.Task
	// Target пользователь, над которым выполняется действие
	Target *domain.User
}

// Predicate атомарное или составное правило доступа
type Predicate func(r Request) bool

// All возвращает правило, истинное когда истинны все правила
func All(predicates ...Predicate) Predicate {
	return func(r Request) bool {
		for _, p := range predicates {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// Any возвращает правило, истинное когда истинно хотя бы одно правило
func Any(predicates ...Predicate) Predicate {
	return func(r Request) bool {
		for _, p := range predicates {
			if p(r) {
				return true
			}
		}
		return false
	}
}

// IsManager истинно если актор менеджер
func IsManager(r Request) bool {
	return r.Actor.IsManager()
}

// IsAuthenticatedSafe истинно если актор аутентифицирован и действие только на чтение
func IsAuthenticatedSafe(r Request) bool {
	return r.Actor != nil && r.Action.IsSafe()
}

// IsProjectMember истинно если актор состоит в проекте запроса
func IsProjectMember(r Request) bool {
	return r.Actor != nil && r.Project.HasMember(r.Actor.UserID)
}

// IsTaskProjectMember истинно если актор состоит в проекте из пути запроса.
// Если проект не найден, правило ложно
func IsTaskProjectMember(r Request) bool {
	return r.Actor != nil && r.Parent.HasMember(r.Actor.UserID)
}

// IsTaskDeveloperOrManager истинно если актор назначен на задачу или является менеджером
func IsTaskDeveloperOrManager(r Request) bool {
	if r.Actor == nil {
		return false
	}
	return r.Task.IsAssignedTo(r.Actor.UserID) || r.Actor.IsManager()
}

// IsOwnerOrManager истинно если актор работает со своей учетной записью или является менеджером
func IsOwnerOrManager(r Request) bool {
	if r.Actor == nil || r.Target == nil {
		return false
	}
	return r.Target.UserID == r.Actor.UserID || r.Actor.IsManager()
}

// Allow вычисляет правило для запроса
func Allow(p Predicate, r Request) bool {
	return p(r)
}

// Check вычисляет правило и возвращает доменную ошибку при отказе.
// Анонимный запрос всегда получает ErrAuthenticationRequired
func Check(p Predicate, r Request) error {
	if r.Actor == nil {
		return domain.ErrAuthenticationRequired
	}
	if !p(r) {
		return domain.ErrForbidden
	}
	return nil
}
