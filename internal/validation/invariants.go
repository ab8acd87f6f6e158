// Package validation проверяет инварианты проектов и задач перед записью.
//
// Все проверки это чистые функции от текущего состояния, предлагаемого
// состояния и актора. Они ничего не пишут и вызываются до сохранения.
package validation

import (
	"github.com/aidar/project-tracker/internal/domain"
)

// ProjectComposition проверяет, что среди участников есть хотя бы один менеджер и один разработчик
func ProjectComposition(members []*domain.User) error {
	var managers, developers int
	for _, m := range members {
		switch {
		case m.IsManager():
			managers++
		case m.IsDeveloper():
			developers++
		}
	}
	if managers == 0 || developers == 0 {
		return domain.NewValidationError("members", domain.MsgProjectComposition)
	}
	return nil
}

// TaskAssignment проверяет, что назначенный пользователь разработчик и участник проекта.
// Роль проверяется первой
func TaskAssignment(developer *domain.User, project *domain.Project) error {
	if !developer.IsDeveloper() {
		return domain.NewValidationError("", domain.MsgAssigneeNotDev)
	}
	if !project.HasMember(developer.UserID) {
		return domain.NewValidationError("", domain.MsgAssigneeNotMember)
	}
	return nil
}

// TaskFieldLock запрещает разработчику менять что-либо кроме статуса.
// Совпадающие с текущими значения изменением не считаются; при нарушении
// отклоняется все обновление целиком
func TaskFieldLock(actor *domain.User, current domain.Task, patch domain.TaskPatch) error {
	if !actor.IsDeveloper() {
		return nil
	}
	for _, field := range patch.ChangedFields(current) {
		if field != domain.TaskFieldStatus {
			return domain.NewValidationError("", domain.MsgDeveloperStatusOnly)
		}
	}
	return nil
}

// TaskStatus проверяет, что статус задачи входит в допустимый набор
func TaskStatus(status domain.TaskStatus) error {
	if !status.IsValid() {
		return domain.NewValidationError(domain.TaskFieldStatus, `"`+string(status)+`" is not a valid choice.`)
	}
	return nil
}

// ProjectStatus проверяет, что статус проекта входит в допустимый набор
func ProjectStatus(status domain.ProjectStatus) error {
	if !status.IsValid() {
		return domain.NewValidationError("status", `"`+string(status)+`" is not a valid choice.`)
	}
	return nil
}

// UserRoleUnchanged запрещает менять роль существующего пользователя
func UserRoleUnchanged(current domain.User, patch domain.UserPatch) error {
	if patch.Role != nil && *patch.Role != current.Role {
		return domain.NewValidationError("user_type", domain.MsgRoleImmutable)
	}
	return nil
}
