package permission

// Правила для эндпоинтов проектов
var (
	projectList   = Predicate(IsAuthenticatedSafe)
	projectCreate = Predicate(IsManager)
	projectDetail = All(IsProjectMember, Any(IsManager, IsAuthenticatedSafe))
)

// Правила для эндпоинтов задач
var (
	taskList   = Predicate(IsTaskProjectMember)
	taskCreate = All(IsManager, IsTaskProjectMember)
	taskDetail = All(IsTaskProjectMember, IsTaskDeveloperOrManager)
)

// Правила для эндпоинтов пользователей
var (
	userList   = Predicate(IsManager)
	userDetail = Predicate(IsOwnerOrManager)
)

// ProjectPolicy возвращает правило доступа к проектам для действия
func ProjectPolicy(action Action) Predicate {
	switch action {
	case ActionList:
		return projectList
	case ActionCreate:
		return projectCreate
	default:
		return projectDetail
	}
}

// TaskPolicy возвращает правило доступа к задачам для действия
func TaskPolicy(action Action) Predicate {
	switch action {
	case ActionList:
		return taskList
	case ActionCreate:
		return taskCreate
	default:
		return taskDetail
	}
}

// UserPolicy возвращает правило доступа к пользователям для действия
func UserPolicy(action Action) Predicate {
	if action == ActionList {
		return userList
	}
	return userDetail
}
