package domain

import "time"

// TaskStatus представляет статус задачи
type TaskStatus string

// Возможные статусы задачи. Переходы между ними не ограничены
const (
	TaskToDo       TaskStatus = "To do"
	TaskInProgress TaskStatus = "In progress"
	TaskDone       TaskStatus = "Done"
)

// DefaultDueIn срок выполнения задачи по умолчанию
const DefaultDueIn = 7 * 24 * time.Hour

// IsValid проверяет, что статус входит в допустимый набор
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskToDo, TaskInProgress, TaskDone:
		return true
	}
	return false
}

// Task представляет задачу внутри проекта
type Task struct {
	TaskID      string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     time.Time  `json:"due_date"`
	Status      TaskStatus `json:"status"`
	DeveloperID *string    `json:"developer"` // nil если разработчик удален или не назначен
	ProjectID   string     `json:"project"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsDone возвращает true если задача завершена
func (t *Task) IsDone() bool {
	return t.Status == TaskDone
}

// IsAssignedTo проверяет, назначена ли задача пользователю
func (t *Task) IsAssignedTo(userID string) bool {
	return t != nil && t.DeveloperID != nil && *t.DeveloperID == userID
}

// DefaultDueDate возвращает срок по умолчанию для задачи, созданной в момент now
func DefaultDueDate(now time.Time) time.Time {
	return now.Add(DefaultDueIn)
}

// Поля задачи, которые может передать клиент при обновлении
const (
	TaskFieldTitle       = "title"
	TaskFieldDescription = "description"
	TaskFieldDueDate     = "due_date"
	TaskFieldStatus      = "status"
	TaskFieldDeveloper   = "developer"
)

// TaskPatch содержит изменяемые поля задачи (nil = поле не передано).
// Developer передается как **string: внешний nil означает "не передано",
// внутренний nil означает "снять разработчика".
type TaskPatch struct {
	Title       *string     `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string     `json:"description" validate:"omitempty,max=3000"`
	DueDate     *time.Time  `json:"due_date"`
	Status      *TaskStatus `json:"status"`
	Developer   **string    `json:"developer"`
}

// ChangedFields возвращает поля патча, значение которых отличается от текущего
func (p TaskPatch) ChangedFields(current Task) []string {
	var changed []string
	if p.Title != nil && *p.Title != current.Title {
		changed = append(changed, TaskFieldTitle)
	}
	if p.Description != nil && *p.Description != current.Description {
		changed = append(changed, TaskFieldDescription)
	}
	if p.DueDate != nil && !p.DueDate.Equal(current.DueDate) {
		changed = append(changed, TaskFieldDueDate)
	}
	if p.Status != nil && *p.Status != current.Status {
		changed = append(changed, TaskFieldStatus)
	}
	if p.Developer != nil && !sameID(*p.Developer, current.DeveloperID) {
		changed = append(changed, TaskFieldDeveloper)
	}
	return changed
}

// Apply возвращает копию задачи с примененными изменениями
func (t Task) Apply(p TaskPatch) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Developer != nil {
		t.DeveloperID = *p.Developer
	}
	return t
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// AssignedTask представляет незавершенную задачу вместе с назначенным разработчиком
type AssignedTask struct {
	Task      Task
	Developer User
}
