package domain

import "time"

// ProjectStatus представляет статус проекта
type ProjectStatus string

// Возможные статусы проекта
const (
	ProjectOpened ProjectStatus = "Opened"
	ProjectClosed ProjectStatus = "Closed"
)

// IsValid проверяет, что статус входит в допустимый набор
func (s ProjectStatus) IsValid() bool {
	return s == ProjectOpened || s == ProjectClosed
}

// Project представляет проект с набором участников
type Project struct {
	ProjectID   string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	Members     []string      `json:"members"` // ID участников, без повторов
	CreatedAt   time.Time     `json:"created_at"`
}

// ProjectDetail представляет проект вместе с ID его задач (в порядке создания)
type ProjectDetail struct {
	Project
	Tasks []string `json:"tasks"`
}

// HasMember проверяет, состоит ли пользователь в проекте
func (p *Project) HasMember(userID string) bool {
	if p == nil {
		return false
	}
	for _, member := range p.Members {
		if member == userID {
			return true
		}
	}
	return false
}

// ProjectPatch содержит изменяемые поля проекта (nil = поле не передано)
type ProjectPatch struct {
	Title       *string        `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string        `json:"description" validate:"omitempty,max=3000"`
	Status      *ProjectStatus `json:"status"`
	Members     []string       `json:"members"` // nil = состав не меняется
}

// Apply возвращает копию проекта с примененными изменениями
func (p Project) Apply(patch ProjectPatch) Project {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Members != nil {
		p.Members = UniqueIDs(patch.Members)
	}
	return p
}

// UniqueIDs убирает повторы, сохраняя порядок первого вхождения
func UniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
