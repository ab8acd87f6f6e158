// Package memory хранит данные в памяти процесса. Используется для локального
// запуска без PostgreSQL и в тестах сервисов и HTTP слоя.
package memory

import (
	"sort"
	"sync"

	"github.com/aidar/project-tracker/internal/domain"
)

// Store общее хранилище для всех репозиториев этого пакета
type Store struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	projects map[string]domain.Project
	tasks    map[string]domain.Task
	seq      map[string]int64 // порядок создания задач
	nextSeq  int64

	// taskWrite сериализует read-modify-write обновления задач
	taskWrite sync.Mutex
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		users:    make(map[string]domain.User),
		projects: make(map[string]domain.Project),
		tasks:    make(map[string]domain.Task),
		seq:      make(map[string]int64),
	}
}

// Users возвращает репозиторий пользователей
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Projects возвращает репозиторий проектов
func (s *Store) Projects() *ProjectRepository { return &ProjectRepository{s: s} }

// Tasks возвращает репозиторий задач
func (s *Store) Tasks() *TaskRepository { return &TaskRepository{s: s} }

// Stats возвращает репозиторий статистики
func (s *Store) Stats() *StatsRepository { return &StatsRepository{s: s} }

func paginate[T any](items []T, page domain.Page) []T {
	if page.Offset >= len(items) {
		return []T{}
	}
	end := page.Offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Offset:end]
}

func (s *Store) projectTasks(projectID string) []domain.Task {
	var tasks []domain.Task
	for _, t := range s.tasks {
		if t.ProjectID == projectID {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return s.seq[tasks[i].TaskID] < s.seq[tasks[j].TaskID]
	})
	return tasks
}

func cloneProject(p domain.Project) *domain.Project {
	p.Members = append([]string{}, p.Members...)
	return &p
}

func cloneTask(t domain.Task) *domain.Task {
	if t.DeveloperID != nil {
		id := *t.DeveloperID
		t.DeveloperID = &id
	}
	return &t
}
