package domain

// ProjectStats представляет сводку по задачам и участникам проекта
type ProjectStats struct {
	ProjectID       string             `json:"project_id"`
	TasksByStatus   map[TaskStatus]int `json:"tasks_by_status"`
	TotalTasks      int                `json:"total_tasks"`
	OverdueTasks    int                `json:"overdue_tasks"`
	UnassignedTasks int                `json:"unassigned_tasks"`
	Managers        int                `json:"managers"`
	Developers      int                `json:"developers"`
}
