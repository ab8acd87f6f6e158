// Package notify рассылает напоминания о сроках задач.
//
// Reminder раз в интервал выбирает незавершенные задачи с назначенным
// разработчиком и отправляет каждому разработчику письмо через Sender.
// Ошибки рассылки логируются и наружу не передаются.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/aidar/project-tracker/internal/domain"
)

// ReminderSubject тема письма с напоминанием
const ReminderSubject = "Task deadline is coming!"

// Message представляет одно письмо
type Message struct {
	ID      string    `json:"id"`
	TaskID  string    `json:"task_id"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	DueDate time.Time `json:"due_date"`
}

// Sender доставляет письма
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Deduper не дает отправить одно напоминание дважды за день (например, с нескольких реплик)
type Deduper interface {
	// Claim возвращает true, если вызывающий первым заявил ключ
	Claim(ctx context.Context, key string) (bool, error)
}

// TaskSource возвращает задачи, по которым нужно напомнить
type TaskSource interface {
	ListAssignedPending(ctx context.Context) ([]*domain.AssignedTask, error)
}

// Reminder выполняет периодическое сканирование задач
type Reminder struct {
	tasks   TaskSource
	sender  Sender
	deduper Deduper
	logger  *slog.Logger
	now     func() time.Time
}

// NewReminder создает Reminder. deduper может быть nil
func NewReminder(tasks TaskSource, sender Sender, deduper Deduper, logger *slog.Logger) *Reminder {
	return &Reminder{
		tasks:   tasks,
		sender:  sender,
		deduper: deduper,
		logger:  logger,
		now:     time.Now,
	}
}

// Result итог одного сканирования
type Result struct {
	Sent    int
	Skipped int
	Failed  int
}

// Scan отправляет по одному напоминанию на каждую незавершенную назначенную задачу
func (r *Reminder) Scan(ctx context.Context) Result {
	var res Result
	now := r.now()

	assigned, err := r.tasks.ListAssignedPending(ctx)
	if err != nil {
		r.logger.Error("Failed to load tasks for reminders", "error", err)
		res.Failed++
		return res
	}

	for _, a := range assigned {
		if a.Task.IsDone() || a.Developer.Email == "" {
			res.Skipped++
			continue
		}

		msg := BuildMessage(a, now)

		if r.deduper != nil {
			claimed, err := r.deduper.Claim(ctx, msg.ID)
			if err != nil {
				r.logger.Error("Failed to claim reminder", "task_id", a.Task.TaskID, "error", err)
				res.Failed++
				continue
			}
			if !claimed {
				res.Skipped++
				continue
			}
		}

		if err := r.sender.Send(ctx, msg); err != nil {
			r.logger.Error("Failed to send reminder", "task_id", a.Task.TaskID, "error", err)
			res.Failed++
			continue
		}
		res.Sent++
	}

	r.logger.Info("Reminder scan finished", "sent", res.Sent, "skipped", res.Skipped, "failed", res.Failed)
	return res
}

// Run сканирует задачи сразу и затем каждые interval, пока ctx не отменен
func (r *Reminder) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.Scan(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Scan(ctx)
		}
	}
}

// BuildMessage формирует письмо с оставшимся до срока временем
func BuildMessage(a *domain.AssignedTask, now time.Time) Message {
	left := a.Task.DueDate.Sub(now)
	days := int(math.Ceil(left.Hours() / 24))

	var body string
	if left >= 0 {
		body = fmt.Sprintf("%d days left until %q deadline!", days, a.Task.Title)
	} else {
		body = fmt.Sprintf("%q is overdue by %d days!", a.Task.Title, -int(math.Floor(left.Hours()/24)))
	}

	return Message{
		ID:      a.Task.TaskID + ":" + now.UTC().Format(time.DateOnly),
		TaskID:  a.Task.TaskID,
		To:      a.Developer.Email,
		Subject: ReminderSubject,
		Body:    body,
		DueDate: a.Task.DueDate,
	}
}
