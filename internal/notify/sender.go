package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

// SMTPSender отправляет письма через SMTP сервер
type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender создает SMTPSender. Пустой username отключает аутентификацию
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPSender{
		addr: net.JoinHostPort(host, fmt.Sprint(port)),
		from: from,
		auth: auth,
		send: smtp.SendMail,
	}
}

// Send отправляет письмо
func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n")

	if err := s.send(s.addr, s.auth, s.from, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

// BreakerSettings настройки circuit breaker для отправки писем
type BreakerSettings struct {
	MaxFailures int
	OpenTimeout time.Duration
}

// BreakerSender защищает Sender circuit breaker'ом: после MaxFailures ошибок подряд
// отправка не выполняется до истечения OpenTimeout
type BreakerSender struct {
	next    Sender
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerSender оборачивает Sender в circuit breaker
func NewBreakerSender(next Sender, cfg BreakerSettings, logger *slog.Logger) *BreakerSender {
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "mail",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return int(counts.ConsecutiveFailures) >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &BreakerSender{next: next, breaker: cb}
}

// Send отправляет письмо через circuit breaker
func (s *BreakerSender) Send(ctx context.Context, msg Message) error {
	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.next.Send(ctx, msg)
	})
	return err
}

// State возвращает текущее состояние circuit breaker
func (s *BreakerSender) State() gobreaker.State {
	return s.breaker.State()
}

// OutboxSender кладет письма в Redis список, откуда их забирает внешний почтовый воркер
type OutboxSender struct {
	redis *redis.Client
	key   string
}

// NewOutboxSender создает OutboxSender
func NewOutboxSender(client *redis.Client, key string) *OutboxSender {
	return &OutboxSender{redis: client, key: key}
}

// Send добавляет письмо в конец очереди
func (s *OutboxSender) Send(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal reminder: %w", err)
	}
	return s.redis.RPush(ctx, s.key, data).Err()
}

// LogSender пишет письма в лог. Используется для локальной разработки
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender создает LogSender
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send логирует письмо
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("Reminder", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}
