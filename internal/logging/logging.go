// Package logging создает JSON логгер приложения.
//
// Значения чувствительных полей (пароли, токены, заголовок Authorization)
// заменяются маской до записи в лог.
package logging

import (
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/m-mizutani/masq"
)

var (
	bearerPattern = regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9\-._~+/]+=*`)
	jwtPattern    = regexp.MustCompile(`[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}`)
)

// New создает логгер с указанным уровнем (debug, info, warn, error)
func New(level string, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       ParseLevel(level),
		ReplaceAttr: redact(),
	}))
}

// ParseLevel преобразует строку в slog.Level. Неизвестное значение дает info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func redact() func([]string, slog.Attr) slog.Attr {
	return masq.New(
		masq.WithFieldName("authorization"),
		masq.WithFieldName("password"),
		masq.WithFieldName("confirm_password"),
		masq.WithFieldName("password_hash"),
		masq.WithFieldName("token"),
		masq.WithFieldName("secret"),
		masq.WithFieldPrefix("smtp_pass"),
		masq.WithRegex(bearerPattern),
		masq.WithRegex(jwtPattern),
	)
}
