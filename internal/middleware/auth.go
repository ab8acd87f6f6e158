package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/aidar/project-tracker/internal/domain"
	"github.com/aidar/project-tracker/internal/service"
)

// ContextKey это кастомный тип для ключей контекста
type ContextKey string

const (
	// ActorKey ключ контекста для аутентифицированного пользователя
	ActorKey ContextKey = "actor"
	// ClaimsKey ключ контекста для claims токена
	ClaimsKey ContextKey = "claims"
)

// Сообщения об ошибках аутентификации
const (
	MsgCredentialsMissing = "Authentication credentials were not provided."
	MsgInvalidToken       = "Given token not valid for any token type."
)

// Authenticator проверяет токен и возвращает его владельца
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, *service.Claims, error)
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AuthMiddleware создает middleware для валидации JWT токенов.
// Пользователь токена и claims кладутся в контекст запроса
func AuthMiddleware(auth Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Получаем токен из заголовка Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, r, MsgCredentialsMissing)
				return
			}

			// Проверяем формат Bearer
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthorized(w, r, MsgInvalidToken)
				return
			}

			actor, claims, err := auth.Authenticate(r.Context(), parts[1])
			if err != nil {
				if !errors.Is(err, domain.ErrInvalidToken) {
					logger.Error("Failed to authenticate request", "error", err)
					render.Status(r, http.StatusInternalServerError)
					render.JSON(w, r, errorBody{Error: errorDetail{
						Code:    string(domain.CodeInternal),
						Message: "internal server error",
					}})
					return
				}
				unauthorized(w, r, MsgInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), ActorKey, actor)
			ctx = context.WithValue(ctx, ClaimsKey, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext извлекает аутентифицированного пользователя из контекста
func ActorFromContext(ctx context.Context) *domain.User {
	actor, ok := ctx.Value(ActorKey).(*domain.User)
	if !ok {
		return nil
	}
	return actor
}

// ClaimsFromContext извлекает claims токена из контекста
func ClaimsFromContext(ctx context.Context) *service.Claims {
	claims, ok := ctx.Value(ClaimsKey).(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, errorBody{Error: errorDetail{
		Code:    string(domain.CodeUnauthorized),
		Message: message,
	}})
}
