package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/aidar/project-tracker/internal/domain"
	"github.com/aidar/project-tracker/internal/middleware"
)

// Сообщения об ошибках, которые видит клиент
const (
	MsgForbidden          = "You do not have permission to perform this action."
	MsgInvalidCredentials = "Cannot log in with provided credentials."
	MsgNotFound           = "Not found."
	MsgUserExists         = "A user with that username or email already exists."
	MsgBadRequest         = "Malformed request body."
)

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail содержит код и описание ошибки. Field заполняется для ошибок валидации поля
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// RespondWithError отправляет ответ с ошибкой
func RespondWithError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	render.Status(r, statusCode)
	render.JSON(w, r, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// HandleError преобразует доменные ошибки в HTTP ответы.
// Отказ в доступе всегда одинаковый и не раскрывает, какая проверка не прошла
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	code := string(domain.MapErrorToCode(err))

	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: ErrorDetail{Code: code, Message: vErr.Message, Field: vErr.Field}})
	case errors.Is(err, domain.ErrInvalidCredentials):
		RespondWithError(w, r, http.StatusBadRequest, code, MsgInvalidCredentials)
	case errors.Is(err, domain.ErrUserExists):
		RespondWithError(w, r, http.StatusBadRequest, code, MsgUserExists)
	case errors.Is(err, domain.ErrAuthenticationRequired):
		RespondWithError(w, r, http.StatusUnauthorized, code, middleware.MsgCredentialsMissing)
	case errors.Is(err, domain.ErrInvalidToken):
		RespondWithError(w, r, http.StatusUnauthorized, code, middleware.MsgInvalidToken)
	case errors.Is(err, domain.ErrForbidden):
		RespondWithError(w, r, http.StatusForbidden, code, MsgForbidden)
	case code == string(domain.CodeNotFound):
		RespondWithError(w, r, http.StatusNotFound, code, MsgNotFound)
	default:
		slog.Default().Error("Unhandled error", "method", r.Method, "path", r.URL.Path, "error", err)
		RespondWithError(w, r, http.StatusInternalServerError, code, "internal server error")
	}
}

// RespondBadRequest отправляет 400 для тела запроса, которое не удалось разобрать
func RespondBadRequest(w http.ResponseWriter, r *http.Request) {
	RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeValidationFailed), MsgBadRequest)
}
