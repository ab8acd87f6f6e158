package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/aidar/project-tracker/internal/domain"
	"github.com/aidar/project-tracker/internal/validation"
)

// decodeJSON только читает JSON тело. Теги `validate` проверяет сервис
// после авторизации
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		RespondBadRequest(w, r)
		return false
	}
	return true
}

// decodeRequest читает JSON тело и сразу проверяет теги `validate`.
// Только для публичных эндпоинтов, где проверять права некому
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !decodeJSON(w, r, dst) {
		return false
	}
	if err := validation.Struct(dst); err != nil {
		HandleError(w, r, err)
		return false
	}
	return true
}

// pageFromRequest читает параметры limit и offset
func pageFromRequest(r *http.Request) (domain.Page, error) {
	var page domain.Page
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return page, domain.NewValidationError("limit", "A valid non-negative integer is required.")
		}
		page.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return page, domain.NewValidationError("offset", "A valid non-negative integer is required.")
		}
		page.Offset = n
	}

	return page.Normalize(), nil
}
