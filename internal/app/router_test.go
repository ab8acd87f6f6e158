package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidar/project-tracker/internal/domain"
	"github.com/aidar/project-tracker/internal/repository/memory"
	"github.com/aidar/project-tracker/internal/service"
)

type apiClient struct {
	t      *testing.T
	server *httptest.Server
}

func newAPIClient(t *testing.T) *apiClient {
	t.Helper()

	services := NewServices(MemoryRepositories(memory.NewStore()), service.NewMemoryRevocationStore(), "router-test-secret", time.Hour)
	server := httptest.NewServer(NewRouter(services, slog.New(slog.NewJSONHandler(io.Discard, nil))))
	t.Cleanup(server.Close)

	return &apiClient{t: t, server: server}
}

func (c *apiClient) do(method, path, token string, body any) (int, map[string]any) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.server.URL+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.server.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)

	var out map[string]any
	if len(raw) > 0 {
		require.NoError(c.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

// signup регистрирует пользователя и возвращает его ID и токен
func (c *apiClient) signup(username string, role domain.Role) (string, string) {
	c.t.Helper()

	status, user := c.do(http.MethodPost, "/api/register", "", map[string]any{
		"username":         username,
		"email":            username + "@example.com",
		"user_type":        role,
		"password":         "secret123",
		"confirm_password": "secret123",
	})
	require.Equal(c.t, http.StatusCreated, status, user)
	assert.NotContains(c.t, user, "password")

	status, login := c.do(http.MethodPost, "/api/login", "", map[string]any{
		"username": username,
		"password": "secret123",
	})
	require.Equal(c.t, http.StatusOK, status, login)

	return user["user_id"].(string), login["token"].(string)
}

func errorMessage(body map[string]any) string {
	detail, _ := body["error"].(map[string]any)
	msg, _ := detail["message"].(string)
	return msg
}

func TestRouter_ProjectAndTaskScenario(t *testing.T) {
	c := newAPIClient(t)

	managerID, managerToken := c.signup("manager", domain.RoleManager)
	devID, devToken := c.signup("developer", domain.RoleDeveloper)
	_, outsiderToken := c.signup("outsider", domain.RoleDeveloper)
	_, otherManagerToken := c.signup("other_manager", domain.RoleManager)

	status, body := c.do(http.MethodGet, "/api/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Authentication credentials were not provided.", errorMessage(body))

	status, body = c.do(http.MethodPost, "/api/projects", managerToken, map[string]any{
		"title":   "Tracker",
		"members": []string{managerID},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, domain.MsgProjectComposition, errorMessage(body))

	status, project := c.do(http.MethodPost, "/api/projects", managerToken, map[string]any{
		"title":   "Tracker",
		"members": []string{managerID, devID},
	})
	require.Equal(t, http.StatusCreated, status, project)
	assert.Equal(t, "Opened", project["status"])
	projectPath := "/api/projects/" + project["id"].(string)

	status, body = c.do(http.MethodGet, projectPath+"/tasks", outsiderToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "You do not have permission to perform this action.", errorMessage(body))

	status, task := c.do(http.MethodPost, projectPath+"/tasks", managerToken, map[string]any{
		"title":     "Write API",
		"developer": devID,
	})
	require.Equal(t, http.StatusCreated, status, task)
	assert.Equal(t, "To do", task["status"])
	taskPath := projectPath + "/tasks/" + task["id"].(string)

	status, body = c.do(http.MethodPatch, taskPath, devToken, map[string]any{"title": "X", "status": "In progress"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, domain.MsgDeveloperStatusOnly, errorMessage(body))

	status, body = c.do(http.MethodGet, taskPath, devToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Write API", body["title"])
	assert.Equal(t, "To do", body["status"])

	status, body = c.do(http.MethodPut, taskPath, devToken, map[string]any{"status": "In progress"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "In progress", body["status"])

	status, _ = c.do(http.MethodGet, projectPath, otherManagerToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = c.do(http.MethodGet, projectPath, devToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{task["id"]}, body["tasks"])

	status, body = c.do(http.MethodGet, projectPath+"/tasks?limit=10", devToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["count"])

	status, body = c.do(http.MethodGet, projectPath+"/stats", managerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["total_tasks"])

	status, _ = c.do(http.MethodDelete, projectPath, devToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = c.do(http.MethodDelete, projectPath, managerToken, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = c.do(http.MethodGet, taskPath, managerToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestRouter_AuthFlow(t *testing.T) {
	c := newAPIClient(t)

	status, body := c.do(http.MethodPost, "/api/register", "", map[string]any{
		"username":         "u",
		"email":            "u@example.com",
		"user_type":        "Developer",
		"password":         "secret123",
		"confirm_password": "different1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, domain.MsgPasswordsMismatch, errorMessage(body))

	userID, token := c.signup("u", domain.RoleDeveloper)

	status, body = c.do(http.MethodPost, "/api/register", "", map[string]any{
		"username":         "u",
		"email":            "u2@example.com",
		"user_type":        "Developer",
		"password":         "secret123",
		"confirm_password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, string(domain.CodeUserExists), body["error"].(map[string]any)["code"])

	status, body = c.do(http.MethodPost, "/api/login", "", map[string]any{"username": "u", "password": "wrong-pass"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Cannot log in with provided credentials.", errorMessage(body))

	status, body = c.do(http.MethodPatch, "/api/users/"+userID, token, map[string]any{"user_type": "Manager"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, domain.MsgRoleImmutable, errorMessage(body))

	status, body = c.do(http.MethodPatch, "/api/users/"+userID, token, map[string]any{"first_name": "Uma"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Uma", body["first_name"])

	status, _ = c.do(http.MethodGet, "/api/users", token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = c.do(http.MethodPost, "/api/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = c.do(http.MethodGet, "/api/users/"+userID, token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRouter_Health(t *testing.T) {
	c := newAPIClient(t)

	status, body := c.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_ForbiddenBeforeValidation(t *testing.T) {
	c := newAPIClient(t)

	managerID, managerToken := c.signup("manager", domain.RoleManager)
	devID, devToken := c.signup("developer", domain.RoleDeveloper)
	_, outsiderToken := c.signup("outsider", domain.RoleDeveloper)

	status, body := c.do(http.MethodPost, "/api/projects", devToken, map[string]any{"title": ""})
	assert.Equal(t, http.StatusForbidden, status, body)

	status, project := c.do(http.MethodPost, "/api/projects", managerToken, map[string]any{
		"title":   "Tracker",
		"members": []string{managerID, devID},
	})
	require.Equal(t, http.StatusCreated, status, project)
	projectPath := "/api/projects/" + project["id"].(string)

	status, task := c.do(http.MethodPost, projectPath+"/tasks", managerToken, map[string]any{
		"title":     "Write API",
		"developer": devID,
	})
	require.Equal(t, http.StatusCreated, status, task)
	taskPath := projectPath + "/tasks/" + task["id"].(string)

	status, body = c.do(http.MethodPatch, taskPath, outsiderToken, map[string]any{"title": strings.Repeat("x", 300)})
	assert.Equal(t, http.StatusForbidden, status, body)
	assert.Equal(t, "You do not have permission to perform this action.", errorMessage(body))

	status, body = c.do(http.MethodPost, projectPath+"/tasks", outsiderToken, map[string]any{"title": ""})
	assert.Equal(t, http.StatusForbidden, status, body)

	status, body = c.do(http.MethodPatch, "/api/users/"+managerID, devToken, map[string]any{"email": "nope"})
	assert.Equal(t, http.StatusForbidden, status, body)

	status, body = c.do(http.MethodPost, "/api/projects", managerToken, map[string]any{"title": ""})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "title", body["error"].(map[string]any)["field"])
}

func TestRouter_UserFieldRules(t *testing.T) {
	c := newAPIClient(t)

	longPassword := strings.Repeat("é", 40)
	status, body := c.do(http.MethodPost, "/api/register", "", map[string]any{
		"username":         "u",
		"email":            "u@example.com",
		"user_type":        "Developer",
		"password":         longPassword,
		"confirm_password": longPassword,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "password", body["error"].(map[string]any)["field"])

	userID, token := c.signup("u", domain.RoleDeveloper)

	status, body = c.do(http.MethodPatch, "/api/users/"+userID, token, map[string]any{"username": ""})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "This field may not be blank.", errorMessage(body))

	status, body = c.do(http.MethodPatch, "/api/users/"+userID, token, map[string]any{"password": longPassword})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "password", body["error"].(map[string]any)["field"])

	status, body = c.do(http.MethodGet, "/api/users/"+userID, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "u", body["username"])
}
