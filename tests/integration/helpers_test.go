package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aidar/project-tracker/internal/app"
	"github.com/aidar/project-tracker/internal/config"
)

const (
	dbName     = "tracker_test"
	dbUser     = "tracker"
	dbPassword = "tracker_pass"

	// Пароль всех пользователей, созданных через signup
	testPassword = "secret123"
)

// TestEnvironment содержит приложение поверх PostgreSQL в контейнере
type TestEnvironment struct {
	PostgresContainer *postgres.PostgresContainer
	App               *app.App
	BaseURL           string
	DB                *pgxpool.Pool
	client            *http.Client
}

// SetupTestEnvironment поднимает PostgreSQL, применяет миграции и запускает API
// на свободном локальном порту. Ресурсы освобождаются через t.Cleanup
func SetupTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	env := &TestEnvironment{
		PostgresContainer: pgContainer,
		client:            &http.Client{Timeout: 10 * time.Second},
	}
	t.Cleanup(func() { env.cleanup(t) })

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	applyMigrations(t, connStr)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := testConfig(host, port.Port(), freePort(t))

	env.App, err = app.New(cfg)
	require.NoError(t, err, "Failed to create application")
	require.NoError(t, env.App.Initialize(ctx), "Failed to initialize application")

	go func() {
		if err := env.App.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Logf("Server error: %v", err)
		}
	}()

	env.BaseURL = fmt.Sprintf("http://%s:%s", cfg.Server.Host, cfg.Server.Port)

	env.DB, err = pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	env.waitForHealthCheck(t)
	return env
}

// testConfig собирает конфигурацию: postgres хранилище, без Redis и без напоминаний
func testConfig(dbHost, dbPort, serverPort string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port: serverPort,
			Host: "127.0.0.1",
		},
		Database: config.DatabaseConfig{
			Host:     dbHost,
			Port:     dbPort,
			User:     dbUser,
			Password: dbPassword,
			Name:     dbName,
			SSLMode:  "disable",
			MaxConns: 10,
			MinConns: 2,
		},
		Storage: config.StorageConfig{
			Driver: config.StorageDriverPostgres,
		},
		JWT: config.JWTConfig{
			Secret:          "integration-secret",
			ExpirationHours: 1,
		},
		Reminder: config.ReminderConfig{
			Enabled: false,
		},
		Log: config.LogConfig{
			Level: "error",
		},
	}
}

// freePort занимает и сразу освобождает порт, чтобы параллельные прогоны не конфликтовали
func freePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	return fmt.Sprint(l.Addr().(*net.TCPAddr).Port)
}

func (te *TestEnvironment) cleanup(t *testing.T) {
	t.Helper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if te.App != nil {
		if err := te.App.Shutdown(shutdownCtx); err != nil {
			t.Logf("Shutdown error: %v", err)
		}
	}
	if te.DB != nil {
		te.DB.Close()
	}
	if te.PostgresContainer != nil {
		_ = te.PostgresContainer.Terminate(context.Background())
	}
}

// applyMigrations применяет все *.up.sql из migrations/ в порядке номеров
func applyMigrations(t *testing.T, connStr string) {
	t.Helper()

	db, err := sql.Open("pgx/v5", connStr)
	require.NoError(t, err, "Failed to open database connection")
	defer db.Close()

	files, err := filepath.Glob(filepath.Join(projectRoot(t), "migrations", "*.up.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files, "No migrations found")
	sort.Strings(files)

	for _, file := range files {
		migrationSQL, err := os.ReadFile(file)
		require.NoError(t, err, "Failed to read %s", file)

		_, err = db.Exec(string(migrationSQL))
		require.NoError(t, err, "Failed to apply %s", filepath.Base(file))
	}
}

// projectRoot ищет каталог с go.mod вверх от текущего
func projectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("Could not find project root (go.mod not found)")
		}
		dir = parent
	}
}

func (te *TestEnvironment) waitForHealthCheck(t *testing.T) {
	t.Helper()

	for i := 0; i < 50; i++ {
		resp, err := te.client.Get(te.BaseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatal("Application did not become healthy in time")
}

// MakeRequest отправляет JSON запрос к API. body кодируется в JSON, если не nil
func (te *TestEnvironment) MakeRequest(t *testing.T, method, path string, body any, token string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, te.BaseURL+path, reader)
	require.NoError(t, err, "Failed to create request")

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := te.client.Do(req)
	require.NoError(t, err, "Failed to make request")

	return resp
}

// Signup регистрирует пользователя с ролью userType и логинится им
func (te *TestEnvironment) Signup(t *testing.T, username, userType string) (User, string) {
	t.Helper()

	resp := te.MakeRequest(t, http.MethodPost, "/api/register", map[string]string{
		"username":         username,
		"email":            username + "@example.com",
		"user_type":        userType,
		"password":         testPassword,
		"confirm_password": testPassword,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, "Registration should succeed")

	var user User
	decode(t, resp, &user)

	resp = te.MakeRequest(t, http.MethodPost, "/api/login", map[string]string{
		"username": username,
		"password": testPassword,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, "Login should succeed")

	var login struct {
		Token string `json:"token"`
	}
	decode(t, resp, &login)
	require.NotEmpty(t, login.Token)

	return user, login.Token
}

// CountRows выполняет COUNT запрос напрямую к базе
func (te *TestEnvironment) CountRows(t *testing.T, query string, args ...any) int {
	t.Helper()

	var n int
	require.NoError(t, te.DB.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
