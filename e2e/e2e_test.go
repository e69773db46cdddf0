//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"helphands-go/internal/auth"
	"helphands-go/internal/config"
	"helphands-go/internal/db"
	announcementsdomain "helphands-go/internal/domain/announcements"
	eventsdomain "helphands-go/internal/domain/events"
	userdomain "helphands-go/internal/domain/user"
	"helphands-go/internal/repository/inmemory"
	announcementsrepo "helphands-go/internal/repository/postgres/announcements"
	eventsrepo "helphands-go/internal/repository/postgres/events"
	userrepo "helphands-go/internal/repository/postgres/user"
	"helphands-go/internal/transport/httpserver"
	"helphands-go/internal/transport/httpserver/handler"
	authmw "helphands-go/internal/transport/httpserver/middleware"
	"helphands-go/pkg/logger"
)

const (
	adminEmail    = "admin@helphands.test"
	adminPassword = "admin-secret"
)

type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
	client *http.Client
}

func setupE2E(t *testing.T) *testEnv {
	t.Helper()

	dsn := os.Getenv("E2E_DB_DSN")
	if dsn == "" {
		t.Skip("E2E_DB_DSN not set; skipping e2e tests")
	}

	log := logger.Nop()
	cfg := config.Defaults()
	cfg.DB = config.DBConfig{DSN: dsn}
	cfg.Auth.JWTSecret = "e2e-secret-e2e-secret"
	cfg.Auth.BcryptCost = 4

	dbConn, err := db.NewPostgres(log, cfg.DB)
	require.NoError(t, err, "db connect")
	require.NoError(t, db.Migrate(log, dbConn), "migrate")
	require.NoError(t, cleanDB(dbConn), "clean db")

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	users := userdomain.NewService(
		userrepo.NewPostgres(dbConn),
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		inmemory.NewUserCache(0),
	)
	events := eventsdomain.NewService(eventsrepo.NewPostgres(dbConn))
	announcements := announcementsdomain.NewService(announcementsrepo.NewPostgres(dbConn), events)

	_, created, err := users.EnsureAdmin(context.Background(), userdomain.SeedAdminInput{
		Name:     "Admin",
		Email:    adminEmail,
		Password: adminPassword,
	})
	require.NoError(t, err)
	require.True(t, created)

	sqlDB, err := dbConn.DB()
	require.NoError(t, err)

	handlers := handler.New(users, events, announcements, tokens, sqlDB, log)
	router := httpserver.NewRouter(cfg, handlers, authmw.NewAuth(tokens, users, log))

	env := &testEnv{
		server: httptest.NewServer(router),
		db:     dbConn,
		client: &http.Client{Timeout: 5 * time.Second},
	}
	t.Cleanup(env.Close)
	return env
}

func (e *testEnv) Close() {
	e.server.Close()
	sqlDB, err := e.db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}

func cleanDB(dbConn *gorm.DB) error {
	return dbConn.WithContext(context.Background()).Exec(
		"TRUNCATE TABLE announcement_reads, announcements, event_volunteers, events, users CASCADE",
	).Error
}

func (e *testEnv) do(t *testing.T, method, path, token string, payload any) (int, []byte) {
	t.Helper()

	var body []byte
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = data
	}

	status, respBody, err := e.send(method, path, token, body)
	require.NoError(t, err)
	return status, respBody
}

// send performs a request without touching testing.T so it can run on
// worker goroutines.
func (e *testEnv) send(method, path, token string, payload []byte) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, e.server.URL+path, body)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var value T
	require.NoError(t, json.Unmarshal(body, &value), string(body))
	return value
}

type errorEnvelope struct {
	Message string `json:"message"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type session struct {
	Token string `json:"token"`
	User  struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
}

type eventBody struct {
	ID                string `json:"id"`
	MaxVolunteers     int    `json:"max_volunteers"`
	CurrentVolunteers int    `json:"current_volunteers"`
	IsFull            bool   `json:"is_full"`
	IsJoined          *bool  `json:"is_joined"`
}

type eventEnvelope struct {
	Event eventBody `json:"event"`
}

type eventsEnvelope struct {
	Count  int         `json:"count"`
	Events []eventBody `json:"events"`
}

type announcementBody struct {
	ID        string `json:"id"`
	ReadCount int    `json:"read_count"`
	IsRead    *bool  `json:"is_read"`
}

type announcementsEnvelope struct {
	Count         int                `json:"count"`
	Announcements []announcementBody `json:"announcements"`
}

func (e *testEnv) login(t *testing.T, email, password string) session {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, string(body))
	return decode[session](t, body)
}

func (e *testEnv) register(t *testing.T, name string) session {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    name + "@helphands.test",
		"password": "secret-" + name,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	return decode[session](t, body)
}

func (e *testEnv) createEvent(t *testing.T, token string, capacity int) eventBody {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/events", token, map[string]any{
		"title":          "Beach cleanup",
		"description":    "Bring gloves",
		"date":           time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
		"time":           "09:00",
		"location":       "North beach",
		"category":       "Environment",
		"max_volunteers": capacity,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	return decode[eventEnvelope](t, body).Event
}

func TestE2EHealthAndAuth(t *testing.T) {
	env := setupE2E(t)

	status, body := env.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Contains(t, string(body), `"database":"up"`)

	status, body = env.do(t, http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "missing_token", decode[errorEnvelope](t, body).Error.Code)

	volunteer := env.register(t, "vera")
	assert.Equal(t, "volunteer", volunteer.User.Role)

	status, body = env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Vera Again",
		"email":    "VERA@helphands.test",
		"password": "another-secret",
	})
	require.Equal(t, http.StatusBadRequest, status, string(body))
	taken := decode[errorEnvelope](t, body)
	assert.Equal(t, "email_taken", taken.Error.Code)
	assert.Equal(t, "user already exists", taken.Message)

	admin := env.login(t, adminEmail, adminPassword)
	assert.Equal(t, "admin", admin.User.Role)

	status, body = env.do(t, http.MethodGet, "/api/auth/me", volunteer.Token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
}

func TestE2EConcurrentJoinsRespectCapacity(t *testing.T) {
	env := setupE2E(t)

	admin := env.login(t, adminEmail, adminPassword)
	event := env.createEvent(t, admin.Token, 3)

	const contenders = 8
	sessions := make([]session, contenders)
	for i := range sessions {
		sessions[i] = env.register(t, fmt.Sprintf("racer%d", i))
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		joined  int
		full    int
		unknown []int
	)
	for _, s := range sessions {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			status, body, err := env.send(http.MethodPost, "/api/events/"+event.ID+"/join", token, nil)

			var envelope errorEnvelope
			_ = json.Unmarshal(body, &envelope)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				unknown = append(unknown, 0)
			case status == http.StatusOK:
				joined++
			case status == http.StatusBadRequest && envelope.Error.Code == "event_full":
				full++
			default:
				unknown = append(unknown, status)
			}
		}(s.Token)
	}
	wg.Wait()

	assert.Empty(t, unknown)
	assert.Equal(t, 3, joined)
	assert.Equal(t, contenders-3, full)

	status, body := env.do(t, http.MethodGet, "/api/events/"+event.ID, "", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	got := decode[eventEnvelope](t, body).Event
	assert.Equal(t, 3, got.CurrentVolunteers)
	assert.True(t, got.IsFull)
	assert.Nil(t, got.IsJoined)

	status, body = env.do(t, http.MethodPut, "/api/events/"+event.ID, admin.Token, map[string]any{"max_volunteers": 2})
	require.Equal(t, http.StatusBadRequest, status, string(body))
	assert.Equal(t, "capacity_below_current", decode[errorEnvelope](t, body).Error.Code)
}

func TestE2EAnnouncementsAndCascade(t *testing.T) {
	env := setupE2E(t)

	admin := env.login(t, adminEmail, adminPassword)
	member := env.register(t, "mira")
	outsider := env.register(t, "otto")
	event := env.createEvent(t, admin.Token, 5)

	status, body := env.do(t, http.MethodPost, "/api/events/"+event.ID+"/join", member.Token, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = env.do(t, http.MethodPost, "/api/events/"+event.ID+"/announce", admin.Token, map[string]string{
		"message": "Meet at the pier",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	delivery := decode[struct {
		Announcement struct {
			ID     string `json:"id"`
			Title  string `json:"title"`
			SentTo int    `json:"sent_to"`
		} `json:"announcement"`
	}](t, body).Announcement
	assert.Equal(t, 1, delivery.SentTo)
	assert.Equal(t, "Announcement for Beach cleanup", delivery.Title)

	for i := 0; i < 2; i++ {
		status, body = env.do(t, http.MethodPost, "/api/announcements/"+delivery.ID+"/read", member.Token, nil)
		require.Equal(t, http.StatusOK, status, string(body))
	}

	status, body = env.do(t, http.MethodPost, "/api/announcements/"+delivery.ID+"/read", outsider.Token, nil)
	require.Equal(t, http.StatusForbidden, status, string(body))
	assert.Equal(t, "not_enrolled", decode[errorEnvelope](t, body).Error.Code)

	status, body = env.do(t, http.MethodGet, "/api/announcements/my-announcements", member.Token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	mine := decode[announcementsEnvelope](t, body)
	require.Equal(t, 1, mine.Count)
	assert.Equal(t, 1, mine.Announcements[0].ReadCount)
	require.NotNil(t, mine.Announcements[0].IsRead)
	assert.True(t, *mine.Announcements[0].IsRead)

	status, body = env.do(t, http.MethodGet, "/api/users/my-events", member.Token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, 1, decode[eventsEnvelope](t, body).Count)

	status, body = env.do(t, http.MethodDelete, "/api/events/"+event.ID, admin.Token, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	var remaining int64
	require.NoError(t, env.db.Table("announcements").Where("event_id = ?", event.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)
	require.NoError(t, env.db.Table("event_volunteers").Where("event_id = ?", event.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)

	status, _ = env.do(t, http.MethodGet, "/api/announcements/"+delivery.ID, admin.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
