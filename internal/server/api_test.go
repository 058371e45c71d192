package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskly/configs"
	"taskly/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiResponse struct {
	Message string          `json:"message"`
	Success bool            `json:"success"`
	Status  int             `json:"status"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) api(t *testing.T, method, target, token string, body any) (int, apiResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (e *testEnv) token(t *testing.T, username string) string {
	t.Helper()
	status, resp := e.api(t, http.MethodPost, "/api/v1/token", "",
		map[string]string{"username": username, "password": testPassword})
	require.Equal(t, http.StatusOK, status, resp.Message)

	var data struct {
		Token  string `json:"token"`
		UserID int64  `json:"user_id"`
		Role   string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestAPITokenRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice", models.RoleMember)

	status, resp := env.api(t, http.MethodPost, "/api/v1/token", "",
		map[string]string{"username": "alice", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, resp.Success)

	status, _ = env.api(t, http.MethodPost, "/api/v1/token", "", map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPIListTasks(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", models.RoleMember)
	bob := env.seedUser(t, "bob", models.RoleMember)
	env.seedUser(t, "root", models.RoleAdmin)
	env.seedTask(t, alice, "Alice task")
	env.seedTask(t, bob, "Bob task")

	var tasks []models.TaskView
	status, resp := env.api(t, http.MethodGet, "/api/v1/tasks", env.token(t, "alice"), nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(resp.Data, &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "Alice task", tasks[0].Title)
	assert.Nil(t, tasks[0].DueDate)

	status, resp = env.api(t, http.MethodGet, "/api/v1/tasks", env.token(t, "root"), nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(resp.Data, &tasks))
	assert.Len(t, tasks, 2)
}

func TestAPIRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.api(t, http.MethodGet, "/api/v1/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.api(t, http.MethodGet, "/api/v1/tasks", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPIGetTask(t *testing.T) {
	env := newTestEnv(t, func(c *configs.Config) { c.EnforceOwnership = true })
	alice := env.seedUser(t, "alice", models.RoleMember)
	env.seedUser(t, "bob", models.RoleMember)
	env.seedUser(t, "root", models.RoleAdmin)
	task := env.seedTask(t, alice, "Alice task")
	target := fmt.Sprintf("/api/v1/tasks/%d", task.ID)

	status, resp := env.api(t, http.MethodGet, target, env.token(t, "alice"), nil)
	require.Equal(t, http.StatusOK, status)
	var view models.TaskView
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.Equal(t, task.ID, view.ID)

	status, _ = env.api(t, http.MethodGet, target, env.token(t, "bob"), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.api(t, http.MethodGet, target, env.token(t, "root"), nil)
	assert.Equal(t, http.StatusOK, status)

	status, resp = env.api(t, http.MethodGet, "/api/v1/tasks/999", env.token(t, "alice"), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, resp.Success)
}

func TestAPICreateTaskOwnerComesFromToken(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", models.RoleMember)
	bob := env.seedUser(t, "bob", models.RoleMember)

	status, resp := env.api(t, http.MethodPost, "/api/v1/tasks", env.token(t, "alice"), map[string]any{
		"title":    "Buy milk",
		"content":  "2 litres",
		"due_date": "2030-01-02T09:30",
		"user_id":  bob.ID,
	})
	require.Equal(t, http.StatusCreated, status, resp.Message)
	assert.True(t, resp.Success)

	var view models.TaskView
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.Equal(t, alice.ID, view.UserID)
	assert.Equal(t, "Buy milk", view.Title)
	require.NotNil(t, view.DueDate)
	assert.Equal(t, 9, view.DueDate.Hour())

	stored, err := env.tasks.Get(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, stored.UserID)
}

func TestAPICreateTaskValidation(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice", models.RoleMember)
	token := env.token(t, "alice")

	status, resp := env.api(t, http.MethodPost, "/api/v1/tasks", token, map[string]string{"title": "  "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, resp.Success)

	status, _ = env.api(t, http.MethodPost, "/api/v1/tasks", token,
		map[string]string{"title": "Buy milk", "due_date": "tomorrow-ish"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 0, env.tasks.count())
}

func TestAPIUpdateTaskKeepsIdentity(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", models.RoleMember)
	task := env.seedTask(t, alice, "Buy milk")
	target := fmt.Sprintf("/api/v1/tasks/%d", task.ID)

	status, resp := env.api(t, http.MethodPut, target, env.token(t, "alice"),
		map[string]any{"title": "Buy oat milk", "content": "", "id": 999, "user_id": 999})
	require.Equal(t, http.StatusOK, status, resp.Message)

	stored, err := env.tasks.Get(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", stored.Title)
	assert.Equal(t, alice.ID, stored.UserID)
	assert.Equal(t, 1, env.tasks.count())

	status, _ = env.api(t, http.MethodPut, "/api/v1/tasks/999", env.token(t, "alice"),
		map[string]string{"title": "Nope"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPIDeleteTask(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", models.RoleMember)
	task := env.seedTask(t, alice, "Buy milk")
	target := fmt.Sprintf("/api/v1/tasks/%d", task.ID)
	token := env.token(t, "alice")

	status, resp := env.api(t, http.MethodDelete, target, token, nil)
	require.Equal(t, http.StatusOK, status, resp.Message)
	assert.Equal(t, 0, env.tasks.count())

	status, _ = env.api(t, http.MethodGet, target, token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = env.api(t, http.MethodDelete, target, token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPIWritesFollowOwnershipRule(t *testing.T) {
	env := newTestEnv(t, func(c *configs.Config) { c.EnforceOwnership = true })
	alice := env.seedUser(t, "alice", models.RoleMember)
	env.seedUser(t, "bob", models.RoleMember)
	env.seedUser(t, "root", models.RoleAdmin)
	task := env.seedTask(t, alice, "Buy milk")
	target := fmt.Sprintf("/api/v1/tasks/%d", task.ID)
	bob := env.token(t, "bob")

	status, _ := env.api(t, http.MethodPut, target, bob, map[string]string{"title": "Hijacked"})
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = env.api(t, http.MethodDelete, target, bob, nil)
	assert.Equal(t, http.StatusNotFound, status)

	stored, err := env.tasks.Get(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", stored.Title)

	status, _ = env.api(t, http.MethodPut, target, env.token(t, "root"), map[string]string{"title": "Moderated"})
	assert.Equal(t, http.StatusOK, status)
}
