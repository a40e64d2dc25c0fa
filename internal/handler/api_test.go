package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/habit-tracker/internal/model"
)

// apiClient ходит в API с токеном в заголовке, без cookie
type apiClient struct {
	env   *testEnv
	token string
	http  *http.Client
}

func (e *testEnv) login(t *testing.T, email string) *apiClient {
	t.Helper()
	c := &apiClient{env: e, http: &http.Client{Timeout: 10 * time.Second}}
	resp := c.do(t, http.MethodPost, "/api/login", map[string]string{"email": email, "password": "password123"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out loginResponse
	decode(t, resp, &out)
	require.NotEmpty(t, out.Token)
	assert.Equal(t, email, out.User.Email)
	c.token = out.Token
	return c
}

func (c *apiClient) do(t *testing.T, method, path string, body interface{}, header map[string]string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.env.url(path), &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := c.http.Do(req)
	require.NoError(t, err)
	return resp
}

func TestAPI_Tasks(t *testing.T) {
	env, cleanup := setupServer(t)
	defer cleanup()

	env.register(t, "alice@example.com")
	env.register(t, "bob@example.com")
	alice := env.login(t, "alice@example.com")
	bob := env.login(t, "bob@example.com")

	t.Run("login with wrong password", func(t *testing.T) {
		c := &apiClient{env: env, http: &http.Client{Timeout: 10 * time.Second}}
		resp := c.do(t, http.MethodPost, "/api/login", map[string]string{"email": "alice@example.com", "password": "nope"}, nil)
		body := readBody(t, resp)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "Invalid email or password.")
	})

	t.Run("no token", func(t *testing.T) {
		c := &apiClient{env: env, http: &http.Client{Timeout: 10 * time.Second}}
		resp := c.do(t, http.MethodGet, "/api/tasks", nil, nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	var created model.Task
	t.Run("create is idempotent by key", func(t *testing.T) {
		key := map[string]string{"Idempotency-Key": "sync-1"}
		resp := alice.do(t, http.MethodPost, "/api/tasks", map[string]string{"title": "Run 5k"}, key)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		decode(t, resp, &created)
		assert.Equal(t, "/api/tasks/"+itoa(created.ID), resp.Header.Get("Location"))
		assert.Equal(t, model.PinNone, created.PinStatus)
		assert.False(t, created.Completed)

		resp = alice.do(t, http.MethodPost, "/api/tasks", map[string]string{"title": "Run 5k"}, key)
		var again model.Task
		decode(t, resp, &again)
		assert.Equal(t, created.ID, again.ID)

		var listing struct {
			Tasks []model.Task `json:"tasks"`
		}
		decode(t, alice.do(t, http.MethodGet, "/api/tasks", nil, nil), &listing)
		assert.Len(t, listing.Tasks, 1)
	})

	t.Run("same key from another user does not leak", func(t *testing.T) {
		resp := bob.do(t, http.MethodPost, "/api/tasks", map[string]string{"title": "Bob's own"},
			map[string]string{"Idempotency-Key": "sync-1"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var got model.Task
		decode(t, resp, &got)
		assert.NotEqual(t, created.ID, got.ID)
		assert.Equal(t, "Bob's own", got.Title)
	})

	t.Run("empty body", func(t *testing.T) {
		resp := alice.do(t, http.MethodPost, "/api/tasks", nil, nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("empty title", func(t *testing.T) {
		resp := alice.do(t, http.MethodPost, "/api/tasks", map[string]string{"title": "  "}, nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("other user cannot read or complete", func(t *testing.T) {
		path := "/api/tasks/" + itoa(created.ID)
		resp := bob.do(t, http.MethodGet, path, nil, nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = bob.do(t, http.MethodPatch, path, nil, nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		var listing struct {
			Tasks []model.Task `json:"tasks"`
		}
		decode(t, bob.do(t, http.MethodGet, "/api/tasks", nil, nil), &listing)
		for _, task := range listing.Tasks {
			assert.NotEqual(t, created.ID, task.ID)
		}
	})

	t.Run("patch completes", func(t *testing.T) {
		resp := alice.do(t, http.MethodPatch, "/api/tasks/"+itoa(created.ID), nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var done model.Task
		decode(t, resp, &done)
		assert.True(t, done.Completed)
	})

	t.Run("payload without ipfs copy", func(t *testing.T) {
		resp := alice.do(t, http.MethodGet, "/api/tasks/"+itoa(created.ID)+"/payload", nil, nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("profiles", func(t *testing.T) {
		aliceID := env.userID(t, "alice@example.com")
		bobID := env.userID(t, "bob@example.com")

		resp := alice.do(t, http.MethodGet, "/api/users/"+itoa(aliceID), nil, nil)
		var u model.User
		require.Equal(t, http.StatusOK, resp.StatusCode)
		decode(t, resp, &u)
		assert.Equal(t, "alice@example.com", u.Email)

		resp = alice.do(t, http.MethodGet, "/api/users/"+itoa(bobID), nil, nil)
		body := readBody(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.NotContains(t, body, "password")
	})

	t.Run("logout invalidates the token", func(t *testing.T) {
		resp := bob.do(t, http.MethodPost, "/api/logout", nil, nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = bob.do(t, http.MethodGet, "/api/tasks", nil, nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestPublic_Endpoints(t *testing.T) {
	env, cleanup := setupServer(t)
	defer cleanup()
	c := newClient(t)

	t.Run("analytics", func(t *testing.T) {
		for path, msg := range map[string]string{
			"/analytics/dau":           "DAU Analytics",
			"/analytics/tasks_per_day": "Tasks per Day Analytics",
			"/analytics/retention":     "4-Week Retention Analytics",
		} {
			var out map[string]string
			resp := env.get(t, c, path)
			require.Equal(t, http.StatusOK, resp.StatusCode, path)
			decode(t, resp, &out)
			assert.Equal(t, msg, out["message"])
		}
	})

	t.Run("referral", func(t *testing.T) {
		var out map[string]string
		decode(t, env.get(t, c, "/referral/5"), &out)
		assert.Equal(t, "Referral for user 5", out["message"])
		assert.True(t, strings.HasPrefix(out["link"], "http://localhost:8080/referral?user_id=5&code="))
		assert.Len(t, strings.TrimPrefix(out["link"], "http://localhost:8080/referral?user_id=5&code="), 8)
	})

	t.Run("referral with bad id", func(t *testing.T) {
		resp := env.get(t, c, "/referral/abc")
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	post := func(t *testing.T, body string) *http.Response {
		t.Helper()
		resp, err := c.Post(env.url("/sync_tasks"), "application/json", strings.NewReader(body))
		require.NoError(t, err)
		return resp
	}

	t.Run("sync accepts a batch", func(t *testing.T) {
		resp := post(t, `{"tasks":[{"title":"Offline task","completed":false}]}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out map[string]interface{}
		decode(t, resp, &out)
		assert.Equal(t, "success", out["status"])
		assert.EqualValues(t, 1, out["received"])
	})

	t.Run("sync rejects bad documents", func(t *testing.T) {
		for _, body := range []string{`not json`, `{}`, `{"tasks":[{"completed":true}]}`} {
			resp := post(t, body)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		}
	})

	t.Run("sync rejects huge bodies", func(t *testing.T) {
		resp := post(t, `{"tasks":[{"title":"`+strings.Repeat("x", maxSyncBody)+`"}]}`)
		resp.Body.Close()
		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	})

	var count int
	require.NoError(t, env.pool.QueryRow(t.Context(), "SELECT COUNT(*) FROM tasks").Scan(&count))
	assert.Equal(t, 0, count, "synced tasks are not stored")
}
