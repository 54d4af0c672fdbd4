package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stuverse/visavault/internal/config"
	"github.com/stuverse/visavault/internal/crypto"
	"github.com/stuverse/visavault/internal/events"
	"github.com/stuverse/visavault/internal/server"
	"github.com/stuverse/visavault/internal/services/auth"
	"github.com/stuverse/visavault/internal/services/documents"
	"github.com/stuverse/visavault/internal/services/journey"
	"github.com/stuverse/visavault/internal/services/notify"
	"github.com/stuverse/visavault/internal/storage"
	"github.com/stuverse/visavault/internal/store"
)

type testEnv struct {
	server  *httptest.Server
	objects *storage.MockStore
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, nil)
}

func newTestEnvWith(t *testing.T, tweak func(*config.ServerConfig)) *testEnv {
	t.Helper()

	logger := events.NewTestLogger(nil)

	st, err := store.New(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	objects := storage.NewMockStore()

	codec, err := crypto.NewArtifactCodec("server-test-secret")
	require.NoError(t, err)

	authCfg := &config.AuthConfig{
		AllowedEmailDomains: []string{"edu"},
		SessionTTL:          time.Hour,
		BcryptCost:          bcrypt.MinCost,
	}
	authSvc := auth.NewService(st, authCfg, logger)

	provider := crypto.NewProviderWithIterations(1000)
	docSvc := documents.NewService(provider, st, objects, codec, nil, logger)

	notifySvc := notify.NewService(st, logger)
	journeySvc := journey.NewService(st, notifySvc, logger)

	serverCfg := config.DefaultConfig().Server
	if tweak != nil {
		tweak(&serverCfg)
	}
	srv := server.New(&serverCfg, authSvc, docSvc, journeySvc, notifySvc, logger)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{server: ts, objects: objects}
}

func (e *testEnv) postJSON(t *testing.T, path, token string, body interface{}) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) get(t *testing.T, path, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, e.server.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) registerAndLogin(t *testing.T, email, password string) string {
	t.Helper()

	resp := e.postJSON(t, "/api/register", "", map[string]string{
		"email":    email,
		"name":     "Test Student",
		"password": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = e.postJSON(t, "/api/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	var result struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.NotEmpty(t, result.Token)
	return result.Token
}

func (e *testEnv) upload(t *testing.T, token, password, kind string, content []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("password", password))
	require.NoError(t, w.WriteField("kind", kind))

	fw, err := w.CreateFormFile("file", "passport.pdf")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, e.server.URL+"/api/documents", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)

	t.Run("non-university email rejected", func(t *testing.T) {
		resp := env.postJSON(t, "/api/register", "", map[string]string{
			"email":    "student@gmail.com",
			"password": "Str0ng!Pass99",
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		env.registerAndLogin(t, "dup@college.edu", "Str0ng!Pass99")

		resp := env.postJSON(t, "/api/register", "", map[string]string{
			"email":    "dup@college.edu",
			"password": "Other!Pass99",
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/api/documents", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.get(t, "/api/documents", "bogus-token")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUploadDownloadFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "student@college.edu", "Str0ng!Pass99")

	content := []byte("hello world")

	resp := env.upload(t, token, "Str0ng!Pass99", "passport", content)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var doc struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	resp.Body.Close()
	require.NotEmpty(t, doc.ID)

	t.Run("download with correct password", func(t *testing.T) {
		resp := env.postJSON(t, "/api/documents/"+doc.ID+"/download", token,
			map[string]string{"password": "Str0ng!Pass99"})
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		got, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, content, got)
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "passport.pdf")
	})

	t.Run("download with wrong password", func(t *testing.T) {
		resp := env.postJSON(t, "/api/documents/"+doc.ID+"/download", token,
			map[string]string{"password": "wrong"})
		defer resp.Body.Close()
		require.Equal(t, http.StatusForbidden, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		// The client-facing message never distinguishes wrong password
		// from corruption, and never leaks cipher internals.
		assert.Contains(t, string(body), "incorrect password or corrupted data")
		assert.NotContains(t, string(body), "cipher")
		assert.NotContains(t, string(body), "gcm")
	})

	t.Run("list shows the document", func(t *testing.T) {
		resp := env.get(t, "/api/documents", token)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result struct {
			Documents []struct {
				ID   string `json:"id"`
				Kind string `json:"kind"`
			} `json:"documents"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		require.Len(t, result.Documents, 1)
		assert.Equal(t, "passport", result.Documents[0].Kind)
	})

	t.Run("delete removes record and blob", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodDelete, env.server.URL+"/api/documents/"+doc.ID, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, 0, env.objects.Len())
	})
}

func TestUpload_RejectsMistypedPassword(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "student@college.edu", "Str0ng!Pass99")

	// Logged in, but the upload password doesn't match the account
	// password: reject before encrypting anything.
	resp := env.upload(t, token, "typo-password", "passport", []byte("data"))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, env.objects.Len())
}

func TestUpload_TooLarge(t *testing.T) {
	env := newTestEnvWith(t, func(cfg *config.ServerConfig) {
		cfg.MaxUploadBytes = 1024
	})
	token := env.registerAndLogin(t, "student@college.edu", "Str0ng!Pass99")

	resp := env.upload(t, token, "Str0ng!Pass99", "passport", bytes.Repeat([]byte("a"), 4096))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, 0, env.objects.Len())
}

func TestUpload_UnknownKind(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "student@college.edu", "Str0ng!Pass99")

	resp := env.upload(t, token, "Str0ng!Pass99", "tax_return", []byte("data"))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDownload_OtherUsersDocument(t *testing.T) {
	env := newTestEnv(t)
	owner := env.registerAndLogin(t, "owner@college.edu", "Str0ng!Pass99")
	intruder := env.registerAndLogin(t, "intruder@college.edu", "Other!Pass99")

	resp := env.upload(t, owner, "Str0ng!Pass99", "i20", []byte("secret"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var doc struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	resp.Body.Close()

	dl := env.postJSON(t, "/api/documents/"+doc.ID+"/download", intruder,
		map[string]string{"password": "Other!Pass99"})
	defer dl.Body.Close()
	assert.Equal(t, http.StatusNotFound, dl.StatusCode)
}

func TestJourneyFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "student@college.edu", "Str0ng!Pass99")

	resp := env.postJSON(t, "/api/journey/i20-issued/complete", token, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.postJSON(t, "/api/journey/not-a-stage/complete", token, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.get(t, "/api/journey", token)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Stages []struct {
			Slug      string `json:"slug"`
			Completed bool   `json:"completed"`
		} `json:"stages"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.NotEmpty(t, result.Stages)
	assert.Equal(t, "i20-issued", result.Stages[0].Slug)
	assert.True(t, result.Stages[0].Completed)
	assert.False(t, result.Stages[1].Completed)

	// Stage completion produced a notification.
	resp = env.get(t, "/api/notifications?unread=1", token)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var notifications struct {
		Notifications []struct {
			Title string `json:"title"`
		} `json:"notifications"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&notifications))
	require.Len(t, notifications.Notifications, 1)
	assert.Contains(t, notifications.Notifications[0].Title, "I-20")
}

func TestNotificationsMarkRead(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "student@college.edu", "Str0ng!Pass99")

	resp := env.postJSON(t, "/api/journey/sevis-fee/complete", token, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.postJSON(t, "/api/notifications/read", token, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.get(t, "/api/notifications?unread=1", token)
	defer resp.Body.Close()

	var notifications struct {
		Notifications []json.RawMessage `json:"notifications"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&notifications))
	assert.Empty(t, notifications.Notifications)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "student@college.edu", "Str0ng!Pass99")

	resp := env.postJSON(t, "/api/logout", token, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.get(t, "/api/documents", token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
