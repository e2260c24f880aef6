package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeGoTrue(t *testing.T) *SupabaseClient {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/signup", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		// email confirmation pending: user only, no session
		_, _ = w.Write([]byte(`{"id":"u-new","email":"new@example.com"}`))
	})
	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "right" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600,"user":{"id":"u-1","email":"coach@example.com"}}`))
	})
	mux.HandleFunc("/auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"msg":"invalid JWT"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"u-1","email":"coach@example.com"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewSupabaseClient(srv.URL, "anon-key")
}

func TestSupabaseClient(t *testing.T) {
	ctx := context.Background()
	c := fakeGoTrue(t)

	sess, err := c.SignUp(ctx, "new@example.com", "pw")
	require.NoError(t, err)
	assert.Empty(t, sess.AccessToken)
	assert.Equal(t, "u-new", sess.User.ID)

	sess, err = c.SignIn(ctx, "coach@example.com", "right")
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.AccessToken)

	user, err := c.GetUser(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "coach@example.com", user.Email)

	_, err = c.GetUser(ctx, "stale")
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 401, perr.Status)
	assert.Equal(t, "invalid JWT", perr.Message)
}

func TestAuthRoutes(t *testing.T) {
	svc := NewAuthService(fakeGoTrue(t))
	app := newTestApp()
	app.Post("/auth/signin", svc.SignIn)
	app.Post("/auth/signup", svc.SignUp)

	post := func(path, body string) (int, string) {
		req := httptest.NewRequest("POST", path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, out := doRequest(t, app, req)
		return resp.StatusCode, out
	}

	status, body := post("/auth/signin", `{"email":"coach@example.com","password":"wrong"}`)
	assert.Equal(t, 400, status)
	assert.JSONEq(t, `{"error":"Invalid login credentials"}`, body)

	status, body = post("/auth/signin", `{"email":"coach@example.com","password":"right"}`)
	assert.Equal(t, 200, status)
	assert.Contains(t, body, `"access_token":"tok"`)

	status, _ = post("/auth/signup", `{"email":"","password":"x"}`)
	assert.Equal(t, 400, status)
}
