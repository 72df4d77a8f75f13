package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"loginprobe/internal/attempt"
	"loginprobe/internal/config"
)

type consoleClient struct {
	t      *testing.T
	base   string
	client *http.Client
}

// newConsole serves the full router and talks to it with a cookie jar, so
// the session survives between calls like it does in a browser.
func newConsole(t *testing.T, a *app) *consoleClient {
	t.Helper()
	srv := httptest.NewServer(getLoginProbeRouter(a))
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &consoleClient{t: t, base: srv.URL, client: &http.Client{Jar: jar}}
}

func (c *consoleClient) do(method, path string, body any, out any) int {
	c.t.Helper()
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			c.t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.base+path, &payload)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (c *consoleClient) waitSettled() attempt.State {
	c.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		var st attempt.State
		c.do(http.MethodGet, "/api/attempt", nil, &st)
		if st.AttemptID != "" && !st.Loading {
			return st
		}
		time.Sleep(10 * time.Millisecond)
	}
	c.t.Fatalf("attempt did not settle")
	return attempt.State{}
}

func backendEnv(url string) map[string]string {
	return map[string]string{
		config.EXTRA_ENDPOINTS:  "Backend=" + url,
		config.DEFAULT_ENDPOINT: url,
	}
}

func TestAPIEndpointsListsCatalog(t *testing.T) {
	c := newConsole(t, newTestApp(t, nil))

	var out endpointsBody
	if code := c.do(http.MethodGet, "/api/endpoints", nil, &out); code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, code)
	}
	if out.Selected != "http://localhost" {
		t.Fatalf("expected default selection, got %q", out.Selected)
	}
	if len(out.Endpoints) != 4 {
		t.Fatalf("expected 4 preset endpoints, got %d", len(out.Endpoints))
	}
}

func TestAPISelectEndpointPersistsInSession(t *testing.T) {
	c := newConsole(t, newTestApp(t, nil))

	var out endpointsBody
	code := c.do(http.MethodPut, "/api/endpoint", map[string]string{"endpoint": "http://127.0.0.1"}, &out)
	if code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, code)
	}

	out = endpointsBody{}
	c.do(http.MethodGet, "/api/endpoints", nil, &out)
	if out.Selected != "http://127.0.0.1" {
		t.Fatalf("expected selection to persist, got %q", out.Selected)
	}
}

func TestAPISelectUnknownEndpoint(t *testing.T) {
	c := newConsole(t, newTestApp(t, nil))

	code := c.do(http.MethodPut, "/api/endpoint", map[string]string{"endpoint": "http://evil.example.com"}, nil)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, code)
	}
}

func TestAPISubmitAttemptSuccess(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"tok-123","user":{"id":1,"email":"a@b.c","nombre":"Ana"}}`))
	}))
	defer backend.Close()

	c := newConsole(t, newTestApp(t, backendEnv(backend.URL)))

	var submitted struct {
		AttemptID string `json:"attemptId"`
		LoginURL  string `json:"loginUrl"`
	}
	code := c.do(http.MethodPost, "/api/attempts", map[string]string{"email": "a@b.c", "password": "pw"}, &submitted)
	if code != http.StatusAccepted {
		t.Fatalf("expected status %d, got %d", http.StatusAccepted, code)
	}
	if submitted.AttemptID == "" || submitted.LoginURL != backend.URL+"/api/auth/login" {
		t.Fatalf("unexpected submit response %+v", submitted)
	}

	st := c.waitSettled()
	if st.AttemptID != submitted.AttemptID {
		t.Fatalf("expected state for %s, got %s", submitted.AttemptID, st.AttemptID)
	}
	if st.SuccessMessage != "Login succeeded! Token received" {
		t.Fatalf("unexpected success message %q", st.SuccessMessage)
	}
	if st.Result == nil || st.Result.Exchange == nil || st.Result.Exchange.Status != http.StatusOK {
		t.Fatalf("expected exchange snapshot, got %+v", st.Result)
	}

	var token struct {
		Key     string `json:"key"`
		Present bool   `json:"present"`
		JWT     bool   `json:"jwt"`
	}
	c.do(http.MethodGet, "/api/token", nil, &token)
	if !token.Present || token.Key != "auth_token" || token.JWT {
		t.Fatalf("expected opaque token stored, got %+v", token)
	}
}

func TestAPISubmitAttemptUnreachable(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	url := backend.URL
	backend.Close()

	c := newConsole(t, newTestApp(t, backendEnv(url)))

	if code := c.do(http.MethodPost, "/api/attempts", map[string]string{"email": "a@b.c", "password": "pw"}, nil); code != http.StatusAccepted {
		t.Fatalf("expected status %d, got %d", http.StatusAccepted, code)
	}
	st := c.waitSettled()
	if st.Result == nil || st.Result.Failure == nil || st.Result.Failure.Kind != attempt.KindNetwork {
		t.Fatalf("expected network failure, got %+v", st.Result)
	}

	var token struct {
		Present bool `json:"present"`
	}
	c.do(http.MethodGet, "/api/token", nil, &token)
	if token.Present {
		t.Fatalf("expected no token after a failed attempt")
	}
}

func TestAPISubmitAttemptValidation(t *testing.T) {
	c := newConsole(t, newTestApp(t, nil))

	code := c.do(http.MethodPost, "/api/attempts", map[string]string{"email": "a@b.c"}, nil)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, code)
	}
	var st attempt.State
	c.do(http.MethodGet, "/api/attempt", nil, &st)
	if st.AttemptID != "" {
		t.Fatalf("expected no attempt started, got %+v", st)
	}
}

func TestAPISubmitAttemptDropPolicy(t *testing.T) {
	release := make(chan struct{})
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"nope"}`))
	}))
	defer backend.Close()
	defer close(release)

	env := backendEnv(backend.URL)
	env[config.ATTEMPT_POLICY] = "drop"
	c := newConsole(t, newTestApp(t, env))

	creds := map[string]string{"email": "a@b.c", "password": "pw"}
	if code := c.do(http.MethodPost, "/api/attempts", creds, nil); code != http.StatusAccepted {
		t.Fatalf("expected first submit accepted, got %d", code)
	}
	if code := c.do(http.MethodPost, "/api/attempts", creds, nil); code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, code)
	}
}
