package router

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ljosc/discuss/internal/config"
	"github.com/ljosc/discuss/internal/domain"
	"github.com/ljosc/discuss/internal/forumtest"
	"github.com/ljosc/discuss/internal/middleware"
	"github.com/ljosc/discuss/internal/setup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	forum  *forumtest.Server
	deps   *setup.Dependencies
	server *httptest.Server
	client *http.Client
}

func newEnv(t *testing.T) *env {
	t.Helper()
	forum := forumtest.New()
	t.Cleanup(forum.Close)
	forum.AddUser("ann", "ann@example.com", "password1")

	cfg := config.Default()
	cfg.APIURL = forum.URL
	cfg.PollInterval = time.Hour
	cfg.AllowedOrigins = []string{"http://localhost:3000"}
	deps, err := setup.SetupDependencies(cfg, true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = deps.Close() })

	server := httptest.NewServer(New(deps))
	t.Cleanup(server.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &env{forum: forum, deps: deps, server: server, client: client}
}

func (e *env) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *env) get(t *testing.T, path string) *http.Response {
	req, err := http.NewRequest(http.MethodGet, e.server.URL+path, nil)
	require.NoError(t, err)
	return e.do(t, req)
}

// csrfToken returns the token cookie, fetching the login page first if
// none was issued yet.
func (e *env) csrfToken(t *testing.T) string {
	t.Helper()
	u, err := url.Parse(e.server.URL)
	require.NoError(t, err)
	for range 2 {
		for _, c := range e.client.Jar.Cookies(u) {
			if c.Name == "csrf_token" {
				return c.Value
			}
		}
		e.get(t, "/login")
	}
	t.Fatal("no csrf cookie issued")
	return ""
}

func (e *env) login(t *testing.T) {
	t.Helper()
	resp, err := e.client.PostForm(e.server.URL+"/login", url.Values{
		"mode": {"login"}, "email": {"ann@example.com"}, "password": {"password1"},
		middleware.CSRFFormField: {e.csrfToken(t)},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.True(t, e.deps.Monitor.Session().IsLoggedIn())
}

func TestPagesMatchRoutes(t *testing.T) {
	e := newEnv(t)
	mux := New(e.deps)
	for _, p := range Pages {
		assert.True(t, mux.Match(chi.NewRouteContext(), http.MethodGet, p.Pattern) ||
			mux.Match(chi.NewRouteContext(), http.MethodPost, p.Pattern), p.Pattern)
	}
}

func TestGuardedNavigation(t *testing.T) {
	e := newEnv(t)

	resp := e.get(t, "/thread/abc")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	var returnTo string
	for _, c := range resp.Cookies() {
		if c.Name == middleware.ReturnToCookie {
			returnTo = c.Value
		}
	}
	assert.Equal(t, "/thread/abc", returnTo)

	resp = e.get(t, "/signup")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp = e.get(t, "/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))

	resp = e.get(t, "/no/such/page")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	e.login(t)
	resp = e.get(t, "/login")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestWrongMethodOnPageIsNotFound(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	for _, path := range []string{"/compose", "/thread/abc/reply", "/thread/abc/like", "/logout"} {
		resp := e.get(t, path)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
	assert.True(t, e.deps.Monitor.Session().IsLoggedIn(), "GET /logout must not log out")
}

func TestShellPingsOncePerSession(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	for range 3 {
		resp := e.get(t, "/")
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.Len(t, e.forum.Calls(http.MethodGet, "/ping"), 1)
}

func TestRejectedTokenLogsOut(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	require.Equal(t, http.StatusOK, e.get(t, "/").StatusCode)

	token, ok, err := e.deps.Store.Get(domain.AccessToken)
	require.NoError(t, err)
	require.True(t, ok)
	e.forum.Revoke(token)

	e.get(t, "/?filter=top")
	assert.False(t, e.deps.Monitor.Session().IsLoggedIn())

	resp := e.get(t, "/")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestStateEndpointCORS(t *testing.T) {
	e := newEnv(t)

	req, err := http.NewRequest(http.MethodGet, e.server.URL+"/api/state", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp := e.do(t, req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"isLoggedIn":false,"profile":null}`, string(body))

	req, err = http.NewRequest(http.MethodGet, e.server.URL+"/api/state", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://evil.example")
	resp = e.do(t, req)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestPostWithoutCSRFTokenIsRejected(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	resp, err := e.client.PostForm(e.server.URL+"/logout", url.Values{})
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.True(t, e.deps.Monitor.Session().IsLoggedIn())
}

func TestMetricsEndpoint(t *testing.T) {
	e := newEnv(t)
	e.get(t, "/login")

	resp := e.get(t, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "discuss_http_requests_total")
}
