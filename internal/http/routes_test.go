package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mocksauth "github.com/ltm/adventcal/internal/mocks/auth"
	"github.com/ltm/adventcal/internal/service"
)

// testApp wires the full router against in-memory stores.
type testApp struct {
	router   http.Handler
	provider *mocksauth.FakeIdentityProvider
	users    *mocksauth.MemoryUserStore
	sessions *mocksauth.MemorySessionStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	provider := mocksauth.NewFakeIdentityProvider()
	users := mocksauth.NewMemoryUserStore()
	sessions := mocksauth.NewMemorySessionStore()

	authSvc := service.NewAuthService(service.AuthServiceOptions{
		Provider:      provider,
		Sessions:      sessions,
		Users:         users,
		StateKey:      testStateKey,
		AllowedEmails: []string{"user@example.com", "admin@example.com", "friend@example.com"},
	})

	router, err := NewRouter(RouterServices{
		Auth:         authSvc,
		Calendar:     service.NewCalendarService(mocksauth.NewMemoryCalendarStore()),
		Impersonator: service.NewImpersonator(impersonationKey()),
		AdminEmails:  []string{"admin@example.com"},
		Logger:       discardLogger(),
	})
	require.NoError(t, err)

	return &testApp{router: router, provider: provider, users: users, sessions: sessions}
}

// browser carries cookies across requests like a real user agent.
type browser struct {
	t       *testing.T
	app     *testApp
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, app *testApp) *browser {
	return &browser{t: t, app: app, cookies: make(map[string]*http.Cookie)}
}

type requestOptions struct {
	form url.Values
	htmx bool
	csrf bool
}

func (b *browser) do(method, target string, opts requestOptions) *httptest.ResponseRecorder {
	b.t.Helper()

	var body *strings.Reader
	if opts.form != nil {
		body = strings.NewReader(opts.form.Encode())
	} else {
		body = strings.NewReader("")
	}
	r := httptest.NewRequest(method, target, body)
	if opts.form != nil {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if opts.htmx {
		r.Header.Set("Hx-Request", "true")
	}
	if opts.csrf {
		if c, ok := b.cookies[csrfCookieName]; ok {
			r.Header.Set(csrfHeaderName, c.Value)
		}
	}
	for _, c := range b.cookies {
		r.AddCookie(c)
	}

	w := httptest.NewRecorder()
	b.app.router.ServeHTTP(w, r)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return w
}

// login drives the full authorization-code flow for the given email.
func (b *browser) login(email string) {
	b.t.Helper()
	b.app.provider.Identity.Email = email
	b.app.provider.Identity.Subject = "subject-" + email

	w := b.do(http.MethodGet, "/", requestOptions{})
	require.Equal(b.t, http.StatusFound, w.Code)

	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(b.t, err)
	state := location.Query().Get("state")
	require.NotEmpty(b.t, state)

	w = b.do(http.MethodGet, "/oauth/code?code=auth-code&state="+url.QueryEscape(state), requestOptions{})
	require.Equal(b.t, http.StatusFound, w.Code)
	require.Equal(b.t, "/", w.Header().Get("Location"))
	require.Contains(b.t, b.cookies, SessionCookieName)
}

func TestRouter_Healthz(t *testing.T) {
	app := newTestApp(t)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRouter_UnauthenticatedRedirectsToProvider(t *testing.T) {
	app := newTestApp(t)
	b := newBrowser(t, app)

	w := b.do(http.MethodGet, "/", requestOptions{})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), app.provider.AuthURL)
	assert.Contains(t, b.cookies, OAuthCSRFCookieName)
}

func TestRouter_UnauthenticatedHTMXGetsHXRedirect(t *testing.T) {
	app := newTestApp(t)
	b := newBrowser(t, app)

	w := b.do(http.MethodGet, "/", requestOptions{htmx: true})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Hx-Redirect"), app.provider.AuthURL)
}

func TestRouter_LoginFlow(t *testing.T) {
	app := newTestApp(t)
	b := newBrowser(t, app)
	b.login("user@example.com")

	// The csrf cookie for the OAuth flow is single-use.
	assert.NotContains(t, b.cookies, OAuthCSRFCookieName)

	w := b.do(http.MethodGet, "/", requestOptions{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user@example.com")
	assert.Contains(t, w.Body.String(), `id="day-1"`)
	assert.Equal(t, 1, app.users.Count())
}

func TestRouter_CallbackStateTampered(t *testing.T) {
	app := newTestApp(t)
	b := newBrowser(t, app)

	w := b.do(http.MethodGet, "/", requestOptions{})
	require.Equal(t, http.StatusFound, w.Code)
	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")

	// Flip one character of the state value.
	mutated := []byte(state)
	if mutated[0] == 'A' {
		mutated[0] = 'B'
	} else {
		mutated[0] = 'A'
	}

	w = b.do(http.MethodGet, "/oauth/code?code=auth-code&state="+url.QueryEscape(string(mutated)), requestOptions{})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, 0, app.users.Count())
	assert.Equal(t, 0, app.provider.ExchangeCalls)
}

func TestRouter_CallbackWithoutCSRFCookie(t *testing.T) {
	app := newTestApp(t)
	b := newBrowser(t, app)

	w := b.do(http.MethodGet, "/oauth/code?code=auth-code&state=whatever", requestOptions{})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_DisallowedEmail(t *testing.T) {
	app := newTestApp(t)
	b := newBrowser(t, app)
	app.provider.Identity.Email = "stranger@example.com"

	w := b.do(http.MethodGet, "/", requestOptions{})
	require.Equal(t, http.StatusFound, w.Code)
	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)

	w = b.do(http.MethodGet, "/oauth/code?code=auth-code&state="+url.QueryEscape(location.Query().Get("state")), requestOptions{})
	assert.Equal(t, http.StatusForbidden, w.Code)
	// The exchange itself happened exactly once; no user row was created.
	assert.Equal(t, 1, app.provider.ExchangeCalls)
	assert.Equal(t, 0, app.users.Count())
}

func TestRouter_OpenDayFlow(t *testing.T) {
	app := newTestApp(t)
	b := newBrowser(t, app)
	b.login("user@example.com")

	w := b.do(http.MethodPost, "/days/3/open", requestOptions{htmx: true, csrf: true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "message for day 3")

	w = b.do(http.MethodGet, "/days/3", requestOptions{htmx: true})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "message for day 3")

	// Unopened day surfaces an inline error, not an error status.
	w = b.do(http.MethodGet, "/days/4", requestOptions{htmx: true})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "has not been opened")

	w = b.do(http.MethodGet, "/days/99", requestOptions{htmx: true})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "no day 99")
}

func TestRouter_OpenDayRequiresCSRFToken(t *testing.T) {
	app := newTestApp(t)
	b := newBrowser(t, app)
	b.login("user@example.com")

	w := b.do(http.MethodPost, "/days/3/open", requestOptions{htmx: true})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_ImpersonationFlow(t *testing.T) {
	app := newTestApp(t)

	// The friend signs in on their own browser and opens day 2.
	friend := newBrowser(t, app)
	friend.login("friend@example.com")
	w := friend.do(http.MethodPost, "/days/2/open", requestOptions{htmx: true, csrf: true})
	require.Equal(t, http.StatusOK, w.Code)

	admin := newBrowser(t, app)
	admin.login("admin@example.com")

	w = admin.do(http.MethodPost, "/impersonate", requestOptions{
		form: url.Values{"email": {"friend@example.com"}},
		csrf: true,
	})
	require.Equal(t, http.StatusFound, w.Code)
	require.Contains(t, admin.cookies, ImpersonationCookieName)

	// The admin now sees the friend's data.
	w = admin.do(http.MethodGet, "/", requestOptions{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Viewing as friend@example.com")

	w = admin.do(http.MethodGet, "/days/2", requestOptions{htmx: true})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "message for day 2")

	// Stopping restores the admin's own view.
	w = admin.do(http.MethodPost, "/impersonate/stop", requestOptions{csrf: true})
	require.Equal(t, http.StatusFound, w.Code)
	assert.NotContains(t, admin.cookies, ImpersonationCookieName)

	w = admin.do(http.MethodGet, "/days/2", requestOptions{htmx: true})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "has not been opened")
}

func TestRouter_ImpersonationRequiresAdmin(t *testing.T) {
	app := newTestApp(t)
	b := newBrowser(t, app)
	b.login("user@example.com")

	w := b.do(http.MethodPost, "/impersonate", requestOptions{
		form: url.Values{"email": {"friend@example.com"}},
		csrf: true,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_ImpersonateUnknownEmail(t *testing.T) {
	app := newTestApp(t)
	b := newBrowser(t, app)
	b.login("admin@example.com")

	w := b.do(http.MethodPost, "/impersonate", requestOptions{
		form: url.Values{"email": {"ghost@example.com"}},
		csrf: true,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ghost@example.com")
	assert.NotContains(t, b.cookies, ImpersonationCookieName)
}

func TestRouter_TamperedImpersonationCookieFailsClosed(t *testing.T) {
	app := newTestApp(t)
	b := newBrowser(t, app)
	b.login("admin@example.com")
	b.cookies[ImpersonationCookieName] = &http.Cookie{
		Name:  ImpersonationCookieName,
		Value: "not-a-real-token",
	}

	// The request still succeeds as the admin's own identity.
	w := b.do(http.MethodGet, "/", requestOptions{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Viewing as")
	assert.NotContains(t, b.cookies, ImpersonationCookieName)
}

func TestRouter_Logout(t *testing.T) {
	app := newTestApp(t)
	b := newBrowser(t, app)
	b.login("user@example.com")
	require.Equal(t, 1, app.sessions.Len())

	w := b.do(http.MethodGet, "/logout", requestOptions{})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.NotContains(t, b.cookies, SessionCookieName)
	assert.Equal(t, 0, app.sessions.Len())

	// Back to the provider on the next visit.
	w = b.do(http.MethodGet, "/", requestOptions{})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), app.provider.AuthURL)
}
