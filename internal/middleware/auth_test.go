package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winsales/internal/access"
)

const testSecret = "test-secret"

var issuedAt = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func testGate(now time.Time) *Gate {
	g := NewGate(testSecret, 24*time.Hour)
	g.now = func() time.Time { return now }
	return g
}

func TestSessionCookieRoundTrip(t *testing.T) {
	in := access.Session{UserID: "u-1", Name: "Ana | Torres", Email: "ana@win.pe", Role: access.RoleAdvisor}
	cookie := CreateSessionCookie(in, testSecret, time.Hour, false, issuedAt)

	out, err := ValidateSessionCookie(cookie, testSecret, time.Hour, issuedAt.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, in, *out)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)
}

func TestValidateSessionCookieRejects(t *testing.T) {
	good := CreateSessionCookie(access.Session{UserID: "u-1", Role: access.RoleAdmin}, testSecret, time.Hour, false, issuedAt)

	tampered := *good
	tampered.Value = strings.Replace(good.Value, "|admin|", "|asesor|", 1)

	tests := []struct {
		name   string
		cookie *http.Cookie
		secret string
		now    time.Time
		want   error
	}{
		{"nil cookie", nil, testSecret, issuedAt, ErrNoSession},
		{"garbage", &http.Cookie{Value: "abc"}, testSecret, issuedAt, ErrInvalidSession},
		{"wrong secret", good, "other", issuedAt, ErrInvalidSignature},
		{"tampered role", &tampered, testSecret, issuedAt, ErrInvalidSignature},
		{"expired", good, testSecret, issuedAt.Add(2 * time.Hour), ErrSessionExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateSessionCookie(tt.cookie, tt.secret, time.Hour, tt.now)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func requestWith(g *Gate, s *access.Session, path string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if s != nil {
		req.AddCookie(g.Issue(*s, false))
	}
	return req
}

func TestRequireRole(t *testing.T) {
	g := testGate(issuedAt)
	var seen *access.Session
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := g.RequireRole(access.RoleSupervisor)(ok)

	tests := []struct {
		name     string
		session  *access.Session
		status   int
		location string
	}{
		{"anonymous goes to login", nil, http.StatusFound, "/login"},
		{"advisor goes home", &access.Session{UserID: "a", Role: access.RoleAdvisor}, http.StatusFound, "/dashboard"},
		{"admin goes to admin", &access.Session{UserID: "x", Role: access.RoleAdmin}, http.StatusFound, "/admin"},
		{"backoffice goes home", &access.Session{UserID: "b", Role: access.RoleBackoffice}, http.StatusFound, "/dashboard/backoffice"},
		{"supervisor passes", &access.Session{UserID: "s", Role: access.RoleSupervisor}, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, requestWith(g, tt.session, "/dashboard/supervisor"))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
			if tt.status == http.StatusOK {
				require.NotNil(t, seen)
				assert.Equal(t, tt.session.UserID, seen.UserID)
			}
		})
	}
}

func TestRequireRoleNeverRedirectsToItself(t *testing.T) {
	g := testGate(issuedAt)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := g.RequireRole(access.RoleAdvisor, access.RoleAdmin)(ok)

	for _, path := range []string{"/dashboard", "/dashboard/leads"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, requestWith(g, &access.Session{UserID: "u", Role: access.Role("user")}, path))

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/login", rec.Header().Get("Location"))
			assert.NotEqual(t, path, rec.Header().Get("Location"))

			cookies := rec.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, SessionCookieName, cookies[0].Name)
			assert.Equal(t, -1, cookies[0].MaxAge)
		})
	}
}

func TestResolveSessionIsPure(t *testing.T) {
	g := testGate(issuedAt)
	req := requestWith(g, &access.Session{UserID: "u", Role: access.RoleAdvisor}, "/")

	first, ok1 := g.ResolveSession(req)
	second, ok2 := g.ResolveSession(req)
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, first, second)

	_, ok := g.ResolveSession(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}

func TestRequireAuthJSON(t *testing.T) {
	g := testGate(issuedAt)
	handler := g.RequireAuthJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/agenda/slot", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "No autorizado")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWith(g, &access.Session{UserID: "u", Role: access.RoleAdvisor}, "/api/agenda/slot"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
