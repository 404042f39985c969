package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"winsales/internal/access"
)

const SessionCookieName = "winsales_session"

type contextKey string

const sessionKey contextKey = "session"

var (
	ErrNoSession        = errors.New("no session cookie")
	ErrInvalidSession   = errors.New("invalid session format")
	ErrInvalidSignature = errors.New("invalid session signature")
	ErrSessionExpired   = errors.New("session expired")
)

var enc = base64.RawURLEncoding

func sign(value, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(value))
	return enc.EncodeToString(mac.Sum(nil))
}

// CreateSessionCookie encodes "id|name|email|role|issuedAt|sig" with every text field base64url-encoded
// so separators inside names cannot shift fields.
func CreateSessionCookie(s access.Session, secret string, ttl time.Duration, secure bool, now time.Time) *http.Cookie {
	value := strings.Join([]string{
		enc.EncodeToString([]byte(s.UserID)),
		enc.EncodeToString([]byte(s.Name)),
		enc.EncodeToString([]byte(s.Email)),
		string(s.Role),
		strconv.FormatInt(now.Unix(), 10),
	}, "|")

	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value + "|" + sign(value, secret),
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	}
}

func ClearSessionCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}

func ValidateSessionCookie(cookie *http.Cookie, secret string, ttl time.Duration, now time.Time) (*access.Session, error) {
	if cookie == nil || cookie.Value == "" {
		return nil, ErrNoSession
	}

	parts := strings.Split(cookie.Value, "|")
	if len(parts) != 6 {
		return nil, ErrInvalidSession
	}

	value := strings.Join(parts[:5], "|")
	if !hmac.Equal([]byte(parts[5]), []byte(sign(value, secret))) {
		return nil, ErrInvalidSignature
	}

	issued, err := strconv.ParseInt(parts[4], 10, 64)
	if err != nil {
		return nil, ErrInvalidSession
	}
	if ttl > 0 && now.Sub(time.Unix(issued, 0)) > ttl {
		return nil, ErrSessionExpired
	}

	fields := make([]string, 3)
	for i := range fields {
		b, err := enc.DecodeString(parts[i])
		if err != nil {
			return nil, ErrInvalidSession
		}
		fields[i] = string(b)
	}
	if fields[0] == "" {
		return nil, ErrInvalidSession
	}

	return &access.Session{
		UserID: fields[0],
		Name:   fields[1],
		Email:  fields[2],
		Role:   access.Role(parts[3]),
	}, nil
}

// Gate resolves sessions from requests and guards routes by role.
type Gate struct {
	Secret string
	TTL    time.Duration
	now    func() time.Time
}

func NewGate(secret string, ttl time.Duration) *Gate {
	return &Gate{Secret: secret, TTL: ttl, now: time.Now}
}

// ResolveSession depends only on the request's cookie and the clock.
func (g *Gate) ResolveSession(r *http.Request) (*access.Session, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, false
	}
	s, err := ValidateSessionCookie(cookie, g.Secret, g.TTL, g.now())
	if err != nil {
		return nil, false
	}
	return s, true
}

// Issue builds the cookie for a freshly authenticated user.
func (g *Gate) Issue(s access.Session, secure bool) *http.Cookie {
	return CreateSessionCookie(s, g.Secret, g.TTL, secure, g.now())
}

func WithSession(ctx context.Context, s *access.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFrom returns the session stored by RequireAuth, or nil.
func SessionFrom(ctx context.Context) *access.Session {
	s, _ := ctx.Value(sessionKey).(*access.Session)
	return s
}

func (g *Gate) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := g.ResolveSession(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

// RequireRole sends anonymous users to /login and users of another role to their own home.
// A session whose role has no home it may open is dropped and sent back to /login.
func (g *Gate) RequireRole(roles ...access.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return g.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := SessionFrom(r.Context())
			if !s.HasRole(roles...) {
				home := access.HomeFor(s.Role)
				if !access.ValidRole(string(s.Role)) || home == r.URL.Path {
					http.SetCookie(w, ClearSessionCookie(r.TLS != nil))
					http.Redirect(w, r, "/login", http.StatusFound)
					return
				}
				http.Redirect(w, r, home, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// RequireAuthJSON is RequireAuth for JSON endpoints: it answers 401 instead of redirecting.
func (g *Gate) RequireAuthJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := g.ResolveSession(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "No autorizado"})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}
