package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tendant/simple-social/pkg/account"
	"github.com/tendant/simple-social/pkg/authn"
)

// Cookie names owned by the session layer
const (
	SessionCookieName       = "session"
	RememberUserCookieName  = "remember_user"
	RememberTokenCookieName = "remember_token"
)

// cookieClaims is the payload of the signed session and remember-user
// cookies. The session identifier travels only in the session cookie; the
// remember-user cookie carries just the user id, with the plaintext remember
// token in its own unsigned cookie.
type cookieClaims struct {
	UserID       string `json:"uid"`
	SessionToken string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and resolves session state. One Manager serves the whole
// process; per-request state lives on the Session values it mints.
type Manager struct {
	users    account.Repository
	remember *authn.RememberMe
	secret   []byte
	cookies  *CookieSetter
}

// ManagerOption defines configuration options
type ManagerOption func(*Manager)

// WithCookieSetter overrides the default cookie attributes
func WithCookieSetter(cookies *CookieSetter) ManagerOption {
	return func(m *Manager) {
		m.cookies = cookies
	}
}

// NewManager creates a new session Manager
func NewManager(users account.Repository, remember *authn.RememberMe, secret string, opts ...ManagerOption) *Manager {
	m := &Manager{
		users:    users,
		remember: remember,
		secret:   []byte(secret),
		cookies:  NewCookieSetter(true, false),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Session mints the per-request resolver for one request/response cycle
func (m *Manager) Session(w http.ResponseWriter, r *http.Request) *Session {
	return &Session{m: m, w: w, r: r}
}

type contextKey struct{}

// Middleware attaches a per-request Session to the request context
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.Session(w, r)
		ctx := context.WithValue(r.Context(), contextKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext returns the request's Session, or nil outside the middleware
func FromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(contextKey{}).(*Session)
	return sess
}

func (m *Manager) signCookie(claims cookieClaims) (string, error) {
	claims.IssuedAt = jwt.NewNumericDate(time.Now().UTC())
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign cookie: %w", err)
	}
	return signed, nil
}

// parseCookie reads and verifies a signed cookie; a missing or tampered
// cookie is simply absent
func (m *Manager) parseCookie(r *http.Request, name string) (cookieClaims, bool) {
	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return cookieClaims{}, false
	}

	var claims cookieClaims
	token, err := jwt.ParseWithClaims(cookie.Value, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		slog.Debug("Discarding unverifiable cookie", "cookie", name, "err", err)
		return cookieClaims{}, false
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return cookieClaims{}, false
	}
	return claims, true
}
