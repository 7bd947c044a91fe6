package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/tendant/simple-social/pkg/account"
)

// Session resolves and mutates the acting identity for a single request.
// Resolution is memoized: storage is consulted at most once per request.
type Session struct {
	m *Manager
	w http.ResponseWriter
	r *http.Request

	resolved bool
	current  *account.User
}

// CurrentUser returns the acting user, or nil when the request carries no
// valid session marker or remember cookies. The session marker wins; when it
// is present the remember cookies are not consulted at all.
func (s *Session) CurrentUser(ctx context.Context) *account.User {
	if s.resolved {
		return s.current
	}
	s.resolved = true

	if claims, ok := s.m.parseCookie(s.r, SessionCookieName); ok {
		id := uuid.MustParse(claims.UserID)
		user, err := s.m.users.GetUser(ctx, id)
		if err != nil {
			return nil
		}
		sid, err := s.m.remember.SessionIdentifier(ctx, &user)
		if err != nil {
			slog.Error("Failed resolving session identifier", "user_id", id, "err", err)
			return nil
		}
		// exact digest equality; any external credential mutation
		// invalidates the standing session
		if claims.SessionToken == sid {
			s.current = &user
		}
		return s.current
	}

	if claims, ok := s.m.parseCookie(s.r, RememberUserCookieName); ok {
		id := uuid.MustParse(claims.UserID)
		user, err := s.m.users.GetUser(ctx, id)
		if err != nil {
			return nil
		}
		cookie, err := s.r.Cookie(RememberTokenCookieName)
		if err != nil {
			return nil
		}
		if s.m.remember.VerifyRemember(user, cookie.Value) {
			// promote cookie auth to session auth for this interaction
			if err := s.LogIn(ctx, &user); err != nil {
				slog.Error("Failed promoting remember cookie to session", "user_id", id, "err", err)
				return nil
			}
			s.current = &user
		}
	}

	return s.current
}

// LoggedIn reports whether the request has an acting user
func (s *Session) LoggedIn(ctx context.Context) bool {
	return s.CurrentUser(ctx) != nil
}

// IsCurrentUser reports whether the given user is the acting user
func (s *Session) IsCurrentUser(ctx context.Context, user *account.User) bool {
	current := s.CurrentUser(ctx)
	return user != nil && current != nil && user.ID == current.ID
}

// LogIn writes the session marker for the user: id plus the session
// identifier, so a later credential change invalidates the marker
func (s *Session) LogIn(ctx context.Context, user *account.User) error {
	sid, err := s.m.remember.SessionIdentifier(ctx, user)
	if err != nil {
		return err
	}
	signed, err := s.m.signCookie(cookieClaims{UserID: user.ID.String(), SessionToken: sid})
	if err != nil {
		return err
	}
	s.m.cookies.SetSessionCookie(s.w, SessionCookieName, signed)
	s.resolved = true
	s.current = user
	return nil
}

// Remember opts the user into persistent login: issues a remember token and
// sets the permanent cookies
func (s *Session) Remember(ctx context.Context, user *account.User) error {
	token, err := s.m.remember.Remember(ctx, user)
	if err != nil {
		return err
	}
	signed, err := s.m.signCookie(cookieClaims{UserID: user.ID.String()})
	if err != nil {
		return err
	}
	s.m.cookies.SetPermanentCookie(s.w, RememberUserCookieName, signed)
	s.m.cookies.SetPermanentCookie(s.w, RememberTokenCookieName, token)
	return nil
}

// Forget revokes the user's persistent login and clears the remember cookies
func (s *Session) Forget(ctx context.Context, user *account.User) error {
	if err := s.m.remember.Forget(ctx, user); err != nil {
		return err
	}
	s.m.cookies.ClearCookie(s.w, RememberUserCookieName)
	s.m.cookies.ClearCookie(s.w, RememberTokenCookieName)
	return nil
}

// LogOut forgets the acting user's persistent login and resets the session
// entirely, leaving the request anonymous. Safe to call when nobody is
// logged in.
func (s *Session) LogOut(ctx context.Context) error {
	if current := s.CurrentUser(ctx); current != nil {
		if err := s.Forget(ctx, current); err != nil {
			return err
		}
	}
	s.m.cookies.ClearCookie(s.w, SessionCookieName)
	s.resolved = true
	s.current = nil
	return nil
}

// ResetAndLogIn discards any standing session before logging in, so a
// pre-authentication session id never survives into the authenticated one
func (s *Session) ResetAndLogIn(ctx context.Context, user *account.User) error {
	s.m.cookies.ClearCookie(s.w, SessionCookieName)
	s.resolved = false
	s.current = nil
	return s.LogIn(ctx, user)
}
