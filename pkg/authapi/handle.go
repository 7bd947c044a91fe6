package authapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/simple-social/pkg/account"
	"github.com/tendant/simple-social/pkg/authn"
	"github.com/tendant/simple-social/pkg/notification"
	"github.com/tendant/simple-social/pkg/session"
	"github.com/tendant/simple-social/pkg/signup"
	"github.com/tendant/simple-social/pkg/tokengenerator"
)

// Handle carries the dependencies of the account HTTP API. Every handler
// expects session.Manager.Middleware upstream so the request context holds a
// Session.
type Handle struct {
	users        account.Repository
	passwords    *authn.PasswordAuthenticator
	activation   *authn.Activation
	reset        *authn.PasswordReset
	registration *signup.Service
	notifier     *notification.NotificationManager
	baseURL      string
}

// NewHandle creates a new Handle
func NewHandle(
	codec *tokengenerator.TokenCodec,
	users account.Repository,
	registration *signup.Service,
	notifier *notification.NotificationManager,
	baseURL string,
	resetOpts ...authn.PasswordResetOption,
) *Handle {
	return &Handle{
		users:        users,
		passwords:    authn.NewPasswordAuthenticator(codec),
		activation:   authn.NewActivation(codec, users),
		reset:        authn.NewPasswordReset(codec, users, resetOpts...),
		registration: registration,
		notifier:     notifier,
		baseURL:      strings.TrimRight(baseURL, "/"),
	}
}

// RegisterRoutes mounts the account endpoints on the given router
func (h *Handle) RegisterRoutes(r chi.Router) {
	r.Post("/signup", h.Signup)
	r.Get("/activate", h.Activate)
	r.Post("/login", h.Login)
	r.Delete("/logout", h.Logout)
	r.Get("/me", h.Me)
	r.Route("/password-resets", func(r chi.Router) {
		r.Post("/", h.RequestPasswordReset)
		r.Put("/", h.ConfirmPasswordReset)
	})
}

// Signup handles POST /signup
func (h *Handle) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}

	user, err := h.registration.Register(r.Context(), signup.RegisterParams{
		Name:                 req.Name,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		var verr *signup.ValidationError
		if errors.As(err, &verr) {
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, ErrorResponse{Error: verr.Message, Field: verr.Field})
			return
		}
		slog.Error("Failed to register user", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "Failed to register user"})
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, userResponse(user))
}

// Activate handles GET /activate?token=...&email=...
//
// Verification and the activated gate are folded into one check; any failure
// answers with the same message so the link leaks nothing about accounts.
func (h *Handle) Activate(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(r.URL.Query().Get("email"))
	token := r.URL.Query().Get("token")

	user, ok := h.activation.VerifyActivation(r.Context(), email, token)
	if !ok {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, ErrorResponse{Error: "Invalid activation link"})
		return
	}

	if err := h.activation.Activate(r.Context(), &user); err != nil {
		slog.Error("Failed to activate user", "user_id", user.ID, "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "Failed to activate account"})
		return
	}

	sess := session.FromContext(r.Context())
	if err := sess.LogIn(r.Context(), &user); err != nil {
		slog.Error("Failed to log in activated user", "user_id", user.ID, "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "Failed to log in"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "Account activated!"})
}

// Login handles POST /login
func (h *Handle) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), strings.ToLower(req.Email))
	if err != nil || !h.passwords.Authenticate(user, req.Password) {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, ErrorResponse{Error: "Invalid email/password combination"})
		return
	}

	if !user.Activated {
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, ErrorResponse{Error: "Account not activated. Check your email for the activation link."})
		return
	}

	sess := session.FromContext(r.Context())
	if req.RememberMe {
		err = sess.Remember(r.Context(), &user)
	} else {
		err = sess.Forget(r.Context(), &user)
	}
	if err == nil {
		err = sess.ResetAndLogIn(r.Context(), &user)
	}
	if err != nil {
		slog.Error("Failed to establish session", "user_id", user.ID, "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "Failed to log in"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, userResponse(user))
}

// Logout handles DELETE /logout. Logging out twice is harmless.
func (h *Handle) Logout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if err := sess.LogOut(r.Context()); err != nil {
		slog.Error("Failed to log out", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "Failed to log out"})
		return
	}
	render.NoContent(w, r)
}

// Me handles GET /me
func (h *Handle) Me(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	user := sess.CurrentUser(r.Context())
	if user == nil {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, ErrorResponse{Error: "Not logged in"})
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, userResponse(*user))
}

// RequestPasswordReset handles POST /password-resets
func (h *Handle) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), strings.ToLower(req.Email))
	if err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, ErrorResponse{Error: "Email address not found"})
		return
	}

	token, err := h.reset.IssueReset(r.Context(), &user)
	if err != nil {
		slog.Error("Failed to issue password reset", "user_id", user.ID, "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "Failed to issue password reset"})
		return
	}

	if err := h.sendResetEmail(user, token); err != nil {
		slog.Error("Failed to send password reset email", "user_id", user.ID, "err", err)
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "Email sent with password reset instructions"})
}

// ConfirmPasswordReset handles PUT /password-resets
func (h *Handle) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetConfirm
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), strings.ToLower(req.Email))
	if err != nil || !h.reset.VerifyResetUser(user, req.Token) {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, ErrorResponse{Error: "Invalid password reset link"})
		return
	}

	if h.reset.IsExpired(user, time.Now()) {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, ErrorResponse{Error: "Password reset has expired."})
		return
	}

	if err := h.reset.ApplyNewPassword(r.Context(), &user, req.Password, req.PasswordConfirmation); err != nil {
		switch {
		case errors.Is(err, authn.ErrEmptyPassword):
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, ErrorResponse{Error: "Password can't be empty", Field: "password"})
		case errors.Is(err, authn.ErrPasswordTooShort):
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, ErrorResponse{Error: err.Error(), Field: "password"})
		case errors.Is(err, authn.ErrConfirmationMismatch):
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, ErrorResponse{Error: err.Error(), Field: "password_confirmation"})
		default:
			slog.Error("Failed to reset password", "user_id", user.ID, "err", err)
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, ErrorResponse{Error: "Failed to reset password"})
		}
		return
	}

	sess := session.FromContext(r.Context())
	if err := sess.ResetAndLogIn(r.Context(), &user); err != nil {
		slog.Error("Failed to log in after password reset", "user_id", user.ID, "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "Failed to log in"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "Password has been reset."})
}

func (h *Handle) sendResetEmail(user account.User, token string) error {
	if h.notifier == nil {
		slog.Warn("Notification manager not configured, skipping password reset email")
		return nil
	}
	return h.notifier.Send(notification.PasswordResetNotice, notification.NotificationData{
		To: user.Email,
		Data: map[string]string{
			"Name":        user.Name,
			"ResetLink":   h.baseURL + "/password-resets/edit?token=" + token + "&email=" + user.Email,
			"ExpiryHours": "2",
		},
	})
}

func userResponse(user account.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Activated: user.Activated,
	}
}
