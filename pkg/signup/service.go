package signup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/tendant/simple-social/pkg/account"
	"github.com/tendant/simple-social/pkg/authn"
	"github.com/tendant/simple-social/pkg/notification"
	"github.com/tendant/simple-social/pkg/tokengenerator"
)

const (
	maxNameLength  = 50
	maxEmailLength = 255
)

var emailRegex = regexp.MustCompile(`(?i)^[\w+\-.]+@[a-z\d\-.]+\.[a-z]+$`)

// Service registers new accounts. The activation digest is generated before
// the insert so the record is created with it, and the activation email goes
// out with the plaintext token immediately after.
type Service struct {
	codec      *tokengenerator.TokenCodec
	repo       account.Repository
	activation *authn.Activation
	notifier   *notification.NotificationManager
	baseURL    string
}

// NewService creates a new signup service
func NewService(
	codec *tokengenerator.TokenCodec,
	repo account.Repository,
	notifier *notification.NotificationManager,
	baseURL string,
) *Service {
	return &Service{
		codec:      codec,
		repo:       repo,
		activation: authn.NewActivation(codec, repo),
		notifier:   notifier,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// RegisterParams represents parameters for registering an account
type RegisterParams struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
}

// Register validates and persists a new, unactivated account, then sends the
// activation email. Email delivery is best effort; a failed send does not
// undo the registration.
func (s *Service) Register(ctx context.Context, params RegisterParams) (account.User, error) {
	email := strings.ToLower(params.Email)

	if err := validateName(params.Name); err != nil {
		return account.User{}, err
	}
	if err := validateEmail(email); err != nil {
		return account.User{}, err
	}
	if err := validatePassword(params.Password, params.PasswordConfirmation, true); err != nil {
		return account.User{}, err
	}

	passwordDigest, err := s.codec.Digest(params.Password)
	if err != nil {
		return account.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	unsaved := account.User{Name: params.Name, Email: email}
	activationToken, err := s.activation.IssueActivation(&unsaved)
	if err != nil {
		return account.User{}, fmt.Errorf("failed to issue activation: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, account.CreateUserParams{
		Name:             params.Name,
		Email:            email,
		PasswordDigest:   passwordDigest,
		ActivationDigest: unsaved.ActivationDigest,
	})
	if err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			return account.User{}, invalid("email", "has already been taken")
		}
		return account.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.sendActivationEmail(user, activationToken); err != nil {
		slog.Error("Failed to send activation email", "user_id", user.ID, "err", err)
	}

	return user, nil
}

// UpdateProfileParams represents parameters for editing an account. Password
// may be left blank to keep the current one.
type UpdateProfileParams struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
}

// UpdateProfile validates and applies profile changes for an existing user
func (s *Service) UpdateProfile(ctx context.Context, user *account.User, params UpdateProfileParams) error {
	email := strings.ToLower(params.Email)

	if err := validateName(params.Name); err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := validatePassword(params.Password, params.PasswordConfirmation, false); err != nil {
		return err
	}

	updated, err := s.repo.UpdateProfile(ctx, account.UpdateProfileParams{
		ID:    user.ID,
		Name:  params.Name,
		Email: email,
	})
	if err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			return invalid("email", "has already been taken")
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}

	if params.Password != "" {
		digest, err := s.codec.Digest(params.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		if err := s.repo.UpdatePasswordDigest(ctx, user.ID, digest); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		updated.PasswordDigest = digest
	} else {
		updated.PasswordDigest = user.PasswordDigest
	}

	*user = updated
	return nil
}

// ActivationLink returns the URL embedded in activation emails
func (s *Service) ActivationLink(email, token string) string {
	return fmt.Sprintf("%s/activate?token=%s&email=%s", s.baseURL, token, email)
}

func (s *Service) sendActivationEmail(user account.User, token string) error {
	if s.notifier == nil {
		slog.Warn("Notification manager not configured, skipping activation email")
		return nil
	}
	return s.notifier.Send(notification.AccountActivationNotice, notification.NotificationData{
		To: user.Email,
		Data: map[string]string{
			"Name":           user.Name,
			"ActivationLink": s.ActivationLink(user.Email, token),
		},
	})
}

func validateName(name string) error {
	if name == "" {
		return invalid("name", "can't be blank")
	}
	if len(name) > maxNameLength {
		return invalid("name", fmt.Sprintf("is too long (maximum is %d characters)", maxNameLength))
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email", "can't be blank")
	}
	if len(email) > maxEmailLength {
		return invalid("email", fmt.Sprintf("is too long (maximum is %d characters)", maxEmailLength))
	}
	if !emailRegex.MatchString(email) {
		return invalid("email", "is invalid")
	}
	return nil
}

// validatePassword applies the password rules; when required is false a
// blank password (and confirmation) means "keep the current password"
func validatePassword(password, confirmation string, required bool) error {
	if password == "" {
		if required {
			return invalid("password", "can't be blank")
		}
		if confirmation != "" {
			return invalid("password_confirmation", "doesn't match password")
		}
		return nil
	}
	if len(password) < authn.MinPasswordLength {
		return invalid("password", fmt.Sprintf("is too short (minimum is %d characters)", authn.MinPasswordLength))
	}
	if password != confirmation {
		return invalid("password_confirmation", "doesn't match password")
	}
	return nil
}
