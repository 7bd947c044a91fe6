package signup

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tendant/simple-social/pkg/account"
	"github.com/tendant/simple-social/pkg/authn"
	"github.com/tendant/simple-social/pkg/notification"
	"github.com/tendant/simple-social/pkg/tokengenerator"
)

type signupEnv struct {
	codec   *tokengenerator.TokenCodec
	repo    *account.InMemoryRepository
	mock    *notification.MockNotifier
	service *Service
}

func newSignupEnv(t *testing.T) *signupEnv {
	t.Helper()

	codec := tokengenerator.New(tokengenerator.WithCost(bcrypt.MinCost))
	repo := account.NewInMemoryRepository()
	mock := &notification.MockNotifier{}
	nm := notification.NewNotificationManager()
	nm.RegisterNotifier(notification.EmailSystem, mock)
	require.NoError(t, notification.RegisterAccountNotices(nm))

	return &signupEnv{
		codec:   codec,
		repo:    repo,
		mock:    mock,
		service: NewService(codec, repo, nm, "http://localhost:4000"),
	}
}

func validParams() RegisterParams {
	return RegisterParams{
		Name:                 "Example User",
		Email:                "user@example.com",
		Password:             "foobar",
		PasswordConfirmation: "foobar",
	}
}

func TestRegister(t *testing.T) {
	env := newSignupEnv(t)
	ctx := context.Background()

	user, err := env.service.Register(ctx, validParams())
	require.NoError(t, err)

	assert.Equal(t, "user@example.com", user.Email)
	assert.False(t, user.Activated)
	assert.NotEmpty(t, user.ActivationDigest)
	assert.NotEmpty(t, user.PasswordDigest)

	t.Run("SendsActivationEmail", func(t *testing.T) {
		last := env.mock.Last()
		require.NotNil(t, last)
		assert.Equal(t, notification.AccountActivationNotice, last.NoticeType)
		assert.Equal(t, "user@example.com", last.Data.To)
		assert.Contains(t, last.Data.Data["ActivationLink"], "http://localhost:4000/activate?token=")
	})

	t.Run("EmailedTokenVerifies", func(t *testing.T) {
		link := env.mock.Last().Data.Data["ActivationLink"]
		token := strings.TrimPrefix(link, "http://localhost:4000/activate?token=")
		token = strings.SplitN(token, "&", 2)[0]

		activation := authn.NewActivation(env.codec, env.repo)
		found, ok := activation.VerifyActivation(ctx, "user@example.com", token)
		assert.True(t, ok)
		assert.Equal(t, user.ID, found.ID)
	})
}

func TestRegister_DowncasesEmail(t *testing.T) {
	env := newSignupEnv(t)

	params := validParams()
	params.Email = "Foo@ExAMPle.CoM"
	user, err := env.service.Register(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "foo@example.com", user.Email)
}

func TestRegister_Validations(t *testing.T) {
	env := newSignupEnv(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*RegisterParams)
		field  string
	}{
		{"BlankName", func(p *RegisterParams) { p.Name = "" }, "name"},
		{"LongName", func(p *RegisterParams) { p.Name = strings.Repeat("a", 51) }, "name"},
		{"BlankEmail", func(p *RegisterParams) { p.Email = "" }, "email"},
		{"LongEmail", func(p *RegisterParams) { p.Email = strings.Repeat("a", 244) + "@example.com" }, "email"},
		{"BadEmailNoAt", func(p *RegisterParams) { p.Email = "user.example.com" }, "email"},
		{"BadEmailSpace", func(p *RegisterParams) { p.Email = "user@exam ple.com" }, "email"},
		{"BadEmailDoubleAt", func(p *RegisterParams) { p.Email = "foo@bar@baz.com" }, "email"},
		{"BlankPassword", func(p *RegisterParams) { p.Password, p.PasswordConfirmation = "", "" }, "password"},
		{"ShortPassword", func(p *RegisterParams) { p.Password, p.PasswordConfirmation = "foo", "foo" }, "password"},
		{"Mismatch", func(p *RegisterParams) { p.PasswordConfirmation = "barfoo" }, "password_confirmation"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := validParams()
			tc.mutate(&params)

			_, err := env.service.Register(ctx, params)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	t.Run("ValidEmailFormats", func(t *testing.T) {
		for i, email := range []string{
			"user@example.com", "USER@foo.COM", "A_US-ER@foo.bar.org",
			"first.last@foo.jp", "alice+bob@baz.cn",
		} {
			params := validParams()
			params.Email = email
			_, err := env.service.Register(ctx, params)
			assert.NoError(t, err, "email %d: %s", i, email)
		}
	})
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newSignupEnv(t)
	ctx := context.Background()

	_, err := env.service.Register(ctx, validParams())
	require.NoError(t, err)

	params := validParams()
	params.Email = "USER@example.com"
	_, err = env.service.Register(ctx, params)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)
	assert.Equal(t, "has already been taken", verr.Message)
}

func TestUpdateProfile(t *testing.T) {
	env := newSignupEnv(t)
	ctx := context.Background()

	user, err := env.service.Register(ctx, validParams())
	require.NoError(t, err)
	auth := authn.NewPasswordAuthenticator(env.codec)

	t.Run("KeepsPasswordWhenBlank", func(t *testing.T) {
		err := env.service.UpdateProfile(ctx, &user, UpdateProfileParams{
			Name:  "Renamed User",
			Email: "Renamed@Example.com",
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed User", user.Name)
		assert.Equal(t, "renamed@example.com", user.Email)
		assert.True(t, auth.Authenticate(user, "foobar"))
	})

	t.Run("ChangesPassword", func(t *testing.T) {
		err := env.service.UpdateProfile(ctx, &user, UpdateProfileParams{
			Name:                 user.Name,
			Email:                user.Email,
			Password:             "newsecret",
			PasswordConfirmation: "newsecret",
		})
		require.NoError(t, err)
		assert.True(t, auth.Authenticate(user, "newsecret"))
		assert.False(t, auth.Authenticate(user, "foobar"))
	})

	t.Run("RejectsInvalidEdit", func(t *testing.T) {
		err := env.service.UpdateProfile(ctx, &user, UpdateProfileParams{
			Name:  "",
			Email: user.Email,
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "name", verr.Field)
	})
}
