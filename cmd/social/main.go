package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jinzhu/copier"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"

	"github.com/tendant/simple-social/pkg/account"
	"github.com/tendant/simple-social/pkg/authapi"
	"github.com/tendant/simple-social/pkg/authn"
	"github.com/tendant/simple-social/pkg/notification"
	"github.com/tendant/simple-social/pkg/session"
	"github.com/tendant/simple-social/pkg/signup"
	"github.com/tendant/simple-social/pkg/tokengenerator"
)

type SocialDbConfig struct {
	Host     string `env:"SOCIAL_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"SOCIAL_PG_PORT" env-default:"5432"`
	Database string `env:"SOCIAL_PG_DATABASE" env-default:"social_db"`
	User     string `env:"SOCIAL_PG_USER" env-default:"social"`
	Password string `env:"SOCIAL_PG_PASSWORD" env-default:"pwd"`
}

func (d SocialDbConfig) toDbConfig() dbutils.DbConfig {
	return dbutils.DbConfig{
		Host:     d.Host,
		Port:     d.Port,
		Database: d.Database,
		User:     d.User,
		Password: d.Password,
	}
}

type CookieConfig struct {
	Secret         string `env:"COOKIE_SECRET" env-default:"very-secure-cookie-secret"`
	CookieHttpOnly bool   `env:"COOKIE_HTTP_ONLY" env-default:"true"`
	CookieSecure   bool   `env:"COOKIE_SECURE" env-default:"false"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST" env-default:"localhost"`
	Port     int    `env:"SMTP_PORT" env-default:"1025"`
	TLS      bool   `env:"SMTP_TLS" env-default:"false"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM" env-default:"noreply@example.com"`
}

type Config struct {
	SocialDbConfig SocialDbConfig
	AppConfig      app.AppConfig
	CookieConfig   CookieConfig
	SMTPConfig     SMTPConfig
	BaseURL        string `env:"BASE_URL" env-default:"http://localhost:4000"`
	BcryptCost     int    `env:"BCRYPT_COST" env-default:"10"`
}

func main() {

	config := Config{}
	cleanenv.ReadEnv(&config)

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	dbConfig := config.SocialDbConfig.toDbConfig()
	pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
		os.Exit(-1)
	}

	repo := account.NewPostgresRepository(pool)
	codec := tokengenerator.New(tokengenerator.WithCost(config.BcryptCost))

	// email delivery
	var smtpConfig notification.SMTPConfig
	copier.Copy(&smtpConfig, &config.SMTPConfig)
	notifier, err := notification.NewEmailNotifier(smtpConfig)
	if err != nil {
		slog.Error("Failed creating email notifier", "host", smtpConfig.Host, "err", err)
		os.Exit(-1)
	}
	nm := notification.NewNotificationManager()
	nm.RegisterNotifier(notification.EmailSystem, notifier)
	if err := notification.RegisterAccountNotices(nm); err != nil {
		slog.Error("Failed registering account notices", "err", err)
		os.Exit(-1)
	}

	registration := signup.NewService(codec, repo, nm, config.BaseURL)

	remember := authn.NewRememberMe(codec, repo)
	manager := session.NewManager(repo, remember, config.CookieConfig.Secret,
		session.WithCookieSetter(session.NewCookieSetter(
			config.CookieConfig.CookieHttpOnly,
			config.CookieConfig.CookieSecure,
		)),
	)

	handle := authapi.NewHandle(codec, repo, registration, nm, config.BaseURL)

	server.R.Group(func(r chi.Router) {
		r.Use(manager.Middleware)
		handle.RegisterRoutes(r)
	})

	server.Run()

}
