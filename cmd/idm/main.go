package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veralend/identity/pkg/account"
	"github.com/veralend/identity/pkg/authen"
	"github.com/veralend/identity/pkg/config"
	"github.com/veralend/identity/pkg/loginattempt"
	"github.com/veralend/identity/pkg/loginfail"
	"github.com/veralend/identity/pkg/notice"
	"github.com/veralend/identity/pkg/notification"
	"github.com/veralend/identity/pkg/password"
	"github.com/veralend/identity/pkg/tokensession"
	"github.com/veralend/identity/pkg/usersession"
)

type Config struct {
	AuthConfig config.AuthConfig
	DbConfig   config.DbConfig
	SMTPConfig config.SMTPConfig

	// RunSweep makes the process run the dormant-account sweep and exit
	// instead of staying resident.
	RunSweep bool `env:"IDM_RUN_SWEEP" env-default:"true"`
}

func main() {
	cfg := Config{}
	cleanenv.ReadEnv(&cfg)

	ctx := context.Background()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.DbConfig.User, cfg.DbConfig.Password, cfg.DbConfig.Host, cfg.DbConfig.Port, cfg.DbConfig.Database)
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", cfg.DbConfig.Database, "host", cfg.DbConfig.Host, "err", err)
		os.Exit(-1)
	}
	defer pool.Close()

	notificationManager, err := notice.NewNotificationManager(notification.SMTPConfig{
		Host:     cfg.SMTPConfig.Host,
		Port:     cfg.SMTPConfig.Port,
		Username: cfg.SMTPConfig.Username,
		Password: cfg.SMTPConfig.Password,
		From:     cfg.SMTPConfig.From,
		TLS:      cfg.SMTPConfig.TLS,
	})
	if err != nil {
		slog.Error("Failed creating notification manager", "err", err)
		os.Exit(-1)
	}
	dispatcher := notification.NewDispatcher(notificationManager, 256)
	defer dispatcher.Close()

	accountRepo := account.NewPostgresRepository(pool)
	passwordManager := password.NewManager(
		accountRepo,
		password.NewPostgresHistoryRepository(pool),
		password.NewPostgresDictionaryRepository(pool),
		password.NewBcryptHasher(),
		nil,
		cfg.AuthConfig.PasswordReuseWindow,
		cfg.AuthConfig.PasswordExpirationDays,
	)

	svc := authen.NewService(
		accountRepo,
		loginfail.NewPostgresLedger(pool),
		tokensession.NewService(tokensession.NewPostgresRepository(pool), cfg.AuthConfig.TokenTTL(), cfg.AuthConfig.MaxVerifyAttempts),
		loginattempt.NewLedger(loginattempt.NewPostgresRepository(pool), cfg.AuthConfig.TicketTTL()),
		usersession.NewGuard(usersession.NewPostgresRepository(pool), cfg.AuthConfig.SessionTimeout()),
		passwordManager,
		dispatcher,
		cfg.AuthConfig,
	)

	if cfg.RunSweep {
		report, err := svc.SweepDormantAccounts(ctx, authen.SystemActor)
		if err != nil {
			slog.Error("Dormant account sweep failed", "err", err)
			os.Exit(-1)
		}
		slog.Info("Dormant account sweep done", "warned", report.Warned, "inactivated", report.Inactivated)
		return
	}

	slog.Info("Authentication services wired; embed pkg/authen behind your transport to serve requests")
}
