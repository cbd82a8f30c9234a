package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/confdesk/review-engine/internal/config"
	"github.com/confdesk/review-engine/internal/delivery/http/handlers"
	"github.com/confdesk/review-engine/internal/delivery/http/server"
	"github.com/confdesk/review-engine/internal/notify"
	"github.com/confdesk/review-engine/internal/repository"
	"github.com/confdesk/review-engine/internal/repository/postgres"
	"github.com/confdesk/review-engine/internal/service"
)

type App struct {
	Log    *slog.Logger
	Server *server.Server
}

func NewApp(cfg *config.Config) *App {
	log := newLogger(cfg.App.LogLevel)

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.DBName,
		cfg.Database.Password,
		cfg.Database.SSLMode,
	)

	pg, err := postgres.New(dsn, postgres.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		panic(err)
	}

	repo := repository.New(pg.Db, cfg.Review.MaxLoad)

	var notifier service.Notifier
	if mailer := notify.New(log, cfg.SMTP); mailer != nil {
		notifier = mailer
	}

	svc := service.New(log, repo.Reviewer, repo.Submission, notifier, service.Policy{
		MaxLoad:                cfg.Review.MaxLoad,
		ReviewersPerSubmission: cfg.Review.ReviewersPerSubmission,
		FilterByTopic:          cfg.Review.FilterByTopic,
	})

	router := gin.New()
	router.Use(gin.Recovery())
	handlers.NewHandlers(svc).Register(router)

	addr := ":" + cfg.App.Port

	httpServer := server.New(log, addr, router)

	return &App{
		Log:    log,
		Server: httpServer,
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelDebug
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
