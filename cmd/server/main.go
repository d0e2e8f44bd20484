package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Chatwebserver/internal/auth"
	"Chatwebserver/internal/config"
	"Chatwebserver/internal/httpapi"
	"Chatwebserver/internal/media"
	"Chatwebserver/internal/relay"
	"Chatwebserver/internal/service"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		envFile string
		migrate bool
	)
	flagSet := pflag.NewFlagSet("server", pflag.ContinueOnError)
	flagSet.StringVar(&envFile, "env-file", ".env", "load KEY=VALUE pairs from this file before reading the environment")
	flagSet.BoolVar(&migrate, "migrate", false, "apply the database schema or indexes and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)

	if migrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		be, err := openBackend(ctx, cfg, true)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		be.close()
		logger.Info("migration applied", "store", be.name)
		return nil
	}

	tokens, err := auth.NewTokenCodec([]byte(cfg.CookieSecret))
	if err != nil {
		return err
	}
	if cfg.CookieSecret == "" {
		logger.Warn("APP_COOKIE_SECRET not set: using a random key, sessions end on restart")
	}

	hub := relay.NewHub(logger)
	images := media.NewStore(cfg.MediaDir)

	var (
		authSvc          *service.AuthService
		profileSvc       *service.ProfileService
		usersSvc         *service.UsersService
		friendsSvc       *service.FriendsService
		messagesSvc      *service.MessagesService
		notificationsSvc *service.NotificationService
		dbPing           func(context.Context) error
	)

	if cfg.HasStore() {
		be, err := openBackend(context.Background(), cfg, false)
		if err != nil {
			logger.Error("db open failed", "err", err)
			return err
		}
		defer be.close()
		logger.Info("store connected", "store", be.name)

		if be.purgeSessions != nil {
			sweepCtx, stopSweep := context.WithCancel(context.Background())
			defer stopSweep()
			go sweepSessions(sweepCtx, sessionSweepInterval, be.purgeSessions, logger)
		}

		authSvc = &service.AuthService{
			Users:      be.users,
			Sessions:   be.sessions,
			SessionTTL: cfg.SessionTTL,
			Now:        time.Now,
		}
		profileSvc = &service.ProfileService{Store: be.users, Images: images}
		usersSvc = &service.UsersService{Store: be.users}
		friendsSvc = &service.FriendsService{
			Users:       be.users,
			Friendships: be.friendships,
			Relay:       hub,
			Logger:      logger,
			Now:         time.Now,
		}
		messagesSvc = &service.MessagesService{
			Users:    be.users,
			Messages: be.messages,
			Images:   images,
			Relay:    hub,
			Logger:   logger,
			Now:      time.Now,
		}
		notificationsSvc = &service.NotificationService{Store: be.notifications}
		dbPing = be.ping
	} else {
		logger.Warn("no store configured: api routes disabled", "hint", errNoStore.Error())
	}

	router := httpapi.NewRouter(httpapi.RouterOpts{
		Logger:        logger,
		IsProd:        cfg.IsProd(),
		DBPing:        dbPing,
		Auth:          authSvc,
		Profile:       profileSvc,
		Users:         usersSvc,
		Friends:       friendsSvc,
		Messages:      messagesSvc,
		Notifications: notificationsSvc,
		Hub:           hub,
		Media:         images.Handler(),
		Tokens:        tokens,
		CookieSecure:  cfg.CookieSecure(),
		SessionTTL:    cfg.SessionTTL,
		CORSOrigins:   cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv.RegisterOnShutdown(hub.CloseAll)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "env", cfg.Env, "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			return err
		}
	}
	return nil
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProd() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
