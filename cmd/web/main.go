package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bookshelf/internal/apiclient"
	"bookshelf/internal/config"
	apphttp "bookshelf/internal/http"
	"bookshelf/internal/httpx"
	"bookshelf/internal/logger"
	"bookshelf/internal/notify"
	"bookshelf/internal/profile"
	"bookshelf/internal/session"
	"bookshelf/internal/view"

	"github.com/sirupsen/logrus"
)

const userAgent = "bookshelf-web/1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	storage, err := session.Open(ctx, cfg.StorageDriver, cfg.DBDSN, cfg.SQLitePath, 5*time.Second)
	if err != nil {
		return fmt.Errorf("open %s storage (%s): %w", cfg.StorageDriver, redactDSN(cfg.DBDSN), err)
	}
	defer storage.Close()
	log.WithField("driver", cfg.StorageDriver).Info("profile storage ready")

	api := apiclient.NewClient(cfg.BackendURL, userAgent, cfg.APIRPS, cfg.APITimeout)
	sessions := session.NewStore(storage)
	binder := view.NewBinder(
		api,
		sessions,
		notify.NewToasts(cfg.ToastTTL),
		notify.NewConfirms(cfg.ConfirmTTL),
		log,
		cfg.Fanout,
	)

	router := apphttp.NewRouter(apphttp.RouterConfig{
		Handler:        apphttp.NewHandler(binder, log),
		Profiles:       profile.NewIssuer(cfg.SessionSecret, cfg.ProfileTTL, cfg.CookieSecure),
		RateLimiter:    httpx.NewRateLimitMiddleware(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst),
		Ready:          map[string]apphttp.Pinger{"storage": sessions, "backend": api},
		Log:            log,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		EnableHSTS:     cfg.EnableHSTS,
		RequestTimeout: cfg.RequestTimeout,
	})

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.Addr, "backend": cfg.BackendURL}).Info("starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
