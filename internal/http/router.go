package http

import (
	"context"
	"net/http"
	"time"

	"bookshelf/internal/httpx"
	"bookshelf/internal/profile"

	"github.com/sirupsen/logrus"
)

// Pinger is a dependency /readyz checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	Handler      *Handler
	Profiles     *profile.Issuer
	RateLimiter  *httpx.RateLimitMiddleware
	Ready        map[string]Pinger
	Log          logrus.FieldLogger
	MaxBodyBytes int64
	EnableHSTS   bool

	// RequestTimeout bounds one request end to end; zero leaves it open.
	RequestTimeout time.Duration
}

// NewRouter registers every browser route and wraps them in the middleware
// stack, outermost first.
func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handler
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", readiness(cfg.Ready, cfg.Log))

	mux.HandleFunc("GET /{$}", h.screen(h.Home))
	mux.HandleFunc("POST /search", h.submit(h.Search))

	mux.HandleFunc("GET /login", h.screen(h.AuthPage))
	mux.HandleFunc("POST /login", h.submit(h.Login))
	mux.HandleFunc("POST /register", h.submit(h.Register))
	mux.HandleFunc("POST /logout", h.submit(h.Logout))

	mux.HandleFunc("GET /books/{id}", h.screen(h.BookDetail))
	mux.HandleFunc("POST /books/{id}/favorite", h.submit(h.AddFavorite))
	mux.HandleFunc("POST /books/{id}/rate", h.submit(h.RateBook))
	mux.HandleFunc("POST /books/{id}/rating", h.submit(h.RatingWidget))

	mux.HandleFunc("GET /favorites", h.screen(h.Favorites))
	mux.HandleFunc("POST /favorites/{id}/remove", h.submit(h.RemoveFavorite))

	mux.HandleFunc("GET /ratings", h.screen(h.Ratings))
	mux.HandleFunc("POST /ratings/{id}/edit", h.submit(h.EditRating))
	mux.HandleFunc("POST /ratings/{id}/delete", h.submit(h.DeleteRating))

	mux.HandleFunc("POST /confirm/{id}", h.submit(h.ResolveConfirm))
	mux.HandleFunc("POST /toasts/{id}/dismiss", h.submit(h.DismissToast))

	mux.HandleFunc("GET /chat", h.screen(h.ChatPage))
	mux.HandleFunc("POST /chat", h.submit(h.Chat))

	mws := []func(http.Handler) http.Handler{
		httpx.RequestIDMiddleware,
		cfg.Profiles.Middleware(cfg.Log),
		httpx.AccessLogMiddleware(cfg.Log),
		httpx.RecoveryMiddleware(cfg.Log),
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
	}
	if cfg.RateLimiter != nil {
		mws = append(mws, cfg.RateLimiter.Middleware)
	}
	if cfg.MaxBodyBytes > 0 {
		mws = append(mws, httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes))
	}
	if cfg.RequestTimeout > 0 {
		mws = append(mws, httpx.RequestTimeoutMiddleware(cfg.RequestTimeout))
	}
	return httpx.Chain(mux, mws...)
}

func readiness(deps map[string]Pinger, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{}
		ready := true
		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				log.WithField("dependency", name).WithError(err).Warn("not ready")
				status[name] = "unavailable"
				ready = false
				continue
			}
			status[name] = "ok"
		}
		if !ready {
			httpx.JSON(w, http.StatusServiceUnavailable, status)
			return
		}
		httpx.JSON(w, http.StatusOK, status)
	}
}
