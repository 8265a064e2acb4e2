package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	logger "github.com/sirupsen/logrus"

	"memesniper/src/auth"
)

// Routes are the handler set wired into the router; main builds this from
// the live services.
type Routes struct {
	Status     http.HandlerFunc
	ListTrades http.HandlerFunc
	GetTrade   http.HandlerFunc
	CloseTrade http.HandlerFunc
}

func NewRouter(cfg *Config, routes Routes) *chi.Mux {
	r := chi.NewRouter()

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("/healthcheck error")
		}
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/status", routes.Status)
	r.Get("/trades", routes.ListTrades)
	r.Get("/trades/{tradeID}", routes.GetTrade)

	// Mutating routes sit behind the admin token.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdminToken(cfg.AdminTokenHash))
		r.Post("/trades/{tradeID}/close", routes.CloseTrade)
	})

	return r
}

// StartServer serves until ctx is cancelled, then shuts down gracefully.
func StartServer(ctx context.Context, port string, h http.Handler) {
	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: h,
	}

	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	<-ctx.Done()

	logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
