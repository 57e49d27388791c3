package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"portfoliotracker/src/handler"
	"portfoliotracker/src/registry"
	"portfoliotracker/src/report"
)

// StartServer runs the REST API until SIGINT/SIGTERM, then shuts down
// gracefully.
func StartServer(port string, reg *registry.Registry, gen *report.Generator) {
	r := chi.NewRouter()
	r.Use(requestID)

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("/healthcheck error")
		}
	})

	r.Route("/profiles", func(r chi.Router) {
		r.Get("/", handler.ListProfilesHandler(reg))
		r.Route("/{username}", func(r chi.Router) {
			r.Get("/summary", handler.SummaryHandler(reg))
			r.Get("/portfolios", handler.ListPortfoliosHandler(reg))
			r.Post("/portfolios", handler.CreatePortfolioHandler(reg))
			r.Post("/portfolios/{name}/positions", handler.AddPositionHandler(reg))
			r.Post("/portfolios/{name}/transactions", handler.ExecuteTransactionHandler(reg))
			r.Get("/portfolios/{name}/report", handler.ReportHandler(gen))
		})
	})

	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}

// requestID stamps every request with a uuid, echoed in the response and the
// access log line.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)

		logger.WithFields(map[string]interface{}{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
		}).Debug("request received")

		next.ServeHTTP(w, r)
	})
}
