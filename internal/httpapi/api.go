// Package httpapi is the public JSON surface of the booking service.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"riding-school-api/internal/booking"
	"riding-school-api/internal/middleware"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type API struct {
	svc *booking.Service
	db  Pinger
	log *zap.Logger
}

func New(svc *booking.Service, db Pinger, log *zap.Logger) *API {
	return &API{svc: svc, db: db, log: log}
}

// Handler builds the router. requestsPerMin caps each client IP.
func (a *API) Handler(requestsPerMin int) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(a.log))
	r.Use(a.recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{middleware.HeaderRequestID},
		MaxAge:         300,
	}))
	r.Use(httprate.Limit(requestsPerMin, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusTooManyRequests, "too many requests")
		}),
	))

	// must be set before Route so sub-routers inherit them
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", a.health)
	r.Route("/appointments", func(r chi.Router) {
		r.Get("/", a.listAppointments)
		r.Post("/", a.createAppointment)
		r.Delete("/", a.deleteAppointment)
		r.Options("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		r.Get("/{id}", a.getAppointment)
	})
	return r
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	if err := a.db.Ping(r.Context()); err != nil {
		a.log.Warn("health check failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			a.log.Error("panic serving request", zap.Any("panic", rec), zap.String("path", r.URL.Path))
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("internal error: %v", rec))
		}()
		next.ServeHTTP(w, r)
	})
}
