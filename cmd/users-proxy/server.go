package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/akashmaru/RaftLabs-PracticalTest/pkg/metrics"
	"github.com/akashmaru/RaftLabs-PracticalTest/pkg/users"
)

// userService is the subset of users.Service the proxy serves.
type userService interface {
	FetchAllUsers(ctx context.Context) []users.User
	FetchUserByID(ctx context.Context, id int) (*users.User, error)
}

type server struct {
	users  userService
	logger zerolog.Logger
}

// routerOptions bound the /users routes. Zero values disable each limit.
type routerOptions struct {
	Timeout   time.Duration
	RateLimit int // requests per client IP per minute
}

// newRouter builds the proxy routes.
func newRouter(svc userService, logger zerolog.Logger, opts routerOptions) http.Handler {
	s := &server{users: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RealIP, middleware.RequestID, middleware.Recoverer)

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		if opts.RateLimit > 0 {
			r.Use(httprate.Limit(opts.RateLimit, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					writeError(w, logger, http.StatusTooManyRequests, "rate limit exceeded")
				}),
			))
		}
		if opts.Timeout > 0 {
			r.Use(middleware.Timeout(opts.Timeout))
		}
		r.Get("/users", s.listUsers)
		r.Get("/users/{id}", s.getUser)
	})

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *server) listUsers(w http.ResponseWriter, r *http.Request) {
	all := s.users.FetchAllUsers(r.Context())
	writeJSON(w, s.logger, http.StatusOK, all)
}

func (s *server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, s.logger, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := s.users.FetchUserByID(r.Context(), id)
	switch {
	case errors.Is(err, users.ErrNotFound):
		writeError(w, s.logger, http.StatusNotFound, err.Error())
	case err != nil:
		writeError(w, s.logger, http.StatusInternalServerError, err.Error())
	case user == nil:
		writeError(w, s.logger, http.StatusBadGateway, "user unavailable")
	default:
		writeJSON(w, s.logger, http.StatusOK, user)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, logger zerolog.Logger, status int, msg string) {
	writeJSON(w, logger, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, logger zerolog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("Failed to write response")
	}
}
