// Package users fetches user records from the remote users API, aggregating
// paginated listings and caching responses for a short time.
//
// Failures are absorbed: FetchAllUsers degrades to an empty list and
// FetchUserByID to a nil user. The single exception is a 404 on a user
// lookup, which is returned as a *NotFoundError.
package users

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/akashmaru/RaftLabs-PracticalTest/pkg/cache"
	"github.com/akashmaru/RaftLabs-PracticalTest/pkg/client"
	"github.com/akashmaru/RaftLabs-PracticalTest/pkg/pagination"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultCacheTTL is how long pages and users stay cached.
const DefaultCacheTTL = 5 * time.Minute

// Fetcher issues GET requests relative to the users API base URL.
// *client.Client satisfies it.
type Fetcher interface {
	Get(ctx context.Context, path string) (*client.Response, error)
}

// Service is the user-fetch service.
type Service struct {
	fetcher Fetcher
	cache   cache.Store
	ttl     time.Duration
	logger  zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTTL overrides DefaultCacheTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewService creates a user-fetch service. fetcher and store are required.
func NewService(fetcher Fetcher, store cache.Store, opts ...Option) *Service {
	if fetcher == nil {
		panic("users: fetcher cannot be nil")
	}
	if store == nil {
		panic("users: cache store cannot be nil")
	}

	s := &Service{
		fetcher: fetcher,
		cache:   store,
		ttl:     DefaultCacheTTL,
		logger:  log.With().Str("component", "users-service").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchAllUsers returns every user across all pages, in page order.
//
// Any failure (404 on a page, other non-success status, undecodable body,
// network error, timeout or cancellation) yields an empty list, even when
// earlier pages succeeded. Callers cannot tell "no users" from a failure.
func (s *Service) FetchAllUsers(ctx context.Context) []User {
	logger := s.logger.With().Str("operation", "fetch_all_users").Logger()

	users, err := pagination.Collect(ctx, func(ctx context.Context, page int) (pagination.Page[User], error) {
		return s.resolvePage(ctx, logger, page)
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Fetching users failed, returning empty list")
		return []User{}
	}
	if users == nil {
		users = []User{}
	}

	logger.Info().Int("count", len(users)).Msg("Fetched all users")
	return users
}

// resolvePage returns a page from cache or from the API. Only pages fetched
// from the API report a page count.
func (s *Service) resolvePage(ctx context.Context, logger zerolog.Logger, page int) (pagination.Page[User], error) {
	key := cache.PageKey(page)

	var cached []User
	hit, err := cache.GetJSON(ctx, s.cache, key, &cached)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Cache read failed, fetching from API")
	}
	if hit {
		logger.Debug().Int("page", page).Str("key", key).Msg("Page served from cache")
		return pagination.Page[User]{Items: cached}, nil
	}

	resp, err := s.fetcher.Get(ctx, fmt.Sprintf("users?page=%d", page))
	if err != nil {
		logger.Error().
			Err(err).
			Int("page", page).
			Str("failure", failureKind(err)).
			Msg("Users page request failed")
		return pagination.Page[User]{}, err
	}

	if resp.StatusCode == http.StatusNotFound {
		logger.Warn().
			Int("page", page).
			Int("status", resp.StatusCode).
			Msg("Users page not found")
		return pagination.Page[User]{}, fmt.Errorf("%w: page %d", errPageNotFound, page)
	}
	if !resp.IsSuccess() {
		logger.Error().
			Int("page", page).
			Int("status", resp.StatusCode).
			Msg("Users page request returned non-success status")
		return pagination.Page[User]{}, fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode)
	}

	var body UserPage
	if err := decodeJSON(resp, &body); err != nil {
		logger.Error().
			Err(err).
			Int("page", page).
			Int("status", resp.StatusCode).
			Msg("Users page could not be decoded")
		return pagination.Page[User]{}, err
	}

	items := body.Data
	if items == nil {
		items = []User{}
	}

	if err := cache.SetJSON(ctx, s.cache, key, items, s.ttl); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Failed to cache users page")
	}

	logger.Debug().
		Int("page", page).
		Int("total_pages", body.TotalPages).
		Int("count", len(items)).
		Msg("Users page fetched")

	return pagination.Page[User]{
		Items:      items,
		TotalPages: body.TotalPages,
		Fresh:      true,
	}, nil
}

// FetchUserByID returns the user with the given id.
//
// A 404 returns a *NotFoundError. Every other failure (non-success status,
// undecodable body, network error, timeout) returns nil, nil, as does a
// response without a user.
func (s *Service) FetchUserByID(ctx context.Context, id int) (*User, error) {
	logger := s.logger.With().Str("operation", "fetch_user_by_id").Int("user_id", id).Logger()

	if id <= 0 {
		logger.Warn().Msg("Rejected non-positive user id")
		return nil, nil
	}

	key := cache.UserKey(id)

	var cached User
	hit, err := cache.GetJSON(ctx, s.cache, key, &cached)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Cache read failed, fetching from API")
	}
	if hit {
		logger.Debug().Str("key", key).Msg("User served from cache")
		return &cached, nil
	}

	resp, err := s.fetcher.Get(ctx, fmt.Sprintf("users/%d", id))
	if err != nil {
		logger.Error().
			Err(err).
			Str("failure", failureKind(err)).
			Msg("User request failed")
		return nil, nil
	}

	if resp.StatusCode == http.StatusNotFound {
		logger.Warn().Int("status", resp.StatusCode).Msg("User not found")
		return nil, &NotFoundError{ID: id}
	}
	if !resp.IsSuccess() {
		logger.Error().Int("status", resp.StatusCode).Msg("User request returned non-success status")
		return nil, nil
	}

	var body userEnvelope
	if err := decodeJSON(resp, &body); err != nil {
		logger.Error().
			Err(err).
			Int("status", resp.StatusCode).
			Msg("User response could not be decoded")
		return nil, nil
	}
	if body.Data == nil {
		logger.Warn().Msg("User response carried no data")
		return nil, nil
	}

	if err := cache.SetJSON(ctx, s.cache, key, body.Data, s.ttl); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Failed to cache user")
	}

	return body.Data, nil
}
