package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/akashmaru/RaftLabs-PracticalTest/pkg/cache"
	"github.com/akashmaru/RaftLabs-PracticalTest/pkg/client"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResult struct {
	resp *client.Response
	err  error
}

// fakeFetcher serves canned results by path and records calls.
type fakeFetcher struct {
	mu      sync.Mutex
	results map[string]fakeResult
	calls   []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{results: make(map[string]fakeResult)}
}

func (f *fakeFetcher) Get(ctx context.Context, path string) (*client.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
	result, ok := f.results[path]
	if !ok {
		return &client.Response{StatusCode: http.StatusNotFound, Header: http.Header{}, Body: []byte(`{}`)}, nil
	}
	return result.resp, result.err
}

func (f *fakeFetcher) respond(path string, status int, body string) {
	f.results[path] = fakeResult{resp: &client.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json; charset=utf-8"}},
		Body:       []byte(body),
	}}
}

func (f *fakeFetcher) fail(path string, err error) {
	f.results[path] = fakeResult{err: err}
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeFetcher) calledPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestService(t *testing.T, fetcher Fetcher, opts ...Option) (*Service, *cache.MemoryStore) {
	t.Helper()
	store := cache.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	opts = append([]Option{WithLogger(zerolog.Nop())}, opts...)
	return NewService(fetcher, store, opts...), store
}

func pageBody(page, totalPages int, users string) string {
	return fmt.Sprintf(`{"page":%d,"per_page":6,"total":12,"total_pages":%d,"data":[%s]}`, page, totalPages, users)
}

func TestNewService_Panics(t *testing.T) {
	store := cache.NewMemoryStore()
	defer store.Close()

	assert.Panics(t, func() { NewService(nil, store) })
	assert.Panics(t, func() { NewService(newFakeFetcher(), nil) })
}

func TestNewService_Options(t *testing.T) {
	svc, _ := newTestService(t, newFakeFetcher())
	assert.Equal(t, DefaultCacheTTL, svc.ttl)

	svc, _ = newTestService(t, newFakeFetcher(), WithTTL(time.Minute))
	assert.Equal(t, time.Minute, svc.ttl)

	svc, _ = newTestService(t, newFakeFetcher(), WithTTL(0))
	assert.Equal(t, DefaultCacheTTL, svc.ttl, "non-positive TTL keeps the default")
}

func TestFetchAllUsers_TwoPages(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.respond("users?page=1", http.StatusOK, pageBody(1, 2, `{"id":1,"first_name":"George"}`))
	fetcher.respond("users?page=2", http.StatusOK, pageBody(2, 2, `{"id":2,"last_name":"Janet"}`))
	svc, _ := newTestService(t, fetcher)

	got := svc.FetchAllUsers(context.Background())

	assert.Equal(t, []User{
		{ID: 1, FirstName: "George"},
		{ID: 2, LastName: "Janet"},
	}, got)
	assert.Equal(t, []string{"users?page=1", "users?page=2"}, fetcher.calledPaths())
}

func TestFetchAllUsers_PageOrder(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.respond("users?page=1", http.StatusOK, pageBody(1, 3, `{"id":1},{"id":2}`))
	fetcher.respond("users?page=2", http.StatusOK, pageBody(2, 3, `{"id":3},{"id":4}`))
	fetcher.respond("users?page=3", http.StatusOK, pageBody(3, 3, `{"id":5}`))
	svc, _ := newTestService(t, fetcher)

	got := svc.FetchAllUsers(context.Background())

	ids := make([]int, 0, len(got))
	for _, u := range got {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids)
}

func TestFetchAllUsers_Failures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fakeFetcher)
	}{
		{
			name: "404 on first page",
			setup: func(f *fakeFetcher) {
				f.respond("users?page=1", http.StatusNotFound, `{}`)
			},
		},
		{
			name: "404 after a successful page",
			setup: func(f *fakeFetcher) {
				f.respond("users?page=1", http.StatusOK, pageBody(1, 2, `{"id":1}`))
				f.respond("users?page=2", http.StatusNotFound, `{}`)
			},
		},
		{
			name: "server error",
			setup: func(f *fakeFetcher) {
				f.respond("users?page=1", http.StatusInternalServerError, `{}`)
			},
		},
		{
			name: "unauthorized",
			setup: func(f *fakeFetcher) {
				f.respond("users?page=1", http.StatusUnauthorized, `{"error":"missing api key"}`)
			},
		},
		{
			name: "network error after a successful page",
			setup: func(f *fakeFetcher) {
				f.respond("users?page=1", http.StatusOK, pageBody(1, 2, `{"id":1}`))
				f.fail("users?page=2", errors.New("connection reset by peer"))
			},
		},
		{
			name: "timeout",
			setup: func(f *fakeFetcher) {
				f.fail("users?page=1", fmt.Errorf("get /users: %w", context.DeadlineExceeded))
			},
		},
		{
			name: "malformed json",
			setup: func(f *fakeFetcher) {
				f.respond("users?page=1", http.StatusOK, `{"data": [`)
			},
		},
		{
			name: "unsupported content type",
			setup: func(f *fakeFetcher) {
				f.results["users?page=1"] = fakeResult{resp: &client.Response{
					StatusCode: http.StatusOK,
					Header:     http.Header{"Content-Type": []string{"text/html"}},
					Body:       []byte(pageBody(1, 1, `{"id":1}`)),
				}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := newFakeFetcher()
			tt.setup(fetcher)
			svc, _ := newTestService(t, fetcher)

			got := svc.FetchAllUsers(context.Background())

			require.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestFetchAllUsers_CachedPageSkipsRequest(t *testing.T) {
	fetcher := newFakeFetcher()
	svc, store := newTestService(t, fetcher)
	ctx := context.Background()

	cached := []User{{ID: 7, Email: "michael.lawson@reqres.in", FirstName: "Michael", LastName: "Lawson"}}
	require.NoError(t, cache.SetJSON(ctx, store, "users_page_1", cached, time.Minute))

	got := svc.FetchAllUsers(ctx)

	assert.Equal(t, cached, got)
	assert.Zero(t, fetcher.callCount())
}

func TestFetchAllUsers_CachesPages(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.respond("users?page=1", http.StatusOK, pageBody(1, 2, `{"id":1}`))
	fetcher.respond("users?page=2", http.StatusOK, pageBody(2, 2, `{"id":2}`))
	svc, store := newTestService(t, fetcher)
	ctx := context.Background()

	first := svc.FetchAllUsers(ctx)
	require.Len(t, first, 2)
	require.Equal(t, 2, fetcher.callCount())

	var page2 []User
	hit, err := cache.GetJSON(ctx, store, "users_page_2", &page2)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, []User{{ID: 2}}, page2)

	// Page 1 from cache does not reveal the page count, so the walk stops there.
	second := svc.FetchAllUsers(ctx)
	assert.Equal(t, []User{{ID: 1}}, second)
	assert.Equal(t, 2, fetcher.callCount())
}

func TestFetchAllUsers_EmptyPageStops(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.respond("users?page=1", http.StatusOK, pageBody(1, 3, `{"id":1}`))
	fetcher.respond("users?page=2", http.StatusOK, pageBody(2, 3, ``))
	fetcher.respond("users?page=3", http.StatusOK, pageBody(3, 3, `{"id":3}`))
	svc, _ := newTestService(t, fetcher)

	got := svc.FetchAllUsers(context.Background())

	assert.Equal(t, []User{{ID: 1}}, got)
	assert.Equal(t, []string{"users?page=1", "users?page=2"}, fetcher.calledPaths())
}

func TestFetchAllUsers_MissingDataAndTotal(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.respond("users?page=1", http.StatusOK, `{"page":1}`)
	svc, store := newTestService(t, fetcher)
	ctx := context.Background()

	got := svc.FetchAllUsers(ctx)

	require.NotNil(t, got)
	assert.Empty(t, got)

	var cached []User
	hit, err := cache.GetJSON(ctx, store, "users_page_1", &cached)
	require.NoError(t, err)
	assert.True(t, hit, "empty page is still cached")
	assert.Empty(t, cached)
}

func TestFetchAllUsers_CancelledContext(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.respond("users?page=1", http.StatusOK, pageBody(1, 1, `{"id":1}`))
	svc, _ := newTestService(t, fetcher)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := svc.FetchAllUsers(ctx)

	assert.Empty(t, got)
	assert.Zero(t, fetcher.callCount())
}

func TestFetchUserByID_Success(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.respond("users/2", http.StatusOK,
		`{"data":{"id":2,"email":"janet.weaver@reqres.in","first_name":"Janet","last_name":"Weaver","avatar":"https://reqres.in/img/faces/2-image.jpg"}}`)
	svc, _ := newTestService(t, fetcher)

	got, err := svc.FetchUserByID(context.Background(), 2)

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, User{
		ID:        2,
		Email:     "janet.weaver@reqres.in",
		FirstName: "Janet",
		LastName:  "Weaver",
		Avatar:    "https://reqres.in/img/faces/2-image.jpg",
	}, *got)
}

func TestFetchUserByID_CachedWithinTTL(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.respond("users/2", http.StatusOK, `{"data":{"id":2,"first_name":"Janet"}}`)
	svc, _ := newTestService(t, fetcher)
	ctx := context.Background()

	first, err := svc.FetchUserByID(ctx, 2)
	require.NoError(t, err)
	second, err := svc.FetchUserByID(ctx, 2)
	require.NoError(t, err)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
	assert.Equal(t, 1, fetcher.callCount())
}

func TestFetchUserByID_CacheHitSkipsRequest(t *testing.T) {
	fetcher := newFakeFetcher()
	svc, store := newTestService(t, fetcher)
	ctx := context.Background()

	require.NoError(t, cache.SetJSON(ctx, store, "user_9", User{ID: 9, FirstName: "Tobias"}, time.Minute))

	got, err := svc.FetchUserByID(ctx, 9)

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Tobias", got.FirstName)
	assert.Zero(t, fetcher.callCount())
}

func TestFetchUserByID_RefetchesAfterTTL(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.respond("users/3", http.StatusOK, `{"data":{"id":3}}`)
	svc, _ := newTestService(t, fetcher, WithTTL(20*time.Millisecond))
	ctx := context.Background()

	_, err := svc.FetchUserByID(ctx, 3)
	require.NoError(t, err)
	time.Sleep(60 * time.Millisecond)
	_, err = svc.FetchUserByID(ctx, 3)
	require.NoError(t, err)

	assert.Equal(t, 2, fetcher.callCount())
}

func TestFetchUserByID_NotFound(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.respond("users/42", http.StatusNotFound, `{}`)
	svc, _ := newTestService(t, fetcher)

	got, err := svc.FetchUserByID(context.Background(), 42)

	assert.Nil(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 42, notFound.ID)
	assert.Equal(t, "user 42 not found", err.Error())
}

func TestFetchUserByID_AbsentWithoutError(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fakeFetcher)
	}{
		{
			name: "server error",
			setup: func(f *fakeFetcher) {
				f.respond("users/5", http.StatusInternalServerError, `{}`)
			},
		},
		{
			name: "bad request",
			setup: func(f *fakeFetcher) {
				f.respond("users/5", http.StatusBadRequest, `{}`)
			},
		},
		{
			name: "network error",
			setup: func(f *fakeFetcher) {
				f.fail("users/5", errors.New("dial tcp: connection refused"))
			},
		},
		{
			name: "timeout",
			setup: func(f *fakeFetcher) {
				f.fail("users/5", fmt.Errorf("get /users/5: %w", context.DeadlineExceeded))
			},
		},
		{
			name: "malformed json",
			setup: func(f *fakeFetcher) {
				f.respond("users/5", http.StatusOK, `{"data":`)
			},
		},
		{
			name: "no data",
			setup: func(f *fakeFetcher) {
				f.respond("users/5", http.StatusOK, `{}`)
			},
		},
		{
			name: "null data",
			setup: func(f *fakeFetcher) {
				f.respond("users/5", http.StatusOK, `{"data":null}`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := newFakeFetcher()
			tt.setup(fetcher)
			svc, store := newTestService(t, fetcher)

			got, err := svc.FetchUserByID(context.Background(), 5)

			assert.NoError(t, err)
			assert.Nil(t, got)
			assert.Zero(t, store.Len(), "failures are not cached")
		})
	}
}

func TestFetchUserByID_NonPositiveID(t *testing.T) {
	fetcher := newFakeFetcher()
	svc, _ := newTestService(t, fetcher)

	for _, id := range []int{0, -1} {
		got, err := svc.FetchUserByID(context.Background(), id)
		assert.NoError(t, err)
		assert.Nil(t, got)
	}
	assert.Zero(t, fetcher.callCount())
}

// failingStore fails every operation.
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("redis: connection pool timeout")
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("redis: connection pool timeout")
}

func (failingStore) Delete(context.Context, string) error {
	return errors.New("redis: connection pool timeout")
}

func TestService_CacheFailureFallsBackToAPI(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.respond("users?page=1", http.StatusOK, pageBody(1, 1, `{"id":1}`))
	fetcher.respond("users/1", http.StatusOK, `{"data":{"id":1}}`)
	svc := NewService(fetcher, failingStore{}, WithLogger(zerolog.Nop()))
	ctx := context.Background()

	assert.Equal(t, []User{{ID: 1}}, svc.FetchAllUsers(ctx))

	got, err := svc.FetchUserByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.ID)
}

func TestFailureKind(t *testing.T) {
	assert.Equal(t, "timeout", failureKind(context.DeadlineExceeded))
	assert.Equal(t, "cancelled", failureKind(fmt.Errorf("get: %w", context.Canceled)))
	assert.Equal(t, "network", failureKind(errors.New("connection refused")))
}
