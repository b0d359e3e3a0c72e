// Package testutil provides testing utilities for the users API client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockUser mirrors the remote user shape.
type MockUser struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
}

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockAPI is a configurable mock users API server for testing.
//
// Responses are matched on path plus raw query first ("/users?page=2"),
// then on path alone. Unmatched requests get a 404.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	requests          []string
	lastRequestHeader http.Header
}

// NewMockAPI creates a new mock users API server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := r.URL.Path
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}

		mock.mu.Lock()
		mock.requests = append(mock.requests, target)
		mock.lastRequestHeader = r.Header.Clone()
		handler, exists := mock.handlers[target]
		if !exists {
			handler, exists = mock.handlers[r.URL.Path]
		}
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{}`))
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears request tracking.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.lastRequestHeader = nil
}

// SetHandler sets a custom handler for a path, optionally with a query.
func (m *MockAPI) SetHandler(target string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[target] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockAPI) SetResponse(target string, resp MockResponse) {
	m.SetHandler(target, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetUsersPage configures the response for GET /users?page=<page>.
func (m *MockAPI) SetUsersPage(page int, resp MockResponse) {
	m.SetResponse(fmt.Sprintf("/users?page=%d", page), resp)
}

// SetUser configures the response for GET /users/<id>.
func (m *MockAPI) SetUser(id int, resp MockResponse) {
	m.SetResponse(fmt.Sprintf("/users/%d", id), resp)
}

// RequestCount returns the number of requests made to the server.
func (m *MockAPI) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// Requests returns the requested targets in arrival order.
func (m *MockAPI) Requests() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.requests...)
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockAPI) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRequestHeader
}

// NewJSONResponse creates a 200 OK response carrying body as JSON.
func NewJSONResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewPageResponse creates a 200 OK users page.
func NewPageResponse(page, totalPages int, users ...MockUser) MockResponse {
	if users == nil {
		users = []MockUser{}
	}
	body, err := json.Marshal(map[string]any{
		"page":        page,
		"per_page":    len(users),
		"total":       len(users) * totalPages,
		"total_pages": totalPages,
		"data":        users,
	})
	if err != nil {
		panic(err)
	}
	return NewJSONResponse(string(body))
}

// NewUserResponse creates a 200 OK single-user response.
func NewUserResponse(user MockUser) MockResponse {
	body, err := json.Marshal(map[string]any{"data": user})
	if err != nil {
		panic(err)
	}
	return NewJSONResponse(string(body))
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewMalformedResponse creates a 200 OK response whose body is not valid JSON.
func NewMalformedResponse() MockResponse {
	return NewJSONResponse(`{"data": [`)
}
