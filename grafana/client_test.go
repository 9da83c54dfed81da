package grafana

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/rscampini/grafana-orgsync/metrics"
)

// MockHttpClient implements the Httper interface for testing
type MockHttpClient struct {
	DoFunc func(req *http.Request) (*http.Response, error)
}

func (m *MockHttpClient) Do(req *http.Request) (*http.Response, error) {
	return m.DoFunc(req)
}

func newTestClient(respBody string, statusCode int, respErr error, captured **http.Request) *client {
	return &client{
		baseURL:  "http://localhost:3000",
		username: "admin",
		password: "admin",
		metrics:  metrics.New(false),
		http: &MockHttpClient{
			DoFunc: func(req *http.Request) (*http.Response, error) {
				if captured != nil {
					*captured = req
				}
				if respErr != nil {
					return nil, respErr
				}
				return &http.Response{
					StatusCode: statusCode,
					Body:       io.NopCloser(bytes.NewReader([]byte(respBody))),
				}, nil
			},
		},
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name        string
		respBody    string
		statusCode  int
		respErr     error
		expected    Org
		expectError bool
	}{
		{
			name:       "organization found",
			respBody:   `{"id": 7, "name": "acme"}`,
			statusCode: http.StatusOK,
			expected:   Org{ID: 7, Name: "acme", Status: 200, Message: "Organization exists"},
		},
		{
			name:       "organization not found with message",
			respBody:   `{"message": "Organization not found"}`,
			statusCode: http.StatusNotFound,
			expected:   Org{ID: NotFound, Name: "acme", Status: 404, Message: "Organization not found"},
		},
		{
			name:       "organization not found with empty body",
			respBody:   "",
			statusCode: http.StatusNotFound,
			expected:   Org{ID: NotFound, Name: "acme", Status: 404, Message: "Cannot search organization"},
		},
		{
			name:       "error body without message field",
			respBody:   `{"error": "boom"}`,
			statusCode: http.StatusInternalServerError,
			expected:   Org{ID: NotFound, Name: "acme", Status: 500, Message: "Cannot search organization"},
		},
		{
			name:     "transport error degrades to absent",
			respErr:  errors.New("connection refused"),
			expected: Org{ID: NotFound, Name: "acme", Status: 0, Message: "Cannot search organization"},
		},
		{
			name:        "invalid json on success",
			respBody:    "not json",
			statusCode:  http.StatusOK,
			expectError: true,
		},
		{
			name:        "invalid json on error status",
			respBody:    "not json",
			statusCode:  http.StatusInternalServerError,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(tt.respBody, tt.statusCode, tt.respErr, nil)
			org, err := c.Lookup(context.Background(), "acme")

			if tt.expectError && err == nil {
				t.Fatal("Expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.expectError {
				return
			}
			if org != tt.expected {
				t.Errorf("Expected org %+v but got %+v", tt.expected, org)
			}
		})
	}
}

func TestLookupRequest(t *testing.T) {
	var captured *http.Request
	c := newTestClient(`{"id": 7, "name": "acme"}`, http.StatusOK, nil, &captured)

	if _, err := c.Lookup(context.Background(), "acme"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if captured.Method != http.MethodGet {
		t.Errorf("Expected GET request, got %s", captured.Method)
	}
	if got := captured.URL.String(); got != "http://localhost:3000/api/orgs/name/acme" {
		t.Errorf("Unexpected url %s", got)
	}
	if got := captured.Header.Get("Content-Type"); got != "application/json; charset=utf8" {
		t.Errorf("Unexpected content type %q", got)
	}
	username, password, ok := captured.BasicAuth()
	if !ok || username != "admin" || password != "admin" {
		t.Errorf("Expected basic auth admin/admin, got %q/%q (ok=%t)", username, password, ok)
	}
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name        string
		respBody    string
		statusCode  int
		respErr     error
		expected    Org
		expectError bool
	}{
		{
			name:       "organization created",
			respBody:   `{"orgId": 12, "message": "Organization created"}`,
			statusCode: http.StatusOK,
			expected:   Org{ID: 12, Name: "acme", Status: 200, Message: "Organization created"},
		},
		{
			name:       "creation rejected",
			respBody:   `{"message": "Organization name taken"}`,
			statusCode: http.StatusConflict,
			expected:   Org{ID: NotFound, Name: "acme", Status: 409, Message: "Organization name taken"},
		},
		{
			name:       "creation rejected with empty body",
			respBody:   "",
			statusCode: http.StatusInternalServerError,
			expected:   Org{ID: NotFound, Name: "acme", Status: 500, Message: "Organization could not be created"},
		},
		{
			name:     "transport error",
			respErr:  errors.New("connection refused"),
			expected: Org{ID: NotFound, Name: "acme", Status: 0, Message: "Organization could not be created"},
		},
		{
			name:        "invalid json on success",
			respBody:    "not json",
			statusCode:  http.StatusOK,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured *http.Request
			c := newTestClient(tt.respBody, tt.statusCode, tt.respErr, &captured)
			org, err := c.Create(context.Background(), "acme")

			if tt.expectError && err == nil {
				t.Fatal("Expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.expectError {
				return
			}
			if org != tt.expected {
				t.Errorf("Expected org %+v but got %+v", tt.expected, org)
			}

			if tt.respErr == nil {
				if captured.Method != http.MethodPost {
					t.Errorf("Expected POST request, got %s", captured.Method)
				}
				body, _ := io.ReadAll(captured.Body)
				if string(body) != `{"name":"acme"}` {
					t.Errorf("Unexpected payload %s", body)
				}
			}
		})
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name        string
		respBody    string
		statusCode  int
		respErr     error
		expected    Org
		expectError bool
	}{
		{
			name:       "organization deleted",
			respBody:   `{"message": "Organization deleted"}`,
			statusCode: http.StatusOK,
			expected:   Org{ID: 7, Name: "acme", Status: 200, Message: "Organization deleted"},
		},
		{
			name:       "deletion rejected",
			respBody:   `{"message": "Cannot delete main org"}`,
			statusCode: http.StatusBadRequest,
			expected:   Org{ID: NotFound, Name: "acme", Status: 400, Message: "Cannot delete main org"},
		},
		{
			name:       "deletion rejected with empty body",
			respBody:   "",
			statusCode: http.StatusInternalServerError,
			expected:   Org{ID: NotFound, Name: "acme", Status: 500, Message: "Organization could not be deleted"},
		},
		{
			name:     "transport error",
			respErr:  errors.New("connection refused"),
			expected: Org{ID: NotFound, Name: "acme", Status: 0, Message: "Organization could not be deleted"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured *http.Request
			c := newTestClient(tt.respBody, tt.statusCode, tt.respErr, &captured)
			org, err := c.Delete(context.Background(), "acme", 7)

			if tt.expectError && err == nil {
				t.Fatal("Expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.expectError {
				return
			}
			if org != tt.expected {
				t.Errorf("Expected org %+v but got %+v", tt.expected, org)
			}

			if tt.respErr == nil {
				if captured.Method != http.MethodDelete {
					t.Errorf("Expected DELETE request, got %s", captured.Method)
				}
				if got := captured.URL.String(); got != "http://localhost:3000/api/orgs/7" {
					t.Errorf("Unexpected url %s", got)
				}
			}
		})
	}
}
