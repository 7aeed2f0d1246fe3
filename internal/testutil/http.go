package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/portfolio/internal/app/system/auth"
	"github.com/dalemusser/portfolio/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminUser returns an in-memory admin for handler tests.
func AdminUser() models.User {
	return models.User{
		ID:    primitive.NewObjectID(),
		Name:  "Test Admin",
		Email: "admin@test.com",
		Role:  models.RoleAdmin,
	}
}

// RegularUser returns an in-memory non-admin user.
func RegularUser() models.User {
	return models.User{
		ID:    primitive.NewObjectID(),
		Name:  "Test User",
		Email: "user@test.com",
		Role:  models.RoleUser,
	}
}

// WithUser adds a user to the request context for testing authenticated handlers.
// This bypasses the auth middleware and injects the user directly.
func WithUser(r *http.Request, user models.User) *http.Request {
	return auth.WithUser(r, &user)
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates a request whose body is v encoded as JSON.
func NewJSONRequest(t *testing.T, method, target string, v any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		t.Fatalf("encode request body: %v", err)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %s)", r.Code, expected, r.Body.String())
	}
}

// Envelope is the decoded shape of every API response.
type Envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Fields     map[string]string `json:"fields"`
	Error      string            `json:"error"`
	Count      int               `json:"count"`
	Total      int64             `json:"total"`
	Pagination struct {
		Page  int `json:"page"`
		Limit int `json:"limit"`
		Pages int `json:"pages"`
	} `json:"pagination"`
	Data json.RawMessage `json:"data"`
}

// Decode parses the envelope and, when data is non-nil, its data field.
func (r *ResponseRecorder) Decode(t *testing.T, data any) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(r.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v (%s)", err, r.Body.String())
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data: %v (%s)", err, env.Data)
		}
	}
	return env
}
