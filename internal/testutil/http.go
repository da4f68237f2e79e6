package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/runtracker/internal/app/system/auth"
)

// TestIdentity returns an identity for handler tests.
func TestIdentity(userID string) auth.Identity {
	return auth.Identity{
		UserID: userID,
		Name:   "Test Runner",
		Email:  userID + "@test.com",
		Source: auth.SourceHeader,
	}
}

// NewRequest creates a request; a non-nil body is JSON-encoded.
func NewRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// NewIdentifiedRequest creates a request carrying an identity for userID.
func NewIdentifiedRequest(t *testing.T, method, target, userID string, body any) *http.Request {
	t.Helper()
	return auth.WithTestIdentity(NewRequest(t, method, target, body), TestIdentity(userID))
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
		t.Errorf("status code: got %d, want %d (body %s)", r.Code, expected, strings.TrimSpace(r.Body.String()))
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}

// DecodeJSON decodes the response body into v.
func (r *ResponseRecorder) DecodeJSON(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, r.Body.String())
	}
}
