// Package problem writes RFC 7807 problem+json error responses.
package problem

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC 7807 Problem Details body.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

const typeBase = "https://runtracker.dev/errors/"

var types = map[int]struct {
	slug  string
	title string
}{
	http.StatusBadRequest:          {"bad-request", "Bad Request"},
	http.StatusUnauthorized:        {"unauthorized", "Unauthorized"},
	http.StatusForbidden:           {"forbidden", "Forbidden"},
	http.StatusNotFound:            {"not-found", "Not Found"},
	http.StatusConflict:            {"conflict", "Conflict"},
	http.StatusUnprocessableEntity: {"validation-error", "Validation Error"},
	http.StatusTooManyRequests:     {"rate-limited", "Too Many Requests"},
	http.StatusInternalServerError: {"internal-error", "Internal Server Error"},
	http.StatusServiceUnavailable:  {"service-unavailable", "Service Unavailable"},
}

// Write sends a problem response with the given status and detail.
func Write(w http.ResponseWriter, r *http.Request, status int, detail string) {
	pt, ok := types[status]
	if !ok {
		pt.slug = "error"
		pt.title = http.StatusText(status)
	}
	p := Problem{
		Type:   typeBase + pt.slug,
		Title:  pt.title,
		Status: status,
		Detail: detail,
	}
	if r != nil {
		p.Instance = r.URL.Path
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(p)
}
