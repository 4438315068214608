package github

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	ResetAt     time.Time
	Message     string
	StatusCode  int
	RateLimited bool
}

func (e *APIError) Error() string {
	if e.RateLimited {
		return fmt.Sprintf("github rate limited (status %d), resets %s", e.StatusCode, e.ResetAt.Format(time.Kitchen))
	}
	if e.Message != "" {
		return fmt.Sprintf("github error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("github error (status %d)", e.StatusCode)
}

// NotFound reports whether the resource does not exist.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func newAPIError(resp *http.Response, body []byte) *APIError {
	e := &APIError{StatusCode: resp.StatusCode}

	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		e.Message = payload.Message
	} else if len(body) > 0 {
		const maxTail = 200
		if len(body) > maxTail {
			body = body[:maxTail]
		}
		e.Message = string(body)
	}

	if resp.StatusCode == http.StatusTooManyRequests ||
		(resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0") {
		e.RateLimited = true
		if reset, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
			e.ResetAt = time.Unix(reset, 0)
		}
	}
	return e
}
