package riot

import (
	"errors"
	"fmt"
	"net/http"
)

// Remote error kinds. Match them with errors.Is; *APIError unwraps to one of these.
var (
	// ErrNotFound is the expected negative result for an unknown player, account or match.
	ErrNotFound    = errors.New("riot: not found")
	ErrAuth        = errors.New("riot: authentication failed, check the API key")
	ErrRateLimited = errors.New("riot: rate limited by remote")
	ErrUnknown     = errors.New("riot: unexpected response")
)

// APIError carries the HTTP status behind a classified remote failure.
type APIError struct {
	StatusCode int
	Endpoint   string
	Kind       error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d, endpoint %s)", e.Kind, e.StatusCode, e.Endpoint)
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// classifyStatus maps a non-200 status to its error kind.
func classifyStatus(status int) error {
	switch status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuth
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return ErrUnknown
	}
}

// outcomeLabel is the metrics label for a request result.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrUnknown):
		return "unknown"
	default:
		return "transport"
	}
}
