package httpclient

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

var (
	// ErrAuth is returned for 401 and 403. Retrying with the same credentials is pointless.
	ErrAuth = errors.New("authentication failed")
	// ErrNotFound is returned for 404. Such responses are never cached.
	ErrNotFound = errors.New("resource not found")
	// ErrRateLimited is returned once 429 responses exhausted all attempts.
	ErrRateLimited = errors.New("rate limited")
	// ErrServer is returned once 5xx responses exhausted all attempts.
	ErrServer = errors.New("server error")
	// ErrUnexpectedStatus is returned for any other non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrConnection is returned once transport failures exhausted all attempts.
	ErrConnection = errors.New("connection failed")
	// ErrTimeout is returned once request timeouts exhausted all attempts.
	ErrTimeout = errors.New("request timed out")
	// ErrParse is returned when a successful response does not carry valid JSON.
	ErrParse = errors.New("malformed response body")
)

// IsRetryable reports whether err is a transient failure worth another attempt.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrServer) ||
		errors.Is(err, ErrConnection) ||
		errors.Is(err, ErrTimeout)
}

// statusError maps a non-successful HTTP status to its typed failure.
func statusError(statusCode int, rawURL string) error {
	switch {
	case statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices:
		return nil
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return fmt.Errorf("%w: GET %s returned HTTP %d", ErrAuth, rawURL, statusCode)
	case statusCode == http.StatusNotFound:
		return fmt.Errorf("%w: GET %s returned HTTP %d", ErrNotFound, rawURL, statusCode)
	case statusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: GET %s returned HTTP %d", ErrRateLimited, rawURL, statusCode)
	case statusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: GET %s returned HTTP %d", ErrServer, rawURL, statusCode)
	default:
		return fmt.Errorf("%w: GET %s returned HTTP %d", ErrUnexpectedStatus, rawURL, statusCode)
	}
}
