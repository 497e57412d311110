package feishu

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/custodia-labs/noticesync/internal/core/domain"
)

// Feishu business codes that carry meaning for the client.
const (
	codeRateLimited        = 99991400
	codeAccessTokenMissing = 99991661
	codeTenantTokenInvalid = 99991663
	codeAccessTokenInvalid = 99991668
	codeAccessTokenExpired = 99991677
)

// ErrInvalidResource indicates a resource identifier the adapter cannot address.
var ErrInvalidResource = errors.New("feishu: invalid resource id")

// APIError is a failed Feishu API call. Status is the HTTP status and Code
// the business code from the response envelope.
type APIError struct {
	Status int
	Code   int
	Msg    string
	Path   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("feishu: %s: status %d code %d: %s", e.Path, e.Status, e.Code, e.Msg)
}

// Unwrap maps the failure onto a domain error so callers can branch with errors.Is.
func (e *APIError) Unwrap() error {
	switch {
	case e.isAuth():
		return domain.ErrAuth
	case e.Status == http.StatusTooManyRequests || e.Code == codeRateLimited:
		return domain.ErrRateLimited
	case e.Status == http.StatusNotFound:
		return domain.ErrNotFound
	default:
		return nil
	}
}

func (e *APIError) isAuth() bool {
	if e.Status == http.StatusUnauthorized {
		return true
	}
	switch e.Code {
	case codeAccessTokenMissing, codeTenantTokenInvalid, codeAccessTokenInvalid, codeAccessTokenExpired:
		return true
	}
	return false
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusNotFound
	}
	return false
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.isAuth()
	}
	return errors.Is(err, domain.ErrAuth)
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}
