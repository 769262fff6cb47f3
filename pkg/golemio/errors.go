package golemio

import (
	"errors"
	"fmt"
	"net/http"
)

// UpstreamHTTPError is returned when the API answers with a non-2xx status
type UpstreamHTTPError struct {
	Status  int
	URL     string
	Message string
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("HTTP %d while fetching %s: %s", e.Status, e.URL, e.Message)
}

// UpstreamUnavailableError covers connection failures and timeouts
type UpstreamUnavailableError struct {
	Cause error
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("error fetching data: %v", e.Cause)
}

func (e *UpstreamUnavailableError) Unwrap() error {
	return e.Cause
}

// IsAuthError reports whether the API rejected the access token
func IsAuthError(err error) bool {
	var httpError *UpstreamHTTPError
	if errors.As(err, &httpError) {
		return httpError.Status == http.StatusUnauthorized || httpError.Status == http.StatusForbidden
	}

	return false
}

// IsConnectionError reports transport failures, timeouts and 5xx answers
func IsConnectionError(err error) bool {
	var unavailableError *UpstreamUnavailableError
	if errors.As(err, &unavailableError) {
		return true
	}

	var httpError *UpstreamHTTPError
	if errors.As(err, &httpError) {
		return httpError.Status >= http.StatusInternalServerError
	}

	return false
}
