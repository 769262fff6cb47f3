package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/travigo/pidboard/pkg/golemio"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ErrorKind is the code surfaced back to a configuration form
type ErrorKind string

const (
	ErrorMissingAPIKey        ErrorKind = "missing_api_key"
	ErrorInvalidStopIDs       ErrorKind = "invalid_stop_ids"
	ErrorInvalidMinutesBefore ErrorKind = "invalid_minutes_before"
	ErrorInvalidMinutesAfter  ErrorKind = "invalid_minutes_after"
	ErrorInvalidIntervalSum   ErrorKind = "invalid_interval_sum"
	ErrorInvalidAuth          ErrorKind = "invalid_auth"
	ErrorCannotConnect        ErrorKind = "cannot_connect"
	ErrorUpstreamHTTP         ErrorKind = "upstream_http_error"
	ErrorUnknown              ErrorKind = "unknown"
)

// Form field keys. FieldBase holds errors that do not belong to a single field.
const (
	FieldAPIKey        = "api_key"
	FieldStopIDs       = "stop_ids"
	FieldMinutesBefore = "minutes_before"
	FieldMinutesAfter  = "minutes_after"
	FieldBase          = "base"
)

// FormErrors maps a form field to the error reported for it
type FormErrors map[string]ErrorKind

func (e FormErrors) Error() string {
	fields := maps.Keys(e)
	slices.Sort(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e[field]))
	}

	return fmt.Sprintf("invalid configuration (%s)", strings.Join(parts, ", "))
}

func (e FormErrors) merge(other FormErrors) {
	maps.Copy(e, other)
}

// ClassifyUpstreamError maps a Transit API Client failure onto an error kind
func ClassifyUpstreamError(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case golemio.IsAuthError(err):
		return ErrorInvalidAuth
	case golemio.IsConnectionError(err):
		return ErrorCannotConnect
	}

	var httpError *golemio.UpstreamHTTPError
	if errors.As(err, &httpError) {
		return ErrorUpstreamHTTP
	}

	return ErrorUnknown
}
