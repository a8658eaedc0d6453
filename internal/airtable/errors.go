package airtable

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Kind classifies an Error.
type Kind int

const (
	KindConfiguration Kind = iota + 1
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindValidation
	KindRateLimited
	KindUpstream
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindRateLimited:
		return "rate_limited"
	case KindUpstream:
		return "upstream"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Error is the only error type returned by Client. Message is meant to be
// shown to the user as is.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindTransport {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}
	return false
}

func errMissingAPIKey() *Error {
	return &Error{
		Kind:    KindConfiguration,
		Message: APIKeyEnv + " environment variable is required. Get your API key at https://airtable.com/create/tokens",
	}
}

// statusError maps a non-2xx response onto the error taxonomy. body is the
// raw response payload.
func statusError(status int, body []byte) *Error {
	switch status {
	case http.StatusUnauthorized:
		return &Error{Kind: KindAuthentication, StatusCode: status, Message: "Invalid API key. Check your " + APIKeyEnv + "."}
	case http.StatusForbidden:
		return &Error{Kind: KindAuthorization, StatusCode: status, Message: "Permission denied. Your API key lacks access to this resource."}
	case http.StatusNotFound:
		return &Error{Kind: KindNotFound, StatusCode: status, Message: "Not found. Check that the base/table/record ID is correct."}
	case http.StatusUnprocessableEntity:
		msg := "Unknown error"
		if m := gjson.GetBytes(body, "error.message"); m.Exists() && m.Type == gjson.String {
			msg = m.Str
		}
		return &Error{Kind: KindValidation, StatusCode: status, Message: "Invalid request: " + msg}
	case http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, StatusCode: status, Message: "Rate limited. Airtable allows 5 requests/second. Wait and retry."}
	default:
		return &Error{Kind: KindUpstream, StatusCode: status, Message: fmt.Sprintf("Airtable API error: %d - %s", status, string(body))}
	}
}

func transportError(method, path string, timeout time.Duration, err error) *Error {
	msg := fmt.Sprintf("Airtable request %s %s failed", method, path)
	if isTimeout(err) {
		msg = fmt.Sprintf("Airtable request %s %s timed out after %s", method, path, timeout)
	}
	return &Error{Kind: KindTransport, Message: msg, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	if errors.As(err, &te) {
		return te.Timeout()
	}
	return strings.Contains(err.Error(), "Client.Timeout exceeded")
}
