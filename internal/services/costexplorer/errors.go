package costexplorer

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/j-veylop/aws-costs-tui/internal/services/sigv4"
)

// Error kinds returned by the client. Every error from FetchReport wraps
// exactly one of these, or sigv4.ErrSigning.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrBadRequest       = errors.New("bad request")
	ErrTransient        = errors.New("transient failure")
	ErrDecode           = errors.New("decode error")
)

const dataUnavailableType = "DataUnavailableException"

// APIError describes a failed Cost Explorer call.
type APIError struct {
	Kind       error
	StatusCode int
	Type       string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if t := shortType(e.Type); t != "" {
		b.WriteString(": ")
		b.WriteString(t)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Unwrap exposes the error kind to errors.Is.
func (e *APIError) Unwrap() error {
	return e.Kind
}

// shortType strips the namespace prefix from a JSON 1.1 error type,
// e.g. "com.amazonaws.ce#AccessDeniedException" -> "AccessDeniedException".
func shortType(t string) string {
	if i := strings.LastIndex(t, "#"); i >= 0 {
		t = t[i+1:]
	}
	if i := strings.Index(t, ":"); i >= 0 {
		t = t[:i]
	}
	return t
}

// classifyStatus maps a non-200 response to an error kind. The second return
// is true when the response means "no billable data" rather than a failure.
func classifyStatus(status int, errType string) (error, bool) {
	switch {
	case status == http.StatusForbidden:
		return ErrPermissionDenied, false
	case status == http.StatusBadRequest && strings.Contains(errType, dataUnavailableType):
		return nil, true
	case status == http.StatusTooManyRequests:
		return ErrTransient, false
	case status == http.StatusBadRequest && isThrottle(errType):
		return ErrTransient, false
	case status >= 500:
		return ErrTransient, false
	case status == http.StatusUnauthorized:
		return ErrPermissionDenied, false
	default:
		return ErrBadRequest, false
	}
}

// isThrottle reports whether a 400 error type means the caller was throttled.
// Cost Explorer signals its request quota with LimitExceededException.
func isThrottle(errType string) bool {
	return strings.Contains(errType, "ThrottlingException") ||
		strings.Contains(errType, "LimitExceededException")
}

// IsRetryable reports whether err is worth retrying under caller policy.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient)
}

// Hint returns a one-line remediation suggestion for err, or "".
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "the IAM identity needs the ce:GetCostAndUsage permission"
	case errors.Is(err, ErrBadRequest):
		return "check that Cost Explorer is enabled for this account (Billing console > Cost Explorer)"
	case errors.Is(err, ErrTransient):
		return "the Cost Explorer API is unreachable or throttling; try again shortly"
	case errors.Is(err, ErrDecode):
		return "the Cost Explorer response format was not recognised"
	case errors.Is(err, sigv4.ErrSigning):
		return "check the access key, secret key and region of the selected profile"
	default:
		return ""
	}
}
