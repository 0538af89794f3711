package domain

import (
	"net/http"
	"strconv"
	"strings"
)

// NoResponse is the summary used when no HTTP response was received.
const NoResponse = "no response"

// Outcome is the classified result of a single delivery attempt.
// It drives logging, events and metrics, never control flow back to the host.
type Outcome struct {
	// Success is true iff a 2xx response was received.
	Success bool

	// StatusCode is the HTTP status, or zero when no response was received.
	StatusCode int

	// Summary describes a failed exchange: "<code> <text> <body>" or NoResponse.
	Summary string

	// Err carries the underlying cause for failures that had no response.
	Err error
}

// Delivered returns a successful outcome for the given status code.
func Delivered(statusCode int) Outcome {
	return Outcome{Success: true, StatusCode: statusCode}
}

// Rejected returns a failed outcome for a non-2xx response.
func Rejected(statusCode int, body []byte) Outcome {
	return Outcome{
		StatusCode: statusCode,
		Summary:    SummarizeResponse(statusCode, body),
	}
}

// Unreachable returns a failed outcome for an exchange that produced no response.
func Unreachable(err error) Outcome {
	return Outcome{Summary: NoResponse, Err: err}
}

// SummarizeResponse formats a response as "<code> <text> <body>".
// A zero status code means no response was received.
func SummarizeResponse(statusCode int, body []byte) string {
	if statusCode == 0 {
		return NoResponse
	}
	parts := []string{strconv.Itoa(statusCode), http.StatusText(statusCode), strings.TrimSpace(string(body))}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// IsSuccessStatus reports whether the status code is in the 2xx range.
func IsSuccessStatus(statusCode int) bool {
	return statusCode/100 == 2
}
