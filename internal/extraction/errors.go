package extraction

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrExtraction wraps every failure returned by Client.Extract.
	ErrExtraction = errors.New("extraction failed")

	// ErrRateLimited is returned once the retry budget for 429 responses is spent.
	ErrRateLimited = errors.New("provider rate limited")

	// ErrEmptyResponse is returned when the provider answers without a text payload.
	ErrEmptyResponse = errors.New("provider returned no text")
)

// StatusError is a non-success HTTP response from a provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider error (%d): %s", e.StatusCode, e.Body)
}

// IsRateLimited reports whether err is a provider 429.
func IsRateLimited(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests
}

// ParseError carries the payload that could not be decoded as JSON.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse model output as JSON: %v: %s", e.Err, e.Raw)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
