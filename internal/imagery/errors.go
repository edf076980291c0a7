package imagery

import (
	"fmt"

	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/model"
)

// Stage names the request within a provider flow that failed.
type Stage string

const (
	StageAuthenticate Stage = "authenticate"
	StageProcess      Stage = "process"
	StageAssets       Stage = "assets"
)

// AuthenticationError is returned when the token endpoint rejects the credentials
// or cannot be reached.
type AuthenticationError struct {
	Provider   model.Provider
	StatusCode int
	Body       string
	Err        error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: authentication failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: authentication failed (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// ImageRequestError is returned when an image endpoint answers with a non-success
// status or the request fails in transport.
type ImageRequestError struct {
	Provider   model.Provider
	Stage      Stage
	StatusCode int
	Body       string
	Err        error
}

func (e *ImageRequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s request failed: %v", e.Provider, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %s request failed (status %d): %s", e.Provider, e.Stage, e.StatusCode, e.Body)
}

func (e *ImageRequestError) Unwrap() error { return e.Err }

// MalformedResponseError is returned when a success response lacks a required
// field or cannot be decoded.
type MalformedResponseError struct {
	Provider model.Provider
	Stage    Stage
	Field    string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: malformed %s response: %v", e.Provider, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: malformed %s response: missing %s", e.Provider, e.Stage, e.Field)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// TimeoutError is returned when a request exceeds its deadline.
type TimeoutError struct {
	Provider model.Provider
	Stage    Stage
	Err      error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: %s request timed out: %v", e.Provider, e.Stage, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }
