package exitcode

import (
	"errors"

	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/config"
	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/imagery"
	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/model"
)

// Exit codes for the imagery CLI.
// Schedulers can use these to decide retry strategy.
const (
	// Success - every provider answered (image found or not)
	Success = 0

	// ConfigError - missing or invalid configuration or flags
	// Don't retry: fix the config first
	ConfigError = 1

	// NetworkError - transport failure or timeout
	// Retry with backoff
	NetworkError = 2

	// APIError - provider rejected the credentials or the request
	// Check logs, may need manual intervention
	APIError = 3

	// StorageError - failed to initialize result storage
	// Retry with backoff
	StorageError = 4

	// DataError - provider answered success with an unusable body
	// Don't retry: investigate the response
	DataError = 5
)

// For maps an error to the exit code the job should terminate with.
func For(err error) int {
	var (
		cfgErr        *config.ConfigurationError
		validationErr *model.ValidationError
		authErr       *imagery.AuthenticationError
		requestErr    *imagery.ImageRequestError
		malformedErr  *imagery.MalformedResponseError
		timeoutErr    *imagery.TimeoutError
	)
	switch {
	case err == nil:
		return Success
	case errors.As(err, &cfgErr), errors.As(err, &validationErr):
		return ConfigError
	case errors.As(err, &timeoutErr):
		return NetworkError
	case errors.As(err, &authErr):
		if authErr.Err != nil {
			return NetworkError
		}
		return APIError
	case errors.As(err, &requestErr):
		if requestErr.Err != nil {
			return NetworkError
		}
		return APIError
	case errors.As(err, &malformedErr):
		return DataError
	default:
		return APIError
	}
}
