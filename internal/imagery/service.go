package imagery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/model"
	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/storage"
)

// Messages logged for each fetch outcome.
const (
	msgImageURL     = "Image URL: "
	msgNoImageFound = "No image found for the given parameters."
	msgFetchFailed  = "failed to fetch satellite image"
)

// Outcome labels reported to Metrics.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Query contains input parameters for an imagery lookup.
type Query struct {
	Coordinate model.Coordinate
	Date       model.Date
}

// Validate rejects out-of-range coordinates and unset dates.
func (q Query) Validate() error {
	if err := q.Coordinate.Validate(); err != nil {
		return err
	}
	if q.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	return nil
}

// Fetcher resolves an image URL from one provider.
type Fetcher interface {
	Provider() model.Provider
	FetchImage(ctx context.Context, q Query) (model.ImageQueryResult, error)
}

// ObjectStorage writes small records to object storage.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte) error
}

// Metrics observes fetch outcomes.
type Metrics interface {
	ObserveFetch(provider model.Provider, outcome string, d time.Duration)
}

// Outcome is the result of one provider fetch.
type Outcome struct {
	Provider model.Provider
	Result   model.ImageQueryResult
	Err      error
	Duration time.Duration
}

// Label returns the metrics label for the outcome.
func (o Outcome) Label() string {
	switch {
	case o.Err != nil:
		return OutcomeError
	case o.Result.Found():
		return OutcomeFound
	default:
		return OutcomeNotFound
	}
}

// FirstError returns the first failed outcome's error, or nil.
func FirstError(outcomes []Outcome) error {
	for _, o := range outcomes {
		if o.Err != nil {
			return o.Err
		}
	}
	return nil
}

// Service runs each configured provider fetch in turn.
// A failing provider is logged and does not stop the ones after it.
type Service struct {
	fetchers      []Fetcher
	objectStorage ObjectStorage
	metrics       Metrics
}

// NewService wires the fetchers with optional result storage and metrics; both may be nil.
func NewService(fetchers []Fetcher, objectStorage ObjectStorage, metrics Metrics) *Service {
	return &Service{fetchers: fetchers, objectStorage: objectStorage, metrics: metrics}
}

// Run fetches from every provider sequentially and returns one Outcome per provider.
// The returned error is set only when the query or run id is invalid, in which case
// no request is made.
func (s *Service) Run(ctx context.Context, q Query, runID model.RunID) ([]Outcome, error) {
	if err := runID.Validate(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(s.fetchers))
	for _, fetcher := range s.fetchers {
		outcome := s.fetch(ctx, fetcher, q, runID)
		outcomes = append(outcomes, outcome)

		if s.metrics != nil {
			s.metrics.ObserveFetch(outcome.Provider, outcome.Label(), outcome.Duration)
		}
		if s.objectStorage != nil {
			if err := s.store(ctx, q, runID, outcome); err != nil {
				slog.WarnContext(ctx, "failed to store fetch record", "provider", outcome.Provider, "run_id", runID, "error", err)
			}
		}
	}

	return outcomes, nil
}

func (s *Service) fetch(ctx context.Context, fetcher Fetcher, q Query, runID model.RunID) Outcome {
	provider := fetcher.Provider()
	slog.DebugContext(ctx, "fetch started", "provider", provider, "lat", q.Coordinate.Lat, "lon", q.Coordinate.Lon, "date", q.Date.String(), "run_id", runID)

	start := time.Now()
	result, err := fetcher.FetchImage(ctx, q)
	outcome := Outcome{Provider: provider, Result: result, Err: err, Duration: time.Since(start)}

	switch {
	case err != nil:
		slog.ErrorContext(ctx, msgFetchFailed, "provider", provider, "stage", StageOf(err), "run_id", runID, "error", err)
	case result.Found():
		slog.InfoContext(ctx, msgImageURL+result.URL, "provider", provider, "run_id", runID)
	default:
		slog.InfoContext(ctx, msgNoImageFound, "provider", provider, "run_id", runID)
	}

	return outcome
}

// fetchRecord is the JSON document stored per outcome. It never holds imagery.
type fetchRecord struct {
	RunID    model.RunID    `json:"run_id"`
	Provider model.Provider `json:"provider"`
	Lat      float64        `json:"lat"`
	Lon      float64        `json:"lon"`
	BBox     []float64      `json:"bbox"`
	Date     string         `json:"date"`
	Found    bool           `json:"found"`
	URL      string         `json:"url,omitempty"`
	Error    string         `json:"error,omitempty"`
	Duration float64        `json:"duration_seconds"`
}

func (s *Service) store(ctx context.Context, q Query, runID model.RunID, outcome Outcome) error {
	record := fetchRecord{
		RunID:    runID,
		Provider: outcome.Provider,
		Lat:      q.Coordinate.Lat,
		Lon:      q.Coordinate.Lon,
		BBox:     q.Coordinate.BoundingBox().BBox(),
		Date:     q.Date.String(),
		Found:    outcome.Result.Found(),
		URL:      outcome.Result.URL,
		Duration: outcome.Duration.Seconds(),
	}
	if outcome.Err != nil {
		record.Error = outcome.Err.Error()
	}

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	key := storage.ObjectKey{
		Provider:  outcome.Provider,
		Date:      q.Date.String(),
		RunID:     runID,
		Extension: "json",
	}
	if err := s.objectStorage.Put(ctx, key.Key(), body); err != nil {
		return fmt.Errorf("store: %w", err)
	}

	slog.DebugContext(ctx, "fetch record stored", "key", key.Key(), "run_id", runID)
	return nil
}

// StageOf reports which stage of a provider flow produced err, or "" if unknown.
func StageOf(err error) Stage {
	var (
		authErr      *AuthenticationError
		requestErr   *ImageRequestError
		malformedErr *MalformedResponseError
		timeoutErr   *TimeoutError
	)
	switch {
	case errors.As(err, &authErr):
		return StageAuthenticate
	case errors.As(err, &requestErr):
		return requestErr.Stage
	case errors.As(err, &malformedErr):
		return malformedErr.Stage
	case errors.As(err, &timeoutErr):
		return timeoutErr.Stage
	default:
		return ""
	}
}
