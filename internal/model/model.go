package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Provider identifies an imagery provider.
type Provider string

const (
	SentinelHub Provider = "sentinelhub"
	NASA        Provider = "nasa"
)

// Providers lists every known provider in the order the job runs them.
var Providers = []Provider{SentinelHub, NASA}

// Validate checks that the provider is known.
func (p Provider) Validate() error {
	for _, known := range Providers {
		if p == known {
			return nil
		}
	}
	return fmt.Errorf("unknown provider %q", string(p))
}

// ParseProviders parses a comma-separated provider list. "all" selects every provider.
func ParseProviders(s string) ([]Provider, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "all" {
		return Providers, nil
	}

	var providers []Provider
	seen := make(map[Provider]bool)
	for _, part := range strings.Split(s, ",") {
		p := Provider(strings.ToLower(strings.TrimSpace(part)))
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		providers = append(providers, p)
	}
	return providers, nil
}

// RunID represents a UUIDv7 run identifier for one job invocation.
type RunID string

// NewRunID generates a fresh UUIDv7 run identifier.
func NewRunID() (RunID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate run-id: %w", err)
	}
	return RunID(id.String()), nil
}

// Validate checks that the RunID is a valid UUIDv7.
func (r RunID) Validate() error {
	if r == "" {
		return fmt.Errorf("run-id cannot be empty")
	}
	id, err := uuid.Parse(string(r))
	if err != nil {
		return fmt.Errorf("run-id must be a valid UUID: %w", err)
	}
	if id.Version() != uuid.Version(7) {
		return fmt.Errorf("run-id must be a UUIDv7, got v%d", id.Version())
	}
	return nil
}

// String returns the run ID as a string.
func (r RunID) String() string {
	return string(r)
}
