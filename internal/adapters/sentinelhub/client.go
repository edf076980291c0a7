// Package sentinelhub resolves Sentinel-2 image URLs through the Sentinel Hub
// process API, authenticating with OAuth client credentials.
package sentinelhub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/adapters/transport"
	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/imagery"
	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/model"
)

const (
	DefaultBaseURL = "https://services.sentinel-hub.com"

	tokenPath   = "/oauth/token"
	processPath = "/api/v1/process"

	maxBodySize = 1 << 20
)

// ErrNoToken is returned when RequestImage is called without a token from Authenticate.
var ErrNoToken = errors.New("sentinelhub: access token is required")

// Config holds Sentinel Hub connection settings.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
}

// Client interacts with the Sentinel Hub API.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

// NewClient creates a Sentinel Hub client. A nil httpClient gets the transport defaults.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = transport.NewHTTPClient(transport.Options{})
	}

	return &Client{
		baseURL:      cfg.BaseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   httpClient,
	}
}

// Provider implements imagery.Fetcher.
func (c *Client) Provider() model.Provider {
	return model.SentinelHub
}

// FetchImage runs one authenticate/request pair. The token is not kept.
func (c *Client) FetchImage(ctx context.Context, q imagery.Query) (model.ImageQueryResult, error) {
	if err := q.Validate(); err != nil {
		return model.NotFound, err
	}

	token, err := c.Authenticate(ctx)
	if err != nil {
		return model.NotFound, err
	}

	return c.RequestImage(ctx, token, q.Coordinate, q.Date)
}

// Authenticate exchanges the client credentials for an access token.
// The credentials are sent verbatim as HTTP Basic auth.
func (c *Client) Authenticate(ctx context.Context) (AccessToken, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	slog.DebugContext(ctx, "requesting access token", "token_url", req.URL.String())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.authError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", c.authError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &imagery.AuthenticationError{
			Provider:   model.SentinelHub,
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return "", &imagery.MalformedResponseError{
			Provider: model.SentinelHub,
			Stage:    imagery.StageAuthenticate,
			Err:      fmt.Errorf("token response: %w", err),
		}
	}
	if token.AccessToken == "" {
		return "", &imagery.MalformedResponseError{
			Provider: model.SentinelHub,
			Stage:    imagery.StageAuthenticate,
			Field:    "access_token",
		}
	}

	return AccessToken(token.AccessToken), nil
}

// RequestImage asks the process API to render the area around coord on date and
// returns the URL of the default output.
func (c *Client) RequestImage(ctx context.Context, token AccessToken, coord model.Coordinate, date model.Date) (model.ImageQueryResult, error) {
	if token == "" {
		return model.NotFound, ErrNoToken
	}

	body, err := json.Marshal(newProcessRequest(coord, date))
	if err != nil {
		return model.NotFound, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+processPath, bytes.NewReader(body))
	if err != nil {
		return model.NotFound, err
	}
	req.Header.Set("Authorization", "Bearer "+string(token))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	slog.DebugContext(ctx, "submitting process request", "bbox", coord.BoundingBox().BBox(), "date", date.String())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.NotFound, c.requestError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return model.NotFound, c.requestError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.NotFound, &imagery.ImageRequestError{
			Provider:   model.SentinelHub,
			Stage:      imagery.StageProcess,
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	var result processResult
	if err := json.Unmarshal(data, &result); err != nil {
		return model.NotFound, &imagery.MalformedResponseError{
			Provider: model.SentinelHub,
			Stage:    imagery.StageProcess,
			Err:      err,
		}
	}

	imageURL := result.defaultURL()
	if imageURL == "" {
		return model.NotFound, &imagery.MalformedResponseError{
			Provider: model.SentinelHub,
			Stage:    imagery.StageProcess,
			Field:    "outputs.default.url",
		}
	}

	return model.Found(imageURL), nil
}

// authError maps a token exchange transport failure onto the imagery error kinds.
func (c *Client) authError(err error) error {
	if transport.IsTimeout(err) {
		return &imagery.TimeoutError{Provider: model.SentinelHub, Stage: imagery.StageAuthenticate, Err: err}
	}
	return &imagery.AuthenticationError{Provider: model.SentinelHub, Err: err}
}

func (c *Client) requestError(err error) error {
	if transport.IsTimeout(err) {
		return &imagery.TimeoutError{Provider: model.SentinelHub, Stage: imagery.StageProcess, Err: err}
	}
	return &imagery.ImageRequestError{Provider: model.SentinelHub, Stage: imagery.StageProcess, Err: err}
}
