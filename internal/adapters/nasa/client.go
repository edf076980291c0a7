// Package nasa resolves image URLs from the NASA Earth imagery assets API.
package nasa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/adapters/transport"
	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/imagery"
	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/model"
)

const (
	DefaultBaseURL = "https://api.nasa.gov"

	assetsPath = "/planetary/earth/assets"
	dim        = "10.0"

	maxBodySize = 1 << 20
)

// Config holds NASA API settings.
type Config struct {
	BaseURL string
	APIKey  string
}

// Client queries the assets endpoint directly with an API key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a NASA client. A nil httpClient gets the transport defaults.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = transport.NewHTTPClient(transport.Options{})
	}
	return &Client{baseURL: cfg.BaseURL, apiKey: cfg.APIKey, httpClient: httpClient}
}

// Provider implements imagery.Fetcher.
func (c *Client) Provider() model.Provider {
	return model.NASA
}

// FetchImage implements imagery.Fetcher.
func (c *Client) FetchImage(ctx context.Context, q imagery.Query) (model.ImageQueryResult, error) {
	if err := q.Validate(); err != nil {
		return model.NotFound, err
	}
	return c.RequestImage(ctx, q.Coordinate, q.Date)
}

// RequestImage looks up the asset for coord on date. A response without a url is
// model.NotFound, not an error.
func (c *Client) RequestImage(ctx context.Context, coord model.Coordinate, date model.Date) (model.ImageQueryResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.assetsURL(coord, date), nil)
	if err != nil {
		return model.NotFound, err
	}
	req.Header.Set("Accept", "application/json")

	slog.DebugContext(ctx, "requesting assets", "lat", coord.Lat, "lon", coord.Lon, "date", date.String())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.NotFound, c.requestError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return model.NotFound, c.requestError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.NotFound, &imagery.ImageRequestError{
			Provider:   model.NASA,
			Stage:      imagery.StageAssets,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var assets assetsResponse
	if err := json.Unmarshal(body, &assets); err != nil {
		return model.NotFound, &imagery.MalformedResponseError{
			Provider: model.NASA,
			Stage:    imagery.StageAssets,
			Err:      err,
		}
	}

	if imageURL := assets.imageURL(); imageURL != "" {
		return model.Found(imageURL), nil
	}
	return model.NotFound, nil
}

// assetsURL keeps the query parameters in lon, lat, date, dim, api_key order.
func (c *Client) assetsURL(coord model.Coordinate, date model.Date) string {
	return fmt.Sprintf("%s%s?lon=%s&lat=%s&date=%s&dim=%s&api_key=%s",
		c.baseURL,
		assetsPath,
		strconv.FormatFloat(coord.Lon, 'f', -1, 64),
		strconv.FormatFloat(coord.Lat, 'f', -1, 64),
		date.String(),
		dim,
		url.QueryEscape(c.apiKey),
	)
}

func (c *Client) requestError(err error) error {
	if transport.IsTimeout(err) {
		return &imagery.TimeoutError{Provider: model.NASA, Stage: imagery.StageAssets, Err: err}
	}
	return &imagery.ImageRequestError{Provider: model.NASA, Stage: imagery.StageAssets, Err: err}
}
