package sentinelhub

import (
	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/model"
)

const (
	dataSourceS2L2A  = "S2_L2A" // Sentinel-2 Level-2A
	outputSize       = 512
	outputIdentifier = "default"
	outputFormatJPEG = "image/jpeg"
)

// AccessToken is a short-lived bearer token from the OAuth endpoint.
// It is only valid for the request that follows the exchange.
type AccessToken string

type processRequest struct {
	Input  processInput  `json:"input"`
	Output processOutput `json:"output"`
}

type processInput struct {
	Bounds processBounds `json:"bounds"`
	Data   []processData `json:"data"`
}

type processBounds struct {
	BBox []float64 `json:"bbox"`
}

type processData struct {
	DataSource string `json:"dataSource"`
	Time       string `json:"time"`
}

type processOutput struct {
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Responses []processResponse `json:"responses"`
}

type processResponse struct {
	Identifier string       `json:"identifier"`
	Format     outputFormat `json:"format"`
}

type outputFormat struct {
	Type string `json:"type"`
}

func newProcessRequest(coord model.Coordinate, date model.Date) processRequest {
	return processRequest{
		Input: processInput{
			Bounds: processBounds{BBox: coord.BoundingBox().BBox()},
			Data: []processData{{
				DataSource: dataSourceS2L2A,
				Time:       date.String(),
			}},
		},
		Output: processOutput{
			Width:  outputSize,
			Height: outputSize,
			Responses: []processResponse{{
				Identifier: outputIdentifier,
				Format:     outputFormat{Type: outputFormatJPEG},
			}},
		},
	}
}

// processResult is the raw body of a successful process call.
// Pointers distinguish an absent field from an empty one.
type processResult struct {
	Outputs *struct {
		Default *struct {
			URL *string `json:"url"`
		} `json:"default"`
	} `json:"outputs"`
}

// defaultURL returns outputs.default.url, or "" when any part of the path is absent.
func (r processResult) defaultURL() string {
	if r.Outputs == nil || r.Outputs.Default == nil || r.Outputs.Default.URL == nil {
		return ""
	}
	return *r.Outputs.Default.URL
}
