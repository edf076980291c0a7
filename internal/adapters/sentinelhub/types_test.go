package sentinelhub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/model"
)

func TestNewProcessRequest(t *testing.T) {
	coord := model.Coordinate{Lat: 17.4065, Lon: 78.4772}
	date := model.NewDate(time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC))

	req := newProcessRequest(coord, date)

	lat, lon := coord.Lat, coord.Lon
	wantBBox := []float64{lon - 0.01, lat - 0.01, lon + 0.01, lat + 0.01}
	if len(req.Input.Bounds.BBox) != 4 {
		t.Fatalf("expected 4 bbox values, got %v", req.Input.Bounds.BBox)
	}
	for i := range wantBBox {
		if req.Input.Bounds.BBox[i] != wantBBox[i] {
			t.Errorf("bbox[%d] = %v, want %v", i, req.Input.Bounds.BBox[i], wantBBox[i])
		}
	}

	if len(req.Input.Data) != 1 || req.Input.Data[0].DataSource != "S2_L2A" || req.Input.Data[0].Time != "2023-10-01" {
		t.Errorf("unexpected data: %+v", req.Input.Data)
	}
	if req.Output.Width != 512 || req.Output.Height != 512 {
		t.Errorf("expected 512x512 output, got %dx%d", req.Output.Width, req.Output.Height)
	}
	if len(req.Output.Responses) != 1 {
		t.Fatalf("expected a single output response, got %d", len(req.Output.Responses))
	}
	if r := req.Output.Responses[0]; r.Identifier != "default" || r.Format.Type != "image/jpeg" {
		t.Errorf("unexpected output response: %+v", r)
	}
}

func TestNewProcessRequest_JSONShape(t *testing.T) {
	req := newProcessRequest(model.Coordinate{Lat: 1, Lon: 2}, model.NewDate(time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)))

	b, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"input":{"bounds":{"bbox":[1.99,0.99,2.01,1.01]},"data":[{"dataSource":"S2_L2A","time":"2023-10-01"}]},` +
		`"output":{"width":512,"height":512,"responses":[{"identifier":"default","format":{"type":"image/jpeg"}}]}}`
	if string(b) != want {
		t.Errorf("payload JSON =\n%s\nwant\n%s", string(b), want)
	}
}

func TestProcessResult_DefaultURL(t *testing.T) {
	tests := map[string]string{
		`{"outputs":{"default":{"url":"https://x/img.jpg"}}}`: "https://x/img.jpg",
		`{"outputs":{"default":{}}}`:                          "",
		`{}`:                                                  "",
	}

	for body, want := range tests {
		var r processResult
		if err := json.Unmarshal([]byte(body), &r); err != nil {
			t.Fatalf("unmarshal %s: %v", body, err)
		}
		if got := r.defaultURL(); got != want {
			t.Errorf("defaultURL(%s) = %q, want %q", body, got, want)
		}
	}
}
