package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/exitcode"
)

var envVars = []string{
	"CLIENT_ID", "CLIENT_SECRET", "NASA_API_KEY", "SENTINELHUB_BASE_URL", "NASA_BASE_URL",
	"HTTP_TIMEOUT", "HTTP_MAX_RETRIES", "LOG_LEVEL", "LOG_FORMAT",
	"MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_BUCKET", "MINIO_USE_SSL",
	"PUSHGATEWAY_URL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range envVars {
		t.Setenv(name, "")
	}
}

// countingServer answers every request with body and counts the hits.
func countingServer(t *testing.T, body string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func messages(t *testing.T, out string) []string {
	t.Helper()
	var msgs []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var entry struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		msgs = append(msgs, entry.Msg)
	}
	return msgs
}

func contains(msgs []string, want string) bool {
	for _, m := range msgs {
		if m == want {
			return true
		}
	}
	return false
}

func TestRun_NASAImageFound(t *testing.T) {
	var hits atomic.Int32
	server := countingServer(t, `{"url":"https://api.nasa.gov/img123.jpg"}`, &hits)

	clearEnv(t)
	t.Setenv("CLIENT_ID", "id")
	t.Setenv("NASA_API_KEY", "DEMO_KEY")
	t.Setenv("NASA_BASE_URL", server.URL)

	var stdout bytes.Buffer
	code := run(context.Background(), []string{
		"-provider", "nasa",
		"-lat", "17.4065",
		"-lon", "78.4772",
		"-date", "2023-12-01",
	}, &stdout, io.Discard)

	if code != exitcode.Success {
		t.Fatalf("exit code = %d, want %d; output:\n%s", code, exitcode.Success, stdout.String())
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 request, got %d", hits.Load())
	}
	if msgs := messages(t, stdout.String()); !contains(msgs, "Image URL: https://api.nasa.gov/img123.jpg") {
		t.Errorf("expected image URL log line, got %v", msgs)
	}
}

func TestRun_NASANoImage(t *testing.T) {
	var hits atomic.Int32
	server := countingServer(t, `{}`, &hits)

	clearEnv(t)
	t.Setenv("CLIENT_ID", "id")
	t.Setenv("NASA_API_KEY", "DEMO_KEY")
	t.Setenv("NASA_BASE_URL", server.URL)

	var stdout bytes.Buffer
	code := run(context.Background(), []string{"-provider", "nasa", "-date", "2023-12-01"}, &stdout, io.Discard)

	if code != exitcode.Success {
		t.Fatalf("exit code = %d, want %d", code, exitcode.Success)
	}
	if msgs := messages(t, stdout.String()); !contains(msgs, "No image found for the given parameters.") {
		t.Errorf("expected not-found log line, got %v", msgs)
	}
}

func TestRun_MissingClientID(t *testing.T) {
	var hits atomic.Int32
	server := countingServer(t, `{"url":"https://api.nasa.gov/img123.jpg"}`, &hits)

	clearEnv(t)
	t.Setenv("CLIENT_SECRET", "secret")
	t.Setenv("NASA_API_KEY", "DEMO_KEY")
	t.Setenv("NASA_BASE_URL", server.URL)
	t.Setenv("SENTINELHUB_BASE_URL", server.URL)

	var stdout bytes.Buffer
	code := run(context.Background(), []string{"-date", "2023-12-01"}, &stdout, io.Discard)

	if code != exitcode.ConfigError {
		t.Fatalf("exit code = %d, want %d", code, exitcode.ConfigError)
	}
	if hits.Load() != 0 {
		t.Errorf("no request may be made without CLIENT_ID, got %d", hits.Load())
	}
	if !strings.Contains(stdout.String(), `required environment variable \"CLIENT_ID\" is not set`) {
		t.Errorf("expected configuration error in logs, got:\n%s", stdout.String())
	}
}

func TestRun_MissingProviderCredential(t *testing.T) {
	var hits atomic.Int32
	server := countingServer(t, `{}`, &hits)

	clearEnv(t)
	t.Setenv("CLIENT_ID", "id")
	t.Setenv("NASA_API_KEY", "DEMO_KEY")
	t.Setenv("NASA_BASE_URL", server.URL)

	var stdout bytes.Buffer
	code := run(context.Background(), []string{"-provider", "all", "-date", "2023-12-01"}, &stdout, io.Discard)

	if code != exitcode.ConfigError {
		t.Fatalf("exit code = %d, want %d", code, exitcode.ConfigError)
	}
	if hits.Load() != 0 {
		t.Errorf("no request may be made with incomplete credentials, got %d", hits.Load())
	}
	msgs := messages(t, stdout.String())
	if !contains(msgs, "missing provider credentials") || contains(msgs, "failed to load config") {
		t.Errorf("unexpected log messages: %v", msgs)
	}
}

func TestRun_SentinelFailureDoesNotStopNASA(t *testing.T) {
	var sentinelHits atomic.Int32
	sentinel := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sentinelHits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer sentinel.Close()

	var nasaHits atomic.Int32
	nasaServer := countingServer(t, `{"url":"https://api.nasa.gov/img123.jpg"}`, &nasaHits)

	clearEnv(t)
	t.Setenv("CLIENT_ID", "id")
	t.Setenv("CLIENT_SECRET", "wrong")
	t.Setenv("NASA_API_KEY", "DEMO_KEY")
	t.Setenv("SENTINELHUB_BASE_URL", sentinel.URL)
	t.Setenv("NASA_BASE_URL", nasaServer.URL)

	var stdout bytes.Buffer
	code := run(context.Background(), []string{"-date", "2023-12-01"}, &stdout, io.Discard)

	if code != exitcode.APIError {
		t.Fatalf("exit code = %d, want %d", code, exitcode.APIError)
	}
	if sentinelHits.Load() != 1 || nasaHits.Load() != 1 {
		t.Errorf("expected both providers to be called once, got sentinel=%d nasa=%d", sentinelHits.Load(), nasaHits.Load())
	}
	msgs := messages(t, stdout.String())
	if !contains(msgs, "failed to fetch satellite image") || !contains(msgs, "Image URL: https://api.nasa.gov/img123.jpg") {
		t.Errorf("unexpected log messages: %v", msgs)
	}
}

func TestRun_InvalidFlags(t *testing.T) {
	tests := map[string][]string{
		"latitude out of range": {"-lat", "91"},
		"unknown provider":      {"-provider", "landsat"},
		"bad date":              {"-date", "yesterday-ish"},
		"bad run-id":            {"-run-id", "550e8400-e29b-41d4-a716-446655440000"},
		"unknown flag":          {"-zoom", "3"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("CLIENT_ID", "id")

			if code := run(context.Background(), args, io.Discard, io.Discard); code != exitcode.ConfigError {
				t.Errorf("exit code = %d, want %d", code, exitcode.ConfigError)
			}
		})
	}
}
