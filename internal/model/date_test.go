package model

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2023-12-01", want: "2023-12-01"},
		{in: "2023-10-01T15:04:05Z", want: "2023-10-01"},
		{in: "2023/12/01", want: "2023-12-01"},
		{in: "", wantErr: true},
		{in: "not a date", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && d.String() != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.in, d, tt.want)
			}
		})
	}
}

func TestNewDate_TruncatesToUTCDay(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	d := NewDate(time.Date(2024, 1, 15, 2, 30, 0, 0, loc))

	if d.String() != "2024-01-14" {
		t.Fatalf("String() = %s, want 2024-01-14", d)
	}
	if !d.Time().Equal(time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("Time() = %v", d.Time())
	}
}
