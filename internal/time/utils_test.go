package timeutils

import (
	"testing"
	"time"
)

func TestNanosToSeconds(t *testing.T) {
	if got := NanosToSeconds(200); got != 2.0e-7 {
		t.Errorf("NanosToSeconds(200) = %v, want 2e-7", got)
	}
	if got := NanosToSeconds(1.5e9); got != 1.5 {
		t.Errorf("NanosToSeconds(1.5e9) = %v, want 1.5", got)
	}
}

func TestParseSimDuration(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"60s", 60 * time.Second, false},
		{"2m", 120 * time.Second, false},
		{"15", 15 * time.Second, false},
		{"", 0, true},
		{"0s", 0, true},
		{"1.5s", 0, true},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSimDuration(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSimDuration(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSimDuration(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormatSimDuration(t *testing.T) {
	if got := FormatSimDuration(2 * time.Minute); got != "120s" {
		t.Errorf("FormatSimDuration(2m) = %q, want 120s", got)
	}
}
