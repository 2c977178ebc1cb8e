package plugin

import (
	"strings"
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		version string
		want    Version
		wantErr bool
	}{
		{version: "0.1.0", want: Version{0, 1, 0}},
		{version: "2.5.3", want: Version{2, 5, 3}},
		{version: " 10.99.42 ", want: Version{10, 99, 42}},
		{version: "invalid", wantErr: true},
		{version: "1.2", wantErr: true},
		{version: "1.-2.0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			got, err := ParseVersion(tt.version)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVersion(%q) error = %v, wantErr %v", tt.version, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseVersion(%q) = %s, want %s", tt.version, got, tt.want)
			}
		})
	}
}

func TestCheckCompatible(t *testing.T) {
	tests := []struct {
		version       string
		errorContains string
	}{
		{version: ProtocolVersion},
		{version: "0.1.7"},
		{version: "0.4.0"},
		{version: "0.0.9", errorContains: "too old"},
		{version: "1.0.0", errorContains: "incompatible major version"},
		{version: "x.y.z", errorContains: "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			err := CheckCompatible(tt.version)
			if tt.errorContains == "" {
				if err != nil {
					t.Errorf("CheckCompatible(%q) error = %v", tt.version, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errorContains) {
				t.Errorf("CheckCompatible(%q) error = %v, want containing %q", tt.version, err, tt.errorContains)
			}
		})
	}
}
