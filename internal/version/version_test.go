// ABOUTME: Tests for version constants
// ABOUTME: Ensures product strings are usable in handshakes and TXT records
package version

import (
	"strings"
	"testing"
)

func TestConstants(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"Version", Version},
		{"Product", Product},
		{"Manufacturer", Manufacturer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value == "" {
				t.Fatal("must not be empty")
			}
			// mDNS TXT strings are limited to 255 bytes including the key
			if len(tt.value) > 200 {
				t.Errorf("too long for a TXT record: %d bytes", len(tt.value))
			}
			if strings.ContainsAny(tt.value, "\n=") {
				t.Errorf("contains a character that breaks TXT records: %q", tt.value)
			}
		})
	}
}

func TestVersionIsSemver(t *testing.T) {
	parts := strings.Split(Version, ".")
	if len(parts) != 3 {
		t.Fatalf("expected major.minor.patch, got %q", Version)
	}
	for _, p := range parts {
		if p == "" || strings.Trim(p, "0123456789") != "" {
			t.Errorf("non-numeric component %q in %q", p, Version)
		}
	}
}
