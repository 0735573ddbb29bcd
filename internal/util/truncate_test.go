package util

import (
	"strings"
	"testing"
)

func TestTruncateLog(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short", "created schedule", 1024, "created schedule"},
		{"exact limit", "12345", 5, "12345"},
		{"empty", "", 16, ""},
		{"truncated", "1234567890abcdefghij", 10, "1234567890... [truncated, 20 bytes total]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TruncateLog(tc.input, tc.maxLen); got != tc.want {
				t.Errorf("TruncateLog(%q, %d) = %q, want %q", tc.input, tc.maxLen, got, tc.want)
			}
		})
	}
}

func TestTruncateBytesCapsProviderBodies(t *testing.T) {
	body := []byte(strings.Repeat("x", DefaultLogMaxLen*2))
	got := TruncateBytes(body)
	if !strings.HasPrefix(got, string(body[:DefaultLogMaxLen])) {
		t.Error("expected the first DefaultLogMaxLen bytes to be preserved")
	}
	if !strings.Contains(got, "truncated, 2048 bytes total") {
		t.Errorf("expected byte count suffix, got tail %q", got[len(got)-40:])
	}
}
