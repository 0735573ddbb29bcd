package util

import "fmt"

// DefaultLogMaxLen caps provider response bodies in log output (1KB).
const DefaultLogMaxLen = 1024

// TruncateLog shortens long strings for log lines, keeping a byte count
// so the full size stays visible in diagnostics.
func TruncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + fmt.Sprintf("... [truncated, %d bytes total]", len(s))
}

// TruncateBytes applies TruncateLog with the default cap to a byte
// slice, the common case when logging raw HTTP bodies.
func TruncateBytes(b []byte) string {
	return TruncateLog(string(b), DefaultLogMaxLen)
}
