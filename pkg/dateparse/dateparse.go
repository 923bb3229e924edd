// Package dateparse parses the timestamp shapes the ordering backend emits.
//
// The parser is deliberately strict: it accepts a fixed set of known layouts
// and fails with *ParseError on anything else. Callers that render dates
// decide what to show on failure; the parser never guesses.
package dateparse

import (
	"strconv"
	"time"
)

// ParseError indicates the input matched none of the accepted layouts.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return "unrecognized timestamp: " + strconv.Quote(e.Input)
}

// layouts covers what the backend serializes: RFC 3339 with or without
// fractional seconds, and the zone-less variants produced when the server
// strips timezone information. Zone-less values are interpreted as UTC.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Parse converts a backend timestamp string into a time.Time.
//
// Accepted inputs: the layouts above, or a Unix epoch in milliseconds
// (all-digit strings of 11+ characters). Empty input and anything
// unrecognized fail with *ParseError.
func Parse(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, &ParseError{Input: s}
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}

	// Epoch milliseconds. The length floor keeps plain years ("2025") and
	// other short numerics from being misread as timestamps near 1970.
	if len(s) >= 11 && isDigits(s) {
		ms, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return time.UnixMilli(ms).UTC(), nil
		}
	}

	return time.Time{}, &ParseError{Input: s}
}

func isDigits(s string) bool {
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
