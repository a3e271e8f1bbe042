package core

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Wire timestamps either carry a zone suffix ("Z", "+10:00", "+1000") or are
// zone-naive network-local wall time. The zone tail is only recognized after
// the time-of-day part, so date-only strings like "2024-01-01" stay intact.
var (
	zoneSuffixRe  = regexp.MustCompile(`[+-]\d{2}:?\d{2}$`)
	fractionalRe  = regexp.MustCompile(`\.\d+$`)
	offsetShortRe = regexp.MustCompile(`^[+-]\d{4}$`)
)

const reconstructLayout = "2006-01-02T15:04:05-07:00"

// ReconstructTime converts a wire timestamp plus a network UTC offset into an
// absolute instant. Any zone information already on the string is discarded
// and replaced by the supplied offset, so the wall-clock date and time are
// preserved and the instant is computed from the declared network offset
// rather than the process's local zone.
//
// This reinterpretation is deliberate: day-level market data is always emitted
// in network-local wall time, even when the API attaches a "Z" suffix. Callers
// that need true UTC parsing of an already-qualified string should not route
// through here.
func ReconstructTime(value string, offset string) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	// The API sometimes separates date and time with a space instead of "T".
	if !strings.Contains(s, "T") && strings.Contains(s, " ") {
		s = strings.Replace(s, " ", "T", 1)
	}

	// Strip existing zone qualifiers, then any fractional seconds.
	if strings.HasSuffix(s, "Z") || strings.HasSuffix(s, "z") {
		s = s[:len(s)-1]
	} else if strings.Contains(s, "T") {
		if loc := zoneSuffixRe.FindStringIndex(s); loc != nil && loc[0] > strings.Index(s, "T") {
			s = s[:loc[0]]
		}
	}
	s = fractionalRe.ReplaceAllString(s, "")

	// Day-level data arrives date-only; midnight network time is implied.
	if !strings.Contains(s, "T") {
		s += "T00:00:00"
	}

	parsed, err := time.Parse(reconstructLayout, s+normalizeOffset(offset))
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed timestamp %q with offset %q: %w", value, offset, err)
	}
	return parsed, nil
}

// normalizeOffset accepts "+10:00", "+1000" or "Z" and returns "+HH:MM" form.
func normalizeOffset(offset string) string {
	o := strings.TrimSpace(offset)
	switch {
	case o == "" || o == "Z" || o == "z":
		return "+00:00"
	case offsetShortRe.MatchString(o):
		return o[:3] + ":" + o[3:]
	default:
		return o
	}
}
