package utils

import (
	"log"
	"time"
)

// EffectiveDateFormat is the wire and storage format for effective dates.
const EffectiveDateFormat = "2006-01-02"

// ParseEffectiveDate parses an ISO date string into a nullable time.
// Empty input is a legitimate "no effective date" and returns nil; a
// malformed value is logged and also treated as absent rather than failing
// the request.
func ParseEffectiveDate(dateStr string) *time.Time {
	if dateStr == "" {
		return nil
	}
	t, err := time.Parse(EffectiveDateFormat, dateStr)
	if err != nil {
		log.Printf("Error parsing effective date '%s' with format '%s': %v. Treating as unset.", dateStr, EffectiveDateFormat, err)
		return nil
	}
	return &t
}

// FormatEffectiveDate renders a nullable effective date for storage.
func FormatEffectiveDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(EffectiveDateFormat)
}
