package validation

import (
	"strings"
	"unicode"
)

// SanitizeForFormulaInjection prepends a single quote if the string starts
// with a formula character. Clause text and thresholds end up in exported
// spreadsheets; this makes spreadsheet software treat them as text.
func SanitizeForFormulaInjection(s string) string {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) > 0 {
		firstChar := rune(trimmed[0])
		if firstChar == '=' || firstChar == '+' || firstChar == '-' || firstChar == '@' || firstChar == '\t' || firstChar == '\r' {
			return "'" + s
		}
	}
	return s
}

// StripUnprintable removes non-printable characters from free-text fields,
// allowing common whitespace like space, tab, newline, and carriage return.
// Verbatim clause text pasted from PDF viewers tends to carry control runes.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}

// CleanFreeText applies the standard hygiene for user-supplied prose fields
// (clause text, thresholds, notes): strip control runes and trim.
func CleanFreeText(s string) string {
	return strings.TrimSpace(StripUnprintable(s))
}
