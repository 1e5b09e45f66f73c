package util

import (
	"database/sql"
	"strconv"
)

// NullStringFromValue creates a sql.NullString from a string value.
// Empty strings map to the invalid (NULL) state.
func NullStringFromValue(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// NullStringFromPtr converts a pointer to string into sql.NullString.
// A nil pointer maps to the invalid (NULL) state.
func NullStringFromPtr(ptr *string) sql.NullString {
	if ptr != nil {
		return sql.NullString{String: *ptr, Valid: true}
	}
	return sql.NullString{}
}

// ParseInt64Positive parses a string as a positive int64, returning the
// fallback when the string is empty, malformed, or not positive.
func ParseInt64Positive(s string, fallback int64) int64 {
	if val, err := strconv.ParseInt(s, 10, 64); err == nil && val > 0 {
		return val
	}
	return fallback
}
