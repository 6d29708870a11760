// Package utils holds environment parsing and connection helpers shared by the binaries.
package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvString returns the variable or def when unset or blank.
func EnvString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// EnvInt parses a positive integer; anything else falls back to def.
func EnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// EnvBool accepts true/1/yes (case-insensitive). Unset returns def.
func EnvBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "":
		return def
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// EnvDuration reads an integer count of unit (e.g. BOUNDARY_TTL_H with time.Hour).
func EnvDuration(key string, unit time.Duration, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * unit
		}
	}
	return def
}
