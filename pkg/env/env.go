// Package env reads raw process environment variables. Most configuration
// goes through the STANDUPSTRIP_-prefixed struct in pkg/config; this package
// covers the few unprefixed knobs (such as LOG_FORMAT) read before config
// loads.
package env

import "os"

// Get returns the variable's value, or fallback when unset or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
