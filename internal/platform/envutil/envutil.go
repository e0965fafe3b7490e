// Package envutil reads optional process settings. Unparseable values fall back to the default.
package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func lookup(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

func String(name, def string) string {
	if v := lookup(name); v != "" {
		return v
	}
	return def
}

func Int(name string, def int) int {
	i, err := strconv.Atoi(lookup(name))
	if err != nil {
		return def
	}
	return i
}

func Float(name string, def float64) float64 {
	f, err := strconv.ParseFloat(lookup(name), 64)
	if err != nil {
		return def
	}
	return f
}

func Bool(name string, def bool) bool {
	switch strings.ToLower(lookup(name)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

// Seconds reads a whole number of seconds. Zero and negative values keep the default.
func Seconds(name string, def time.Duration) time.Duration {
	n, err := strconv.Atoi(lookup(name))
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}
