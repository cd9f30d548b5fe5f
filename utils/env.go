package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func EnvOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func EnvInt(key string, def int) int {
	if n, err := strconv.Atoi(EnvOrDefault(key, "")); err == nil {
		return n
	}
	return def
}

// EnvBool treats 1/true/yes (any case) as true.
func EnvBool(key string, def bool) bool {
	switch strings.ToLower(EnvOrDefault(key, "")) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return def
}

// EnvDuration accepts Go durations ("30s") or plain seconds ("30").
func EnvDuration(key string, def time.Duration) time.Duration {
	raw := EnvOrDefault(key, "")
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
