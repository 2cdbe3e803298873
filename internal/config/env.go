// Package config holds the tunable parameters of the simulation and the
// helpers that read host settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// GetEnv returns the value of the environment variable named by the key,
// or fallback if the variable is not set.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvInt is GetEnv for integers. A set but unparsable value is an error.
func GetEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %q is not an integer", key, ErrInvalid, value)
	}
	return n, nil
}

// GetEnvFloat is GetEnv for floats. A set but unparsable value is an error.
func GetEnvFloat(key string, fallback float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %q is not a number", key, ErrInvalid, value)
	}
	return f, nil
}

// GetEnvBool is GetEnv for booleans. A set but unparsable value is an error.
func GetEnvBool(key string, fallback bool) (bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w: %q is not a boolean", key, ErrInvalid, value)
	}
	return b, nil
}
