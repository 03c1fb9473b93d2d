package main

import (
	"os"
	"path/filepath"
)

// env returns the value of an environment variable if provided (even if empty)
// or a fallback value.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

// homePath returns a path relative to the home directory of the user.
func homePath(elem ...string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	return filepath.Join(append([]string{home}, elem...)...)
}

// defaultConfigPath is where the CLI configuration is kept unless
// LOCKFUND_CONFIG says otherwise.
func defaultConfigPath() string {
	return env("LOCKFUND_CONFIG", homePath(".config", "lockfund", "config.toml"))
}
