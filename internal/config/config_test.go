package config

import "testing"

func TestGetEnv(t *testing.T) {
	t.Setenv("DECKTRADE_TEST_KEY", "set")

	if got := getEnv("DECKTRADE_TEST_KEY", "default"); got != "set" {
		t.Errorf("getEnv with set variable = %q, want %q", got, "set")
	}
	if got := getEnv("DECKTRADE_TEST_MISSING", "default"); got != "default" {
		t.Errorf("getEnv with missing variable = %q, want %q", got, "default")
	}
}

func TestGetEnvEmptyValue(t *testing.T) {
	t.Setenv("DECKTRADE_TEST_EMPTY", "")

	// An explicitly empty variable wins over the default.
	if got := getEnv("DECKTRADE_TEST_EMPTY", "default"); got != "" {
		t.Errorf("getEnv with empty variable = %q, want empty", got)
	}
}
