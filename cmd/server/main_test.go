package main

import "testing"

func TestParseFlagsDefaultsLeaveOverridesUnset(t *testing.T) {
	overrides, err := parseFlags(nil)
	if err != nil {
		t.Fatalf("parseFlags returned error: %v", err)
	}
	if overrides.Port != nil || overrides.PageSize != nil || overrides.Padding != nil ||
		overrides.LogLevel != nil || overrides.RateLimitRPS != nil || overrides.RateLimitBurst != nil {
		t.Fatalf("expected no overrides, got %+v", overrides)
	}
}

func TestParseFlags(t *testing.T) {
	overrides, err := parseFlags([]string{
		"--config", "service.yaml",
		"--port", "9191",
		"--page-size", "A5",
		"--padding", "0",
		"--log-level", "debug",
		"--rate-limit-rps", "0",
		"--rate-limit-burst", "10",
	})
	if err != nil {
		t.Fatalf("parseFlags returned error: %v", err)
	}

	if overrides.ConfigFile != "service.yaml" {
		t.Fatalf("unexpected config file %q", overrides.ConfigFile)
	}
	if overrides.Port == nil || *overrides.Port != "9191" {
		t.Fatalf("unexpected port override")
	}
	if overrides.PageSize == nil || *overrides.PageSize != "A5" {
		t.Fatalf("unexpected page size override")
	}
	if overrides.Padding == nil || *overrides.Padding != 0 {
		t.Fatalf("zero padding must be an explicit override")
	}
	if overrides.LogLevel == nil || *overrides.LogLevel != "debug" {
		t.Fatalf("unexpected log level override")
	}
	if overrides.RateLimitRPS == nil || *overrides.RateLimitRPS != 0 {
		t.Fatalf("zero rate limit must be an explicit override")
	}
	if overrides.RateLimitBurst == nil || *overrides.RateLimitBurst != 10 {
		t.Fatalf("unexpected burst override")
	}
}

func TestParseFlagsRejectsUnknownFlag(t *testing.T) {
	if _, err := parseFlags([]string{"--pack-sizes", "1,2"}); err == nil {
		t.Fatalf("expected error for unknown flag")
	}
}
