package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q", cfg.Server.Port)
	}
	if cfg.JWT.AccessExpiry != 900 || cfg.JWT.RefreshExpiry != 604800 {
		t.Errorf("JWT expiries = %d, %d", cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	}
	if cfg.Argon2.Memory != 64*1024 || cfg.Argon2.Iterations != 3 {
		t.Errorf("Argon2 defaults = %+v", cfg.Argon2)
	}
	if cfg.Throttle.MaxAttempts != 3 {
		t.Errorf("Throttle.MaxAttempts = %d", cfg.Throttle.MaxAttempts)
	}
}

func TestThrottleDefaultsByEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Throttle.BlockDuration != time.Minute {
		t.Errorf("development block = %v, want 1m", cfg.Throttle.BlockDuration)
	}

	t.Setenv("ENVIRONMENT", "production")
	cfg, err = Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Throttle.BlockDuration != 15*time.Minute {
		t.Errorf("production block = %v, want 15m", cfg.Throttle.BlockDuration)
	}
	if cfg.IsDevelopment() {
		t.Error("production read as development")
	}
}

func TestWindowClampedToBlock(t *testing.T) {
	t.Setenv("THROTTLE_BLOCK_DURATION", "10m")
	t.Setenv("THROTTLE_WINDOW_DURATION", "1m")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Throttle.WindowDuration != 10*time.Minute {
		t.Errorf("window = %v, want clamped to 10m", cfg.Throttle.WindowDuration)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("ADMIN_EMAIL", "root@example.com")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "9999" {
		t.Errorf("Port = %q", cfg.Server.Port)
	}
	if cfg.Admin.Email != "root@example.com" {
		t.Errorf("Admin.Email = %q", cfg.Admin.Email)
	}
}
