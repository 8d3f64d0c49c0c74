package config

import (
	"strings"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/sportns_test")
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	t.Setenv("PUSH_API_URL", "https://push.example.com/send")
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SERVER_PORT", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.ServerPort != 8080 {
			t.Errorf("ServerPort = %d, want default 8080", cfg.ServerPort)
		}
		if cfg.PushAPIURL != "https://push.example.com/send" {
			t.Errorf("PushAPIURL = %q", cfg.PushAPIURL)
		}
	})

	t.Run("explicit port", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SERVER_PORT", "9000")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.ServerPort != 9000 {
			t.Errorf("ServerPort = %d, want 9000", cfg.ServerPort)
		}
	})

	t.Run("missing required variables", func(t *testing.T) {
		tests := []struct {
			name string
			drop string
		}{
			{"database url", "DATABASE_URL"},
			{"jwt secret", "JWT_SECRET_KEY"},
			{"push api url", "PUSH_API_URL"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				setRequiredEnv(t)
				t.Setenv(tt.drop, "")

				if _, err := Load(); err == nil || !strings.Contains(err.Error(), tt.drop) {
					t.Errorf("Load error = %v, want one naming %s", err, tt.drop)
				}
			})
		}
	})

	t.Run("invalid port", func(t *testing.T) {
		for _, port := range []string{"abc", "0", "-1", "70000"} {
			setRequiredEnv(t)
			t.Setenv("SERVER_PORT", port)

			if _, err := Load(); err == nil {
				t.Errorf("Load with SERVER_PORT=%q succeeded, want error", port)
			}
		}
	})
}

func TestPolicySkillChecks(t *testing.T) {
	t.Parallel()
	policy := DefaultPolicy()

	for _, lvl := range policy.SkillLevels {
		if !policy.ValidSkill(lvl.Value) {
			t.Errorf("ValidSkill(%d) = false for a declared level", lvl.Value)
		}
	}
	for _, v := range []int{0, -1, 6, 99} {
		if policy.ValidSkill(v) {
			t.Errorf("ValidSkill(%d) = true, want false", v)
		}
	}

	min, max := 2, 4
	tests := []struct {
		value    int
		min, max *int
		want     bool
	}{
		{3, &min, &max, true},
		{2, &min, &max, true},
		{4, &min, &max, true},
		{1, &min, &max, false},
		{5, &min, &max, false},
		{5, nil, nil, true},
		{1, nil, &max, true},
		{5, &min, nil, true},
		{9, nil, nil, false}, // unknown value fails even with open bounds
	}
	for _, tt := range tests {
		if got := policy.SkillInRange(tt.value, tt.min, tt.max); got != tt.want {
			t.Errorf("SkillInRange(%d, %v, %v) = %v, want %v", tt.value, tt.min, tt.max, got, tt.want)
		}
	}
}

func TestPolicyTimeOfDayOptions(t *testing.T) {
	t.Parallel()
	policy := DefaultPolicy()

	if len(policy.TimeOfDayOptions) == 0 {
		t.Fatal("no time-of-day options declared")
	}
	seen := make(map[string]bool)
	for _, opt := range policy.TimeOfDayOptions {
		if seen[opt.Name] {
			t.Errorf("duplicate time-of-day option %q", opt.Name)
		}
		seen[opt.Name] = true
		if opt.Hour < 0 || opt.Hour > 23 {
			t.Errorf("option %q maps to invalid hour %d", opt.Name, opt.Hour)
		}
	}
}
