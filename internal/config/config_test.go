package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_DSN", "JWT_SECRET", "CORS_ORIGIN", "APP_ENV"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "3000" || cfg.Env != "development" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("APP_ENV", "production")
	cfg := Load()
	if cfg.Port != "8080" || cfg.Env != "production" {
		t.Fatalf("env vars not honored: %+v", cfg)
	}
}

func TestParseBool(t *testing.T) {
	cases := []struct {
		value string
		def   bool
		want  bool
	}{
		{"1", false, true},
		{"true", false, true},
		{"0", true, false},
		{"false", true, false},
		{"", true, true},
		{"", false, false},
		{"banana", false, false}, // invalid falls back to the default
		{"banana", true, true},
	}
	for _, c := range cases {
		t.Setenv("TEST_FLAG", c.value)
		if got := ParseBool("TEST_FLAG", c.def); got != c.want {
			t.Errorf("ParseBool(%q, %v) = %v, want %v", c.value, c.def, got, c.want)
		}
	}
}
