package config

import "testing"

func TestLoadServerConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cortexa_test")
	t.Setenv("ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_TTL_SECONDS", "")

	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Environment != EnvDevelopment {
		t.Errorf("expected development environment, got %s", cfg.Environment)
	}
	if cfg.Port != 5000 {
		t.Errorf("expected default port 5000, got %d", cfg.Port)
	}
	if cfg.JWTTTL != 86400 {
		t.Errorf("expected default TTL 86400, got %d", cfg.JWTTTL)
	}
	if cfg.JWTSecret == "" {
		t.Error("expected a development fallback secret")
	}
}

func TestLoadServerConfig_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadServerConfig(); err == nil {
		t.Fatal("expected error when DATABASE_URL is unset")
	}
}

func TestLoadServerConfig_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cortexa")
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadServerConfig(); err == nil {
		t.Fatal("expected error when JWT_SECRET is unset in production")
	}
}

func TestLoadServerConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cortexa")
	t.Setenv("ENV", "warp")
	t.Setenv("PORT", "not-a-number")
	t.Setenv("JWT_TTL_SECONDS", "-5")

	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Environment != EnvDevelopment {
		t.Errorf("invalid ENV should fall back to development, got %s", cfg.Environment)
	}
	if cfg.Port != 5000 {
		t.Errorf("invalid PORT should fall back to 5000, got %d", cfg.Port)
	}
	if cfg.JWTTTL != 86400 {
		t.Errorf("negative TTL should fall back to 86400, got %d", cfg.JWTTTL)
	}
}
