package config

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("GeminiModel = %q", cfg.GeminiModel)
	}
	if cfg.MaxUploadBytes != 25<<20 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.GeminiTimeout != 90 {
		t.Errorf("GeminiTimeout = %d", cfg.GeminiTimeout)
	}
	if cfg.PublicBaseURL != "http://localhost:8080" {
		t.Errorf("PublicBaseURL = %q", cfg.PublicBaseURL)
	}
	if cfg.UploadsPath == "" || cfg.ChartsPath == "" {
		t.Error("storage paths not derived")
	}
}

func TestLoadConfigAPIKeyFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "fallback-key")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.GeminiAPIKey != "fallback-key" {
		t.Errorf("GeminiAPIKey = %q, want the GOOGLE_API_KEY fallback", cfg.GeminiAPIKey)
	}
}

func TestLoadConfigInvalidIntFallsBack(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("MAX_INLINE_DIM", "not-a-number")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MaxInlineDim != 1024 {
		t.Errorf("MaxInlineDim = %d, want the default", cfg.MaxInlineDim)
	}
}
