package config

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.TimeoutSeconds != 60 {
		t.Errorf("expected default timeout 60, got %d", cfg.Server.TimeoutSeconds)
	}
	if cfg.Server.ProtocolVersion != "2025-03-26" {
		t.Errorf("expected default protocol version '2025-03-26', got %s", cfg.Server.ProtocolVersion)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("expected default model 'gpt-4o-mini', got %s", cfg.LLM.Model)
	}
	if cfg.LLM.APIKey != "" {
		t.Errorf("expected empty default api key, got %s", cfg.LLM.APIKey)
	}
	if cfg.Limits.MaxPreviewRows != 50 {
		t.Errorf("expected default max_preview_rows 50, got %d", cfg.Limits.MaxPreviewRows)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Logging.Level)
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := DefaultConfig()

	cfg.ApplyOverrides("debug", "json", "http://other:8001/mcp", 15)

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected log format 'json', got %s", cfg.Logging.Format)
	}
	if cfg.Server.Endpoint != "http://other:8001/mcp" {
		t.Errorf("expected endpoint override, got %s", cfg.Server.Endpoint)
	}
	if cfg.Server.TimeoutSeconds != 15 {
		t.Errorf("expected timeout 15, got %d", cfg.Server.TimeoutSeconds)
	}
}

func TestApplyOverrides_ZeroValuesIgnored(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Endpoint = "http://original:8001/mcp"

	cfg.ApplyOverrides("", "", "", 0)

	if cfg.Server.Endpoint != "http://original:8001/mcp" {
		t.Errorf("expected endpoint unchanged, got %s", cfg.Server.Endpoint)
	}
	if cfg.Server.TimeoutSeconds != 60 {
		t.Errorf("expected timeout unchanged, got %d", cfg.Server.TimeoutSeconds)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level unchanged, got %s", cfg.Logging.Level)
	}
}
