package internal

import (
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
	if cfg.Auth.TokenTTL() != 120*time.Minute {
		t.Errorf("ttl = %v, want 2h", cfg.Auth.TokenTTL())
	}
}

func TestLLMConfig_EmptyProviderDefaultsMock(t *testing.T) {
	cfg := LLMConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty provider should default to mock: %v", err)
	}
	if cfg.Provider != "mock" {
		t.Errorf("provider = %q, want mock", cfg.Provider)
	}
	if cfg.Concurrency != 1 {
		t.Errorf("concurrency = %d, want 1", cfg.Concurrency)
	}
}

func TestLLMConfig_UnknownProvider(t *testing.T) {
	cfg := LLMConfig{Provider: "claude"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown provider should fail validation")
	}
}

func TestDatabaseConfig_Driver(t *testing.T) {
	cfg := DatabaseConfig{DSN: "x.db"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty driver should default to sqlite3: %v", err)
	}
	cfg = DatabaseConfig{Driver: "mysql", DSN: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("mysql should be rejected")
	}
}

func TestAuthConfig_Algorithm(t *testing.T) {
	cfg := AuthConfig{SecretKey: "s", AccessTokenExpireMinutes: 5}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Algorithm != "HS256" {
		t.Errorf("algorithm = %q, want HS256", cfg.Algorithm)
	}
	cfg.Algorithm = "RS256"
	if err := cfg.Validate(); err == nil {
		t.Fatal("RS256 should be rejected")
	}
}

func TestAuthConfig_MissingSecret(t *testing.T) {
	cfg := AuthConfig{AccessTokenExpireMinutes: 5}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty secret should fail")
	}
}

func TestExportConfig(t *testing.T) {
	cfg := ExportConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty storage should default to none: %v", err)
	}
	if cfg.Storage != ExportStorageNone {
		t.Errorf("storage = %q", cfg.Storage)
	}

	cfg = ExportConfig{Storage: ExportStorageFS}
	if err := cfg.Validate(); err == nil {
		t.Fatal("fs storage without path should fail")
	}

	cfg = ExportConfig{Storage: ExportStorageS3, S3: ExportS3Config{Bucket: "b"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("s3 storage without region should fail")
	}
	cfg.S3.Region = "us-east-1"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("s3 storage: %v", err)
	}
}

func TestFullConfig_ExportValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Export.Storage = "ftp"
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch export error")
	}
}
