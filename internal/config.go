package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/draftdeck/internal/llm"
	"github.com/starford/draftdeck/internal/store"
)

// Export archive backends.
const (
	ExportStorageNone = "none"
	ExportStorageFS   = "fs"
	ExportStorageS3   = "s3"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Database DatabaseConfig    `yaml:"database"`
	Auth     AuthConfig        `yaml:"auth"`
	LLM      LLMConfig         `yaml:"llm"`
	Prompts  PromptsConfig     `yaml:"prompts"`
	Export   ExportConfig      `yaml:"export"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	return c.Export.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
	CORS     CORSConfig `yaml:"cors"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig selects the SQL driver and its DSN.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Validate validates the database configuration.
func (c *DatabaseConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = store.DriverSQLite
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(store.DriverSQLite, store.DriverPostgres)),
		validation.Field(&c.DSN, validation.Required),
	)
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	SecretKey                string `yaml:"secret_key"`
	Algorithm                string `yaml:"algorithm"`
	AccessTokenExpireMinutes int    `yaml:"access_token_expire_minutes"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Algorithm == "" {
		c.Algorithm = "HS256"
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.SecretKey, validation.Required),
		validation.Field(&c.Algorithm, validation.In("HS256", "HS384", "HS512")),
		validation.Field(&c.AccessTokenExpireMinutes, validation.Required, validation.Min(1)),
	)
}

// TokenTTL returns the access token lifetime.
func (c *AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// LLMConfig selects and configures the text generation backend.
//
// Provider is one of "mock", "openai", "openrouter" or "gemini". An empty
// provider means "mock". Concurrency bounds how many sections of one project
// are generated in parallel.
type LLMConfig struct {
	Provider    string            `yaml:"provider"`
	Timeout     time.Duration     `yaml:"timeout"`
	Concurrency int               `yaml:"concurrency"`
	OpenAI      llm.ServiceConfig `yaml:"openai"`
	OpenRouter  llm.ServiceConfig `yaml:"openrouter"`
	Gemini      llm.ServiceConfig `yaml:"gemini"`
}

// Validate validates the LLM configuration.
func (c *LLMConfig) Validate() error {
	if c.Provider == "" {
		c.Provider = llm.ProviderMock
	}
	if c.Concurrency == 0 {
		c.Concurrency = 1
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.In(llm.ProviderMock, llm.ProviderOpenAI, llm.ProviderOpenRouter, llm.ProviderGemini)),
		validation.Field(&c.Concurrency, validation.Min(1), validation.Max(16)),
	)
}

// Settings converts the configuration into provider settings.
func (c *LLMConfig) Settings() llm.Settings {
	return llm.Settings{
		Provider:   c.Provider,
		Timeout:    c.Timeout,
		OpenAI:     c.OpenAI,
		OpenRouter: c.OpenRouter,
		Gemini:     c.Gemini,
	}
}

// PromptsConfig points at an optional directory of prompt template overrides.
type PromptsConfig struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"`
}

// ExportConfig controls where rendered exports are archived.
type ExportConfig struct {
	Storage string         `yaml:"storage"`
	FS      ExportFSConfig `yaml:"fs"`
	S3      ExportS3Config `yaml:"s3"`
}

// Validate validates the export configuration.
func (c *ExportConfig) Validate() error {
	if c.Storage == "" {
		c.Storage = ExportStorageNone
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Storage, validation.In(ExportStorageNone, ExportStorageFS, ExportStorageS3)),
	); err != nil {
		return err
	}
	switch c.Storage {
	case ExportStorageFS:
		return validation.ValidateStruct(&c.FS,
			validation.Field(&c.FS.Path, validation.Required),
		)
	case ExportStorageS3:
		return validation.ValidateStruct(&c.S3,
			validation.Field(&c.S3.Bucket, validation.Required),
			validation.Field(&c.S3.Region, validation.Required),
		)
	}
	return nil
}

// ExportFSConfig archives exports under a local directory.
type ExportFSConfig struct {
	Path string `yaml:"path"`
}

// ExportS3Config archives exports in an S3 compatible bucket (AWS or MinIO).
type ExportS3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8000,
			},
			CORS: CORSConfig{
				AllowedOrigins: []string{"*"},
			},
		},
		Database: DatabaseConfig{
			Driver: store.DriverSQLite,
			DSN:    "./draftdeck.db",
		},
		Auth: AuthConfig{
			SecretKey:                "change-me",
			Algorithm:                "HS256",
			AccessTokenExpireMinutes: 120,
		},
		LLM: LLMConfig{
			Provider:    llm.ProviderMock,
			Timeout:     30 * time.Second,
			Concurrency: 1,
		},
		Export: ExportConfig{
			Storage: ExportStorageNone,
		},
	}
}
