package model

import "time"

// Config holds the complete claimctl configuration
type Config struct {
	API         APIConfig        `yaml:"api" mapstructure:"api"`
	Upload      UploadConfig     `yaml:"upload" mapstructure:"upload"`
	Cache       CacheConfig      `yaml:"cache" mapstructure:"cache"`
	LLM         LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Credentials CredentialConfig `yaml:"credentials" mapstructure:"credentials"`
}

// APIConfig configures the HTTP transport to the claims backend
type APIConfig struct {
	// BaseURL is the root of the claims API (e.g. http://localhost:3000/api)
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout applies to ordinary reads and writes
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// UploadTimeout applies to document uploads, which the backend
	// processes synchronously with AI extraction
	UploadTimeout time.Duration `yaml:"upload_timeout" mapstructure:"upload_timeout"`

	// MaxBodyBytes caps how much of a response body is read
	MaxBodyBytes int64 `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`

	// RequestsPerSecond throttles outbound calls (0 disables)
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`

	// Proxy settings (fall back to environment when empty)
	HTTPProxy  string `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// UploadConfig constrains client-side document validation
type UploadConfig struct {
	// MaxSizeBytes rejects larger files before any request is sent
	MaxSizeBytes int64 `yaml:"max_size_bytes" mapstructure:"max_size_bytes"`

	// AllowedExtensions lists acceptable document file extensions
	AllowedExtensions []string `yaml:"allowed_extensions" mapstructure:"allowed_extensions"`
}

// CacheConfig configures the in-memory claims read cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// LLMConfig configures the optional claim explainer
type LLMConfig struct {
	// Provider name: "openai", "" (disabled)
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Model name (provider-specific)
	Model string `yaml:"model" mapstructure:"model"`

	// APIKey for the provider (recommended via environment)
	APIKey string `yaml:"api_key" mapstructure:"api_key"`

	// BaseURL for custom endpoints
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout for API requests
	Timeout int `yaml:"timeout" mapstructure:"timeout"` // seconds

	// MaxTokens for response generation
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// CredentialConfig locates the stored bearer token
type CredentialConfig struct {
	// Path of the credential file (default: ~/.claimctl/credentials.json)
	Path string `yaml:"path" mapstructure:"path"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "http://localhost:3000/api",
			Timeout:           10 * time.Second,
			UploadTimeout:     60 * time.Second,
			MaxBodyBytes:      2_000_000,
			RequestsPerSecond: 10,
			Burst:             5,
		},
		Upload: UploadConfig{
			MaxSizeBytes:      5 * 1024 * 1024,
			AllowedExtensions: []string{".pdf", ".jpg", ".jpeg", ".png"},
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     30 * time.Second,
		},
		LLM: LLMConfig{
			Provider:  "", // Disabled by default
			Timeout:   30,
			MaxTokens: 500,
		},
	}
}
