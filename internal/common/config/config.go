// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig                 `mapstructure:"app"`
	Server     ServerConfig              `mapstructure:"server"`
	Fusion     FusionConfig              `mapstructure:"fusion"`
	Normalizer NormalizerConfig          `mapstructure:"normalizer"`
	Providers  map[string]ProviderConfig `mapstructure:"providers"`
	APIs       APIsConfig                `mapstructure:"apis"`
	Database   DatabaseConfig            `mapstructure:"database"`
	Registry   RegistryConfig            `mapstructure:"registry"`
	Logging    LoggingConfig             `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	MetricsPort     int    `mapstructure:"metrics_port"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// FusionConfig holds the fusion-engine settings. It is passed into each
// fusion call as an explicit object; nothing here is process-wide mutable
// state, so concurrent queries with different settings cannot interfere.
type FusionConfig struct {
	Method       string `mapstructure:"method"` // "rrf" or "combsum"
	RRFK         int    `mapstructure:"rrf_k"`
	MaxResults   int    `mapstructure:"max_results"`
	MaxPerSource int    `mapstructure:"max_per_source"`
}

// NormalizerConfig carries the tracking-parameter strip-list used for URL
// canonicalization. The set is configuration, not hard-coded logic, and is
// applied consistently within one run.
type NormalizerConfig struct {
	StripParams        []string `mapstructure:"strip_params"`
	StripParamPrefixes []string `mapstructure:"strip_param_prefixes"`
}

// ProviderConfig holds the core settings applicable to every provider.
type ProviderConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	MaxResults int    `mapstructure:"max_results"`
	Engine     string `mapstructure:"engine"` // serpapi backend engine name
}

// --- External search APIs ---
type APIsConfig struct {
	SerpAPI struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
	} `mapstructure:"serpapi"`

	GoogleCSE struct {
		BaseURL  string `mapstructure:"base_url"`
		APIKey   string `mapstructure:"api_key"`
		EngineID string `mapstructure:"engine_id"`
	} `mapstructure:"google_cse"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	Index      string   `mapstructure:"index"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	URL        string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RegistryConfig struct {
	Path       string `mapstructure:"path"`
	SchemaPath string `mapstructure:"schema_path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
