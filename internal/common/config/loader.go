// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like SERPAPI_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay, ignored if absent
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries .env in the working directory, its parents, and the
// project root (found via go.mod), so tests run from nested packages still
// pick it up.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig fills credentials from plain environment variables
// when the config file leaves them empty.
func overrideEmptyConfig(cfg *Config) {
	if cfg.APIs.SerpAPI.APIKey == "" {
		if val := os.Getenv("SERPAPI_KEY"); val != "" {
			cfg.APIs.SerpAPI.APIKey = val
		}
	}

	if cfg.APIs.GoogleCSE.APIKey == "" {
		if val := os.Getenv("GOOGLE_CSE_API_KEY"); val != "" {
			cfg.APIs.GoogleCSE.APIKey = val
		}
	}
	if cfg.APIs.GoogleCSE.EngineID == "" {
		if val := os.Getenv("GOOGLE_CSE_CX"); val != "" {
			cfg.APIs.GoogleCSE.EngineID = val
		}
	}

	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// defaultStripParams is the default tracking-parameter strip-list; it can
// be replaced wholesale from config.
var defaultStripParams = []string{
	"gclid", "fbclid", "msclkid", "mc_eid", "igshid", "ref", "ref_src",
}

var defaultStripParamPrefixes = []string{"utm_"}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "metasearch-engine"
	}

	// Server defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MetricsPort == 0 {
		cfg.Server.MetricsPort = 9090
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}

	// Fusion defaults
	if cfg.Fusion.Method == "" {
		cfg.Fusion.Method = "rrf"
	}
	if cfg.Fusion.RRFK == 0 {
		cfg.Fusion.RRFK = 60
	}
	if cfg.Fusion.MaxResults == 0 {
		cfg.Fusion.MaxResults = 20
	}
	if cfg.Fusion.MaxPerSource == 0 {
		cfg.Fusion.MaxPerSource = 10
	}

	// Normalizer defaults
	if len(cfg.Normalizer.StripParams) == 0 {
		cfg.Normalizer.StripParams = defaultStripParams
	}
	if len(cfg.Normalizer.StripParamPrefixes) == 0 {
		cfg.Normalizer.StripParamPrefixes = defaultStripParamPrefixes
	}

	// Provider defaults
	for id, pc := range cfg.Providers {
		if pc.Timeout == 0 {
			pc.Timeout = 5000
		}
		if pc.MaxResults == 0 {
			pc.MaxResults = cfg.Fusion.MaxPerSource
		}
		cfg.Providers[id] = pc
	}

	// External API defaults
	if cfg.APIs.SerpAPI.BaseURL == "" {
		cfg.APIs.SerpAPI.BaseURL = "https://serpapi.com/search.json"
	}
	if cfg.APIs.GoogleCSE.BaseURL == "" {
		cfg.APIs.GoogleCSE.BaseURL = "https://www.googleapis.com/customsearch/v1"
	}

	// Database defaults
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Elasticsearch.Index == "" {
		cfg.Database.Elasticsearch.Index = "documents"
	}

	// Registry defaults
	if cfg.Registry.Path == "" {
		cfg.Registry.Path = "configs/registry.json"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// validateConfig rejects settings that would otherwise surface as a
// misconfigured fusion call on every query.
func validateConfig(cfg *Config) error {
	switch cfg.Fusion.Method {
	case "rrf", "combsum":
	default:
		return fmt.Errorf("fusion.method must be \"rrf\" or \"combsum\", got %q", cfg.Fusion.Method)
	}

	if cfg.Fusion.RRFK <= 0 {
		return fmt.Errorf("fusion.rrf_k must be > 0, got %d", cfg.Fusion.RRFK)
	}
	if cfg.Fusion.MaxResults <= 0 {
		return fmt.Errorf("fusion.max_results must be > 0, got %d", cfg.Fusion.MaxResults)
	}
	if cfg.Fusion.MaxPerSource <= 0 {
		return fmt.Errorf("fusion.max_per_source must be > 0, got %d", cfg.Fusion.MaxPerSource)
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}

	for id, pc := range cfg.Providers {
		if pc.Timeout < 0 {
			return fmt.Errorf("providers.%s.timeout must not be negative", id)
		}
	}

	return nil
}
