package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Store     StoreConfig     `json:"store"`
	Engine    EngineConfig    `json:"engine"`
	Discovery DiscoveryConfig `json:"discovery"`
	Logging   LoggingConfig   `json:"logging"`
}

// StoreConfig configures the backing datastore connection
type StoreConfig struct {
	Driver          string `json:"driver"             env:"STORE_DRIVER"            envDefault:"duckdb"` // duckdb, sqlite, mysql
	DSN             string `json:"dsn"                env:"STORE_DSN"               envDefault:"~/.config/dbscout/dbscout.db"`
	MaxOpenConns    int    `json:"max_open_conns"     env:"STORE_MAX_OPEN_CONNS"    envDefault:"10"`
	MaxIdleConns    int    `json:"max_idle_conns"     env:"STORE_MAX_IDLE_CONNS"    envDefault:"5"`
	ConnMaxLifetime string `json:"conn_max_lifetime"  env:"STORE_CONN_MAX_LIFETIME" envDefault:"30m"`
	ConnMaxIdleTime string `json:"conn_max_idle_time" env:"STORE_CONN_MAX_IDLE"     envDefault:"5m"`
	QueryTimeout    string `json:"query_timeout"      env:"STORE_QUERY_TIMEOUT"     envDefault:"10s"`
}

// EngineConfig configures discovery, profiling and search behavior
type EngineConfig struct {
	SampleSize                int    `json:"sample_size"                  env:"SAMPLE_SIZE"            envDefault:"8"`
	MaxLimit                  int    `json:"max_limit"                    env:"MAX_LIMIT"              envDefault:"1000"`
	DefaultLimit              int    `json:"default_limit"                env:"DEFAULT_LIMIT"          envDefault:"50"`
	SearchConcurrency         int    `json:"search_concurrency"           env:"SEARCH_CONCURRENCY"     envDefault:"4"`
	ProfileCacheTTL           string `json:"profile_cache_ttl"            env:"PROFILE_CACHE_TTL"      envDefault:"5m"` // 0 disables caching
	TextSearchLengthThreshold int    `json:"text_search_length_threshold" env:"TEXT_SEARCH_MIN_LEN"    envDefault:"8"`
	OverallSearchTimeout      string `json:"overall_search_timeout"       env:"OVERALL_SEARCH_TIMEOUT" envDefault:"30s"`
}

// DiscoveryConfig configures the heuristic fallback used when the store
// cannot serve a metadata query. The suggestion list is deployment data, not
// code: it can come from a YAML file or straight from the environment.
type DiscoveryConfig struct {
	SuggestionsFile string   `json:"suggestions_file" env:"DISCOVERY_SUGGESTIONS_FILE"`
	Suggestions     []string `json:"suggestions"      env:"DISCOVERY_SUGGESTIONS"      envSeparator:","`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `json:"level"  env:"LOG_LEVEL"  envDefault:"info"`   // debug, info, warn, error
	Format string `json:"format" env:"LOG_FORMAT" envDefault:"text"`   // text, json
	Output string `json:"output" env:"LOG_OUTPUT" envDefault:"stderr"` // stdout, stderr, file
	File   string `json:"file"   env:"LOG_FILE"   envDefault:"~/.config/dbscout/logs/dbscout.log"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig() (*Config, error) {
	return LoadConfigWithOverrides(nil)
}

// LoadConfigWithOverrides loads configuration with optional command-line flag overrides
func LoadConfigWithOverrides(flagOverrides map[string]interface{}) (*Config, error) {
	config := &Config{}

	// Load from config file if it exists
	configPath := getConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		if err := loadConfigFromFile(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Apply environment variable overrides (also sets defaults)
	if err := env.ParseWithOptions(config, env.Options{
		Prefix: "DBSCOUT_",
	}); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if flagOverrides != nil {
		applyFlagOverrides(config, flagOverrides)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadConfigFromFile loads configuration from a JSON file
func loadConfigFromFile(config *Config, configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fileConfig Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	mergeConfigs(config, &fileConfig)

	return nil
}

// applyFlagOverrides applies command-line flag overrides to configuration
func applyFlagOverrides(config *Config, overrides map[string]interface{}) {
	for key, value := range overrides {
		switch key {
		case "driver":
			if str, ok := value.(string); ok && str != "" {
				config.Store.Driver = str
			}
		case "dsn":
			if str, ok := value.(string); ok && str != "" {
				config.Store.DSN = str
			}
		case "log-level":
			if str, ok := value.(string); ok && str != "" {
				config.Logging.Level = str
			}
		}
	}
}

// mergeConfigs merges source configuration into target configuration
func mergeConfigs(target, source *Config) {
	var mergeValues func(t, s reflect.Value)
	mergeValues = func(t, s reflect.Value) {
		if t.Kind() != s.Kind() {
			return
		}

		if t.Kind() == reflect.Struct {
			for i := 0; i < s.NumField(); i++ {
				mergeValues(t.Field(i), s.Field(i))
			}
		} else if !s.IsZero() {
			t.Set(s)
		}
	}

	mergeValues(reflect.ValueOf(target).Elem(), reflect.ValueOf(source).Elem())
}

// validateConfig validates the configuration for common errors
func validateConfig(config *Config) error {
	validDrivers := map[string]bool{
		"duckdb": true, "sqlite": true, "mysql": true,
	}
	if !validDrivers[strings.ToLower(config.Store.Driver)] {
		return fmt.Errorf(
			"invalid store driver: %s (must be duckdb, sqlite, or mysql)",
			config.Store.Driver,
		)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf(
			"invalid log level: %s (must be debug, info, warn, or error)",
			config.Logging.Level,
		)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[strings.ToLower(config.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", config.Logging.Format)
	}

	validLogOutputs := map[string]bool{
		"stdout": true, "stderr": true, "file": true,
	}
	if !validLogOutputs[strings.ToLower(config.Logging.Output)] {
		return fmt.Errorf(
			"invalid log output: %s (must be stdout, stderr, or file)",
			config.Logging.Output,
		)
	}

	for name, value := range map[string]string{
		"store query timeout":    config.Store.QueryTimeout,
		"store conn lifetime":    config.Store.ConnMaxLifetime,
		"store conn idle time":   config.Store.ConnMaxIdleTime,
		"profile cache TTL":      config.Engine.ProfileCacheTTL,
		"overall search timeout": config.Engine.OverallSearchTimeout,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %s", name, value)
		}
	}

	if config.Engine.SampleSize <= 0 {
		return fmt.Errorf("sample size must be positive: %d", config.Engine.SampleSize)
	}

	if config.Engine.MaxLimit <= 0 {
		return fmt.Errorf("max limit must be positive: %d", config.Engine.MaxLimit)
	}

	if config.Engine.DefaultLimit <= 0 || config.Engine.DefaultLimit > config.Engine.MaxLimit {
		return fmt.Errorf(
			"default limit must be in [1, %d]: %d",
			config.Engine.MaxLimit, config.Engine.DefaultLimit,
		)
	}

	if config.Engine.SearchConcurrency <= 0 {
		return fmt.Errorf(
			"search concurrency must be positive: %d",
			config.Engine.SearchConcurrency,
		)
	}

	if config.Store.MaxOpenConns <= 0 {
		return fmt.Errorf("store max open conns must be positive: %d", config.Store.MaxOpenConns)
	}

	return nil
}

// suggestionsFile is the YAML shape of an external table-suggestion list
type suggestionsFile struct {
	Tables []string `yaml:"tables"`
}

// TableSuggestions returns the heuristic table-name list, preferring the
// external YAML file over the inline environment value.
func (c *Config) TableSuggestions() ([]string, error) {
	if c.Discovery.SuggestionsFile == "" {
		return c.Discovery.Suggestions, nil
	}

	data, err := os.ReadFile(expandPath(c.Discovery.SuggestionsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read suggestions file: %w", err)
	}

	var sf suggestionsFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse suggestions file: %w", err)
	}

	return sf.Tables, nil
}

// QueryTimeoutDuration returns the parsed per-query timeout
func (c *StoreConfig) QueryTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.QueryTimeout)
	if err != nil {
		return 10 * time.Second
	}

	return d
}

// ConnMaxLifetimeDuration returns the parsed connection lifetime
func (c *StoreConfig) ConnMaxLifetimeDuration() time.Duration {
	d, err := time.ParseDuration(c.ConnMaxLifetime)
	if err != nil {
		return 30 * time.Minute
	}

	return d
}

// ConnMaxIdleTimeDuration returns the parsed connection idle time
func (c *StoreConfig) ConnMaxIdleTimeDuration() time.Duration {
	d, err := time.ParseDuration(c.ConnMaxIdleTime)
	if err != nil {
		return 5 * time.Minute
	}

	return d
}

// ProfileCacheTTLDuration returns the parsed cache TTL; zero disables caching
func (c *EngineConfig) ProfileCacheTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.ProfileCacheTTL)
	if err != nil {
		return 5 * time.Minute
	}

	return d
}

// OverallSearchTimeoutDuration returns the parsed cross-table search budget
func (c *EngineConfig) OverallSearchTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.OverallSearchTimeout)
	if err != nil {
		return 30 * time.Second
	}

	return d
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config) error {
	configPath := getConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// getConfigPath returns the path to the configuration file
func getConfigPath() string {
	if configPath := os.Getenv("DBSCOUT_CONFIG"); configPath != "" {
		return expandPath(configPath)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}

	return filepath.Join(homeDir, ".config", "dbscout", "config.json")
}

// expandPath expands ~ to home directory in file paths
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}

	return path
}

// ExpandAllPaths expands all paths in the configuration
func (c *Config) ExpandAllPaths() {
	c.Store.DSN = expandPath(c.Store.DSN)
	c.Logging.File = expandPath(c.Logging.File)
}

// EnsureDirectories creates necessary directories for the configuration.
// Only meaningful for file-backed drivers; the mysql DSN is not a path.
func (c *Config) EnsureDirectories() error {
	dirs := []string{}

	if c.Store.Driver != "mysql" {
		dirs = append(dirs, filepath.Dir(c.Store.DSN))
	}

	if c.Logging.Output == "file" {
		dirs = append(dirs, filepath.Dir(c.Logging.File))
	}

	for _, dir := range dirs {
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}
