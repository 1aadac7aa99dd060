package adapter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Search   SearchConfig   `mapstructure:"search"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Viewer   ViewerConfig   `mapstructure:"viewer"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds warehouse API configuration
type ServerConfig struct {
	URL       string        `mapstructure:"url"`      // Server origin, e.g. http://localhost:8000
	BaseURL   string        `mapstructure:"base_url"` // API base, relative to URL unless absolute
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"` // Requests per second, 0 disables
	Burst     int           `mapstructure:"burst"`
}

// TelegramConfig holds the optional WebApp init data sent with every request
type TelegramConfig struct {
	InitData string `mapstructure:"init_data"`
}

// SearchConfig holds search box behavior
type SearchConfig struct {
	Debounce       time.Duration `mapstructure:"debounce"`
	MinQueryLength int           `mapstructure:"min_query_length"`
	RankResults    bool          `mapstructure:"rank_results"`
}

// CacheConfig holds local cache configuration
type CacheConfig struct {
	Dir      string        `mapstructure:"dir"` // Empty = memory only
	ItemTTL  time.Duration `mapstructure:"item_ttl"`
	ItemSize int           `mapstructure:"item_size"`
}

// ViewerConfig holds the external program used to open item images and videos
type ViewerConfig struct {
	Command string   `mapstructure:"command"` // Empty = system default
	Args    []string `mapstructure:"args"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:       "http://localhost:8000",
			BaseURL:   "/api",
			Timeout:   30 * time.Second,
			RateLimit: 5,
			Burst:     5,
		},
		Search: SearchConfig{
			Debounce:       500 * time.Millisecond,
			MinQueryLength: 2,
		},
		Cache: CacheConfig{
			Dir:      defaultCachePath(),
			ItemTTL:  5 * time.Minute,
			ItemSize: 256,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "anbar", "anbar.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "anbar", "anbar.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "anbar")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "anbar")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "anbar", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "anbar", "cache")
	}
}

// newViper returns a viper instance with the defaults, search paths and env binding set up
func newViper(configDirs ...string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range configDirs {
		v.AddConfigPath(dir)
	}

	// Environment variable overrides, e.g. ANBAR_SERVER_URL
	v.SetEnvPrefix("ANBAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultConfig())
	return v
}

// setDefaults registers every key so AutomaticEnv can resolve it during Unmarshal
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.url", cfg.Server.URL)
	v.SetDefault("server.base_url", cfg.Server.BaseURL)
	v.SetDefault("server.timeout", cfg.Server.Timeout)
	v.SetDefault("server.rate_limit", cfg.Server.RateLimit)
	v.SetDefault("server.burst", cfg.Server.Burst)
	v.SetDefault("telegram.init_data", cfg.Telegram.InitData)
	v.SetDefault("search.debounce", cfg.Search.Debounce)
	v.SetDefault("search.min_query_length", cfg.Search.MinQueryLength)
	v.SetDefault("search.rank_results", cfg.Search.RankResults)
	v.SetDefault("cache.dir", cfg.Cache.Dir)
	v.SetDefault("cache.item_ttl", cfg.Cache.ItemTTL)
	v.SetDefault("cache.item_size", cfg.Cache.ItemSize)
	v.SetDefault("viewer.command", cfg.Viewer.Command)
	v.SetDefault("viewer.args", cfg.Viewer.Args)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	return LoadConfigFrom(defaultConfigPath(), ".")
}

// loadDotEnv exports ANBAR_* overrides from a .env file. Variables already
// present in the environment are left alone; a missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	return nil
}

// LoadConfigFrom loads configuration from the first config.yaml found in dirs
func LoadConfigFrom(dirs ...string) (*Config, error) {
	v := newViper(dirs...)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would make the client unusable
func (c *Config) Validate() error {
	if c.Server.URL == "" && !isAbsoluteURL(c.Server.BaseURL) {
		return fmt.Errorf("server.url is required when server.base_url is relative")
	}
	if c.Search.MinQueryLength < 1 {
		return fmt.Errorf("search.min_query_length must be at least 1, got %d", c.Search.MinQueryLength)
	}
	if c.Search.Debounce < 0 {
		return fmt.Errorf("search.debounce must not be negative")
	}
	return nil
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// SaveConfig saves the configuration to the default config directory
func SaveConfig(cfg *Config) error {
	return SaveConfigTo(cfg, defaultConfigPath())
}

// SaveConfigTo writes cfg as config.yaml into dir
func SaveConfigTo(cfg *Config, dir string) error {
	// Ensure config directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("server.url", cfg.Server.URL)
	v.Set("server.base_url", cfg.Server.BaseURL)
	v.Set("server.timeout", cfg.Server.Timeout.String())
	v.Set("server.rate_limit", cfg.Server.RateLimit)
	v.Set("server.burst", cfg.Server.Burst)

	v.Set("telegram.init_data", cfg.Telegram.InitData)

	v.Set("search.debounce", cfg.Search.Debounce.String())
	v.Set("search.min_query_length", cfg.Search.MinQueryLength)
	v.Set("search.rank_results", cfg.Search.RankResults)

	v.Set("cache.dir", cfg.Cache.Dir)
	v.Set("cache.item_ttl", cfg.Cache.ItemTTL.String())
	v.Set("cache.item_size", cfg.Cache.ItemSize)

	v.Set("viewer.command", cfg.Viewer.Command)
	v.Set("viewer.args", cfg.Viewer.Args)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ClearCache removes all cached data
func ClearCache(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
