// Package config provides client configuration management with support for
// command-line overrides, environment variables, and .env files.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Cossomoj/booksmood/internal/validation"
)

// Config holds the client configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	API      APIConfig
	State    StateConfig
	Telegram TelegramConfig
	Player   PlayerConfig
	Progress ProgressConfig
	Search   SearchConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `json:"environment" validate:"required,oneof=development staging production"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string `json:"level" validate:"required,oneof=debug info warn error"`
}

// APIConfig holds backend API configuration.
type APIConfig struct {
	BaseURL string        `json:"base_url" validate:"required,url"`
	Timeout time.Duration `json:"timeout" validate:"gt=0"`
	// Outbound request rate (token bucket).
	RequestsPerSecond float64 `json:"requests_per_second" validate:"gt=0"`
	Burst             int     `json:"burst" validate:"gte=1"`
}

// StateConfig holds durable client state configuration.
type StateConfig struct {
	// Dir is the directory for the local state database (default: ~/BooksMood/state).
	Dir string `json:"dir" validate:"required"`
}

// TelegramConfig holds the host-provided identity assertion.
type TelegramConfig struct {
	// InitData is the signed payload handed over by the Telegram host.
	// Empty outside the Mini App context; the development fallback applies.
	InitData string `json:"init_data"`
}

// PlayerConfig holds media backend configuration.
type PlayerConfig struct {
	// MpvSocket is the JSON-IPC socket path (default: {state}/mpv.sock).
	MpvSocket string `json:"mpv_socket"`
	// MpvBinary overrides auto-detection of the mpv location.
	MpvBinary string `json:"mpv_binary"`
	// DeviceName identifies this client in progress pushes.
	DeviceName string `json:"device_name"`
}

// ProgressConfig tunes the progress persistence gate.
type ProgressConfig struct {
	// PushInterval is the minimum elapsed time between pushes (default: 30s).
	PushInterval time.Duration `json:"push_interval" validate:"gt=0"`
	// MinDelta is the minimum position change between pushes (default: 5s).
	MinDelta time.Duration `json:"min_delta" validate:"gte=0"`
}

// SearchConfig tunes the debounced catalog search.
type SearchConfig struct {
	// Debounce is the keystroke quiescence window (default: 400ms).
	Debounce time.Duration `json:"debounce" validate:"gt=0"`
	// MinQueryLength is the shortest query sent to the backend (default: 2).
	MinQueryLength int `json:"min_query_length" validate:"gte=1"`
}

// Overrides carries command-line values that take precedence over the
// environment. Empty fields fall through to env vars, .env, then defaults.
type Overrides struct {
	Environment string
	LogLevel    string
	APIBaseURL  string
	StateDir    string
	EnvFile     string
	MpvSocket   string
	MpvBinary   string
	DeviceName  string
}

// Load builds configuration with precedence:
// 1. Command-line overrides (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(o Overrides) (*Config, error) {
	envFile := o.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(o.Environment, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(o.LogLevel, "LOG_LEVEL", "info"),
		},
		API: APIConfig{
			BaseURL:           getConfigValue(o.APIBaseURL, "API_BASE_URL", "http://127.0.0.1:8000"),
			RequestsPerSecond: getFloatConfigValue("", "API_RPS", 5.0),
			Burst:             getIntConfigValue("", "API_BURST", 10),
		},
		State: StateConfig{
			Dir: getConfigValue(o.StateDir, "STATE_DIR", ""),
		},
		Telegram: TelegramConfig{
			InitData: getConfigValue("", "TELEGRAM_INIT_DATA", ""),
		},
		Player: PlayerConfig{
			MpvSocket:  getConfigValue(o.MpvSocket, "MPV_SOCKET", ""),
			MpvBinary:  getConfigValue(o.MpvBinary, "MPV_BINARY", ""),
			DeviceName: getConfigValue(o.DeviceName, "DEVICE_NAME", defaultDeviceName()),
		},
		Search: SearchConfig{
			MinQueryLength: getIntConfigValue("", "SEARCH_MIN_QUERY_LENGTH", 2),
		},
	}

	// Parse durations.
	var err error
	if cfg.API.Timeout, err = getDurationConfigValue("", "API_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.Progress.PushInterval, err = getDurationConfigValue("", "PROGRESS_PUSH_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Progress.MinDelta, err = getDurationConfigValue("", "PROGRESS_MIN_DELTA", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.Search.Debounce, err = getDurationConfigValue("", "SEARCH_DEBOUNCE", 400*time.Millisecond); err != nil {
		return nil, err
	}

	// Expand and default the state directory.
	if err := cfg.expandStateDir(); err != nil {
		return nil, fmt.Errorf("invalid state dir: %w", err)
	}
	if cfg.Player.MpvSocket == "" {
		cfg.Player.MpvSocket = filepath.Join(cfg.State.Dir, "mpv.sock")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	v := validation.New()
	for _, section := range []any{c.App, c.Logger, c.API, c.State, c.Progress, c.Search} {
		if err := v.Validate(section); err != nil {
			return err
		}
	}
	return nil
}

// expandStateDir expands ~ and makes the path absolute.
// Defaults to ~/BooksMood/state if not specified.
func (c *Config) expandStateDir() error {
	path := c.State.Dir
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		c.State.Dir = filepath.Join(homeDir, "BooksMood", "state")
		return nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	c.State.Dir = filepath.Clean(path)
	return nil
}

func defaultDeviceName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "booksmood-cli"
	}
	return host
}

// getConfigValue returns the first non-empty value from override, env var, or default.
func getConfigValue(override, envKey, defaultValue string) string {
	if override != "" {
		return override
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from override, env var, or default.
func getIntConfigValue(override, envKey string, defaultValue int) int {
	strValue := getConfigValue(override, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float64 from override, env var, or default.
func getFloatConfigValue(override, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(override, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result float64
	if _, err := fmt.Sscanf(strValue, "%g", &result); err != nil {
		return defaultValue
	}
	return result
}

// getDurationConfigValue returns a duration from override, env var, or default.
func getDurationConfigValue(override, envKey string, defaultValue time.Duration) (time.Duration, error) {
	strValue := getConfigValue(override, envKey, "")
	if strValue == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
