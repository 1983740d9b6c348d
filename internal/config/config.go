package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pawdiary/pawdiary/internal/domain/draft"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
	Auth      AuthConfig      `yaml:"auth"`
	CORS      CORSConfig      `yaml:"cors"`
	Drafts    DraftsConfig    `yaml:"drafts"`
	Memory    MemoryConfig    `yaml:"memory"`
	Editor    EditorConfig    `yaml:"editor"`
	Files     FilesConfig     `yaml:"files"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

type TransportConfig struct {
	// Mode is http or stdio.
	Mode string `yaml:"mode"`
}

type AuthConfig struct {
	Enabled bool `yaml:"enabled"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DraftsConfig struct {
	AutosaveDelay time.Duration `yaml:"autosave_delay"`
	MaxAge        time.Duration `yaml:"max_age"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type MemoryConfig struct {
	MaxBrandEntries    int `yaml:"max_brand_entries"`
	MaxRecentTemplates int `yaml:"max_recent_templates"`
}

type EditorConfig struct {
	WizardStepSize    int           `yaml:"wizard_step_size"`
	QuickLogThreshold int           `yaml:"quick_log_threshold"`
	SessionTTL        time.Duration `yaml:"session_ttl"`
}

type FilesConfig struct {
	// Dir holds pet photos and activity attachments. Empty means a "files"
	// directory next to the database.
	Dir string `yaml:"dir"`
}

// FilesDir resolves where uploaded files live.
func (c Config) FilesDir() string {
	if c.Files.Dir != "" {
		return c.Files.Dir
	}
	if c.DB.Path == "" || c.DB.Path == ":memory:" || strings.HasPrefix(c.DB.Path, "file:") {
		return filepath.Join(os.TempDir(), "pawdiary-files")
	}
	return filepath.Join(filepath.Dir(c.DB.Path), "files")
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "pawdiary.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:1420", "tauri://localhost"},
		},
		Drafts: DraftsConfig{
			AutosaveDelay: 2 * time.Second,
			MaxAge:        draft.DefaultMaxAge,
			SweepInterval: time.Hour,
		},
		Memory: MemoryConfig{
			MaxBrandEntries:    50,
			MaxRecentTemplates: 20,
		},
		Editor: EditorConfig{
			WizardStepSize:    3,
			QuickLogThreshold: 3,
			SessionTTL:        30 * time.Minute,
		},
	}
}

// Load reads configuration from a .env file, an optional YAML file and
// environment variables, in that order of increasing precedence.
func Load() (Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("PAWDIARY_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("PAWDIARY_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("PAWDIARY_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid PAWDIARY_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("PAWDIARY_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if dir := os.Getenv("PAWDIARY_FILES_DIR"); dir != "" {
		cfg.Files.Dir = dir
	}
	if level := os.Getenv("PAWDIARY_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("PAWDIARY_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if mode := os.Getenv("PAWDIARY_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if enabled := os.Getenv("PAWDIARY_AUTH_ENABLED"); enabled != "" {
		v, err := strconv.ParseBool(enabled)
		if err != nil {
			return fmt.Errorf("invalid PAWDIARY_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = v
	}
	if origins := os.Getenv("PAWDIARY_CORS_ORIGINS"); origins != "" {
		cfg.CORS.AllowedOrigins = splitList(origins)
	}
	if delay := os.Getenv("PAWDIARY_AUTOSAVE_DELAY"); delay != "" {
		d, err := time.ParseDuration(delay)
		if err != nil {
			return fmt.Errorf("invalid PAWDIARY_AUTOSAVE_DELAY: %w", err)
		}
		cfg.Drafts.AutosaveDelay = d
	}
	if maxAge := os.Getenv("PAWDIARY_DRAFT_MAX_AGE"); maxAge != "" {
		d, err := time.ParseDuration(maxAge)
		if err != nil {
			return fmt.Errorf("invalid PAWDIARY_DRAFT_MAX_AGE: %w", err)
		}
		cfg.Drafts.MaxAge = d
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Transport.Mode {
	case "http", "stdio":
	default:
		return fmt.Errorf("invalid transport mode %q (want http or stdio)", c.Transport.Mode)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if c.Drafts.AutosaveDelay <= 0 {
		return fmt.Errorf("drafts.autosave_delay must be positive")
	}
	if c.Drafts.MaxAge <= 0 || c.Drafts.SweepInterval <= 0 {
		return fmt.Errorf("drafts.max_age and drafts.sweep_interval must be positive")
	}
	if c.Memory.MaxBrandEntries <= 0 || c.Memory.MaxRecentTemplates <= 0 {
		return fmt.Errorf("memory limits must be positive")
	}
	if c.Editor.WizardStepSize <= 0 || c.Editor.QuickLogThreshold <= 0 {
		return fmt.Errorf("editor.wizard_step_size and editor.quick_log_threshold must be positive")
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
