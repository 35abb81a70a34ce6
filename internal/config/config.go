package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Env       string `mapstructure:"BLOG_ENV"`
	HTTPAddr  string `mapstructure:"BLOG_HTTP_ADDR"`
	PublicURL string `mapstructure:"BLOG_PUBLIC_ORIGIN"`

	Database DBConfig       `mapstructure:",squash"`
	Auth     AuthConfig     `mapstructure:",squash"`
	Media    MediaConfig    `mapstructure:",squash"`
	Security SecurityConfig `mapstructure:",squash"`
}

type DBConfig struct {
	Type         string `mapstructure:"BLOG_DB_TYPE"` // "postgres", "sqlite", "memory"
	DSN          string `mapstructure:"BLOG_DB_DSN"`
	MaxOpenConns int    `mapstructure:"BLOG_DB_MAX_OPEN_CONNS"`
	MaxIdleConns int    `mapstructure:"BLOG_DB_MAX_IDLE_CONNS"`
}

type AuthConfig struct {
	RedisAddr  string        `mapstructure:"BLOG_REDIS_ADDR"` // empty keeps tokens in the database
	TokenTTL   time.Duration `mapstructure:"BLOG_TOKEN_TTL"`
	BcryptCost int           `mapstructure:"BLOG_BCRYPT_COST"`
}

type MediaConfig struct {
	Root           string `mapstructure:"BLOG_MEDIA_ROOT"`
	AvatarMaxBytes int64  `mapstructure:"BLOG_AVATAR_MAX_BYTES"`
}

type SecurityConfig struct {
	CORSAllowedOrigins []string `mapstructure:"BLOG_CORS_ALLOWED_ORIGINS"`
}

func loadDotEnvFiles() {
	candidates := []string{
		".env",
		filepath.Join("..", ".env"),
	}

	seen := make(map[string]struct{})
	for _, path := range candidates {
		abs := path
		if resolved, err := filepath.Abs(path); err == nil {
			abs = resolved
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}

		if _, err := os.Stat(path); err == nil {
			_ = gotenv.Load(path) // env vars already set take precedence
		}
	}
}

func Load() (*Config, error) {
	loadDotEnvFiles()

	v := viper.New()
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("BLOG_ENV", "dev")
	v.SetDefault("BLOG_HTTP_ADDR", ":8080")
	v.SetDefault("BLOG_PUBLIC_ORIGIN", "http://localhost:8080")
	v.SetDefault("BLOG_DB_TYPE", "sqlite")
	v.SetDefault("BLOG_DB_DSN", "")
	v.SetDefault("BLOG_DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("BLOG_DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("BLOG_REDIS_ADDR", "")
	v.SetDefault("BLOG_TOKEN_TTL", "720h")
	v.SetDefault("BLOG_BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("BLOG_MEDIA_ROOT", "./media")
	v.SetDefault("BLOG_AVATAR_MAX_BYTES", 5<<20)
	v.SetDefault("BLOG_CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	// Handle array parsing for comma-separated values
	if origins := v.GetString("BLOG_CORS_ALLOWED_ORIGINS"); origins != "" {
		v.Set("BLOG_CORS_ALLOWED_ORIGINS", splitList(origins))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Database.Type = strings.ToLower(strings.TrimSpace(cfg.Database.Type))
	if cfg.Database.Type == "sqlite" && cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:blog.db"
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) validate() error {
	switch c.Database.Type {
	case "sqlite", "memory":
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("BLOG_DB_DSN is required for postgres")
		}
	default:
		return fmt.Errorf("invalid BLOG_DB_TYPE %q (must be postgres, sqlite, or memory)", c.Database.Type)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("BLOG_TOKEN_TTL must be positive")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BLOG_BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Media.AvatarMaxBytes <= 0 {
		return fmt.Errorf("BLOG_AVATAR_MAX_BYTES must be positive")
	}
	if c.Media.Root == "" {
		return fmt.Errorf("BLOG_MEDIA_ROOT is required")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}
