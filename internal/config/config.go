package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Engine    EngineConfig
	Generator GeneratorConfig
	S3        S3Config
	Log       LogConfig
	CORS      CORSConfig
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EngineConfig holds section classification and injection settings.
type EngineConfig struct {
	Tolerance       float64 `mapstructure:"tolerance"`
	HeadingMaxChars int     `mapstructure:"heading_max_chars"`
	HeadingMaxWords int     `mapstructure:"heading_max_words"`
	PDFWorkers      int     `mapstructure:"pdf_workers"`
	MaxFileSizeMB   int64   `mapstructure:"max_file_size_mb"`
}

// MaxFileSize returns the upload limit in bytes.
func (e *EngineConfig) MaxFileSize() int64 {
	return e.MaxFileSizeMB * 1024 * 1024
}

// GeneratorProviderConfig holds settings for a single rewrite provider.
type GeneratorProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	Endpoint     string `mapstructure:"endpoint"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// GeneratorConfig holds rewrite generator settings with multi-provider support.
type GeneratorConfig struct {
	// Legacy flat fields
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	Endpoint     string `mapstructure:"endpoint"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	// Multi-provider fields
	Primary   GeneratorProviderConfig `mapstructure:"primary"`
	Secondary GeneratorProviderConfig `mapstructure:"secondary"`
	Tertiary  GeneratorProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config, falling back to legacy flat fields.
func (g *GeneratorConfig) PrimaryConfig() *GeneratorProviderConfig {
	if g.Primary.Provider != "" {
		return &g.Primary
	}
	return &GeneratorProviderConfig{
		Provider:     g.Provider,
		APIKey:       g.APIKey,
		DefaultModel: g.DefaultModel,
		Endpoint:     g.Endpoint,
		MaxRetries:   g.MaxRetries,
		TimeoutSecs:  g.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (g *GeneratorConfig) SecondaryConfig() *GeneratorProviderConfig {
	if g.Secondary.Provider != "" {
		return &g.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (g *GeneratorConfig) TertiaryConfig() *GeneratorProviderConfig {
	if g.Tertiary.Provider != "" {
		return &g.Tertiary
	}
	return nil
}

// Chain returns the configured providers in fallback order.
func (g *GeneratorConfig) Chain() []*GeneratorProviderConfig {
	chain := []*GeneratorProviderConfig{g.PrimaryConfig()}
	if s := g.SecondaryConfig(); s != nil {
		chain = append(chain, s)
	}
	if t := g.TertiaryConfig(); t != nil {
		chain = append(chain, t)
	}
	return chain
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// S3Config holds AWS S3 settings. An empty bucket disables result storage.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// Enabled reports whether a bucket is configured.
func (s *S3Config) Enabled() bool { return s.Bucket != "" }

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads .env (if present) then environment variables with the TAILOR_ prefix.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TAILOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// Engine defaults
	v.SetDefault("engine.tolerance", 0.05)
	v.SetDefault("engine.heading_max_chars", 50)
	v.SetDefault("engine.heading_max_words", 6)
	v.SetDefault("engine.pdf_workers", 4)
	v.SetDefault("engine.max_file_size_mb", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173")

	// Generator defaults (legacy flat)
	v.SetDefault("generator.provider", "groq")
	v.SetDefault("generator.api_key", "")
	v.SetDefault("generator.default_model", "llama-3.3-70b-versatile")
	v.SetDefault("generator.endpoint", "")
	v.SetDefault("generator.max_retries", 2)
	v.SetDefault("generator.timeout_secs", 60)

	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("generator."+tier+".provider", "")
		v.SetDefault("generator."+tier+".api_key", "")
		v.SetDefault("generator."+tier+".default_model", "")
		v.SetDefault("generator."+tier+".endpoint", "")
		v.SetDefault("generator."+tier+".max_retries", 2)
		v.SetDefault("generator."+tier+".timeout_secs", 60)
	}

	// Bind environment variables explicitly for nested keys
	keys := []string{
		"server.port", "server.read_timeout", "server.write_timeout", "server.environment",
		"engine.tolerance", "engine.heading_max_chars", "engine.heading_max_words",
		"engine.pdf_workers", "engine.max_file_size_mb",
		"s3.region", "s3.bucket", "s3.endpoint", "s3.access_key", "s3.secret_key", "s3.presign_expiry",
		"log.level", "log.format",
		"cors.allowed_origins",
		"generator.provider", "generator.api_key", "generator.default_model",
		"generator.endpoint", "generator.max_retries", "generator.timeout_secs",
	}
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		for _, field := range []string{"provider", "api_key", "default_model", "endpoint", "max_retries", "timeout_secs"} {
			keys = append(keys, "generator."+tier+"."+field)
		}
	}
	for _, key := range keys {
		_ = v.BindEnv(key, EnvName(key))
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if TAILOR_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("TAILOR_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Engine = EngineConfig{
		Tolerance:       v.GetFloat64("engine.tolerance"),
		HeadingMaxChars: v.GetInt("engine.heading_max_chars"),
		HeadingMaxWords: v.GetInt("engine.heading_max_words"),
		PDFWorkers:      v.GetInt("engine.pdf_workers"),
		MaxFileSizeMB:   v.GetInt64("engine.max_file_size_mb"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	provider := func(prefix string) GeneratorProviderConfig {
		return GeneratorProviderConfig{
			Provider:     v.GetString(prefix + ".provider"),
			APIKey:       v.GetString(prefix + ".api_key"),
			DefaultModel: v.GetString(prefix + ".default_model"),
			Endpoint:     v.GetString(prefix + ".endpoint"),
			MaxRetries:   v.GetInt(prefix + ".max_retries"),
			TimeoutSecs:  v.GetInt(prefix + ".timeout_secs"),
		}
	}
	cfg.Generator = GeneratorConfig{
		Provider:     v.GetString("generator.provider"),
		APIKey:       v.GetString("generator.api_key"),
		DefaultModel: v.GetString("generator.default_model"),
		Endpoint:     v.GetString("generator.endpoint"),
		MaxRetries:   v.GetInt("generator.max_retries"),
		TimeoutSecs:  v.GetInt("generator.timeout_secs"),
		Primary:      provider("generator.primary"),
		Secondary:    provider("generator.secondary"),
		Tertiary:     provider("generator.tertiary"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EnvName returns the environment variable bound to a config key.
func EnvName(key string) string {
	return "TAILOR_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	if c.Engine.Tolerance < 0 || c.Engine.Tolerance >= 1 {
		return fmt.Errorf("engine.tolerance must be in [0, 1), got %v", c.Engine.Tolerance)
	}
	if c.Engine.HeadingMaxChars <= 0 || c.Engine.HeadingMaxWords <= 0 {
		return fmt.Errorf("engine heading limits must be positive")
	}
	if c.Engine.MaxFileSizeMB <= 0 {
		return fmt.Errorf("engine.max_file_size_mb must be positive")
	}
	return nil
}
