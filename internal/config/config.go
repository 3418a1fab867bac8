package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const FileName = "config.yaml"

type Config struct {
	APIURL             string        `yaml:"api_url" validate:"required,url"`
	Addr               string        `yaml:"addr" validate:"required,hostname_port"`
	ProfileDir         string        `yaml:"profile_dir" validate:"required"`
	PollInterval       time.Duration `yaml:"poll_interval" validate:"gt=0"`
	MessageTTL         time.Duration `yaml:"message_ttl" validate:"gt=0"`
	RequestTimeout     time.Duration `yaml:"request_timeout" validate:"gt=0"`
	LogLevel           string        `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogJSON            bool          `yaml:"log_json"`
	SecureCookies      bool          `yaml:"secure_cookies"`
	AllowedOrigins     []string      `yaml:"allowed_origins" validate:"dive,url"`
	AdoptExternalLogin bool          `yaml:"adopt_external_login"`
}

// Default is the configuration used for anything config.yaml leaves out.
func Default() *Config {
	return &Config{
		Addr:           "127.0.0.1:8080",
		ProfileDir:     defaultProfileDir(),
		PollInterval:   500 * time.Millisecond,
		MessageTTL:     2 * time.Second,
		RequestTimeout: 10 * time.Second,
		LogLevel:       "info",
	}
}

func defaultProfileDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".discuss"
	}
	return filepath.Join(dir, "discuss")
}

// Load reads config.yaml from the folder, then applies environment
// overrides. A .env file in the same folder seeds the environment
// without replacing variables that are already set.
func Load(configFolder string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(configFolder, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	configPath := filepath.Join(configFolder, FileName)
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config file: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad(configFolder string) *Config {
	cfg, err := Load(configFolder)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

func (c *Config) applyEnv() {
	override := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	override(&c.APIURL, "DISCUSS_API_URL")
	override(&c.Addr, "DISCUSS_ADDR")
	override(&c.ProfileDir, "DISCUSS_PROFILE_DIR")
	override(&c.LogLevel, "DISCUSS_LOG_LEVEL")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
