package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

type Config struct {
	Port         int    `yaml:"port" validate:"min=1,max=65535"`
	DatabaseURL  string `yaml:"database_url" validate:"required"`
	DatabaseType string `yaml:"database_type" validate:"oneof=sqlite postgres"`
	AdminKeySalt string `yaml:"admin_key_salt" validate:"required"`

	UpstreamURL      string        `yaml:"upstream_url" validate:"required,url"`
	UpstreamToken    string        `yaml:"upstream_token"`
	UpstreamRPS      float64       `yaml:"upstream_rps" validate:"gte=0"`
	UpstreamCacheTTL time.Duration `yaml:"upstream_cache_ttl" validate:"gte=0"`

	Timezone string `yaml:"timezone" validate:"required"`
	PageSize int    `yaml:"page_size" validate:"min=1,max=1000"`

	RefreshInterval          time.Duration `yaml:"refresh_interval" validate:"gt=0"`
	CountdownInterval        time.Duration `yaml:"countdown_interval" validate:"gt=0"`
	PositionCarouselInterval time.Duration `yaml:"position_carousel_interval" validate:"gt=0"`
	BulletinCarouselInterval time.Duration `yaml:"bulletin_carousel_interval" validate:"gt=0"`

	Debug bool `yaml:"debug"`
}

// Defaults returns the configuration used before any file, env or flag is applied
func Defaults() Config {
	return Config{
		Port:                     3318,
		DatabaseType:             "sqlite",
		UpstreamRPS:              10,
		UpstreamCacheTTL:         750 * time.Millisecond,
		Timezone:                 "Local",
		PageSize:                 50,
		RefreshInterval:          time.Second,
		CountdownInterval:        time.Second,
		PositionCarouselInterval: 10 * time.Second,
		BulletinCarouselInterval: 5 * time.Second,
	}
}

// Location resolves Timezone
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// ParseFlags builds the configuration. Later sources override earlier ones:
// defaults, YAML file (-c or CONFIG_FILE), environment, command-line flags.
func ParseFlags(args []string) (Config, error) {
	var (
		fl         Config
		configFile string
	)

	fs := flag.NewFlagSet("ballotboard", flag.ContinueOnError)

	fs.StringVar(&configFile, "c", "", "YAML config file")

	// Network config (can be CLI args or env)
	fs.IntVar(&fl.Port, "p", 0, "Server port")
	fs.StringVar(&fl.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&fl.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&fl.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")
	fs.StringVar(&fl.UpstreamToken, "upstream-token", "", "Upstream API bearer token (prefer env)")

	// Upstream election API
	fs.StringVar(&fl.UpstreamURL, "u", "", "Upstream election API base URL")
	fs.Float64Var(&fl.UpstreamRPS, "upstream-rps", 0, "Upstream requests per second (0 = unlimited)")
	fs.DurationVar(&fl.UpstreamCacheTTL, "cache-ttl", 0, "Upstream response cache TTL (0 = off)")

	// Display
	fs.StringVar(&fl.Timezone, "tz", "", "Timezone for election end times")
	fs.IntVar(&fl.PageSize, "page-size", 0, "Voter codes per page")
	fs.DurationVar(&fl.RefreshInterval, "refresh", 0, "Live board refresh interval")
	fs.DurationVar(&fl.CountdownInterval, "countdown", 0, "Live board countdown interval")
	fs.DurationVar(&fl.PositionCarouselInterval, "position-carousel", 0, "Position carousel interval")
	fs.DurationVar(&fl.BulletinCarouselInterval, "bulletin-carousel", 0, "Bulletin carousel interval")
	fs.BoolVar(&fl.Debug, "debug", false, "Debug logging")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Defaults()

	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}
	if configFile != "" {
		if err := loadFile(configFile, &cfg); err != nil {
			return Config{}, err
		}
	}

	// Fall back to environment variables
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	// CLI flags take precedence
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "p":
			cfg.Port = fl.Port
		case "d":
			cfg.DatabaseURL = fl.DatabaseURL
		case "t":
			cfg.DatabaseType = fl.DatabaseType
		case "admin-salt":
			cfg.AdminKeySalt = fl.AdminKeySalt
		case "upstream-token":
			cfg.UpstreamToken = fl.UpstreamToken
		case "u":
			cfg.UpstreamURL = fl.UpstreamURL
		case "upstream-rps":
			cfg.UpstreamRPS = fl.UpstreamRPS
		case "cache-ttl":
			cfg.UpstreamCacheTTL = fl.UpstreamCacheTTL
		case "tz":
			cfg.Timezone = fl.Timezone
		case "page-size":
			cfg.PageSize = fl.PageSize
		case "refresh":
			cfg.RefreshInterval = fl.RefreshInterval
		case "countdown":
			cfg.CountdownInterval = fl.CountdownInterval
		case "position-carousel":
			cfg.PositionCarouselInterval = fl.PositionCarouselInterval
		case "bulletin-carousel":
			cfg.BulletinCarouselInterval = fl.BulletinCarouselInterval
		case "debug":
			cfg.Debug = fl.Debug
		}
	})

	// Secrets - MUST be provided
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}
	if cfg.UpstreamURL == "" {
		return Config{}, errors.New("upstream URL required (use -u or UPSTREAM_URL env)")
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return Config{}, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	// Strict decoding catches misspelled keys
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	envString("DATABASE_URL", &cfg.DatabaseURL)
	envString("DATABASE_TYPE", &cfg.DatabaseType)
	envString("ADMIN_KEY_SALT", &cfg.AdminKeySalt)
	envString("UPSTREAM_URL", &cfg.UpstreamURL)
	envString("UPSTREAM_TOKEN", &cfg.UpstreamToken)
	envString("TIMEZONE", &cfg.Timezone)

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("invalid PORT env variable")
		}
		cfg.Port = port
	}
	if v := os.Getenv("PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("invalid PAGE_SIZE env variable")
		}
		cfg.PageSize = n
	}
	if v := os.Getenv("UPSTREAM_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.New("invalid UPSTREAM_RPS env variable")
		}
		cfg.UpstreamRPS = rps
	}
	if v := os.Getenv("DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New("invalid DEBUG env variable")
		}
		cfg.Debug = debug
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"UPSTREAM_CACHE_TTL", &cfg.UpstreamCacheTTL},
		{"REFRESH_INTERVAL", &cfg.RefreshInterval},
		{"COUNTDOWN_INTERVAL", &cfg.CountdownInterval},
		{"POSITION_CAROUSEL_INTERVAL", &cfg.PositionCarouselInterval},
		{"BULLETIN_CAROUSEL_INTERVAL", &cfg.BulletinCarouselInterval},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s env variable: %w", d.key, err)
		}
		*d.dst = parsed
	}

	return nil
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
