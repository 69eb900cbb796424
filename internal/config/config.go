package config

import (
	"fmt"
	"strings"

	"github.com/heritage-bijoux/appraiser/internal/archive"
	"github.com/heritage-bijoux/appraiser/internal/inventory"
	"github.com/heritage-bijoux/appraiser/internal/photos"
	"github.com/spf13/viper"
)

const (
	envPrefix          = "APPRAISER"
	defaultHTTPAddress = "0.0.0.0:8888"
	defaultStorePath   = "appraiser.db"
)

// AppConfig holds everything the CLI and the HTTP server need at runtime.
type AppConfig struct {
	HTTPAddress string

	LogLevel  string
	LogFormat string

	StoreDriver   string
	StorePath     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ArchiveKey    string

	ImageMaxWidth int
	ImageQuality  int
	ImageWorkers  int

	AnalysisProvider    string
	AnalysisModel       string
	AnalysisTemperature float64

	ShopifyDomain     string
	ShopifyToken      string
	ShopifyAPIVersion string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	v := viper.New()
	ApplyDefaults(v)
	return v
}

// ApplyDefaults configures defaults and env bindings. APPRAISER_STORE_DRIVER
// maps to store.driver and so on.
func ApplyDefaults(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.address", defaultHTTPAddress)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", defaultStorePath)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("archive.key", archive.DefaultKey)
	v.SetDefault("image.max_width", photos.DefaultMaxWidth)
	v.SetDefault("image.quality", photos.DefaultQuality)
	v.SetDefault("image.workers", photos.DefaultWorkers)
	v.SetDefault("analysis.provider", "gemini")
	v.SetDefault("analysis.temperature", 0.4)
	v.SetDefault("shopify.api_version", inventory.DefaultAPIVersion)
}

// Load parses runtime configuration from viper.
func Load(v *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:         v.GetString("http.address"),
		LogLevel:            strings.ToLower(v.GetString("log.level")),
		LogFormat:           strings.ToLower(v.GetString("log.format")),
		StoreDriver:         strings.ToLower(v.GetString("store.driver")),
		StorePath:           v.GetString("store.path"),
		RedisAddr:           v.GetString("redis.addr"),
		RedisPassword:       v.GetString("redis.password"),
		RedisDB:             v.GetInt("redis.db"),
		ArchiveKey:          v.GetString("archive.key"),
		ImageMaxWidth:       v.GetInt("image.max_width"),
		ImageQuality:        v.GetInt("image.quality"),
		ImageWorkers:        v.GetInt("image.workers"),
		AnalysisProvider:    strings.ToLower(v.GetString("analysis.provider")),
		AnalysisModel:       v.GetString("analysis.model"),
		AnalysisTemperature: v.GetFloat64("analysis.temperature"),
		ShopifyDomain:       v.GetString("shopify.domain"),
		ShopifyToken:        v.GetString("shopify.token"),
		ShopifyAPIVersion:   v.GetString("shopify.api_version"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func (c AppConfig) validate() error {
	switch c.StoreDriver {
	case "sqlite":
		if strings.TrimSpace(c.StorePath) == "" {
			return fmt.Errorf("store.path is required for the sqlite driver")
		}
	case "redis":
		if strings.TrimSpace(c.RedisAddr) == "" {
			return fmt.Errorf("redis.addr is required for the redis driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown store.driver %q (want sqlite, redis or memory)", c.StoreDriver)
	}

	if c.ImageMaxWidth <= 0 {
		return fmt.Errorf("image.max_width must be positive")
	}
	if c.ImageQuality < 1 || c.ImageQuality > 100 {
		return fmt.Errorf("image.quality must be between 1 and 100")
	}
	if c.ImageWorkers <= 0 {
		return fmt.Errorf("image.workers must be positive")
	}
	if strings.TrimSpace(c.ArchiveKey) == "" {
		return fmt.Errorf("archive.key is required")
	}
	return nil
}

// ShopifyConfigured reports whether publishing can reach the storefront.
func (c AppConfig) ShopifyConfigured() bool {
	return strings.TrimSpace(c.ShopifyDomain) != "" && strings.TrimSpace(c.ShopifyToken) != ""
}
