package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// ColisPrive holds the carrier API configuration.
	ColisPrive ColisPriveConfig `mapstructure:",squash"`

	// Optimizer holds the route optimization provider configuration.
	Optimizer OptimizerConfig `mapstructure:",squash"`

	// Cache holds the package detail cache configuration.
	Cache CacheConfig `mapstructure:",squash"`

	// Pipeline holds the tour optimization pipeline configuration.
	Pipeline PipelineConfig `mapstructure:",squash"`

	// Proxy holds the optional outbound proxy used for carrier calls.
	Proxy ProxyConfig `mapstructure:",squash"`
}

// ColisPriveConfig holds the endpoints and limits of the Colis Privé API.
type ColisPriveConfig struct {
	// AuthURL is the base URL of the authentication service.
	AuthURL string `mapstructure:"COLIS_PRIVE_AUTH_URL" required:"true"`
	// TourneeURL is the base URL of the tour service.
	TourneeURL string `mapstructure:"COLIS_PRIVE_TOURNEE_URL" required:"true"`
	// DetailURL is the base URL of the package detail service.
	DetailURL string `mapstructure:"COLIS_PRIVE_DETAIL_URL" required:"true"`
	// TokenLifetimeHours is the session lifetime requested at login.
	TokenLifetimeHours int `mapstructure:"COLIS_PRIVE_TOKEN_HOURS" default:"24"`
	// DetailBatchSize caps the number of concurrent detail requests.
	DetailBatchSize int `mapstructure:"COLIS_PRIVE_DETAIL_BATCH_SIZE" default:"5"`
	// DetailBatchDelay is the pause between two detail batches.
	DetailBatchDelay time.Duration `mapstructure:"COLIS_PRIVE_DETAIL_BATCH_DELAY" default:"500ms"`
	// RequestTimeout bounds a single carrier HTTP call.
	RequestTimeout time.Duration `mapstructure:"COLIS_PRIVE_REQUEST_TIMEOUT" default:"30s"`
}

// OptimizerConfig holds the Mapbox Optimization API settings.
type OptimizerConfig struct {
	// BaseURL is the Mapbox API root.
	BaseURL string `mapstructure:"MAPBOX_BASE_URL" default:"https://api.mapbox.com"`
	// Token is the Mapbox access token.
	Token string `mapstructure:"MAPBOX_TOKEN" required:"true"`
	// ServiceDuration is the time spent at each delivery stop.
	ServiceDuration time.Duration `mapstructure:"OPTIMIZER_SERVICE_DURATION" default:"5m"`
	// PollInterval is the delay between two solution polls.
	PollInterval time.Duration `mapstructure:"OPTIMIZER_POLL_INTERVAL" default:"5s"`
	// MaxWait bounds the total time spent polling for a solution.
	MaxWait time.Duration `mapstructure:"OPTIMIZER_MAX_WAIT" default:"5m"`
	// RequestTimeout bounds a single optimizer HTTP call.
	RequestTimeout time.Duration `mapstructure:"OPTIMIZER_REQUEST_TIMEOUT" default:"60s"`
}

// CacheConfig holds the package detail cache settings.
type CacheConfig struct {
	// Backend selects the cache implementation: "memory" or "redis".
	Backend string `mapstructure:"CACHE_BACKEND" default:"memory"`
	// RedisURL is used when Backend is "redis".
	RedisURL string `mapstructure:"REDIS_URL" default:"redis://localhost:6379/0"`
	// DetailTTL is how long a package detail stays cached.
	DetailTTL time.Duration `mapstructure:"DETAIL_CACHE_TTL" default:"1h"`
	// MaxEntries bounds the in-memory cache size.
	MaxEntries int `mapstructure:"DETAIL_CACHE_MAX_ENTRIES" default:"1000"`
}

// PipelineConfig holds the orchestration settings.
type PipelineConfig struct {
	// Timeout is the overall deadline of one pipeline run.
	Timeout time.Duration `mapstructure:"PIPELINE_TIMEOUT" default:"90s"`
	// EnrichDetails enables the detail stage when the request does not say otherwise.
	EnrichDetails bool `mapstructure:"PIPELINE_ENRICH_DETAILS" default:"true"`
}

// ProxyConfig holds the outbound HTTP proxy settings.
type ProxyConfig struct {
	Enabled  bool   `mapstructure:"PROXY_ENABLED" default:"false"`
	Hostname string `mapstructure:"PROXY_HOSTNAME"`
	Port     int    `mapstructure:"PROXY_PORT"`
	Username string `mapstructure:"PROXY_USERNAME"`
	Password string `mapstructure:"PROXY_PASSWORD"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	if err := validateRanges(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields, binds env keys and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		if key == "" {
			continue
		}

		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind env %s: %w", key, err)
		}

		if defaultValue := field.Tag.Get("default"); defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("required") == "true" && isZero(val.Field(i)) {
			key := field.Tag.Get("mapstructure")
			return fmt.Errorf("missing required configuration: %s", key)
		}
	}
	return nil
}

// validateRanges rejects settings that would stall or disable the pipeline.
func validateRanges(config *AppConfig) error {
	switch config.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid configuration: CACHE_BACKEND must be memory or redis, got %q", config.Cache.Backend)
	}

	if config.ColisPrive.DetailBatchSize <= 0 {
		return fmt.Errorf("invalid configuration: COLIS_PRIVE_DETAIL_BATCH_SIZE must be positive")
	}
	if config.ColisPrive.TokenLifetimeHours <= 0 {
		return fmt.Errorf("invalid configuration: COLIS_PRIVE_TOKEN_HOURS must be positive")
	}
	if config.Optimizer.PollInterval <= 0 || config.Optimizer.MaxWait <= 0 {
		return fmt.Errorf("invalid configuration: optimizer poll interval and max wait must be positive")
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
