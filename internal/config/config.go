package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	ferrors "facettes/internal/errors"
)

// Config represents the complete facettes configuration
type Config struct {
	Version int `json:"version" mapstructure:"version" validate:"eq=1"`

	CatalogPath         string `json:"catalogPath" mapstructure:"catalogPath" validate:"required"`
	SelectionsPath      string `json:"selectionsPath" mapstructure:"selectionsPath"`
	MaxCombinationDepth int    `json:"maxCombinationDepth" mapstructure:"maxCombinationDepth" validate:"gte=1,lte=10"`
	QueryTemplate       string `json:"queryTemplate" mapstructure:"queryTemplate" validate:"required"`
	BatchSize           int    `json:"batchSize" mapstructure:"batchSize" validate:"gt=0"`

	Scoring         ScoringConfig         `json:"scoring" mapstructure:"scoring"`
	Zones           ZonesConfig           `json:"zones" mapstructure:"zones"`
	Thresholds      ThresholdsConfig      `json:"thresholds" mapstructure:"thresholds"`
	Cannibalisation CannibalisationConfig `json:"cannibalisation" mapstructure:"cannibalisation"`
	Cache           CacheConfig           `json:"cache" mapstructure:"cache"`
	Semrush         SemrushConfig         `json:"semrush" mapstructure:"semrush"`
	Suggest         SuggestConfig         `json:"suggest" mapstructure:"suggest"`
	Logging         LoggingConfig         `json:"logging" mapstructure:"logging"`
	Metrics         MetricsConfig         `json:"metrics" mapstructure:"metrics"`
}

// ScoringConfig contains the weighted score model
type ScoringConfig struct {
	Weights        WeightsConfig `json:"weights" mapstructure:"weights"`
	Caps           CapsConfig    `json:"caps" mapstructure:"caps"`
	IndexThreshold float64       `json:"indexThreshold" mapstructure:"indexThreshold" validate:"gte=0,lte=100"`
}

// WeightsConfig contains per-signal weights. A zero sum yields a zero score.
type WeightsConfig struct {
	Volume  float64 `json:"volume" mapstructure:"volume" validate:"gte=0"`
	Suggest float64 `json:"suggest" mapstructure:"suggest" validate:"gte=0"`
	CPC     float64 `json:"cpc" mapstructure:"cpc" validate:"gte=0"`
	KD      float64 `json:"kd" mapstructure:"kd" validate:"gte=0"`
}

// CapsConfig contains the saturation points of each signal
type CapsConfig struct {
	Volume float64 `json:"volume" mapstructure:"volume" validate:"gt=0"`
	CPC    float64 `json:"cpc" mapstructure:"cpc" validate:"gt=0"`
	KD     float64 `json:"kd" mapstructure:"kd" validate:"gt=0"`
}

// ZonesConfig contains the zone classification thresholds
type ZonesConfig struct {
	ScoreHigh float64 `json:"scoreHigh" mapstructure:"scoreHigh" validate:"gte=0,lte=100"`
	ScoreLow  float64 `json:"scoreLow" mapstructure:"scoreLow" validate:"gte=0,ltefield=ScoreHigh"`
	KDEasy    float64 `json:"kdEasy" mapstructure:"kdEasy" validate:"gte=0,lte=100"`
	KDNiche   float64 `json:"kdNiche" mapstructure:"kdNiche" validate:"gte=0,lte=100"`
}

// ThresholdsConfig contains the legacy 0-4 score thresholds per level
type ThresholdsConfig struct {
	Simple      LevelThresholds `json:"simple" mapstructure:"simple"`
	Combination LevelThresholds `json:"combination" mapstructure:"combination"`
}

// LevelThresholds contains one legacy threshold set
type LevelThresholds struct {
	VolumeTotalMin  float64 `json:"volumeTotalMin" mapstructure:"volumeTotalMin" validate:"gte=0"`
	VolumeMedianMin float64 `json:"volumeMedianMin" mapstructure:"volumeMedianMin" validate:"gte=0"`
	SuggestRateMin  float64 `json:"suggestRateMin" mapstructure:"suggestRateMin" validate:"gte=0,lte=1"`
	CPCMin          float64 `json:"cpcMin" mapstructure:"cpcMin" validate:"gte=0"`
}

// CannibalisationConfig contains the overlap detection settings
type CannibalisationConfig struct {
	JaccardThreshold float64 `json:"jaccardThreshold" mapstructure:"jaccardThreshold" validate:"gte=0,lte=1"`
}

// CacheConfig contains result cache configuration
type CacheConfig struct {
	TTLSeconds int `json:"ttlSeconds" mapstructure:"ttlSeconds" validate:"gt=0"`
}

// SemrushConfig contains the demand-metrics provider settings
type SemrushConfig struct {
	APIKey            string  `json:"apiKey,omitempty" mapstructure:"apiKey"`
	Endpoint          string  `json:"endpoint" mapstructure:"endpoint" validate:"required,url"`
	Database          string  `json:"database" mapstructure:"database" validate:"required"`
	RequestsPerSecond float64 `json:"requestsPerSecond" mapstructure:"requestsPerSecond" validate:"gt=0"`
	TimeoutMs         int     `json:"timeoutMs" mapstructure:"timeoutMs" validate:"gt=0"`
}

// SuggestConfig contains the autocomplete provider settings
type SuggestConfig struct {
	Endpoint          string  `json:"endpoint" mapstructure:"endpoint" validate:"required,url"`
	Lang              string  `json:"lang" mapstructure:"lang" validate:"required"`
	Country           string  `json:"country" mapstructure:"country" validate:"required"`
	RequestsPerSecond float64 `json:"requestsPerSecond" mapstructure:"requestsPerSecond" validate:"gt=0"`
	TimeoutMs         int     `json:"timeoutMs" mapstructure:"timeoutMs" validate:"gt=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `json:"level" mapstructure:"level" validate:"oneof=debug info warn warning error"`
	File       string `json:"file" mapstructure:"file"`
	MaxSize    string `json:"maxSize" mapstructure:"maxSize"`
	MaxBackups int    `json:"maxBackups" mapstructure:"maxBackups" validate:"gte=0"`
}

// MetricsConfig contains the Prometheus endpoint settings
type MetricsConfig struct {
	Addr string `json:"addr" mapstructure:"addr"`
	Path string `json:"path" mapstructure:"path" validate:"required,startswith=/"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:             1,
		CatalogPath:         "catalog.json",
		SelectionsPath:      "selections.toml",
		MaxCombinationDepth: 2,
		QueryTemplate:       "{categorie} {genre} {facettes}",
		BatchSize:           50,
		Scoring: ScoringConfig{
			Weights: WeightsConfig{
				Volume:  35,
				Suggest: 25,
				CPC:     20,
				KD:      20,
			},
			Caps: CapsConfig{
				Volume: 5000,
				CPC:    3.0,
				KD:     100,
			},
			IndexThreshold: 55,
		},
		Zones: ZonesConfig{
			ScoreHigh: 55,
			ScoreLow:  30,
			KDEasy:    40,
			KDNiche:   30,
		},
		Thresholds: ThresholdsConfig{
			Simple: LevelThresholds{
				VolumeTotalMin:  500,
				VolumeMedianMin: 50,
				SuggestRateMin:  0.30,
				CPCMin:          0.20,
			},
			Combination: LevelThresholds{
				VolumeTotalMin:  200,
				VolumeMedianMin: 20,
				SuggestRateMin:  0.15,
				CPCMin:          0.10,
			},
		},
		Cannibalisation: CannibalisationConfig{
			JaccardThreshold: 0.6,
		},
		Cache: CacheConfig{
			TTLSeconds: 7 * 24 * 3600,
		},
		Semrush: SemrushConfig{
			Endpoint:          "https://api.semrush.com/",
			Database:          "fr",
			RequestsPerSecond: 5,
			TimeoutMs:         30000,
		},
		Suggest: SuggestConfig{
			Endpoint:          "https://suggestqueries.google.com/complete/search",
			Lang:              "fr",
			Country:           "fr",
			RequestsPerSecond: 2,
			TimeoutMs:         15000,
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "logs/facettes.log",
			MaxSize:    "10MB",
			MaxBackups: 3,
		},
		Metrics: MetricsConfig{
			Addr: "127.0.0.1:9464",
			Path: "/metrics",
		},
	}
}

// LoadConfig loads <dataDir>/config.{yaml,json,toml} on top of the defaults,
// then applies FACETTES_* environment overrides. SEMRUSH_API_KEY is honoured
// for the provider key. A missing file yields the defaults.
func LoadConfig(dataDir string) (*Config, error) {
	v := viper.New()

	defaults, err := defaultsMap()
	if err != nil {
		return nil, err
	}
	if err := v.MergeConfigMap(defaults); err != nil {
		return nil, fmt.Errorf("failed to seed config defaults: %w", err)
	}

	v.SetConfigName("config")
	v.AddConfigPath(dataDir)
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix("FACETTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("semrush.apiKey", "FACETTES_SEMRUSH_API_KEY", "SEMRUSH_API_KEY"); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// defaultsMap flattens DefaultConfig into the generic map viper merges.
func defaultsMap() (map[string]interface{}, error) {
	data, err := json.Marshal(DefaultConfig())
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Save writes the configuration to <dataDir>/config.json without the API key
func (c *Config) Save(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}

	clean := *c
	clean.Semrush.APIKey = ""
	data, err := json.MarshalIndent(&clean, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dataDir, "config.json"), data, 0644)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints. The first violation is reported as a
// *ConfigError.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ConfigError{
			Field:   strings.TrimPrefix(fe.Namespace(), "Config."),
			Message: fmt.Sprintf("failed %q constraint (value %v)", fe.Tag(), fe.Value()),
		}
	}
	return &ConfigError{Field: "config", Message: err.Error()}
}

// RequireCredentials reports a configuration error when a provider key is
// missing. Runs must call it before any network activity.
func (c *Config) RequireCredentials() error {
	if strings.TrimSpace(c.Semrush.APIKey) == "" {
		return ferrors.New(ferrors.ConfigurationError, "SEMRUSH_API_KEY is not set")
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
