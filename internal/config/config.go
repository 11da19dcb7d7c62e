package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the process-wide read-only configuration, built once at startup.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	TextGen  TextGenConfig  `mapstructure:"textgen"`
	Vision   VisionConfig   `mapstructure:"vision"`
	Face     FaceConfig     `mapstructure:"face"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Mood     MoodConfig     `mapstructure:"mood"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

// TextGenConfig configures the caption/mood text-generation model.
type TextGenConfig struct {
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// VisionConfig configures the per-image description model.
type VisionConfig struct {
	Model     string        `mapstructure:"model"`
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// FaceConfig configures the face-recognition service client and the
// tag-promotion rule.
type FaceConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Threshold     float64       `mapstructure:"threshold"`
	MinGap        float64       `mapstructure:"min_gap"`
	BatchLimit    int           `mapstructure:"batch_limit"`
	TagScanImages int           `mapstructure:"tag_scan_images"`
	MaxTags       int           `mapstructure:"max_tags"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// PipelineConfig holds caption-stage knobs.
type PipelineConfig struct {
	MaxCaptionWords  int `mapstructure:"max_caption_words"`
	MaxHashtags      int `mapstructure:"max_hashtags"`
	MaxDraftTags     int `mapstructure:"max_draft_tags"`
	DescribeWorkers  int `mapstructure:"describe_workers"`
	MaxImagesPerPost int `mapstructure:"max_images_per_post"`
}

// MoodConfig holds the fusion thresholds.
type MoodConfig struct {
	AgreementFloor float64 `mapstructure:"agreement_floor"`
	SingleFloor    float64 `mapstructure:"single_floor"`
	AgreementBoost float64 `mapstructure:"agreement_boost"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("textgen.model", "gpt-4o-mini")
	v.SetDefault("textgen.base_url", "https://api.openai.com/v1")
	v.SetDefault("textgen.temperature", 0.7)
	v.SetDefault("textgen.max_tokens", 300)
	v.SetDefault("textgen.timeout", "30s")
	v.SetDefault("vision.model", "gpt-4o-mini")
	v.SetDefault("vision.base_url", "https://api.openai.com/v1")
	v.SetDefault("vision.max_tokens", 200)
	v.SetDefault("vision.timeout", "60s")
	v.SetDefault("face.base_url", "http://127.0.0.1:8000")
	v.SetDefault("face.threshold", 0.6)
	v.SetDefault("face.min_gap", 0.06)
	v.SetDefault("face.batch_limit", 6)
	v.SetDefault("face.tag_scan_images", 3)
	v.SetDefault("face.max_tags", 5)
	v.SetDefault("face.timeout", "20s")
	v.SetDefault("pipeline.max_caption_words", 14)
	v.SetDefault("pipeline.max_hashtags", 5)
	v.SetDefault("pipeline.max_draft_tags", 3)
	v.SetDefault("pipeline.describe_workers", 4)
	v.SetDefault("pipeline.max_images_per_post", 10)
	v.SetDefault("mood.agreement_floor", 0.45)
	v.SetDefault("mood.single_floor", 0.35)
	v.SetDefault("mood.agreement_boost", 0.1)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("textgen.api_key", "OPENAI_API_KEY")
	v.BindEnv("textgen.base_url", "OPENAI_BASE_URL")
	v.BindEnv("textgen.model", "TEXTGEN_MODEL")
	v.BindEnv("vision.api_key", "OPENAI_API_KEY")
	v.BindEnv("vision.base_url", "OPENAI_BASE_URL")
	v.BindEnv("vision.model", "VISION_MODEL")
	v.BindEnv("face.base_url", "FACE_SERVICE_URL")
	v.BindEnv("face.threshold", "FACE_THRESHOLD")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
