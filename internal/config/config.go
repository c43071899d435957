package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	DB         DBConfig
	S3         S3Config
	Log        LogConfig
	Raster     RasterConfig
	Extraction ExtractionConfig
	Detector   DetectorConfig
	Queue      QueueConfig
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings for the page source and export upload.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RasterConfig holds the target pixel raster pages are mapped onto.
// PDF-point coordinates are scaled to this raster independently per axis.
type RasterConfig struct {
	TargetWidthPX  int `mapstructure:"target_width_px"`
	TargetHeightPX int `mapstructure:"target_height_px"`
}

// ExtractionConfig holds matching defaults applied when a pairing payload
// omits them, plus the external tool used for vector text.
type ExtractionConfig struct {
	Pdftotext         string  `mapstructure:"pdftotext"`
	DefaultRelation   string  `mapstructure:"default_relation"`
	DefaultMaxDistPX  float64 `mapstructure:"default_max_distance_px"`
	RelationTolerance float64 `mapstructure:"relation_tolerance_px"`
	BucketSizePX      float64 `mapstructure:"bucket_size_px"`
}

// DetectorConfig holds fallback text-region detector settings.
type DetectorConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	APIKey      string `mapstructure:"api_key"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// QueueConfig holds page extraction fan-out settings.
type QueueConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// Load reads configuration from environment variables with the PLANSIFT prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PLANSIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "plansift")
	v.SetDefault("db.password", "plansift_secret")
	v.SetDefault("db.name", "plansift_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "plansift-pages")
	v.SetDefault("s3.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Raster defaults (letter page at 200 DPI)
	v.SetDefault("raster.target_width_px", 1700)
	v.SetDefault("raster.target_height_px", 2200)

	// Extraction defaults
	v.SetDefault("extraction.pdftotext", "pdftotext")
	v.SetDefault("extraction.default_relation", "below")
	v.SetDefault("extraction.default_max_distance_px", 200)
	v.SetDefault("extraction.relation_tolerance_px", 50)
	v.SetDefault("extraction.bucket_size_px", 50)

	// Detector defaults
	v.SetDefault("detector.endpoint", "")
	v.SetDefault("detector.api_key", "")
	v.SetDefault("detector.timeout_secs", 60)

	// Queue defaults
	v.SetDefault("queue.concurrency", 4)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"db.host":                             "PLANSIFT_DB_HOST",
		"db.port":                             "PLANSIFT_DB_PORT",
		"db.user":                             "PLANSIFT_DB_USER",
		"db.password":                         "PLANSIFT_DB_PASSWORD",
		"db.name":                             "PLANSIFT_DB_NAME",
		"db.sslmode":                          "PLANSIFT_DB_SSLMODE",
		"db.max_open":                         "PLANSIFT_DB_MAX_OPEN",
		"db.max_idle":                         "PLANSIFT_DB_MAX_IDLE",
		"s3.region":                           "PLANSIFT_S3_REGION",
		"s3.bucket":                           "PLANSIFT_S3_BUCKET",
		"s3.endpoint":                         "PLANSIFT_S3_ENDPOINT",
		"s3.access_key":                       "PLANSIFT_S3_ACCESS_KEY",
		"s3.secret_key":                       "PLANSIFT_S3_SECRET_KEY",
		"log.level":                           "PLANSIFT_LOG_LEVEL",
		"log.format":                          "PLANSIFT_LOG_FORMAT",
		"raster.target_width_px":              "PLANSIFT_RASTER_TARGET_WIDTH_PX",
		"raster.target_height_px":             "PLANSIFT_RASTER_TARGET_HEIGHT_PX",
		"extraction.pdftotext":                "PLANSIFT_EXTRACTION_PDFTOTEXT",
		"extraction.default_relation":         "PLANSIFT_EXTRACTION_DEFAULT_RELATION",
		"extraction.default_max_distance_px":  "PLANSIFT_EXTRACTION_DEFAULT_MAX_DISTANCE_PX",
		"extraction.relation_tolerance_px":    "PLANSIFT_EXTRACTION_RELATION_TOLERANCE_PX",
		"extraction.bucket_size_px":           "PLANSIFT_EXTRACTION_BUCKET_SIZE_PX",
		"detector.endpoint":                   "PLANSIFT_DETECTOR_ENDPOINT",
		"detector.api_key":                    "PLANSIFT_DETECTOR_API_KEY",
		"detector.timeout_secs":               "PLANSIFT_DETECTOR_TIMEOUT_SECS",
		"queue.concurrency":                   "PLANSIFT_QUEUE_CONCURRENCY",
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding env %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Raster.TargetWidthPX <= 0 || cfg.Raster.TargetHeightPX <= 0 {
		return nil, fmt.Errorf("raster target dimensions must be positive")
	}
	if cfg.Queue.Concurrency <= 0 {
		cfg.Queue.Concurrency = 1
	}

	return &cfg, nil
}
