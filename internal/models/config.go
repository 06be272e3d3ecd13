package models

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	BucketName string `mapstructure:"bucket_name"`
	Region     string `mapstructure:"region"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type MongoDBConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"db_name"`
}

type ScheduleConfig struct {
	Cron     string `mapstructure:"cron"`
	Timezone string `mapstructure:"timezone"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type Config struct {
	CatalogFile        string   `mapstructure:"catalog_file"`
	CatalogSource      string   `mapstructure:"catalog_source"` // file or postgres
	StockFile          string   `mapstructure:"stock_file"`
	HouseholdFile      string   `mapstructure:"household_file"`
	ReferenceFile      string   `mapstructure:"reference_file"`
	Stores             []string `mapstructure:"stores"`
	RequiredCategories []string `mapstructure:"required_categories"`

	SolveTimeout time.Duration `mapstructure:"solve_timeout"`
	MaxNodes     int           `mapstructure:"max_nodes"`
	Concurrency  int           `mapstructure:"concurrency"`

	OutputFormat      string             `mapstructure:"output_format"` // console, json, csv or parquet
	OutputPath        string             `mapstructure:"output_path"`
	OutputFolder      string             `mapstructure:"output_folder"`
	OutputDestination string             `mapstructure:"output_destination"` // local or s3
	CloudStorage      CloudStorageConfig `mapstructure:"cloud_storage"`

	KafkaEnabled    bool   `mapstructure:"kafka_enabled"`
	KafkaBrokerList string `mapstructure:"kafka_broker_list"`
	KafkaTopic      string `mapstructure:"kafka_topic"`

	Database     DatabaseConfig `mapstructure:"database"`
	PersistPlans bool           `mapstructure:"persist_plans"`
	MongoDB      MongoDBConfig  `mapstructure:"mongodb"`

	Schedule ScheduleConfig `mapstructure:"schedule"`
	Server   ServerConfig   `mapstructure:"server"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	// every key needs a default for AutomaticEnv to reach it during Unmarshal
	for _, key := range []string{
		"catalog_file", "stock_file", "household_file", "reference_file",
		"output_path", "cloud_storage.bucket_name", "cloud_storage.region",
		"database.url", "mongodb.uri",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("stores", []string{})
	v.SetDefault("required_categories", []string{})
	v.SetDefault("kafka_enabled", false)
	v.SetDefault("persist_plans", false)
	v.SetDefault("catalog_source", "file")
	v.SetDefault("solve_timeout", 30*time.Second)
	v.SetDefault("max_nodes", 200000)
	v.SetDefault("concurrency", 4)
	v.SetDefault("output_format", "console")
	v.SetDefault("output_folder", "plans")
	v.SetDefault("output_destination", "local")
	v.SetDefault("cloud_storage.provider", "s3")
	v.SetDefault("kafka_broker_list", "localhost:9092")
	v.SetDefault("kafka_topic", "purchase_plans")
	v.SetDefault("mongodb.db_name", "grocerplan")
	v.SetDefault("schedule.cron", "0 8 * * 6")
	v.SetDefault("schedule.timezone", "Local")
	v.SetDefault("server.port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

// LoadConfig initializes and reads the configuration using the global Viper
// instance, so values bound from command flags take part.
func LoadConfig(cfgFile string) (*Config, error) {
	return LoadConfigFrom(viper.GetViper(), cfgFile)
}

// LoadConfigFrom reads cfgFile (or ./config.{json,yaml} when empty) into v,
// layers GROCERPLAN_* environment variables and a .env file on top, and
// decodes the result.
func LoadConfigFrom(v *viper.Viper, cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	SetDefaults(v)
	v.SetEnvPrefix("grocerplan")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("examples")
		v.SetConfigName("config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err := v.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	switch c.CatalogSource {
	case "file", "postgres":
	default:
		return fmt.Errorf("unsupported catalog source: %s", c.CatalogSource)
	}
	if c.CatalogSource == "postgres" && c.Database.URL == "" {
		return errors.New("database.url must be provided when catalog_source is postgres")
	}
	if c.PersistPlans && c.Database.URL == "" && c.MongoDB.URI == "" {
		return errors.New("persist_plans requires database.url or mongodb.uri")
	}

	switch c.OutputFormat {
	case "console", "json", "csv", "parquet":
	default:
		return fmt.Errorf("unsupported output format: %s", c.OutputFormat)
	}
	if c.OutputFormat != "console" && c.OutputPath == "" {
		return fmt.Errorf("output_path must be provided for %s output", c.OutputFormat)
	}

	switch c.OutputDestination {
	case "local":
	case "s3":
		if c.OutputFormat != "parquet" {
			return errors.New("s3 destination only supports parquet output")
		}
		if c.CloudStorage.BucketName == "" {
			return errors.New("cloud_storage.bucket_name must be provided for s3 destination")
		}
	default:
		return fmt.Errorf("unsupported output destination: %s", c.OutputDestination)
	}

	if c.KafkaEnabled && c.KafkaBrokerList == "" {
		return errors.New("kafka_broker_list must be provided when kafka is enabled")
	}

	if c.SolveTimeout < 0 {
		return errors.New("solve_timeout must not be negative")
	}
	if c.MaxNodes < 0 {
		return errors.New("max_nodes must not be negative")
	}
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}

	for _, name := range c.RequiredCategories {
		cat, err := ParseCategory(name)
		if err != nil {
			return err
		}
		if cat == CategoryOther {
			return errors.New("other cannot be a required category")
		}
	}
	return nil
}

// Categories returns the required categories, defaulting to RequiredCategories.
func (c *Config) Categories() []Category {
	if len(c.RequiredCategories) == 0 {
		return RequiredCategories
	}
	out := make([]Category, 0, len(c.RequiredCategories))
	for _, name := range c.RequiredCategories {
		cat, err := ParseCategory(name)
		if err != nil {
			continue
		}
		out = append(out, cat)
	}
	return out
}
