package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Exporter  ExporterConfig
	Database  DatabaseConfig
	Telemetry TelemetryConfig
}

type ExporterConfig struct {
	OutputDir     string `mapstructure:"output_dir"`
	CSV           bool   `mapstructure:"csv"`
	Columnar      bool   `mapstructure:"columnar"`
	BatchCapacity int    `mapstructure:"batch_capacity"`
	MetricsAddr   string `mapstructure:"metrics_addr"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type TelemetryConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	URL        string `mapstructure:"url"`
	RunID      string `mapstructure:"run_id"`
	InstanceID string `mapstructure:"instance_id"`
	State      string `mapstructure:"state"`
	Population int    `mapstructure:"population"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("exporter.output_dir", "output")
	viper.SetDefault("exporter.csv", true)
	viper.SetDefault("exporter.columnar", true)
	viper.SetDefault("exporter.batch_capacity", 10)
	viper.SetDefault("database.sslmode", "disable")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
