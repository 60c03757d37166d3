package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/openbourse/tradecore/pkg/db/queue"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
	} `yaml:"server"`

	Kafka struct {
		BrokerAddr string `yaml:"broker_addr"`
		Topic      string `yaml:"topic"`
	} `yaml:"kafka"`

	Otel struct {
		Endpoint         string `yaml:"endpoint"`
		CollectorEnabled bool   `yaml:"collector_enabled"`
	} `yaml:"otel"`
}

// Default configuration values
var (
	configFile = flag.String("config", "", "Path to config file (YAML)")
	logLevel   = flag.String("log_level", "info", "Log level: debug, info, warn, error")
	logFormat  = flag.String("log_format", "pretty", "Log format: json, pretty")
)

// LoadConfig loads the configuration from command line flags, optionally from
// a config file, with TRADECORE_* environment variables taking precedence
func LoadConfig() (*Config, error) {
	flag.Parse()

	config := &Config{}
	config.Server.LogLevel = *logLevel
	config.Server.LogFormat = *logFormat
	config.Kafka.BrokerAddr = "localhost:9092"
	config.Kafka.Topic = "execution-reports"
	config.Otel.Endpoint = "localhost:4317"

	if *configFile != "" {
		yamlFile, err := os.ReadFile(*configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(yamlFile, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		log.Printf("Loaded configuration from %s", *configFile)
	}

	applyEnvOverrides(config)

	// Push Kafka settings into the queue package variables
	queue.SetBrokerList(config.Kafka.BrokerAddr)
	queue.SetTopic(config.Kafka.Topic)

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyEnvOverrides lets environment variables win over flags and file, e.g.
// TRADECORE_KAFKA_BROKER_ADDR or TRADECORE_SERVER_LOG_LEVEL
func applyEnvOverrides(config *Config) {
	v := viper.New()
	v.SetEnvPrefix("TRADECORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.log_level", config.Server.LogLevel)
	v.SetDefault("server.log_format", config.Server.LogFormat)
	v.SetDefault("kafka.broker_addr", config.Kafka.BrokerAddr)
	v.SetDefault("kafka.topic", config.Kafka.Topic)
	v.SetDefault("otel.endpoint", config.Otel.Endpoint)
	v.SetDefault("otel.collector_enabled", config.Otel.CollectorEnabled)

	config.Server.LogLevel = v.GetString("server.log_level")
	config.Server.LogFormat = v.GetString("server.log_format")
	config.Kafka.BrokerAddr = v.GetString("kafka.broker_addr")
	config.Kafka.Topic = v.GetString("kafka.topic")
	config.Otel.Endpoint = v.GetString("otel.endpoint")
	config.Otel.CollectorEnabled = v.GetBool("otel.collector_enabled")
}

func validate(config *Config) error {
	switch config.Server.LogFormat {
	case "json", "pretty":
	default:
		return fmt.Errorf("unknown log format %q", config.Server.LogFormat)
	}
	if config.Kafka.BrokerAddr == "" {
		return fmt.Errorf("kafka broker address must not be empty")
	}
	if config.Kafka.Topic == "" {
		return fmt.Errorf("kafka topic must not be empty")
	}
	return nil
}
