package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".seorec"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for seorec settings.
const envPrefix = "SEOREC"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	if err := viperCfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := viperCfg.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Database: DatabaseConfig{Path: DefaultDatabasePath, BusyTimeout: DefaultBusyTimeout},
		Log:      LogConfig{Level: DefaultLogLevel},
		Output:   OutputConfig{Format: DefaultOutputFormat},
		Writer:   WriterConfig{SchemaGuard: DefaultSchemaGuard},
	}
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("database.path", DefaultDatabasePath)
	viperCfg.SetDefault("database.busy_timeout", DefaultBusyTimeout)

	viperCfg.SetDefault("log.level", DefaultLogLevel)

	viperCfg.SetDefault("output.format", DefaultOutputFormat)

	viperCfg.SetDefault("writer.schema_guard", DefaultSchemaGuard)
}
