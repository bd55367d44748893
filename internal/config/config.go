package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ProcessConfig holds operational settings read once at startup: where the
// day's CSV market-data files live, how to log, and how to reach the broker.
// It is entirely separate from the business constants in constants.go —
// ProcessConfig may vary per deployment; those constants never do.
type ProcessConfig struct {
	DataDir    string         `mapstructure:"data_dir"`
	Logging    LoggingConfig  `mapstructure:"logging"`
	Broker     BrokerConfig   `mapstructure:"broker"`
	JournalDB  string         `mapstructure:"journal_db"`
}

// LoggingConfig configures internal/logging.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// BrokerConfig carries broker adapter settings and credentials. The core never
// inspects these. cmd/optarb reads only Mode, to choose the mock or paper
// adapter; neither adapter reads Host, Port, APIKey or APISecret.
type BrokerConfig struct {
	Mode       string `mapstructure:"mode"` // "mock" or "paper"
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	APIKey     string `mapstructure:"api_key"`
	APISecret  string `mapstructure:"api_secret"`
}

// DefaultConfigDir returns the default directory for config.toml.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/optionarb"
	}
	return filepath.Join(home, ".config", "optionarb")
}

func defaultProcessConfig() ProcessConfig {
	home, _ := os.UserHomeDir()
	return ProcessConfig{
		DataDir: "./data",
		Logging: LoggingConfig{
			Level:      "info",
			Console:    true,
			File:       true,
			FilePath:   filepath.Join(home, ".config", "optionarb", "logs", "optionarb.log"),
			MaxSizeMB:  100,
			MaxBackups: 7,
			MaxAgeDays: 30,
		},
		Broker: BrokerConfig{
			Mode: "mock",
		},
		JournalDB: filepath.Join(home, ".config", "optionarb", "optionarb.db"),
	}
}

// Load loads ProcessConfig from configDir/config.toml, writing a template if
// the file is absent, then applies environment overrides.
// If configDir is empty, uses DefaultConfigDir().
func Load(configDir string) (*ProcessConfig, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := defaultProcessConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := writeTemplate(configDir); err != nil {
				return nil, fmt.Errorf("writing template config: %w", err)
			}
		} else {
			return nil, fmt.Errorf("reading config.toml: %w", err)
		}
	} else if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config.toml: %w", err)
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *ProcessConfig) {
	if v := os.Getenv("OPTIONARB_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("OPTIONARB_BROKER_API_KEY"); v != "" {
		cfg.Broker.APIKey = v
	}
	if v := os.Getenv("OPTIONARB_BROKER_API_SECRET"); v != "" {
		cfg.Broker.APISecret = v
	}
	if v := os.Getenv("OPTIONARB_BROKER_MODE"); v != "" {
		cfg.Broker.Mode = v
	}
}

func writeTemplate(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil // already exists
	}
	template := `# optionarb process configuration
data_dir = "./data"
journal_db = "optionarb.db"

[logging]
level = "info"
console = true
file = true
file_path = "logs/optionarb.log"
max_size_mb = 100
max_backups = 7
max_age_days = 30

[broker]
mode = "mock"
host = "127.0.0.1"
port = 0
api_key = ""
api_secret = ""
`
	return os.WriteFile(path, []byte(template), 0644)
}
