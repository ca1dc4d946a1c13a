// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Recorder RecorderConfig `mapstructure:"recorder" yaml:"recorder"`
	Browser  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// RecorderConfig controls what the recorder persists and where. All fields
// are fixed for the lifetime of a Recorder instance.
type RecorderConfig struct {
	// BaseDir is the root directory for all artifacts of a run.
	BaseDir string `mapstructure:"base_dir" yaml:"base_dir"`
	// SavePlans toggles persistence of per-step plans and the end-of-run
	// plan ledger dump.
	SavePlans bool `mapstructure:"save_plans" yaml:"save_plans"`
	// FullPage selects full-page screenshot capture over viewport-only.
	FullPage bool `mapstructure:"full_page" yaml:"full_page"`
}

// BrowserConfig holds settings for the bundled headless browser session.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	Args              []string      `mapstructure:"args" yaml:"args"`
}

// Defaults returns the built-in configuration used when no file or
// environment overrides are present.
func Defaults() Config {
	return Config{
		Logger: LoggerConfig{
			Level:       "info",
			Format:      "console",
			ServiceName: "agentlens",
		},
		Recorder: RecorderConfig{
			BaseDir:   "screenshots",
			SavePlans: true,
			FullPage:  true,
		},
		Browser: BrowserConfig{
			Headless:          true,
			NavigationTimeout: 60 * time.Second,
		},
	}
}

// Load reads configuration from the given file (or ./agentlens.yaml when
// empty), layered over defaults and AGENTLENS_* environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("agentlens")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("AGENTLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Defaults()
	v.SetDefault("logger.level", def.Logger.Level)
	v.SetDefault("logger.format", def.Logger.Format)
	v.SetDefault("logger.service_name", def.Logger.ServiceName)
	v.SetDefault("recorder.base_dir", def.Recorder.BaseDir)
	v.SetDefault("recorder.save_plans", def.Recorder.SavePlans)
	v.SetDefault("recorder.full_page", def.Recorder.FullPage)
	v.SetDefault("browser.headless", def.Browser.Headless)
	v.SetDefault("browser.navigation_timeout", def.Browser.NavigationTimeout)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and env vars apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
