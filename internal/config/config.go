// Package config loads application configuration and installs the
// global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. It is built once
// at startup and passed down; nothing mutates it afterwards.
type Config struct {
	Browser BrowserConfig `yaml:"browser" mapstructure:"browser"`
	Scrape  ScrapeConfig  `yaml:"scrape" mapstructure:"scrape"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// BrowserConfig configures the Chrome surface.
type BrowserConfig struct {
	Headless       bool   `yaml:"headless" mapstructure:"headless"`
	UserAgent      string `yaml:"user_agent" mapstructure:"user_agent"`
	NavTimeoutSecs int    `yaml:"nav_timeout_secs" mapstructure:"nav_timeout_secs"`
}

// ScrapeConfig configures the pagination and scroll drivers.
type ScrapeConfig struct {
	MaxPages            int     `yaml:"max_pages" mapstructure:"max_pages"`
	TargetCount         int     `yaml:"target_count" mapstructure:"target_count"`
	StallThreshold      int     `yaml:"stall_threshold" mapstructure:"stall_threshold"`
	MaxScrollIters      int     `yaml:"max_scroll_iters" mapstructure:"max_scroll_iters"`
	SettleDelayMillis   int     `yaml:"settle_delay_ms" mapstructure:"settle_delay_ms"`
	BackoffBaseSecs     float64 `yaml:"backoff_base_secs" mapstructure:"backoff_base_secs"`
	BackoffStepSecs     float64 `yaml:"backoff_step_secs" mapstructure:"backoff_step_secs"`
	FirstBatchWaitSecs  int     `yaml:"first_batch_wait_secs" mapstructure:"first_batch_wait_secs"`
}

// OutputConfig configures session report persistence.
type OutputConfig struct {
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`
}

// StoreConfig configures the optional SQLite mirror.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// SettleDelay is the pause inserted after content-mutating actions
// before reading page state.
func (s ScrapeConfig) SettleDelay() time.Duration {
	return time.Duration(s.SettleDelayMillis) * time.Millisecond
}

// Backoff computes the delay before navigating to the next page. It
// grows with the page index to reduce the chance of rate limiting.
func (s ScrapeConfig) Backoff(pageIndex int) time.Duration {
	secs := s.BackoffBaseSecs + float64(pageIndex)*s.BackoffStepSecs
	return time.Duration(secs * float64(time.Second))
}

// FirstBatchWait bounds the wait for the first scroll-panel item.
func (s ScrapeConfig) FirstBatchWait() time.Duration {
	return time.Duration(s.FirstBatchWaitSecs) * time.Second
}

// NavTimeout bounds a single page navigation.
func (b BrowserConfig) NavTimeout() time.Duration {
	return time.Duration(b.NavTimeoutSecs) * time.Second
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment: LEADSCOUT_SCRAPE_MAX_PAGES etc.
	v.SetEnvPrefix("LEADSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.nav_timeout_secs", 45)
	v.SetDefault("scrape.max_pages", 5)
	v.SetDefault("scrape.target_count", 0)
	v.SetDefault("scrape.stall_threshold", 3)
	v.SetDefault("scrape.max_scroll_iters", 40)
	v.SetDefault("scrape.settle_delay_ms", 3000)
	v.SetDefault("scrape.backoff_base_secs", 3.0)
	v.SetDefault("scrape.backoff_step_secs", 0.5)
	v.SetDefault("scrape.first_batch_wait_secs", 20)
	v.SetDefault("output.data_dir", "data")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
