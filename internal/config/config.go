package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	DB     DBConfig     `mapstructure:"db"`
	Notify NotifyConfig `mapstructure:"notify"`
	Cron   CronConfig   `mapstructure:"cron"`
	Stream StreamConfig `mapstructure:"stream"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr  string `mapstructure:"http_addr"`
	StaticDir string `mapstructure:"static_dir"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	Path         string `mapstructure:"path"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type NotifyConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type CronConfig struct {
	Enabled bool `mapstructure:"enabled"`

	SummaryEnabled bool   `mapstructure:"summary_enabled"`
	SummarySpec    string `mapstructure:"summary_spec"`

	SignalLogRetention time.Duration `mapstructure:"signal_log_retention"`
	SignalLogCleanup   string        `mapstructure:"signal_log_cleanup"`
}

type StreamConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Buffer  int  `mapstructure:"buffer"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8000")
	v.SetDefault("server.static_dir", "static")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.path", "data/tradebridge.db")
	v.SetDefault("db.max_open_conns", 1)
	v.SetDefault("notify.timeout", "10s")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.summary_enabled", false)
	v.SetDefault("cron.summary_spec", "0 0 18 * * *")
	v.SetDefault("cron.signal_log_retention", "720h")
	v.SetDefault("cron.signal_log_cleanup", "@every 1h")
	v.SetDefault("stream.enabled", true)
	v.SetDefault("stream.buffer", 16)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
