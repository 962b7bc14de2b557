package structures

import (
	"net/http"
	"time"
)

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type StoreConfig struct {
	Path            string `yaml:"path" validate:"required"`
	CacheEnabled    bool   `yaml:"cacheEnabled"`
	CacheSizeMB     int    `yaml:"cacheSizeMB"`
	CompressMinSize int    `yaml:"compressMinSize"`
}

type BotConfig struct {
	Name        string `yaml:"name" validate:"required"`
	Token       string `yaml:"token"`
	OutboundURL string `yaml:"outboundUrl"`
}

type EmailConfig struct {
	Enabled bool   `yaml:"enabled"`
	Domain  string `yaml:"domain"`
	APIKey  string `yaml:"apiKey"`
	From    string `yaml:"from"`
	BaseURL string `yaml:"baseUrl"`
}

type SchedulerConfig struct {
	Interval       time.Duration `yaml:"interval" validate:"required|min:1"`
	FirstRunMinute int           `yaml:"firstRunMinute" validate:"uint|max:59"`
	MaxConcurrent  int           `yaml:"maxConcurrent"`
	OpTimeout      time.Duration `yaml:"opTimeout"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	DebugChat string

	WebServer Server          `yaml:"webServer"`
	Store     StoreConfig     `yaml:"store"`
	Bot       BotConfig       `yaml:"bot"`
	Email     EmailConfig     `yaml:"email"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logger    LoggerConfig    `yaml:"logger"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type Route struct {
	Url     string
	Handler http.Handler
}

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
	DebugChat  string
}
