package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	SRS      SRSConfig      `yaml:"srs"`
	Session  SessionConfig  `yaml:"session"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	RateLimitPerMin int           `yaml:"rate_limit_per_min" env:"SERVER_RATE_LIMIT_PER_MIN" env-default:"300"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	MigrateOnStart  bool          `yaml:"migrate_on_start"   env:"DATABASE_MIGRATE_ON_START"   env-default:"true"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// SRSConfig holds spaced-repetition scheduling parameters.
// The defaults are the documented contract surface; retuning is allowed as
// long as monotonic-growth-on-success and the ease floor are preserved.
type SRSConfig struct {
	DefaultEaseFactor  float64       `yaml:"default_ease_factor"  env:"SRS_DEFAULT_EASE"          env-default:"2.5"`
	MinEaseFactor      float64       `yaml:"min_ease_factor"      env:"SRS_MIN_EASE"              env-default:"1.3"`
	MaxIntervalDays    int           `yaml:"max_interval_days"    env:"SRS_MAX_INTERVAL"          env-default:"365"`
	EasyInterval       int           `yaml:"easy_interval"        env:"SRS_EASY_INTERVAL"         env-default:"4"`
	FirstIntervalEasy  int           `yaml:"first_interval_easy"  env:"SRS_FIRST_INTERVAL_EASY"   env-default:"2"`
	FirstIntervalMed   int           `yaml:"first_interval_med"   env:"SRS_FIRST_INTERVAL_MED"    env-default:"1"`
	FirstIntervalHard  int           `yaml:"first_interval_hard"  env:"SRS_FIRST_INTERVAL_HARD"   env-default:"1"`
	RelearnDelay       time.Duration `yaml:"relearn_delay"        env:"SRS_RELEARN_DELAY"         env-default:"10m"`
	AgainEasePenalty   float64       `yaml:"again_ease_penalty"   env:"SRS_AGAIN_EASE_PENALTY"    env-default:"0.2"`
	HardEasePenalty    float64       `yaml:"hard_ease_penalty"    env:"SRS_HARD_EASE_PENALTY"     env-default:"0.15"`
	EasyEaseBonus      float64       `yaml:"easy_ease_bonus"      env:"SRS_EASY_EASE_BONUS"       env-default:"0.15"`
	HardIntervalFactor float64       `yaml:"hard_interval_factor" env:"SRS_HARD_INTERVAL_FACTOR"  env-default:"1.2"`
	EasyIntervalFactor float64       `yaml:"easy_interval_factor" env:"SRS_EASY_INTERVAL_FACTOR"  env-default:"1.3"`
}

// SessionConfig holds session engine settings.
type SessionConfig struct {
	DefaultQueueSize  int           `yaml:"default_queue_size"  env:"SESSION_DEFAULT_QUEUE_SIZE"  env-default:"20"`
	MaxQueueSize      int           `yaml:"max_queue_size"      env:"SESSION_MAX_QUEUE_SIZE"      env-default:"100"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"        env:"SESSION_IDLE_TIMEOUT"        env-default:"2h"`
	SweepInterval     time.Duration `yaml:"sweep_interval"      env:"SESSION_SWEEP_INTERVAL"      env-default:"10m"`
	AccuracyWindow    int           `yaml:"accuracy_window"     env:"SESSION_ACCURACY_WINDOW"     env-default:"100"`
	RecentSessions    int           `yaml:"recent_sessions"     env:"SESSION_RECENT_SESSIONS"     env-default:"5"`
	StreakLookbackDays int          `yaml:"streak_lookback_days" env:"SESSION_STREAK_LOOKBACK_DAYS" env-default:"365"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}
