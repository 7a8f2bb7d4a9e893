package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// SchedulerConfig tunes the review scheduler. Zero values fall back to
// the algorithm defaults, so the whole section is optional.
type SchedulerConfig struct {
	MinEaseFactor float64 `mapstructure:"min_ease_factor" validate:"omitempty,gt=1"`
	MaxEaseFactor float64 `mapstructure:"max_ease_factor" validate:"omitempty,gt=1"`
	JitterLow     float64 `mapstructure:"jitter_low" validate:"omitempty,gt=0,lte=1"`
	JitterHigh    float64 `mapstructure:"jitter_high" validate:"omitempty,gte=1"`
}
