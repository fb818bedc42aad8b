// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
	Output string `mapstructure:"output"`
}

// --- Pipeline Configuration Sections ---

// PipelineConfig holds the recruitment pipeline tuning knobs.
type PipelineConfig struct {
	Eligibility EligibilityConfig `mapstructure:"eligibility"`
	Assessment  AssessmentConfig  `mapstructure:"assessment"`
	Interview   InterviewConfig   `mapstructure:"interview"`
	Directory   DirectoryConfig   `mapstructure:"directory"`
}

// EligibilityConfig controls how the screening score is computed.
// Weights are relative; criteria listed in required must all pass
// for a candidate to be eligible regardless of score.
type EligibilityConfig struct {
	Weights  map[string]float64 `mapstructure:"weights"`
	Required []string           `mapstructure:"required"`
}

type AssessmentConfig struct {
	DefaultPassScore float64 `mapstructure:"default_pass_score"`
	SubmitLockTTL    int     `mapstructure:"submit_lock_ttl"` // milliseconds
}

type InterviewConfig struct {
	RescheduleWindowHours int `mapstructure:"reschedule_window_hours"`
}

// DirectoryConfig tunes the candidate/request lookup cache.
type DirectoryConfig struct {
	CacheTTL int `mapstructure:"cache_ttl"` // milliseconds
}
