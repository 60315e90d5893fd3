package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/yashturmbekar/pmcrms/internal/application/assignment"
	"github.com/yashturmbekar/pmcrms/internal/application/workflow"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	SMTP        SMTPConfig        `mapstructure:"smtp"`
	Certificate CertificateConfig `mapstructure:"certificate"`
	Workflow    WorkflowConfig    `mapstructure:"workflow"`
	Logger      LoggerConfig      `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// SMTPConfig holds notification relay configuration. Delivery is disabled
// when the host is empty.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// CertificateConfig holds PDF generation configuration
type CertificateConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// WorkflowConfig holds progression engine tunables. A zero retry interval
// disables the assignment retry worker.
type WorkflowConfig struct {
	AssignmentStrategy string        `mapstructure:"assignment_strategy"`
	ResubmitPolicy     string        `mapstructure:"resubmit_policy"`
	RetryInterval      time.Duration `mapstructure:"retry_interval"`
	RetryBatchSize     int           `mapstructure:"retry_batch_size"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	viper.SetDefault("database.path", "data/pmcrms.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	// SMTP defaults
	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("smtp.from", "noreply@pmc.gov.in")

	// Certificate defaults
	viper.SetDefault("certificate.output_dir", "generated_certificates")

	// Workflow defaults
	viper.SetDefault("workflow.assignment_strategy", string(assignment.StrategyRandom))
	viper.SetDefault("workflow.resubmit_policy", string(workflow.ResubmitRestart))
	viper.SetDefault("workflow.retry_interval", 30*time.Second)
	viper.SetDefault("workflow.retry_batch_size", 10)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	// Sensitive credentials from environment
	viper.BindEnv("smtp.host", "SMTP_HOST")
	viper.BindEnv("smtp.port", "SMTP_PORT")
	viper.BindEnv("smtp.username", "SMTP_USERNAME")
	viper.BindEnv("smtp.password", "SMTP_PASSWORD")
	viper.BindEnv("smtp.from", "SMTP_FROM")
	viper.BindEnv("database.path", "DATABASE_PATH")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	strategy := assignment.Strategy(c.Workflow.AssignmentStrategy)
	if !strategy.IsValid() {
		return fmt.Errorf("workflow.assignment_strategy %q is not supported", c.Workflow.AssignmentStrategy)
	}

	switch workflow.ResubmitPolicy(c.Workflow.ResubmitPolicy) {
	case workflow.ResubmitRestart, workflow.ResubmitResume:
	default:
		return fmt.Errorf("workflow.resubmit_policy %q is not supported", c.Workflow.ResubmitPolicy)
	}

	if c.SMTP.Host != "" && c.SMTP.From == "" {
		return fmt.Errorf("smtp.from is required when smtp.host is set")
	}

	return nil
}

// Strategy returns the configured assignment strategy
func (c *Config) Strategy() assignment.Strategy {
	return assignment.Strategy(c.Workflow.AssignmentStrategy)
}

// Resubmit returns the configured resubmission policy
func (c *Config) Resubmit() workflow.ResubmitPolicy {
	return workflow.ResubmitPolicy(c.Workflow.ResubmitPolicy)
}
