package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Mail     MailConfig     `mapstructure:"mail"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
	// CORSAllowedOrigins is a comma separated list; "*" allows any origin.
	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
	// TokenLifetimeMinutes of zero issues tokens without an expiry claim.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"gte=0"`
	BcryptCost           int `mapstructure:"bcrypt_cost"            validate:"gte=4,lte=31"`
}

// MailConfig contains settings for transactional email delivery.
type MailConfig struct {
	// SendGridAPIKey is optional; without it outgoing mail is only logged.
	SendGridAPIKey     string `mapstructure:"sendgrid_api_key"`
	FromAddress        string `mapstructure:"from_address"         validate:"required,email"`
	FromName           string `mapstructure:"from_name"`
	WorkerCount        int    `mapstructure:"worker_count"         validate:"gt=0"`
	QueueSize          int    `mapstructure:"queue_size"           validate:"gt=0"`
	SendTimeoutSeconds int    `mapstructure:"send_timeout_seconds" validate:"gt=0"`
}
