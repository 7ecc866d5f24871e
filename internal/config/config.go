package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/sdk/trace"
)

// Application holds all the application-wide dependencies.
type Application struct {
	Config         Config
	Logger         zerolog.Logger
	DB             *pgxpool.Pool
	Redis          *redis.Client
	TracerProvider *trace.TracerProvider
}

// Config holds all the configuration variables for the API and the front-end.
type Config struct {
	Port                 int      `mapstructure:"PORT"`
	WebPort              int      `mapstructure:"WEB_PORT"`
	App_Env              string   `mapstructure:"APP_ENV"`
	App_Secret           string   `mapstructure:"APP_SECRET"`
	CORS_Allowed_Origins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	DatabaseURL          string   `mapstructure:"DATABASE_URL"`
	DbHost               string   `mapstructure:"DB_HOST"`
	DbPort               int      `mapstructure:"DB_PORT"`
	DbUser               string   `mapstructure:"DB_USER"`
	DbPassword           string   `mapstructure:"DB_PASSWORD"`
	DbName               string   `mapstructure:"DB_NAME"`
	DbSslMode            string   `mapstructure:"DB_SSL_MODE"`
	RedisHost            string   `mapstructure:"REDIS_HOST"`
	RedisPort            int      `mapstructure:"REDIS_PORT"`
	RedisPassword        string   `mapstructure:"REDIS_PASSWORD"`
	RateLimit            int      `mapstructure:"RATE_LIMIT"`
	LogLevel             string   `mapstructure:"LOG_LEVEL"`
	RequestTimeout       int      `mapstructure:"REQUEST_TIMEOUT_SECONDS"`
	AccessTokenMinutes   int      `mapstructure:"ACCESS_TOKEN_TTL_MINUTES"`
	RefreshTokenHours    int      `mapstructure:"REFRESH_TOKEN_TTL_HOURS"`
	TokenIssuer          string   `mapstructure:"TOKEN_ISSUER"`
	DefaultAdminUsername string   `mapstructure:"DEFAULT_ADMIN_USERNAME"`
	DefaultAdminEmail    string   `mapstructure:"DEFAULT_ADMIN_EMAIL"`
	DefaultAdminPassword string   `mapstructure:"DEFAULT_ADMIN_PASSWORD"`
	OtelEndpoint         string   `mapstructure:"OTEL_EXPORTER_ENDPOINT"`

	// Object storage for product images
	MinioEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket    string `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`
	ImageMaxBytes  int64  `mapstructure:"IMAGE_MAX_BYTES"`

	// Notification Configuration
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`

	// Front-end
	APIBaseURL           string `mapstructure:"API_BASE_URL"`
	SessionLifetimeHours int    `mapstructure:"SESSION_LIFETIME_HOURS"`
	CookieSecure         bool   `mapstructure:"COOKIE_SECURE"`
}

type ContextKey string

const (
	UserIDKey    = ContextKey("userID")
	RolesKey     = ContextKey("roles")
	RequestIDKey = ContextKey("request_id")
)

// Load reads configuration from secrets, environment variables, or defaults.
func Load() (config Config, err error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	v := viper.New()
	v.Set("APP_ENV", env)
	setDefaults(v, env)

	if env == "development" {
		// .env values never override the real environment
		_ = godotenv.Load(".env")
		_ = godotenv.Load("../.env")
	} else {
		loadSecret(v, "APP_SECRET", "app_secret")
		loadSecret(v, "DATABASE_URL", "database_url")
		loadSecret(v, "DB_USER", "db_user")
		loadSecret(v, "DB_PASSWORD", "db_password")
		loadSecret(v, "DB_NAME", "db_name")
		loadSecret(v, "REDIS_PASSWORD", "redis_password")
		loadSecret(v, "MINIO_SECRET_KEY", "minio_secret_key")
		loadSecret(v, "SMTP_PASSWORD", "smtp_password")
	}

	v.AutomaticEnv()
	bindEnvs(v)

	if err = v.Unmarshal(&config); err != nil {
		return
	}

	if config.DatabaseURL == "" {
		config.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			config.DbUser, config.DbPassword, config.DbHost, config.DbPort, config.DbName, config.DbSslMode,
		)
	}

	return
}

func setDefaults(v *viper.Viper, env string) {
	if env == "production" {
		v.SetDefault("RATE_LIMIT", 1000)
		v.SetDefault("LOG_LEVEL", "info")
		v.SetDefault("REQUEST_TIMEOUT_SECONDS", 30)
		v.SetDefault("COOKIE_SECURE", true)
	} else {
		v.SetDefault("RATE_LIMIT", 100)
		v.SetDefault("LOG_LEVEL", "debug")
		v.SetDefault("REQUEST_TIMEOUT_SECONDS", 60)
		v.SetDefault("COOKIE_SECURE", false)
		v.SetDefault("DEFAULT_ADMIN_USERNAME", "admin")
		v.SetDefault("DEFAULT_ADMIN_EMAIL", "admin@example.com")
		v.SetDefault("DEFAULT_ADMIN_PASSWORD", "Admin123!")
	}

	v.SetDefault("PORT", 8080)
	v.SetDefault("WEB_PORT", 8081)
	v.SetDefault("ACCESS_TOKEN_TTL_MINUTES", 15)
	v.SetDefault("REFRESH_TOKEN_TTL_HOURS", 24*7)
	v.SetDefault("TOKEN_ISSUER", "webshop-api")
	v.SetDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:8081"})
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_BUCKET", "webshop-images")
	v.SetDefault("IMAGE_MAX_BYTES", 5<<20)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("API_BASE_URL", "http://localhost:8080")
	v.SetDefault("SESSION_LIFETIME_HOURS", 24)
	v.SetDefault("OTEL_EXPORTER_ENDPOINT", "tempo:4318")
}

// loadSecret reads a file from /run/secrets and sets it in Viper
func loadSecret(v *viper.Viper, key, name string) {
	candidates := []string{name, strings.ToUpper(name), strings.ToLower(name)}
	for _, filename := range candidates {
		path := fmt.Sprintf("/run/secrets/%s", filename)
		content, err := os.ReadFile(path)
		if err == nil && len(content) > 0 {
			v.Set(key, strings.TrimSpace(string(content)))
			return
		}
	}
}

// bindEnvs makes keys without a default visible to Unmarshal; AutomaticEnv alone
// only resolves keys viper already knows about.
func bindEnvs(v *viper.Viper) {
	for _, key := range []string{
		"APP_SECRET", "DATABASE_URL", "DB_USER", "DB_PASSWORD", "DB_NAME", "REDIS_PASSWORD",
		"MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_USE_SSL",
		"SMTP_HOST", "SMTP_USER", "SMTP_PASSWORD", "SMTP_FROM",
	} {
		_ = v.BindEnv(key)
	}
	if user := os.Getenv("ALERT_SMTP_USER"); user != "" {
		v.Set("SMTP_USER", user)
	}
}

// Validate performs comprehensive configuration validation
func (c *Config) Validate() error {
	var errors []string

	if c.App_Secret == "" {
		errors = append(errors, "APP_SECRET is required")
	} else if len(c.App_Secret) < 32 {
		errors = append(errors, "APP_SECRET must be at least 32 characters long")
	}

	if c.DbUser == "" && c.DatabaseURL == "" {
		errors = append(errors, "DB_USER or DATABASE_URL is required")
	}
	if c.DbName == "" && c.DatabaseURL == "" {
		errors = append(errors, "DB_NAME or DATABASE_URL is required")
	}
	if c.AccessTokenMinutes <= 0 {
		errors = append(errors, "ACCESS_TOKEN_TTL_MINUTES must be positive")
	}
	if c.RefreshTokenHours <= 0 {
		errors = append(errors, "REFRESH_TOKEN_TTL_HOURS must be positive")
	}
	if c.ImageMaxBytes <= 0 {
		errors = append(errors, "IMAGE_MAX_BYTES must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// ValidateWeb checks the subset of settings the front-end needs.
func (c *Config) ValidateWeb() error {
	var errors []string
	if c.APIBaseURL == "" {
		errors = append(errors, "API_BASE_URL is required")
	}
	if c.SessionLifetimeHours <= 0 {
		errors = append(errors, "SESSION_LIFETIME_HOURS must be positive")
	}
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}
	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App_Env == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App_Env == "production"
}

func (c *Config) GetAccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenMinutes) * time.Minute
}

func (c *Config) GetRefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenHours) * time.Hour
}

func (c *Config) GetSessionLifetime() time.Duration {
	return time.Duration(c.SessionLifetimeHours) * time.Hour
}

// GetRequestTimeout returns the request timeout duration
func (c *Config) GetRequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// SMTPEnabled reports whether order mails can be sent.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// MinioEnabled reports whether image storage is configured.
func (c *Config) MinioEnabled() bool {
	return c.MinioEndpoint != "" && c.MinioAccessKey != "" && c.MinioSecretKey != ""
}
