package config

import (
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Placeholder secret shipped for local development
const devAccessSecret = "your-access-secret-change-in-production"

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Assets   AssetsConfig
	Renderer RendererConfig
	Report   ReportConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"postgres"`
	Password    string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name        string `envconfig:"DB_NAME" default:"meeting_minutes"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns    int    `envconfig:"DB_MIN_CONNS" default:"5"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	AccessSecret string `envconfig:"JWT_ACCESS_SECRET" default:"your-access-secret-change-in-production"`
}

// StorageConfig selects and configures the asset store
type StorageConfig struct {
	Type            string `envconfig:"ASSET_STORE" default:"fs"` // "fs" or "minio"
	Root            string `envconfig:"ASSET_ROOT" default:"static"`
	Endpoint        string `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string `envconfig:"STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string `envconfig:"STORAGE_SECRET_KEY" default:"minioadmin"`
	BucketName      string `envconfig:"STORAGE_BUCKET" default:"meeting-minutes"`
	UseSSL          bool   `envconfig:"STORAGE_USE_SSL" default:"false"`
}

// AssetsConfig holds logo and font selection defaults
type AssetsConfig struct {
	CompanyMapFile string `envconfig:"ASSET_COMPANY_MAP"`
	DefaultLogo    string `envconfig:"ASSET_DEFAULT_LOGO" default:"default_logo.png"`
	FontDefaultFA  string `envconfig:"FONT_DEFAULT_FA" default:"Vazirmatn"`
	FontDefaultEN  string `envconfig:"FONT_DEFAULT_EN" default:"Inter"`
	LogoMaxWidth   int    `envconfig:"LOGO_MAX_WIDTH" default:"600"`
}

// RendererConfig holds headless browser settings
type RendererConfig struct {
	BrowserPath    string        `envconfig:"RENDERER_BROWSER_PATH"`
	AllowDownload  bool          `envconfig:"RENDERER_ALLOW_DOWNLOAD" default:"true"`
	Timeout        time.Duration `envconfig:"RENDERER_TIMEOUT" default:"60s"`
	LaunchAttempts int           `envconfig:"RENDERER_LAUNCH_ATTEMPTS" default:"3"`
}

// ReportConfig holds report generation settings
type ReportConfig struct {
	CacheTTL      time.Duration `envconfig:"REPORT_CACHE_TTL" default:"24h"`
	Attribution   string        `envconfig:"REPORT_ATTRIBUTION" default:"Powered by Rasha Press"`
	Locales       []string      `envconfig:"LOCALES" default:"en,fa"`
	DefaultLocale string        `envconfig:"DEFAULT_LOCALE" default:"en"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{}
	sections := []any{
		&config.Server,
		&config.Database,
		&config.Redis,
		&config.JWT,
		&config.Storage,
		&config.Assets,
		&config.Renderer,
		&config.Report,
	}
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.IsProduction() && (c.JWT.AccessSecret == "" || c.JWT.AccessSecret == devAccessSecret) {
		return fmt.Errorf("JWT_ACCESS_SECRET must be set in production")
	}
	if c.Storage.Type != "fs" && c.Storage.Type != "minio" {
		return fmt.Errorf("ASSET_STORE must be fs or minio, got %q", c.Storage.Type)
	}
	if len(c.Report.Locales) == 0 {
		return fmt.Errorf("LOCALES must list at least one locale")
	}
	if !slices.Contains(c.Report.Locales, c.Report.DefaultLocale) {
		return fmt.Errorf("DEFAULT_LOCALE %q is not one of LOCALES", c.Report.DefaultLocale)
	}
	if c.Renderer.LaunchAttempts < 1 {
		return fmt.Errorf("RENDERER_LAUNCH_ATTEMPTS must be at least 1")
	}
	return nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// GetServerAddr returns the listen address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
