package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported values of database.driver.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// EnvDevelopment enables console logging, schema sync and error details in responses.
const EnvDevelopment = "development"

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Environment string         `mapstructure:"environment"`
	Server      ServerConfig   `mapstructure:"server"`
	CORS        CORSConfig     `mapstructure:"cors"`
	Database    DatabaseConfig `mapstructure:"database"`
	S3          S3Config       `mapstructure:"s3"`
	JWT         JWTConfig      `mapstructure:"jwt"`
}

// IsDevelopment reports whether the service runs in development mode.
func (c Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Address is the listen address derived from Port.
func (s ServerConfig) Address() string {
	return fmt.Sprintf(":%d", s.Port)
}

type CORSConfig struct {
	FrontendURL string `mapstructure:"frontend_url"`
}

type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"`
	Migrate  bool           `mapstructure:"migrate"` // Create missing tables/indexes at startup
	Postgres PostgresConfig `mapstructure:"postgres"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Pool     PoolConfig     `mapstructure:"pool"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN renders the lib/pq keyword/value connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Name, p.SSLMode)
}

type MongoConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// PoolConfig bounds the shared connection pool of either backend.
type PoolConfig struct {
	MaxConns       int           `mapstructure:"max_conns"`
	AcquireTimeout time.Duration `mapstructure:"acquire_timeout"` // Waiting longer yields 503
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"` // Empty disables completion media
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Enabled reports whether object storage is configured.
func (s S3Config) Enabled() bool {
	return s.BucketName != ""
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

var ErrMissingJWTSecret = errors.New("jwt.secret must be set")

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Nested keys map to env vars, e.g. database.pool.max_conns -> DATABASE_POOL_MAX_CONNS
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	if err = config.Validate(); err != nil {
		return
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", EnvDevelopment)
	v.SetDefault("server.port", 5001)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("cors.frontend_url", "http://localhost:3000")

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.migrate", false)
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.name", "fit_coach")
	v.SetDefault("database.postgres.sslmode", "disable")
	v.SetDefault("database.mongo.uri", "mongodb://localhost:27017/?replicaSet=rs0")
	v.SetDefault("database.mongo.name", "fit_coach")
	v.SetDefault("database.pool.max_conns", 5)
	v.SetDefault("database.pool.acquire_timeout", "30s")
	v.SetDefault("database.pool.idle_timeout", "10s")

	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "24h")
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if c.JWT.Secret == "" {
		return ErrMissingJWTSecret
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverMongo:
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	if c.Database.Pool.MaxConns <= 0 {
		return fmt.Errorf("database.pool.max_conns must be positive, got %d", c.Database.Pool.MaxConns)
	}
	return nil
}
