package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Local store drivers.
const (
	LocalDriverFile  = "file"
	LocalDriverRedis = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	LocalStore LocalStoreConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Bootstrap  BootstrapConfig
	Survey     SurveyConfig
	CORS       CORSConfig
	Log        LogConfig
}

// DatabaseConfig holds the remote backing credentials. Both URL and Key must be
// present for the remote backing to be selected.
type DatabaseConfig struct {
	URL          string
	Key          string
	MaxOpenConns int
	MaxIdleConns int
}

// Enabled reports whether remote connection parameters are present.
func (c DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(c.URL) != "" && strings.TrimSpace(c.Key) != ""
}

// LocalStoreConfig selects where the local mirror keeps its containers.
type LocalStoreConfig struct {
	Driver string
	Dir    string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// BootstrapConfig carries the fixed credential pair that always signs in as
// super admin, plus the password given to accounts created by administrators.
type BootstrapConfig struct {
	Email           string
	Password        string
	DefaultPassword string
}

// SurveyConfig toggles submission policies.
type SurveyConfig struct {
	AllowRepeat bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		URL:          v.GetString("DATABASE_URL"),
		Key:          v.GetString("DATABASE_KEY"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	driver := strings.ToLower(strings.TrimSpace(v.GetString("LOCAL_STORE_DRIVER")))
	if driver != LocalDriverRedis {
		driver = LocalDriverFile
	}
	cfg.LocalStore = LocalStoreConfig{
		Driver: driver,
		Dir:    v.GetString("LOCAL_STORE_DIR"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		Prefix:   v.GetString("REDIS_KEY_PREFIX"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.Bootstrap = BootstrapConfig{
		Email:           strings.TrimSpace(v.GetString("BOOTSTRAP_EMAIL")),
		Password:        v.GetString("BOOTSTRAP_PASSWORD"),
		DefaultPassword: v.GetString("DEFAULT_PASSWORD"),
	}

	cfg.Survey = SurveyConfig{AllowRepeat: v.GetBool("SURVEY_ALLOW_REPEAT")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DATABASE_KEY", "")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("LOCAL_STORE_DRIVER", LocalDriverFile)
	v.SetDefault("LOCAL_STORE_DIR", "./data")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "avaliacao:")

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("JWT_ISSUER", "teacher-eval-api")

	v.SetDefault("BOOTSTRAP_EMAIL", "admin@sistema.edu")
	v.SetDefault("BOOTSTRAP_PASSWORD", "admin123")
	v.SetDefault("DEFAULT_PASSWORD", "123456")

	v.SetDefault("SURVEY_ALLOW_REPEAT", true)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
