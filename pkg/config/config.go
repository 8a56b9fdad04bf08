package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var envFiles = []string{
	"./cfg/.env",
}

var envVars = []string{
	"DB_HOST",
	"DB_PORT",
	"DB_USER",
	"DB_PASSWORD",
	"DB_NAME",
	"DB_MAX_OPEN_CONNS",
	"DB_MAX_IDLE_CONNS",
	"DB_CONN_MAX_LIFETIME_MINUTES",

	"REDIS_HOST",
	"REDIS_PORT",
	"REDIS_PASSWORD",
	"REDIS_DB",

	"JWT_SECRET_KEY",
	"ACCESS_TOKEN_EXPIRE_MINUTES",

	"APP_NAME",
	"APP_VERSION",
	"SERVICE_PORT",
	"ALLOWED_ORIGINS",

	"DEFAULT_PAGE_SIZE",
	"MAX_PAGE_SIZE",
	"CACHE_TTL_SECONDS",
}

type DBConfig struct {
	Host               string `mapstructure:"DB_HOST"`
	Port               string `mapstructure:"DB_PORT"`
	User               string `mapstructure:"DB_USER"`
	Password           string `mapstructure:"DB_PASSWORD"`
	DBName             string `mapstructure:"DB_NAME"`
	MaxOpenConns       int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns       int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetimeMin int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type AuthConfig struct {
	JWTSecret      string `mapstructure:"JWT_SECRET_KEY"`
	TokenTTLMinute int    `mapstructure:"ACCESS_TOKEN_EXPIRE_MINUTES"`
}

type ServiceConfig struct {
	Name           string   `mapstructure:"APP_NAME"`
	Version        string   `mapstructure:"APP_VERSION"`
	Port           string   `mapstructure:"SERVICE_PORT"`
	AllowedOrigins []string `mapstructure:"ALLOWED_ORIGINS"`
}

type PageConfig struct {
	DefaultSize int `mapstructure:"DEFAULT_PAGE_SIZE"`
	MaxSize     int `mapstructure:"MAX_PAGE_SIZE"`
}

type CacheConfig struct {
	TTLSeconds int `mapstructure:"CACHE_TTL_SECONDS"`
}

var (
	DB      DBConfig
	Redis   RedisConfig
	Auth    AuthConfig
	Service ServiceConfig
	Pages   PageConfig
	Cache   CacheConfig
)

var ConfigStructs = []interface{}{
	&DB,
	&Redis,
	&Auth,
	&Service,
	&Pages,
	&Cache,
}

func loadEnv() {
	slog.Debug("Loading .env files")
	// .env is optional, containers get plain environment variables
	err := godotenv.Load(envFiles...)
	if err != nil {
		slog.Warn(".env file not found, using environment variables", "err", err)
	}
	viper.AutomaticEnv()

	viper.SetDefault("APP_NAME", "vertical-slice-service")
	viper.SetDefault("APP_VERSION", "0.1.0")
	viper.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	viper.SetDefault("DEFAULT_PAGE_SIZE", 20)
	viper.SetDefault("MAX_PAGE_SIZE", 100)
	viper.SetDefault("CACHE_TTL_SECONDS", 300)
	viper.SetDefault("DB_MAX_OPEN_CONNS", 10)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	viper.SetDefault("REDIS_DB", 0)

	for _, v := range envVars {
		viper.BindEnv(v)
	}
}

func loadStructs() {
	slog.Debug("Loading config structs")
	for _, v := range ConfigStructs {
		err := viper.Unmarshal(v)
		if err != nil {
			slog.Error("Error unmarshaling config struct", "err", err)
			os.Exit(1)
		}
	}
}

func SetupConfigs() {
	loadEnv()
	loadStructs()
}

func GetDBURL(driver string) string {
	sslmode := os.Getenv("DB_SSLMODE")
	if sslmode == "" {
		sslmode = "require"
	}

	switch driver {
	case "postgresql":
		return fmt.Sprintf(
			"postgresql://%s:%s@%s:%s/%s?sslmode=%s",
			DB.User,
			DB.Password,
			DB.Host,
			DB.Port,
			DB.DBName,
			sslmode,
		)
	default:
		return ""
	}
}

func GetRedisURL() string {
	if Redis.Password != "" {
		return fmt.Sprintf("redis://:%s@%s:%s/%d", Redis.Password, Redis.Host, Redis.Port, Redis.DB)
	}
	return fmt.Sprintf("redis://%s:%s/%d", Redis.Host, Redis.Port, Redis.DB)
}
