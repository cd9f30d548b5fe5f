package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"hotel-pms/utils"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

type Config struct {
	Port    string
	GinMode string

	DBDriver   string
	MySQLDSN   string
	// SQLitePath is a file path or ":memory:".
	SQLitePath string
	DBSeed     bool

	JWTSecret   string
	CORSOrigins []string

	// RedisAddr empty disables the availability cache.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// RabbitMQURL empty disables event publishing.
	RabbitMQURL string

	QueryTimeout  time.Duration
	ReconcileCron string

	LogLevel  string
	LogFormat string
}

// LoadDotEnv reads .env when present. It reports whether a file was loaded.
func LoadDotEnv() bool {
	return godotenv.Load() == nil
}

// Load builds the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          utils.EnvOrDefault("PORT", "8080"),
		GinMode:       utils.EnvOrDefault("GIN_MODE", "debug"),
		DBDriver:      strings.ToLower(utils.EnvOrDefault("DB_DRIVER", DriverMySQL)),
		DBSeed:        utils.EnvBool("DB_SEED", false),
		JWTSecret:     utils.EnvOrDefault("JWT_SECRET", ""),
		CORSOrigins:   parseCorsOrigins(utils.EnvOrDefault("CORS_ORIGINS", "")),
		RedisAddr:     redisAddr(),
		RedisPassword: utils.EnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:       utils.EnvInt("REDIS_DB", 0),
		CacheTTL:      utils.EnvDuration("AVAILABILITY_CACHE_TTL", time.Minute),
		RabbitMQURL:   utils.EnvOrDefault("RABBITMQ_URL", ""),
		QueryTimeout:  utils.EnvDuration("QUERY_TIMEOUT", 10*time.Second),
		ReconcileCron: utils.EnvOrDefault("RECONCILE_CRON", "*/15 * * * *"),
		LogLevel:      utils.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:     utils.EnvOrDefault("LOG_FORMAT", "text"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	switch cfg.DBDriver {
	case DriverMemory:
	case DriverSQLite:
		cfg.SQLitePath = utils.EnvOrDefault("SQLITE_PATH", "hotel_pms.db")
	case DriverMySQL:
		dsn, err := resolveMySQLDSN()
		if err != nil {
			return nil, fmt.Errorf("mysql dsn: %w", err)
		}
		cfg.MySQLDSN = dsn
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

func parseCorsOrigins(raw string) []string {
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// REDIS_HOST and REDIS_PORT win over REDIS_ADDR.
func redisAddr() string {
	host := utils.EnvOrDefault("REDIS_HOST", "")
	port := utils.EnvOrDefault("REDIS_PORT", "")
	if host != "" {
		if port == "" {
			port = "6379"
		}
		return host + ":" + port
	}
	return utils.EnvOrDefault("REDIS_ADDR", "")
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", errors.New("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "UTC")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN() (string, error) {
	raw := utils.EnvOrDefault("MYSQL_URL", "")
	if raw == "" {
		raw = utils.EnvOrDefault("DATABASE_URL", "")
	}
	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := utils.EnvOrDefault("DB_USER", "root")
	pass := utils.EnvOrDefault("DB_PASS", "")
	host := utils.EnvOrDefault("DB_HOST", "127.0.0.1")
	port := utils.EnvOrDefault("DB_PORT", "3306")
	dbName := utils.EnvOrDefault("DB_NAME", "hotel_pms")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		user, pass, host, port, dbName,
	), nil
}
