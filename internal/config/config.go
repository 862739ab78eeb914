// Package config は環境変数 (と任意の.envファイル) から設定を読み込みます。
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ストアの種類
const (
	DriverMySQL     = "mysql"
	DriverSQLite    = "sqlite"
	DriverFirestore = "firestore"
)

// Config はアプリケーション全体の設定です。
type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	StoreDriver string

	DBUser string
	DBPass string
	DBHost string
	DBPort string
	DBName string

	SQLitePath string

	FirestoreProjectID       string
	FirestoreCredentialsFile string

	JWTSecret string
	JWTTTL    time.Duration

	CORSAllowOrigins []string
	ShutdownTimeout  time.Duration
}

// Load はenvFileを読み込んだ後、環境変数からConfigを構築します。
// envFileが存在しない場合は無視します。既に設定されている環境変数は上書きしません。
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		Port:                     getenv("PORT", "8080"),
		GinMode:                  getenv("GIN_MODE", "release"),
		LogLevel:                 getenv("LOG_LEVEL", "info"),
		StoreDriver:              strings.ToLower(getenv("STORE_DRIVER", DriverMySQL)),
		DBUser:                   os.Getenv("DB_USER"),
		DBPass:                   os.Getenv("DB_PASS"),
		DBHost:                   getenv("DB_HOST", "localhost"),
		DBPort:                   getenv("DB_PORT", "3306"),
		DBName:                   getenv("DB_NAME", "checklists"),
		SQLitePath:               getenv("SQLITE_PATH", "checklists.db"),
		FirestoreProjectID:       os.Getenv("FIRESTORE_PROJECT_ID"),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		JWTSecret:                os.Getenv("JWT_SECRET"),
		CORSAllowOrigins:         splitList(getenv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
	}

	var err error
	if cfg.JWTTTL, err = getDuration("JWT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate は必須項目と組み合わせをチェックします。
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable not set")
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown GIN_MODE %q", c.GinMode)
	}
	switch c.StoreDriver {
	case DriverMySQL, DriverSQLite:
	case DriverFirestore:
		if c.FirestoreProjectID == "" {
			return errors.New("FIRESTORE_PROJECT_ID is required when STORE_DRIVER=firestore")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

// MySQLDSN はMySQL接続文字列 (DSN) を構築します。
// clientFoundRows=true により、値が変わらないUPDATEでも一致した行数が返ります。
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC&clientFoundRows=true",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
