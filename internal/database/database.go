// Package database はSQLデータベース (MySQL / SQLite) への接続とスキーマ作成を行います。
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"go-checklist/backend/internal/config"
)

// SQLiteDSN はmodernc.org/sqlite用の接続文字列を構築します。
// 時刻はパース可能な形式で書き込み、ロック競合時は待機させます。
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_time_format=sqlite"
}

// Open はcfg.StoreDriverに応じたデータベース接続を開き、疎通を確認します。
func Open(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	switch cfg.StoreDriver {
	case config.DriverMySQL:
		return open(ctx, "mysql", cfg.MySQLDSN(), 25)
	case config.DriverSQLite:
		return open(ctx, "sqlite", SQLiteDSN(cfg.SQLitePath), 1)
	default:
		return nil, fmt.Errorf("driver %q is not an SQL driver", cfg.StoreDriver)
	}
}

// OpenSQLite はテストやローカル開発用にSQLiteファイルを開きます。
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	return open(ctx, "sqlite", SQLiteDSN(path), 1)
}

// SQLiteは書き込みが単一接続に直列化されるため、maxOpen=1で使います。
func open(ctx context.Context, driver, dsn string, maxOpen int) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at DATETIME(3) NOT NULL,
		updated_at DATETIME(3) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS checklists (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		owner_user_id VARCHAR(36) NOT NULL,
		created_at DATETIME(3) NOT NULL,
		INDEX idx_checklists_owner (owner_user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS checklist_items (
		id VARCHAR(36) PRIMARY KEY,
		item_name VARCHAR(255) NOT NULL,
		status BOOLEAN NOT NULL DEFAULT FALSE,
		checklist_id VARCHAR(36) NOT NULL,
		created_at DATETIME(3) NOT NULL,
		updated_at DATETIME(3) NOT NULL,
		INDEX idx_checklist_items_checklist (checklist_id)
	)`,
}

// SQLiteはインラインINDEXを持てないので別文で作成する
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS checklists (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		owner_user_id VARCHAR(36) NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_checklists_owner ON checklists (owner_user_id)`,
	`CREATE TABLE IF NOT EXISTS checklist_items (
		id VARCHAR(36) PRIMARY KEY,
		item_name VARCHAR(255) NOT NULL,
		status BOOLEAN NOT NULL DEFAULT FALSE,
		checklist_id VARCHAR(36) NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_checklist_items_checklist ON checklist_items (checklist_id)`,
}

// Migrate はテーブルが存在しなければ作成します。
// checklist_itemsに外部キーは張らず、カスケード削除はアプリケーション側で行います。
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	var schema []string
	switch driver {
	case config.DriverMySQL:
		schema = mysqlSchema
	case config.DriverSQLite:
		schema = sqliteSchema
	default:
		return fmt.Errorf("no schema for driver %q", driver)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
