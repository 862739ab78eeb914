package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt" // パスワードのハッシュ化用
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"go-checklist/backend/internal/models"
)

// SQLUserRepository はMySQL / SQLite上のUserStore実装です。
type SQLUserRepository struct {
	DB     *sql.DB
	logger *zap.Logger
}

// NewSQLUserRepository は新しいSQLUserRepositoryインスタンスを作成します。
func NewSQLUserRepository(db *sql.DB, logger *zap.Logger) *SQLUserRepository {
	return &SQLUserRepository{DB: db, logger: logger}
}

var _ UserStore = (*SQLUserRepository)(nil)

// HashPassword は与えられたパスワードをbcryptでハッシュ化します。
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedPassword), nil
}

// VerifyPassword はハッシュ化されたパスワードと平文のパスワードを比較します。
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// NormalizeEmail はメールアドレスを比較用に正規化します。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isDuplicateKey はMySQL (1062) / SQLite (UNIQUE制約) の重複エラーを判定します。
func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		// 拡張リザルトコードが無効な接続では SQLITE_CONSTRAINT だけが返る
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}

// Create は新しいユーザーをデータベースに挿入します。
func (r *SQLUserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	u.ID = uuid.NewString()
	u.Email = NormalizeEmail(u.Email)
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt

	query := "INSERT INTO users (id, name, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)"
	_, err := r.DB.ExecContext(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicateEmail
		}
		r.logger.Error("Failed to insert user", zap.Error(err))
		return nil, fmt.Errorf("could not insert user: %w", err)
	}
	return u, nil
}

// FindByEmail はメールアドレスでユーザーを検索します。
func (r *SQLUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := "SELECT id, name, email, password_hash, created_at, updated_at FROM users WHERE email = ?"
	var u models.User
	err := r.DB.QueryRowContext(ctx, query, NormalizeEmail(email)).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		r.logger.Error("Failed to query user by email", zap.Error(err))
		return nil, fmt.Errorf("could not query user: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}
