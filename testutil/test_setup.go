package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-checklist/backend/internal/config"
	"go-checklist/backend/internal/database"
	"go-checklist/backend/internal/models"
	"go-checklist/backend/internal/repositories"
	"go-checklist/backend/internal/routes"
	"go-checklist/backend/internal/services"
)

// テスト用のシークレットとシードユーザー
const (
	TestJWTSecret = "test-secret"

	NormalUserEmail    = "normal_user@example.com"
	NormalUserPassword = "password123"
	OtherUserEmail     = "other_user@example.com"
	OtherUserPassword  = "password456"
)

// SetupTestDB はテストごとに使い捨てのSQLiteデータベースを作成し、テーブル作成とテストユーザーの投入を行います。
// データベースはテスト終了時に閉じられます。
func SetupTestDB(t *testing.T) (*sql.DB, *gin.Engine, *repositories.SQLChecklistRepository, *repositories.SQLUserRepository) {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenSQLite(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "Failed to open test database")
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(ctx, db, config.DriverSQLite), "Failed to create tables")

	logger := zap.NewNop()
	checklistRepo := repositories.NewSQLChecklistRepository(db, logger)
	userRepo := repositories.NewSQLUserRepository(db, logger)

	// テストユーザーの挿入
	CreateTestUser(t, userRepo, "normal_user", NormalUserEmail, NormalUserPassword)
	CreateTestUser(t, userRepo, "other_user", OtherUserEmail, OtherUserPassword)

	router := SetupTestRouter(t, checklistRepo, userRepo)
	return db, router, checklistRepo, userRepo
}

// SetupTestRouter はテスト用のGinルーターをセットアップします。
func SetupTestRouter(t *testing.T, checklists repositories.ChecklistStore, users repositories.UserStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtService, err := services.NewJWTService(TestJWTSecret, time.Hour)
	require.NoError(t, err)

	return routes.SetupRouter(routes.Dependencies{
		Checklists:       checklists,
		Users:            users,
		JWT:              jwtService,
		Logger:           zap.NewNop(),
		CORSAllowOrigins: []string{"http://localhost:3000"},
	})
}

// CreateTestUser はリポジトリに直接ユーザーを作成します。
func CreateTestUser(t *testing.T, userRepo repositories.UserStore, name, email, password string) *models.User {
	t.Helper()
	hashedPassword, err := repositories.HashPassword(password)
	require.NoError(t, err)

	createdUser, err := userRepo.Create(context.Background(), &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
	})
	require.NoError(t, err)
	require.NotEmpty(t, createdUser.ID)
	return createdUser
}

// DoJSON はbodyをJSONにしてリクエストを送り、レスポンスを返します。tokenが空ならAuthorizationヘッダーを付けません。
func DoJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// CreateTestChecklist はAPI経由でChecklistを作成します。
func CreateTestChecklist(t *testing.T, router *gin.Engine, token, name string) *models.Checklist {
	t.Helper()
	resp := DoJSON(t, router, http.MethodPost, "/api/checklists", token, map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, resp.Code, "Checklist作成に失敗しました: %s", resp.Body.String())

	var created models.Checklist
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	return &created
}

// CreateTestItem はAPI経由でChecklistにアイテムを追加します。
func CreateTestItem(t *testing.T, router *gin.Engine, token, checklistID, itemName string) *models.ChecklistItem {
	t.Helper()
	resp := DoJSON(t, router, http.MethodPost, "/api/checklists/"+checklistID+"/item", token, map[string]string{"itemName": itemName})
	require.Equal(t, http.StatusCreated, resp.Code, "アイテム作成に失敗しました: %s", resp.Body.String())

	var created models.ChecklistItem
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	return &created
}

func LoginAndGetToken(t *testing.T, router *gin.Engine, email, password string) (string, error) {
	t.Helper()
	resp := DoJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if resp.Code != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d: %s", resp.Code, resp.Body.String())
	}

	var loginRes models.LoginResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &loginRes); err != nil {
		return "", fmt.Errorf("failed to unmarshal login response: %w", err)
	}
	if loginRes.Token == "" {
		return "", errors.New("token not found in login response")
	}
	return loginRes.Token, nil
}
