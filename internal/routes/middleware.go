package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go-checklist/backend/internal/apperrors"
	"go-checklist/backend/internal/handlers"
	"go-checklist/backend/internal/models"
)

// TokenVerifier はbearerトークンを検証してユーザー情報を返します。
type TokenVerifier interface {
	ValidateToken(tokenString string) (*models.JWTClaims, error)
}

// AuthMiddleware はJWTトークンを検証し、ユーザー情報をコンテキストに設定するミドルウェアです。
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			_ = c.Error(apperrors.Unauthorized("Authorization header required"))
			c.Abort()
			return
		}
		// 認証スキーム名は大文字小文字を区別しない
		scheme, tokenString, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			_ = c.Error(apperrors.Unauthorized("Invalid token format"))
			c.Abort()
			return
		}

		claims, err := verifier.ValidateToken(strings.TrimSpace(tokenString))
		if err != nil {
			_ = c.Error(apperrors.New(http.StatusUnauthorized, "Invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(handlers.ContextUserIDKey, claims.UserID)
		c.Set(handlers.ContextUserEmailKey, claims.Email)
		c.Next()
	}
}

// ErrorHandler はチェーン中でc.Errorに積まれた最後のエラーをJSONレスポンスに変換します。
// AppError以外は500として扱い、詳細はログにだけ残します。
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		appErr := apperrors.From(c.Errors.Last().Err)
		if appErr.Status >= http.StatusInternalServerError {
			logger.Error("Request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.Error(appErr),
			)
		}
		if c.Writer.Written() {
			return
		}
		c.JSON(appErr.Status, appErr)
	}
}

// Recovery はpanicを500レスポンスに変換します。
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logger.Error("Recovered from panic",
			zap.Any("panic", recovered),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, apperrors.Internal(nil))
	})
}

// RequestLogger はリクエストごとにメソッド、パス、ステータス、処理時間をログに出します。
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		status := c.Writer.Status()
		level := zapcore.InfoLevel
		switch {
		case status >= http.StatusInternalServerError:
			level = zapcore.ErrorLevel
		case status >= http.StatusBadRequest:
			level = zapcore.WarnLevel
		}
		if ce := logger.Check(level, "HTTP request"); ce != nil {
			ce.Write(
				zap.String("method", c.Request.Method),
				zap.String("path", path),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				zap.String("client_ip", c.ClientIP()),
			)
		}
	}
}
