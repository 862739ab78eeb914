package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-checklist/backend/internal/models"
	"go-checklist/backend/internal/services"
)

// UserHandler はユーザー関連のハンドラーを管理します。
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler は新しいUserHandlerを作成します。
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterHandler はユーザー登録を処理します。
func (h *UserHandler) RegisterHandler(c *gin.Context) {
	req, ok := validatedBody[models.UserRegisterRequest](c)
	if !ok {
		return
	}
	user, err := h.userService.RegisterUser(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// LoginHandler はユーザーログインを処理します。
func (h *UserHandler) LoginHandler(c *gin.Context) {
	req, ok := validatedBody[models.UserLoginRequest](c)
	if !ok {
		return
	}
	res, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// MeHandler はトークンから取り出したユーザー情報を返します。
func (h *UserHandler) MeHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.JWTClaims{UserID: userID, Email: c.GetString(ContextUserEmailKey)})
}
