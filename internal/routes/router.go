// Package routesはroutingを行います。
package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-checklist/backend/internal/apperrors"
	"go-checklist/backend/internal/handlers"
	"go-checklist/backend/internal/models"
	"go-checklist/backend/internal/repositories"
	"go-checklist/backend/internal/services"
	"go-checklist/backend/internal/validation"
)

// Dependencies はルーターが組み立てに使う部品です。
type Dependencies struct {
	Checklists repositories.ChecklistStore
	Users      repositories.UserStore
	JWT        *services.JWTService
	Logger     *zap.Logger

	CORSAllowOrigins []string
}

// SetupRouter はGinルーターをセットアップし、すべてのエンドポイントを登録します。
func SetupRouter(deps Dependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validation.Register()

	r := gin.New()
	r.Use(Recovery(logger), RequestLogger(logger))

	// CORS対策
	config := cors.DefaultConfig()
	config.AllowOrigins = deps.CORSAllowOrigins
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	config.AllowCredentials = true
	config.MaxAge = 12 * time.Hour
	r.Use(cors.New(config))

	r.Use(ErrorHandler(logger))
	r.NoRoute(func(c *gin.Context) {
		_ = c.Error(apperrors.NotFound("Route not found"))
	})

	// サービス
	checklistService := services.NewChecklistService(deps.Checklists, logger)
	userService := services.NewUserService(deps.Users, deps.JWT)

	// ハンドラー
	checklistHandler := handlers.NewChecklistHandler(checklistService)
	userHandler := handlers.NewUserHandler(userService)
	auth := AuthMiddleware(deps.JWT)

	// ルーティング
	api := r.Group("/api")
	api.GET("/health", handlers.HealthHandler(checklistService, logger))

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", validation.Body[models.UserRegisterRequest](), userHandler.RegisterHandler)
		authRoutes.POST("/login", validation.Body[models.UserLoginRequest](), userHandler.LoginHandler)
		authRoutes.GET("/me", auth, userHandler.MeHandler)
	}

	checklists := api.Group("/checklists")
	checklists.Use(auth)
	{
		checklists.GET("", checklistHandler.GetChecklistsHandler)
		checklists.POST("", validation.Body[models.CreateChecklistRequest](), checklistHandler.CreateChecklistHandler)
		checklists.GET("/:checklistId", checklistHandler.GetChecklistHandler)
		checklists.DELETE("/:checklistId", checklistHandler.DeleteChecklistHandler)

		checklists.GET("/:checklistId/item", checklistHandler.GetItemsHandler)
		checklists.POST("/:checklistId/item", validation.Body[models.CreateItemRequest](), checklistHandler.CreateItemHandler)
		checklists.GET("/:checklistId/item/:checklistItemId", checklistHandler.GetItemHandler)
		checklists.PUT("/:checklistId/item/:checklistItemId", checklistHandler.ToggleItemHandler)
		checklists.PUT("/:checklistId/item/rename/:checklistItemId", validation.Body[models.RenameItemRequest](), checklistHandler.RenameItemHandler)
		checklists.DELETE("/:checklistId/item/:checklistItemId", checklistHandler.DeleteItemHandler)
	}

	return r
}
