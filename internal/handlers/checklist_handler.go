package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-checklist/backend/internal/apperrors"
	"go-checklist/backend/internal/models"
	"go-checklist/backend/internal/services"
	"go-checklist/backend/internal/validation"
)

// AuthMiddlewareが認証情報を格納するキー
const (
	ContextUserIDKey    = "user_id"
	ContextUserEmailKey = "user_email"
)

var errMissingBody = errors.New("validated body missing from context; route is not wrapped with validation.Body")

// ChecklistHandler はChecklist関連のハンドラーを管理します。
type ChecklistHandler struct {
	checklistService *services.ChecklistService
}

// NewChecklistHandler は新しいChecklistHandlerを作成します。
func NewChecklistHandler(checklistService *services.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{checklistService: checklistService}
}

// currentUserID は認証済みユーザーのIDを取り出します。
// 取り出せなかった場合はエラーを積んでfalseを返します。
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(ContextUserIDKey)
	if userID == "" {
		_ = c.Error(apperrors.Unauthorized("User ID not found in context"))
		return "", false
	}
	return userID, true
}

// validatedBody は検証済みボディを取り出します。ルートにBodyミドルウェアが無い場合は500です。
func validatedBody[T any](c *gin.Context) (*T, bool) {
	body, ok := validation.BodyFrom[T](c)
	if !ok {
		_ = c.Error(apperrors.Internal(errMissingBody))
		return nil, false
	}
	return body, true
}

// GetChecklistsHandler はユーザーのChecklist一覧を取得します。
func (h *ChecklistHandler) GetChecklistsHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	checklists, err := h.checklistService.ListChecklists(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, checklists)
}

// GetChecklistHandler は指定IDのChecklistを取得します。
func (h *ChecklistHandler) GetChecklistHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	checklist, err := h.checklistService.GetChecklist(c.Request.Context(), c.Param("checklistId"), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, checklist)
}

// CreateChecklistHandler は新しいChecklistを作成します。
func (h *ChecklistHandler) CreateChecklistHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	req, ok := validatedBody[models.CreateChecklistRequest](c)
	if !ok {
		return
	}
	checklist, err := h.checklistService.CreateChecklist(c.Request.Context(), req.Name, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, checklist)
}

// DeleteChecklistHandler はChecklistと配下のアイテムを削除します。
func (h *ChecklistHandler) DeleteChecklistHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.checklistService.DeleteChecklist(c.Request.Context(), c.Param("checklistId"), userID); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: services.MsgChecklistDeleted})
}

// GetItemsHandler はChecklistのアイテム一覧を取得します。
func (h *ChecklistHandler) GetItemsHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	items, err := h.checklistService.ListItems(c.Request.Context(), c.Param("checklistId"), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetItemHandler は指定IDのアイテムを取得します。
func (h *ChecklistHandler) GetItemHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	item, err := h.checklistService.GetItem(c.Request.Context(), c.Param("checklistId"), c.Param("checklistItemId"), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateItemHandler はChecklistにアイテムを追加します。
func (h *ChecklistHandler) CreateItemHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	req, ok := validatedBody[models.CreateItemRequest](c)
	if !ok {
		return
	}
	item, err := h.checklistService.CreateItem(c.Request.Context(), c.Param("checklistId"), req.ItemName, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// ToggleItemHandler はアイテムの完了状態を反転させます。ボディは使いません。
func (h *ChecklistHandler) ToggleItemHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	item, err := h.checklistService.ToggleItemStatus(c.Request.Context(), c.Param("checklistId"), c.Param("checklistItemId"), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// RenameItemHandler はアイテム名を変更します。
func (h *ChecklistHandler) RenameItemHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	req, ok := validatedBody[models.RenameItemRequest](c)
	if !ok {
		return
	}
	item, err := h.checklistService.RenameItem(c.Request.Context(), c.Param("checklistId"), c.Param("checklistItemId"), req.ItemName, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItemHandler はアイテムを削除します。
func (h *ChecklistHandler) DeleteItemHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.checklistService.DeleteItem(c.Request.Context(), c.Param("checklistId"), c.Param("checklistItemId"), userID); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: services.MsgItemDeleted})
}
