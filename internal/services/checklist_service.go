package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"go-checklist/backend/internal/apperrors"
	"go-checklist/backend/internal/models"
	"go-checklist/backend/internal/repositories"
)

// クライアントに返すメッセージ
const (
	MsgChecklistNotFound = "Checklist not found"
	MsgItemNotFound      = "Item not found"
	MsgChecklistDeleted  = "Checklist deleted"
	MsgItemDeleted       = "Item deleted successfully"
)

// ChecklistService はChecklistとアイテムのビジネスロジックを扱います。
// アイテム操作の前には必ず親Checklistの所有者を確認します。
type ChecklistService struct {
	store  repositories.ChecklistStore
	logger *zap.Logger
}

// NewChecklistService は新しいChecklistServiceを作成します。
func NewChecklistService(store repositories.ChecklistStore, logger *zap.Logger) *ChecklistService {
	return &ChecklistService{store: store, logger: logger}
}

// translate はリポジトリのエラーをAppErrorに変換します。
func translate(err error) error {
	switch {
	case errors.Is(err, repositories.ErrChecklistNotFound):
		return apperrors.NotFound(MsgChecklistNotFound)
	case errors.Is(err, repositories.ErrItemNotFound):
		return apperrors.NotFound(MsgItemNotFound)
	}
	return apperrors.Internal(err)
}

// ListChecklists はユーザーのChecklistを取得します。
func (s *ChecklistService) ListChecklists(ctx context.Context, userID string) ([]*models.Checklist, error) {
	checklists, err := s.store.ListChecklists(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}
	return checklists, nil
}

// GetChecklist はユーザーが所有するChecklistを取得します。
func (s *ChecklistService) GetChecklist(ctx context.Context, id, userID string) (*models.Checklist, error) {
	checklist, err := s.store.FindChecklist(ctx, id, userID)
	if err != nil {
		return nil, translate(err)
	}
	return checklist, nil
}

// CreateChecklist は新しいChecklistを作成します。
func (s *ChecklistService) CreateChecklist(ctx context.Context, name, userID string) (*models.Checklist, error) {
	checklist, err := s.store.CreateChecklist(ctx, &models.Checklist{Name: name, OwnerUserID: userID})
	if err != nil {
		return nil, translate(err)
	}
	return checklist, nil
}

// DeleteChecklist はChecklistを削除し、続けて配下のアイテムを削除します。
func (s *ChecklistService) DeleteChecklist(ctx context.Context, id, userID string) error {
	if err := s.store.DeleteChecklist(ctx, id, userID); err != nil {
		return translate(err)
	}
	deleted, err := s.store.DeleteItemsByChecklist(ctx, id)
	if err != nil {
		// Checklistは既に消えているので、残ったアイテムはどのユーザーからも参照できない
		s.logger.Error("Failed to cascade checklist items", zap.String("checklist_id", id), zap.Error(err))
		return translate(err)
	}
	s.logger.Debug("Checklist deleted", zap.String("checklist_id", id), zap.Int64("items", deleted))
	return nil
}

// authorize は親Checklistがユーザーの所有であることを確認します。
func (s *ChecklistService) authorize(ctx context.Context, checklistID, userID string) error {
	if _, err := s.store.FindChecklist(ctx, checklistID, userID); err != nil {
		return translate(err)
	}
	return nil
}

// ListItems はChecklistのアイテムを取得します。
func (s *ChecklistService) ListItems(ctx context.Context, checklistID, userID string) ([]*models.ChecklistItem, error) {
	if err := s.authorize(ctx, checklistID, userID); err != nil {
		return nil, err
	}
	items, err := s.store.ListItems(ctx, checklistID)
	if err != nil {
		return nil, translate(err)
	}
	return items, nil
}

// GetItem は指定IDのアイテムを取得します。
func (s *ChecklistService) GetItem(ctx context.Context, checklistID, itemID, userID string) (*models.ChecklistItem, error) {
	if err := s.authorize(ctx, checklistID, userID); err != nil {
		return nil, err
	}
	item, err := s.store.FindItem(ctx, itemID, checklistID)
	if err != nil {
		return nil, translate(err)
	}
	return item, nil
}

// CreateItem はChecklistに新しいアイテムを追加します。
func (s *ChecklistService) CreateItem(ctx context.Context, checklistID, itemName, userID string) (*models.ChecklistItem, error) {
	if err := s.authorize(ctx, checklistID, userID); err != nil {
		return nil, err
	}
	item, err := s.store.CreateItem(ctx, &models.ChecklistItem{ItemName: itemName, ChecklistID: checklistID})
	if err != nil {
		return nil, translate(err)
	}
	return item, nil
}

// ToggleItemStatus はアイテムの完了状態を反転させます。
func (s *ChecklistService) ToggleItemStatus(ctx context.Context, checklistID, itemID, userID string) (*models.ChecklistItem, error) {
	if err := s.authorize(ctx, checklistID, userID); err != nil {
		return nil, err
	}
	item, err := s.store.ToggleItemStatus(ctx, itemID, checklistID)
	if err != nil {
		return nil, translate(err)
	}
	return item, nil
}

// RenameItem はアイテム名を変更します。
func (s *ChecklistService) RenameItem(ctx context.Context, checklistID, itemID, itemName, userID string) (*models.ChecklistItem, error) {
	if err := s.authorize(ctx, checklistID, userID); err != nil {
		return nil, err
	}
	item, err := s.store.RenameItem(ctx, itemID, checklistID, itemName)
	if err != nil {
		return nil, translate(err)
	}
	return item, nil
}

// DeleteItem はアイテムを削除します。
func (s *ChecklistService) DeleteItem(ctx context.Context, checklistID, itemID, userID string) error {
	if err := s.authorize(ctx, checklistID, userID); err != nil {
		return err
	}
	if err := s.store.DeleteItem(ctx, itemID, checklistID); err != nil {
		return translate(err)
	}
	return nil
}

// Ping はストアの疎通を確認します。
func (s *ChecklistService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
