// Package repositories はデータストア操作を行うリポジトリを提供します。
//
// すべてのクエリは所有者 (またはChecklist ID) で絞り込んで実行し、
// 取得してから権限をチェックする形にはしません。
package repositories

import (
	"context"
	"errors"
	"time"

	"go-checklist/backend/internal/models"
)

var (
	ErrChecklistNotFound = errors.New("checklist not found")
	ErrItemNotFound      = errors.New("checklist item not found")
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrUserNotFound      = errors.New("user not found")
)

// ChecklistStore はChecklistとChecklistItemの永続化を抽象化します。
// 見つからない場合や所有者が一致しない場合はErrChecklistNotFound / ErrItemNotFoundを返します。
type ChecklistStore interface {
	ListChecklists(ctx context.Context, ownerUserID string) ([]*models.Checklist, error)
	FindChecklist(ctx context.Context, id, ownerUserID string) (*models.Checklist, error)
	CreateChecklist(ctx context.Context, c *models.Checklist) (*models.Checklist, error)
	DeleteChecklist(ctx context.Context, id, ownerUserID string) error
	// DeleteItemsByChecklist はChecklist削除後のカスケード削除に使います。
	DeleteItemsByChecklist(ctx context.Context, checklistID string) (int64, error)

	ListItems(ctx context.Context, checklistID string) ([]*models.ChecklistItem, error)
	FindItem(ctx context.Context, id, checklistID string) (*models.ChecklistItem, error)
	CreateItem(ctx context.Context, item *models.ChecklistItem) (*models.ChecklistItem, error)
	ToggleItemStatus(ctx context.Context, id, checklistID string) (*models.ChecklistItem, error)
	RenameItem(ctx context.Context, id, checklistID, itemName string) (*models.ChecklistItem, error)
	DeleteItem(ctx context.Context, id, checklistID string) error

	Ping(ctx context.Context) error
}

// UserStore は認証用のユーザー永続化を抽象化します。
type UserStore interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// now はストアが記録する時刻です。MySQLのDATETIME(3)に合わせてミリ秒に丸めます。
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
