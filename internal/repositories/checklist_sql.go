package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-checklist/backend/internal/models"
)

// SQLChecklistRepository はMySQL / SQLite上のChecklistStore実装です。
// どちらのドライバーも ? プレースホルダーを使うのでクエリは共通です。
type SQLChecklistRepository struct {
	DB     *sql.DB
	logger *zap.Logger
}

// NewSQLChecklistRepository は新しいSQLChecklistRepositoryインスタンスを作成します。
func NewSQLChecklistRepository(db *sql.DB, logger *zap.Logger) *SQLChecklistRepository {
	return &SQLChecklistRepository{DB: db, logger: logger}
}

var _ ChecklistStore = (*SQLChecklistRepository)(nil)

const (
	checklistColumns = "id, name, owner_user_id, created_at"
	itemColumns      = "id, item_name, status, checklist_id, created_at, updated_at"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChecklist(row rowScanner) (*models.Checklist, error) {
	var c models.Checklist
	if err := row.Scan(&c.ID, &c.Name, &c.OwnerUserID, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

func scanItem(row rowScanner) (*models.ChecklistItem, error) {
	var i models.ChecklistItem
	if err := row.Scan(&i.ID, &i.ItemName, &i.Status, &i.ChecklistID, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, err
	}
	i.CreatedAt = i.CreatedAt.UTC()
	i.UpdatedAt = i.UpdatedAt.UTC()
	return &i, nil
}

// ListChecklists は所有者のChecklistを作成順に取得します。
func (r *SQLChecklistRepository) ListChecklists(ctx context.Context, ownerUserID string) ([]*models.Checklist, error) {
	query := "SELECT " + checklistColumns + " FROM checklists WHERE owner_user_id = ? ORDER BY created_at, id"

	rows, err := r.DB.QueryContext(ctx, query, ownerUserID)
	if err != nil {
		r.logger.Error("Failed to query checklists", zap.Error(err))
		return nil, fmt.Errorf("could not query checklists: %w", err)
	}
	defer rows.Close()

	checklists := []*models.Checklist{}
	for rows.Next() {
		c, err := scanChecklist(rows)
		if err != nil {
			r.logger.Error("Failed to scan checklist", zap.Error(err))
			return nil, fmt.Errorf("could not scan checklist: %w", err)
		}
		checklists = append(checklists, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checklists: %w", err)
	}
	return checklists, nil
}

// FindChecklist はIDと所有者が一致するChecklistを取得します。
func (r *SQLChecklistRepository) FindChecklist(ctx context.Context, id, ownerUserID string) (*models.Checklist, error) {
	query := "SELECT " + checklistColumns + " FROM checklists WHERE id = ? AND owner_user_id = ?"

	c, err := scanChecklist(r.DB.QueryRowContext(ctx, query, id, ownerUserID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChecklistNotFound
		}
		r.logger.Error("Failed to query checklist by ID", zap.String("checklist_id", id), zap.Error(err))
		return nil, fmt.Errorf("could not query checklist: %w", err)
	}
	return c, nil
}

// CreateChecklist は新しいChecklistを挿入します。IDと作成日時はここで採番します。
func (r *SQLChecklistRepository) CreateChecklist(ctx context.Context, c *models.Checklist) (*models.Checklist, error) {
	c.ID = uuid.NewString()
	c.CreatedAt = now()

	query := "INSERT INTO checklists (" + checklistColumns + ") VALUES (?, ?, ?, ?)"
	if _, err := r.DB.ExecContext(ctx, query, c.ID, c.Name, c.OwnerUserID, c.CreatedAt); err != nil {
		r.logger.Error("Failed to insert checklist", zap.Error(err))
		return nil, fmt.Errorf("could not insert checklist: %w", err)
	}
	return c, nil
}

// DeleteChecklist はIDと所有者が一致するChecklistを削除します。
// 配下のアイテムは削除しないので、呼び出し側がDeleteItemsByChecklistを続けて呼びます。
func (r *SQLChecklistRepository) DeleteChecklist(ctx context.Context, id, ownerUserID string) error {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM checklists WHERE id = ? AND owner_user_id = ?", id, ownerUserID)
	if err != nil {
		r.logger.Error("Failed to delete checklist", zap.String("checklist_id", id), zap.Error(err))
		return fmt.Errorf("could not delete checklist: %w", err)
	}
	return expectAffected(result, ErrChecklistNotFound)
}

// DeleteItemsByChecklist はChecklistに属するアイテムをすべて削除し、削除件数を返します。
func (r *SQLChecklistRepository) DeleteItemsByChecklist(ctx context.Context, checklistID string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM checklist_items WHERE checklist_id = ?", checklistID)
	if err != nil {
		r.logger.Error("Failed to delete checklist items", zap.String("checklist_id", checklistID), zap.Error(err))
		return 0, fmt.Errorf("could not delete checklist items: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("could not get rows affected: %w", err)
	}
	return n, nil
}

// ListItems はChecklistに属するアイテムを作成順に取得します。
func (r *SQLChecklistRepository) ListItems(ctx context.Context, checklistID string) ([]*models.ChecklistItem, error) {
	query := "SELECT " + itemColumns + " FROM checklist_items WHERE checklist_id = ? ORDER BY created_at, id"

	rows, err := r.DB.QueryContext(ctx, query, checklistID)
	if err != nil {
		r.logger.Error("Failed to query checklist items", zap.Error(err))
		return nil, fmt.Errorf("could not query checklist items: %w", err)
	}
	defer rows.Close()

	items := []*models.ChecklistItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			r.logger.Error("Failed to scan checklist item", zap.Error(err))
			return nil, fmt.Errorf("could not scan checklist item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checklist items: %w", err)
	}
	return items, nil
}

// FindItem はChecklistに属する指定IDのアイテムを取得します。
func (r *SQLChecklistRepository) FindItem(ctx context.Context, id, checklistID string) (*models.ChecklistItem, error) {
	query := "SELECT " + itemColumns + " FROM checklist_items WHERE id = ? AND checklist_id = ?"

	item, err := scanItem(r.DB.QueryRowContext(ctx, query, id, checklistID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		r.logger.Error("Failed to query checklist item by ID", zap.String("item_id", id), zap.Error(err))
		return nil, fmt.Errorf("could not query checklist item: %w", err)
	}
	return item, nil
}

// CreateItem は新しいアイテムを未完了状態で挿入します。
func (r *SQLChecklistRepository) CreateItem(ctx context.Context, item *models.ChecklistItem) (*models.ChecklistItem, error) {
	item.ID = uuid.NewString()
	item.Status = false
	item.CreatedAt = now()
	item.UpdatedAt = item.CreatedAt

	query := "INSERT INTO checklist_items (" + itemColumns + ") VALUES (?, ?, ?, ?, ?, ?)"
	_, err := r.DB.ExecContext(ctx, query, item.ID, item.ItemName, item.Status, item.ChecklistID, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert checklist item", zap.Error(err))
		return nil, fmt.Errorf("could not insert checklist item: %w", err)
	}
	return item, nil
}

// ToggleItemStatus は完了状態を1回のUPDATEで反転させ、更新後のアイテムを返します。
func (r *SQLChecklistRepository) ToggleItemStatus(ctx context.Context, id, checklistID string) (*models.ChecklistItem, error) {
	query := "UPDATE checklist_items SET status = NOT status, updated_at = ? WHERE id = ? AND checklist_id = ?"

	result, err := r.DB.ExecContext(ctx, query, now(), id, checklistID)
	if err != nil {
		r.logger.Error("Failed to toggle checklist item", zap.String("item_id", id), zap.Error(err))
		return nil, fmt.Errorf("could not toggle checklist item: %w", err)
	}
	if err := expectAffected(result, ErrItemNotFound); err != nil {
		return nil, err
	}
	return r.FindItem(ctx, id, checklistID)
}

// RenameItem はアイテム名を置き換え、更新後のアイテムを返します。
func (r *SQLChecklistRepository) RenameItem(ctx context.Context, id, checklistID, itemName string) (*models.ChecklistItem, error) {
	query := "UPDATE checklist_items SET item_name = ?, updated_at = ? WHERE id = ? AND checklist_id = ?"

	result, err := r.DB.ExecContext(ctx, query, itemName, now(), id, checklistID)
	if err != nil {
		r.logger.Error("Failed to rename checklist item", zap.String("item_id", id), zap.Error(err))
		return nil, fmt.Errorf("could not rename checklist item: %w", err)
	}
	if err := expectAffected(result, ErrItemNotFound); err != nil {
		return nil, err
	}
	return r.FindItem(ctx, id, checklistID)
}

// DeleteItem はChecklistに属する指定IDのアイテムを削除します。
func (r *SQLChecklistRepository) DeleteItem(ctx context.Context, id, checklistID string) error {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM checklist_items WHERE id = ? AND checklist_id = ?", id, checklistID)
	if err != nil {
		r.logger.Error("Failed to delete checklist item", zap.String("item_id", id), zap.Error(err))
		return fmt.Errorf("could not delete checklist item: %w", err)
	}
	return expectAffected(result, ErrItemNotFound)
}

// Ping はデータベース接続の健全性を確認します。
func (r *SQLChecklistRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

// expectAffected は1行も変更されなかった場合にnotFoundを返します。
func expectAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
