// Package modelsはChecklistとChecklistItemを定義します。
package models

import (
	"time"
)

// Checklist はユーザーが所有する名前付きのリストです。
type Checklist struct {
	ID          string    `json:"id" firestore:"id"`
	Name        string    `json:"name" firestore:"name"`
	OwnerUserID string    `json:"ownerUserId" firestore:"ownerUserId"` // 所有者 (このIDでのみ参照可能)
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
}

// ChecklistItem はChecklistに属する1件のタスクです。
type ChecklistItem struct {
	ID          string    `json:"id" firestore:"id"`
	ItemName    string    `json:"itemName" firestore:"itemName"`
	Status      bool      `json:"status" firestore:"status"` // 完了状態 (作成時はfalse)
	ChecklistID string    `json:"checklistId" firestore:"checklistId"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// CreateChecklistRequest は POST /api/checklists のボディです。
type CreateChecklistRequest struct {
	Name string `json:"name" binding:"required,notblank,max=255" sanitize:"trim" msg:"Name is required" msg_max:"Name must be at most 255 characters"`
}

// CreateItemRequest は POST /api/checklists/:checklistId/item のボディです。
type CreateItemRequest struct {
	ItemName string `json:"itemName" binding:"required,notblank,max=255" sanitize:"trim" msg:"Item Name is required" msg_max:"Item Name must be at most 255 characters"`
}

// RenameItemRequest は PUT /api/checklists/:checklistId/item/rename/:checklistItemId のボディです。
type RenameItemRequest struct {
	ItemName string `json:"itemName" binding:"required,notblank,max=255" sanitize:"trim" msg:"New name is required" msg_max:"New name must be at most 255 characters"`
}

// MessageResponse は削除系エンドポイントのレスポンスです。
type MessageResponse struct {
	Message string `json:"message"`
}
