package main

import (
	"context"
	"database/sql"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"

	"go-checklist/backend/internal/config"
	"go-checklist/backend/internal/database"
	"go-checklist/backend/internal/repositories"
)

// stores はSTORE_DRIVERに応じて選ばれたリポジトリと、その後始末をまとめたものです。
type stores struct {
	checklists repositories.ChecklistStore
	users      repositories.UserStore
	closeFn    func() error
}

func (s *stores) Close() {
	if s.closeFn != nil {
		_ = s.closeFn()
	}
}

// openStores はストアに接続します。SQLの場合はテーブルも作成します。
func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverFirestore:
		client, err := repositories.NewFirestoreClient(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile)
		if err != nil {
			return nil, err
		}
		return firestoreStores(client, log), nil
	default:
		db, err := database.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, db, cfg.StoreDriver); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate %s: %w", cfg.StoreDriver, err)
		}
		return sqlStores(db, log), nil
	}
}

func sqlStores(db *sql.DB, log *zap.Logger) *stores {
	return &stores{
		checklists: repositories.NewSQLChecklistRepository(db, log),
		users:      repositories.NewSQLUserRepository(db, log),
		closeFn:    db.Close,
	}
}

func firestoreStores(client *firestore.Client, log *zap.Logger) *stores {
	return &stores{
		checklists: repositories.NewFirestoreChecklistRepository(client, log),
		users:      repositories.NewFirestoreUserRepository(client, log),
		closeFn:    client.Close,
	}
}
