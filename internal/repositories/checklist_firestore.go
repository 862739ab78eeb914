package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go-checklist/backend/internal/models"
)

// Firestoreのコレクション名
const (
	checklistsCollection = "checklists"
	itemsCollection      = "checklist_items"
	usersCollection      = "users"
)

// NewFirestoreClient はFirestoreクライアントを作成します。
// credentialsFileが空ならApplication Default Credentials (またはFIRESTORE_EMULATOR_HOST) を使います。
func NewFirestoreClient(ctx context.Context, projectID, credentialsFile string) (*firestore.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firestore client: %w", err)
	}
	return client, nil
}

// FirestoreChecklistRepository はFirestore上のChecklistStore実装です。
// ドキュメントIDはエンティティのIDと同じです。
type FirestoreChecklistRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreChecklistRepository は新しいFirestoreChecklistRepositoryインスタンスを作成します。
func NewFirestoreChecklistRepository(client *firestore.Client, logger *zap.Logger) *FirestoreChecklistRepository {
	return &FirestoreChecklistRepository{client: client, logger: logger}
}

var _ ChecklistStore = (*FirestoreChecklistRepository)(nil)

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// findOne はクエリに一致する最初のドキュメントを返します。無ければnilです。
func findOne(ctx context.Context, q firestore.Query) (*firestore.DocumentSnapshot, error) {
	docs, err := q.Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

func (r *FirestoreChecklistRepository) ListChecklists(ctx context.Context, ownerUserID string) ([]*models.Checklist, error) {
	docs, err := r.client.Collection(checklistsCollection).
		Where("ownerUserId", "==", ownerUserID).
		Documents(ctx).GetAll()
	if err != nil {
		r.logger.Error("Failed to query checklists", zap.Error(err))
		return nil, fmt.Errorf("could not query checklists: %w", err)
	}

	checklists := make([]*models.Checklist, 0, len(docs))
	for _, doc := range docs {
		var c models.Checklist
		if err := doc.DataTo(&c); err != nil {
			return nil, fmt.Errorf("could not decode checklist %s: %w", doc.Ref.ID, err)
		}
		checklists = append(checklists, &c)
	}
	// 複合インデックスを要求しないよう、並び替えはメモリ上で行う
	sort.SliceStable(checklists, func(i, j int) bool {
		return checklists[i].CreatedAt.Before(checklists[j].CreatedAt)
	})
	return checklists, nil
}

func (r *FirestoreChecklistRepository) FindChecklist(ctx context.Context, id, ownerUserID string) (*models.Checklist, error) {
	coll := r.client.Collection(checklistsCollection)
	doc, err := findOne(ctx, coll.
		Where(firestore.DocumentID, "==", coll.Doc(id)).
		Where("ownerUserId", "==", ownerUserID))
	if err != nil {
		r.logger.Error("Failed to query checklist by ID", zap.String("checklist_id", id), zap.Error(err))
		return nil, fmt.Errorf("could not query checklist: %w", err)
	}
	if doc == nil {
		return nil, ErrChecklistNotFound
	}

	var c models.Checklist
	if err := doc.DataTo(&c); err != nil {
		return nil, fmt.Errorf("could not decode checklist %s: %w", id, err)
	}
	return &c, nil
}

func (r *FirestoreChecklistRepository) CreateChecklist(ctx context.Context, c *models.Checklist) (*models.Checklist, error) {
	c.ID = uuid.NewString()
	c.CreatedAt = now()

	if _, err := r.client.Collection(checklistsCollection).Doc(c.ID).Create(ctx, c); err != nil {
		r.logger.Error("Failed to create checklist", zap.Error(err))
		return nil, fmt.Errorf("could not create checklist: %w", err)
	}
	return c, nil
}

// DeleteChecklist は所有者を確認して削除するまでを1トランザクションで行います。
func (r *FirestoreChecklistRepository) DeleteChecklist(ctx context.Context, id, ownerUserID string) error {
	ref := r.client.Collection(checklistsCollection).Doc(id)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if isNotFound(err) {
			return ErrChecklistNotFound
		}
		if err != nil {
			return err
		}
		var c models.Checklist
		if err := snap.DataTo(&c); err != nil {
			return err
		}
		if c.OwnerUserID != ownerUserID {
			return ErrChecklistNotFound
		}
		return tx.Delete(ref)
	})
	if err != nil {
		if errors.Is(err, ErrChecklistNotFound) {
			return ErrChecklistNotFound
		}
		r.logger.Error("Failed to delete checklist", zap.String("checklist_id", id), zap.Error(err))
		return fmt.Errorf("could not delete checklist: %w", err)
	}
	return nil
}

func (r *FirestoreChecklistRepository) DeleteItemsByChecklist(ctx context.Context, checklistID string) (int64, error) {
	docs, err := r.client.Collection(itemsCollection).
		Where("checklistId", "==", checklistID).
		Documents(ctx).GetAll()
	if err != nil {
		r.logger.Error("Failed to query checklist items for deletion", zap.String("checklist_id", checklistID), zap.Error(err))
		return 0, fmt.Errorf("could not query checklist items: %w", err)
	}
	if len(docs) == 0 {
		return 0, nil
	}

	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(docs))
	for _, doc := range docs {
		job, err := bw.Delete(doc.Ref)
		if err != nil {
			bw.End()
			return 0, fmt.Errorf("could not enqueue item deletion: %w", err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	var deleted int64
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			r.logger.Error("Failed to delete checklist item", zap.String("checklist_id", checklistID), zap.Error(err))
			return deleted, fmt.Errorf("could not delete checklist items: %w", err)
		}
		deleted++
	}
	return deleted, nil
}

func (r *FirestoreChecklistRepository) ListItems(ctx context.Context, checklistID string) ([]*models.ChecklistItem, error) {
	docs, err := r.client.Collection(itemsCollection).
		Where("checklistId", "==", checklistID).
		Documents(ctx).GetAll()
	if err != nil {
		r.logger.Error("Failed to query checklist items", zap.Error(err))
		return nil, fmt.Errorf("could not query checklist items: %w", err)
	}

	items := make([]*models.ChecklistItem, 0, len(docs))
	for _, doc := range docs {
		var item models.ChecklistItem
		if err := doc.DataTo(&item); err != nil {
			return nil, fmt.Errorf("could not decode checklist item %s: %w", doc.Ref.ID, err)
		}
		items = append(items, &item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (r *FirestoreChecklistRepository) FindItem(ctx context.Context, id, checklistID string) (*models.ChecklistItem, error) {
	coll := r.client.Collection(itemsCollection)
	doc, err := findOne(ctx, coll.
		Where(firestore.DocumentID, "==", coll.Doc(id)).
		Where("checklistId", "==", checklistID))
	if err != nil {
		r.logger.Error("Failed to query checklist item by ID", zap.String("item_id", id), zap.Error(err))
		return nil, fmt.Errorf("could not query checklist item: %w", err)
	}
	if doc == nil {
		return nil, ErrItemNotFound
	}

	var item models.ChecklistItem
	if err := doc.DataTo(&item); err != nil {
		return nil, fmt.Errorf("could not decode checklist item %s: %w", id, err)
	}
	return &item, nil
}

func (r *FirestoreChecklistRepository) CreateItem(ctx context.Context, item *models.ChecklistItem) (*models.ChecklistItem, error) {
	item.ID = uuid.NewString()
	item.Status = false
	item.CreatedAt = now()
	item.UpdatedAt = item.CreatedAt

	if _, err := r.client.Collection(itemsCollection).Doc(item.ID).Create(ctx, item); err != nil {
		r.logger.Error("Failed to create checklist item", zap.Error(err))
		return nil, fmt.Errorf("could not create checklist item: %w", err)
	}
	return item, nil
}

// updateItem はトランザクション内でアイテムを読み、mutateで変更した内容を書き戻します。
func (r *FirestoreChecklistRepository) updateItem(ctx context.Context, id, checklistID string, mutate func(*models.ChecklistItem) []firestore.Update) (*models.ChecklistItem, error) {
	ref := r.client.Collection(itemsCollection).Doc(id)
	var updated models.ChecklistItem
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if isNotFound(err) {
			return ErrItemNotFound
		}
		if err != nil {
			return err
		}
		var item models.ChecklistItem
		if err := snap.DataTo(&item); err != nil {
			return err
		}
		if item.ChecklistID != checklistID {
			return ErrItemNotFound
		}
		updates := mutate(&item)
		updated = item
		return tx.Update(ref, updates)
	})
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		r.logger.Error("Failed to update checklist item", zap.String("item_id", id), zap.Error(err))
		return nil, fmt.Errorf("could not update checklist item: %w", err)
	}
	return &updated, nil
}

func (r *FirestoreChecklistRepository) ToggleItemStatus(ctx context.Context, id, checklistID string) (*models.ChecklistItem, error) {
	return r.updateItem(ctx, id, checklistID, func(item *models.ChecklistItem) []firestore.Update {
		item.Status = !item.Status
		item.UpdatedAt = now()
		return []firestore.Update{
			{Path: "status", Value: item.Status},
			{Path: "updatedAt", Value: item.UpdatedAt},
		}
	})
}

func (r *FirestoreChecklistRepository) RenameItem(ctx context.Context, id, checklistID, itemName string) (*models.ChecklistItem, error) {
	return r.updateItem(ctx, id, checklistID, func(item *models.ChecklistItem) []firestore.Update {
		item.ItemName = itemName
		item.UpdatedAt = now()
		return []firestore.Update{
			{Path: "itemName", Value: item.ItemName},
			{Path: "updatedAt", Value: item.UpdatedAt},
		}
	})
}

func (r *FirestoreChecklistRepository) DeleteItem(ctx context.Context, id, checklistID string) error {
	ref := r.client.Collection(itemsCollection).Doc(id)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if isNotFound(err) {
			return ErrItemNotFound
		}
		if err != nil {
			return err
		}
		var item models.ChecklistItem
		if err := snap.DataTo(&item); err != nil {
			return err
		}
		if item.ChecklistID != checklistID {
			return ErrItemNotFound
		}
		return tx.Delete(ref)
	})
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return ErrItemNotFound
		}
		r.logger.Error("Failed to delete checklist item", zap.String("item_id", id), zap.Error(err))
		return fmt.Errorf("could not delete checklist item: %w", err)
	}
	return nil
}

// Ping はFirestoreに軽いクエリを投げて疎通を確認します。
func (r *FirestoreChecklistRepository) Ping(ctx context.Context) error {
	_, err := r.client.Collection(checklistsCollection).Limit(1).Documents(ctx).GetAll()
	return err
}
