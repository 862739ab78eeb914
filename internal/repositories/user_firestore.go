package repositories

import (
	"context"
	"encoding/base64"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go-checklist/backend/internal/models"
)

// FirestoreUserRepository はFirestore上のUserStore実装です。
// メールアドレスの一意性はドキュメントIDで保証します。
type FirestoreUserRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreUserRepository は新しいFirestoreUserRepositoryインスタンスを作成します。
func NewFirestoreUserRepository(client *firestore.Client, logger *zap.Logger) *FirestoreUserRepository {
	return &FirestoreUserRepository{client: client, logger: logger}
}

var _ UserStore = (*FirestoreUserRepository)(nil)

// emailDocID はメールアドレスをドキュメントIDに使える形に変換します ("/" を含められないため)。
func emailDocID(email string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(NormalizeEmail(email)))
}

func (r *FirestoreUserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	u.ID = uuid.NewString()
	u.Email = NormalizeEmail(u.Email)
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt

	_, err := r.client.Collection(usersCollection).Doc(emailDocID(u.Email)).Create(ctx, u)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, ErrDuplicateEmail
		}
		r.logger.Error("Failed to create user", zap.Error(err))
		return nil, fmt.Errorf("could not create user: %w", err)
	}
	return u, nil
}

func (r *FirestoreUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	snap, err := r.client.Collection(usersCollection).Doc(emailDocID(email)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		r.logger.Error("Failed to query user by email", zap.Error(err))
		return nil, fmt.Errorf("could not query user: %w", err)
	}

	var u models.User
	if err := snap.DataTo(&u); err != nil {
		return nil, fmt.Errorf("could not decode user: %w", err)
	}
	return &u, nil
}
