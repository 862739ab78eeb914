package repositories

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Firestoreのテストはエミュレーターが起動しているときだけ実行します。
//
//	gcloud emulators firestore start --host-port=localhost:8081
//	FIRESTORE_EMULATOR_HOST=localhost:8081 go test ./internal/repositories/...
func newFirestoreStores(t *testing.T) (*FirestoreChecklistRepository, *FirestoreUserRepository) {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := NewFirestoreClient(context.Background(), "checklist-test", "")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	logger := zap.NewNop()
	return NewFirestoreChecklistRepository(client, logger), NewFirestoreUserRepository(client, logger)
}

func TestFirestoreChecklistStore(t *testing.T) {
	checklists, _ := newFirestoreStores(t)
	runChecklistStoreTests(t, checklists)
}

func TestFirestoreUserStore(t *testing.T) {
	_, users := newFirestoreStores(t)
	// エミュレーターのデータは実行間で残るので、既存ユーザーを消してから始める
	ctx := context.Background()
	_, _ = users.client.Collection(usersCollection).Doc(emailDocID("alice@example.com")).Delete(ctx)
	runUserStoreTests(t, users)
}
