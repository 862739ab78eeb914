package main

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-checklist/backend/internal/config"
	"go-checklist/backend/internal/database"
)

func setSQLiteEnv(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("STORE_DRIVER", config.DriverSQLite)
	t.Setenv("SQLITE_PATH", path)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("GIN_MODE", "test")
	t.Setenv("LOG_LEVEL", "error")
	return path
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "migrate")

	flag := root.PersistentFlags().Lookup("env-file")
	require.NotNil(t, flag)
	assert.Equal(t, ".env", flag.DefValue)
}

func TestMigrateCmd_CreatesTables(t *testing.T) {
	path := setSQLiteEnv(t)

	root := newRootCmd()
	root.SetArgs([]string{"migrate", "--env-file", filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, root.ExecuteContext(context.Background()))

	db, err := database.OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"users", "checklists", "checklist_items"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		assert.NoError(t, err, "table %s should exist", table)
	}
}

func TestMigrateCmd_InvalidConfig(t *testing.T) {
	setSQLiteEnv(t)
	t.Setenv("JWT_SECRET", "")

	root := newRootCmd()
	root.SetArgs([]string{"migrate", "--env-file", ""})
	root.SetErr(io.Discard)
	assert.Error(t, root.ExecuteContext(context.Background()))
}

func TestServe_StopsOnCancel(t *testing.T) {
	srv := &http.Server{
		Addr:    "127.0.0.1:0",
		Handler: http.NotFoundHandler(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, time.Second, zap.NewNop()) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServe_ListenError(t *testing.T) {
	srv := &http.Server{Addr: "not-a-valid-address"}

	err := serve(context.Background(), srv, time.Second, zap.NewNop())
	assert.ErrorContains(t, err, "server stopped")
}
