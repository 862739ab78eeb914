package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("PORT", "")
	t.Setenv("GIN_MODE", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "release", cfg.GinMode)
	assert.Equal(t, DriverMySQL, cfg.StoreDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowOrigins)
}

func TestLoad_EnvFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")
	t.Setenv("STORE_DRIVER", "")
	os.Unsetenv("STORE_DRIVER")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "JWT_SECRET=from-file\nSTORE_DRIVER=sqlite\nCORS_ALLOW_ORIGINS=http://a.test, http://b.test\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))
	t.Cleanup(func() { os.Unsetenv("CORS_ALLOW_ORIGINS") })

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowOrigins)
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}},
		{"unknown driver", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "mongo"}},
		{"firestore without project", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "firestore", "FIRESTORE_PROJECT_ID": ""}},
		{"bad ttl", map[string]string{"JWT_SECRET": "s", "JWT_TTL": "one day"}},
		{"unknown gin mode", map[string]string{"JWT_SECRET": "s", "GIN_MODE": "production"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	cfg := &Config{DBUser: "app", DBPass: "pw", DBHost: "db", DBPort: "3306", DBName: "checklists"}

	assert.Equal(t, "app:pw@tcp(db:3306)/checklists?parseTime=true&loc=UTC&clientFoundRows=true", cfg.MySQLDSN())
}
