package backends_test

import (
	"path/filepath"
	"testing"

	"github.com/dalemusser/runtracker/internal/app/store/backends"
	"github.com/dalemusser/runtracker/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     backends.Config
		wantErr bool
	}{
		{"memory", backends.Config{Backend: "memory"}, false},
		{"sqlite", backends.Config{Backend: "sqlite", SQLitePath: "x.db"}, false},
		{"sqlite without path", backends.Config{Backend: "sqlite"}, true},
		{"mongo", backends.Config{Backend: "MONGO", MongoDatabase: "rt"}, false},
		{"mongo without db", backends.Config{Backend: "mongo"}, true},
		{"unknown", backends.Config{Backend: "redis"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOpen_SQLite(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()

	o, err := backends.Open(ctx, backends.Config{
		Backend:    "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "rt.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, backends.SQLite, o.Name)
	assert.Nil(t, o.MongoClient)
	require.NoError(t, o.Docs.Ping(ctx))
	require.NoError(t, o.Close(ctx))
}

func TestOpen_Memory(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()

	o, err := backends.Open(ctx, backends.Config{Backend: "memory"}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, o.Docs.Ping(ctx))
	require.NoError(t, o.Close(ctx))
}
