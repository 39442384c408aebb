package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InMemory(t *testing.T) {
	db, err := New(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var one int
	require.NoError(t, db.QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}

func TestNew_CreatesDataDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	path := filepath.Join(dir, "dashboard.db")

	db, err := New(context.Background(), WithDataSource(path))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec("CREATE TABLE t (id INTEGER)")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNew_Validation(t *testing.T) {
	_, err := New(context.Background(), WithDriver(""))
	assert.ErrorIs(t, err, ErrEmptyDriver)

	_, err = New(context.Background(), WithDataSource(""))
	assert.ErrorIs(t, err, ErrEmptyDataSource)
}

func TestNew_UnknownDriverFailsAfterRetries(t *testing.T) {
	_, err := New(context.Background(),
		WithDriver("no-such-driver"),
		WithRetry(2, time.Millisecond),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestNew_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(ctx,
		WithDriver("no-such-driver"),
		WithRetry(3, time.Hour),
	)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSqliteFilePath(t *testing.T) {
	cases := map[string]string{
		":memory:":                     "",
		"file::memory:?cache=shared":   "",
		"file:test.db?mode=memory":     "",
		"./data/dashboard.db":          "./data/dashboard.db",
		"file:/var/lib/app/x.db?_fk=1": "/var/lib/app/x.db",
	}
	for dsn, want := range cases {
		assert.Equal(t, want, sqliteFilePath(dsn), dsn)
	}
}
