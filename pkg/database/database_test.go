package database

import (
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/libraryhub/libraryhub/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EnablesForeignKeys(t *testing.T) {
	t.Parallel()

	db, err := New(config.NewForTest())
	require.NoError(t, err)
	defer db.Close()

	var enabled int
	err = db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	assert.Equal(t, 1, enabled)
}

// TestNew_GuardedDecrementUnderContention checks that a conditional
// decrement issued from many goroutines never drives a counter below zero.
func TestNew_GuardedDecrementUnderContention(t *testing.T) {
	t.Parallel()

	cfg := config.NewForTest()
	cfg.DatabaseFilePath = filepath.Join(t.TempDir(), "test.db")
	db, err := New(cfg)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE counters (id INTEGER PRIMARY KEY, value INTEGER NOT NULL CHECK (value >= 0))`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO counters (id, value) VALUES (1, 10)`)
	require.NoError(t, err)

	const workers = 40
	var wg sync.WaitGroup
	var succeeded, failed atomic.Int32

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := db.Exec(`UPDATE counters SET value = value - 1 WHERE id = 1 AND value > 0`)
			if err != nil {
				failed.Add(1)
				return
			}
			if n, _ := res.RowsAffected(); n == 1 {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(0), failed.Load())
	assert.Equal(t, int32(10), succeeded.Load())

	var value int
	err = db.QueryRow(`SELECT value FROM counters WHERE id = 1`).Scan(&value)
	require.NoError(t, err)
	assert.Equal(t, 0, value)
}
