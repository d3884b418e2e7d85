package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rustyeddy/papertrade/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('trades','equity')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())

	assert.True(t, found["trades"])
	assert.True(t, found["equity"])
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	rec := sampleTrade("T1", "50", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, j.RecordTrade(rec))
	require.NoError(t, j.Close())

	j2, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j2.Close() })

	got, err := j2.GetTrade("T1")
	require.NoError(t, err)
	assert.Equal(t, "T1", got.TradeID)
}

func TestSQLiteRecordTradeExactDecimals(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)

	open := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	closeT := time.Date(2024, 1, 2, 4, 5, 6, 0, time.UTC)
	rec := TradeRecord{
		TradeID:    "T1",
		Direction:  market.Short,
		Size:       d("1000"),
		EntryPrice: d("48235.5"),
		ExitPrice:  d("47000"),
		OpenTime:   open,
		CloseTime:  closeT,
		RealizedPL: d("25.6139"),
		Reason:     "ManualClose",
	}
	require.NoError(t, j.RecordTrade(rec))
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var dir, size, entry, pl string
	var closeTime time.Time
	err = db.QueryRow(`SELECT direction, size, entry_price, realized_pl, close_time FROM trades LIMIT 1`).
		Scan(&dir, &size, &entry, &pl, &closeTime)
	require.NoError(t, err)

	assert.Equal(t, "short", dir)
	assert.Equal(t, "1000", size)
	assert.Equal(t, "48235.5", entry)
	assert.Equal(t, "25.6139", pl)
	assert.True(t, closeTime.Equal(closeT))
}

func TestSQLiteDuplicateTradeID(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	rec := sampleTrade("dup", "1", time.Now().UTC())
	require.NoError(t, j.RecordTrade(rec))
	assert.Error(t, j.RecordTrade(rec))
}
