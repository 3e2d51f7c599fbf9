package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestDB(t *testing.T) *BoltDB {
	t.Helper()
	db, err := Open(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func record(id string, completedAt time.Time) *SignInRecord {
	return &SignInRecord{
		CorrelationID: id,
		ProjectID:     "todo-app",
		CompletedAt:   completedAt,
		PayloadBytes:  42,
	}
}

func TestSaveAndListSignIns(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC()

	require.NoError(t, db.SaveSignIn(record("first", now.Add(-2*time.Hour))))
	require.NoError(t, db.SaveSignIn(record("second", now.Add(-1*time.Hour))))
	require.NoError(t, db.SaveSignIn(record("third", now)))

	records, err := db.ListSignIns(0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "third", records[0].CorrelationID, "newest first")
	assert.Equal(t, "first", records[2].CorrelationID)
}

func TestListSignInsHonorsLimit(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC()

	for i, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, db.SaveSignIn(record(id, now.Add(time.Duration(i)*time.Minute))))
	}

	records, err := db.ListSignIns(2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "d", records[0].CorrelationID)
	assert.Equal(t, "c", records[1].CorrelationID)
}

func TestListSignInsEmptyDatabase(t *testing.T) {
	db := openTestDB(t)

	records, err := db.ListSignIns(10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestPruneOlderThan(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC()

	require.NoError(t, db.SaveSignIn(record("old", now.Add(-100*24*time.Hour))))
	require.NoError(t, db.SaveSignIn(record("recent", now)))

	require.NoError(t, db.PruneOlderThan(now.Add(-DefaultRetention)))

	records, err := db.ListSignIns(0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "recent", records[0].CorrelationID)
}
