// Package storage keeps a small local sign-in history in bbolt. Records carry
// metadata only (when, which attempt, payload size), never credential
// contents.
package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const (
	dbFileName   = "authbridge.db"
	signInBucket = "signin_history"

	// DefaultRetention is how long sign-in records are kept.
	DefaultRetention = 90 * 24 * time.Hour
)

// SignInRecord describes one completed sign-in.
type SignInRecord struct {
	CorrelationID string    `json:"correlation_id"`
	ProjectID     string    `json:"project_id"`
	CompletedAt   time.Time `json:"completed_at"`
	PayloadBytes  int       `json:"payload_bytes"`
}

// BoltDB wraps the bbolt database holding local authbridge state.
type BoltDB struct {
	db     *bbolt.DB
	logger *zap.Logger
}

// Open opens (or creates) the database under dataDir.
func Open(dataDir string, logger *zap.Logger) (*BoltDB, error) {
	path := filepath.Join(dataDir, dbFileName)
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return &BoltDB{db: db, logger: logger.Named("storage")}, nil
}

// Close closes the underlying database.
func (s *BoltDB) Close() error {
	return s.db.Close()
}

// SaveSignIn appends a sign-in record.
func (s *BoltDB) SaveSignIn(rec *SignInRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(signInBucket))
		if err != nil {
			return fmt.Errorf("failed to create sign-in bucket: %w", err)
		}

		// RFC3339Nano keys sort chronologically.
		key := fmt.Sprintf("%s_%s", rec.CompletedAt.UTC().Format(time.RFC3339Nano), rec.CorrelationID)
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal sign-in record: %w", err)
		}

		return bucket.Put([]byte(key), data)
	})
}

// ListSignIns returns up to limit records, newest first.
func (s *BoltDB) ListSignIns(limit int) ([]*SignInRecord, error) {
	var records []*SignInRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(signInBucket))
		if bucket == nil {
			return nil // No records yet
		}

		c := bucket.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(records) >= limit {
				break
			}
			rec := &SignInRecord{}
			if err := json.Unmarshal(v, rec); err != nil {
				s.logger.Warn("Skipping unreadable sign-in record", zap.ByteString("key", k), zap.Error(err))
				continue
			}
			records = append(records, rec)
		}
		return nil
	})

	return records, err
}

// PruneOlderThan removes sign-in records completed before cutoff.
func (s *BoltDB) PruneOlderThan(cutoff time.Time) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(signInBucket))
		if bucket == nil {
			return nil
		}

		var keysToDelete [][]byte

		err := bucket.ForEach(func(k, v []byte) error {
			rec := &SignInRecord{}
			if err := json.Unmarshal(v, rec); err != nil {
				s.logger.Warn("Skipping unreadable sign-in record during prune", zap.Error(err))
				return nil
			}
			if rec.CompletedAt.Before(cutoff) {
				keysToDelete = append(keysToDelete, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, key := range keysToDelete {
			if err := bucket.Delete(key); err != nil {
				return fmt.Errorf("failed to delete sign-in record: %w", err)
			}
		}
		return nil
	})
}
