// Package stats keeps local bookkeeping about wrapper invocations:
// how many source files each run forwarded and how the backend
// answered. It never stores compile artifacts; caching itself lives in
// the external backend.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	// bucketName is the BoltDB bucket holding invocation records
	bucketName = "invocations"

	// fileName is the database file under the stats directory
	fileName = "stats.db"

	// keyLayout is a fixed-width timestamp so keys sort
	// chronologically as bytes
	keyLayout = "2006-01-02T15:04:05.000000000Z0700"
)

// DB stores invocation records in BoltDB.
type DB struct {
	db   *bbolt.DB
	path string
}

// DefaultDir returns the per-user stats directory.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user cache directory: %w", err)
	}

	return filepath.Join(base, "quickencl"), nil
}

// Open opens the stats database in dir, creating both as needed.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create stats directory: %w", err)
	}

	path := filepath.Join(dir, fileName)

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open stats database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create stats bucket: %w", err)
	}

	return &DB{db: db, path: path}, nil
}

// Close closes the stats database
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}

	return nil
}

// Append stores one record. A zero Time is stamped with the current
// time first.
func (d *DB) Append(rec *Record) error {
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}

	key := rec.Time.UTC().Format(keyLayout) + "#" + rec.ID

	return d.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}

		return b.Put([]byte(key), data)
	})
}

// Totals folds every record into aggregate counters.
func (d *DB) Totals() (*Totals, error) {
	totals := &Totals{}

	err := d.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		return b.ForEach(func(_, data []byte) error {
			var rec Record
			if err := json.Unmarshal(data, &rec); err != nil {
				return err
			}

			totals.Invocations++
			totals.Files += rec.Files
			totals.Hits += rec.Hits
			totals.Misses += rec.Misses
			totals.Failures += rec.Failures

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return totals, nil
}

// Recent returns up to n records, newest first.
func (d *DB) Recent(n int) ([]*Record, error) {
	var recs []*Record

	err := d.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(bucketName)).Cursor()

		for k, v := c.Last(); k != nil && len(recs) < n; k, v = c.Prev() {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}

			recs = append(recs, &rec)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return recs, nil
}

// Reset drops every record.
func (d *DB) Reset() error {
	err := d.db.Update(func(tx *bbolt.Tx) error {
		return tx.DeleteBucket([]byte(bucketName))
	})
	if err != nil {
		return err
	}

	return d.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
}

// Size reports the database file size in bytes.
func (d *DB) Size() (int64, error) {
	info, err := os.Stat(d.path)
	if err != nil {
		return 0, err
	}

	return info.Size(), nil
}
