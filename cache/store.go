// Package cache is the device-local persistence layer. It holds the
// last-known-good copy of every entity list so screens render before any
// network round-trip completes, and keeps working offline.
//
// Records are stored one row per entity keyed by (bucket, id) and written
// with single-key atomic upserts, so two in-flight mutators can never lose
// each other's update the way whole-list snapshots do.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type Record struct {
	Bucket    string `gorm:"primaryKey;size:64"`
	Key       string `gorm:"primaryKey;size:64"`
	Value     []byte
	Dirty     bool `gorm:"index"`
	UpdatedAt time.Time
}

type Setting struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string
	UpdatedAt time.Time
}

type Store struct {
	db  *gorm.DB
	log *slog.Logger
}

// Open opens (or creates) the cache database at path. Use ":memory:" for an
// ephemeral store in tests.
func Open(path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}

	if path == ":memory:" {
		// every pooled connection gets its own in-memory database, so pin
		// the pool to one
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to open cache db: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&Record{}, &Setting{}); err != nil {
		return nil, fmt.Errorf("failed to migrate cache db: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Get returns the raw value for (bucket, key), or nil when absent.
func (s *Store) Get(bucket, key string) ([]byte, error) {
	var rec Record
	err := s.db.Where("bucket = ? AND key = ?", bucket, key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s/%s: %w", bucket, key, err)
	}
	return rec.Value, nil
}

// Put upserts a single record. The write is atomic per key.
func (s *Store) Put(bucket, key string, value []byte) error {
	rec := Record{Bucket: bucket, Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "bucket"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "dirty", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("cache put %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *Store) Delete(bucket, key string) error {
	err := s.db.Where("bucket = ? AND key = ?", bucket, key).Delete(&Record{}).Error
	if err != nil {
		return fmt.Errorf("cache delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

// List returns all raw values in a bucket ordered by key.
func (s *Store) List(bucket string) ([][]byte, error) {
	var recs []Record
	err := s.db.Where("bucket = ?", bucket).Order("key").Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("cache list %s: %w", bucket, err)
	}
	values := make([][]byte, 0, len(recs))
	for _, r := range recs {
		values = append(values, r.Value)
	}
	return values, nil
}

// Replace swaps the clean contents of a bucket for rows, inside one
// transaction. Dirty records are left untouched so an unsynced local write
// is never clobbered by a refresh.
func (s *Store) Replace(bucket string, rows map[string][]byte) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bucket = ? AND dirty = ?", bucket, false).Delete(&Record{}).Error; err != nil {
			return err
		}
		now := time.Now()
		for key, value := range rows {
			// a dirty local copy wins until it is reconciled
			var dirty int64
			if err := tx.Model(&Record{}).
				Where("bucket = ? AND key = ? AND dirty = ?", bucket, key, true).
				Count(&dirty).Error; err != nil {
				return err
			}
			if dirty > 0 {
				continue
			}
			rec := Record{Bucket: bucket, Key: key, Value: value, UpdatedAt: now}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "bucket"}, {Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache replace %s: %w", bucket, err)
	}
	return nil
}

func (s *Store) Clear(bucket string) error {
	if err := s.db.Where("bucket = ?", bucket).Delete(&Record{}).Error; err != nil {
		return fmt.Errorf("cache clear %s: %w", bucket, err)
	}
	return nil
}

// ClearAll wipes every record and setting, e.g. on sign-out.
func (s *Store) ClearAll() error {
	if err := s.db.Where("1 = 1").Delete(&Record{}).Error; err != nil {
		return fmt.Errorf("cache clear records: %w", err)
	}
	if err := s.db.Where("1 = 1").Delete(&Setting{}).Error; err != nil {
		return fmt.Errorf("cache clear settings: %w", err)
	}
	return nil
}

// MarkDirty flags a record as locally modified but not yet acknowledged by
// the backend.
func (s *Store) MarkDirty(bucket, key string) error {
	err := s.db.Model(&Record{}).
		Where("bucket = ? AND key = ?", bucket, key).
		Update("dirty", true).Error
	if err != nil {
		return fmt.Errorf("cache mark dirty %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *Store) ClearDirty(bucket, key string) error {
	err := s.db.Model(&Record{}).
		Where("bucket = ? AND key = ?", bucket, key).
		Update("dirty", false).Error
	if err != nil {
		return fmt.Errorf("cache clear dirty %s/%s: %w", bucket, key, err)
	}
	return nil
}

// ListDirty returns key -> value for every unsynced record in a bucket.
func (s *Store) ListDirty(bucket string) (map[string][]byte, error) {
	var recs []Record
	err := s.db.Where("bucket = ? AND dirty = ?", bucket, true).Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("cache list dirty %s: %w", bucket, err)
	}
	out := make(map[string][]byte, len(recs))
	for _, r := range recs {
		out[r.Key] = r.Value
	}
	return out, nil
}

func (s *Store) PutSetting(key, value string) error {
	rec := Setting{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("cache put setting %s: %w", key, err)
	}
	return nil
}

// GetSetting returns "" when the key is absent.
func (s *Store) GetSetting(key string) (string, error) {
	var rec Setting
	err := s.db.Where("key = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("cache get setting %s: %w", key, err)
	}
	return rec.Value, nil
}

func (s *Store) DeleteSetting(key string) error {
	if err := s.db.Where("key = ?", key).Delete(&Setting{}).Error; err != nil {
		return fmt.Errorf("cache delete setting %s: %w", key, err)
	}
	return nil
}

// PutJSON marshals v and upserts it under (bucket, key).
func PutJSON[T any](s *Store, bucket, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache marshal %s/%s: %w", bucket, key, err)
	}
	return s.Put(bucket, key, data)
}

// GetJSON returns nil when the key is absent.
func GetJSON[T any](s *Store, bucket, key string) (*T, error) {
	data, err := s.Get(bucket, key)
	if err != nil || data == nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("cache unmarshal %s/%s: %w", bucket, key, err)
	}
	return &v, nil
}

// ListJSON decodes a whole bucket. Rows that fail to decode are skipped and
// logged rather than failing the read.
func ListJSON[T any](s *Store, bucket string) ([]T, error) {
	raws, err := s.List(bucket)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			s.log.Warn("skipping undecodable cache row", "bucket", bucket, "error", err)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}
