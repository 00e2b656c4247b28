package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// blobRow is the single-table schema for the SQLite backend.
type blobRow struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte
	UpdatedAt time.Time
}

func (blobRow) TableName() string { return "blobs" }

// SQLiteStore is a Store backed by a local SQLite file via GORM.
type SQLiteStore struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewSQLiteStore opens (or creates) the database file and migrates the
// schema. An empty path opens an in-memory database.
func NewSQLiteStore(path string, log zerolog.Logger) (*SQLiteStore, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite %q: %w", path, err)
	}
	if err := db.AutoMigrate(&blobRow{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &SQLiteStore{db: db, log: log}, nil
}

func (s *SQLiteStore) Get(key string) ([]byte, bool) {
	var row blobRow
	err := s.db.First(&row, "key = ?", key).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn().Err(err).Str("key", key).Msg("store read failed, using default")
		}
		return nil, false
	}
	return row.Value, true
}

func (s *SQLiteStore) Set(key string, value []byte) bool {
	row := blobRow{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("store write failed")
		return false
	}
	return true
}

func (s *SQLiteStore) Remove(key string) {
	if err := s.db.Delete(&blobRow{}, "key = ?", key).Error; err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("store remove failed")
	}
}

func (s *SQLiteStore) Export() map[string][]byte {
	var rows []blobRow
	out := make(map[string][]byte)
	if err := s.db.Find(&rows).Error; err != nil {
		s.log.Warn().Err(err).Msg("store export failed")
		return out
	}
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out
}

func (s *SQLiteStore) Import(data map[string][]byte) {
	for k, v := range data {
		s.Set(k, v)
	}
}

// Close releases the underlying connection.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
