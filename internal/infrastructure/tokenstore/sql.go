package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/logger"
)

// sessionValue is one persisted key.
type sessionValue struct {
	Key       string `gorm:"column:session_key;primaryKey;size:64"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (sessionValue) TableName() string { return "session_values" }

// SQLStore persists session values in a local SQLite file.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore opens (creating if needed) the SQLite file at path. The
// special path ":memory:" opens a private in-memory database.
func NewSQLStore(path string, log *zap.Logger) (*SQLStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create session directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                 logger.NewGormLogger(log, gormlogger.Warn),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&sessionValue{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate session table: %w", err)
	}

	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var row sessionValue
	err := s.db.WithContext(ctx).Where("session_key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session value %q: %w", key, err)
	}
	return row.Value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	row := sessionValue{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to write session value %q: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("session_key IN ?", keys).Delete(&sessionValue{}).Error; err != nil {
		return fmt.Errorf("failed to delete session values: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
