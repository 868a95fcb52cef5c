package dbstore

import (
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yiblet/freewrite/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SchemaVersion is recorded under the db_version config key.
const SchemaVersion = "1"

// SQLiteStore is a SQLite-backed implementation of store.EntryStore.
//
// It holds no open connection between calls. Every operation opens the
// database, runs, and closes the handle before returning, so nothing leaks
// when a caller abandons the store without calling Close.
type SQLiteStore struct {
	dbPath string
}

// NewSQLiteStore creates a store for the database at dbPath.
// It opens the database once to create the schema and default settings.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	s := OpenSQLiteStore(dbPath)
	if err := s.Init(); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenSQLiteStore returns a store for dbPath without touching the disk.
// Callers that must keep working when the database is unavailable use this
// and report the Init error themselves.
func OpenSQLiteStore(dbPath string) *SQLiteStore {
	return &SQLiteStore{dbPath: dbPath}
}

// Init creates the schema and records the schema version.
func (s *SQLiteStore) Init() error {
	err := s.withDB(func(db *gorm.DB) error {
		return (&sqliteConfigStore{s: s}).setDefault(db, "db_version", SchemaVersion)
	})
	if err != nil {
		return fmt.Errorf("failed to init database: %w", err)
	}
	return nil
}

// Path returns the database file path
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Config returns the settings store sharing this database
func (s *SQLiteStore) Config() store.ConfigStore {
	return &sqliteConfigStore{s: s}
}

// withDB opens the database, runs fn, and always closes the handle.
func (s *SQLiteStore) withDB(fn func(db *gorm.DB) error) (err error) {
	db, err := gorm.Open(sqlite.Open(s.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return store.Classify(store.ErrUnavailable,
			goerr.Wrap(err, "failed to open database", goerr.V("path", s.dbPath)))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return store.Classify(store.ErrUnavailable,
			goerr.Wrap(err, "failed to get database handle", goerr.V("path", s.dbPath)))
	}
	defer func() {
		if closeErr := sqlDB.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close database: %w", closeErr)
		}
	}()

	if err := db.AutoMigrate(&EntryModel{}, &ConfigItemModel{}); err != nil {
		return store.Classify(store.ErrUnavailable,
			goerr.Wrap(err, "failed to migrate schema", goerr.V("path", s.dbPath)))
	}

	return fn(db)
}

// Put inserts or overwrites an entry and evicts everything beyond
// store.MaxEntries, oldest first, in a single transaction.
func (s *SQLiteStore) Put(entry store.Entry) error {
	return s.withDB(func(db *gorm.DB) error {
		err := db.Transaction(func(tx *gorm.DB) error {
			model := &EntryModel{Timestamp: entry.Timestamp, Text: entry.Text}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(model).Error; err != nil {
				return goerr.Wrap(err, "failed to insert entry", goerr.V("timestamp", entry.Timestamp))
			}

			// Newest first; everything past MaxEntries is evicted
			var timestamps []int64
			if err := tx.Model(&EntryModel{}).
				Order("timestamp DESC").
				Pluck("timestamp", &timestamps).Error; err != nil {
				return goerr.Wrap(err, "failed to find entries to evict")
			}

			if len(timestamps) <= store.MaxEntries {
				return nil
			}

			stale := timestamps[store.MaxEntries:]
			if err := tx.Where("timestamp IN ?", stale).Delete(&EntryModel{}).Error; err != nil {
				return goerr.Wrap(err, "failed to evict entries", goerr.V("count", len(stale)))
			}
			return nil
		})
		if err != nil {
			return store.Classify(store.ErrWrite, err)
		}
		return nil
	})
}

// List returns entries ordered by timestamp (newest first)
func (s *SQLiteStore) List() ([]store.Entry, error) {
	var entries []store.Entry

	err := s.withDB(func(db *gorm.DB) error {
		var models []EntryModel
		if err := db.Order("timestamp DESC").Find(&models).Error; err != nil {
			return store.Classify(store.ErrRead, goerr.Wrap(err, "failed to list entries"))
		}

		entries = make([]store.Entry, len(models))
		for i := range models {
			entries[i] = models[i].ToEntry()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// Delete removes the entry with the given timestamp. Absent keys are ignored.
func (s *SQLiteStore) Delete(timestamp int64) error {
	return s.withDB(func(db *gorm.DB) error {
		if err := db.Delete(&EntryModel{}, timestamp).Error; err != nil {
			return store.Classify(store.ErrWrite,
				goerr.Wrap(err, "failed to delete entry", goerr.V("timestamp", timestamp)))
		}
		return nil
	})
}

// Clear removes all entries
func (s *SQLiteStore) Clear() error {
	return s.withDB(func(db *gorm.DB) error {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&EntryModel{}).Error; err != nil {
			return store.Classify(store.ErrWrite, goerr.Wrap(err, "failed to clear entries"))
		}
		return nil
	})
}

// Count returns the total number of entries
func (s *SQLiteStore) Count() (int, error) {
	var count int64
	err := s.withDB(func(db *gorm.DB) error {
		if err := db.Model(&EntryModel{}).Count(&count).Error; err != nil {
			return store.Classify(store.ErrRead, goerr.Wrap(err, "failed to count entries"))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// Close is a no-op; handles are released after every operation.
func (s *SQLiteStore) Close() error {
	return nil
}

// sqliteConfigStore implements store.ConfigStore using SQLite
type sqliteConfigStore struct {
	s *SQLiteStore
}

// Get retrieves a configuration value by key
func (c *sqliteConfigStore) Get(key string) (string, error) {
	var value string
	err := c.s.withDB(func(db *gorm.DB) error {
		var model ConfigItemModel
		if err := db.First(&model, "key = ?", key).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("config key not found: %s", key)
			}
			return store.Classify(store.ErrRead, goerr.Wrap(err, "failed to get config", goerr.V("key", key)))
		}
		value = model.Value
		return nil
	})
	return value, err
}

// Set stores a configuration value (upsert)
func (c *sqliteConfigStore) Set(key, value string) error {
	return c.s.withDB(func(db *gorm.DB) error {
		return c.set(db, key, value)
	})
}

func (c *sqliteConfigStore) set(db *gorm.DB, key, value string) error {
	model := &ConfigItemModel{Key: key, Value: value}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return store.Classify(store.ErrWrite, goerr.Wrap(err, "failed to set config", goerr.V("key", key)))
	}
	return nil
}

// setDefault stores value only when key is not present yet
func (c *sqliteConfigStore) setDefault(db *gorm.DB, key, value string) error {
	var count int64
	if err := db.Model(&ConfigItemModel{}).Where("key = ?", key).Count(&count).Error; err != nil {
		return store.Classify(store.ErrRead, goerr.Wrap(err, "failed to check config", goerr.V("key", key)))
	}
	if count > 0 {
		return nil
	}
	return c.set(db, key, value)
}

// List returns all configuration key-value pairs
func (c *sqliteConfigStore) List() (map[string]string, error) {
	var result map[string]string
	err := c.s.withDB(func(db *gorm.DB) error {
		var models []ConfigItemModel
		if err := db.Find(&models).Error; err != nil {
			return store.Classify(store.ErrRead, goerr.Wrap(err, "failed to list config"))
		}

		result = make(map[string]string, len(models))
		for _, model := range models {
			result[model.Key] = model.Value
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
