package dbstore

import (
	"time"

	"github.com/yiblet/freewrite/internal/store"
)

// EntryModel represents a history entry in the database.
// The timestamp is the primary key, so writing an existing timestamp
// replaces the stored text.
type EntryModel struct {
	Timestamp int64  `gorm:"primaryKey;autoIncrement:false"` // Unix milliseconds
	Text      string `gorm:"type:text;not null"`
}

// TableName returns the table name for EntryModel
func (EntryModel) TableName() string {
	return "entries"
}

// ToEntry converts the GORM model to a store.Entry
func (m *EntryModel) ToEntry() store.Entry {
	return store.Entry{
		Text:      m.Text,
		Timestamp: m.Timestamp,
	}
}

// ConfigItemModel represents a configuration key-value pair
type ConfigItemModel struct {
	Key       string    `gorm:"primaryKey;size:100"`
	Value     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for ConfigItemModel
func (ConfigItemModel) TableName() string {
	return "config"
}
