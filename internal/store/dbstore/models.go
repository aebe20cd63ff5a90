package dbstore

import (
	"time"

	"github.com/yiblet/replkit/internal/store"
)

// InputEntryModel represents a committed console input in the database.
type InputEntryModel struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	SessionKey string    `gorm:"size:64;not null;index:idx_session_time"` // Language id of the console session
	Input      string    `gorm:"type:text;not null"`
	Timestamp  time.Time `gorm:"not null;index:idx_session_time"` // Commit time, orders the history
	CreatedAt  time.Time `gorm:"autoCreateTime"`                  // GORM managed timestamp
}

// TableName returns the table name for InputEntryModel
func (InputEntryModel) TableName() string {
	return "input_entries"
}

// ToInputEntry converts the GORM model to a store.InputEntry
func (m *InputEntryModel) ToInputEntry() *store.InputEntry {
	return &store.InputEntry{
		ID:         m.ID,
		SessionKey: m.SessionKey,
		Input:      m.Input,
		Timestamp:  m.Timestamp,
		CreatedAt:  m.CreatedAt,
	}
}

// MetaModel is a key-value table for schema bookkeeping.
type MetaModel struct {
	Key       string    `gorm:"primaryKey;size:100"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for MetaModel
func (MetaModel) TableName() string {
	return "meta"
}
