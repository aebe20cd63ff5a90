package dbstore

import (
	"errors"
	"fmt"

	"github.com/yiblet/replkit/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SchemaVersion is recorded in the meta table on first open.
const SchemaVersion = "1"

// SQLiteStore is a SQLite-backed implementation of store.Store
type SQLiteStore struct {
	db     *gorm.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite-backed store at the specified path.
// It initializes the database schema and records the schema version.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer; a single connection serialises access
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	// Run auto-migration for all models
	if err := db.AutoMigrate(&InputEntryModel{}, &MetaModel{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}

	if err := s.initMeta(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to init meta: %w", err)
	}

	return s, nil
}

// Inputs returns the input store
func (s *SQLiteStore) Inputs() store.InputStore {
	return &sqliteInputStore{db: s.db}
}

// Path returns the database file path
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Version returns the schema version recorded in the database
func (s *SQLiteStore) Version() (string, error) {
	var model MetaModel
	if err := s.db.First(&model, "key = ?", "db_version").Error; err != nil {
		return "", fmt.Errorf("failed to read schema version: %w", err)
	}
	return model.Value, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// initMeta records the schema version if it is not already present
func (s *SQLiteStore) initMeta() error {
	model := &MetaModel{Key: "db_version", Value: SchemaVersion}
	return s.db.Where("key = ?", model.Key).FirstOrCreate(model).Error
}

// sqliteInputStore implements store.InputStore using SQLite
type sqliteInputStore struct {
	db *gorm.DB
}

// Append stores a new input row
func (s *sqliteInputStore) Append(input *store.AppendInput) (*store.InputEntry, error) {
	if input == nil {
		return nil, fmt.Errorf("append: nil input")
	}

	model := &InputEntryModel{
		SessionKey: input.SessionKey,
		Input:      input.Input,
		Timestamp:  input.Timestamp,
	}
	if model.Timestamp.IsZero() {
		model.Timestamp = s.db.NowFunc()
	}

	if err := s.db.Create(model).Error; err != nil {
		return nil, fmt.Errorf("failed to append input: %w", err)
	}
	return model.ToInputEntry(), nil
}

// List returns a session's entries ordered by timestamp (newest first)
func (s *sqliteInputStore) List(sessionKey string, limit int) ([]*store.InputEntry, error) {
	var models []*InputEntryModel

	query := s.db.
		Where("session_key = ?", sessionKey).
		Order("timestamp DESC, id DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list inputs: %w", err)
	}

	return toEntries(models), nil
}

// Get retrieves a single entry by ID
func (s *sqliteInputStore) Get(id uint) (*store.InputEntry, error) {
	var model InputEntryModel

	if err := s.db.First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", store.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get input: %w", err)
	}

	return model.ToInputEntry(), nil
}

// Delete removes an entry by ID
func (s *sqliteInputStore) Delete(id uint) error {
	result := s.db.Delete(&InputEntryModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete input: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", store.ErrNotFound, id)
	}
	return nil
}

// DeleteOldest removes a session's N oldest entries based on timestamp
func (s *sqliteInputStore) DeleteOldest(sessionKey string, count int) error {
	if count <= 0 {
		return nil
	}

	// Get IDs of oldest entries
	var ids []uint
	err := s.db.Model(&InputEntryModel{}).
		Where("session_key = ?", sessionKey).
		Order("timestamp ASC, id ASC").
		Limit(count).
		Pluck("id", &ids).Error

	if err != nil {
		return fmt.Errorf("failed to find oldest inputs: %w", err)
	}

	if len(ids) == 0 {
		return nil
	}

	if err := s.db.Delete(&InputEntryModel{}, ids).Error; err != nil {
		return fmt.Errorf("failed to delete inputs: %w", err)
	}

	return nil
}

// Count returns the number of entries for a session
func (s *sqliteInputStore) Count(sessionKey string) (int, error) {
	var count int64
	if err := s.db.Model(&InputEntryModel{}).
		Where("session_key = ?", sessionKey).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count inputs: %w", err)
	}
	return int(count), nil
}

// Clear removes all entries of a session
func (s *sqliteInputStore) Clear(sessionKey string) error {
	if err := s.db.Where("session_key = ?", sessionKey).
		Delete(&InputEntryModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Sessions returns the distinct session keys
func (s *sqliteInputStore) Sessions() ([]string, error) {
	var sessions []string
	if err := s.db.Model(&InputEntryModel{}).
		Distinct("session_key").
		Order("session_key ASC").
		Pluck("session_key", &sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// Search finds entries whose input matches a regex. SQLite has no regexp
// function by default, so rows are filtered in Go.
func (s *sqliteInputStore) Search(query *store.SearchQuery) ([]*store.InputEntry, error) {
	if query.Pattern == "" {
		return []*store.InputEntry{}, nil
	}

	re, err := query.Compile()
	if err != nil {
		return nil, err
	}

	dbQuery := s.db.Order("timestamp DESC, id DESC")
	if query.SessionKey != "" {
		dbQuery = dbQuery.Where("session_key = ?", query.SessionKey)
	}

	rows, err := dbQuery.Model(&InputEntryModel{}).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to list inputs for search: %w", err)
	}
	defer rows.Close()

	results := []*store.InputEntry{}
	for rows.Next() {
		var model InputEntryModel
		if err := s.db.ScanRows(rows, &model); err != nil {
			return nil, fmt.Errorf("failed to scan input: %w", err)
		}
		if !re.MatchString(model.Input) {
			continue
		}
		results = append(results, model.ToInputEntry())
		if query.Limit > 0 && len(results) >= query.Limit {
			break
		}
	}

	return results, rows.Err()
}

// Close releases any resources
func (s *sqliteInputStore) Close() error {
	return nil // No-op, parent store handles DB closing
}

func toEntries(models []*InputEntryModel) []*store.InputEntry {
	entries := make([]*store.InputEntry, len(models))
	for i, model := range models {
		entries[i] = model.ToInputEntry()
	}
	return entries
}
