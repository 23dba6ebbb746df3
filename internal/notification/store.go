package notification

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jeongryuni/project-SafeGuard/internal/errors"
)

// cacheKeyPrefix namespaces persisted lists per identity. Changing the
// version segment invalidates every existing cache entry.
const cacheKeyPrefix = "mm_notifications_v1_"

// CacheStore persists a notification list per identity. Implementations
// must tolerate missing entries (return an empty list, not an error).
type CacheStore interface {
	Load(identity string) ([]Notification, error)
	Save(identity string, records []Notification) error
	Close() error
}

// CacheKey returns the storage key for an identity.
func CacheKey(identity string) string {
	return cacheKeyPrefix + identity
}

// pruneExpired drops records older than the retention window, and records
// whose timestamp never parsed to begin with. It runs only when seeding from
// the persisted cache; live records are never discarded for a bad timestamp,
// they just render with the relative-time fallback.
func pruneExpired(records []Notification, now time.Time, retention time.Duration) []Notification {
	cutoff := now.Add(-retention)

	kept := make([]Notification, 0, len(records))
	for _, rec := range records {
		t, ok := rec.CreatedAt.Time()
		if !ok || t.Before(cutoff) {
			continue
		}
		kept = append(kept, rec)
	}
	return kept
}

// dedupeAndSort deduplicates by ID keeping the last occurrence and sorts
// newest first. It is applied after every mutation and before every save.
func dedupeAndSort(records []Notification) []Notification {
	kept := make([]Notification, 0, len(records))
	seen := make(map[int64]int, len(records))
	for _, rec := range records {
		if idx, dup := seen[rec.ID]; dup {
			kept[idx] = rec
			continue
		}
		seen[rec.ID] = len(kept)
		kept = append(kept, rec)
	}

	sortRecordsByTime(kept)
	return kept
}

// sortRecordsByTime orders records newest first. Ties keep their relative
// order so repeated normalization is stable.
func sortRecordsByTime(records []Notification) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.sortKey().After(records[j].CreatedAt.sortKey())
	})
}

// cachedList is the persisted row: one JSON payload per identity key.
type cachedList struct {
	Key       string `gorm:"primaryKey"`
	Payload   []byte
	UpdatedAt time.Time
}

func (cachedList) TableName() string {
	return "notification_cache"
}

// SQLiteStore persists notification lists in a local SQLite database.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (creating if needed) the cache database at path and
// runs the schema migration.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.New(err).
			Component("notification").
			Category(errors.CategoryDatabase).
			Context("operation", "open_cache_db").
			Context("path", path).
			Build()
	}
	if err := db.AutoMigrate(&cachedList{}); err != nil {
		return nil, errors.New(err).
			Component("notification").
			Category(errors.CategoryDatabase).
			Context("operation", "migrate_cache_db").
			Build()
	}
	return &SQLiteStore{db: db}, nil
}

// Load returns the cached records for an identity. A missing row or a
// corrupt payload yields an empty list.
func (s *SQLiteStore) Load(identity string) ([]Notification, error) {
	var row cachedList
	err := s.db.First(&row, "key = ?", CacheKey(identity)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.New(err).
			Component("notification").
			Category(errors.CategoryDatabase).
			Context("operation", "load_cache").
			Build()
	}

	var records []Notification
	if err := json.Unmarshal(row.Payload, &records); err != nil {
		// Corrupt cache entries are discarded, not surfaced.
		return nil, nil
	}
	return records, nil
}

// Save replaces the cached records for an identity.
func (s *SQLiteStore) Save(identity string, records []Notification) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return errors.New(err).
			Component("notification").
			Category(errors.CategoryJSONParsing).
			Context("operation", "encode_cache").
			Build()
	}

	row := cachedList{Key: CacheKey(identity), Payload: payload, UpdatedAt: time.Now()}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return errors.New(err).
			Component("notification").
			Category(errors.CategoryDatabase).
			Context("operation", "save_cache").
			Build()
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// MemoryStore is an in-memory CacheStore used in tests.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]Notification)}
}

func (m *MemoryStore) Load(identity string) ([]Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := m.data[CacheKey(identity)]
	out := make([]Notification, len(records))
	for i := range records {
		out[i] = *records[i].Clone()
	}
	return out, nil
}

func (m *MemoryStore) Save(identity string, records []Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]Notification, len(records))
	for i := range records {
		stored[i] = *records[i].Clone()
	}
	m.data[CacheKey(identity)] = stored
	return nil
}

func (m *MemoryStore) Close() error { return nil }
