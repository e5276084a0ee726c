package cart

import (
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Slot is a single string-keyed persistence slot for the serialized cart.
// Presence of the slot is itself meaningful: an empty cart clears the
// slot rather than persisting an empty list.
type Slot interface {
	Read() (value string, present bool, err error)
	Write(value string) error
	Clear() error
}

// MemorySlot is an in-memory Slot, used by tests
type MemorySlot struct {
	mu      sync.Mutex
	value   string
	present bool
}

func (m *MemorySlot) Read() (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, m.present, nil
}

func (m *MemorySlot) Write(value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value, m.present = value, true
	return nil
}

func (m *MemorySlot) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value, m.present = "", false
	return nil
}

// SlotRecord is the persisted row backing one DBSlot
type SlotRecord struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

func (SlotRecord) TableName() string { return "cart_slots" }

// Migrate creates the slot table
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&SlotRecord{})
}

// DBSlot persists one cart under a fixed key, one row per cart session
type DBSlot struct {
	db  *gorm.DB
	key string
}

func NewDBSlot(db *gorm.DB, key string) *DBSlot {
	return &DBSlot{db: db, key: key}
}

func (s *DBSlot) Read() (string, bool, error) {
	var rec SlotRecord
	err := s.db.Where("key = ?", s.key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rec.Value, true, nil
}

func (s *DBSlot) Write(value string) error {
	rec := SlotRecord{Key: s.key, Value: value}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
}

func (s *DBSlot) Clear() error {
	return s.db.Where("key = ?", s.key).Delete(&SlotRecord{}).Error
}
