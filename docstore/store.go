package docstore

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a document does not exist
var ErrNotFound = errors.New("document not found")

// Document is the persisted row backing one document in a collection.
// Path is the full collection path, e.g. "categories" or
// "categories/<id>/products". Data holds the document fields as JSON.
type Document struct {
	ID        uint   `gorm:"primaryKey"`
	Path      string `gorm:"uniqueIndex:idx_path_doc,priority:1;not null"`
	DocID     string `gorm:"uniqueIndex:idx_path_doc,priority:2;not null"`
	Data      string `gorm:"not null"`
	CreatedAt time.Time
}

// Doc is a decoded document as seen by consumers of the store
type Doc struct {
	ID        string
	Data      map[string]any
	CreatedAt time.Time
}

// Store is a collection-oriented document store with live subscriptions.
// Every mutation re-reads the full affected collection and re-delivers it
// to all subscribers of that collection path.
type Store struct {
	db *gorm.DB

	mu     sync.Mutex
	subs   map[string]map[int]func([]Doc)
	nextID int
	lastTS time.Time

	// incMu serializes Increment's read-modify-write cycle
	incMu sync.Mutex
}

// New creates a Store over an already migrated database
func New(db *gorm.DB) *Store {
	return &Store{
		db:   db,
		subs: make(map[string]map[int]func([]Doc)),
	}
}

// Migrate creates the backing table
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Document{})
}

// timestamp returns a server-assigned creation time, strictly increasing
// so newest-first ordering is total even for back-to-back writes.
func (s *Store) timestamp() time.Time {
	now := time.Now().UTC()
	if !now.After(s.lastTS) {
		now = s.lastTS.Add(time.Nanosecond)
	}
	s.lastTS = now
	return now
}

// Add creates a new document with a generated id and returns the id
func (s *Store) Add(path string, data map[string]any) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	ts := s.timestamp()
	s.mu.Unlock()

	doc := Document{
		Path:      path,
		DocID:     uuid.NewString(),
		Data:      string(raw),
		CreatedAt: ts,
	}
	if err := s.db.Create(&doc).Error; err != nil {
		return "", err
	}
	s.notify(path)
	return doc.DocID, nil
}

// Set upserts a document under a fixed id, merging the given fields into
// any existing data (the settings singletons are written this way)
func (s *Store) Set(path, id string, fields map[string]any) error {
	var row Document
	err := s.db.Where("path = ? AND doc_id = ?", path, id).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		raw, merr := json.Marshal(fields)
		if merr != nil {
			return merr
		}
		s.mu.Lock()
		ts := s.timestamp()
		s.mu.Unlock()
		row = Document{Path: path, DocID: id, Data: string(raw), CreatedAt: ts}
		if err := s.db.Create(&row).Error; err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		data := map[string]any{}
		if uerr := json.Unmarshal([]byte(row.Data), &data); uerr != nil {
			data = map[string]any{}
		}
		for k, v := range fields {
			data[k] = v
		}
		raw, merr := json.Marshal(data)
		if merr != nil {
			return merr
		}
		if err := s.db.Model(&Document{}).
			Where("path = ? AND doc_id = ?", path, id).
			Update("data", string(raw)).Error; err != nil {
			return err
		}
	}
	s.notify(path)
	return nil
}

// Update merges fields into an existing document; missing documents error
func (s *Store) Update(path, id string, fields map[string]any) error {
	var row Document
	if err := s.db.Where("path = ? AND doc_id = ?", path, id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	data := map[string]any{}
	if err := json.Unmarshal([]byte(row.Data), &data); err != nil {
		data = map[string]any{}
	}
	for k, v := range fields {
		data[k] = v
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if err := s.db.Model(&Document{}).
		Where("path = ? AND doc_id = ?", path, id).
		Update("data", string(raw)).Error; err != nil {
		return err
	}
	s.notify(path)
	return nil
}

// Increment adds delta to a numeric field, creating the document (and
// the field) when missing. Concurrent increments are serialized so no
// update is lost.
func (s *Store) Increment(path, id, field string, delta int64) error {
	s.incMu.Lock()
	defer s.incMu.Unlock()

	var row Document
	err := s.db.Where("path = ? AND doc_id = ?", path, id).First(&row).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	current := int64(0)
	if err == nil {
		data := map[string]any{}
		if uerr := json.Unmarshal([]byte(row.Data), &data); uerr == nil {
			if n, ok := data[field].(float64); ok {
				current = int64(n)
			}
		}
	}
	return s.Set(path, id, map[string]any{field: current + delta})
}

// Delete removes a single document; deleting a missing document is a no-op
func (s *Store) Delete(path, id string) error {
	if err := s.db.Where("path = ? AND doc_id = ?", path, id).
		Delete(&Document{}).Error; err != nil {
		return err
	}
	s.notify(path)
	return nil
}

// DeleteCollection removes every document under a collection path
func (s *Store) DeleteCollection(path string) error {
	if err := s.db.Where("path = ?", path).Delete(&Document{}).Error; err != nil {
		return err
	}
	s.notify(path)
	return nil
}

// Get fetches one document
func (s *Store) Get(path, id string) (Doc, error) {
	var row Document
	if err := s.db.Where("path = ? AND doc_id = ?", path, id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Doc{}, ErrNotFound
		}
		return Doc{}, err
	}
	return decodeRow(row), nil
}

// List returns every document in a collection, in insertion order.
// Consumers impose their own ordering.
func (s *Store) List(path string) ([]Doc, error) {
	var rows []Document
	if err := s.db.Where("path = ?", path).Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	docs := make([]Doc, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, decodeRow(row))
	}
	return docs, nil
}

// Subscribe registers a live listener on a collection path. The current
// set is delivered immediately, then the full set again after every
// mutation of that path, until the returned teardown is called. Teardown
// is idempotent.
func (s *Store) Subscribe(path string, fn func([]Doc)) func() {
	s.mu.Lock()
	if s.subs[path] == nil {
		s.subs[path] = make(map[int]func([]Doc))
	}
	id := s.nextID
	s.nextID++
	s.subs[path][id] = fn
	s.mu.Unlock()

	s.deliver(path, fn)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if m, ok := s.subs[path]; ok {
				delete(m, id)
				if len(m) == 0 {
					delete(s.subs, path)
				}
			}
			s.mu.Unlock()
		})
	}
}

// notify re-reads the collection and fans it out to every subscriber of
// the path. Handlers fire in registration order on the mutating goroutine.
func (s *Store) notify(path string) {
	s.mu.Lock()
	handlers := make([]func([]Doc), 0, len(s.subs[path]))
	ids := make([]int, 0, len(s.subs[path]))
	for id := range s.subs[path] {
		ids = append(ids, id)
	}
	// map iteration order is random; keep delivery order stable
	sort.Ints(ids)
	for _, id := range ids {
		handlers = append(handlers, s.subs[path][id])
	}
	s.mu.Unlock()

	if len(handlers) == 0 {
		return
	}
	docs, err := s.List(path)
	if err != nil {
		// Transport failure degrades to an empty set for listeners
		zap.L().Error("docstore: list failed during notify",
			zap.String("path", path), zap.Error(err))
		docs = nil
	}
	for _, fn := range handlers {
		fn(docs)
	}
}

func (s *Store) deliver(path string, fn func([]Doc)) {
	docs, err := s.List(path)
	if err != nil {
		zap.L().Error("docstore: initial list failed",
			zap.String("path", path), zap.Error(err))
		docs = nil
	}
	fn(docs)
}

func decodeRow(row Document) Doc {
	data := map[string]any{}
	if err := json.Unmarshal([]byte(row.Data), &data); err != nil {
		data = map[string]any{}
	}
	return Doc{ID: row.DocID, Data: data, CreatedAt: row.CreatedAt}
}
