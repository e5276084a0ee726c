package cart

import (
	"encoding/json"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Portion selects a product's price tier
const (
	PortionFull = "full"
	PortionHalf = "half"
)

// Item is one cart line. Price, name, image and serves label are
// snapshots taken when the line is added; later product edits never
// touch lines already in the cart.
type Item struct {
	ProductID string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Portion   string  `json:"portion"`
	Quantity  int     `json:"quantity"`
	Serves    string  `json:"serves,omitempty"`
	IsVeg     bool    `json:"isVeg"`
	ImageURL  string  `json:"imageUrl,omitempty"`
}

// Store is an ordered list of cart lines behind a single persistence
// slot. Every mutation rewrites the full serialized list (or clears the
// slot when the list is empty) and then notifies every subscriber so
// independently mounted consumers re-read and stay consistent. Writers
// do not coordinate beyond that: the last full-list write wins.
type Store struct {
	mu     sync.Mutex
	slot   Slot
	subs   map[int]func()
	nextID int
}

func NewStore(slot Slot) *Store {
	return &Store{slot: slot, subs: make(map[int]func())}
}

// Items reloads the persisted list. A corrupt slot is discarded and
// treated as an empty cart.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() []Item {
	raw, present, err := s.slot.Read()
	if err != nil {
		zap.L().Error("cart: slot read failed", zap.Error(err))
		return nil
	}
	if !present {
		return nil
	}
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		zap.L().Warn("cart: dropping unparseable slot", zap.Error(err))
		if cerr := s.slot.Clear(); cerr != nil {
			zap.L().Error("cart: slot clear failed", zap.Error(cerr))
		}
		return nil
	}
	return items
}

func (s *Store) saveLocked(items []Item) error {
	// No persisted line may have quantity <= 0
	kept := items[:0]
	for _, it := range items {
		if it.Quantity > 0 {
			kept = append(kept, it)
		}
	}
	if len(kept) == 0 {
		return s.slot.Clear()
	}
	raw, err := json.Marshal(kept)
	if err != nil {
		return err
	}
	return s.slot.Write(string(raw))
}

// Add merges the incoming line into an existing one when product id and
// portion match (summing quantities), otherwise appends it
func (s *Store) Add(item Item) error {
	s.mu.Lock()
	items := s.loadLocked()
	merged := false
	for i := range items {
		if items[i].ProductID == item.ProductID && items[i].Portion == item.Portion {
			items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, item)
	}
	err := s.saveLocked(items)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// Adjust changes a line's quantity by delta. A single adjustment never
// drops the quantity below 1, but any line that somehow reaches zero or
// less is pruned on save.
func (s *Store) Adjust(productID, portion string, delta int) error {
	s.mu.Lock()
	items := s.loadLocked()
	for i := range items {
		if items[i].ProductID == productID && items[i].Portion == portion {
			q := items[i].Quantity + delta
			if q < 1 {
				q = 1
			}
			items[i].Quantity = q
		}
	}
	err := s.saveLocked(items)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// Remove deletes the line matching product id and portion
func (s *Store) Remove(productID, portion string) error {
	s.mu.Lock()
	items := s.loadLocked()
	kept := items[:0]
	for _, it := range items {
		if !(it.ProductID == productID && it.Portion == portion) {
			kept = append(kept, it)
		}
	}
	err := s.saveLocked(kept)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// Clear empties the cart and removes the slot
func (s *Store) Clear() error {
	s.mu.Lock()
	err := s.slot.Clear()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// Count sums the quantities across all lines
func (s *Store) Count() int {
	total := 0
	for _, it := range s.Items() {
		total += it.Quantity
	}
	return total
}

// Subtotal is price × quantity summed over all lines
func (s *Store) Subtotal() float64 {
	var sum float64
	for _, it := range s.Items() {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}

// Total adds the delivery charge to the subtotal in delivery mode;
// pickup mode is the bare subtotal
func (s *Store) Total(mode string, deliveryCharge int) float64 {
	subtotal := s.Subtotal()
	if mode == "delivery" {
		return subtotal + float64(deliveryCharge)
	}
	return subtotal
}

// Subscribe registers a change listener fired after every write. The
// returned teardown is idempotent.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// HasSubscribers reports whether any change listeners are registered
func (s *Store) HasSubscribers() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs) > 0
}

func (s *Store) notify() {
	s.mu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
