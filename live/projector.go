package live

import (
	"sort"
	"strings"
	"sync"

	"bakery-menu-api/docstore"
	"bakery-menu-api/models"
)

// Snapshot is the full projected menu at one point in time
type Snapshot struct {
	Categories []models.Category           `json:"categories"`
	Products   map[string][]models.Product `json:"products"`
}

// Projector keeps a typed, sorted view of the categories collection and
// every per-category products sub-collection. It holds exactly one store
// subscription per live category: when the category set changes, the
// per-category subscription map is diffed, new ids get listeners and
// removed ids get theirs torn down.
type Projector struct {
	store *docstore.Store

	mu         sync.Mutex
	categories []models.Category
	products   map[string][]models.Product
	catSubs    map[string]func()
	subs       map[int]func(Snapshot)
	nextID     int
	unsubRoot  func()
	closed     bool
}

// NewProjector starts projecting immediately and keeps the view current
// until Close is called
func NewProjector(store *docstore.Store) *Projector {
	p := &Projector{
		store:    store,
		products: make(map[string][]models.Product),
		catSubs:  make(map[string]func()),
		subs:     make(map[int]func(Snapshot)),
	}
	p.unsubRoot = store.Subscribe(models.CategoriesPath, p.onCategories)
	return p
}

func (p *Projector) onCategories(docs []docstore.Doc) {
	cats := make([]models.Category, 0, len(docs))
	for _, d := range docs {
		cats = append(cats, models.DecodeCategory(d))
	}
	// Newest first; zero timestamps sort as oldest
	sort.SliceStable(cats, func(i, j int) bool {
		return cats[i].CreatedAt.After(cats[j].CreatedAt)
	})

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.categories = cats

	current := make(map[string]bool, len(cats))
	for _, c := range cats {
		current[c.ID] = true
	}

	// Tear down listeners for removed categories
	var stale []func()
	for id, unsub := range p.catSubs {
		if !current[id] {
			stale = append(stale, unsub)
			delete(p.catSubs, id)
			delete(p.products, id)
		}
	}

	// Start listeners for added categories
	var added []string
	for _, c := range cats {
		if _, ok := p.catSubs[c.ID]; !ok {
			p.catSubs[c.ID] = nil // reserve before unlocking
			added = append(added, c.ID)
		}
	}
	p.mu.Unlock()

	for _, unsub := range stale {
		unsub()
	}
	for _, id := range added {
		catID := id
		unsub := p.store.Subscribe(models.ProductsPath(catID), func(docs []docstore.Doc) {
			p.onProducts(catID, docs)
		})
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			unsub()
			continue
		}
		p.catSubs[catID] = unsub
		p.mu.Unlock()
	}

	p.broadcast()
}

func (p *Projector) onProducts(categoryID string, docs []docstore.Doc) {
	prods := make([]models.Product, 0, len(docs))
	for _, d := range docs {
		prods = append(prods, models.DecodeProduct(categoryID, d))
	}
	sort.SliceStable(prods, func(i, j int) bool {
		return prods[i].CreatedAt.After(prods[j].CreatedAt)
	})

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if _, live := p.catSubs[categoryID]; live {
		p.products[categoryID] = prods
	}
	p.mu.Unlock()

	p.broadcast()
}

// Snapshot returns a copy of the current projected view
func (p *Projector) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Projector) snapshotLocked() Snapshot {
	snap := Snapshot{
		Categories: append([]models.Category(nil), p.categories...),
		Products:   make(map[string][]models.Product, len(p.products)),
	}
	for id, prods := range p.products {
		snap.Products[id] = append([]models.Product(nil), prods...)
	}
	return snap
}

// Categories returns the current category list, newest first
func (p *Projector) Categories() []models.Category {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Category(nil), p.categories...)
}

// Products returns the current product list for one category
func (p *Projector) Products(categoryID string) []models.Product {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Product(nil), p.products[categoryID]...)
}

// AllProducts flattens every category's products into one list, category
// order first (newest category first), each category's products newest
// first, with the owning category's name attached
func (p *Projector) AllProducts() []models.Product {
	p.mu.Lock()
	defer p.mu.Unlock()
	var all []models.Product
	for _, c := range p.categories {
		for _, prod := range p.products[c.ID] {
			prod.CategoryName = c.Name
			all = append(all, prod)
		}
	}
	return all
}

// Search matches the flattened index on name or description,
// case-insensitive. An empty query matches nothing.
func (p *Projector) Search(query string) []models.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var hits []models.Product
	for _, prod := range p.AllProducts() {
		if strings.Contains(strings.ToLower(prod.Name), q) ||
			strings.Contains(strings.ToLower(prod.Description), q) {
			hits = append(hits, prod)
		}
	}
	return hits
}

// Subscribe registers a listener called with a fresh snapshot after every
// upstream change. The current snapshot is delivered immediately. The
// returned teardown is idempotent.
func (p *Projector) Subscribe(fn func(Snapshot)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	snap := p.snapshotLocked()
	p.mu.Unlock()

	fn(snap)

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
		})
	}
}

func (p *Projector) broadcast() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	snap := p.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(p.subs))
	ids := make([]int, 0, len(p.subs))
	for id := range p.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, p.subs[id])
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// Close tears down the root subscription and the whole per-category
// fan-out set. Safe to call more than once.
func (p *Projector) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	root := p.unsubRoot
	subs := make([]func(), 0, len(p.catSubs))
	for _, unsub := range p.catSubs {
		if unsub != nil {
			subs = append(subs, unsub)
		}
	}
	p.catSubs = make(map[string]func())
	p.subs = make(map[int]func(Snapshot))
	p.mu.Unlock()

	if root != nil {
		root()
	}
	for _, unsub := range subs {
		unsub()
	}
}
