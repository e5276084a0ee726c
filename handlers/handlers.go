package handlers

import (
	"sync"
	"time"

	"bakery-menu-api/cart"
	"bakery-menu-api/config"
	"bakery-menu-api/docstore"
	"bakery-menu-api/live"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var (
	// Store is the shared document store
	Store *docstore.Store
	// Feed is the live menu projector
	Feed *live.Projector

	carts *cartManager
)

// Init wires the handler package to its collaborators; call once at startup
func Init(store *docstore.Store, feed *live.Projector) {
	Store = store
	Feed = feed
	carts = newCartManager(cartIdleTTL)
}

// cartIdleTTL is how long a session's in-memory cart store survives
// without being touched. Cart contents live in the DB slot, so an
// evicted session rebuilds from it on the next request.
const cartIdleTTL = 2 * time.Hour

// cartManager hands out one cart store per browser session. Each store
// owns a single persistence slot keyed by the session id. Idle entries
// are evicted on lookup so the map does not grow with every visitor
// cookie ever seen; stores with live feed subscribers are kept.
type cartManager struct {
	mu      sync.Mutex
	entries map[string]*cartEntry
	maxIdle time.Duration
	now     func() time.Time
}

type cartEntry struct {
	store    *cart.Store
	lastUsed time.Time
}

func newCartManager(maxIdle time.Duration) *cartManager {
	return &cartManager{
		entries: make(map[string]*cartEntry),
		maxIdle: maxIdle,
		now:     time.Now,
	}
}

func (m *cartManager) get(sessionID string) *cart.Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked()
	if e, ok := m.entries[sessionID]; ok {
		e.lastUsed = m.now()
		return e.store
	}
	s := cart.NewStore(cart.NewDBSlot(config.DB, "cart:"+sessionID))
	m.entries[sessionID] = &cartEntry{store: s, lastUsed: m.now()}
	return s
}

func (m *cartManager) pruneLocked() {
	cutoff := m.now().Add(-m.maxIdle)
	for sid, e := range m.entries {
		if e.lastUsed.Before(cutoff) && !e.store.HasSubscribers() {
			delete(m.entries, sid)
		}
	}
}

const (
	cartCookie   = "cart_session"
	viewedCookie = "menu_viewed"
)

// cartSession returns the caller's cart session id, minting one and
// setting a session cookie on first contact
func cartSession(c *gin.Context) string {
	if sid, err := c.Cookie(cartCookie); err == nil && sid != "" {
		return sid
	}
	sid := uuid.NewString()
	c.SetCookie(cartCookie, sid, 0, "/", "", false, true)
	return sid
}

func sessionCart(c *gin.Context) *cart.Store {
	return carts.get(cartSession(c))
}
