package handlers

import (
	"testing"
	"time"

	"bakery-menu-api/cart"
	"bakery-menu-api/config"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testManager(t *testing.T) (*cartManager, *time.Time) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// in-memory sqlite is per-connection
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, cart.Migrate(db))

	prev := config.DB
	config.DB = db
	t.Cleanup(func() { config.DB = prev })

	clock := time.Now()
	m := newCartManager(time.Hour)
	m.now = func() time.Time { return clock }
	return m, &clock
}

func TestCartManagerEvictsIdleSessions(t *testing.T) {
	m, clock := testManager(t)

	a := m.get("a")
	require.NoError(t, a.Add(cart.Item{
		ProductID: "p1", Name: "Brownie", Price: 120, Portion: cart.PortionFull, Quantity: 2,
	}))

	*clock = clock.Add(2 * time.Hour)
	m.get("b")

	assert.NotContains(t, m.entries, "a", "idle session dropped from the map")

	// a fresh lookup rebuilds the store from its slot
	revived := m.get("a")
	assert.NotSame(t, a, revived)
	items := revived.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestCartManagerKeepsRecentlyUsedSessions(t *testing.T) {
	m, clock := testManager(t)

	first := m.get("a")
	*clock = clock.Add(30 * time.Minute)
	m.get("b")

	assert.Same(t, first, m.get("a"))
}

func TestCartManagerRetainsSubscribedStores(t *testing.T) {
	m, clock := testManager(t)

	s := m.get("a")
	unsub := s.Subscribe(func() {})

	*clock = clock.Add(2 * time.Hour)
	m.get("b")
	assert.Contains(t, m.entries, "a", "live feed listener pins the store")

	unsub()
	*clock = clock.Add(2 * time.Hour)
	m.get("c")
	assert.NotContains(t, m.entries, "a")
}
