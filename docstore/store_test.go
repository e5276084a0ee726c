package docstore

import (
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// in-memory sqlite is per-connection
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, Migrate(db))
	return New(db)
}

func TestAddAndGet(t *testing.T) {
	s := testStore(t)

	id, err := s.Add("categories", map[string]any{"name": "Cakes"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := s.Get("categories", id)
	require.NoError(t, err)
	assert.Equal(t, "Cakes", doc.Data["name"])
	assert.False(t, doc.CreatedAt.IsZero())
}

func TestTimestampsAreMonotonic(t *testing.T) {
	s := testStore(t)

	a, err := s.Add("categories", map[string]any{"name": "A"})
	require.NoError(t, err)
	b, err := s.Add("categories", map[string]any{"name": "B"})
	require.NoError(t, err)

	docA, err := s.Get("categories", a)
	require.NoError(t, err)
	docB, err := s.Get("categories", b)
	require.NoError(t, err)
	assert.True(t, docB.CreatedAt.After(docA.CreatedAt),
		"back-to-back writes still order strictly")
}

func TestGetMissing(t *testing.T) {
	s := testStore(t)
	_, err := s.Get("categories", "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMergesFields(t *testing.T) {
	s := testStore(t)
	id, err := s.Add("categories", map[string]any{"name": "Cakes", "imageUrl": "x"})
	require.NoError(t, err)

	require.NoError(t, s.Update("categories", id, map[string]any{"name": "Pastries"}))

	doc, err := s.Get("categories", id)
	require.NoError(t, err)
	assert.Equal(t, "Pastries", doc.Data["name"])
	assert.Equal(t, "x", doc.Data["imageUrl"], "untouched fields survive")
}

func TestUpdateMissingErrors(t *testing.T) {
	s := testStore(t)
	err := s.Update("categories", "nope", map[string]any{"name": "X"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetUpsertsWithMerge(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.Set("settings", "deliveryCharge", map[string]any{"amount": 50}))
	require.NoError(t, s.Set("settings", "deliveryCharge", map[string]any{"amount": 80}))

	doc, err := s.Get("settings", "deliveryCharge")
	require.NoError(t, err)
	assert.Equal(t, float64(80), doc.Data["amount"], "last write wins")
}

func TestIncrementCreatesAndAdds(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.Increment("settings", "pageViews", "count", 1))
	require.NoError(t, s.Increment("settings", "pageViews", "count", 1))

	doc, err := s.Get("settings", "pageViews")
	require.NoError(t, err)
	assert.Equal(t, float64(2), doc.Data["count"])
}

func TestConcurrentIncrementsLoseNothing(t *testing.T) {
	s := testStore(t)

	const goroutines = 25
	const perGoroutine = 4

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				assert.NoError(t, s.Increment("settings", "pageViews", "count", 1))
			}
		}()
	}
	wg.Wait()

	doc, err := s.Get("settings", "pageViews")
	require.NoError(t, err)
	assert.Equal(t, float64(goroutines*perGoroutine), doc.Data["count"])
}

func TestDeleteCollection(t *testing.T) {
	s := testStore(t)
	_, err := s.Add("categories/c1/products", map[string]any{"name": "A"})
	require.NoError(t, err)
	_, err = s.Add("categories/c1/products", map[string]any{"name": "B"})
	require.NoError(t, err)
	keep, err := s.Add("categories/c2/products", map[string]any{"name": "C"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteCollection("categories/c1/products"))

	docs, err := s.List("categories/c1/products")
	require.NoError(t, err)
	assert.Empty(t, docs)

	_, err = s.Get("categories/c2/products", keep)
	assert.NoError(t, err, "other collections are untouched")
}

func TestSubscribeDeliversOnEveryMutation(t *testing.T) {
	s := testStore(t)

	var sets [][]Doc
	unsub := s.Subscribe("categories", func(docs []Doc) {
		sets = append(sets, docs)
	})

	require.Len(t, sets, 1, "current set delivered immediately")
	assert.Empty(t, sets[0])

	id, err := s.Add("categories", map[string]any{"name": "Cakes"})
	require.NoError(t, err)
	require.Len(t, sets, 2)
	require.Len(t, sets[1], 1)

	require.NoError(t, s.Update("categories", id, map[string]any{"name": "Breads"}))
	require.Len(t, sets, 3)
	assert.Equal(t, "Breads", sets[2][0].Data["name"])

	require.NoError(t, s.Delete("categories", id))
	require.Len(t, sets, 4)
	assert.Empty(t, sets[3], "full set re-delivered, no incremental patching")

	unsub()
	unsub() // idempotent
	_, err = s.Add("categories", map[string]any{"name": "After"})
	require.NoError(t, err)
	assert.Len(t, sets, 4, "no delivery after teardown")
}

func TestSubscriptionsAreScopedByPath(t *testing.T) {
	s := testStore(t)

	catCalls, prodCalls := 0, 0
	defer s.Subscribe("categories", func([]Doc) { catCalls++ })()
	defer s.Subscribe("categories/c1/products", func([]Doc) { prodCalls++ })()

	_, err := s.Add("categories/c1/products", map[string]any{"name": "A"})
	require.NoError(t, err)

	assert.Equal(t, 1, catCalls, "parent collection unaffected by sub-collection writes")
	assert.Equal(t, 2, prodCalls)
}
