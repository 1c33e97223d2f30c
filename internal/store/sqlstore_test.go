package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"larder/internal/models"
)

func newTestSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := NewSQLStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLStore_RoundTrip(t *testing.T) {
	s := newTestSQLStore(t)

	recipes := []models.Recipe{
		{ID: "r1", Name: "Lentil Soup", Ingredients: []models.Ingredient{{ItemID: "i1", Name: "Lentils", Quantity: 1}}},
		{ID: "r2", Name: "Toast", Ingredients: []models.Ingredient{{ItemID: "i2", Name: "Bread", Quantity: 2}}},
	}
	require.NoError(t, s.Save(CollectionRecipes, recipes))

	var loaded []models.Recipe
	require.NoError(t, s.Load(CollectionRecipes, &loaded))
	assert.Equal(t, recipes, loaded)
}

func TestSQLStore_EmptyCollection(t *testing.T) {
	s := newTestSQLStore(t)

	var users []models.User
	require.NoError(t, s.Load(CollectionUsers, &users))
	assert.Empty(t, users)
}

func TestSQLStore_SaveReplacesAndKeepsOrder(t *testing.T) {
	s := newTestSQLStore(t)

	first := []models.InventoryItem{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	require.NoError(t, s.Save(CollectionInventory, first))
	second := []models.InventoryItem{{ID: "c"}, {ID: "a"}}
	require.NoError(t, s.Save(CollectionInventory, second))

	var loaded []models.InventoryItem
	require.NoError(t, s.Load(CollectionInventory, &loaded))
	require.Len(t, loaded, 2)
	assert.Equal(t, "c", loaded[0].ID)
	assert.Equal(t, "a", loaded[1].ID)
}

func TestSQLStore_CollectionsAreIsolated(t *testing.T) {
	s := newTestSQLStore(t)

	require.NoError(t, s.Save(CollectionUsers, []models.User{{ID: "u1"}}))
	require.NoError(t, s.Save(CollectionInventory, []models.InventoryItem{{ID: "i1"}}))

	var users []models.User
	require.NoError(t, s.Load(CollectionUsers, &users))
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].ID)
}
