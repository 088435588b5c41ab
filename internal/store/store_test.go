package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexshop/marketplace/internal/domain/entity"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	products := []entity.Product{
		{ID: "1", Name: "Keyboard", Price: 129.99, Category: entity.CategoryGaming, Specs: []string{"RGB"}},
		{ID: "2", Name: "Mouse", Price: 99.99, Category: entity.CategoryGaming},
	}
	require.NoError(t, SetTable(ctx, s, TableProducts, products))

	got := GetTable[entity.Product](ctx, s, TableProducts)
	require.Len(t, got, 2)
	assert.Equal(t, "Keyboard", got[0].Name)
	assert.Equal(t, []string{"RGB"}, got[0].Specs)
	assert.InDelta(t, 99.99, got[1].Price, 0.001)
}

func TestGetTableAbsentOrMalformed(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	// absent key reads as an empty table
	assert.Empty(t, GetTable[entity.Product](ctx, s, TableProducts))

	// malformed JSON reads as an empty table, not an error
	require.NoError(t, s.Set(ctx, TableProducts, []byte("{not json")))
	assert.Empty(t, GetTable[entity.Product](ctx, s, TableProducts))
}

func TestGetSetValue(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, ok := GetValue[map[string]string](ctx, s, TableTokens)
	assert.False(t, ok)

	require.NoError(t, SetValue(ctx, s, TableTokens, map[string]string{"ABC123": "u1"}))
	tokens, ok := GetValue[map[string]string](ctx, s, TableTokens)
	require.True(t, ok)
	assert.Equal(t, "u1", tokens["ABC123"])
}

func TestSeedOnlyWritesAbsentTables(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, Seed(ctx, s))
	products := GetTable[entity.Product](ctx, s, TableProducts)
	require.Len(t, products, 8)
	users := GetTable[entity.User](ctx, s, TableUsers)
	require.NotEmpty(t, users)
	for _, u := range users {
		assert.True(t, u.IsVerified, "seed accounts are pre-verified")
		assert.NotEmpty(t, u.PasswordHash)
	}

	// a second seed must not clobber user-created data
	custom := []entity.Product{{ID: "x", Name: "Custom"}}
	require.NoError(t, SetTable(ctx, s, TableProducts, custom))
	require.NoError(t, Seed(ctx, s))
	assert.Len(t, GetTable[entity.Product](ctx, s, TableProducts), 1)
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, SetTable(ctx, s, CartKey("u1"), []entity.CartItem{
		{Product: entity.Product{ID: "1", Name: "Keyboard", Price: 129.99}, Quantity: 2},
	}))

	// cart keys contain a colon; the file name must be sanitized
	matches, err := filepath.Glob(filepath.Join(dir, "*"))
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	items := GetTable[entity.CartItem](ctx, s, CartKey("u1"))
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)

	require.NoError(t, s.Delete(ctx, CartKey("u1")))
	assert.Empty(t, GetTable[entity.CartItem](ctx, s, CartKey("u1")))
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s1, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, SetValue(ctx, s1, KeySession, entity.User{ID: "u1", Name: "Dev Buyer"}))

	s2, err := NewFileStore(dir)
	require.NoError(t, err)
	u, ok := GetValue[entity.User](ctx, s2, KeySession)
	require.True(t, ok)
	assert.Equal(t, "Dev Buyer", u.Name)
}
