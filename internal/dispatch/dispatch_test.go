package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexshop/marketplace/internal/application"
	"github.com/nexshop/marketplace/internal/state"
	"github.com/nexshop/marketplace/internal/store"
)

func newDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, store.Seed(ctx, st))
	svc := application.NewService(st, nil, nil)
	return NewDispatcher(state.NewContainer(ctx, svc, st, nil, nil))
}

func TestFromToolCallNamesAreCaseInsensitive(t *testing.T) {
	for _, name := range []string{"searchProducts", "SEARCHPRODUCTS", "searchproducts"} {
		cmd, err := FromToolCall(name, map[string]any{"query": "keyboard"})
		require.NoError(t, err, name)
		s, ok := cmd.(Search)
		require.True(t, ok)
		assert.Equal(t, "keyboard", s.Query)
	}
}

func TestFromToolCallAcceptsBothArgStyles(t *testing.T) {
	// camelCase, the way the model's declarations spell them
	cmd, err := FromToolCall("addToCart", map[string]any{"productId": "1", "quantity": float64(2)})
	require.NoError(t, err)
	add := cmd.(AddToCart)
	assert.Equal(t, "1", add.Product)
	assert.Equal(t, 2, add.Quantity)

	// snake_case still lands
	cmd, err = FromToolCall("addToCart", map[string]any{"product_id": "2"})
	require.NoError(t, err)
	assert.Equal(t, "2", cmd.(AddToCart).Product)

	cmd, err = FromToolCall("searchProducts", map[string]any{
		"minPrice": float64(100), "max_price": float64(400),
	})
	require.NoError(t, err)
	s := cmd.(Search)
	require.NotNil(t, s.MinPrice)
	require.NotNil(t, s.MaxPrice)
	assert.InDelta(t, 100, *s.MinPrice, 0.001)
	assert.InDelta(t, 400, *s.MaxPrice, 0.001)

	// absent bounds stay nil rather than becoming zero
	cmd, err = FromToolCall("searchProducts", map[string]any{"query": "mic"})
	require.NoError(t, err)
	assert.Nil(t, cmd.(Search).MinPrice)
}

func TestFromToolCallUnknownTool(t *testing.T) {
	_, err := FromToolCall("deleteAllOrders", nil)
	var ute *UnknownToolError
	require.ErrorAs(t, err, &ute)
	assert.Equal(t, "deleteAllOrders", ute.Name)
}

func TestDispatchAddToCartUnknownProductIsNoOp(t *testing.T) {
	ctx := context.Background()
	d := newDispatcher(t)

	d.State.Login(ctx, "buyer@nexshop.dev", "buyer123")
	require.NotNil(t, d.State.Snapshot().User)

	require.NoError(t, d.Dispatch(ctx, AddToCart{Product: "no-such-product", Quantity: 1}))
	assert.Empty(t, d.State.Snapshot().Cart)

	// a zero quantity is clamped to one
	require.NoError(t, d.Dispatch(ctx, AddToCart{Product: "1"}))
	cart := d.State.Snapshot().Cart
	require.Len(t, cart, 1)
	assert.Equal(t, 1, cart[0].Quantity)
}

func TestDispatchSearchNormalizesCategory(t *testing.T) {
	ctx := context.Background()
	d := newDispatcher(t)

	require.NoError(t, d.Dispatch(ctx, Search{Query: "", Category: "AUDIO"}))
	s := d.State.Snapshot()
	require.NotEmpty(t, s.Results)
	for _, p := range s.Results {
		assert.Equal(t, "Audio", string(p.Category))
	}

	// an unrecognized category is dropped, not matched against nothing
	require.NoError(t, d.Dispatch(ctx, Search{Category: "Kitchenware"}))
	assert.Len(t, d.State.Snapshot().Results, 8)
}

func TestDispatchLoginWithoutEmailNavigates(t *testing.T) {
	ctx := context.Background()
	d := newDispatcher(t)

	// "log me in" with no credentials opens the login screen instead of
	// attempting an empty authentication
	require.NoError(t, d.Dispatch(ctx, Login{}))
	s := d.State.Snapshot()
	assert.Equal(t, state.ViewLogin, s.View)
	assert.Nil(t, s.User)
}

func TestMatchStatus(t *testing.T) {
	assert.Equal(t, "Shipped", string(matchStatus("shipped")))
	assert.Equal(t, "Cancelled", string(matchStatus("CANCELLED")))
	// unmatched strings pass through for the operations layer to reject
	assert.Equal(t, "Teleported", string(matchStatus("Teleported")))
}

func TestDispatchNavigateAndCompare(t *testing.T) {
	ctx := context.Background()
	d := newDispatcher(t)

	require.NoError(t, d.Dispatch(ctx, NavigateTo{View: "orders"}))
	assert.Equal(t, state.ViewOrders, d.State.Snapshot().View)

	require.NoError(t, d.Dispatch(ctx, CompareProduct{Product: "sony wh-1000xm5"}))
	s := d.State.Snapshot()
	assert.Equal(t, state.ViewCompare, s.View)
	assert.Equal(t, []string{"3"}, s.CompareList)
}
