package state

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexshop/marketplace/internal/application"
	"github.com/nexshop/marketplace/internal/domain/entity"
	"github.com/nexshop/marketplace/internal/store"
)

type notices struct{ msgs []string }

func (n *notices) add(msg string) { n.msgs = append(n.msgs, msg) }

func (n *notices) contains(sub string) bool {
	for _, m := range n.msgs {
		if strings.Contains(m, sub) {
			return true
		}
	}
	return false
}

func newTestContainer(t *testing.T) (*Container, *application.Service, *notices) {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, store.Seed(ctx, st))
	svc := application.NewService(st, nil, nil)
	n := &notices{}
	return NewContainer(ctx, svc, st, nil, n.add), svc, n
}

// registers, verifies and logs a fresh buyer into the container
func loginFreshBuyer(t *testing.T, c *Container, svc *application.Service, verify bool) *entity.User {
	t.Helper()
	ctx := context.Background()
	res, err := svc.Register(ctx, "fresh@test.com", "pw123456", "Fresh Buyer")
	require.NoError(t, err)
	if verify {
		_, err = svc.VerifyEmail(ctx, res.Token)
		require.NoError(t, err)
	}
	c.Login(ctx, "fresh@test.com", "pw123456")
	u := c.Snapshot().User
	require.NotNil(t, u, "login must populate the session user")
	return u
}

func TestCheckoutRequiresLogin(t *testing.T) {
	ctx := context.Background()
	c, svc, n := newTestContainer(t)

	c.Checkout(ctx)

	s := c.Snapshot()
	assert.Equal(t, ViewLogin, s.View)
	assert.Empty(t, s.SelectedOrderID)
	assert.True(t, n.contains("log in"))

	orders, err := svc.GetMyOrders(ctx, "anyone")
	require.NoError(t, err)
	assert.Empty(t, orders, "no order may exist after a failed guard")
}

func TestCheckoutRequiresVerifiedEmail(t *testing.T) {
	ctx := context.Background()
	c, svc, n := newTestContainer(t)
	loginFreshBuyer(t, c, svc, false)

	c.Checkout(ctx)

	assert.Equal(t, ViewVerifyEmail, c.Snapshot().View)
	assert.True(t, n.contains("verify"))
}

func TestCheckoutRequiresCompleteProfile(t *testing.T) {
	ctx := context.Background()
	c, svc, _ := newTestContainer(t)
	u := loginFreshBuyer(t, c, svc, true)

	_, err := svc.AddToCart(ctx, u.ID, "1", 1)
	require.NoError(t, err)

	c.Checkout(ctx)

	assert.Equal(t, ViewProfile, c.Snapshot().View)
	orders, err := svc.GetMyOrders(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)

	// cart survives the failed attempt
	cart, err := svc.GetCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, cart, 1)
}

func TestCheckoutEmptyCart(t *testing.T) {
	ctx := context.Background()
	c, _, n := newTestContainer(t)

	// seeded buyer is verified with a complete profile
	c.Login(ctx, "buyer@nexshop.dev", "buyer123")
	require.NotNil(t, c.Snapshot().User)

	c.Checkout(ctx)

	assert.True(t, n.contains("cart is empty"))
	assert.NotEqual(t, ViewCheckoutSuccess, c.Snapshot().View)
}

func TestFullPurchaseFlow(t *testing.T) {
	ctx := context.Background()
	c, svc, _ := newTestContainer(t)
	u := loginFreshBuyer(t, c, svc, true)

	c.AddToCart(ctx, "Mechanical Gaming Keyboard", 2)
	require.Len(t, c.Snapshot().Cart, 1)

	c.UpdateProfile(ctx, application.ProfileInput{
		Address:    "123 Main St",
		CardNumber: "4111111111111111",
		CardExpiry: "09/29",
	})

	c.Checkout(ctx)

	s := c.Snapshot()
	assert.Equal(t, ViewCheckoutSuccess, s.View)
	require.NotEmpty(t, s.SelectedOrderID)
	assert.Empty(t, s.Cart, "cart is cleared after a successful checkout")
	require.Len(t, s.Orders, 1)
	assert.Equal(t, s.SelectedOrderID, s.Orders[0].ID)
	assert.Equal(t, "card ending 1111", s.Orders[0].PaymentMethod)

	cart, err := svc.GetCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func TestSessionRestoredOnStartup(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, store.Seed(ctx, st))
	svc := application.NewService(st, nil, nil)

	first := NewContainer(ctx, svc, st, nil, nil)
	first.Login(ctx, "buyer@nexshop.dev", "buyer123")
	first.AddToCart(ctx, "1", 1)

	// a fresh container over the same store resumes the session
	second := NewContainer(ctx, svc, st, nil, nil)
	s := second.Snapshot()
	require.NotNil(t, s.User)
	assert.Equal(t, "Dev Buyer", s.User.Name)
	assert.Len(t, s.Cart, 1)
}

func TestLogoutDropsPersistedSession(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, store.Seed(ctx, st))
	svc := application.NewService(st, nil, nil)

	c := NewContainer(ctx, svc, st, nil, nil)
	c.Login(ctx, "buyer@nexshop.dev", "buyer123")
	c.Logout(ctx)

	assert.Nil(t, c.Snapshot().User)
	_, ok := store.GetValue[entity.User](ctx, st, store.KeySession)
	assert.False(t, ok)

	fresh := NewContainer(ctx, svc, st, nil, nil)
	assert.Nil(t, fresh.Snapshot().User)
}

func TestNavigateToRejectsUnknownView(t *testing.T) {
	c, _, n := newTestContainer(t)

	c.NavigateTo("cart")
	assert.Equal(t, ViewCart, c.Snapshot().View)

	c.NavigateTo("launch-missiles")
	assert.Equal(t, ViewCart, c.Snapshot().View, "unknown view must not change the screen")
	assert.True(t, n.contains("Unknown screen"))
}

func TestAddToCartRequiresLogin(t *testing.T) {
	ctx := context.Background()
	c, _, n := newTestContainer(t)

	c.AddToCart(ctx, "1", 1)

	assert.Equal(t, ViewLogin, c.Snapshot().View)
	assert.True(t, n.contains("log in"))
	assert.Empty(t, c.Snapshot().Cart)
}

func TestLoginFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	c, _, n := newTestContainer(t)

	c.Login(ctx, "buyer@nexshop.dev", "wrong")

	assert.Nil(t, c.Snapshot().User)
	assert.True(t, n.contains("Invalid email or password"))
}

func TestCompareListCapsAtFour(t *testing.T) {
	ctx := context.Background()
	c, _, n := newTestContainer(t)

	for _, id := range []string{"1", "2", "3", "4", "5"} {
		c.CompareProduct(ctx, id)
	}
	s := c.Snapshot()
	assert.Len(t, s.CompareList, 4)
	assert.Equal(t, ViewCompare, s.View)
	assert.True(t, n.contains("up to 4"))

	// duplicates never grow the list
	c.CompareProduct(ctx, "1")
	assert.Len(t, c.Snapshot().CompareList, 4)
}

func TestSellerTabAnalytics(t *testing.T) {
	ctx := context.Background()
	c, svc, _ := newTestContainer(t)

	// a buyer purchases two of the seeded seller's keyboards
	items, err := svc.AddToCart(ctx, "u1", "1", 2)
	require.NoError(t, err)
	_, err = svc.Checkout(ctx, application.CheckoutInput{
		UserID: "u1", ShippingAddress: "123 Main St", PaymentMethod: "card", Items: items,
	})
	require.NoError(t, err)

	// anonymous: tab switches but no numbers load
	c.SetSellerTab(ctx, "analytics")
	s := c.Snapshot()
	assert.Equal(t, ViewSellerDashboard, s.View)
	assert.Equal(t, "analytics", s.SellerTab)
	assert.Nil(t, s.Analytics)

	// the seller sees their own aggregates
	c.Login(ctx, "gaming@nexshop.dev", "seller123")
	c.SetSellerTab(ctx, "analytics")
	s = c.Snapshot()
	require.NotNil(t, s.Analytics)
	assert.Equal(t, 2, s.Analytics.TotalSales)
	assert.Equal(t, "Mechanical Gaming Keyboard", s.Analytics.TopProduct)

	// other tabs leave the cached numbers alone
	c.SetSellerTab(ctx, "orders")
	assert.Equal(t, "orders", c.Snapshot().SellerTab)
}

func TestViewProductLoadsReviews(t *testing.T) {
	ctx := context.Background()
	c, svc, n := newTestContainer(t)

	_, err := svc.SubmitReview(ctx, application.ReviewInput{
		ProductID: "1", UserID: "u1", UserName: "Dev", Rating: 5, Comment: "solid",
	})
	require.NoError(t, err)

	c.ViewProduct(ctx, "mechanical gaming keyboard")

	s := c.Snapshot()
	assert.Equal(t, ViewProductDetail, s.View)
	assert.Equal(t, "1", s.SelectedProductID)
	require.Len(t, s.Reviews, 1)
	assert.Equal(t, "solid", s.Reviews[0].Comment)

	c.ViewProduct(ctx, "no such thing")
	assert.Equal(t, ViewProductDetail, c.Snapshot().View, "unresolvable product is a no-op")
	assert.True(t, n.contains("Product not found"))
}

func TestSearchUpdatesResults(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestContainer(t)

	c.Search(ctx, "keyboard", application.SearchFilter{})

	s := c.Snapshot()
	assert.Equal(t, ViewSearch, s.View)
	assert.Equal(t, "keyboard", s.SearchQuery)
	require.NotEmpty(t, s.Results)
	for _, p := range s.Results {
		assert.Contains(t, strings.ToLower(p.Name), "keyboard")
	}
}
