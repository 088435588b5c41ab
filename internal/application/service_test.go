package application

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexshop/marketplace/internal/domain/entity"
	"github.com/nexshop/marketplace/internal/gateway"
	"github.com/nexshop/marketplace/internal/store"
)

func newLocalService(t *testing.T) *Service {
	t.Helper()
	st := store.NewMemoryStore()
	require.NoError(t, store.Seed(context.Background(), st))
	return NewService(st, nil, nil)
}

func TestRegisterAndVerify(t *testing.T) {
	ctx := context.Background()
	svc := newLocalService(t)

	res, err := svc.Register(ctx, "new@test.com", "pw123456", "Newbie")
	require.NoError(t, err)
	assert.False(t, res.User.IsVerified)
	assert.Equal(t, entity.RoleBuyer, res.User.Role)
	assert.Empty(t, res.User.PasswordHash, "register must not leak the hash")
	require.NotEmpty(t, res.Token)

	// duplicate email, case-insensitive
	_, err = svc.Register(ctx, "NEW@TEST.COM", "other", "Other")
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	u, err := svc.VerifyEmail(ctx, res.Token)
	require.NoError(t, err)
	assert.True(t, u.IsVerified)

	// token is single-use
	_, err = svc.VerifyEmail(ctx, res.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc := newLocalService(t)

	u, err := svc.Login(ctx, "buyer@nexshop.dev", "buyer123")
	require.NoError(t, err)
	assert.Equal(t, "Dev Buyer", u.Name)
	assert.Empty(t, u.PasswordHash)

	_, err = svc.Login(ctx, "buyer@nexshop.dev", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@nexshop.dev", "buyer123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAddToCartMergesRows(t *testing.T) {
	ctx := context.Background()
	svc := newLocalService(t)

	items, err := svc.AddToCart(ctx, "u1", "1", 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)

	// same product again: quantity increments, no second row
	items, err = svc.AddToCart(ctx, "u1", "1", 2)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)

	// different product: second row
	items, err = svc.AddToCart(ctx, "u1", "2", 1)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	// unknown product id
	_, err = svc.AddToCart(ctx, "u1", "no-such-product", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckoutSnapshotImmutability(t *testing.T) {
	ctx := context.Background()
	svc := newLocalService(t)

	items, err := svc.AddToCart(ctx, "u1", "1", 2)
	require.NoError(t, err)
	unitPrice := items[0].Product.Price

	order, err := svc.Checkout(ctx, CheckoutInput{
		UserID:          "u1",
		ShippingAddress: "123 Main St",
		PaymentMethod:   "card ending 4242",
		Items:           items,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderPending, order.Status)
	assert.InDelta(t, unitPrice*2, order.Total, 0.001)

	// checkout does not clear the cart; that is the caller's step
	cart, err := svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, cart, 1)

	// a later price change must not rewrite the order
	newPrice := unitPrice * 10
	_, err = svc.UpdateProduct(ctx, "1", UpdateProductInput{Price: &newPrice})
	require.NoError(t, err)

	orders, err := svc.GetMyOrders(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.InDelta(t, unitPrice*2, orders[0].Total, 0.001)
	assert.InDelta(t, unitPrice, orders[0].Items[0].Price, 0.001)
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc := newLocalService(t)
	_, err := svc.Checkout(context.Background(), CheckoutInput{UserID: "u1"})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestOrderStatusTransitions(t *testing.T) {
	ctx := context.Background()
	svc := newLocalService(t)

	items, err := svc.AddToCart(ctx, "u1", "1", 1)
	require.NoError(t, err)
	order, err := svc.Checkout(ctx, CheckoutInput{
		UserID: "u1", ShippingAddress: "123 Main St", PaymentMethod: "card", Items: items,
	})
	require.NoError(t, err)

	// Pending cannot jump to Delivered
	_, err = svc.UpdateOrderStatus(ctx, order.ID, entity.OrderDelivered)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err := svc.UpdateOrderStatus(ctx, order.ID, entity.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderShipped, got.Status)

	got, err = svc.UpdateOrderStatus(ctx, order.ID, entity.OrderDelivered)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderDelivered, got.Status)

	// Delivered is terminal
	_, err = svc.UpdateOrderStatus(ctx, order.ID, entity.OrderCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// unknown order id is an explicit error, not a silent no-op
	_, err = svc.UpdateOrderStatus(ctx, "no-such-order", entity.OrderShipped)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSellerOrders(t *testing.T) {
	ctx := context.Background()
	svc := newLocalService(t)

	// product "1" is sold by s1
	items, err := svc.AddToCart(ctx, "u1", "1", 1)
	require.NoError(t, err)
	_, err = svc.Checkout(ctx, CheckoutInput{
		UserID: "u1", ShippingAddress: "123 Main St", PaymentMethod: "card", Items: items,
	})
	require.NoError(t, err)

	orders, err := svc.GetSellerOrders(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	orders, err = svc.GetSellerOrders(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestSubmitReview(t *testing.T) {
	ctx := context.Background()
	svc := newLocalService(t)

	for _, bad := range []int{0, 6, -1} {
		_, err := svc.SubmitReview(ctx, ReviewInput{ProductID: "1", UserID: "u1", Rating: bad})
		assert.ErrorIs(t, err, ErrInvalidRating, "rating %d must be rejected", bad)
	}

	_, err := svc.SubmitReview(ctx, ReviewInput{ProductID: "no-such", UserID: "u1", Rating: 5})
	assert.ErrorIs(t, err, ErrNotFound)

	r1, err := svc.SubmitReview(ctx, ReviewInput{ProductID: "1", UserID: "u1", UserName: "Dev", Rating: 5, Comment: "great"})
	require.NoError(t, err)

	// append-only: a second review is a new row, never an edit
	r2, err := svc.SubmitReview(ctx, ReviewInput{ProductID: "1", UserID: "u1", UserName: "Dev", Rating: 2, Comment: "changed my mind"})
	require.NoError(t, err)
	assert.NotEqual(t, r1.ID, r2.ID)

	reviews, err := svc.GetReviews(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestAddProductPromotesSeller(t *testing.T) {
	ctx := context.Background()
	svc := newLocalService(t)

	buyer, err := svc.Login(ctx, "buyer@nexshop.dev", "buyer123")
	require.NoError(t, err)
	require.Equal(t, entity.RoleBuyer, buyer.Role)

	p, err := svc.AddProduct(ctx, AddProductInput{Name: "Handmade Desk Mat", Price: 25}, buyer)
	require.NoError(t, err)
	assert.Equal(t, buyer.ID, p.SellerID)
	assert.Equal(t, entity.CategoryElectronics, p.Category, "invalid category falls back to the default")

	u, err := svc.GetUser(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSeller, u.Role)
}

func TestHappyPathPurchase(t *testing.T) {
	ctx := context.Background()
	svc := newLocalService(t)

	res, err := svc.Register(ctx, "buyer@test.com", "pw123456", "Tester")
	require.NoError(t, err)
	_, err = svc.VerifyEmail(ctx, res.Token)
	require.NoError(t, err)
	u, err := svc.Login(ctx, "buyer@test.com", "pw123456")
	require.NoError(t, err)

	items, err := svc.AddToCart(ctx, u.ID, "1", 2)
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, u.ID, ProfileInput{Address: "123 Main St", CardNumber: "4111111111111111"})
	require.NoError(t, err)

	order, err := svc.Checkout(ctx, CheckoutInput{
		UserID: u.ID, ShippingAddress: "123 Main St", PaymentMethod: "card", Items: items,
	})
	require.NoError(t, err)
	assert.InDelta(t, items[0].Product.Price*2, order.Total, 0.001)

	require.NoError(t, svc.ClearCart(ctx, u.ID))
	cart, err := svc.GetCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)

	orders, err := svc.GetMyOrders(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
}

func TestSellerAnalytics(t *testing.T) {
	ctx := context.Background()
	svc := newLocalService(t)

	// no sales yet
	a, err := svc.GetSellerAnalytics(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, a.TotalRevenue)
	assert.Zero(t, a.TotalSales)
	assert.Empty(t, a.TopProduct)
	assert.Empty(t, a.MonthlyRevenue)

	// products "1" ($129.99) and "5" ($699.99) belong to s1, "3" to s3
	items, err := svc.AddToCart(ctx, "u1", "1", 2)
	require.NoError(t, err)
	items, err = svc.AddToCart(ctx, "u1", "3", 1)
	require.NoError(t, err)
	_, err = svc.Checkout(ctx, CheckoutInput{
		UserID: "u1", ShippingAddress: "123 Main St", PaymentMethod: "card", Items: items,
	})
	require.NoError(t, err)

	a, err = svc.GetSellerAnalytics(ctx, "s1")
	require.NoError(t, err)
	assert.InDelta(t, 129.99*2, a.TotalRevenue, 0.001, "only the seller's own lines count")
	assert.Equal(t, 2, a.TotalSales)
	assert.Equal(t, "Mechanical Gaming Keyboard", a.TopProduct)
	require.Len(t, a.MonthlyRevenue, 1)
	assert.Equal(t, time.Now().UTC().Format("2006-01"), a.MonthlyRevenue[0].Month)
	assert.InDelta(t, 129.99*2, a.MonthlyRevenue[0].Revenue, 0.001)

	// a cancelled order drops out of the numbers
	require.NoError(t, svc.ClearCart(ctx, "u1"))
	items, err = svc.AddToCart(ctx, "u1", "5", 1)
	require.NoError(t, err)
	order, err := svc.Checkout(ctx, CheckoutInput{
		UserID: "u1", ShippingAddress: "123 Main St", PaymentMethod: "card", Items: items,
	})
	require.NoError(t, err)
	_, err = svc.UpdateOrderStatus(ctx, order.ID, entity.OrderCancelled)
	require.NoError(t, err)

	a, err = svc.GetSellerAnalytics(ctx, "s1")
	require.NoError(t, err)
	assert.InDelta(t, 129.99*2, a.TotalRevenue, 0.001)
	assert.Equal(t, 2, a.TotalSales)
}

func TestRecordSentiment(t *testing.T) {
	ctx := context.Background()
	svc := newLocalService(t)

	rec, err := svc.RecordSentiment(ctx, SentimentInput{
		UserID:      "u1",
		UserName:    "Dev",
		Score:       entity.SentimentPositive,
		Summary:     "found a keyboard fast",
		RawMessages: []string{"show me keyboards", "here are two options"},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SentimentPositive, rec.Score)
	assert.Equal(t, 2, rec.RawMessages, "records keep the message count, not the transcript")

	// anything outside the known scores normalizes to neutral
	rec, err = svc.RecordSentiment(ctx, SentimentInput{UserName: "Guest", Score: "Ecstatic"})
	require.NoError(t, err)
	assert.Equal(t, entity.SentimentNeutral, rec.Score)
	assert.Zero(t, rec.RawMessages)

	recs, err := svc.GetSentiments(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

// remote behavior

func newRemoteService(t *testing.T, handler http.Handler) (*Service, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	st := store.NewMemoryStore()
	require.NoError(t, store.Seed(context.Background(), st))
	remote := gateway.NewClient(srv.URL, time.Second, nil)
	return NewService(st, remote, nil), srv
}

func TestRemoteRejectionNeverMasked(t *testing.T) {
	ctx := context.Background()
	svc, _ := newRemoteService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"invalid credentials"}`))
	}))

	// the local table would accept these credentials, but the remote
	// said no, so the rejection must win
	_, err := svc.Login(ctx, "buyer@nexshop.dev", "buyer123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUnreachableRemoteFallsBack(t *testing.T) {
	ctx := context.Background()
	svc, srv := newRemoteService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	products, err := svc.GetProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 8, "catalog served from the local mirror")

	u, err := svc.Login(ctx, "buyer@nexshop.dev", "buyer123")
	require.NoError(t, err)
	assert.Equal(t, "Dev Buyer", u.Name)

	// wrong password fails against the fallback too
	_, err = svc.Login(ctx, "buyer@nexshop.dev", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRemoteReadRefreshesMirror(t *testing.T) {
	ctx := context.Background()
	remoteCatalog := `{"success":true,"message":"products","data":[{"id":"99","name":"Remote Only","price":5}]}`
	svc, srv := newRemoteService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(remoteCatalog))
	}))

	products, err := svc.GetProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)

	// remote goes away: the mirror serves what the remote last returned
	srv.Close()
	products, err = svc.GetProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Remote Only", products[0].Name)
}

func TestFindProductByIDOrName(t *testing.T) {
	ctx := context.Background()
	svc := newLocalService(t)

	p, ok := svc.FindProduct(ctx, "1")
	require.True(t, ok)

	byName, ok := svc.FindProduct(ctx, "mechanical gaming keyboard")
	require.True(t, ok)
	assert.Equal(t, p.ID, byName.ID)

	_, ok = svc.FindProduct(ctx, "definitely not a product")
	assert.False(t, ok)
}

func TestSearchProductsFilters(t *testing.T) {
	ctx := context.Background()
	svc := newLocalService(t)

	min := 100.0
	max := 400.0
	results, err := svc.SearchProducts(ctx, SearchFilter{
		Category: entity.CategoryAudio,
		MinPrice: &min,
		MaxPrice: &max,
	})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, p := range results {
		assert.Equal(t, entity.CategoryAudio, p.Category)
		assert.GreaterOrEqual(t, p.Price, min)
		assert.LessOrEqual(t, p.Price, max)
	}
}
