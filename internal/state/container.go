package state

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nexshop/marketplace/internal/application"
	"github.com/nexshop/marketplace/internal/domain/entity"
	"github.com/nexshop/marketplace/internal/store"
)

// View identifies a screen. NavigateTo rejects anything outside this
// set so an agent-supplied view name can never wedge the UI.
type View string

const (
	ViewHome            View = "home"
	ViewSearch          View = "search"
	ViewProductDetail   View = "product-detail"
	ViewCart            View = "cart"
	ViewCheckoutSuccess View = "checkout-success"
	ViewLogin           View = "login"
	ViewRegister        View = "register"
	ViewVerifyEmail     View = "verify-email"
	ViewProfile         View = "profile"
	ViewOrders          View = "orders"
	ViewSellerDashboard View = "seller-dashboard"
	ViewCompare         View = "compare"
	ViewAdminDashboard  View = "admin-dashboard"
)

var knownViews = map[View]bool{
	ViewHome: true, ViewSearch: true, ViewProductDetail: true,
	ViewCart: true, ViewCheckoutSuccess: true, ViewLogin: true,
	ViewRegister: true, ViewVerifyEmail: true, ViewProfile: true,
	ViewOrders: true, ViewSellerDashboard: true, ViewCompare: true,
	ViewAdminDashboard: true,
}

const maxCompare = 4

// MarketplaceState is the single source of UI truth. The view layer
// reads it and never writes it; all mutation goes through Container
// methods.
type MarketplaceState struct {
	View              View
	SelectedProductID string
	SelectedOrderID   string
	SearchQuery       string
	Filters           application.SearchFilter
	Cart              []entity.CartItem
	User              *entity.User
	CompareList       []string
	SellerTab         string

	// Cached query results, refreshed after each related mutation.
	Products  []entity.Product
	Results   []entity.Product
	Orders    []entity.Order
	Reviews   []entity.Review
	Analytics *entity.SellerAnalytics
}

// Notifier surfaces a user-visible message (toast in the UI, plain
// text in the terminal client). Never nil after NewContainer.
type Notifier func(msg string)

// Container owns MarketplaceState and mutates it only through named
// actions. After any action that runs a mutating operation it
// re-queries the affected slice instead of trusting its own guess, so
// the UI always reflects the fallback-resolved state.
type Container struct {
	mu     sync.Mutex
	state  MarketplaceState
	ops    *application.Service
	store  store.TableStore
	logger *logrus.Logger
	notify Notifier
}

// NewContainer builds the container and restores a persisted session
// so a restart resumes where the user left off.
func NewContainer(ctx context.Context, ops *application.Service, st store.TableStore, logger *logrus.Logger, notify Notifier) *Container {
	if notify == nil {
		notify = func(string) {}
	}
	c := &Container{
		state:  MarketplaceState{View: ViewHome, SellerTab: "products"},
		ops:    ops,
		store:  st,
		logger: logger,
		notify: notify,
	}
	if u, ok := store.GetValue[entity.User](ctx, st, store.KeySession); ok && u.ID != "" {
		c.state.User = &u
		c.refreshCart(ctx)
	}
	c.refreshProducts(ctx)
	return c
}

// Snapshot returns a copy of the current state for rendering and for
// building the agent's UI-context prompt.
func (c *Container) Snapshot() MarketplaceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Cart = append([]entity.CartItem(nil), c.state.Cart...)
	s.CompareList = append([]string(nil), c.state.CompareList...)
	s.Products = append([]entity.Product(nil), c.state.Products...)
	s.Results = append([]entity.Product(nil), c.state.Results...)
	s.Orders = append([]entity.Order(nil), c.state.Orders...)
	s.Reviews = append([]entity.Review(nil), c.state.Reviews...)
	if c.state.User != nil {
		u := *c.state.User
		s.User = &u
	}
	if c.state.Analytics != nil {
		a := *c.state.Analytics
		a.MonthlyRevenue = append([]entity.MonthlyRevenue(nil), c.state.Analytics.MonthlyRevenue...)
		s.Analytics = &a
	}
	return s
}

// NavigateTo switches the current view with no side effects. Unknown
// names are a no-op with a notification.
func (c *Container) NavigateTo(view string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := View(view)
	if !knownViews[v] {
		c.notify("Unknown screen: " + view)
		return
	}
	c.state.View = v
}

// Search updates the filter state and switches to the search view.
func (c *Container) Search(ctx context.Context, query string, f application.SearchFilter) {
	f.Query = query
	results, err := c.ops.SearchProducts(ctx, f)
	if err != nil {
		c.notify("Search is unavailable right now.")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SearchQuery = query
	c.state.Filters = f
	c.state.Results = results
	c.state.View = ViewSearch
}

// ViewProduct resolves an id or name and opens the detail view with
// its reviews loaded. An unresolvable product is a no-op.
func (c *Container) ViewProduct(ctx context.Context, idOrName string) {
	p, ok := c.ops.FindProduct(ctx, idOrName)
	if !ok {
		c.notify("Product not found: " + idOrName)
		return
	}
	reviews, err := c.ops.GetReviews(ctx, p.ID)
	if err != nil {
		reviews = nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SelectedProductID = p.ID
	c.state.Reviews = reviews
	c.state.View = ViewProductDetail
}

// AddToCart resolves the product and adds qty to the session user's
// cart, then refreshes the cart snapshot from the operations layer.
func (c *Container) AddToCart(ctx context.Context, idOrName string, qty int) {
	user := c.currentUser()
	if user == nil {
		c.notify("Please log in to add items to your cart.")
		c.setView(ViewLogin)
		return
	}
	p, ok := c.ops.FindProduct(ctx, idOrName)
	if !ok {
		c.notify("Product not found: " + idOrName)
		return
	}
	if _, err := c.ops.AddToCart(ctx, user.ID, p.ID, qty); err != nil {
		c.notify("Could not add " + p.Name + " to cart.")
		return
	}
	c.refreshCart(ctx)
	c.notify("Added " + p.Name + " to cart.")
}

// Login authenticates and, on success, persists the session and
// refreshes the user's cart. Failures show inline without clearing
// anything.
func (c *Container) Login(ctx context.Context, email, password string) {
	u, err := c.ops.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			c.notify("Invalid email or password.")
		} else {
			c.notify("Login failed, please try again.")
		}
		return
	}
	c.mu.Lock()
	c.state.User = u
	c.state.View = ViewHome
	c.mu.Unlock()
	c.persistSession(ctx)
	c.refreshCart(ctx)
	c.notify("Welcome back, " + u.Name + "!")
}

// Logout drops the session user and its persisted copy.
func (c *Container) Logout(ctx context.Context) {
	c.mu.Lock()
	c.state.User = nil
	c.state.Cart = nil
	c.state.View = ViewHome
	c.mu.Unlock()
	if err := c.store.Delete(ctx, store.KeySession); err != nil && c.logger != nil {
		c.logger.WithError(err).Warn("drop session failed")
	}
}

// Register creates an account and moves to the verification screen.
func (c *Container) Register(ctx context.Context, email, password, name string) {
	res, err := c.ops.Register(ctx, email, password, name)
	if err != nil {
		if errors.Is(err, application.ErrDuplicateEmail) {
			c.notify("That email is already registered.")
		} else {
			c.notify("Registration failed, please try again.")
		}
		return
	}
	c.setView(ViewVerifyEmail)
	c.notify("Account created for " + res.User.Email + ". Check your email for the verification code.")
}

// VerifyEmail redeems a verification code. A verified session user is
// updated in place so the checkout guard sees the new flag.
func (c *Container) VerifyEmail(ctx context.Context, token string) {
	u, err := c.ops.VerifyEmail(ctx, token)
	if err != nil {
		c.notify("That verification code is invalid or already used.")
		return
	}
	c.mu.Lock()
	if c.state.User != nil && c.state.User.ID == u.ID {
		c.state.User = u
	}
	c.state.View = ViewLogin
	c.mu.Unlock()
	c.persistSession(ctx)
	c.notify("Email verified. You can now log in.")
}

// UpdateProfile saves partial profile changes and re-queries the
// account so the state holds the authoritative copy.
func (c *Container) UpdateProfile(ctx context.Context, in application.ProfileInput) {
	user := c.currentUser()
	if user == nil {
		c.notify("Please log in to edit your profile.")
		c.setView(ViewLogin)
		return
	}
	if _, err := c.ops.UpdateProfile(ctx, user.ID, in); err != nil {
		c.notify("Could not save your profile.")
		return
	}
	fresh, err := c.ops.GetUser(ctx, user.ID)
	if err == nil {
		c.mu.Lock()
		c.state.User = fresh
		c.mu.Unlock()
		c.persistSession(ctx)
	}
	c.notify("Profile updated.")
}

// PostReview appends a review and re-queries the product's reviews.
func (c *Container) PostReview(ctx context.Context, productIDOrName string, rating int, comment string) {
	user := c.currentUser()
	if user == nil {
		c.notify("Please log in to post a review.")
		c.setView(ViewLogin)
		return
	}
	p, ok := c.ops.FindProduct(ctx, productIDOrName)
	if !ok {
		c.notify("Product not found: " + productIDOrName)
		return
	}
	_, err := c.ops.SubmitReview(ctx, application.ReviewInput{
		ProductID: p.ID,
		UserID:    user.ID,
		UserName:  user.Name,
		Rating:    rating,
		Comment:   comment,
	})
	if err != nil {
		c.notify("Could not post your review.")
		return
	}
	if reviews, err := c.ops.GetReviews(ctx, p.ID); err == nil {
		c.mu.Lock()
		c.state.Reviews = reviews
		c.mu.Unlock()
	}
	c.notify("Review posted.")
}

// UpdateOrderStatus advances an order and re-queries the order list.
func (c *Container) UpdateOrderStatus(ctx context.Context, orderID string, status entity.OrderStatus) {
	user := c.currentUser()
	if user == nil {
		c.notify("Please log in first.")
		c.setView(ViewLogin)
		return
	}
	if _, err := c.ops.UpdateOrderStatus(ctx, orderID, status); err != nil {
		switch {
		case errors.Is(err, application.ErrNotFound):
			c.notify("Order not found.")
		case errors.Is(err, application.ErrInvalidTransition):
			c.notify("That status change is not allowed.")
		default:
			c.notify("Could not update the order.")
		}
		return
	}
	c.refreshOrders(ctx)
	c.notify("Order updated.")
}

// AddProduct lists a new product under the session user and refreshes
// the catalog cache.
func (c *Container) AddProduct(ctx context.Context, in application.AddProductInput) {
	user := c.currentUser()
	if user == nil {
		c.notify("Please log in to list a product.")
		c.setView(ViewLogin)
		return
	}
	p, err := c.ops.AddProduct(ctx, in, user)
	if err != nil {
		c.notify("Could not create the listing.")
		return
	}
	c.refreshProducts(ctx)
	if fresh, err := c.ops.GetUser(ctx, user.ID); err == nil {
		c.mu.Lock()
		c.state.User = fresh
		c.mu.Unlock()
		c.persistSession(ctx)
	}
	c.notify("Listed " + p.Name + ".")
}

// CompareProduct adds a product to the comparison list, capped at
// four entries; duplicates and unknown products are no-ops.
func (c *Container) CompareProduct(ctx context.Context, idOrName string) {
	p, ok := c.ops.FindProduct(ctx, idOrName)
	if !ok {
		c.notify("Product not found: " + idOrName)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range c.state.CompareList {
		if id == p.ID {
			c.state.View = ViewCompare
			return
		}
	}
	if len(c.state.CompareList) >= maxCompare {
		c.notify("You can compare up to 4 products.")
		return
	}
	c.state.CompareList = append(c.state.CompareList, p.ID)
	c.state.View = ViewCompare
}

// SetSellerTab switches the active seller-dashboard tab. Opening the
// analytics tab loads the session seller's numbers.
func (c *Container) SetSellerTab(ctx context.Context, tab string) {
	c.mu.Lock()
	c.state.SellerTab = tab
	c.state.View = ViewSellerDashboard
	c.mu.Unlock()

	if tab != "analytics" {
		return
	}
	user := c.currentUser()
	if user == nil {
		return
	}
	analytics, err := c.ops.GetSellerAnalytics(ctx, user.ID)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.state.Analytics = analytics
	c.mu.Unlock()
}

// Checkout runs the guarded checkout flow. Each failed guard is a
// notification plus a redirect, never an error; the order is created
// only after all guards pass, and the cart is cleared only after the
// order exists so a failed attempt can be retried with the cart
// intact.
func (c *Container) Checkout(ctx context.Context) {
	user := c.currentUser()
	if user == nil {
		c.notify("Please log in to check out.")
		c.setView(ViewLogin)
		return
	}
	if !user.IsVerified {
		c.notify("Please verify your email before checking out.")
		c.setView(ViewVerifyEmail)
		return
	}
	if !user.ProfileComplete() {
		c.notify("Please add a shipping address and payment method first.")
		c.setView(ViewProfile)
		return
	}

	cart, err := c.ops.GetCart(ctx, user.ID)
	if err != nil || len(cart) == 0 {
		c.notify("Your cart is empty.")
		return
	}

	order, err := c.ops.Checkout(ctx, application.CheckoutInput{
		UserID:          user.ID,
		ShippingAddress: user.Address,
		PaymentMethod:   "card ending " + last4(user.CardNumber),
		Items:           cart,
	})
	if err != nil {
		c.notify("Checkout failed, your cart is unchanged.")
		return
	}
	if err := c.ops.ClearCart(ctx, user.ID); err != nil && c.logger != nil {
		c.logger.WithError(err).Warn("clear cart after checkout failed")
	}
	c.refreshCart(ctx)
	c.refreshOrders(ctx)

	c.mu.Lock()
	c.state.SelectedOrderID = order.ID
	c.state.View = ViewCheckoutSuccess
	c.mu.Unlock()
	c.notify("Order placed! Thank you for shopping with us.")
}

func (c *Container) currentUser() *entity.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.User == nil {
		return nil
	}
	u := *c.state.User
	return &u
}

func (c *Container) setView(v View) {
	c.mu.Lock()
	c.state.View = v
	c.mu.Unlock()
}

func (c *Container) persistSession(ctx context.Context) {
	u := c.currentUser()
	if u == nil {
		return
	}
	if err := store.SetValue(ctx, c.store, store.KeySession, *u); err != nil && c.logger != nil {
		c.logger.WithError(err).Warn("persist session failed")
	}
}

func (c *Container) refreshCart(ctx context.Context) {
	u := c.currentUser()
	if u == nil {
		return
	}
	cart, err := c.ops.GetCart(ctx, u.ID)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.state.Cart = cart
	c.mu.Unlock()
}

func (c *Container) refreshOrders(ctx context.Context) {
	u := c.currentUser()
	if u == nil {
		return
	}
	var (
		orders []entity.Order
		err    error
	)
	if u.Role == entity.RoleSeller {
		orders, err = c.ops.GetSellerOrders(ctx, u.ID)
	} else {
		orders, err = c.ops.GetMyOrders(ctx, u.ID)
	}
	if err != nil {
		return
	}
	c.mu.Lock()
	c.state.Orders = orders
	c.mu.Unlock()
}

func (c *Container) refreshProducts(ctx context.Context) {
	products, err := c.ops.GetProducts(ctx)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.state.Products = products
	c.mu.Unlock()
}

func last4(card string) string {
	if len(card) <= 4 {
		return card
	}
	return card[len(card)-4:]
}
