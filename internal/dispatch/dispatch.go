package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/nexshop/marketplace/internal/application"
	"github.com/nexshop/marketplace/internal/domain/entity"
	"github.com/nexshop/marketplace/internal/state"
)

// Command is the closed set of operations callable by both the UI
// event handlers and the agent's tool executor. Every variant is
// statically known; an unknown tool name fails at FromToolCall, never
// inside Dispatch.
type Command interface{ isCommand() }

type Search struct {
	Query    string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

type AddToCart struct {
	Product  string // id or name
	Quantity int
}

type ViewProduct struct{ Product string }

type NavigateTo struct{ View string }

type Login struct{ Email, Password string }

type Logout struct{}

type Register struct{ Email, Password, Name string }

type VerifyEmail struct{ Token string }

type Checkout struct{}

type UpdateProfile struct {
	Name       string
	Address    string
	CardNumber string
	CardExpiry string
	CardCvv    string
}

type PostReview struct {
	Product string
	Rating  int
	Comment string
}

type UpdateOrderStatus struct {
	OrderID string
	Status  string
}

type AddProduct struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Image       string
	Specs       []string
}

type CompareProduct struct{ Product string }

type SetSellerTab struct{ Tab string }

func (Search) isCommand()            {}
func (AddToCart) isCommand()         {}
func (ViewProduct) isCommand()       {}
func (NavigateTo) isCommand()        {}
func (Login) isCommand()             {}
func (Logout) isCommand()            {}
func (Register) isCommand()          {}
func (VerifyEmail) isCommand()       {}
func (Checkout) isCommand()          {}
func (UpdateProfile) isCommand()     {}
func (PostReview) isCommand()        {}
func (UpdateOrderStatus) isCommand() {}
func (AddProduct) isCommand()        {}
func (CompareProduct) isCommand()    {}
func (SetSellerTab) isCommand()      {}

// UnknownToolError reports a tool name outside the dispatch surface.
// The agent receives it as structured data, not a dropped message.
type UnknownToolError struct{ Name string }

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// Dispatcher executes commands against the state container. Both
// interaction paths share one dispatcher so the agent can only ever
// do what a user could do.
type Dispatcher struct {
	State *state.Container
}

func NewDispatcher(c *state.Container) *Dispatcher {
	return &Dispatcher{State: c}
}

// Dispatch runs one command. Commands are tolerant of stale or
// adversarial arguments; an unresolvable entity is a notification and
// a no-op, never an error.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) error {
	switch c := cmd.(type) {
	case Search:
		f := application.SearchFilter{MinPrice: c.MinPrice, MaxPrice: c.MaxPrice}
		if cat := matchCategory(c.Category); cat != "" {
			f.Category = cat
		}
		d.State.Search(ctx, c.Query, f)
	case AddToCart:
		qty := c.Quantity
		if qty < 1 {
			qty = 1
		}
		d.State.AddToCart(ctx, c.Product, qty)
	case ViewProduct:
		d.State.ViewProduct(ctx, c.Product)
	case NavigateTo:
		d.State.NavigateTo(c.View)
	case Login:
		if c.Email == "" {
			d.State.NavigateTo(string(state.ViewLogin))
		} else {
			d.State.Login(ctx, c.Email, c.Password)
		}
	case Logout:
		d.State.Logout(ctx)
	case Register:
		d.State.Register(ctx, c.Email, c.Password, c.Name)
	case VerifyEmail:
		d.State.VerifyEmail(ctx, c.Token)
	case Checkout:
		d.State.Checkout(ctx)
	case UpdateProfile:
		d.State.UpdateProfile(ctx, application.ProfileInput{
			Name:       c.Name,
			Address:    c.Address,
			CardNumber: c.CardNumber,
			CardExpiry: c.CardExpiry,
			CardCvv:    c.CardCvv,
		})
	case PostReview:
		d.State.PostReview(ctx, c.Product, c.Rating, c.Comment)
	case UpdateOrderStatus:
		d.State.UpdateOrderStatus(ctx, c.OrderID, matchStatus(c.Status))
	case AddProduct:
		d.State.AddProduct(ctx, application.AddProductInput{
			Name:        c.Name,
			Description: c.Description,
			Price:       c.Price,
			Category:    string(matchCategory(c.Category)),
			Image:       c.Image,
			Specs:       c.Specs,
		})
	case CompareProduct:
		d.State.CompareProduct(ctx, c.Product)
	case SetSellerTab:
		d.State.SetSellerTab(ctx, c.Tab)
	default:
		return fmt.Errorf("unhandled command %T", cmd)
	}
	return nil
}

// FromToolCall maps an agent function call onto a Command. Tool names
// match case-insensitively; arguments are plucked leniently since they
// come from a language model.
func FromToolCall(name string, args map[string]any) (Command, error) {
	switch strings.ToLower(name) {
	case "searchproducts", "search":
		return Search{
			Query:    str(args, "query"),
			Category: str(args, "category"),
			MinPrice: numPtr(args, "minPrice", "min_price"),
			MaxPrice: numPtr(args, "maxPrice", "max_price"),
		}, nil
	case "addtocart":
		return AddToCart{
			Product:  firstStr(args, "productId", "product_id", "product"),
			Quantity: integer(args, "quantity"),
		}, nil
	case "viewproduct":
		return ViewProduct{Product: firstStr(args, "productId", "product_id", "product")}, nil
	case "navigateto":
		return NavigateTo{View: str(args, "view")}, nil
	case "login":
		return Login{Email: str(args, "email"), Password: str(args, "password")}, nil
	case "logout":
		return Logout{}, nil
	case "register":
		return Register{
			Email:    str(args, "email"),
			Password: str(args, "password"),
			Name:     str(args, "name"),
		}, nil
	case "verifyemail":
		return VerifyEmail{Token: firstStr(args, "token", "code")}, nil
	case "checkout":
		return Checkout{}, nil
	case "updateprofile":
		return UpdateProfile{
			Name:       str(args, "name"),
			Address:    str(args, "address"),
			CardNumber: firstStr(args, "cardNumber", "card_number"),
			CardExpiry: firstStr(args, "cardExpiry", "card_expiry"),
			CardCvv:    firstStr(args, "cardCvv", "card_cvv"),
		}, nil
	case "postreview":
		return PostReview{
			Product: firstStr(args, "productId", "product_id", "product"),
			Rating:  integer(args, "rating"),
			Comment: str(args, "comment"),
		}, nil
	case "updateorderstatus":
		return UpdateOrderStatus{
			OrderID: firstStr(args, "orderId", "order_id"),
			Status:  str(args, "status"),
		}, nil
	case "addproduct":
		return AddProduct{
			Name:        str(args, "name"),
			Description: str(args, "description"),
			Price:       num(args, "price"),
			Category:    str(args, "category"),
			Image:       str(args, "image"),
			Specs:       strSlice(args, "specs"),
		}, nil
	case "compareproduct":
		return CompareProduct{Product: firstStr(args, "productId", "product_id", "product")}, nil
	case "setsellertab":
		return SetSellerTab{Tab: str(args, "tab")}, nil
	default:
		return nil, &UnknownToolError{Name: name}
	}
}

// matchCategory normalizes a free-text category against the known
// enum; anything else comes back empty so the filter ignores it.
func matchCategory(s string) entity.Category {
	for _, c := range entity.Categories() {
		if strings.EqualFold(string(c), s) {
			return c
		}
	}
	return ""
}

// matchStatus normalizes casing for a model-supplied status. An
// unmatched string passes through so the operations layer rejects it.
func matchStatus(s string) entity.OrderStatus {
	for _, st := range []entity.OrderStatus{
		entity.OrderPending, entity.OrderShipped, entity.OrderDelivered, entity.OrderCancelled,
	} {
		if strings.EqualFold(string(st), s) {
			return st
		}
	}
	return entity.OrderStatus(s)
}

func str(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func firstStr(args map[string]any, keys ...string) string {
	for _, k := range keys {
		if v := str(args, k); v != "" {
			return v
		}
	}
	return ""
}

func num(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func numPtr(args map[string]any, keys ...string) *float64 {
	for _, k := range keys {
		if _, ok := args[k]; ok {
			v := num(args, k)
			return &v
		}
	}
	return nil
}

func integer(args map[string]any, key string) int {
	return int(num(args, key))
}

func strSlice(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
