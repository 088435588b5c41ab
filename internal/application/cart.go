package application

import (
	"context"

	"github.com/nexshop/marketplace/internal/domain/entity"
	"github.com/nexshop/marketplace/internal/gateway"
	"github.com/nexshop/marketplace/internal/store"
)

// GetCart returns the user's cart rows.
func (s *Service) GetCart(ctx context.Context, userID string) ([]entity.CartItem, error) {
	if s.Remote == nil {
		return store.GetTable[entity.CartItem](ctx, s.Store, store.CartKey(userID)), nil
	}
	return gateway.Fallback(ctx,
		func(ctx context.Context) ([]entity.CartItem, error) {
			var out []entity.CartItem
			if err := s.Remote.GetJSON(ctx, "/api/cart/"+userID, &out); err != nil {
				return nil, err
			}
			if err := store.SetTable(ctx, s.Store, store.CartKey(userID), out); err != nil {
				s.warn(err, "mirror cart failed", nil)
			}
			return out, nil
		},
		func(ctx context.Context) ([]entity.CartItem, error) {
			return store.GetTable[entity.CartItem](ctx, s.Store, store.CartKey(userID)), nil
		},
	)
}

type addToCartRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// AddToCart adds qty of the product to the user's cart and returns the
// resulting rows. Repeated adds for the same product increment the
// existing row; a cart never holds two rows for one product id.
func (s *Service) AddToCart(ctx context.Context, userID, productID string, qty int) ([]entity.CartItem, error) {
	if s.Remote == nil {
		return s.addToCartLocal(ctx, userID, productID, qty)
	}
	items, err := gateway.Fallback(ctx,
		func(ctx context.Context) ([]entity.CartItem, error) {
			body := addToCartRequest{UserID: userID, ProductID: productID, Quantity: qty}
			if err := s.Remote.PostJSON(ctx, "/api/cart", body, nil); err != nil {
				return nil, err
			}
			// Mutations return an acknowledgment only; the refreshed
			// cart comes from a distinct query step.
			return s.GetCart(ctx, userID)
		},
		func(ctx context.Context) ([]entity.CartItem, error) {
			return s.addToCartLocal(ctx, userID, productID, qty)
		},
	)
	if err != nil {
		return nil, rejected(err, ErrNotFound)
	}
	return items, nil
}

func (s *Service) addToCartLocal(ctx context.Context, userID, productID string, qty int) ([]entity.CartItem, error) {
	products := store.GetTable[entity.Product](ctx, s.Store, store.TableProducts)
	var product *entity.Product
	for i := range products {
		if products[i].ID == productID {
			product = &products[i]
			break
		}
	}
	if product == nil {
		return nil, ErrNotFound
	}

	key := store.CartKey(userID)
	items := store.GetTable[entity.CartItem](ctx, s.Store, key)
	items = entity.MergeCartItem(items, *product, qty)
	if err := store.SetTable(ctx, s.Store, key, items); err != nil {
		return nil, err
	}
	return items, nil
}

// ClearCart empties the user's cart. Checkout does not call this; the
// state container clears the cart only after a successful checkout so
// a failed attempt can be retried with the cart intact.
func (s *Service) ClearCart(ctx context.Context, userID string) error {
	if s.Remote == nil {
		return s.Store.Delete(ctx, store.CartKey(userID))
	}
	_, err := gateway.Fallback(ctx,
		func(ctx context.Context) (struct{}, error) {
			if err := s.Remote.DeleteJSON(ctx, "/api/cart/"+userID); err != nil {
				return struct{}{}, err
			}
			_ = s.Store.Delete(ctx, store.CartKey(userID))
			return struct{}{}, nil
		},
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.Store.Delete(ctx, store.CartKey(userID))
		},
	)
	return err
}
