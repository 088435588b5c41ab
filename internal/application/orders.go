package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nexshop/marketplace/internal/domain/entity"
	"github.com/nexshop/marketplace/internal/gateway"
	"github.com/nexshop/marketplace/internal/store"
	"github.com/nexshop/marketplace/pkg/mailer"
)

// CheckoutInput is everything an order snapshot needs.
type CheckoutInput struct {
	UserID          string            `json:"user_id" binding:"required"`
	ShippingAddress string            `json:"shipping_address" binding:"required"`
	PaymentMethod   string            `json:"payment_method" binding:"required"`
	Items           []entity.CartItem `json:"items" binding:"required"`
}

// Checkout creates the order exactly once: every line is a frozen copy
// of the product with the price captured now, and the total is summed
// here and never recomputed. The cart is left alone; clearing it is
// the caller's follow-up step.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (*entity.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if s.Remote == nil {
		return s.checkoutLocal(ctx, in)
	}
	o, err := gateway.Fallback(ctx,
		func(ctx context.Context) (*entity.Order, error) {
			var out entity.Order
			if err := s.Remote.PostJSON(ctx, "/api/checkout", in, &out); err != nil {
				return nil, err
			}
			s.mirrorOrder(ctx, out)
			return &out, nil
		},
		func(ctx context.Context) (*entity.Order, error) {
			return s.checkoutLocal(ctx, in)
		},
	)
	if err != nil {
		return nil, rejected(err, ErrEmptyCart)
	}
	return o, nil
}

func (s *Service) checkoutLocal(ctx context.Context, in CheckoutInput) (*entity.Order, error) {
	items := make([]entity.OrderItem, 0, len(in.Items))
	var total float64
	for _, ci := range in.Items {
		qty := ci.Quantity
		if qty < 1 {
			qty = 1
		}
		items = append(items, entity.OrderItem{
			Product:  ci.Product,
			Price:    ci.Product.Price,
			Quantity: qty,
		})
		total += ci.Product.Price * float64(qty)
	}

	order := entity.Order{
		ID:              uuid.NewString(),
		UserID:          in.UserID,
		Date:            time.Now().UTC(),
		Total:           total,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		Status:          entity.OrderPending,
		Items:           items,
	}

	orders := store.GetTable[entity.Order](ctx, s.Store, store.TableOrders)
	if err := store.SetTable(ctx, s.Store, store.TableOrders, append(orders, order)); err != nil {
		return nil, err
	}
	s.enqueueOrderEmail(ctx, order)
	return &order, nil
}

func (s *Service) enqueueOrderEmail(ctx context.Context, o entity.Order) {
	if s.Pub == nil || !s.MailSendEnabled {
		return
	}
	u, err := s.getUserLocal(ctx, o.UserID)
	if err != nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: "order_placed",
		Data: map[string]any{
			"Name":    u.Name,
			"OrderID": o.ID,
			"Total":   fmt.Sprintf("$%.2f", o.Total),
		},
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil {
		s.warn(err, "enqueue order email failed", logrus.Fields{"order_id": o.ID})
	}
}

// GetMyOrders returns the user's orders, newest first.
func (s *Service) GetMyOrders(ctx context.Context, userID string) ([]entity.Order, error) {
	if s.Remote == nil {
		return s.ordersLocal(ctx, func(o entity.Order) bool { return o.UserID == userID }), nil
	}
	return gateway.Fallback(ctx,
		func(ctx context.Context) ([]entity.Order, error) {
			var out []entity.Order
			if err := s.Remote.GetJSON(ctx, "/api/orders/user/"+userID, &out); err != nil {
				return nil, err
			}
			return out, nil
		},
		func(ctx context.Context) ([]entity.Order, error) {
			return s.ordersLocal(ctx, func(o entity.Order) bool { return o.UserID == userID }), nil
		},
	)
}

// GetSellerOrders returns orders containing at least one line sold by
// the seller, newest first.
func (s *Service) GetSellerOrders(ctx context.Context, sellerID string) ([]entity.Order, error) {
	if s.Remote == nil {
		return s.ordersLocal(ctx, func(o entity.Order) bool { return o.ContainsSeller(sellerID) }), nil
	}
	return gateway.Fallback(ctx,
		func(ctx context.Context) ([]entity.Order, error) {
			var out []entity.Order
			if err := s.Remote.GetJSON(ctx, "/api/orders/seller/"+sellerID, &out); err != nil {
				return nil, err
			}
			return out, nil
		},
		func(ctx context.Context) ([]entity.Order, error) {
			return s.ordersLocal(ctx, func(o entity.Order) bool { return o.ContainsSeller(sellerID) }), nil
		},
	)
}

func (s *Service) ordersLocal(ctx context.Context, keep func(entity.Order) bool) []entity.Order {
	orders := store.GetTable[entity.Order](ctx, s.Store, store.TableOrders)
	out := make([]entity.Order, 0, len(orders))
	for _, o := range orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// UpdateOrderStatus applies a status transition. Unknown orders fail
// with ErrNotFound and illegal transitions (including any backward
// move) with ErrInvalidTransition.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID string, status entity.OrderStatus) (*entity.Order, error) {
	if s.Remote == nil {
		return s.updateOrderStatusLocal(ctx, orderID, status)
	}
	o, err := gateway.Fallback(ctx,
		func(ctx context.Context) (*entity.Order, error) {
			var out entity.Order
			body := map[string]string{"status": string(status)}
			if err := s.Remote.PatchJSON(ctx, "/api/orders/"+orderID+"/status", body, &out); err != nil {
				return nil, err
			}
			s.mirrorOrder(ctx, out)
			return &out, nil
		},
		func(ctx context.Context) (*entity.Order, error) {
			return s.updateOrderStatusLocal(ctx, orderID, status)
		},
	)
	if err != nil {
		var ae *gateway.AppError
		if errors.As(err, &ae) {
			if ae.Status == 404 {
				return nil, ErrNotFound
			}
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	return o, nil
}

func (s *Service) updateOrderStatusLocal(ctx context.Context, orderID string, status entity.OrderStatus) (*entity.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidTransition
	}
	orders := store.GetTable[entity.Order](ctx, s.Store, store.TableOrders)
	for i := range orders {
		if orders[i].ID != orderID {
			continue
		}
		if !orders[i].Status.CanTransition(status) {
			return nil, ErrInvalidTransition
		}
		orders[i].Status = status
		if err := store.SetTable(ctx, s.Store, store.TableOrders, orders); err != nil {
			return nil, err
		}
		return &orders[i], nil
	}
	return nil, ErrNotFound
}

func (s *Service) mirrorOrder(ctx context.Context, o entity.Order) {
	orders := store.GetTable[entity.Order](ctx, s.Store, store.TableOrders)
	for i := range orders {
		if orders[i].ID == o.ID {
			orders[i] = o
			if err := store.SetTable(ctx, s.Store, store.TableOrders, orders); err != nil {
				s.warn(err, "mirror order failed", nil)
			}
			return
		}
	}
	if err := store.SetTable(ctx, s.Store, store.TableOrders, append(orders, o)); err != nil {
		s.warn(err, "mirror order failed", nil)
	}
}
