package application

import (
	"context"
	"sort"

	"github.com/nexshop/marketplace/internal/domain/entity"
	"github.com/nexshop/marketplace/internal/gateway"
)

// GetSellerAnalytics aggregates the seller's order lines into the
// dashboard numbers: total revenue and units sold across non-cancelled
// orders, the best-selling product by units, and a month-by-month
// revenue series, oldest month first. Only lines belonging to the
// seller count; a mixed order contributes just its own lines.
func (s *Service) GetSellerAnalytics(ctx context.Context, sellerID string) (*entity.SellerAnalytics, error) {
	if s.Remote == nil {
		return s.sellerAnalyticsLocal(ctx, sellerID), nil
	}
	return gateway.Fallback(ctx,
		func(ctx context.Context) (*entity.SellerAnalytics, error) {
			var out entity.SellerAnalytics
			if err := s.Remote.GetJSON(ctx, "/api/seller/analytics/"+sellerID, &out); err != nil {
				return nil, err
			}
			return &out, nil
		},
		func(ctx context.Context) (*entity.SellerAnalytics, error) {
			return s.sellerAnalyticsLocal(ctx, sellerID), nil
		},
	)
}

func (s *Service) sellerAnalyticsLocal(ctx context.Context, sellerID string) *entity.SellerAnalytics {
	orders := s.ordersLocal(ctx, func(o entity.Order) bool { return o.ContainsSeller(sellerID) })

	a := &entity.SellerAnalytics{MonthlyRevenue: []entity.MonthlyRevenue{}}
	units := map[string]int{}
	monthly := map[string]float64{}
	for _, o := range orders {
		if o.Status == entity.OrderCancelled {
			continue
		}
		for _, it := range o.Items {
			if it.Product.SellerID != sellerID {
				continue
			}
			revenue := it.Price * float64(it.Quantity)
			a.TotalRevenue += revenue
			a.TotalSales += it.Quantity
			units[it.Product.Name] += it.Quantity
			monthly[o.Date.Format("2006-01")] += revenue
		}
	}

	best := 0
	for name, n := range units {
		if n > best || (n == best && (a.TopProduct == "" || name < a.TopProduct)) {
			best = n
			a.TopProduct = name
		}
	}

	months := make([]string, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}
	sort.Strings(months)
	for _, m := range months {
		a.MonthlyRevenue = append(a.MonthlyRevenue, entity.MonthlyRevenue{Month: m, Revenue: monthly[m]})
	}
	return a
}
