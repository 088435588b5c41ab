package entity

// CartItem is one row of a user's cart. The product is a snapshot
// reference; quantity is always >= 1. A cart holds at most one row
// per product id -- repeated adds increment the quantity.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// CartTotal sums price*quantity over the given items.
func CartTotal(items []CartItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Product.Price * float64(it.Quantity)
	}
	return total
}

// MergeCartItem adds qty of p to items, incrementing the existing row
// for p.ID if there is one. It never produces a duplicate row.
func MergeCartItem(items []CartItem, p Product, qty int) []CartItem {
	if qty < 1 {
		qty = 1
	}
	for i := range items {
		if items[i].Product.ID == p.ID {
			items[i].Quantity += qty
			return items
		}
	}
	return append(items, CartItem{Product: p, Quantity: qty})
}
