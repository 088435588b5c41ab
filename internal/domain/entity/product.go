package entity

// Category is the fixed set of catalog categories.
type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryGaming      Category = "Gaming"
	CategoryWorkstation Category = "Workstation"
	CategoryAudio       Category = "Audio"
	CategoryAccessories Category = "Accessories"
)

// Categories lists every valid category, in display order.
func Categories() []Category {
	return []Category{
		CategoryElectronics,
		CategoryGaming,
		CategoryWorkstation,
		CategoryAudio,
		CategoryAccessories,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryElectronics, CategoryGaming, CategoryWorkstation, CategoryAudio, CategoryAccessories:
		return true
	}
	return false
}

// Product is a catalog listing owned by a seller.
// Orders keep a frozen copy of the product, so edits here never
// reach back into an existing order line.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    Category `json:"category"`
	Image       string   `json:"image"`
	Rating      float64  `json:"rating"`
	Specs       []string `json:"specs"`
	SellerID    string   `json:"seller_id"`
	SellerName  string   `json:"seller_name"`
}
