package store

import (
	"context"

	"github.com/nexshop/marketplace/internal/domain/entity"
	"github.com/nexshop/marketplace/pkg/helpers"
)

// Seed initializes the products and users tables when they are absent.
// It runs on every startup but writes nothing once the tables exist,
// so user-created data is never clobbered.
func Seed(ctx context.Context, s TableStore) error {
	if _, ok, err := s.Get(ctx, TableProducts); err != nil {
		return err
	} else if !ok {
		if err := SetTable(ctx, s, TableProducts, DefaultCatalog()); err != nil {
			return err
		}
	}
	if _, ok, err := s.Get(ctx, TableUsers); err != nil {
		return err
	} else if !ok {
		users, err := defaultAccounts()
		if err != nil {
			return err
		}
		if err := SetTable(ctx, s, TableUsers, users); err != nil {
			return err
		}
	}
	return nil
}

// DefaultCatalog is the fixed eight-product demo catalog.
func DefaultCatalog() []entity.Product {
	return []entity.Product{
		{
			ID: "1", Name: "Mechanical Gaming Keyboard",
			Description: "Ultra-responsive RGB mechanical keyboard with tactile switches.",
			Price:       129.99, Category: entity.CategoryGaming,
			Image: "https://picsum.photos/seed/keyboard/400/400", Rating: 4.8,
			Specs:    []string{"RGB Lighting", "Tactile Brown Switches", "Aluminum Frame"},
			SellerID: "s1", SellerName: "Gaming Central",
		},
		{
			ID: "2", Name: "Logitech G Pro Wireless",
			Description: "The preferred mouse for esports professionals worldwide.",
			Price:       99.99, Category: entity.CategoryGaming,
			Image: "https://picsum.photos/seed/mouse/400/400", Rating: 4.9,
			Specs:    []string{"Lightspeed Wireless", "HERO 25K Sensor", "80g Lightweight"},
			SellerID: "s2", SellerName: "ProGear",
		},
		{
			ID: "3", Name: "Sony WH-1000XM5",
			Description: "Industry-leading noise canceling headphones with premium sound.",
			Price:       348.00, Category: entity.CategoryAudio,
			Image: "https://picsum.photos/seed/headphones/400/400", Rating: 4.7,
			Specs:    []string{"30h Battery", "LDAC Support", "Multi-point Bluetooth"},
			SellerID: "s3", SellerName: "Audio Hub",
		},
		{
			ID: "4", Name: "Ergonomic Office Chair",
			Description: "Premium mesh chair designed for 12+ hours of comfort.",
			Price:       499.00, Category: entity.CategoryWorkstation,
			Image: "https://picsum.photos/seed/chair/400/400", Rating: 4.6,
			Specs:    []string{"Adjustable Lumbar", "4D Armrests", "Breathable Mesh"},
			SellerID: "s4", SellerName: "Office Pro",
		},
		{
			ID: "5", Name: "Samsung 32\" Odyssey G7",
			Description: "1000R curved gaming monitor with 240Hz refresh rate.",
			Price:       699.99, Category: entity.CategoryGaming,
			Image: "https://picsum.photos/seed/monitor/400/400", Rating: 4.5,
			Specs:    []string{"240Hz", "1ms response", "QLED Technology"},
			SellerID: "s1", SellerName: "Gaming Central",
		},
		{
			ID: "6", Name: "MacBook Pro 14\"",
			Description: "The ultimate power machine for creators and pros.",
			Price:       1999.00, Category: entity.CategoryElectronics,
			Image: "https://picsum.photos/seed/laptop/400/400", Rating: 4.9,
			Specs:    []string{"M3 Pro Chip", "Liquid Retina XDR", "18GB RAM"},
			SellerID: "s5", SellerName: "Apple Store",
		},
		{
			ID: "7", Name: "Keychron Q1 Pro",
			Description: "Full aluminum custom wireless mechanical keyboard.",
			Price:       189.00, Category: entity.CategoryWorkstation,
			Image: "https://picsum.photos/seed/keychron/400/400", Rating: 4.8,
			Specs:    []string{"Gasket Mount", "Double-shot PBT", "Screw-in stabs"},
			SellerID: "s6", SellerName: "Keyboard Enthusiasts",
		},
		{
			ID: "8", Name: "Blue Yeti Microphone",
			Description: "The gold standard for professional recording and streaming.",
			Price:       109.99, Category: entity.CategoryAudio,
			Image: "https://picsum.photos/seed/mic/400/400", Rating: 4.4,
			Specs:    []string{"Tri-capsule array", "Multiple patterns", "USB connection"},
			SellerID: "s3", SellerName: "Audio Hub",
		},
	}
}

// defaultAccounts returns one account per role so every flow is
// exercisable without a signup. Passwords are printed by cmd/seed.
func defaultAccounts() ([]entity.User, error) {
	type acct struct {
		id, name, email, password string
		role                      entity.Role
		address, card, expiry     string
	}
	seeds := []acct{
		{id: "admin_1", name: "Site Admin", email: "admin@nexshop.dev", password: "admin123", role: entity.RoleAdmin},
		{
			id: "user_dev_1", name: "Dev Buyer", email: "buyer@nexshop.dev", password: "buyer123",
			role: entity.RoleBuyer, address: "1 Demo Street, Devtown", card: "4242424242424242", expiry: "12/28",
		},
		{id: "s1", name: "Gaming Central", email: "gaming@nexshop.dev", password: "seller123", role: entity.RoleSeller},
	}
	users := make([]entity.User, 0, len(seeds))
	for _, a := range seeds {
		hash, err := helpers.HashPassword(a.password)
		if err != nil {
			return nil, err
		}
		users = append(users, entity.User{
			ID: a.id, Name: a.name, Email: a.email, PasswordHash: hash,
			IsVerified: true, Role: a.role,
			Address: a.address, CardNumber: a.card, CardExpiry: a.expiry,
		})
	}
	return users, nil
}
