package application

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nexshop/marketplace/internal/domain/entity"
	"github.com/nexshop/marketplace/internal/gateway"
	"github.com/nexshop/marketplace/internal/store"
	"github.com/nexshop/marketplace/pkg/helpers"
)

// GetProducts returns the catalog, remote first with the local table
// as fallback. Successful remote reads refresh the local mirror so the
// fallback stays structurally identical to what the remote would have
// returned.
func (s *Service) GetProducts(ctx context.Context) ([]entity.Product, error) {
	if s.Remote == nil {
		return store.GetTable[entity.Product](ctx, s.Store, store.TableProducts), nil
	}
	return gateway.Fallback(ctx,
		func(ctx context.Context) ([]entity.Product, error) {
			var out []entity.Product
			if err := s.Remote.GetJSON(ctx, "/api/products", &out); err != nil {
				return nil, err
			}
			if err := store.SetTable(ctx, s.Store, store.TableProducts, out); err != nil {
				s.warn(err, "mirror products failed", nil)
			}
			return out, nil
		},
		func(ctx context.Context) ([]entity.Product, error) {
			return store.GetTable[entity.Product](ctx, s.Store, store.TableProducts), nil
		},
	)
}

// FindProduct resolves an exact id or a case-insensitive name match.
// The agent frequently passes a name where the UI passes an id, so
// both must work.
func (s *Service) FindProduct(ctx context.Context, idOrName string) (*entity.Product, bool) {
	products, err := s.GetProducts(ctx)
	if err != nil {
		return nil, false
	}
	for i := range products {
		if products[i].ID == idOrName {
			return &products[i], true
		}
	}
	for i := range products {
		if strings.EqualFold(products[i].Name, idOrName) {
			return &products[i], true
		}
	}
	return nil, false
}

// SearchFilter is the product search criteria.
type SearchFilter struct {
	Query    string
	Category entity.Category
	MinPrice *float64
	MaxPrice *float64
}

func (f SearchFilter) matches(p entity.Product) bool {
	if f.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Query)) {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	return true
}

// SearchProducts filters the catalog. When an Elasticsearch client is
// configured (server side) the text query goes through the index, with
// plain table filtering as the fallback; everywhere else it is the
// same filter the UI applies locally.
func (s *Service) SearchProducts(ctx context.Context, f SearchFilter) ([]entity.Product, error) {
	if s.ES != nil && s.ESProductsIndex != "" && f.Query != "" {
		if hits, err := s.searchIndex(ctx, f); err == nil {
			return hits, nil
		} else {
			s.warn(err, "es search failed, filtering locally", logrus.Fields{"query": f.Query})
		}
	}
	products, err := s.GetProducts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Product, 0, len(products))
	for _, p := range products {
		if f.matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) searchIndex(ctx context.Context, f SearchFilter) ([]entity.Product, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  f.Query,
				"fields": []string{"name^2", "description", "specs"},
			},
		},
		"size": 50,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESProductsIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source entity.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.Product, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		if f.matches(h.Source) {
			out = append(out, h.Source)
		}
	}
	return out, nil
}

// AddProductInput is a partial product; missing fields get demo
// defaults the same way the original seller console did.
type AddProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price,omitempty"`
	Category    string   `json:"category,omitempty"`
	Image       string   `json:"image,omitempty"`
	Specs       []string `json:"specs,omitempty"`
}

// AddProduct creates a listing owned by the given user. Listing a
// first product promotes a buyer to seller.
func (s *Service) AddProduct(ctx context.Context, in AddProductInput, owner *entity.User) (*entity.Product, error) {
	if s.Remote == nil {
		return s.addProductLocal(ctx, in, owner)
	}
	return gateway.Fallback(ctx,
		func(ctx context.Context) (*entity.Product, error) {
			var out entity.Product
			body := struct {
				AddProductInput
				SellerID   string `json:"seller_id"`
				SellerName string `json:"seller_name"`
			}{in, owner.ID, owner.Name}
			if err := s.Remote.PostJSON(ctx, "/api/products", body, &out); err != nil {
				return nil, err
			}
			s.mirrorProduct(ctx, out)
			return &out, nil
		},
		func(ctx context.Context) (*entity.Product, error) {
			return s.addProductLocal(ctx, in, owner)
		},
	)
}

func (s *Service) addProductLocal(ctx context.Context, in AddProductInput, owner *entity.User) (*entity.Product, error) {
	p := entity.Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    entity.Category(in.Category),
		Image:       in.Image,
		Rating:      5,
		Specs:       in.Specs,
		SellerID:    owner.ID,
		SellerName:  owner.Name,
	}
	if p.Name == "" {
		p.Name = "Untitled"
	}
	if !p.Category.Valid() {
		p.Category = entity.CategoryElectronics
	}
	if p.Image == "" {
		p.Image = "https://picsum.photos/seed/new/400/400"
	}
	if p.Specs == nil {
		p.Specs = []string{}
	}

	products := store.GetTable[entity.Product](ctx, s.Store, store.TableProducts)
	if err := store.SetTable(ctx, s.Store, store.TableProducts, append([]entity.Product{p}, products...)); err != nil {
		return nil, err
	}
	s.promoteToSeller(ctx, owner.ID)
	s.indexProduct(ctx, p)
	return &p, nil
}

// UpdateProductInput carries partial listing edits.
type UpdateProductInput struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    string   `json:"category,omitempty"`
	Image       string   `json:"image,omitempty"`
	Specs       []string `json:"specs,omitempty"`
}

// UpdateProduct edits a listing in place. Existing order lines keep
// their frozen copies, so this never rewrites purchase history.
func (s *Service) UpdateProduct(ctx context.Context, id string, in UpdateProductInput) (*entity.Product, error) {
	if s.Remote != nil {
		p, err := gateway.Fallback(ctx,
			func(ctx context.Context) (*entity.Product, error) {
				var out entity.Product
				if err := s.Remote.PatchJSON(ctx, "/api/products/"+id, in, &out); err != nil {
					return nil, err
				}
				s.mirrorProduct(ctx, out)
				return &out, nil
			},
			func(ctx context.Context) (*entity.Product, error) {
				return s.updateProductLocal(ctx, id, in)
			},
		)
		if err != nil {
			return nil, rejected(err, ErrNotFound)
		}
		return p, nil
	}
	return s.updateProductLocal(ctx, id, in)
}

func (s *Service) updateProductLocal(ctx context.Context, id string, in UpdateProductInput) (*entity.Product, error) {
	products := store.GetTable[entity.Product](ctx, s.Store, store.TableProducts)
	for i := range products {
		if products[i].ID != id {
			continue
		}
		if in.Name != "" {
			products[i].Name = in.Name
		}
		if in.Description != "" {
			products[i].Description = in.Description
		}
		if in.Price != nil && *in.Price >= 0 {
			products[i].Price = *in.Price
		}
		if c := entity.Category(in.Category); c.Valid() {
			products[i].Category = c
		}
		if in.Image != "" {
			products[i].Image = in.Image
		}
		if in.Specs != nil {
			products[i].Specs = in.Specs
		}
		if err := store.SetTable(ctx, s.Store, store.TableProducts, products); err != nil {
			return nil, err
		}
		s.indexProduct(ctx, products[i])
		return &products[i], nil
	}
	return nil, ErrNotFound
}

func (s *Service) mirrorProduct(ctx context.Context, p entity.Product) {
	products := store.GetTable[entity.Product](ctx, s.Store, store.TableProducts)
	for i := range products {
		if products[i].ID == p.ID {
			products[i] = p
			if err := store.SetTable(ctx, s.Store, store.TableProducts, products); err != nil {
				s.warn(err, "mirror product failed", logrus.Fields{"product_id": p.ID})
			}
			return
		}
	}
	if err := store.SetTable(ctx, s.Store, store.TableProducts, append([]entity.Product{p}, products...)); err != nil {
		s.warn(err, "mirror product failed", logrus.Fields{"product_id": p.ID})
	}
}

func (s *Service) indexProduct(ctx context.Context, p entity.Product) {
	if s.ES == nil || s.ESProductsIndex == "" {
		return
	}
	b, _ := json.Marshal(p)
	req := esapi.IndexRequest{
		Index:      s.ESProductsIndex,
		DocumentID: p.ID,
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.warn(err, "es index failed", logrus.Fields{"product_id": p.ID})
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("product_id", p.ID).Warn("es index response error")
	}
}

// UploadProductImage stores a listing image in GCS and points the
// product at its public URL.
func (s *Service) UploadProductImage(ctx context.Context, productID string, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", ErrNotFound
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("products", productID, uuid.NewString()+ext))
	url, err := helpers.UploadImageToGCS(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	if _, err := s.UpdateProduct(ctx, productID, UpdateProductInput{Image: url}); err != nil {
		return "", err
	}
	return url, nil
}
