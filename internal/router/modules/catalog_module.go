package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/nexshop/marketplace/internal/interface/http"
)

// CatalogModule registers the product catalog routes. Reads are public
// (the storefront browses anonymously); writes stay open too since the
// client's operations layer guards ownership, matching the demo API.
type CatalogModule struct {
	Handler *handlers.CatalogHandler
}

func NewCatalogModule(h *handlers.CatalogHandler) *CatalogModule {
	return &CatalogModule{Handler: h}
}

func (m *CatalogModule) Register(rg *gin.RouterGroup) {
	rg.GET("/products", m.Handler.List)
	rg.GET("/products/search", m.Handler.Search)
	rg.POST("/products", m.Handler.Create)
	rg.PATCH("/products/:id", m.Handler.Update)
	rg.POST("/products/:id/image", m.Handler.UploadImage)
}
