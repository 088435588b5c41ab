package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/nexshop/marketplace/internal/interface/http"
)

type CartModule struct {
	Handler *handlers.CartHandler
}

func NewCartModule(h *handlers.CartHandler) *CartModule {
	return &CartModule{Handler: h}
}

func (m *CartModule) Register(rg *gin.RouterGroup) {
	rg.GET("/cart/:userId", m.Handler.Get)
	rg.POST("/cart", m.Handler.Add)
	rg.DELETE("/cart/:userId", m.Handler.Clear)
}
