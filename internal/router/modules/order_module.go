package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/nexshop/marketplace/internal/interface/http"
)

type OrderModule struct {
	Handler *handlers.OrderHandler
}

func NewOrderModule(h *handlers.OrderHandler) *OrderModule {
	return &OrderModule{Handler: h}
}

func (m *OrderModule) Register(rg *gin.RouterGroup) {
	rg.POST("/checkout", m.Handler.Checkout)
	rg.GET("/orders/user/:userId", m.Handler.ByUser)
	rg.GET("/orders/seller/:sellerId", m.Handler.BySeller)
	rg.GET("/seller/analytics/:sellerId", m.Handler.SellerAnalytics)
	rg.PATCH("/orders/:id/status", m.Handler.UpdateStatus)
}
