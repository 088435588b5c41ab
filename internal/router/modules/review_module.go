package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/nexshop/marketplace/internal/interface/http"
)

type ReviewModule struct {
	Handler *handlers.ReviewHandler
}

func NewReviewModule(h *handlers.ReviewHandler) *ReviewModule {
	return &ReviewModule{Handler: h}
}

func (m *ReviewModule) Register(rg *gin.RouterGroup) {
	rg.POST("/reviews", m.Handler.Create)
	rg.GET("/reviews/:productId", m.Handler.ByProduct)
	rg.POST("/sentiments", m.Handler.RecordSentiment)
	rg.GET("/sentiments", m.Handler.ListSentiments)
}
