package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nexshop/marketplace/internal/application"
	"github.com/nexshop/marketplace/pkg/response"
	"github.com/nexshop/marketplace/pkg/validation"
)

type CartHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewCartHandler(svc *application.Service, logger *logrus.Logger) *CartHandler {
	return &CartHandler{Svc: svc, Logger: logger}
}

func (h *CartHandler) Get(c *gin.Context) {
	items, err := h.Svc.GetCart(c.Request.Context(), c.Param("userId"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to load cart", nil)
		return
	}
	response.Success(c, http.StatusOK, items, "cart")
}

type addToCartRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) Add(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if _, err := h.Svc.AddToCart(c.Request.Context(), req.UserID, req.ProductID, req.Quantity); err != nil {
		if errors.Is(err, application.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "product not found", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to add to cart", nil)
		return
	}
	// Acknowledgment only; the client re-queries the cart separately.
	response.Success(c, http.StatusOK, gin.H{"added": true}, "added to cart")
}

func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.Svc.ClearCart(c.Request.Context(), c.Param("userId")); err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to clear cart", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cleared": true}, "cart cleared")
}
