package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nexshop/marketplace/internal/application"
	"github.com/nexshop/marketplace/internal/domain/entity"
	"github.com/nexshop/marketplace/pkg/response"
	"github.com/nexshop/marketplace/pkg/validation"
)

type OrderHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewOrderHandler(svc *application.Service, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{Svc: svc, Logger: logger}
}

func (h *OrderHandler) Checkout(c *gin.Context) {
	var req application.CheckoutInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	order, err := h.Svc.Checkout(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, application.ErrEmptyCart) {
			response.Error(c, http.StatusBadRequest, "cart is empty", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "checkout failed", nil)
		return
	}
	response.Success(c, http.StatusCreated, order, "order placed")
}

func (h *OrderHandler) ByUser(c *gin.Context) {
	orders, err := h.Svc.GetMyOrders(c.Request.Context(), c.Param("userId"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to load orders", nil)
		return
	}
	response.Success(c, http.StatusOK, orders, "orders")
}

func (h *OrderHandler) BySeller(c *gin.Context) {
	orders, err := h.Svc.GetSellerOrders(c.Request.Context(), c.Param("sellerId"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to load orders", nil)
		return
	}
	response.Success(c, http.StatusOK, orders, "orders")
}

func (h *OrderHandler) SellerAnalytics(c *gin.Context) {
	analytics, err := h.Svc.GetSellerAnalytics(c.Request.Context(), c.Param("sellerId"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to load analytics", nil)
		return
	}
	response.Success(c, http.StatusOK, analytics, "seller analytics")
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	order, err := h.Svc.UpdateOrderStatus(c.Request.Context(), c.Param("id"), entity.OrderStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, application.ErrNotFound):
			response.Error(c, http.StatusNotFound, "order not found", nil)
		case errors.Is(err, application.ErrInvalidTransition):
			response.Error(c, http.StatusConflict, "invalid status transition", nil)
		default:
			response.Error(c, http.StatusInternalServerError, "failed to update order", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, order, "order updated")
}
