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

type ReviewHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewReviewHandler(svc *application.Service, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{Svc: svc, Logger: logger}
}

type createReviewRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	UserID    string `json:"user_id" binding:"required"`
	UserName  string `json:"user_name"`
	Rating    int    `json:"rating" binding:"required,gte=1,lte=5"`
	Comment   string `json:"comment"`
}

func (h *ReviewHandler) Create(c *gin.Context) {
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	r, err := h.Svc.SubmitReview(c.Request.Context(), application.ReviewInput{
		ProductID: req.ProductID,
		UserID:    req.UserID,
		UserName:  req.UserName,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "product not found", nil)
			return
		}
		if errors.Is(err, application.ErrInvalidRating) {
			response.Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to post review", nil)
		return
	}
	response.Success(c, http.StatusCreated, r, "review posted")
}

func (h *ReviewHandler) ByProduct(c *gin.Context) {
	reviews, err := h.Svc.GetReviews(c.Request.Context(), c.Param("productId"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to load reviews", nil)
		return
	}
	response.Success(c, http.StatusOK, reviews, "reviews")
}

func (h *ReviewHandler) RecordSentiment(c *gin.Context) {
	var req application.SentimentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	rec, err := h.Svc.RecordSentiment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to record sentiment", nil)
		return
	}
	response.Success(c, http.StatusCreated, rec, "sentiment recorded")
}

func (h *ReviewHandler) ListSentiments(c *gin.Context) {
	recs, err := h.Svc.GetSentiments(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to load sentiments", nil)
		return
	}
	response.Success(c, http.StatusOK, recs, "sentiments")
}
