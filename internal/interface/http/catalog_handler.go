package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nexshop/marketplace/internal/application"
	"github.com/nexshop/marketplace/internal/domain/entity"
	"github.com/nexshop/marketplace/pkg/response"
	"github.com/nexshop/marketplace/pkg/validation"
)

type CatalogHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewCatalogHandler(svc *application.Service, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{Svc: svc, Logger: logger}
}

func (h *CatalogHandler) List(c *gin.Context) {
	products, err := h.Svc.GetProducts(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to load products", nil)
		return
	}
	response.Success(c, http.StatusOK, products, "products")
}

func (h *CatalogHandler) Search(c *gin.Context) {
	f := application.SearchFilter{
		Query:    c.Query("q"),
		Category: entity.Category(c.Query("category")),
	}
	if v := c.Query("min_price"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinPrice = &p
		}
	}
	if v := c.Query("max_price"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			f.MaxPrice = &p
		}
	}
	products, err := h.Svc.SearchProducts(c.Request.Context(), f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, products, "search results")
}

type createProductRequest struct {
	application.AddProductInput
	SellerID   string `json:"seller_id" binding:"required"`
	SellerName string `json:"seller_name"`
}

func (h *CatalogHandler) Create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	owner, err := h.Svc.GetUser(c.Request.Context(), req.SellerID)
	if err != nil {
		response.Error(c, http.StatusNotFound, "seller not found", nil)
		return
	}
	p, err := h.Svc.AddProduct(c.Request.Context(), req.AddProductInput, owner)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to create product", nil)
		return
	}
	response.Success(c, http.StatusCreated, p, "product created")
}

func (h *CatalogHandler) Update(c *gin.Context) {
	var req application.UpdateProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.UpdateProduct(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, http.StatusNotFound, "product not found", nil)
		return
	}
	response.Success(c, http.StatusOK, p, "product updated")
}

// UploadImage accepts a multipart file and stores it in GCS, pointing
// the product's image at the public URL.
func (h *CatalogHandler) UploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "missing image file", nil)
		return
	}
	defer func() { _ = file.Close() }()

	contentType := header.Header.Get("Content-Type")
	url, err := h.Svc.UploadProductImage(c.Request.Context(), c.Param("id"), file, header.Filename, contentType)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to upload image", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"image": url}, "image uploaded")
}
