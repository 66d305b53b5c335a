package handlers

import (
	"net/http"

	"github.com/omeshapasan2/e-commerce-platform/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ProductHandler struct {
	products ProductStore
	catalog  CatalogStore
	reviews  ReviewStore
	checkout CheckoutClient
	logger   *zap.Logger
}

func NewProductHandler(products ProductStore, catalog CatalogStore, reviews ReviewStore, checkout CheckoutClient, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		catalog:  catalog,
		reviews:  reviews,
		checkout: checkout,
		logger:   logger,
	}
}

func (h *ProductHandler) List(c *gin.Context) {
	filter := models.ProductFilter{
		CategoryID: c.Query("categoryId"),
		ColorID:    c.Query("colorId"),
		Sort:       c.Query("sort"),
	}
	switch filter.Sort {
	case "", "price_asc", "price_desc":
	default:
		respondError(c, h.logger, &models.ValidationError{Message: `sort must be "price_asc" or "price_desc"`})
		return
	}

	products, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// Get returns the product with its reviews resolved to full documents.
func (h *ProductHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	product, err := h.products.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	reviews, err := h.reviews.ListByProduct(ctx, product.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, struct {
		models.Product
		Reviews []models.Review `json:"reviews"`
	}{Product: *product, Reviews: reviews})
}

// Create registers the product with the payment provider first so the stored
// document carries a usable price id for checkout line items.
func (h *ProductHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, &models.ValidationError{Message: "Invalid product payload"})
		return
	}

	priceID, err := h.checkout.RegisterProduct(ctx, req.Name, req.Description, req.Price)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	product := &models.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Image:         req.Image,
		Stock:         req.Stock,
		Reviews:       []primitive.ObjectID{},
		StripePriceID: priceID,
	}
	if req.CategoryID != "" {
		id, err := primitive.ObjectIDFromHex(req.CategoryID)
		if err != nil {
			respondError(c, h.logger, &models.ValidationError{Message: "Invalid categoryId"})
			return
		}
		product.CategoryID = id
	}
	if req.ColorID != "" {
		id, err := primitive.ObjectIDFromHex(req.ColorID)
		if err != nil {
			respondError(c, h.logger, &models.ValidationError{Message: "Invalid colorId"})
			return
		}
		product.ColorID = id
	}

	if err := h.products.Create(ctx, product); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Product created",
		zap.String("product_id", product.ID.Hex()),
		zap.String("name", product.Name))
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, &models.ValidationError{Message: "Invalid product payload"})
		return
	}
	if req.Price != nil && *req.Price <= 0 {
		respondError(c, h.logger, &models.ValidationError{Message: "Price must be greater than zero"})
		return
	}

	product, err := h.products.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

func (h *ProductHandler) Categories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *ProductHandler) Colors(c *gin.Context) {
	colors, err := h.catalog.Colors(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, colors)
}
