package handlers

import (
	"net/http"
	"strings"

	"github.com/omeshapasan2/e-commerce-platform/middleware"
	"github.com/omeshapasan2/e-commerce-platform/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ReviewHandler struct {
	reviews  ReviewStore
	products ProductStore
	logger   *zap.Logger
}

func NewReviewHandler(reviews ReviewStore, products ProductStore, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, products: products, logger: logger}
}

// CreateOrUpdate upserts the caller's review of a product. Submitting again
// for the same product overwrites the existing review instead of adding a
// second one.
func (h *ReviewHandler) CreateOrUpdate(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, &models.ValidationError{Message: "Invalid request body"})
		return
	}
	req.Review = strings.TrimSpace(req.Review)
	if req.ProductID == "" || req.Review == "" {
		respondError(c, h.logger, &models.ValidationError{Message: "Missing required fields: productId, review"})
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		respondError(c, h.logger, &models.ValidationError{Message: "Rating must be between 1 and 5"})
		return
	}

	product, err := h.products.GetByID(ctx, req.ProductID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	existing, err := h.reviews.FindByUserAndProduct(ctx, userID, product.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if existing != nil {
		existing.Rating = req.Rating
		existing.Review = req.Review
		existing.UserName = req.UserName
		existing.UserImage = req.UserImage
		if err := h.reviews.Update(ctx, existing); err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Review updated successfully", "reviewId": existing.ID.Hex()})
		return
	}

	review := &models.Review{
		ProductID: product.ID,
		UserID:    userID,
		Rating:    req.Rating,
		Review:    req.Review,
		UserName:  req.UserName,
		UserImage: req.UserImage,
	}
	if err := h.reviews.Insert(ctx, review); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := h.products.LinkReview(ctx, product.ID, review.ID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Review created",
		zap.String("review_id", review.ID.Hex()),
		zap.String("product_id", product.ID.Hex()),
		zap.String("user_id", userID))
	c.JSON(http.StatusCreated, gin.H{"message": "Review created successfully", "reviewId": review.ID.Hex()})
}

func (h *ReviewHandler) ListByProduct(c *gin.Context) {
	ctx := c.Request.Context()

	product, err := h.products.GetByID(ctx, c.Param("productId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	reviews, err := h.reviews.ListByProduct(ctx, product.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// Update edits the caller's own review in place.
func (h *ReviewHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	reviewID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, &models.NotFoundError{Message: "Review not found"})
		return
	}

	var req models.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, &models.ValidationError{Message: "Invalid request body"})
		return
	}

	review, err := h.reviews.GetByID(ctx, reviewID.Hex())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if review.UserID != userID {
		respondError(c, h.logger, &models.AuthorizationError{Message: "Not authorized to update this review"})
		return
	}

	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 5 {
			respondError(c, h.logger, &models.ValidationError{Message: "Rating must be between 1 and 5"})
			return
		}
		review.Rating = *req.Rating
	}
	if text := strings.TrimSpace(req.Review); text != "" {
		review.Review = text
	}
	if err := h.reviews.Update(ctx, review); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review updated successfully", "review": review})
}

// Delete removes the caller's own review and unlinks it from its product.
func (h *ReviewHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	reviewID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, &models.NotFoundError{Message: "Review not found"})
		return
	}

	review, err := h.reviews.GetByID(ctx, reviewID.Hex())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if review.UserID != userID {
		respondError(c, h.logger, &models.AuthorizationError{Message: "Not authorized to delete this review"})
		return
	}

	if err := h.products.UnlinkReview(ctx, review.ID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := h.reviews.Delete(ctx, review.ID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Review deleted",
		zap.String("review_id", review.ID.Hex()),
		zap.String("user_id", userID))
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
}
