package handlers

import (
	"context"
	"time"

	"github.com/omeshapasan2/e-commerce-platform/models"
	"github.com/omeshapasan2/e-commerce-platform/payments"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Handler dependencies are consumer-side interfaces so the HTTP layer can be
// tested against in-memory fakes; the database, payments and kafka packages
// provide the production implementations.

type OrderStore interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByCheckoutSession(ctx context.Context, sessionID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	ListCreatedSince(ctx context.Context, since time.Time) ([]models.Order, error)
	ClaimCheckoutSession(ctx context.Context, orderID, sessionID string) (bool, error)
	MarkPaymentCompleted(ctx context.Context, sessionID string) (found, changed bool, err error)
	MarkPaymentFailed(ctx context.Context, sessionID string) (found, changed bool, err error)
}

type ProductStore interface {
	List(ctx context.Context, f models.ProductFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetMany(ctx context.Context, ids []string) (map[string]models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, id string, req models.UpdateProductRequest) (*models.Product, error)
	Delete(ctx context.Context, id string) error
	LinkReview(ctx context.Context, productID, reviewID primitive.ObjectID) error
	UnlinkReview(ctx context.Context, reviewID primitive.ObjectID) error
}

type ReviewStore interface {
	GetByID(ctx context.Context, id string) (*models.Review, error)
	FindByUserAndProduct(ctx context.Context, userID string, productID primitive.ObjectID) (*models.Review, error)
	Insert(ctx context.Context, r *models.Review) error
	Update(ctx context.Context, r *models.Review) error
	ListByProduct(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type CatalogStore interface {
	Categories(ctx context.Context) ([]models.Category, error)
	Colors(ctx context.Context) ([]models.Color, error)
}

type CheckoutClient interface {
	CreateCheckoutSession(ctx context.Context, o *models.Order, products map[string]models.Product) (id, url string, err error)
	SessionStatus(ctx context.Context, sessionID string) (*payments.SessionStatus, error)
	RegisterProduct(ctx context.Context, name, description string, price float64) (string, error)
}

type WebhookVerifier interface {
	VerifyEvent(payload []byte, sigHeader string) (payments.Event, error)
}

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event models.OrderEvent) error
}
