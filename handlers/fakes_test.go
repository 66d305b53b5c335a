package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/omeshapasan2/e-commerce-platform/models"
	"github.com/omeshapasan2/e-commerce-platform/payments"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func testLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel))
}

func performRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// fakeOrderStore mirrors the conditional-update semantics of the Mongo store
// over an in-memory map.
type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[string]*models.Order{}}
}

func (s *fakeOrderStore) Create(ctx context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = primitive.NewObjectID()
	o.CreatedAt = time.Now().UTC()
	stored := *o
	s.orders[o.ID.Hex()] = &stored
	return nil
}

func (s *fakeOrderStore) GetByID(ctx context.Context, id string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, &models.NotFoundError{Message: "order not found"}
	}
	clone := *o
	return &clone, nil
}

func (s *fakeOrderStore) GetByCheckoutSession(ctx context.Context, sessionID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o := s.bySession(sessionID); o != nil {
		clone := *o
		return &clone, nil
	}
	return nil, &models.NotFoundError{Message: "order not found for session"}
}

func (s *fakeOrderStore) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Order{}
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) ListAll(ctx context.Context) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Order{}
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (s *fakeOrderStore) ListCreatedSince(ctx context.Context, since time.Time) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Order{}
	for _, o := range s.orders {
		if !o.CreatedAt.Before(since) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) ClaimCheckoutSession(ctx context.Context, orderID, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return false, &models.NotFoundError{Message: "order not found"}
	}
	if o.CheckoutSessionID != "" {
		return false, nil
	}
	o.CheckoutSessionID = sessionID
	return true, nil
}

func (s *fakeOrderStore) MarkPaymentCompleted(ctx context.Context, sessionID string) (bool, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.bySession(sessionID)
	if o == nil {
		return false, false, nil
	}
	changed := false
	if o.PaymentStatus != models.PaymentStatusCompleted {
		o.PaymentStatus = models.PaymentStatusCompleted
		changed = true
	}
	if o.OrderStatus == models.OrderStatusPending {
		o.OrderStatus = models.OrderStatusProcessing
		changed = true
	}
	return true, changed, nil
}

func (s *fakeOrderStore) MarkPaymentFailed(ctx context.Context, sessionID string) (bool, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.bySession(sessionID)
	if o == nil {
		return false, false, nil
	}
	if o.PaymentStatus != models.PaymentStatusPending {
		return true, false, nil
	}
	o.PaymentStatus = models.PaymentStatusFailed
	return true, true, nil
}

func (s *fakeOrderStore) bySession(sessionID string) *models.Order {
	for _, o := range s.orders {
		if o.CheckoutSessionID == sessionID {
			return o
		}
	}
	return nil
}

type fakeProductStore struct {
	mu       sync.Mutex
	products map[string]models.Product
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: map[string]models.Product{}}
}

func (s *fakeProductStore) add(p models.Product) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.products[p.ID.Hex()] = p
	return p
}

func (s *fakeProductStore) setPrice(id string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[id]
	p.Price = price
	s.products[id] = p
}

func (s *fakeProductStore) List(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Product{}
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func (s *fakeProductStore) GetByID(ctx context.Context, id string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, &models.NotFoundError{Message: "product not found"}
	}
	return &p, nil
}

func (s *fakeProductStore) GetMany(ctx context.Context, ids []string) (map[string]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]models.Product{}
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *fakeProductStore) Create(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now().UTC()
	s.products[p.ID.Hex()] = *p
	return nil
}

func (s *fakeProductStore) Update(ctx context.Context, id string, req models.UpdateProductRequest) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, &models.NotFoundError{Message: "product not found"}
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	s.products[id] = p
	return &p, nil
}

func (s *fakeProductStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return &models.NotFoundError{Message: "product not found"}
	}
	delete(s.products, id)
	return nil
}

func (s *fakeProductStore) LinkReview(ctx context.Context, productID, reviewID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID.Hex()]
	if !ok {
		return &models.NotFoundError{Message: "product not found"}
	}
	p.Reviews = append(p.Reviews, reviewID)
	s.products[productID.Hex()] = p
	return nil
}

func (s *fakeProductStore) UnlinkReview(ctx context.Context, reviewID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.products {
		kept := p.Reviews[:0]
		for _, r := range p.Reviews {
			if r != reviewID {
				kept = append(kept, r)
			}
		}
		p.Reviews = kept
		s.products[id] = p
	}
	return nil
}

type fakeReviewStore struct {
	mu      sync.Mutex
	reviews map[primitive.ObjectID]*models.Review
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{reviews: map[primitive.ObjectID]*models.Review{}}
}

func (s *fakeReviewStore) GetByID(ctx context.Context, id string) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &models.NotFoundError{Message: "review not found"}
	}
	r, ok := s.reviews[oid]
	if !ok {
		return nil, &models.NotFoundError{Message: "review not found"}
	}
	clone := *r
	return &clone, nil
}

func (s *fakeReviewStore) FindByUserAndProduct(ctx context.Context, userID string, productID primitive.ObjectID) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reviews {
		if r.UserID == userID && r.ProductID == productID {
			clone := *r
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *fakeReviewStore) Insert(ctx context.Context, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = primitive.NewObjectID()
	r.CreatedAt = time.Now().UTC()
	r.UpdatedAt = r.CreatedAt
	stored := *r
	s.reviews[r.ID] = &stored
	return nil
}

func (s *fakeReviewStore) Update(ctx context.Context, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[r.ID]; !ok {
		return &models.NotFoundError{Message: "review not found"}
	}
	r.UpdatedAt = time.Now().UTC()
	stored := *r
	s.reviews[r.ID] = &stored
	return nil
}

func (s *fakeReviewStore) ListByProduct(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Review{}
	for _, r := range s.reviews {
		if r.ProductID == productID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *fakeReviewStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reviews, id)
	return nil
}

type fakeCatalogStore struct {
	categories []models.Category
	colors     []models.Color
}

func (s *fakeCatalogStore) Categories(ctx context.Context) ([]models.Category, error) {
	return s.categories, nil
}

func (s *fakeCatalogStore) Colors(ctx context.Context) ([]models.Color, error) {
	return s.colors, nil
}

type fakeCheckoutClient struct {
	mu       sync.Mutex
	created  int
	statuses map[string]*payments.SessionStatus

	// onCreate runs after the provider call but before the caller claims
	// the session, to stage races.
	onCreate func()
}

func newFakeCheckoutClient() *fakeCheckoutClient {
	return &fakeCheckoutClient{statuses: map[string]*payments.SessionStatus{}}
}

func (f *fakeCheckoutClient) CreateCheckoutSession(ctx context.Context, o *models.Order, products map[string]models.Product) (string, string, error) {
	f.mu.Lock()
	f.created++
	id := fmt.Sprintf("cs_test_%d", f.created)
	f.mu.Unlock()
	if f.onCreate != nil {
		f.onCreate()
	}
	return id, "https://checkout.test/" + id, nil
}

func (f *fakeCheckoutClient) SessionStatus(ctx context.Context, sessionID string) (*payments.SessionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if st, ok := f.statuses[sessionID]; ok {
		return st, nil
	}
	return &payments.SessionStatus{ID: sessionID, Status: payments.SessionOpen}, nil
}

func (f *fakeCheckoutClient) RegisterProduct(ctx context.Context, name, description string, price float64) (string, error) {
	return "price_test_123", nil
}

func (f *fakeCheckoutClient) sessionsCreated() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created
}

type fakeVerifier struct {
	event payments.Event
	err   error
}

func (f *fakeVerifier) VerifyEvent(payload []byte, sigHeader string) (payments.Event, error) {
	if f.err != nil {
		return payments.Event{}, f.err
	}
	return f.event, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.OrderEvent
}

func (f *fakePublisher) PublishOrderEvent(ctx context.Context, event models.OrderEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) byType(eventType string) []models.OrderEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.OrderEvent{}
	for _, e := range f.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(dst); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("Expected status %d, got %d (body: %s)", want, w.Code, w.Body.String())
	}
}

func init() {
	gin.SetMode(gin.TestMode)
}
