package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/omeshapasan2/e-commerce-platform/middleware"
	"github.com/omeshapasan2/e-commerce-platform/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDailyBuckets_DenseWindow(t *testing.T) {
	productID := primitive.NewObjectID()
	prices := map[string]models.Product{
		productID.Hex(): {ID: productID, Price: 10},
	}
	start := time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)

	orders := []models.Order{
		{
			Items:     []models.OrderItem{{ProductID: productID, Quantity: 2, UnitPrice: 10}},
			CreatedAt: time.Date(2026, 8, 22, 9, 30, 0, 0, time.UTC),
		},
		{
			Items:     []models.OrderItem{{ProductID: productID, Quantity: 1, UnitPrice: 10}},
			CreatedAt: time.Date(2026, 8, 25, 23, 59, 0, 0, time.UTC),
		},
		{
			// Before the window, must be skipped.
			Items:     []models.OrderItem{{ProductID: productID, Quantity: 5, UnitPrice: 10}},
			CreatedAt: time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC),
		},
	}

	buckets := dailyBuckets(orders, prices, start, 7)
	if len(buckets) != 7 {
		t.Fatalf("Expected 7 buckets, got %d", len(buckets))
	}
	if buckets[0].Date != "2026-08-22" || buckets[6].Date != "2026-08-28" {
		t.Errorf("Expected dense window 2026-08-22..2026-08-28, got %s..%s", buckets[0].Date, buckets[6].Date)
	}
	if buckets[0].Total != 20 {
		t.Errorf("Expected 20 on first day, got %v", buckets[0].Total)
	}
	if buckets[3].Total != 10 {
		t.Errorf("Expected 10 on 2026-08-25, got %v", buckets[3].Total)
	}
	for _, i := range []int{1, 2, 4, 5, 6} {
		if buckets[i].Total != 0 {
			t.Errorf("Expected empty bucket %s, got %v", buckets[i].Date, buckets[i].Total)
		}
	}
}

func TestDailyBuckets_UsesCurrentPrices(t *testing.T) {
	productID := primitive.NewObjectID()
	// Current catalog price differs from the frozen unit price.
	prices := map[string]models.Product{
		productID.Hex(): {ID: productID, Price: 5},
	}
	start := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	orders := []models.Order{{
		Items:     []models.OrderItem{{ProductID: productID, Quantity: 2, UnitPrice: 9}},
		CreatedAt: start.Add(time.Hour),
	}}

	buckets := dailyBuckets(orders, prices, start, 1)
	if buckets[0].Total != 10 {
		t.Errorf("Expected total valued at current price (10), got %v", buckets[0].Total)
	}
}

func TestDailyBuckets_DeletedProductContributesNothing(t *testing.T) {
	start := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	orders := []models.Order{{
		Items:     []models.OrderItem{{ProductID: primitive.NewObjectID(), Quantity: 3, UnitPrice: 4}},
		CreatedAt: start.Add(time.Hour),
	}}

	buckets := dailyBuckets(orders, map[string]models.Product{}, start, 1)
	if buckets[0].Total != 0 {
		t.Errorf("Expected 0 for deleted product, got %v", buckets[0].Total)
	}
}

func TestDailyBuckets_TimezoneBoundary(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	productID := primitive.NewObjectID()
	prices := map[string]models.Product{
		productID.Hex(): {ID: productID, Price: 1},
	}
	start := time.Date(2026, 8, 27, 0, 0, 0, 0, loc)

	// 21:00 UTC on the 27th is 02:00 on the 28th in UTC+5.
	orders := []models.Order{{
		Items:     []models.OrderItem{{ProductID: productID, Quantity: 1, UnitPrice: 1}},
		CreatedAt: time.Date(2026, 8, 27, 21, 0, 0, 0, time.UTC),
	}}

	buckets := dailyBuckets(orders, prices, start, 2)
	if buckets[0].Total != 0 || buckets[1].Total != 1 {
		t.Errorf("Expected order bucketed on 2026-08-28 in UTC+5, got %+v", buckets)
	}
}

func TestDailySales_Endpoint(t *testing.T) {
	orders := newFakeOrderStore()
	products := newFakeProductStore()
	shirt := products.add(models.Product{Name: "Shirt", Price: 10})

	handler := NewOrderHandler(orders, products, nil, testLogger(t))
	handler.reportingLoc = time.UTC
	handler.now = func() time.Time {
		return time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	}

	order := &models.Order{
		UserID: "user-1",
		Items:  []models.OrderItem{{ProductID: shirt.ID, Quantity: 2, UnitPrice: 10}},
		Amount: 20,
	}
	if err := orders.Create(context.Background(), order); err != nil {
		t.Fatal(err)
	}
	orders.orders[order.ID.Hex()].CreatedAt = time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)

	router := gin.New()
	router.Use(middleware.WithIdentity("admin-1", middleware.RoleAdmin))
	router.GET("/api/orders/daily-sales", handler.DailySales)

	w := performRequest(router, http.MethodGet, "/api/orders/daily-sales?range=7d", nil)
	requireStatus(t, w, http.StatusOK)

	var buckets []models.DailySalesBucket
	decodeBody(t, w, &buckets)
	if len(buckets) != 7 {
		t.Fatalf("Expected 7 buckets, got %d", len(buckets))
	}
	if buckets[6].Date != "2026-08-28" {
		t.Errorf("Expected window to end today, got %s", buckets[6].Date)
	}
	if buckets[4].Date != "2026-08-26" || buckets[4].Total != 20 {
		t.Errorf("Expected 20 on 2026-08-26, got %+v", buckets[4])
	}

	w = performRequest(router, http.MethodGet, "/api/orders/daily-sales?range=90d", nil)
	requireStatus(t, w, http.StatusBadRequest)
}
