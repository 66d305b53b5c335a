package handlers

import (
	"net/http"
	"time"

	"github.com/omeshapasan2/e-commerce-platform/models"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// DailySales aggregates order totals into one bucket per calendar day over a
// trailing 7 or 30 day window ending today, in the reporting timezone.
// Totals are valued at current catalog prices; items whose product has been
// deleted contribute nothing.
func (h *OrderHandler) DailySales(c *gin.Context) {
	ctx, span := otel.Tracer(tracerName).Start(c.Request.Context(), "DailySales")
	defer span.End()

	days, err := parseRange(c.DefaultQuery("range", "7d"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	span.SetAttributes(attribute.Int("sales.days", days))

	now := h.now().In(h.reportingLoc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.reportingLoc).
		AddDate(0, 0, -(days - 1))

	orders, err := h.orders.ListCreatedSince(ctx, start.UTC())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	seen := map[string]struct{}{}
	ids := make([]string, 0)
	for i := range orders {
		for j := range orders[i].Items {
			id := orders[i].Items[j].ProductID.Hex()
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	prices := map[string]models.Product{}
	if len(ids) > 0 {
		prices, err = h.products.GetMany(ctx, ids)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
	}

	c.JSON(http.StatusOK, dailyBuckets(orders, prices, start, days))
}

func parseRange(s string) (int, error) {
	switch s {
	case "7d":
		return 7, nil
	case "30d":
		return 30, nil
	}
	return 0, &models.ValidationError{Message: `range must be "7d" or "30d"`}
}

// dailyBuckets assigns each order to the calendar day of its creation time in
// start's location and returns a dense slice of days buckets beginning at
// start. Orders outside the window are skipped.
func dailyBuckets(orders []models.Order, prices map[string]models.Product, start time.Time, days int) []models.DailySalesBucket {
	loc := start.Location()

	buckets := make([]models.DailySalesBucket, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		buckets[i] = models.DailySalesBucket{Date: date}
		index[date] = i
	}

	for _, order := range orders {
		i, ok := index[order.CreatedAt.In(loc).Format("2006-01-02")]
		if !ok {
			continue
		}
		for _, item := range order.Items {
			if product, ok := prices[item.ProductID.Hex()]; ok {
				buckets[i].Total += float64(item.Quantity) * product.Price
			}
		}
	}
	return buckets
}
