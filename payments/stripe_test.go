package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/omeshapasan2/e-commerce-platform/models"

	"go.uber.org/zap/zaptest"
)

const testWebhookSecret = "whsec_test_secret"

// signPayload builds a Stripe-Signature header the way the provider does:
// t=<unix>,v1=hex(hmac_sha256(secret, "<unix>.<payload>")).
func signPayload(payload []byte, secret string, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + "."))
	mac.Write(payload)
	return "t=" + ts + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}

func testClient(t *testing.T) *Client {
	return &Client{webhookSecret: testWebhookSecret, logger: zaptest.NewLogger(t)}
}

func TestVerifyEvent_ValidSignature(t *testing.T) {
	c := testClient(t)
	payload := []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_123","object":"checkout.session"}}}`)

	event, err := c.VerifyEvent(payload, signPayload(payload, testWebhookSecret, time.Now()))
	if err != nil {
		t.Fatalf("Expected valid event, got error: %v", err)
	}
	if event.Type != EventCheckoutCompleted {
		t.Errorf("Expected type %s, got %s", EventCheckoutCompleted, event.Type)
	}
	if event.SessionID != "cs_123" {
		t.Errorf("Expected session cs_123, got %s", event.SessionID)
	}
}

func TestVerifyEvent_BadSignature(t *testing.T) {
	c := testClient(t)
	payload := []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_123"}}}`)

	_, err := c.VerifyEvent(payload, signPayload(payload, "whsec_wrong_secret", time.Now()))
	var security *models.SecurityError
	if !errors.As(err, &security) {
		t.Fatalf("Expected SecurityError, got %v", err)
	}
}

func TestVerifyEvent_TamperedPayload(t *testing.T) {
	c := testClient(t)
	payload := []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_123"}}}`)
	header := signPayload(payload, testWebhookSecret, time.Now())

	tampered := []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_evil"}}}`)
	var security *models.SecurityError
	if _, err := c.VerifyEvent(tampered, header); !errors.As(err, &security) {
		t.Fatalf("Expected SecurityError for tampered payload, got %v", err)
	}
}

func TestVerifyEvent_StaleTimestamp(t *testing.T) {
	c := testClient(t)
	payload := []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_123"}}}`)

	// Outside the default replay tolerance.
	_, err := c.VerifyEvent(payload, signPayload(payload, testWebhookSecret, time.Now().Add(-10*time.Minute)))
	if err == nil {
		t.Fatal("Expected stale signature to be rejected")
	}
}

func TestVerifyEvent_NonSessionEvent(t *testing.T) {
	c := testClient(t)
	payload := []byte(`{"id":"evt_2","object":"event","type":"payment_intent.created","data":{"object":{"id":"pi_1","object":"payment_intent"}}}`)

	event, err := c.VerifyEvent(payload, signPayload(payload, testWebhookSecret, time.Now()))
	if err != nil {
		t.Fatalf("Expected valid event, got error: %v", err)
	}
	if event.SessionID != "" {
		t.Errorf("Expected no session id for non-session event, got %s", event.SessionID)
	}
}

func TestToCents(t *testing.T) {
	cases := map[float64]int64{
		0:     0,
		10:    1000,
		19.99: 1999,
		10.5:  1050,
	}
	for amount, want := range cases {
		if got := toCents(amount); got != want {
			t.Errorf("toCents(%v) = %d, want %d", amount, got, want)
		}
	}
}
