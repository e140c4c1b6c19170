package payments

import (
	"errors"
	"testing"
	"time"
)

var webhookNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestVerifyStripeSignatureRoundTrip(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	header := SignStripePayload(payload, "whsec_test", webhookNow)

	if err := VerifyStripeSignature(payload, header, "whsec_test", webhookNow); err != nil {
		t.Fatalf("verify: %v", err)
	}
	// A minute of clock skew is fine.
	if err := VerifyStripeSignature(payload, header, "whsec_test", webhookNow.Add(time.Minute)); err != nil {
		t.Errorf("verify with skew: %v", err)
	}
}

func TestVerifyStripeSignatureRejectsTampering(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	header := SignStripePayload(payload, "whsec_test", webhookNow)

	if err := VerifyStripeSignature([]byte(`{"id":"evt_2"}`), header, "whsec_test", webhookNow); !errors.Is(err, ErrBadSignature) {
		t.Errorf("tampered payload err = %v, want ErrBadSignature", err)
	}
	if err := VerifyStripeSignature(payload, header, "whsec_other", webhookNow); !errors.Is(err, ErrBadSignature) {
		t.Errorf("wrong secret err = %v, want ErrBadSignature", err)
	}
	if err := VerifyStripeSignature(payload, "garbage", "whsec_test", webhookNow); !errors.Is(err, ErrBadSignature) {
		t.Errorf("garbage header err = %v, want ErrBadSignature", err)
	}
	if err := VerifyStripeSignature(payload, "", "whsec_test", webhookNow); !errors.Is(err, ErrBadSignature) {
		t.Errorf("empty header err = %v, want ErrBadSignature", err)
	}
}

func TestVerifyStripeSignatureRejectsStaleTimestamps(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	header := SignStripePayload(payload, "whsec_test", webhookNow)

	if err := VerifyStripeSignature(payload, header, "whsec_test", webhookNow.Add(10*time.Minute)); !errors.Is(err, ErrStaleWebhook) {
		t.Errorf("stale err = %v, want ErrStaleWebhook", err)
	}
	if err := VerifyStripeSignature(payload, header, "whsec_test", webhookNow.Add(-10*time.Minute)); !errors.Is(err, ErrStaleWebhook) {
		t.Errorf("future err = %v, want ErrStaleWebhook", err)
	}
}

func TestVerifyStripeSignatureSecretRollover(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	old := SignStripePayload(payload, "whsec_old", webhookNow)
	current := SignStripePayload(payload, "whsec_new", webhookNow)

	// Stripe sends both signatures during rollover; either secret verifies
	// its own entry.
	oldV1 := old[len("t=0000000000,"):]
	combined := current + "," + oldV1
	if err := VerifyStripeSignature(payload, combined, "whsec_new", webhookNow); err != nil {
		t.Errorf("rollover verify: %v", err)
	}
}

func TestParseEvent(t *testing.T) {
	payload := []byte(`{
		"id": "evt_1",
		"type": "payment_intent.succeeded",
		"data": {"object": {"id": "pi_1", "metadata": {"checkout_session": "sess-9"}}}
	}`)
	e, err := ParseEvent(payload)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if e.Type != "payment_intent.succeeded" || e.CheckoutSession() != "sess-9" {
		t.Errorf("parsed: %+v", e)
	}

	if _, err := ParseEvent([]byte(`{"id":"evt_2"}`)); err == nil {
		t.Error("event without type should fail")
	}
	if _, err := ParseEvent([]byte(`not json`)); err == nil {
		t.Error("malformed json should fail")
	}
}
