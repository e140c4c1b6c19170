package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrBadSignature  = errors.New("webhook signature verification failed")
	ErrStaleWebhook  = errors.New("webhook timestamp outside tolerance")
)

const signatureTolerance = 5 * time.Minute

// VerifyStripeSignature checks a Stripe-Signature header against the raw
// payload. The header carries `t=<unix>,v1=<hex hmac>` pairs; the signed
// message is "<t>.<payload>" under HMAC-SHA256 with the endpoint secret.
// Multiple v1 entries may appear during secret rollover; any match passes.
func VerifyStripeSignature(payload []byte, header, secret string, now time.Time) error {
	var ts int64
	var candidates []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			v, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return ErrBadSignature
			}
			ts = v
		case "v1":
			candidates = append(candidates, kv[1])
		}
	}
	if ts == 0 || len(candidates) == 0 {
		return ErrBadSignature
	}

	sent := time.Unix(ts, 0)
	if diff := now.Sub(sent); diff > signatureTolerance || diff < -signatureTolerance {
		return ErrStaleWebhook
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, candidate := range candidates {
		if hmac.Equal([]byte(candidate), []byte(expected)) {
			return nil
		}
	}
	return ErrBadSignature
}

// SignStripePayload produces a Stripe-Signature header value for a payload.
// Used by tests; Stripe produces the real ones.
func SignStripePayload(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", at.Unix())
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

// Event is the envelope Stripe posts to the webhook endpoint, narrowed to
// what order reconciliation needs.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// ParseEvent decodes the webhook envelope.
func ParseEvent(payload []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(payload, &e); err != nil {
		return Event{}, err
	}
	if e.Type == "" {
		return Event{}, errors.New("webhook event missing type")
	}
	return e, nil
}

// CheckoutSession extracts the checkout session id carried in the intent
// metadata, or "" when absent.
func (e Event) CheckoutSession() string {
	return e.Data.Object.Metadata[metadataSessionKey]
}
