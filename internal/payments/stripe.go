package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultStripeBaseURL = "https://api.stripe.com"

var ErrStripeUnavailable = errors.New("stripe request failed")

// StripeClient is a thin adapter over the Stripe REST API. Only the
// endpoints this platform needs are implemented: payment intents and tax
// calculations. BaseURL is injectable so tests can point it at a stub.
type StripeClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewStripeClient(apiKey string) *StripeClient {
	return &StripeClient{
		apiKey:  apiKey,
		baseURL: defaultStripeBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// WithBaseURL overrides the API host. Test hook.
func (c *StripeClient) WithBaseURL(u string) *StripeClient {
	c.baseURL = strings.TrimSuffix(u, "/")
	return c
}

// PaymentIntent is the subset of the Stripe payment intent object we use.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// CreatePaymentIntent creates an automatic-payment-methods intent. Metadata
// keys ride along and come back on webhook events.
func (c *StripeClient) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (PaymentIntent, error) {
	if amountMinor <= 0 || currency == "" {
		return PaymentIntent{}, fmt.Errorf("invalid intent request: amount=%d currency=%q", amountMinor, currency)
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountMinor, 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("automatic_payment_methods[enabled]", "true")
	for k, v := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var out PaymentIntent
	if err := c.post(ctx, "/v1/payment_intents", form, &out); err != nil {
		return PaymentIntent{}, err
	}
	return out, nil
}

// TaxLine is one line of a tax calculation request.
type TaxLine struct {
	AmountMinor int64
	Quantity    int
	Reference   string
}

type taxCalculationResponse struct {
	TaxAmountExclusive int64 `json:"tax_amount_exclusive"`
	AmountTotal        int64 `json:"amount_total"`
}

// CalculateTax runs a Stripe tax calculation for the given lines and
// destination country, returning the exclusive tax amount in minor units.
func (c *StripeClient) CalculateTax(ctx context.Context, currency, country string, lines []TaxLine) (int64, error) {
	if len(lines) == 0 {
		return 0, nil
	}

	form := url.Values{}
	form.Set("currency", strings.ToLower(currency))
	form.Set("customer_details[address][country]", country)
	form.Set("customer_details[address_source]", "shipping")
	for i, l := range lines {
		form.Set(fmt.Sprintf("line_items[%d][amount]", i), strconv.FormatInt(l.AmountMinor, 10))
		form.Set(fmt.Sprintf("line_items[%d][quantity]", i), strconv.Itoa(l.Quantity))
		form.Set(fmt.Sprintf("line_items[%d][reference]", i), l.Reference)
	}

	var out taxCalculationResponse
	if err := c.post(ctx, "/v1/tax/calculations", form, &out); err != nil {
		return 0, err
	}
	return out.TaxAmountExclusive, nil
}

func (c *StripeClient) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStripeUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s: %s", ErrStripeUnavailable, path, resp.Status, summarizeStripeError(body))
	}
	return json.Unmarshal(body, out)
}

func summarizeStripeError(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}
