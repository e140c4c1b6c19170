package catalog

import "testing"

func TestEffectivePriceMinor(t *testing.T) {
	cases := []struct {
		name string
		p    Product
		want int64
	}{
		{"no discount", Product{PriceMinor: 1000, DiscountType: DiscountNone}, 1000},
		{"empty discount type", Product{PriceMinor: 1000}, 1000},
		{"percentage", Product{PriceMinor: 1000, DiscountType: DiscountPercentage, PercentDiscount: 25}, 750},
		{"percentage truncates", Product{PriceMinor: 999, DiscountType: DiscountPercentage, PercentDiscount: 10}, 900},
		{"percentage over 100 caps", Product{PriceMinor: 1000, DiscountType: DiscountPercentage, PercentDiscount: 150}, 0},
		{"percentage zero", Product{PriceMinor: 1000, DiscountType: DiscountPercentage, PercentDiscount: 0}, 1000},
		{"fixed", Product{PriceMinor: 1000, DiscountType: DiscountFixed, FixedDiscountMinor: 300}, 700},
		{"fixed floors at zero", Product{PriceMinor: 1000, DiscountType: DiscountFixed, FixedDiscountMinor: 1500}, 0},
	}
	for _, tc := range cases {
		if got := tc.p.EffectivePriceMinor(); got != tc.want {
			t.Errorf("%s: got %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestPurchasable(t *testing.T) {
	published := Product{Status: ProductStatusPublished, Stock: 3}
	if !published.Purchasable(3) {
		t.Error("exact stock should be purchasable")
	}
	if published.Purchasable(4) {
		t.Error("over stock without backorders should not be purchasable")
	}
	if published.Purchasable(0) {
		t.Error("zero quantity is never purchasable")
	}

	backorder := Product{Status: ProductStatusPublished, Stock: 0, AllowBackorders: true}
	if !backorder.Purchasable(10) {
		t.Error("backorders should allow sales past stock")
	}

	draft := Product{Status: ProductStatusDraft, Stock: 100}
	if draft.Purchasable(1) {
		t.Error("draft products must not be purchasable")
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Ergonomic Desk Chair":  "ergonomic-desk-chair",
		"  Trim Me  ":           "trim-me",
		"Multi --- Hyphens!!":   "multi-hyphens",
		"Café crème 2.0":        "café-crème-2-0",
		"UPPER":                 "upper",
		"ends with punctuation!": "ends-with-punctuation",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
