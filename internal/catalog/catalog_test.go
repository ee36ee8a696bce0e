package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestEffectivePrice(t *testing.T) {
	list := decimal.RequireFromString("150.00")
	discounted := decimal.RequireFromString("99.50")

	if got := effectivePrice(list, nil); !got.Equal(list) {
		t.Fatalf("expected list price %s, got %s", list, got)
	}
	if got := effectivePrice(list, &discounted); !got.Equal(discounted) {
		t.Fatalf("expected discounted price %s, got %s", discounted, got)
	}

	zero := decimal.Zero
	if got := effectivePrice(list, &zero); !got.Equal(zero) {
		t.Fatalf("a present zero discount still overrides, got %s", got)
	}
}
