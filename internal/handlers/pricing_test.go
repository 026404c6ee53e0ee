package handlers

import "testing"

func TestEffectiveProductPriceAppliesDiscount(t *testing.T) {
	if got := effectiveProductPrice(100, 25); got != 75 {
		t.Fatalf("expected 75, got %v", got)
	}
	if got := effectiveProductPrice(100, 0); got != 100 {
		t.Fatalf("expected regular price 100 without discount, got %v", got)
	}
	if got := effectiveProductPrice(99.99, 10); got != 89.99 {
		t.Fatalf("expected cents rounding to 89.99, got %v", got)
	}
}

func TestValidateDiscountFieldsRejectsOutOfRange(t *testing.T) {
	tests := []float64{-5, 101, 150}
	for _, discount := range tests {
		if err := validateDiscountFields(100, discount); err == nil {
			t.Fatalf("expected validation error for discount=%v", discount)
		}
	}
	if err := validateDiscountFields(100, 100); err != nil {
		t.Fatalf("discount=100 should be allowed, got %v", err)
	}
}

func TestResolveDiscountUpdateKeepsExistingValues(t *testing.T) {
	result, err := resolveDiscountUpdate(200, 10, discountUpdateInput{})
	if err != nil {
		t.Fatalf("resolveDiscountUpdate returned error: %v", err)
	}
	if result.Price != 200 || result.Discount != 10 || result.SetDiscount {
		t.Fatalf("expected existing values preserved, got %+v", result)
	}
}

func TestResolveDiscountUpdateValidatesNewDiscount(t *testing.T) {
	bad := 120.0
	if _, err := resolveDiscountUpdate(200, 0, discountUpdateInput{Discount: &bad}); err == nil {
		t.Fatal("expected validation error for discount above 100")
	}

	price := 150.0
	discount := 50.0
	result, err := resolveDiscountUpdate(200, 0, discountUpdateInput{Price: &price, Discount: &discount})
	if err != nil {
		t.Fatalf("resolveDiscountUpdate returned error: %v", err)
	}
	if result.Price != 150 || result.Discount != 50 || !result.SetDiscount {
		t.Fatalf("unexpected result %+v", result)
	}
}
