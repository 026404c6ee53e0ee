package handlers

import (
	"fmt"
	"math"
)

type discountUpdateInput struct {
	Price    *float64
	Discount *float64
}

type discountUpdateResult struct {
	Price       float64
	Discount    float64
	SetDiscount bool
}

func isProductDiscounted(price, discount float64) bool {
	return price > 0 && discount > 0 && discount <= 100
}

// effectiveProductPrice applies the percentage discount, rounded to cents.
func effectiveProductPrice(price, discount float64) float64 {
	if !isProductDiscounted(price, discount) {
		return price
	}
	discounted := price * (100 - discount) / 100
	return math.Round(discounted*100) / 100
}

func validateDiscountFields(price, discount float64) error {
	if price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if discount < 0 || discount > 100 {
		return fmt.Errorf("discount must be between 0 and 100")
	}
	return nil
}

func resolveDiscountUpdate(existingPrice, existingDiscount float64, input discountUpdateInput) (discountUpdateResult, error) {
	result := discountUpdateResult{
		Price:    existingPrice,
		Discount: existingDiscount,
	}

	if input.Price != nil {
		result.Price = *input.Price
	}
	if input.Discount != nil {
		result.Discount = *input.Discount
		result.SetDiscount = true
	}

	if err := validateDiscountFields(result.Price, result.Discount); err != nil {
		return discountUpdateResult{}, err
	}

	return result, nil
}
