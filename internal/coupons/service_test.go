package coupons

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rentkart/rentkart-backend/pkg/db/models"
	"github.com/rentkart/rentkart-backend/pkg/enums"
)

func TestComputeDiscountFlatCappedAtSubtotal(t *testing.T) {
	t.Parallel()

	coupon := &models.Coupon{
		Type:  enums.CouponTypeFlat,
		Value: decimal.RequireFromString("500"),
	}

	discount := ComputeDiscount(coupon, decimal.RequireFromString("300"))
	if !discount.Equal(decimal.RequireFromString("300")) {
		t.Fatalf("expected 300, got %s", discount)
	}

	discount = ComputeDiscount(coupon, decimal.RequireFromString("800"))
	if !discount.Equal(decimal.RequireFromString("500")) {
		t.Fatalf("expected 500, got %s", discount)
	}
}

func TestComputeDiscountPercentageWithCap(t *testing.T) {
	t.Parallel()

	cap := decimal.RequireFromString("100")
	coupon := &models.Coupon{
		Type:        enums.CouponTypePercentage,
		Value:       decimal.RequireFromString("20"),
		MaxDiscount: &cap,
	}

	// 20% of 300 = 60, under the cap.
	discount := ComputeDiscount(coupon, decimal.RequireFromString("300"))
	if !discount.Equal(decimal.RequireFromString("60")) {
		t.Fatalf("expected 60, got %s", discount)
	}

	// 20% of 1000 = 200, capped at 100.
	discount = ComputeDiscount(coupon, decimal.RequireFromString("1000"))
	if !discount.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("expected 100, got %s", discount)
	}
}

func TestComputeDiscountPercentageWithoutCap(t *testing.T) {
	t.Parallel()

	coupon := &models.Coupon{
		Type:  enums.CouponTypePercentage,
		Value: decimal.RequireFromString("15"),
	}

	discount := ComputeDiscount(coupon, decimal.RequireFromString("2000"))
	if !discount.Equal(decimal.RequireFromString("300")) {
		t.Fatalf("expected 300, got %s", discount)
	}
}

func TestComputeDiscountNilOrEmpty(t *testing.T) {
	t.Parallel()

	if !ComputeDiscount(nil, decimal.RequireFromString("100")).IsZero() {
		t.Fatal("expected zero discount for nil coupon")
	}

	coupon := &models.Coupon{Type: enums.CouponTypeFlat, Value: decimal.RequireFromString("50")}
	if !ComputeDiscount(coupon, decimal.Zero).IsZero() {
		t.Fatal("expected zero discount for zero subtotal")
	}
}
