package pricing

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentkart/rentkart-backend/pkg/db/models"
	"github.com/rentkart/rentkart-backend/pkg/enums"
	pkgerrors "github.com/rentkart/rentkart-backend/pkg/errors"
)

// RateSource loads the configured rental rates for a variant.
type RateSource interface {
	FindRatesByVariant(ctx context.Context, variantID uuid.UUID) ([]models.RentalPrice, error)
}

// Service computes per-unit rental prices for a variant over an interval.
type Service interface {
	ComputeRentalPrice(ctx context.Context, variantID uuid.UUID, rentalStart, rentalEnd time.Time) (decimal.Decimal, error)
}

type service struct {
	rates RateSource
}

// NewService builds the rental pricer.
func NewService(rates RateSource) (Service, error) {
	if rates == nil {
		return nil, fmt.Errorf("rate source required")
	}
	return &service{rates: rates}, nil
}

// rateTable holds the first active rate configured per billing unit.
type rateTable struct {
	hourly  *decimal.Decimal
	daily   *decimal.Decimal
	weekly  *decimal.Decimal
	monthly *decimal.Decimal
	first   *decimal.Decimal
	firstU  enums.RentalUnit
}

// ComputeRentalPrice selects the applicable rate and prorates the
// interval, always rounding partial units up. The branch order below
// is a pricing contract: daily beats hourly for any stay of a day or
// more, and hourly only applies to sub-24h stays. Reordering the
// branches changes real prices.
func (s *service) ComputeRentalPrice(ctx context.Context, variantID uuid.UUID, rentalStart, rentalEnd time.Time) (decimal.Decimal, error) {
	if variantID == uuid.Nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "variant id required")
	}

	rates, err := s.rates.FindRatesByVariant(ctx, variantID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rental rates")
	}
	if len(rates) == 0 {
		return decimal.Zero, nil
	}

	table := buildRateTable(rates)

	durationHours := rentalEnd.Sub(rentalStart).Hours()
	durationDays := durationHours / 24

	switch {
	case durationDays >= 1 && table.daily != nil:
		return prorate(*table.daily, durationDays), nil

	case durationHours < 24 && table.hourly != nil:
		return prorate(*table.hourly, durationHours), nil

	case table.weekly != nil && durationDays >= 1:
		return multiplyUnits(*table.weekly, atLeastOne(math.Ceil(durationDays/7))), nil

	case table.monthly != nil && durationDays >= 1:
		return multiplyUnits(*table.monthly, atLeastOne(math.Ceil(durationDays/30))), nil
	}

	return fallbackPrice(table, durationHours, durationDays), nil
}

func buildRateTable(rates []models.RentalPrice) rateTable {
	var table rateTable
	for i := range rates {
		rate := rates[i]
		if rate.Period == nil || !rate.Period.Active {
			continue
		}
		if table.first == nil {
			price := rate.Price
			table.first = &price
			table.firstU = rate.Period.Unit
		}
		price := rate.Price
		switch rate.Period.Unit {
		case enums.RentalUnitHour:
			if table.hourly == nil {
				table.hourly = &price
			}
		case enums.RentalUnitDay:
			if table.daily == nil {
				table.daily = &price
			}
		case enums.RentalUnitWeek:
			if table.weekly == nil {
				table.weekly = &price
			}
		case enums.RentalUnitMonth:
			if table.monthly == nil {
				table.monthly = &price
			}
		}
	}
	return table
}

// fallbackPrice handles intervals that no guarded branch claimed, such
// as a sub-day stay with only a daily rate. Proration stays day-based
// for every unit except an hourly fallback, so a sub-day stay on a
// daily rate bills one full day.
func fallbackPrice(table rateTable, durationHours, durationDays float64) decimal.Decimal {
	switch {
	case table.daily != nil:
		return multiplyUnits(*table.daily, atLeastOne(math.Ceil(durationDays)))
	case table.hourly != nil:
		return multiplyUnits(*table.hourly, atLeastOne(math.Ceil(durationHours)))
	case table.weekly != nil:
		return multiplyUnits(*table.weekly, atLeastOne(math.Ceil(durationDays/7)))
	case table.monthly != nil:
		return multiplyUnits(*table.monthly, atLeastOne(math.Ceil(durationDays/30)))
	case table.first != nil:
		if table.firstU == enums.RentalUnitHour {
			return multiplyUnits(*table.first, atLeastOne(math.Ceil(durationHours)))
		}
		return multiplyUnits(*table.first, atLeastOne(math.Ceil(durationDays)))
	}
	return decimal.Zero
}

func prorate(rate decimal.Decimal, units float64) decimal.Decimal {
	return multiplyUnits(rate, int64(math.Ceil(units)))
}

func multiplyUnits(rate decimal.Decimal, units int64) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(units)).Round(2)
}

func atLeastOne(value float64) int64 {
	units := int64(value)
	if units < 1 {
		return 1
	}
	return units
}
