package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentkart/rentkart-backend/pkg/db/models"
	"github.com/rentkart/rentkart-backend/pkg/enums"
)

type stubRateSource struct {
	rates []models.RentalPrice
	err   error
}

func (s *stubRateSource) FindRatesByVariant(ctx context.Context, variantID uuid.UUID) ([]models.RentalPrice, error) {
	return s.rates, s.err
}

func rateFor(unit enums.RentalUnit, price string) models.RentalPrice {
	return models.RentalPrice{
		ID:        uuid.New(),
		VariantID: uuid.New(),
		Price:     decimal.RequireFromString(price),
		Period: &models.RentalPeriod{
			ID:       uuid.New(),
			Duration: 1,
			Unit:     unit,
			Active:   true,
		},
	}
}

func interval(t *testing.T, duration time.Duration) (time.Time, time.Time) {
	t.Helper()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return start, start.Add(duration)
}

func TestComputeRentalPriceDailyRateWholeDays(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubRateSource{rates: []models.RentalPrice{rateFor(enums.RentalUnitDay, "200")}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	start, end := interval(t, 72*time.Hour)
	price, err := svc.ComputeRentalPrice(context.Background(), uuid.New(), start, end)
	if err != nil {
		t.Fatalf("compute price: %v", err)
	}
	if !price.Equal(decimal.RequireFromString("600")) {
		t.Fatalf("expected 600, got %s", price)
	}
}

func TestComputeRentalPriceDailyRatePartialDayRoundsUp(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubRateSource{rates: []models.RentalPrice{rateFor(enums.RentalUnitDay, "200")}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	// 2.5 days bills as 3.
	start, end := interval(t, 60*time.Hour)
	price, err := svc.ComputeRentalPrice(context.Background(), uuid.New(), start, end)
	if err != nil {
		t.Fatalf("compute price: %v", err)
	}
	if !price.Equal(decimal.RequireFromString("600")) {
		t.Fatalf("expected 600, got %s", price)
	}
}

func TestComputeRentalPriceHourlySubDay(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubRateSource{rates: []models.RentalPrice{rateFor(enums.RentalUnitHour, "50")}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	start, end := interval(t, 5*time.Hour+30*time.Minute)
	price, err := svc.ComputeRentalPrice(context.Background(), uuid.New(), start, end)
	if err != nil {
		t.Fatalf("compute price: %v", err)
	}
	if !price.Equal(decimal.RequireFromString("300")) {
		t.Fatalf("expected 300, got %s", price)
	}
}

func TestComputeRentalPriceDailyBeatsHourlyForMultiDay(t *testing.T) {
	t.Parallel()

	rates := []models.RentalPrice{
		rateFor(enums.RentalUnitHour, "50"),
		rateFor(enums.RentalUnitDay, "200"),
	}
	svc, err := NewService(&stubRateSource{rates: rates})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	start, end := interval(t, 48*time.Hour)
	price, err := svc.ComputeRentalPrice(context.Background(), uuid.New(), start, end)
	if err != nil {
		t.Fatalf("compute price: %v", err)
	}
	// 48h at the hourly rate would be 2400; the daily rate must win.
	if !price.Equal(decimal.RequireFromString("400")) {
		t.Fatalf("expected 400, got %s", price)
	}
}

func TestComputeRentalPriceWeeklyRate(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubRateSource{rates: []models.RentalPrice{rateFor(enums.RentalUnitWeek, "1000")}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	// 10 days = 2 billed weeks.
	start, end := interval(t, 240*time.Hour)
	price, err := svc.ComputeRentalPrice(context.Background(), uuid.New(), start, end)
	if err != nil {
		t.Fatalf("compute price: %v", err)
	}
	if !price.Equal(decimal.RequireFromString("2000")) {
		t.Fatalf("expected 2000, got %s", price)
	}
}

func TestComputeRentalPriceMonthlyRate(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubRateSource{rates: []models.RentalPrice{rateFor(enums.RentalUnitMonth, "5000")}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	// 45 days = 2 billed months.
	start, end := interval(t, 45*24*time.Hour)
	price, err := svc.ComputeRentalPrice(context.Background(), uuid.New(), start, end)
	if err != nil {
		t.Fatalf("compute price: %v", err)
	}
	if !price.Equal(decimal.RequireFromString("10000")) {
		t.Fatalf("expected 10000, got %s", price)
	}
}

func TestComputeRentalPriceSubDayWithOnlyDailyRateBillsFullDay(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubRateSource{rates: []models.RentalPrice{rateFor(enums.RentalUnitDay, "200")}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	start, end := interval(t, 3*time.Hour)
	price, err := svc.ComputeRentalPrice(context.Background(), uuid.New(), start, end)
	if err != nil {
		t.Fatalf("compute price: %v", err)
	}
	if !price.Equal(decimal.RequireFromString("200")) {
		t.Fatalf("expected full-day minimum 200, got %s", price)
	}
}

func TestComputeRentalPriceNoRatesReturnsZero(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubRateSource{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	start, end := interval(t, 24*time.Hour)
	price, err := svc.ComputeRentalPrice(context.Background(), uuid.New(), start, end)
	if err != nil {
		t.Fatalf("compute price: %v", err)
	}
	if !price.IsZero() {
		t.Fatalf("expected zero, got %s", price)
	}
}

func TestComputeRentalPriceIgnoresInactivePeriods(t *testing.T) {
	t.Parallel()

	inactive := rateFor(enums.RentalUnitDay, "200")
	inactive.Period.Active = false
	svc, err := NewService(&stubRateSource{rates: []models.RentalPrice{inactive}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	start, end := interval(t, 48*time.Hour)
	price, err := svc.ComputeRentalPrice(context.Background(), uuid.New(), start, end)
	if err != nil {
		t.Fatalf("compute price: %v", err)
	}
	if !price.IsZero() {
		t.Fatalf("expected zero for inactive rate, got %s", price)
	}
}
