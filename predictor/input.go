package predictor

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/resheikhi/samdash/entities"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNegativeRate   = fmt.Errorf("%w: annual rate must not be negative", ErrInvalidInput)
	ErrNegativePrice  = fmt.Errorf("%w: start price must not be negative", ErrInvalidInput)
	ErrInvalidHorizon = fmt.Errorf("%w: horizon days out of range", ErrInvalidInput)
	ErrOutOfRange     = fmt.Errorf("%w: prices overflow over the horizon", ErrInvalidInput)
)

var hundred = decimal.NewFromInt(100)

// Input is a projection request after the percentage has been converted to
// a fraction.
type Input struct {
	RateAnnual  float64
	PriceStart  float64
	HorizonDays int
}

// Validate reports whether the input is inside the projector's domain.
// maxDays <= 0 disables the upper horizon bound.
func (in Input) Validate(maxDays int) error {
	if in.RateAnnual < 0 {
		return ErrNegativeRate
	}
	if in.PriceStart < 0 {
		return ErrNegativePrice
	}
	if in.HorizonDays < 0 || (maxDays > 0 && in.HorizonDays > maxDays) {
		return ErrInvalidHorizon
	}

	dailyRate := DailyRate(in.RateAnnual)
	if !isFinite(dailyRate) || !isFinite(in.PriceStart) {
		return ErrOutOfRange
	}
	if in.PriceStart > 0 && !isFinite(in.PriceStart*math.Pow(1+dailyRate, float64(in.HorizonDays))) {
		return ErrOutOfRange
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// ParseInput reads the raw form values. ratePercent is a percentage
// ("10" means an EAR of 0.10). Empty rate and price mean zero, an empty
// horizon means defaultDays.
func ParseInput(ratePercent, priceStart, days string, defaultDays, maxDays int) (Input, error) {
	rate, err := parseDecimal(ratePercent)
	if err != nil {
		return Input{}, fmt.Errorf("parse rate: %w", err)
	}
	price, err := parseDecimal(priceStart)
	if err != nil {
		return Input{}, fmt.Errorf("parse price: %w", err)
	}

	horizon := defaultDays
	if s := strings.TrimSpace(days); s != "" {
		horizon, err = strconv.Atoi(s)
		if err != nil {
			return Input{}, fmt.Errorf("parse days: %w: %v", ErrInvalidInput, err)
		}
	}

	in := Input{
		RateAnnual:  rate.Div(hundred).InexactFloat64(),
		PriceStart:  price.InexactFloat64(),
		HorizonDays: horizon,
	}
	if err := in.Validate(maxDays); err != nil {
		return Input{}, err
	}

	return in, nil
}

// FromRequest converts an API request, applying defaultDays when the
// horizon is omitted.
func FromRequest(req entities.PredictionRequest, defaultDays, maxDays int) (Input, error) {
	horizon := defaultDays
	if req.HorizonDays != nil {
		horizon = *req.HorizonDays
	}

	in := Input{
		RateAnnual:  decimal.NewFromFloat(req.RatePercent).Div(hundred).InexactFloat64(),
		PriceStart:  req.PriceStart,
		HorizonDays: horizon,
	}
	if err := in.Validate(maxDays); err != nil {
		return Input{}, err
	}

	return in, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return d, nil
}
