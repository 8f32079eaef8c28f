package predictor

import (
	"math"

	"github.com/resheikhi/samdash/entities"
)

// DaysPerYear is the annualisation convention for the daily rate. It is
// independent of the projection horizon.
const DaysPerYear = 365

// DefaultHorizonDays is the horizon used when the caller does not pick one.
const DefaultHorizonDays = 365

// DailyRate converts an effective annual rate into the equivalent daily
// compounding rate: (1+ear)^(1/365) - 1.
func DailyRate(ear float64) float64 {
	return math.Pow(1+ear, 1.0/DaysPerYear) - 1
}

// PredictDailyPrices compounds priceStart by the daily rate of ear for the
// given number of days. The seed price is not part of the returned series.
// A non-positive horizon yields an empty series.
func PredictDailyPrices(ear, priceStart float64, days int) ([]float64, float64) {
	dailyRate := DailyRate(ear)
	if days <= 0 {
		return []float64{}, dailyRate
	}

	prices := make([]float64, days)
	price := priceStart
	for i := range prices {
		price *= 1 + dailyRate
		prices[i] = price
	}

	return prices, dailyRate
}

// SimpleReturns returns the day-over-day fractional change aligned with
// prices. The first element is always 0, and so is any element whose
// previous price is 0.
func SimpleReturns(prices []float64) []float64 {
	returns := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1]
		if prev == 0 {
			continue
		}
		returns[i] = (prices[i] - prev) / prev
	}
	return returns
}

// Predict runs the projection for a validated input.
func Predict(in Input) entities.Prediction {
	prices, dailyRate := PredictDailyPrices(in.RateAnnual, in.PriceStart, in.HorizonDays)
	returns := SimpleReturns(prices)

	days := make([]entities.DayPrice, len(prices))
	for i, p := range prices {
		days[i] = entities.DayPrice{
			Day:          i + 1,
			Price:        p,
			SimpleReturn: returns[i],
		}
	}

	horizon := in.HorizonDays
	if horizon < 0 {
		horizon = 0
	}

	return entities.Prediction{
		RateAnnual:  in.RateAnnual,
		PriceStart:  in.PriceStart,
		HorizonDays: horizon,
		DailyRate:   dailyRate,
		Days:        days,
	}
}
