package entities

type PredictionRequest struct {
	RatePercent float64 `json:"rate_percent"`
	PriceStart  float64 `json:"price_start"`
	HorizonDays *int    `json:"horizon_days,omitempty"`
}

type DayPrice struct {
	Day          int     `json:"day"`
	Price        float64 `json:"price"`
	SimpleReturn float64 `json:"simple_return"`
}

type Prediction struct {
	RateAnnual  float64    `json:"rate_annual"`
	PriceStart  float64    `json:"price_start"`
	HorizonDays int        `json:"horizon_days"`
	DailyRate   float64    `json:"daily_rate"`
	Days        []DayPrice `json:"days"`
}

// Head returns at most n leading days.
func (p Prediction) Head(n int) []DayPrice {
	if n < 0 {
		n = 0
	}
	if n > len(p.Days) {
		n = len(p.Days)
	}
	return p.Days[:n]
}

// PredictionReply is the message the worker publishes back on the reply queue.
type PredictionReply struct {
	Prediction *Prediction `json:"prediction,omitempty"`
	Error      string      `json:"error,omitempty"`
}

type ErrorResp struct {
	Error string `json:"error"`
}
