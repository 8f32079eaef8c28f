package predictor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resheikhi/samdash/entities"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		name    string
		rate    string
		price   string
		days    string
		want    Input
		wantErr error
	}{
		{
			name:  "percent converted to fraction",
			rate:  "10",
			price: "1000",
			want:  Input{RateAnnual: 0.10, PriceStart: 1000, HorizonDays: 365},
		},
		{
			name:  "fractional percent",
			rate:  " 23.5000 ",
			price: "12.34",
			days:  "30",
			want:  Input{RateAnnual: 0.235, PriceStart: 12.34, HorizonDays: 30},
		},
		{
			name: "empty means zero",
			want: Input{HorizonDays: 365},
		},
		{
			name:  "zero horizon allowed",
			rate:  "5",
			price: "1",
			days:  "0",
			want:  Input{RateAnnual: 0.05, PriceStart: 1, HorizonDays: 0},
		},
		{name: "negative rate", rate: "-1", price: "10", wantErr: ErrNegativeRate},
		{name: "negative price", rate: "1", price: "-10", wantErr: ErrNegativePrice},
		{name: "negative days", rate: "1", price: "10", days: "-1", wantErr: ErrInvalidHorizon},
		{name: "days over max", rate: "1", price: "10", days: "5000", wantErr: ErrInvalidHorizon},
		{name: "malformed rate", rate: "ten", price: "10", wantErr: ErrInvalidInput},
		{name: "malformed price", rate: "1", price: "1,000", wantErr: ErrInvalidInput},
		{name: "rate overflows prices", rate: "1e100", price: "1000", days: "3650", wantErr: ErrOutOfRange},
		{name: "rate overflows daily rate", rate: "1e400", price: "1000", wantErr: ErrOutOfRange},
		{name: "price not finite", rate: "10", price: "1e400", wantErr: ErrOutOfRange},
		{name: "malformed days", rate: "1", price: "10", days: "1.5", wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInput(tt.rate, tt.price, tt.days, DefaultHorizonDays, 3650)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromRequest(t *testing.T) {
	days := 90
	in, err := FromRequest(entities.PredictionRequest{RatePercent: 10, PriceStart: 1000, HorizonDays: &days}, 365, 0)
	require.NoError(t, err)
	assert.Equal(t, Input{RateAnnual: 0.10, PriceStart: 1000, HorizonDays: 90}, in)

	in, err = FromRequest(entities.PredictionRequest{RatePercent: 10, PriceStart: 1000}, 365, 0)
	require.NoError(t, err)
	assert.Equal(t, 365, in.HorizonDays)

	_, err = FromRequest(entities.PredictionRequest{RatePercent: -0.5, PriceStart: 1000}, 365, 0)
	assert.ErrorIs(t, err, ErrNegativeRate)
}

func TestValidate_Finite(t *testing.T) {
	tests := []struct {
		name    string
		in      Input
		wantErr error
	}{
		{name: "large but finite", in: Input{RateAnnual: 100, PriceStart: 1000, HorizonDays: 3650}},
		{name: "overflowing growth", in: Input{RateAnnual: 1e98, PriceStart: 1000, HorizonDays: 3650}, wantErr: ErrOutOfRange},
		{name: "overflow with zero price stays zero", in: Input{RateAnnual: 1e98, PriceStart: 0, HorizonDays: 3650}},
		{name: "infinite rate", in: Input{RateAnnual: math.Inf(1), PriceStart: 0, HorizonDays: 1}, wantErr: ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate(3650)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)

			p := Predict(tt.in)
			for _, d := range p.Days {
				require.False(t, math.IsInf(d.Price, 0) || math.IsNaN(d.Price), "day %d price %v", d.Day, d.Price)
				require.False(t, math.IsInf(d.SimpleReturn, 0) || math.IsNaN(d.SimpleReturn), "day %d return %v", d.Day, d.SimpleReturn)
			}
		})
	}
}
