package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resheikhi/samdash/predictor"
)

func TestWrite(t *testing.T) {
	now := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   predictor.Input
	}{
		{name: "full year", in: predictor.Input{RateAnnual: 0.10, PriceStart: 1000, HorizonDays: 365}},
		{name: "empty horizon", in: predictor.Input{RateAnnual: 0.10, PriceStart: 1000}},
		{name: "zero price", in: predictor.Input{RateAnnual: 0.10, HorizonDays: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, predictor.Predict(tt.in), 10, now))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
		})
	}
}
