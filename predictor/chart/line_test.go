package chart

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resheikhi/samdash/predictor"
)

func TestNewLine_LimitsRows(t *testing.T) {
	p := predictor.Predict(predictor.Input{RateAnnual: 0.10, PriceStart: 1000, HorizonDays: 365})

	line := NewLine(p, 60)
	require.Len(t, line.MultiSeries, 1)
	assert.Equal(t, SeriesName, line.MultiSeries[0].Name)
	assert.Len(t, line.MultiSeries[0].Data, 60)
}

func TestNewLine_ShortHorizon(t *testing.T) {
	p := predictor.Predict(predictor.Input{RateAnnual: 0.10, PriceStart: 1000, HorizonDays: 7})

	line := NewLine(p, 60)
	assert.Len(t, line.MultiSeries[0].Data, 7)
}

func TestRender(t *testing.T) {
	p := predictor.Predict(predictor.Input{RateAnnual: 0.10, PriceStart: 1000, HorizonDays: 365})

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, p, 60))

	out := buf.String()
	assert.Contains(t, out, "<html")
	assert.Contains(t, out, Title(60))
}
