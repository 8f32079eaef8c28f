package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/resheikhi/samdash/entities"
)

const SeriesName = "Fund price"

// Title is the chart heading for a view of n days.
func Title(n int) string {
	return fmt.Sprintf("Predicted price for the next %d days", n)
}

// NewLine builds a price line chart over the first rows days.
func NewLine(p entities.Prediction, rows int) *charts.Line {
	days := p.Head(rows)

	xs := make([]int, len(days))
	data := make([]opts.LineData, len(days))
	for i, d := range days {
		xs[i] = d.Day
		data[i] = opts.LineData{Value: d.Price}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Fund price prediction",
			Width:     "100%",
			Height:    "420px",
		}),
		charts.WithTitleOpts(opts.Title{Title: Title(len(days))}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Day"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Fund price"}),
	)
	line.SetXAxis(xs).AddSeries(SeriesName, data)

	return line
}

// Render writes the chart as a complete HTML page.
func Render(w io.Writer, p entities.Prediction, rows int) error {
	if err := NewLine(p, rows).Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
