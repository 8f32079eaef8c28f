package http

import (
	"fmt"
	"html/template"
	"net/url"

	"github.com/resheikhi/samdash/entities"
	"github.com/resheikhi/samdash/predictor/chart"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Fixed income fund price prediction</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2rem auto; color: #333; }
label { display: block; margin-top: .75rem; }
input { padding: .3rem; width: 16rem; }
button { margin-top: 1rem; padding: .4rem 1.2rem; }
.error { color: #b00020; margin-top: 1rem; }
table { border-collapse: collapse; margin-top: .5rem; }
th, td { border: 1px solid #ccc; padding: .3rem .8rem; text-align: right; }
iframe { border: 0; width: 100%; height: 460px; }
.downloads a { margin-right: 1rem; }
</style>
</head>
<body>
<h1>Fixed income fund price prediction</h1>
<form method="get" action="/prediction">
  <label>Effective annual rate (%)
    <input type="number" name="rate" min="0" step="0.0001" value="{{.Rate}}">
  </label>
  <label>Today's fund price
    <input type="number" name="price" min="0" step="0.01" value="{{.Price}}">
  </label>
  <label>Days to predict
    <input type="number" name="days" min="0" step="1" value="{{.Days}}">
  </label>
  <button type="submit">Calculate</button>
</form>
{{with .Error}}<p class="error">{{.}}</p>{{end}}
{{with .Result}}
<h2>Price for the next {{len .Rows}} days</h2>
<p>Daily rate: {{.DailyRate}}</p>
<table>
  <thead><tr><th>Day</th><th>Fund price</th></tr></thead>
  <tbody>
  {{range .Rows}}<tr class="day"><td>{{.Day}}</td><td>{{.Price}}</td></tr>
  {{end}}
  </tbody>
</table>
<h2>{{.ChartTitle}}</h2>
<iframe src="{{.ChartURL}}" title="{{.ChartTitle}}"></iframe>
<p class="downloads">
  <a href="{{.XLSXURL}}">Download Excel file</a>
  <a href="{{.CSVURL}}">Download CSV</a>
  <a href="{{.PDFURL}}">Download PDF report</a>
</p>
{{end}}
</body>
</html>
`))

type pageData struct {
	Rate   string
	Price  string
	Days   string
	Error  string
	Result *pageResult
}

type pageRow struct {
	Day   int
	Price string
}

type pageResult struct {
	DailyRate  string
	Rows       []pageRow
	ChartTitle string
	ChartURL   template.URL
	XLSXURL    template.URL
	CSVURL     template.URL
	PDFURL     template.URL
}

func newPageResult(p entities.Prediction, query url.Values, tableRows, chartRows int) *pageResult {
	head := p.Head(tableRows)
	rows := make([]pageRow, len(head))
	for i, d := range head {
		rows[i] = pageRow{Day: d.Day, Price: fmt.Sprintf("%.2f", d.Price)}
	}

	q := query.Encode()
	link := func(path string) template.URL {
		return template.URL(path + "?" + q)
	}

	return &pageResult{
		DailyRate:  fmt.Sprintf("%.8f", p.DailyRate),
		Rows:       rows,
		ChartTitle: chart.Title(len(p.Head(chartRows))),
		ChartURL:   link("/prediction/chart"),
		XLSXURL:    link("/prediction/xlsx"),
		CSVURL:     link("/prediction/csv"),
		PDFURL:     link("/prediction/pdf"),
	}
}
