package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/resheikhi/samdash/entities"
)

const ContentType = "application/pdf"

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
)

type report struct {
	pdf        *fpdf.Fpdf
	prediction entities.Prediction
	rows       int
	now        time.Time
}

// Write renders a one page summary of the prediction followed by a table of
// its first rows days.
func Write(w io.Writer, p entities.Prediction, rows int, now time.Time) error {
	r := &report{
		pdf:        fpdf.New("P", "mm", "A4", ""),
		prediction: p,
		rows:       rows,
		now:        now,
	}

	r.pdf.SetMargins(marginLeft, marginTop, marginRight)
	r.pdf.SetAutoPageBreak(true, marginBottom)
	r.pdf.SetTitle("Fund price prediction", false)

	r.addSummary()
	r.addTable()

	if err := r.pdf.Output(w); err != nil {
		return fmt.Errorf("output pdf: %w", err)
	}
	return nil
}

func (r *report) addSummary() {
	r.pdf.AddPage()

	r.pdf.SetFont("Arial", "B", 20)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 12, "Fund price prediction", "", 1, "C", false, 0, "")

	r.pdf.SetFont("Arial", "I", 10)
	r.pdf.SetTextColor(80, 80, 80)
	r.pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Generated: %s", r.now.Format("2 January 2006")), "", 1, "C", false, 0, "")
	r.pdf.Ln(8)

	p := r.prediction
	finalPrice := p.PriceStart
	if len(p.Days) > 0 {
		finalPrice = p.Days[len(p.Days)-1].Price
	}

	lines := [][2]string{
		{"Effective annual rate", fmt.Sprintf("%.4f%%", p.RateAnnual*100)},
		{"Start price", fmt.Sprintf("%.2f", p.PriceStart)},
		{"Daily rate", fmt.Sprintf("%.8f", p.DailyRate)},
		{"Horizon", fmt.Sprintf("%d days", p.HorizonDays)},
		{"Price at horizon", fmt.Sprintf("%.2f", finalPrice)},
	}

	r.pdf.SetFillColor(245, 247, 250)
	r.pdf.SetDrawColor(200, 200, 200)
	r.pdf.SetTextColor(50, 50, 50)
	for _, l := range lines {
		r.pdf.SetFont("Arial", "B", 11)
		r.pdf.CellFormat(contentWidth/2, 7, l[0], "1", 0, "L", true, 0, "")
		r.pdf.SetFont("Arial", "", 11)
		r.pdf.CellFormat(contentWidth/2, 7, l[1], "1", 1, "R", false, 0, "")
	}
	r.pdf.Ln(8)
}

func (r *report) addTable() {
	days := r.prediction.Head(r.rows)
	if len(days) == 0 {
		return
	}

	r.pdf.SetFont("Arial", "B", 12)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 8, fmt.Sprintf("Price for the next %d days", len(days)), "", 1, "L", false, 0, "")

	colWidths := []float64{contentWidth * 0.2, contentWidth * 0.4, contentWidth * 0.4}

	r.pdf.SetFont("Arial", "B", 10)
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	for i, h := range []string{"Day", "Fund price", "Daily simple return"} {
		r.pdf.CellFormat(colWidths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	r.pdf.Ln(-1)

	r.pdf.SetFont("Arial", "", 10)
	r.pdf.SetTextColor(50, 50, 50)
	for i, d := range days {
		fill := i%2 == 1
		r.pdf.SetFillColor(245, 247, 250)
		r.pdf.CellFormat(colWidths[0], 6, fmt.Sprintf("%d", d.Day), "1", 0, "C", fill, 0, "")
		r.pdf.CellFormat(colWidths[1], 6, fmt.Sprintf("%.2f", d.Price), "1", 0, "R", fill, 0, "")
		r.pdf.CellFormat(colWidths[2], 6, fmt.Sprintf("%.6f%%", d.SimpleReturn*100), "1", 1, "R", fill, 0, "")
	}
}
