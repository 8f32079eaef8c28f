package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/resheikhi/samdash/entities"
	"github.com/resheikhi/samdash/predictor/export/xlsx"
)

const ContentType = "text/csv"

func Write(w io.Writer, p entities.Prediction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{xlsx.PriceHeader, xlsx.ReturnHeader}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, d := range p.Days {
		record := []string{
			strconv.FormatFloat(d.Price, 'f', -1, 64),
			strconv.FormatFloat(d.SimpleReturn, 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write day %d: %w", d.Day, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
