package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/resheikhi/samdash/entities"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	SheetName   = "Prediction"

	PriceHeader  = "Fund price"
	ReturnHeader = "Daily simple return"
)

// Write renders the full prediction as a single-sheet workbook with a
// header row and the price and simple return columns. No index column is
// written.
func Write(w io.Writer, p entities.Prediction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &[]any{PriceHeader, ReturnHeader}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, d := range p.Days {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(SheetName, cell, &[]any{d.Price, d.SimpleReturn}); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	return nil
}
