package export

import (
	"fmt"
	"io"
	"time"

	"shopledger/models"

	"github.com/xuri/excelize/v2"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	SheetName   = "Transactions"
)

var headings = []string{"Date", "Type", "Product", "Quantity", "Amount", "Comment"}

// TransactionsXLSX writes txs as a single-sheet workbook. Dates are rendered
// in loc.
func TransactionsXLSX(w io.Writer, txs []models.Transaction, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	for i, h := range headings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return err
		}
	}

	for i, t := range txs {
		row := []interface{}{
			t.CreatedAt.In(loc).Format("2006-01-02 15:04"),
			string(t.Kind),
			deref(t.ProductName),
			quantity(t.Quantity),
			t.Amount.InexactFloat64(),
			deref(t.Comment),
		}
		if err := f.SetSheetRow(SheetName, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 18); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "C", "C", 28); err != nil {
		return err
	}

	return f.Write(w)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func quantity(q *int) interface{} {
	if q == nil {
		return ""
	}
	return *q
}
