// Package export writes a loaded bill list to an Excel workbook, the shape
// the accounting side expects when a list is handed over.
package export

import (
	"fmt"
	"math"

	"github.com/billedhq/expense-client/internal/domain/entity"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const sheetName = "Notes de frais"

var headers = []string{"Type", "Nom", "Date", "Montant", "TVA", "Pct", "Statut", "Justificatif"}

// ExcelExporter renders display bills into an xlsx file
type ExcelExporter struct {
	logger *zap.Logger
}

// NewExcelExporter creates a new exporter
func NewExcelExporter(logger *zap.Logger) *ExcelExporter {
	return &ExcelExporter{logger: logger}
}

// Export writes the bills to outputPath, one row per bill under a header
// row. The list is written in the order given, which the loader has already
// sorted most recent first.
func (e *ExcelExporter) Export(bills []entity.DisplayBill, outputPath string) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.Warn("Failed to close workbook", zap.Error(err))
		}
	}()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		e.logger.Debug("Default sheet not removed", zap.Error(err))
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, bill := range bills {
		row := i + 2
		values := []interface{}{
			bill.Type,
			bill.Name,
			bill.FormattedDate,
			cellNumber(bill.Amount),
			cellNumber(bill.Vat),
			bill.Pct,
			bill.StatusLabel,
			bill.FileURL,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("failed to compute cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	e.logger.Info("Bill list exported",
		zap.String("path", outputPath),
		zap.Int("count", len(bills)))
	return nil
}

// cellNumber keeps NaN amounts out of the sheet; they render as blank cells
func cellNumber(v float64) interface{} {
	if math.IsNaN(v) {
		return ""
	}
	return v
}
