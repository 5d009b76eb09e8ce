package services

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Inventory"

var exportHeader = []interface{}{"ID", "Name", "Quantity", "Expiration", "Days left", "Bucket"}

// WriteInventoryWorkbook записывает список в xlsx-файл
func WriteInventoryWorkbook(w io.Writer, items []InventoryItem, now time.Time) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return err
	}

	for i, item := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			item.ID,
			item.Name,
			item.Quantity,
			item.Expiration.Format("2006-01-02"),
			DaysUntil(item.Expiration, now),
			string(BucketFor(item.Expiration, now)),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(exportSheet, "B", "B", 32); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}
