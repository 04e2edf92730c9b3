package generate_report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"

	"sales-dashboard/internal/storage"
)

const SheetName = "Sales"

// record раскладывает факт по колонкам storage.FactColumns.
func record(f storage.OrderLineFact) []string {
	return []string{
		fmt.Sprint(f.OrderID),
		f.OrderNumber,
		f.OrderDate.Format(storage.DateLayout),
		string(f.State),
		f.Customer,
		deref(f.Salesperson),
		f.Quantity.String(),
		f.LineTotal.String(),
		f.Product,
		deref(f.Category),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// CSV writes the facts comma separated with a header row and no index column.
func CSV(facts []storage.OrderLineFact) ([]byte, error) {
	const op = "service.generate_report.CSV"

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(storage.FactColumns); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, f := range facts {
		if err := w.Write(record(f)); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return buf.Bytes(), nil
}

// Excel builds a workbook with one "Sales" sheet, one row per fact.
func Excel(facts []storage.OrderLineFact) ([]byte, error) {
	const op = "service.generate_report.Excel"

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Жирная шапка
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i, name := range storage.FactColumns {
		f.SetCellValue(SheetName, cellName(i+1, 1), name)
	}
	lastCol := cellName(len(storage.FactColumns), 1)
	if err := f.SetCellStyle(SheetName, "A1", lastCol, headerStyle); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for rowIdx, fact := range facts {
		rowNum := rowIdx + 2

		// количество и сумма идут числами, не текстом
		f.SetCellValue(SheetName, cellName(1, rowNum), fact.OrderID)
		f.SetCellValue(SheetName, cellName(2, rowNum), fact.OrderNumber)
		f.SetCellValue(SheetName, cellName(3, rowNum), fact.OrderDate.Format(storage.DateLayout))
		f.SetCellValue(SheetName, cellName(4, rowNum), string(fact.State))
		f.SetCellValue(SheetName, cellName(5, rowNum), fact.Customer)
		f.SetCellValue(SheetName, cellName(6, rowNum), deref(fact.Salesperson))
		f.SetCellValue(SheetName, cellName(7, rowNum), fact.Quantity.InexactFloat64())
		f.SetCellValue(SheetName, cellName(8, rowNum), fact.LineTotal.InexactFloat64())
		f.SetCellValue(SheetName, cellName(9, rowNum), fact.Product)
		f.SetCellValue(SheetName, cellName(10, rowNum), deref(fact.Category))
	}

	// Закрепляем первую строку
	f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
	})
	f.SetColWidth(SheetName, "A", "J", 15)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
