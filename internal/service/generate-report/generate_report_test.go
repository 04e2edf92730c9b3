package generate_report

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sales-dashboard/internal/storage"
)

func testFacts() []storage.OrderLineFact {
	return []storage.OrderLineFact{
		{
			OrderID:     7,
			OrderNumber: "S00007",
			OrderDate:   time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			State:       storage.StateSale,
			Customer:    "Deco Addict, Inc.",
			Salesperson: storage.StrPtr("Mitchell Admin"),
			Quantity:    decimal.RequireFromString("2.5"),
			LineTotal:   decimal.RequireFromString("1234.56"),
			Product:     "Large Desk",
			Category:    storage.StrPtr("Office Furniture"),
		},
		{
			OrderID:     8,
			OrderNumber: "S00008",
			OrderDate:   time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
			State:       storage.StateDraft,
			Customer:    "Azure Interior",
			Quantity:    decimal.NewFromInt(1),
			LineTotal:   decimal.RequireFromString("0.10"),
			Product:     "Chair",
		},
	}
}

func TestCSV(t *testing.T) {
	data, err := CSV(testFacts())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, storage.FactColumns, records[0])
	assert.Equal(t, []string{
		"7", "S00007", "2024-03-05", "sale", "Deco Addict, Inc.", "Mitchell Admin",
		"2.5", "1234.56", "Large Desk", "Office Furniture",
	}, records[1])

	// пустые значения вместо null
	assert.Equal(t, "", records[2][5])
	assert.Equal(t, "", records[2][9])
	assert.Equal(t, "0.1", records[2][7])
}

func TestCSV_Empty(t *testing.T) {
	data, err := CSV(nil)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, storage.FactColumns, records[0])
}

func TestExcel(t *testing.T) {
	data, err := Excel(testFacts())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, storage.FactColumns, rows[0])

	assert.Equal(t, "S00007", rows[1][1])
	assert.Equal(t, "2024-03-05", rows[1][2])
	assert.Equal(t, "1234.56", rows[1][7])
	assert.Equal(t, "Office Furniture", rows[1][9])

	assert.Equal(t, "Azure Interior", rows[2][4])

	panes, err := f.GetPanes(SheetName)
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)
}
