package extract

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, title, sheet string, cells map[string]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for cell, v := range cells {
		require.NoError(t, f.SetCellValue(sheet, cell, v))
	}
	if title != "" {
		require.NoError(t, f.SetDocProps(&excelize.DocProperties{Title: title}))
	}
	p := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(p))
	return p
}

func TestSheet_DocTitle(t *testing.T) {
	p := writeWorkbook(t, "Household Budget 2024", "Sheet1", map[string]string{"A1": "ignored header"})
	got, ok, err := Sheet{}.Extract(context.Background(), p)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Household Budget 2024", got)
}

func TestSheet_FirstCell(t *testing.T) {
	p := writeWorkbook(t, "", "Sheet1", map[string]string{"A1": "id", "B1": "Inventory Count"})
	got, ok, err := Sheet{}.Extract(context.Background(), p)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Inventory Count", got)

	p = writeWorkbook(t, "", "Payroll", map[string]string{"A2": "March Salaries"})
	got, ok, err = Sheet{}.Extract(context.Background(), p)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Payroll March Salaries", got)
}

func TestSheet_Empty(t *testing.T) {
	p := writeWorkbook(t, "", "Sheet1", nil)
	_, ok, err := Sheet{}.Extract(context.Background(), p)
	require.NoError(t, err)
	assert.False(t, ok)
}
