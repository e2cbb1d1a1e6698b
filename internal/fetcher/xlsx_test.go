package fetcher

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createTestXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				cell := row.AddCell()
				cell.SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSX_Basic(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {
			{"CountyFIPS", "NAMELSAD", "2018_ZHVI_ALL"},
			{"51013", "Arlington County", "650000"},
			{"11001", "District of Columbia", ""},
		},
	})

	rows, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"CountyFIPS", "NAMELSAD", "2018_ZHVI_ALL"}, rows[0])
	assert.Equal(t, []string{"51013", "Arlington County", "650000"}, rows[1])
	assert.Equal(t, "District of Columbia", rows[2][1])
}

func TestReadXLSX_SkipRows(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {
			{"DMV housing values"},
			{"CountyFIPS", "NAMELSAD"},
			{"51013", "Arlington County"},
		},
	})

	rows, err := ReadXLSX(path, XLSXOptions{SkipRows: 1})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"CountyFIPS", "NAMELSAD"}, rows[0])
}

func TestReadXLSX_SheetSelection(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Counties": {{"CountyFIPS"}, {"51013"}},
	})

	rows, err := ReadXLSX(path, XLSXOptions{SheetName: "Counties"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"CountyFIPS"}, {"51013"}}, rows)

	_, err = ReadXLSX(path, XLSXOptions{SheetName: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "Missing" not found`)

	_, err = ReadXLSX(path, XLSXOptions{SheetIndex: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestReadXLSX_DropsTrailingBlankRows(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {{"CountyFIPS"}, {"51013"}, {""}, {""}},
	})

	rows, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestReadXLSX_MissingFile(t *testing.T) {
	_, err := ReadXLSX(filepath.Join(t.TempDir(), "none.xlsx"), XLSXOptions{})
	require.Error(t, err)
}
