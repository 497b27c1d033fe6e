package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Day", "Time", "Status", "Subject"},
		Rows: []map[string]string{
			{"Day": "Friday", "Time": "12:01-12:55", "Status": "booked-recurring", "Subject": "FM MIX"},
			{"Day": "Monday", "Time": "7:30-8:15", "Status": "available"},
		},
	}
}

func TestCSVExporterOrdersCellsByHeader(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Friday", "12:01-12:55", "booked-recurring", "FM MIX"}, records[1])
	assert.Equal(t, "", records[2][3])
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{}, "")
	assert.Error(t, err)
	_, err = NewXLSXExporter().Render(Dataset{}, "")
	assert.Error(t, err)
}

func TestXLSXExporterWritesTitleAndRows(t *testing.T) {
	out, err := NewXLSXExporter().Render(sampleDataset(), "News 2024 week of 2024-09-09")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Schedule", "A1")
	require.NoError(t, err)
	assert.Equal(t, "News 2024 week of 2024-09-09", title)

	subject, err := f.GetCellValue("Schedule", "D3")
	require.NoError(t, err)
	assert.Equal(t, "FM MIX", subject)
}

func TestPDFExporterTruncatesLongCells(t *testing.T) {
	data := sampleDataset()
	data.Rows[0]["Subject"] = string(bytes.Repeat([]byte("x"), 80))

	out, err := NewPDFExporter().Render(data, "Weekly availability")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, 40, len([]rune(truncate(data.Rows[0]["Subject"], pdfMaxRunes))))
}
