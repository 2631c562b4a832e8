package reporting

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MICA1991/financelitracy-quiz/internal/app/models/dto"
	"github.com/MICA1991/financelitracy-quiz/internal/pkg/apperrors"
)

func fixedExporter(cfg ExporterConfig) *Exporter {
	e := NewExporter(cfg)
	e.now = func() time.Time { return time.Date(2024, 6, 8, 23, 30, 0, 0, time.UTC) }
	return e
}

func openDocument(t *testing.T, doc *Document) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(doc.Content))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestExporter_EmptyIsHeaderOnly(t *testing.T) {
	doc, err := fixedExporter(ExporterConfig{}).Render(nil)
	require.NoError(t, err)

	assert.Equal(t, ContentTypeXLSX, doc.ContentType)
	assert.Equal(t, "game_sessions_export_2024-06-08.xlsx", doc.Filename)
	assert.Equal(t, 0, doc.Rows)

	f := openDocument(t, doc)
	rows, err := f.GetRows(DefaultSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ExportColumns, rows[0])
}

func TestExporter_RowsAndSummary(t *testing.T) {
	start := time.Date(2024, 5, 1, 14, 5, 9, 0, time.UTC)
	in := []dto.SessionRow{
		{StudentName: "Asha", StudentIdentifier: "FL-1", Contact: "asha@example.org", Level: 1, Score: 8, TotalQuestions: 10, Percentage: 80, TimeTakenSeconds: 60, StartTime: &start, HasFeedback: true},
		{StudentName: "Ravi", StudentIdentifier: "FL-2", Contact: "555", Level: 1, Score: 6, TotalQuestions: 10, Percentage: 60, TimeTakenSeconds: 95},
		{StudentName: NotAvailable, StudentIdentifier: NotAvailable, Contact: NotAvailable, Level: 2, Score: 5, TotalQuestions: 10, Percentage: 50, TimeTakenSeconds: 40},
	}

	doc, err := fixedExporter(ExporterConfig{}).Render(in)
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Rows)

	f := openDocument(t, doc)
	sheet := DefaultSheetName

	// data rows keep input order
	for i, name := range []string{"Asha", "Ravi", NotAvailable} {
		v, err := f.GetCellValue(sheet, cellName(t, 1, i+2))
		require.NoError(t, err)
		assert.Equal(t, name, v)
	}

	v, _ := f.GetCellValue(sheet, "K2")
	assert.Equal(t, "5/1/2024, 2:05:09 PM", v)
	v, _ = f.GetCellValue(sheet, "L2")
	assert.Equal(t, NotAvailable, v)
	v, _ = f.GetCellValue(sheet, "M2")
	assert.Equal(t, "Yes", v)
	v, _ = f.GetCellValue(sheet, "M3")
	assert.Equal(t, "No", v)

	// one blank row, then the summary band
	v, _ = f.GetCellValue(sheet, "A5")
	assert.Empty(t, v)

	want := [][2]string{
		{SummaryLabel, ""},
		{"Total Sessions", "3"},
		{"Average Score", "6.33"},
		{"Average Percentage", "63.33%"},
		{"Average Time (s)", "65.00"},
	}
	for i, w := range want {
		label, _ := f.GetCellValue(sheet, cellName(t, 1, 6+i))
		value, _ := f.GetCellValue(sheet, cellName(t, 2, 6+i))
		assert.Equal(t, w[0], label)
		assert.Equal(t, w[1], value)
	}

	last, _ := f.GetCellValue(sheet, "A11")
	assert.Empty(t, last)
}

func TestExporter_SummaryStyled(t *testing.T) {
	doc, err := fixedExporter(ExporterConfig{}).Render([]dto.SessionRow{{Score: 1, TotalQuestions: 1, Percentage: 100}})
	require.NoError(t, err)

	f := openDocument(t, doc)
	headerStyle, err := f.GetCellStyle(DefaultSheetName, "A1")
	require.NoError(t, err)
	summaryStyle, err := f.GetCellStyle(DefaultSheetName, "A4")
	require.NoError(t, err)

	assert.NotZero(t, headerStyle)
	assert.NotZero(t, summaryStyle)
	assert.NotEqual(t, headerStyle, summaryStyle)
}

func TestExporter_TimezoneAndPrefix(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	e := fixedExporter(ExporterConfig{FilenamePrefix: "sessions", Location: loc})

	// 23:30 UTC is already the next day in IST
	assert.Equal(t, "sessions_2024-06-09.xlsx", e.Filename())

	ts := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "5/1/2024, 5:30:00 AM", e.formatTime(&ts))
	assert.Equal(t, NotAvailable, e.formatTime(nil))
}

func TestExporter_RenderFailureReturnsNoDocument(t *testing.T) {
	e := fixedExporter(ExporterConfig{SheetName: strings.Repeat("x", 40)})

	doc, err := e.Render([]dto.SessionRow{{Score: 1}})
	assert.Nil(t, doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrExportRender))
}

func cellName(t *testing.T, col, row int) string {
	t.Helper()
	c, err := excelize.CoordinatesToCellName(col, row)
	require.NoError(t, err)
	return c
}
