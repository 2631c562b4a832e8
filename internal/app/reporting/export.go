package reporting

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/MICA1991/financelitracy-quiz/internal/app/models/dto"
	"github.com/MICA1991/financelitracy-quiz/internal/pkg/apperrors"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	DefaultSheetName      = "Game Sessions"
	DefaultFilenamePrefix = "game_sessions_export"

	SummaryLabel     = "SUMMARY STATISTICS"
	exportTimeLayout = "1/2/2006, 3:04:05 PM"

	headerFill  = "D9D9D9"
	summaryFill = "FFF2CC"
)

// ExportColumns is the fixed column order of the session export
var ExportColumns = []string{
	"Student Name",
	"Student ID",
	"Mobile/Email",
	"Level",
	"Score",
	"Total Questions",
	"Percentage",
	"Time Taken (s)",
	"Accuracy (%)",
	"Avg Time/Question (s)",
	"Start Time",
	"End Time",
	"Feedback Provided",
}

// ExporterConfig controls document naming and timestamp rendering
type ExporterConfig struct {
	SheetName      string
	FilenamePrefix string
	Location       *time.Location
}

// Document is a fully serialized export ready to be sent as a download
type Document struct {
	Filename    string
	ContentType string
	Content     []byte
	// Rows is the number of data rows, excluding header and summary
	Rows int
}

// Exporter renders projected session rows into a spreadsheet
type Exporter struct {
	cfg ExporterConfig
	now func() time.Time
}

// NewExporter creates an exporter, filling unset config values with defaults
func NewExporter(cfg ExporterConfig) *Exporter {
	if cfg.SheetName == "" {
		cfg.SheetName = DefaultSheetName
	}
	if cfg.FilenamePrefix == "" {
		cfg.FilenamePrefix = DefaultFilenamePrefix
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Exporter{cfg: cfg, now: time.Now}
}

// Filename returns the download name stamped with the current date
func (e *Exporter) Filename() string {
	return fmt.Sprintf("%s_%s.xlsx", e.cfg.FilenamePrefix, e.now().In(e.cfg.Location).Format(dateLayout))
}

// Render builds the whole workbook in memory. On any failure the partial
// workbook is discarded and an ExportRenderError is returned.
func (e *Exporter) Render(rows []dto.SessionRow) (*Document, error) {
	f := excelize.NewFile()
	defer f.Close()

	content, err := e.build(f, rows)
	if err != nil {
		return nil, apperrors.NewExportRenderError(err)
	}

	return &Document{
		Filename:    e.Filename(),
		ContentType: ContentTypeXLSX,
		Content:     content,
		Rows:        len(rows),
	}, nil
}

func (e *Exporter) build(f *excelize.File, rows []dto.SessionRow) ([]byte, error) {
	sheet := e.cfg.SheetName
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(bandStyle(headerFill))
	if err != nil {
		return nil, err
	}
	summaryStyle, err := f.NewStyle(bandStyle(summaryFill))
	if err != nil {
		return nil, err
	}

	header := make([]interface{}, len(ExportColumns))
	for i, c := range ExportColumns {
		header[i] = c
	}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return nil, err
	}
	lastCol, err := excelize.ColumnNumberToName(len(ExportColumns))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, err
	}

	for i, r := range rows {
		if err := writeRow(f, sheet, i+2, e.dataRow(r)); err != nil {
			return nil, err
		}
	}

	if len(rows) > 0 {
		if err := e.writeSummary(f, sheet, len(rows)+3, rows, summaryStyle); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return nil, err
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Exporter) dataRow(r dto.SessionRow) []interface{} {
	feedback := "No"
	if r.HasFeedback {
		feedback = "Yes"
	}
	return []interface{}{
		r.StudentName,
		r.StudentIdentifier,
		r.Contact,
		r.Level,
		r.Score,
		r.TotalQuestions,
		r.Percentage,
		r.TimeTakenSeconds,
		r.Accuracy,
		r.AverageTimePerQuestion,
		e.formatTime(r.StartTime),
		e.formatTime(r.EndTime),
		feedback,
	}
}

// writeSummary writes the label row and four statistic rows starting at row
func (e *Exporter) writeSummary(f *excelize.File, sheet string, row int, rows []dto.SessionRow, style int) error {
	var score, pct, secs decimal.Decimal
	for _, r := range rows {
		score = score.Add(decimal.NewFromInt(int64(r.Score)))
		pct = pct.Add(decimal.NewFromFloat(r.Percentage))
		secs = secs.Add(decimal.NewFromInt(int64(r.TimeTakenSeconds)))
	}
	n := decimal.NewFromInt(int64(len(rows)))

	summary := [][]interface{}{
		{SummaryLabel},
		{"Total Sessions", len(rows)},
		{"Average Score", score.Div(n).StringFixed(2)},
		{"Average Percentage", pct.Div(n).StringFixed(2) + "%"},
		{"Average Time (s)", secs.Div(n).StringFixed(2)},
	}
	for i, values := range summary {
		if err := writeRow(f, sheet, row+i, values); err != nil {
			return err
		}
	}
	return f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row+len(summary)-1), style)
}

func (e *Exporter) formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return NotAvailable
	}
	return t.In(e.cfg.Location).Format(exportTimeLayout)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func bandStyle(color string) *excelize.Style {
	return &excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
	}
}
