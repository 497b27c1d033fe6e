package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/radio-schedule-api/internal/models"
	appErrors "github.com/noah-isme/radio-schedule-api/pkg/errors"
	"github.com/noah-isme/radio-schedule-api/pkg/export"
)

// ExportFormat enumerates supported grid export formats.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatXLSX ExportFormat = "xlsx"
)

var exportHeaders = []string{"Day", "Date", "Time", "Status", "Subject", "Room", "Booked By", "Pending"}

type weeklyAvailabilityProvider interface {
	GetWeeklyAvailability(ctx context.Context, query models.AvailabilityQuery) (*models.WeeklyAvailability, bool, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type titledRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered grid ready to be streamed to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ExportService renders the weekly availability grid to downloadable files.
type ExportService struct {
	availability weeklyAvailabilityProvider
	csv          csvRenderer
	pdf          titledRenderer
	xlsx         titledRenderer
	logger       *zap.Logger
}

// NewExportService constructs an ExportService with the default renderers.
func NewExportService(availability weeklyAvailabilityProvider, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		availability: availability,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		xlsx:         export.NewXLSXExporter(),
		logger:       logger,
	}
}

// ExportWeek resolves the requested week and renders it in the given format.
func (s *ExportService) ExportWeek(ctx context.Context, query models.AvailabilityQuery, format ExportFormat) (*ExportFile, error) {
	format = ExportFormat(strings.ToLower(strings.TrimSpace(string(format))))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF && format != ExportFormatXLSX {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	grid, _, err := s.availability.GetWeeklyAvailability(ctx, query)
	if err != nil {
		return nil, err
	}

	dataset := availabilityDataset(grid)
	title := fmt.Sprintf("%s %s schedule, week of %s", grid.Department, grid.Year, grid.WeekStart)
	base := fmt.Sprintf("availability_%s_%s_%s", cacheSegment(grid.Department), cacheSegment(grid.Year), grid.WeekStart)

	var (
		content     []byte
		contentType string
	)
	switch format {
	case ExportFormatPDF:
		content, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	case ExportFormatXLSX:
		content, err = s.xlsx.Render(dataset, title)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		content, err = s.csv.Render(dataset)
		contentType = "text/csv"
	}
	if err != nil {
		s.logger.Error("failed to render availability export", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportFile{
		Filename:    base + "." + string(format),
		ContentType: contentType,
		Content:     content,
	}, nil
}

func availabilityDataset(grid *models.WeeklyAvailability) export.Dataset {
	rows := make([]map[string]string, 0, len(grid.Days)*len(weekdaySlots))
	for _, day := range grid.Days {
		for _, slot := range day.Slots {
			pending := make([]string, 0, len(slot.Pending))
			for _, ref := range slot.Pending {
				pending = append(pending, ref.ShowTitle)
			}
			rows = append(rows, map[string]string{
				"Day":       string(day.Day),
				"Date":      day.Date.String(),
				"Time":      slot.TimeSlot,
				"Status":    string(slot.Status),
				"Subject":   slot.Subject,
				"Room":      slot.RoomNum,
				"Booked By": slot.BookedBy,
				"Pending":   strings.Join(pending, "; "),
			})
		}
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}
