package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/dfarm/internal/config"
	"github.com/mamadbah2/dfarm/internal/domain/models"
)

// DailyReportRange is the tab receiving one row per nightly report.
const DailyReportRange = "MilkReport!A:G"

// Repository appends daily reports to a spreadsheet.
type Repository interface {
	AppendDailyReport(ctx context.Context, report models.DailyReport) error
}

// GoogleSheetRepository implements the Repository interface using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// ReportRow lays out a report in sheet column order: date, total, morning,
// evening, animals milked, expenses, generated at.
func ReportRow(report models.DailyReport) []interface{} {
	return []interface{}{
		report.Date.Format(models.ISODateLayout),
		report.MilkLiters,
		report.MorningLiters,
		report.EveningLiters,
		report.AnimalsMilked,
		report.Expenses,
		report.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// AppendDailyReport appends the report as a new row.
func (r *GoogleSheetRepository) AppendDailyReport(ctx context.Context, report models.DailyReport) error {
	payload := &sheetsapi.ValueRange{Values: [][]interface{}{ReportRow(report)}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, DailyReportRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append report row into range %s: %w", DailyReportRange, err)
	}

	r.logger.Debug("report row appended to sheet",
		zap.String("range", DailyReportRange),
		zap.String("date", report.Date.Format(models.ISODateLayout)))
	return nil
}
