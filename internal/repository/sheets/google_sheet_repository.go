package sheets

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/butchershop/internal/config"
)

// userEntered lets the spreadsheet parse dates and numbers the way a person typing them would.
const userEntered = "USER_ENTERED"

var errEmptyRange = errors.New("sheet range must not be empty")

// Repository is the spreadsheet surface used by sync and the seasonal product source.
type Repository interface {
	WriteRow(ctx context.Context, sheetRange string, values []interface{}) error
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
	ClearRange(ctx context.Context, sheetRange string) error
	UpdateRange(ctx context.Context, sheetRange string, rows [][]interface{}) error
	Title(ctx context.Context) (string, error)
}

// GoogleSheetRepository talks to a single spreadsheet through the Sheets v4 API.
type GoogleSheetRepository struct {
	values        *sheetsapi.SpreadsheetsValuesService
	spreadsheets  *sheetsapi.SpreadsheetsService
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository authenticates with the service account file and binds the spreadsheet id.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("init sheets client: %w", err)
	}

	logger.Info("spreadsheet connected", zap.String("spreadsheet_id", cfg.SpreadsheetID))
	return &GoogleSheetRepository{
		values:        svc.Spreadsheets.Values,
		spreadsheets:  svc.Spreadsheets,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// WriteRow appends one row below the last populated row of sheetRange.
func (r *GoogleSheetRepository) WriteRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return errEmptyRange
	}

	_, err := r.values.Append(r.spreadsheetID, sheetRange, &sheetsapi.ValueRange{Values: [][]interface{}{values}}).
		ValueInputOption(userEntered).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", sheetRange, err)
	}

	r.logger.Debug("sheet row appended", zap.String("range", sheetRange))
	return nil
}

// ReadRange returns the populated cells of sheetRange; trailing empty rows are omitted by the API.
func (r *GoogleSheetRepository) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, errEmptyRange
	}

	resp, err := r.values.Get(r.spreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sheetRange, err)
	}
	return resp.Values, nil
}

// ClearRange empties every cell in the range while keeping formatting.
func (r *GoogleSheetRepository) ClearRange(ctx context.Context, sheetRange string) error {
	if sheetRange == "" {
		return errEmptyRange
	}

	if _, err := r.values.Clear(r.spreadsheetID, sheetRange, &sheetsapi.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", sheetRange, err)
	}

	r.logger.Debug("sheet range cleared", zap.String("range", sheetRange))
	return nil
}

// UpdateRange overwrites the range starting at its top-left cell with rows.
func (r *GoogleSheetRepository) UpdateRange(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	if sheetRange == "" {
		return errEmptyRange
	}
	if len(rows) == 0 {
		return nil
	}

	_, err := r.values.Update(r.spreadsheetID, sheetRange, &sheetsapi.ValueRange{Values: rows}).
		ValueInputOption(userEntered).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", sheetRange, err)
	}

	r.logger.Debug("sheet range updated", zap.String("range", sheetRange), zap.Int("rows", len(rows)))
	return nil
}

// Title returns the spreadsheet title; used as a connectivity probe.
func (r *GoogleSheetRepository) Title(ctx context.Context) (string, error) {
	resp, err := r.spreadsheets.Get(r.spreadsheetID).Fields("properties.title").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get spreadsheet: %w", err)
	}
	if resp.Properties == nil {
		return "", nil
	}
	return resp.Properties.Title, nil
}
