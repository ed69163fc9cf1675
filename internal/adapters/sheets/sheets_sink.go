// Package sheets implements the Google Sheets delivery sink.
package sheets

import (
	"context"
	"fmt"

	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/zatekoja/feedbackbot/internal/domain/entities"
	"github.com/zatekoja/feedbackbot/internal/domain/providers"
	sheetsclient "github.com/zatekoja/feedbackbot/internal/infrastructure/clients/sheets"
	apperrors "github.com/zatekoja/feedbackbot/pkg/errors"
)

// SheetsSink appends finalized records as rows at the bottom of a
// worksheet.
type SheetsSink struct {
	client        *sheetsclient.Client
	spreadsheetID string
	worksheet     string
}

// NewSheetsSink creates a delivery sink writing to the given worksheet.
func NewSheetsSink(client *sheetsclient.Client, spreadsheetID, worksheet string) providers.DeliverySink {
	return &SheetsSink{
		client:        client,
		spreadsheetID: spreadsheetID,
		worksheet:     worksheet,
	}
}

// Append writes the record's projected row to the worksheet.
func (s *SheetsSink) Append(ctx context.Context, record *entities.FeedbackRecord) error {
	if record == nil {
		return apperrors.NewInternalError("record is nil", fmt.Errorf("record is nil"))
	}
	if len(record.Row) == 0 {
		return apperrors.NewInternalError("record has no projected row", fmt.Errorf("empty row for record %s", record.ID))
	}

	row := make([]interface{}, len(record.Row))
	for i, cell := range record.Row {
		row[i] = cell
	}

	values := &sheetsapi.ValueRange{
		Values: [][]interface{}{row},
	}

	_, err := s.client.Service().Spreadsheets.Values.
		Append(s.spreadsheetID, appendRange(s.worksheet, len(record.Row)), values).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return apperrors.NewExternalError("failed to append row to spreadsheet", err)
	}

	return nil
}

// appendRange builds the A1 range covering the row's columns, e.g.
// "Лист1!A:H" for an eight-column row.
func appendRange(worksheet string, columns int) string {
	lastColumn := rune('A' + columns - 1)
	return fmt.Sprintf("%s!A:%c", worksheet, lastColumn)
}
