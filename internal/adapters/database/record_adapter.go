// Package database implements the PostgreSQL delivery sink.
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/zatekoja/feedbackbot/internal/domain/entities"
	"github.com/zatekoja/feedbackbot/internal/domain/providers"
	"github.com/zatekoja/feedbackbot/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/feedbackbot/pkg/errors"
)

// RecordAdapter appends finalized feedback records to Postgres.
type RecordAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewRecordAdapter creates a Postgres-backed delivery sink.
func NewRecordAdapter(client *postgres.Client) providers.DeliverySink {
	return &RecordAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Append inserts one feedback record.
func (a *RecordAdapter) Append(ctx context.Context, record *entities.FeedbackRecord) error {
	if record == nil {
		return apperrors.NewInternalError("record is nil", fmt.Errorf("record is nil"))
	}

	rating := sql.NullInt64{}
	if record.Rating != nil {
		rating = sql.NullInt64{Int64: int64(*record.Rating), Valid: true}
	}

	row := goqu.Record{
		"id":           record.ID,
		"created_at":   record.CreatedAt,
		"user_id":      record.UserID,
		"expectations": record.Expectations,
		"rating":       rating,
		"reason":       sql.NullString{String: record.ReasonLabel, Valid: record.ReasonLabel != ""},
		"comment":      sql.NullString{String: record.Comment, Valid: record.Comment != ""},
		"primary_id":   sql.NullString{String: record.PrimaryID, Valid: record.PrimaryID != ""},
		"secondary_id": sql.NullString{String: record.SecondaryID, Valid: record.SecondaryID != ""},
		"risk":         record.Risk,
	}

	query, args, err := a.db.Insert("feedback_records").Rows(row).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build feedback record insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewExternalError("failed to insert feedback record", err)
	}

	return nil
}
