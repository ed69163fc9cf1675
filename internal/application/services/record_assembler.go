package services

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/zatekoja/feedbackbot/internal/application/flow"
	"github.com/zatekoja/feedbackbot/internal/domain/entities"
)

// timestampLayout is the spreadsheet date format both observed sheets use.
const timestampLayout = "2006-01-02 15:04:05"

// RecordAssembler projects a finalized conversation into the immutable
// feedback record, including the derived risk label and the sink row in
// the variant's fixed column order. It performs no validation: the flow
// machine has already enforced every branch-required field.
type RecordAssembler struct {
	variant  flow.Variant
	location *time.Location
	now      func() time.Time
}

// NewRecordAssembler creates an assembler stamping records in the given
// time zone.
func NewRecordAssembler(variant flow.Variant, location *time.Location) *RecordAssembler {
	return &RecordAssembler{
		variant:  variant,
		location: location,
		now:      time.Now,
	}
}

// Assemble builds the record from the accumulated answers. Optional fields
// a branch never reached stay empty.
func (a *RecordAssembler) Assemble(conv *entities.Conversation) *entities.FeedbackRecord {
	record := &entities.FeedbackRecord{
		ID:           uuid.New().String(),
		CreatedAt:    a.now().In(a.location),
		UserID:       conv.UserID,
		Expectations: conv.Get(entities.AnswerExpectations),
		ReasonLabel:  conv.Get(entities.AnswerReasonLabel),
		Comment:      conv.Get(entities.AnswerComment),
		PrimaryID:    conv.Get(entities.AnswerPrimaryID),
		SecondaryID:  conv.Get(entities.AnswerSecondaryID),
	}

	if rating, ok := conv.Rating(); ok {
		record.Rating = &rating
	}
	record.Risk = a.classifyRisk(record)
	record.Row = a.row(record)
	return record
}

func (a *RecordAssembler) classifyRisk(record *entities.FeedbackRecord) string {
	if a.variant.Risk == flow.RiskBinary {
		if record.Expectations == a.variant.PositiveExpectation {
			return a.variant.RiskAbsent
		}
		return a.variant.RiskPresent
	}

	rating := 0
	if record.Rating != nil {
		rating = *record.Rating
	}
	return flow.ClassifyRating(rating)
}

// row is the ordered tuple the delivery sink depends on. Changing column
// order or count requires a schema migration on the sheet.
func (a *RecordAssembler) row(record *entities.FeedbackRecord) []string {
	row := []string{
		record.CreatedAt.Format(timestampLayout),
		record.UserID,
		record.Expectations,
	}
	if a.variant.RatingColumn {
		rating := ""
		if record.Rating != nil {
			rating = strconv.Itoa(*record.Rating)
		}
		row = append(row, rating)
	}
	return append(row,
		record.ReasonLabel,
		record.Comment,
		record.PrimaryID,
		record.SecondaryID,
		record.Risk,
	)
}
