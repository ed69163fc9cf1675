package entities

import "time"

// FeedbackRecord is the finalized, immutable result of one completed
// conversation. Row carries the same data projected into the delivery
// sink's fixed column order; its length (8 or 9 columns depending on
// whether a numeric rating is collected) is a contract with the sink.
type FeedbackRecord struct {
	ID           string    `json:"id" db:"id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UserID       string    `json:"user_id" db:"user_id"`
	Expectations string    `json:"expectations" db:"expectations"`
	Rating       *int      `json:"rating,omitempty" db:"rating"`
	ReasonLabel  string    `json:"reason_label" db:"reason_label"`
	Comment      string    `json:"comment" db:"comment"`
	PrimaryID    string    `json:"primary_id" db:"primary_id"`
	SecondaryID  string    `json:"secondary_id" db:"secondary_id"`
	Risk         string    `json:"risk" db:"risk"`

	Row []string `json:"row" db:"-"`
}
