package entities

import (
	"strconv"
	"time"
)

// Step is a named position in the survey flow awaiting a specific kind of
// input.
type Step string

const (
	StepExpectations Step = "awaiting_expectations"
	StepRating       Step = "awaiting_rating"
	StepReason       Step = "awaiting_reason"
	StepComment      Step = "awaiting_comment"
	StepIdentifier   Step = "awaiting_identifier"
	StepFinalized    Step = "finalized"
)

// Answer keys collected while walking the flow. Keys are only ever added
// when their step completes; the whole map is discarded on restart.
const (
	AnswerExpectations = "expectations"
	AnswerRating       = "rating"
	AnswerReasonCode   = "reason_code"
	AnswerReasonLabel  = "reason_label"
	AnswerComment      = "comment"
	AnswerPrimaryID    = "primary_id"
	AnswerSecondaryID  = "secondary_id"

	// Branch bookkeeping, not part of the assembled record.
	AnswerBranch          = "branch"
	AnswerCommentRequired = "comment_required"
)

// Branch values stored under AnswerBranch.
const (
	BranchSatisfied    = "satisfied"
	BranchDissatisfied = "dissatisfied"
)

// Conversation tracks one user's progress through the survey. Exactly one
// conversation exists per user id at a time.
type Conversation struct {
	UserID    string            `json:"user_id"`
	Step      Step              `json:"step"`
	Answers   map[string]string `json:"answers"`
	StartedAt time.Time         `json:"started_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewConversation creates a fresh conversation at the initial step.
func NewConversation(userID string) *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		UserID:    userID,
		Step:      StepExpectations,
		Answers:   make(map[string]string),
		StartedAt: now,
		UpdatedAt: now,
	}
}

// Set records an answer under the given key.
func (c *Conversation) Set(key, value string) {
	if c.Answers == nil {
		c.Answers = make(map[string]string)
	}
	c.Answers[key] = value
	c.UpdatedAt = time.Now().UTC()
}

// Get returns the collected answer for key, or "" when absent.
func (c *Conversation) Get(key string) string {
	return c.Answers[key]
}

// SetRating stores the numeric rating answer.
func (c *Conversation) SetRating(rating int) {
	c.Set(AnswerRating, strconv.Itoa(rating))
}

// Rating returns the collected numeric rating, if any.
func (c *Conversation) Rating() (int, bool) {
	raw, ok := c.Answers[AnswerRating]
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// CommentRequired reports whether the comment step is mandatory on the
// current branch.
func (c *Conversation) CommentRequired() bool {
	return c.Answers[AnswerCommentRequired] == "true"
}

// SetCommentRequired marks the comment step mandatory or optional.
func (c *Conversation) SetCommentRequired(required bool) {
	c.Set(AnswerCommentRequired, strconv.FormatBool(required))
}
