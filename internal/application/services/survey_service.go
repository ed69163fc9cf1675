package services

import (
	"context"
	"strings"
	"sync"

	"github.com/zatekoja/feedbackbot/internal/application/flow"
	"github.com/zatekoja/feedbackbot/internal/domain/entities"
	"github.com/zatekoja/feedbackbot/internal/domain/providers"
	"github.com/zatekoja/feedbackbot/internal/domain/repositories"
	"github.com/zatekoja/feedbackbot/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/feedbackbot/pkg/errors"
	"github.com/zatekoja/feedbackbot/pkg/normalize"
)

// Restart commands accepted in any state.
var restartCommands = map[string]struct{}{
	"/start":   {},
	"/restart": {},
}

// SurveyService walks users through the configured survey flow: it
// validates each inbound event against the current step, advances the
// conversation, and hands finalized records to the dispatcher.
type SurveyService struct {
	store      repositories.ConversationStore
	variant    flow.Variant
	assembler  *RecordAssembler
	dispatcher providers.RecordDispatcher
	metrics    *observability.Metrics

	locks sync.Map // user id -> *sync.Mutex
}

// NewSurveyService creates the survey engine. metrics may be nil.
func NewSurveyService(
	store repositories.ConversationStore,
	variant flow.Variant,
	assembler *RecordAssembler,
	dispatcher providers.RecordDispatcher,
	metrics *observability.Metrics,
) *SurveyService {
	return &SurveyService{
		store:      store,
		variant:    variant,
		assembler:  assembler,
		dispatcher: dispatcher,
		metrics:    metrics,
	}
}

// Handle consumes exactly one inbound event and returns the prompts the
// transport should render. Events for the same user id are serialized;
// distinct users proceed concurrently.
func (s *SurveyService) Handle(ctx context.Context, event entities.InboundEvent) ([]entities.Prompt, error) {
	if event.UserID == "" {
		return nil, apperrors.NewValidationError("inbound event without user id")
	}
	if event.Kind != entities.EventText && event.Kind != entities.EventButtonTap {
		return nil, apperrors.NewValidationError("inbound event with unknown kind")
	}

	unlock := s.lockUser(event.UserID)
	defer unlock()

	if event.Kind == entities.EventText {
		if _, ok := restartCommands[strings.TrimSpace(event.Payload)]; ok {
			return s.restart(ctx, event.UserID)
		}
	}

	conv, err := s.store.Get(ctx, event.UserID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load conversation", err)
	}
	if conv == nil {
		// First contact: open a conversation and ask the first question,
		// regardless of what the message said.
		return s.restart(ctx, event.UserID)
	}

	switch conv.Step {
	case entities.StepExpectations:
		return s.onExpectations(ctx, conv, event)
	case entities.StepRating:
		return s.onRating(ctx, conv, event)
	case entities.StepReason:
		return s.onReason(ctx, conv, event)
	case entities.StepComment:
		return s.onComment(ctx, conv, event)
	case entities.StepIdentifier:
		return s.onIdentifier(ctx, conv, event)
	default:
		// A conversation left in a terminal step should not exist; recover
		// by starting over.
		return s.restart(ctx, event.UserID)
	}
}

func (s *SurveyService) lockUser(userID string) func() {
	mu, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	lock := mu.(*sync.Mutex)
	lock.Lock()
	return lock.Unlock
}

// restart discards any in-flight answers and opens a fresh conversation.
func (s *SurveyService) restart(ctx context.Context, userID string) ([]entities.Prompt, error) {
	conv := entities.NewConversation(userID)
	if err := s.store.Put(ctx, conv); err != nil {
		return nil, apperrors.NewInternalError("failed to reset conversation", err)
	}
	return []entities.Prompt{{
		Text:     s.variant.Texts.Start,
		Keyboard: s.variant.ExpectationKeyboard(),
	}}, nil
}

func (s *SurveyService) onExpectations(ctx context.Context, conv *entities.Conversation, event entities.InboundEvent) ([]entities.Prompt, error) {
	answer := strings.TrimSpace(event.Payload)
	if event.Kind != entities.EventText || !s.variant.IsExpectationOption(answer) {
		return []entities.Prompt{{
			Text:     s.variant.Texts.ExpectationsInvalid,
			Keyboard: s.variant.ExpectationKeyboard(),
		}}, nil
	}

	conv.Set(entities.AnswerExpectations, answer)

	if s.variant.CollectRating {
		if err := s.advance(ctx, conv, entities.StepRating); err != nil {
			return nil, err
		}
		return []entities.Prompt{{
			Text:     s.variant.Texts.AskRating,
			Keyboard: &entities.Keyboard{Remove: true},
		}}, nil
	}

	// Branch decided by the expectations answer alone.
	if answer == s.variant.PositiveExpectation {
		conv.Set(entities.AnswerBranch, entities.BranchSatisfied)
		conv.SetCommentRequired(false)
		if err := s.advance(ctx, conv, entities.StepComment); err != nil {
			return nil, err
		}
		return []entities.Prompt{
			{Text: s.variant.Texts.SatisfiedAskComment, Keyboard: &entities.Keyboard{Remove: true}},
			// Bare message carrying only the skip button.
			{Text: " ", Keyboard: s.variant.SkipKeyboard()},
		}, nil
	}

	conv.Set(entities.AnswerBranch, entities.BranchDissatisfied)
	if err := s.advance(ctx, conv, entities.StepReason); err != nil {
		return nil, err
	}
	return []entities.Prompt{
		{Text: s.variant.Texts.AskReasonNegative, Keyboard: &entities.Keyboard{Remove: true}},
		{Text: s.variant.Texts.ChooseReason, Keyboard: s.variant.ReasonKeyboard()},
	}, nil
}

func (s *SurveyService) onRating(ctx context.Context, conv *entities.Conversation, event entities.InboundEvent) ([]entities.Prompt, error) {
	if event.Kind != entities.EventText {
		return []entities.Prompt{entities.TextPrompt(s.variant.Texts.RatingInvalid)}, nil
	}
	rating, ok := normalize.ParseRating(event.Payload)
	if !ok {
		return []entities.Prompt{entities.TextPrompt(s.variant.Texts.RatingInvalid)}, nil
	}

	conv.SetRating(rating)

	if rating >= s.variant.HighRatingThreshold {
		if s.variant.HighRatingSkipsIdentifier {
			return s.finalize(ctx, conv, s.variant.Texts.FinalHighRating)
		}
		// Identifier collection is unconditional in this configuration;
		// reason and comment are still skipped on a high rating.
		if err := s.advance(ctx, conv, entities.StepIdentifier); err != nil {
			return nil, err
		}
		return []entities.Prompt{entities.TextPrompt(s.variant.Texts.AskIdentifier)}, nil
	}

	conv.Set(entities.AnswerBranch, entities.BranchDissatisfied)
	if err := s.advance(ctx, conv, entities.StepReason); err != nil {
		return nil, err
	}

	// Prompt text differs by band, the flow does not.
	askReason := s.variant.Texts.AskReasonLow
	if rating >= 7 {
		askReason = s.variant.Texts.AskReasonMid
	}
	return []entities.Prompt{
		entities.TextPrompt(askReason),
		{Text: s.variant.Texts.ChooseReason, Keyboard: s.variant.ReasonKeyboard()},
	}, nil
}

func (s *SurveyService) onReason(ctx context.Context, conv *entities.Conversation, event entities.InboundEvent) ([]entities.Prompt, error) {
	// The catalogue is closed: only button taps carry a reason, anything
	// else is ignored without a re-prompt.
	if event.Kind != entities.EventButtonTap || !strings.HasPrefix(event.Payload, flow.ReasonCallbackPrefix) {
		return nil, nil
	}
	code := strings.TrimPrefix(event.Payload, flow.ReasonCallbackPrefix)
	label, ok := s.variant.Reasons.Label(code)
	if !ok {
		return nil, nil
	}

	conv.Set(entities.AnswerReasonCode, code)
	conv.Set(entities.AnswerReasonLabel, label)

	mandatory := s.variant.Reasons.IsOther(code)
	conv.SetCommentRequired(mandatory)
	if err := s.advance(ctx, conv, entities.StepComment); err != nil {
		return nil, err
	}

	if mandatory {
		return []entities.Prompt{{Text: s.variant.Texts.CommentMandatory, EditLast: true}}, nil
	}
	return []entities.Prompt{{
		Text:     s.variant.Texts.CommentOptional,
		Keyboard: s.variant.SkipKeyboard(),
		EditLast: true,
	}}, nil
}

func (s *SurveyService) onComment(ctx context.Context, conv *entities.Conversation, event entities.InboundEvent) ([]entities.Prompt, error) {
	if event.Kind == entities.EventButtonTap {
		if event.Payload != flow.SkipCallback {
			return nil, nil
		}
		if conv.CommentRequired() {
			// Skipping a mandatory comment is a no-op.
			return nil, nil
		}
		conv.Set(entities.AnswerComment, "")
		return s.resolveComment(ctx, conv)
	}

	comment := strings.TrimSpace(event.Payload)
	if conv.CommentRequired() && comment == "" {
		return []entities.Prompt{entities.TextPrompt(s.variant.Texts.CommentMandatoryEmpty)}, nil
	}
	conv.Set(entities.AnswerComment, comment)
	return s.resolveComment(ctx, conv)
}

// resolveComment routes a completed comment step: the satisfied branch
// finalizes, the dissatisfaction branch proceeds to identifier collection.
func (s *SurveyService) resolveComment(ctx context.Context, conv *entities.Conversation) ([]entities.Prompt, error) {
	if conv.Get(entities.AnswerBranch) == entities.BranchSatisfied {
		return s.finalize(ctx, conv, s.variant.Texts.FinalSatisfied)
	}
	if err := s.advance(ctx, conv, entities.StepIdentifier); err != nil {
		return nil, err
	}
	return []entities.Prompt{{
		Text:     s.variant.Texts.AskIdentifier,
		Keyboard: &entities.Keyboard{Remove: true},
	}}, nil
}

func (s *SurveyService) onIdentifier(ctx context.Context, conv *entities.Conversation, event entities.InboundEvent) ([]entities.Prompt, error) {
	if event.Kind != entities.EventText {
		return nil, nil
	}
	text := event.Payload

	switch s.variant.IdentifierMode {
	case flow.IdentifierStrict:
		if normalize.HasLetters(text) {
			return []entities.Prompt{entities.TextPrompt(s.variant.Texts.IdentifierInvalid)}, nil
		}
		if id, ok := normalize.NormalizeTaxID(text); ok {
			conv.Set(entities.AnswerPrimaryID, id)
		} else if phone, ok := normalize.NormalizePhone(text); ok {
			conv.Set(entities.AnswerSecondaryID, phone)
		} else {
			return []entities.Prompt{entities.TextPrompt(s.variant.Texts.IdentifierInvalid)}, nil
		}
	default:
		primary, secondary := normalize.ExtractTaxIDs(text, s.variant.SecondaryIDMinLen, s.variant.SecondaryIDMaxLen)
		conv.Set(entities.AnswerPrimaryID, primary)
		conv.Set(entities.AnswerSecondaryID, secondary)
	}

	return s.finalize(ctx, conv, s.variant.Texts.FinalDefault)
}

// finalize assembles the record, dispatches it fire-and-forget, discards
// the conversation and opens a fresh one so the user can submit again.
func (s *SurveyService) finalize(ctx context.Context, conv *entities.Conversation, finalText string) ([]entities.Prompt, error) {
	if err := s.advance(ctx, conv, entities.StepFinalized); err != nil {
		return nil, err
	}

	record := s.assembler.Assemble(conv)
	s.dispatcher.Dispatch(record)
	if s.metrics != nil {
		s.metrics.RecordFinalized(ctx, s.variant.Name)
	}

	fresh := entities.NewConversation(conv.UserID)
	if err := s.store.Put(ctx, fresh); err != nil {
		return nil, apperrors.NewInternalError("failed to reopen conversation", err)
	}

	prompt := entities.Prompt{Text: finalText, Keyboard: &entities.Keyboard{Remove: true}}
	if s.variant.CollectRating {
		// The rated flow re-offers the expectation buttons right away.
		prompt.Keyboard = s.variant.ExpectationKeyboard()
	}
	return []entities.Prompt{prompt}, nil
}

// advance transitions the conversation step through the flow machine and
// persists the result.
func (s *SurveyService) advance(ctx context.Context, conv *entities.Conversation, target entities.Step) error {
	machine := flow.NewMachine(conv.Step)
	if err := machine.Advance(ctx, target); err != nil {
		return apperrors.NewInternalError("flow transition rejected", err)
	}
	conv.Step = machine.Step()
	if conv.Step == entities.StepFinalized {
		// Terminal conversations are discarded, not stored.
		return nil
	}
	if err := s.store.Put(ctx, conv); err != nil {
		return apperrors.NewInternalError("failed to store conversation", err)
	}
	return nil
}
