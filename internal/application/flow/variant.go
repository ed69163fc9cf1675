// Package flow describes a survey variant as data: which steps are active,
// which answers are mandatory on which branch, how risk is classified, and
// the exact prompt texts. One engine interprets any Variant.
package flow

import (
	"fmt"

	"github.com/zatekoja/feedbackbot/internal/domain/entities"
)

// IdentifierMode selects how the identifier step validates input.
type IdentifierMode string

const (
	// IdentifierLoose extracts tax ids from arbitrary text and falls back
	// to preserving the input verbatim; it never rejects.
	IdentifierLoose IdentifierMode = "loose"

	// IdentifierStrict accepts only a bare tax id or a phone number and
	// re-prompts on anything else.
	IdentifierStrict IdentifierMode = "strict"
)

// RiskPolicy selects how the churn risk label is derived.
type RiskPolicy string

const (
	// RiskNumericBands maps the 0..10 rating onto percentage bands.
	RiskNumericBands RiskPolicy = "numeric_bands"

	// RiskBinary keys a present/absent label off the expectations answer.
	RiskBinary RiskPolicy = "binary"
)

// Texts holds every user-visible message of a variant.
type Texts struct {
	Start               string
	ExpectationsInvalid string

	AskRating     string
	RatingInvalid string

	AskReasonLow      string // rating band 0-6
	AskReasonMid      string // rating band 7-8
	AskReasonNegative string // negative expectations branch
	ChooseReason      string

	SatisfiedAskComment   string
	CommentMandatory      string
	CommentOptional       string
	CommentMandatoryEmpty string
	SkipLabel             string

	AskIdentifier     string
	IdentifierInvalid string

	FinalHighRating string
	FinalSatisfied  string
	FinalDefault    string
}

// Variant is the complete configuration of one survey flow.
type Variant struct {
	Name string

	// ExpectationOptions are the reply-keyboard labels accepted at the
	// initial step, in display order.
	ExpectationOptions []string

	// PositiveExpectation is the option that routes to the satisfied
	// branch when BranchOnExpectations is set.
	PositiveExpectation string

	// CollectRating enables the numeric rating step; the branch is then
	// decided by the rating band instead of the expectations answer.
	CollectRating bool

	// BranchOnExpectations makes the expectations answer decide the
	// satisfied/dissatisfied branch directly.
	BranchOnExpectations bool

	// HighRatingThreshold finalizes immediately when the rating reaches
	// it. HighRatingSkipsIdentifier controls whether that shortcut also
	// skips identifier collection or asks for it first.
	HighRatingThreshold       int
	HighRatingSkipsIdentifier bool

	IdentifierMode    IdentifierMode
	SecondaryIDMinLen int
	SecondaryIDMaxLen int

	Risk        RiskPolicy
	RiskPresent string
	RiskAbsent  string

	Reasons *entities.ReasonCatalogue

	// RatingColumn adds the numeric rating to the sink row, making it a
	// 9-column layout instead of 8.
	RatingColumn bool

	Texts Texts
}

// Callback payloads used on inline keyboards.
const (
	ReasonCallbackPrefix = "reason:"
	SkipCallback         = "comment:skip"
)

// ClassifyRating maps a rating onto the numeric churn-risk bands.
func ClassifyRating(rating int) string {
	switch {
	case rating >= 9:
		return "5–10%"
	case rating >= 7:
		return "25–40%"
	case rating >= 5:
		return "50–70%"
	default:
		return "80%+"
	}
}

// defaultReasons is the catalogue both observed variants share; entry "5"
// is the free-form one that makes the comment mandatory.
func defaultReasons() *entities.ReasonCatalogue {
	return entities.NewReasonCatalogue([]entities.Reason{
		{Code: "1", Label: "Долгое подключение поставщиков"},
		{Code: "2", Label: "Тех.поддержка"},
		{Code: "3", Label: "Функционал"},
		{Code: "4", Label: "Внедрение"},
		{Code: "5", Label: "Другое"},
	}, "5")
}

// Rated is the variant with a numeric 0..10 rating, percentage risk bands
// and loose tax-id extraction. It produces a 9-column row.
func Rated() Variant {
	return Variant{
		Name:                      "rated",
		ExpectationOptions:        []string{"✅ Да", "❌ Нет", "⚖️ Частично"},
		CollectRating:             true,
		HighRatingThreshold:       9,
		HighRatingSkipsIdentifier: true,
		IdentifierMode:            IdentifierLoose,
		SecondaryIDMinLen:         9,
		SecondaryIDMaxLen:         9,
		Risk:                      RiskNumericBands,
		Reasons:                   defaultReasons(),
		RatingColumn:              true,
		Texts: Texts{
			Start: "Добрый день!\n\n" +
				"Пожалуйста, оцените ваши впечатления от внедрения DocsInBox.\n" +
				"Оправдал ли сервис ваши ожидания? ☺️",
			ExpectationsInvalid: "Пожалуйста, выберите вариант кнопкой ниже 🙂",
			AskRating:           "Спасибо!\nОцените сервис по шкале от 0 до 10",
			RatingInvalid:       "Пожалуйста, введите число от 0 до 10.",
			AskReasonLow: "Нам очень жаль, что сервис не полностью оправдал ваши ожидания 😔\n" +
				"Подскажите, пожалуйста, что пошло не так.",
			AskReasonMid:          "Спасибо за оценку!\nПодскажите, пожалуйста, что пошло не так?",
			ChooseReason:          "Выберите причину:",
			CommentMandatory:      "Пожалуйста, напишите комментарий (для пункта «Другое» он обязателен):",
			CommentOptional:       "Если хотите — оставьте комментарий (необязательно).\nЕсли комментарий не нужен — нажмите «Пропустить».",
			CommentMandatoryEmpty: "Для пункта «Другое» нужен комментарий 🙂 Напишите, пожалуйста, пару слов.",
			SkipLabel:             "Пропустить",
			AskIdentifier: "Пожалуйста, укажите ИНН (или ИНН/КПП, если есть), чтобы мы могли корректно идентифицировать компанию.\n" +
				"Можно писать в любом формате: например, «ИНН 770... КПП 770...», «770.../770...», «770... 770...».",
			FinalHighRating: "Спасибо за высокую оценку и что выбрали нас! ❤️",
			FinalDefault:    "Спасибо за обратную связь, ваше мнение поможет нам стать лучше 💙",
		},
	}
}

// Binary is the yes/no variant without a numeric rating: a present/absent
// risk label keyed off the expectations answer and strict identifier
// validation (tax id or phone). It produces an 8-column row.
func Binary() Variant {
	return Variant{
		Name:                 "binary",
		ExpectationOptions:   []string{"✅ Да", "❌ Нет"},
		PositiveExpectation:  "✅ Да",
		BranchOnExpectations: true,
		IdentifierMode:       IdentifierStrict,
		SecondaryIDMinLen:    9,
		SecondaryIDMaxLen:    9,
		Risk:                 RiskBinary,
		RiskPresent:          "есть",
		RiskAbsent:           "нет",
		Reasons:              defaultReasons(),
		Texts: Texts{
			Start:               "Добрый день!\nОправдал ли сервис DocsInBox ваши ожидания? ☺️",
			ExpectationsInvalid: "Пожалуйста, выберите вариант кнопкой ниже 🙂",
			AskReasonNegative: "Нам жаль, что сервис не оправдал ожидания 😔\n" +
				"Подскажите, пожалуйста, что пошло не так?",
			ChooseReason: "Выберите причину:",
			SatisfiedAskComment: "Нам очень приятно это слышать 💙\n" +
				"Если у вас есть идеи или предложения по улучшению — будем рады обратной связи.\n" +
				"Можно написать комментарий или нажать «Пропустить».",
			CommentMandatory:      "Пожалуйста, напишите комментарий — это обязательное поле.",
			CommentOptional:       "При необходимости вы можете уточнить детали.\nИли нажмите «Пропустить».",
			CommentMandatoryEmpty: "Комментарий обязателен 🙂 Напишите, пожалуйста, пару слов.",
			SkipLabel:             "Пропустить",
			AskIdentifier: "Для корректной обработки обратной связи, пожалуйста, укажите\n" +
				"ИНН или номер телефона компании.\n\nДостаточно одного из вариантов.",
			IdentifierInvalid: "Пожалуйста, укажите корректный ИНН (10 или 12 цифр)\n" +
				"или номер телефона (например +79991234567).",
			FinalSatisfied: "Спасибо за доверие и что выбрали DocsInBox 🙏",
			FinalDefault:   "Спасибо за обратную связь 🙏\nЭто поможет нам стать лучше.",
		},
	}
}

// Options lists the variant's overridable knobs resolved from configuration.
type Options struct {
	SecondaryIDMinLen         int
	SecondaryIDMaxLen         int
	HighRatingSkipsIdentifier *bool
}

// ByName resolves a built-in variant and applies overrides.
func ByName(name string, opts Options) (Variant, error) {
	var v Variant
	switch name {
	case "rated", "":
		v = Rated()
	case "binary":
		v = Binary()
	default:
		return Variant{}, fmt.Errorf("unknown flow variant %q", name)
	}

	if opts.SecondaryIDMinLen > 0 {
		v.SecondaryIDMinLen = opts.SecondaryIDMinLen
	}
	if opts.SecondaryIDMaxLen > 0 {
		v.SecondaryIDMaxLen = opts.SecondaryIDMaxLen
	}
	if opts.HighRatingSkipsIdentifier != nil {
		v.HighRatingSkipsIdentifier = *opts.HighRatingSkipsIdentifier
	}
	if v.SecondaryIDMaxLen < v.SecondaryIDMinLen {
		return Variant{}, fmt.Errorf("secondary id tolerance window inverted: [%d, %d]", v.SecondaryIDMinLen, v.SecondaryIDMaxLen)
	}
	return v, nil
}

// ExpectationKeyboard is the reply keyboard for the initial step.
func (v Variant) ExpectationKeyboard() *entities.Keyboard {
	options := make([]entities.ButtonOption, 0, len(v.ExpectationOptions))
	for _, label := range v.ExpectationOptions {
		options = append(options, entities.ButtonOption{Label: label, Data: label})
	}
	return &entities.Keyboard{Options: options}
}

// ReasonKeyboard is the inline keyboard with the reason catalogue.
func (v Variant) ReasonKeyboard() *entities.Keyboard {
	reasons := v.Reasons.Reasons()
	options := make([]entities.ButtonOption, 0, len(reasons))
	for i, r := range reasons {
		options = append(options, entities.ButtonOption{
			Label: fmt.Sprintf("%d. %s", i+1, r.Label),
			Data:  ReasonCallbackPrefix + r.Code,
		})
	}
	return &entities.Keyboard{Inline: true, Options: options}
}

// SkipKeyboard is the inline keyboard with the single skip action.
func (v Variant) SkipKeyboard() *entities.Keyboard {
	return &entities.Keyboard{
		Inline:  true,
		Options: []entities.ButtonOption{{Label: v.Texts.SkipLabel, Data: SkipCallback}},
	}
}

// IsExpectationOption reports whether label is one of the offered answers.
func (v Variant) IsExpectationOption(label string) bool {
	for _, o := range v.ExpectationOptions {
		if o == label {
			return true
		}
	}
	return false
}
