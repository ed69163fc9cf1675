package entities

// EventKind distinguishes free text from button taps.
type EventKind string

const (
	EventText      EventKind = "text"
	EventButtonTap EventKind = "button_tap"
)

// InboundEvent is one user interaction handed to the survey engine by a
// transport. The engine consumes exactly one event per invocation.
type InboundEvent struct {
	UserID  string    `json:"user_id"`
	Kind    EventKind `json:"kind"`
	Payload string    `json:"payload"`
}

// ButtonOption is one legal response offered with a prompt.
type ButtonOption struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

// Keyboard describes the response options attached to a prompt. Rendering
// is the transport's job.
type Keyboard struct {
	// Inline keyboards carry callback data; reply keyboards echo the label
	// back as text.
	Inline  bool           `json:"inline"`
	Options []ButtonOption `json:"options"`
	// Remove clears a previously shown reply keyboard.
	Remove bool `json:"remove"`
}

// Prompt is one outbound question or confirmation produced by the engine.
type Prompt struct {
	Text     string    `json:"text"`
	Keyboard *Keyboard `json:"keyboard,omitempty"`
	// EditLast replaces the message the user just tapped instead of sending
	// a new one.
	EditLast bool `json:"edit_last"`
}

// TextPrompt builds a plain prompt without a keyboard.
func TextPrompt(text string) Prompt {
	return Prompt{Text: text}
}
