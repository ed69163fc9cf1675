package entities

// Reason is one entry of the dissatisfaction reason catalogue.
type Reason struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// ReasonCatalogue is the closed, ordered set of selectable dissatisfaction
// reasons. It is immutable after construction and safe for concurrent reads.
type ReasonCatalogue struct {
	ordered   []Reason
	labels    map[string]string
	otherCode string
}

// NewReasonCatalogue builds a catalogue from ordered entries. otherCode
// marks the entry whose selection makes the follow-up comment mandatory.
func NewReasonCatalogue(entries []Reason, otherCode string) *ReasonCatalogue {
	labels := make(map[string]string, len(entries))
	for _, e := range entries {
		labels[e.Code] = e.Label
	}
	return &ReasonCatalogue{
		ordered:   entries,
		labels:    labels,
		otherCode: otherCode,
	}
}

// Label resolves a reason code to its display label.
func (c *ReasonCatalogue) Label(code string) (string, bool) {
	label, ok := c.labels[code]
	return label, ok
}

// IsOther reports whether code is the free-form "other" entry.
func (c *ReasonCatalogue) IsOther(code string) bool {
	return code == c.otherCode
}

// Reasons returns the catalogue entries in display order.
func (c *ReasonCatalogue) Reasons() []Reason {
	return c.ordered
}
