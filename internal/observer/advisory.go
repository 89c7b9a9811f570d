package observer

import "github.com/nao1215/pageguard/internal/strength"

// Advisory text.
const (
	LabelPrefix      = "Password Strength: "
	SuggestionsTitle = "Suggestions:"
	AllClearMessage  = "✓ Strong password!"
)

// advisoryOffset is the gap in pixels between a field and the advisory.
const advisoryOffset = 5

// Advisory is the state of the floating feedback element.
type Advisory struct {
	Visible bool    `json:"visible"`
	Top     float64 `json:"top"`
	Left    float64 `json:"left"`

	// Label is the headline, e.g. "Password Strength: Weak".
	Label string `json:"label"`
	// Color is the CSS color of the headline.
	Color string `json:"color"`
	// Suggestions are the surfaced feedback entries.
	Suggestions []string `json:"suggestions"`
	// AllClear is set when there is nothing to suggest.
	AllClear bool `json:"all_clear"`
}

// applyResult fills the advisory content from a strength result.
func (a *Advisory) applyResult(r strength.Result) {
	a.Label = LabelPrefix + r.Strength.String()
	a.Color = r.Color
	a.Suggestions = append([]string(nil), r.Suggestions()...)
	a.AllClear = len(r.Feedback) == 0
}

// placeBelow positions the advisory just below the left edge of a field.
func (a *Advisory) placeBelow(field Rect, scroll Point) {
	a.Top = field.Bottom + scroll.Y + advisoryOffset
	a.Left = field.Left + scroll.X
}
