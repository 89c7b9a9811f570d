package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nao1215/pageguard/internal/observer"
	"github.com/nao1215/pageguard/internal/panel"
	"github.com/nao1215/pageguard/internal/pipeline"
	"github.com/nao1215/pageguard/internal/score"
	"github.com/nao1215/pageguard/internal/strength"
)

const ruleWidth = 60

// SimpleWriter outputs human-readable text for terminal display.
// Values carrying a status class are coloured; colour is dropped
// automatically when the output is not a terminal.
type SimpleWriter struct {
	baseWriter

	styles   map[score.Class]lipgloss.Style
	label    lipgloss.Style
	title    lipgloss.Style
	strength map[strength.Strength]lipgloss.Style

	// verbose adds the snapshot URL and timestamp.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	bold := lipgloss.NewStyle().Bold(true)
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		styles: map[score.Class]lipgloss.Style{
			score.ClassNone:    lipgloss.NewStyle(),
			score.ClassGood:    bold.Foreground(lipgloss.Color("#44ff44")),
			score.ClassWarning: bold.Foreground(lipgloss.Color("#ffaa44")),
			score.ClassDanger:  bold.Foreground(lipgloss.Color("#ff4444")),
		},
		label:    lipgloss.NewStyle().Width(22),
		title:    bold,
		strength: make(map[strength.Strength]lipgloss.Style),
	}
	for _, s := range []strength.Strength{strength.VeryWeak, strength.Weak, strength.Medium, strength.Strong} {
		w.strength[s] = bold.Foreground(lipgloss.Color(s.Color()))
	}

	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteView outputs a panel view.
func (w *SimpleWriter) WriteView(v panel.View) (int, error) {
	var sb strings.Builder
	w.writeView(&sb, v)
	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeView(sb *strings.Builder, v panel.View) {
	sb.WriteString(w.title.Render(heading(v)))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")

	switch v.State {
	case panel.StateReady:
		for _, row := range v.Rows() {
			sb.WriteString(w.label.Render(row.Label + ":"))
			sb.WriteString(w.styles[row.Class].Render(row.Value))
			sb.WriteString("\n")
		}
		if w.verbose {
			sb.WriteString("\n")
			fmt.Fprintf(sb, "URL:          %s\n", v.Assessment.Snapshot.URL)
			fmt.Fprintf(sb, "Last updated: %s\n", v.Assessment.Snapshot.Timestamp.Local().Format("2006-01-02 15:04:05 MST"))
		}
	case panel.StateLoading:
		sb.WriteString("Loading...\n")
	default:
		sb.WriteString(v.Message)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// WriteAudits outputs one section per audit followed by a summary line.
func (w *SimpleWriter) WriteAudits(audits []*pipeline.Audit) (int, error) {
	var sb strings.Builder
	failed := 0
	for _, a := range audits {
		if a == nil {
			continue
		}
		if v, ok := auditView(a); ok {
			w.writeView(&sb, v)
			continue
		}
		failed++
		sb.WriteString(w.title.Render("Page Security: " + a.Target))
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat("=", ruleWidth))
		sb.WriteString("\n")
		sb.WriteString(w.styles[score.ClassDanger].Render("ERROR"))
		sb.WriteString(" ")
		sb.WriteString(a.ErrorMessage)
		sb.WriteString("\n\n")
	}

	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Audited %d page(s), %d failed\n", len(audits), failed)
	return io.WriteString(w.output, sb.String())
}

// WriteStrength outputs a strength result the way the in-page advisory
// presents it.
func (w *SimpleWriter) WriteStrength(r strength.Result) (int, error) {
	var sb strings.Builder
	sb.WriteString(observer.LabelPrefix)
	sb.WriteString(w.strength[r.Strength].Render(r.Strength.String()))
	fmt.Fprintf(&sb, " (score %d)\n", r.Score)

	suggestions := r.Suggestions()
	if len(suggestions) == 0 {
		sb.WriteString(observer.AllClearMessage)
		sb.WriteString("\n")
	} else {
		sb.WriteString(observer.SuggestionsTitle)
		sb.WriteString("\n")
		for _, s := range suggestions {
			sb.WriteString("  • ")
			sb.WriteString(s)
			sb.WriteString("\n")
		}
	}
	return io.WriteString(w.output, sb.String())
}
