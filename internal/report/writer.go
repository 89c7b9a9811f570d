package report

import (
	"io"

	"github.com/nao1215/pageguard/internal/panel"
	"github.com/nao1215/pageguard/internal/pipeline"
	"github.com/nao1215/pageguard/internal/strength"
)

// Writer defines the interface for report output.
// Every method returns the number of bytes written and any error.
type Writer interface {
	// WriteView outputs a summary panel view.
	WriteView(v panel.View) (int, error)

	// WriteAudits outputs the results of an audit batch.
	WriteAudits(audits []*pipeline.Audit) (int, error)

	// WriteStrength outputs a password strength result.
	WriteStrength(r strength.Result) (int, error)
}

// MultiWriter writes to multiple Writers in order and stops on the first
// error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteView implements Writer.
func (m *MultiWriter) WriteView(v panel.View) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteView(v) })
}

// WriteAudits implements Writer.
func (m *MultiWriter) WriteAudits(audits []*pipeline.Audit) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteAudits(audits) })
}

// WriteStrength implements Writer.
func (m *MultiWriter) WriteStrength(r strength.Result) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteStrength(r) })
}

func (m *MultiWriter) each(write func(Writer) (int, error)) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := write(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// heading returns the title of a view.
func heading(v panel.View) string {
	if v.Hostname == "" {
		return "Page Security"
	}
	return "Page Security: " + v.Hostname
}

// auditView converts a successful audit into a ready view.
func auditView(a *pipeline.Audit) (panel.View, bool) {
	if a == nil || a.Failed() || a.Assessment == nil {
		return panel.View{}, false
	}
	return panel.ReadyView(a.Hostname(), *a.Assessment), true
}

// truncateString shortens s to at most maxLen runes, marking the cut.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
