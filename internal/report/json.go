package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nao1215/pageguard/internal/panel"
	"github.com/nao1215/pageguard/internal/pipeline"
	"github.com/nao1215/pageguard/internal/strength"
)

// JSONWriter outputs reports in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteView outputs a panel view.
func (w *JSONWriter) WriteView(v panel.View) (int, error) {
	return w.writeJSON(v)
}

// WriteAudits outputs the audits as a JSON array.
func (w *JSONWriter) WriteAudits(audits []*pipeline.Audit) (int, error) {
	if audits == nil {
		audits = []*pipeline.Audit{}
	}
	return w.writeJSON(audits)
}

// strengthReport is the JSON form of a strength result.
type strengthReport struct {
	Strength    string   `json:"strength"`
	Score       int      `json:"score"`
	Color       string   `json:"color"`
	Feedback    []string `json:"feedback"`
	Suggestions []string `json:"suggestions"`
}

// WriteStrength outputs a strength result.
func (w *JSONWriter) WriteStrength(r strength.Result) (int, error) {
	feedback := r.Feedback
	if feedback == nil {
		feedback = []string{}
	}
	return w.writeJSON(strengthReport{
		Strength:    r.Strength.String(),
		Score:       r.Score,
		Color:       r.Color,
		Feedback:    feedback,
		Suggestions: append([]string{}, r.Suggestions()...),
	})
}

// writeJSON marshals v and writes it followed by a newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to encode report: %w", err)
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
