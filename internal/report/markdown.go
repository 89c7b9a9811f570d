package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/pageguard/internal/panel"
	"github.com/nao1215/pageguard/internal/pipeline"
	"github.com/nao1215/pageguard/internal/score"
	"github.com/nao1215/pageguard/internal/strength"
)

// MarkdownWriter outputs reports in GitHub Flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteView outputs a panel view.
func (w *MarkdownWriter) WriteView(v panel.View) (int, error) {
	md := markdown.NewMarkdown(w.output)
	w.writeView(md, v)
	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeView(md *markdown.Markdown, v panel.View) {
	md.H1(heading(v))
	md.PlainText("")

	switch v.State {
	case panel.StateReady:
		rows := v.Rows()
		table := make([][]string, 0, len(rows))
		for _, row := range rows {
			table = append(table, []string{row.Label, row.Value})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Metric", "Value"},
			Rows:   table,
		})
		md.PlainText("")
		w.writeAlert(md, v.Assessment)
		md.PlainTextf("Last updated: %s", v.Assessment.Snapshot.Timestamp.Format("2006-01-02 15:04:05 MST"))
		md.PlainText("")
	case panel.StateError:
		md.Cautionf("%s", v.Message)
		md.PlainText("")
	default:
		md.Note(v.Message)
		md.PlainText("")
	}
}

// writeAlert writes an alert matching the assessment's status class.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, a *score.Assessment) {
	if !a.Snapshot.HTTPSOnly {
		md.Cautionf("Page is served over %s; passwords typed here travel unencrypted.", panel.DisplayProtocol(a.Snapshot.Protocol))
	}
	switch a.Status.Class {
	case score.ClassGood:
		md.Tip(a.Status.Text + " security posture.")
	case score.ClassWarning:
		md.Warningf("%s security posture. Review cookies and third-party scripts.", a.Status.Text)
	default:
		md.Importantf("%s security posture.", a.Status.Text)
	}
	md.PlainText("")
}

// WriteAudits outputs a summary table of all audits, a status chart and the
// failures.
func (w *MarkdownWriter) WriteAudits(audits []*pipeline.Audit) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("pageguard Audit")
	md.PlainText("")

	rows := make([][]string, 0, len(audits))
	counts := make(map[string]uint64)
	var order []string
	var failures []*pipeline.Audit
	for _, a := range audits {
		if a == nil {
			continue
		}
		v, ok := auditView(a)
		if !ok {
			failures = append(failures, a)
			continue
		}
		as := v.Assessment
		rows = append(rows, []string{
			"`" + truncateString(a.Target, 60) + "`",
			v.Hostname,
			strconv.Itoa(as.Score),
			as.Status.Text,
			panel.DisplayProtocol(as.Snapshot.Protocol),
			strconv.Itoa(as.Snapshot.ThirdPartyScriptCount),
		})
		if _, seen := counts[as.Status.Text]; !seen {
			order = append(order, as.Status.Text)
		}
		counts[as.Status.Text]++
	}

	if len(rows) > 0 {
		md.Table(markdown.TableSet{
			Header: []string{"Target", "Hostname", "Score", "Status", "Protocol", "Third-party Scripts"},
			Rows:   rows,
		})
		md.PlainText("")
		w.writePieChart(md, order, counts)
	} else {
		md.PlainText("No pages audited successfully.")
		md.PlainText("")
	}

	if len(failures) > 0 {
		md.H2("Failures")
		md.PlainText("")
		for _, a := range failures {
			md.Cautionf("`%s`: %s", a.Target, a.ErrorMessage)
			md.PlainText("")
		}
	}

	return len(md.String()), md.Build()
}

// writePieChart writes a mermaid pie chart of the status distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, order []string, counts map[string]uint64) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Security Status Distribution"),
		piechart.WithShowData(true),
	)
	for _, status := range order {
		chart.LabelAndIntValue(status, counts[status])
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// WriteStrength outputs a strength result.
func (w *MarkdownWriter) WriteStrength(r strength.Result) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H2("Password Strength: " + r.Strength.String())
	md.PlainText("")
	md.PlainTextf("Score: %d", r.Score)
	md.PlainText("")

	if suggestions := r.Suggestions(); len(suggestions) > 0 {
		md.BulletList(suggestions...)
	} else {
		md.Tip("Strong password!")
	}
	md.PlainText("")

	return len(md.String()), md.Build()
}
