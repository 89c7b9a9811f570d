package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/pageguard/internal/panel"
	"github.com/nao1215/pageguard/internal/pipeline"
	"github.com/nao1215/pageguard/internal/score"
	"github.com/nao1215/pageguard/internal/snapshot"
	"github.com/nao1215/pageguard/internal/strength"
)

func testSnapshot() snapshot.PageSnapshot {
	return snapshot.PageSnapshot{
		URL:                   "https://example.com/login",
		Protocol:              "https:",
		CookieCount:           3,
		ScriptCount:           5,
		ThirdPartyScriptCount: 2,
		HTTPSOnly:             true,
		Timestamp:             time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func readyView() panel.View {
	return panel.ReadyView("example.com", score.Assess(testSnapshot()))
}

func testAudits() []*pipeline.Audit {
	ok := pipeline.NewAudit("https://example.com/login")
	snap := testSnapshot()
	assessment := score.Assess(snap)
	ok.Snapshot = &snap
	ok.Assessment = &assessment

	insecure := pipeline.NewAudit("http://plain.example.org/")
	plain := testSnapshot()
	plain.URL = "http://plain.example.org/"
	plain.Protocol = "http:"
	plain.HTTPSOnly = false
	plainAssessment := score.Assess(plain)
	insecure.Snapshot = &plain
	insecure.Assessment = &plainAssessment

	failed := pipeline.NewAudit("https://down.example.net/")
	failed.Err = errors.New("net::ERR_NAME_NOT_RESOLVED")
	failed.ErrorMessage = failed.Err.Error()

	return []*pipeline.Audit{ok, insecure, failed}
}

func assertContains(t *testing.T, output string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, output)
		}
	}
}

// TestSimpleWriter tests the human-readable writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("ready view", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).WriteView(readyView())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
		}
		assertContains(t, buf.String(), "Page Security: example.com", "Protocol:", "HTTPS:", panel.HTTPSSecure, "88/100", "Excellent")
		if strings.Contains(buf.String(), "Last updated") {
			t.Error("expected timestamp only in verbose mode")
		}
	})

	t.Run("verbose view", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).WriteView(readyView()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertContains(t, buf.String(), "https://example.com/login", "Last updated")
	})

	t.Run("no data view", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		v := panel.View{State: panel.StateNoData, Hostname: "example.com", Message: panel.MessageNoData}
		if _, err := NewSimpleWriter(&buf).WriteView(v); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertContains(t, buf.String(), panel.MessageNoData)
	})

	t.Run("audits", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteAudits(testAudits()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertContains(t, buf.String(),
			"Page Security: example.com",
			"Page Security: plain.example.org",
			panel.HTTPSNotSecure,
			"ERR_NAME_NOT_RESOLVED",
			"Audited 3 page(s), 1 failed",
		)
	})

	t.Run("strength with suggestions", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteStrength(strength.Evaluate("hello")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertContains(t, buf.String(), "Password Strength: ", "Very Weak", "Suggestions:", "• "+strength.FeedbackLength)
		if strings.Count(buf.String(), "• ") != strength.MaxSuggestions {
			t.Errorf("expected %d suggestions, got:\n%s", strength.MaxSuggestions, buf.String())
		}
	})

	t.Run("strength all clear", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteStrength(strength.Evaluate("Tr0ub4dor&Horse")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertContains(t, buf.String(), "Strong", "✓ Strong password!")
	})
}

// TestMarkdownWriter tests the Markdown writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("ready view", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteView(readyView()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertContains(t, buf.String(), "# Page Security: example.com", "Security Score", "88/100", "[!TIP]")
		if strings.Contains(buf.String(), "[!CAUTION]") {
			t.Error("expected no caution for an HTTPS page")
		}
	})

	t.Run("error view", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteView(panel.View{State: panel.StateError, Message: panel.MessageError}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertContains(t, buf.String(), "[!CAUTION]", panel.MessageError)
	})

	t.Run("audits", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteAudits(testAudits()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertContains(t, buf.String(),
			"# pageguard Audit",
			"plain.example.org",
			"HTTP:",
			"```mermaid",
			"Security Status Distribution",
			"## Failures",
			"ERR_NAME_NOT_RESOLVED",
		)
	})

	t.Run("no successful audits", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteAudits(testAudits()[2:]); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertContains(t, buf.String(), "No pages audited successfully.")
		if strings.Contains(buf.String(), "mermaid") {
			t.Error("expected no chart without results")
		}
	})

	t.Run("strength", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteStrength(strength.Evaluate("helloWorld")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertContains(t, buf.String(), "## Password Strength: Weak", "Score: 4", strength.FeedbackDigit)
	})
}

// TestJSONWriter tests the JSON writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("view", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).WriteView(readyView()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got struct {
			State      string `json:"state"`
			Hostname   string `json:"hostname"`
			Assessment struct {
				Score  int `json:"score"`
				Status struct {
					Text  string `json:"text"`
					Class string `json:"class"`
				} `json:"status"`
				Snapshot struct {
					Protocol string `json:"protocol"`
				} `json:"snapshot"`
			} `json:"assessment"`
		}
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
		}
		if got.State != "ready" || got.Hostname != "example.com" {
			t.Errorf("unexpected state %q hostname %q", got.State, got.Hostname)
		}
		if got.Assessment.Score != 88 || got.Assessment.Status.Class != "good" {
			t.Errorf("unexpected assessment %+v", got.Assessment)
		}
		if got.Assessment.Snapshot.Protocol != "https:" {
			t.Errorf("expected stored protocol form, got %q", got.Assessment.Snapshot.Protocol)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("expected indented output")
		}
	})

	t.Run("audits", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteAudits(testAudits()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var got []map[string]any
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 audits, got %d", len(got))
		}
		if got[2]["error"] != "net::ERR_NAME_NOT_RESOLVED" {
			t.Errorf("expected error message on failed audit, got %v", got[2]["error"])
		}
	})

	t.Run("empty audits is an array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteAudits(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(buf.String()) != "[]" {
			t.Errorf("expected [], got %s", buf.String())
		}
	})

	t.Run("strength", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteStrength(strength.Evaluate("")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var got struct {
			Strength    string   `json:"strength"`
			Score       int      `json:"score"`
			Color       string   `json:"color"`
			Feedback    []string `json:"feedback"`
			Suggestions []string `json:"suggestions"`
		}
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Strength != "Very Weak" || got.Color != "#ff4444" {
			t.Errorf("unexpected result %+v", got)
		}
		if len(got.Feedback) != 5 || len(got.Suggestions) != 3 {
			t.Errorf("expected 5 feedback and 3 suggestions, got %d and %d", len(got.Feedback), len(got.Suggestions))
		}
	})
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, js bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))

	n, err := mw.WriteView(readyView())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != text.Len()+js.Len() {
		t.Errorf("expected total %d bytes, got %d", text.Len()+js.Len(), n)
	}
	if text.Len() == 0 || js.Len() == 0 {
		t.Error("expected both writers to receive output")
	}

	var after bytes.Buffer
	mw = NewMultiWriter(NewJSONWriter(failingWriter{}), NewJSONWriter(&after))
	if _, err := mw.WriteStrength(strength.Evaluate("x")); err == nil {
		t.Error("expected error from failing writer")
	}
	if after.Len() != 0 {
		t.Error("expected writing to stop on first error")
	}
}

// TestTruncateString tests the truncation helper.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{in: "short", maxLen: 10, want: "short"},
		{in: "exactly10!", maxLen: 10, want: "exactly10!"},
		{in: "https://example.com/a/very/long/path", maxLen: 12, want: "https://e..."},
		{in: "ünïcödé", maxLen: 5, want: "ün..."},
		{in: "abcdef", maxLen: 2, want: "ab"},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}
