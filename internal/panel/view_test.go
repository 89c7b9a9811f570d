package panel

import (
	"testing"

	"github.com/nao1215/pageguard/internal/score"
)

func TestRows(t *testing.T) {
	t.Parallel()

	rows := ReadyView("example.com", score.Assess(sampleSnapshot())).Rows()
	want := []Row{
		{Label: "Protocol", Value: "HTTPS:"},
		{Label: "HTTPS", Value: HTTPSSecure, Class: score.ClassGood},
		{Label: "Cookies", Value: "3"},
		{Label: "Scripts", Value: "5"},
		{Label: "Third-party Scripts", Value: "2"},
		{Label: "Security Score", Value: "88/100", Class: score.ClassGood},
		{Label: "Summary", Value: "Excellent"},
	}
	if len(rows) != len(want) {
		t.Fatalf("len(Rows()) = %d, want %d", len(rows), len(want))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("Rows()[%d] = %+v, want %+v", i, rows[i], want[i])
		}
	}

	if rows := (View{State: StateNoData}).Rows(); rows != nil {
		t.Errorf("Rows() for no data = %v, want nil", rows)
	}
}

func TestRowsInsecure(t *testing.T) {
	t.Parallel()

	snap := sampleSnapshot()
	snap.Protocol = "http:"
	snap.HTTPSOnly = false
	snap.ThirdPartyScriptCount = 11
	rows := ReadyView("example.com", score.Assess(snap)).Rows()

	if rows[0].Value != "HTTP:" {
		t.Errorf("protocol = %q, want HTTP:", rows[0].Value)
	}
	if rows[1].Value != HTTPSNotSecure || rows[1].Class != score.ClassDanger {
		t.Errorf("HTTPS row = %+v", rows[1])
	}
	if rows[4].Class != score.ClassDanger {
		t.Errorf("third-party class = %q, want %q", rows[4].Class, score.ClassDanger)
	}
}
