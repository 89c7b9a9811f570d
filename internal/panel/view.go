package panel

import (
	"fmt"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/pageguard/internal/score"
)

// HTTPS status texts.
const (
	HTTPSSecure    = "✓ Secure"
	HTTPSNotSecure = "⚠ Not Secure"
)

// Row is one labelled metric of a ready view.
type Row struct {
	Label string
	Value string
	Class score.Class
}

var upper = cases.Upper(language.Und)

// DisplayProtocol returns the protocol as shown to the user, e.g. "HTTPS:".
func DisplayProtocol(protocol string) string {
	return upper.String(protocol)
}

// ReadyView builds the view for an assessment.
func ReadyView(hostname string, a score.Assessment) View {
	return View{State: StateReady, Hostname: hostname, Assessment: &a}
}

// Rows returns the metrics shown for a ready view, in display order.
// It returns nil for any other state.
func (v View) Rows() []Row {
	if v.State != StateReady || v.Assessment == nil {
		return nil
	}
	a := v.Assessment
	https := HTTPSNotSecure
	if a.Snapshot.HTTPSOnly {
		https = HTTPSSecure
	}
	return []Row{
		{Label: "Protocol", Value: DisplayProtocol(a.Snapshot.Protocol)},
		{Label: "HTTPS", Value: https, Class: a.HTTPSClass},
		{Label: "Cookies", Value: strconv.Itoa(a.Snapshot.CookieCount)},
		{Label: "Scripts", Value: strconv.Itoa(a.Snapshot.ScriptCount)},
		{Label: "Third-party Scripts", Value: strconv.Itoa(a.Snapshot.ThirdPartyScriptCount), Class: a.ThirdPartyLevel},
		{Label: "Security Score", Value: fmt.Sprintf("%d/%d", a.Score, score.MaxScore), Class: a.Status.Class},
		{Label: "Summary", Value: a.Status.Text},
	}
}
