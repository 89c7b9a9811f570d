// Package score turns a page security snapshot into the 0-100 score shown by
// the summary panel, together with its status band and the separate
// third-party script warning level.
package score

import "github.com/nao1215/pageguard/internal/snapshot"

// Score weights.
const (
	HTTPSPoints      = 40
	CookieAllowance  = 20
	CookieCost       = 2
	ScriptAllowance  = 30
	ScriptCost       = 3
	BaselinePoints   = 10
	MaxScore         = 100
	MinScore         = 0
	ThirdPartyWarn   = 5
	ThirdPartyDanger = 10
)

// Class is the presentation class attached to a metric.
type Class string

// Presentation classes.
const (
	ClassNone    Class = ""
	ClassGood    Class = "good"
	ClassWarning Class = "warning"
	ClassDanger  Class = "danger"
)

// Status is the banded description of a score.
type Status struct {
	Text  string `json:"text"`
	Class Class  `json:"class"`
}

// Calculate derives the security score for a snapshot.
func Calculate(s snapshot.PageSnapshot) int {
	total := 0
	if s.HTTPSOnly {
		total += HTTPSPoints
	}
	total += CookieAllowance - min(s.CookieCount*CookieCost, CookieAllowance)
	total += ScriptAllowance - min(s.ThirdPartyScriptCount*ScriptCost, ScriptAllowance)
	total += BaselinePoints
	return max(MinScore, min(total, MaxScore))
}

// StatusFor returns the status band for a score.
func StatusFor(score int) Status {
	switch {
	case score >= 80:
		return Status{Text: "Excellent", Class: ClassGood}
	case score >= 60:
		return Status{Text: "Good", Class: ClassWarning}
	case score >= 40:
		return Status{Text: "Fair", Class: ClassWarning}
	default:
		return Status{Text: "Poor", Class: ClassDanger}
	}
}

// ThirdPartyLevel classifies a third-party script count independently of the
// numeric score. Thresholds are checked from the highest down so that counts
// above ThirdPartyDanger are reported as danger.
func ThirdPartyLevel(count int) Class {
	switch {
	case count > ThirdPartyDanger:
		return ClassDanger
	case count > ThirdPartyWarn:
		return ClassWarning
	default:
		return ClassNone
	}
}

// HTTPSClass returns the class for the HTTPS indicator.
func HTTPSClass(httpsOnly bool) Class {
	if httpsOnly {
		return ClassGood
	}
	return ClassDanger
}

// Assessment is the read-only view over a snapshot shown by the panel.
type Assessment struct {
	Snapshot        snapshot.PageSnapshot `json:"snapshot"`
	Score           int                   `json:"score"`
	Status          Status                `json:"status"`
	ThirdPartyLevel Class                 `json:"third_party_level"`
	HTTPSClass      Class                 `json:"https_class"`
}

// Assess computes every derived value for s.
func Assess(s snapshot.PageSnapshot) Assessment {
	value := Calculate(s)
	return Assessment{
		Snapshot:        s,
		Score:           value,
		Status:          StatusFor(value),
		ThirdPartyLevel: ThirdPartyLevel(s.ThirdPartyScriptCount),
		HTTPSClass:      HTTPSClass(s.HTTPSOnly),
	}
}
