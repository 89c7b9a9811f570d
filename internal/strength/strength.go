package strength

import (
	"strings"
	"unicode/utf8"
)

// Strength is the banded label derived from a password score.
type Strength int

const (
	// VeryWeak is assigned to scores below 3.
	VeryWeak Strength = iota
	// Weak is assigned to scores of 3 or 4.
	Weak
	// Medium is assigned to scores of 5 or 6.
	Medium
	// Strong is assigned to scores of 7 and above.
	Strong
)

// String returns the label shown to the user.
func (s Strength) String() string {
	switch s {
	case VeryWeak:
		return "Very Weak"
	case Weak:
		return "Weak"
	case Medium:
		return "Medium"
	case Strong:
		return "Strong"
	default:
		return "Unknown"
	}
}

// Color returns the CSS color code associated with the band.
func (s Strength) Color() string {
	switch s {
	case Strong:
		return "#44ff44"
	case Medium:
		return "#ffaa44"
	case Weak:
		return "#ff8844"
	default:
		return "#ff4444"
	}
}

// Feedback messages, in the order they are produced.
const (
	FeedbackLength    = "Use at least 8 characters"
	FeedbackLowercase = "Add lowercase letters"
	FeedbackUppercase = "Add uppercase letters"
	FeedbackDigit     = "Add numbers"
	FeedbackSymbol    = "Add special characters"
	FeedbackPattern   = "Avoid common patterns"
)

const (
	// MinLength is the length that earns the base length bonus.
	MinLength = 8
	// LongLength is the length that earns the extra length bonus.
	LongLength = 12
	// MaxSuggestions is how many feedback entries are surfaced to the user.
	MaxSuggestions = 3
)

// weakPatterns are matched case-insensitively as substrings.
var weakPatterns = []string{"123", "abc", "password", "qwerty"}

// Result is the outcome of evaluating a single password.
// It is derived purely from the input and is never persisted.
type Result struct {
	// Strength is the banded label.
	Strength Strength `json:"strength"`

	// Score is the raw point total before banding. It can be negative.
	Score int `json:"score"`

	// Feedback holds every suggestion in production order.
	Feedback []string `json:"feedback"`

	// Color is the CSS color code for the band.
	Color string `json:"color"`
}

// Suggestions returns the feedback entries surfaced for display,
// which is at most MaxSuggestions.
func (r Result) Suggestions() []string {
	if len(r.Feedback) <= MaxSuggestions {
		return r.Feedback
	}
	return r.Feedback[:MaxSuggestions]
}

// Evaluate scores a password. It has no side effects and always returns the
// same result for the same input.
func Evaluate(password string) Result {
	score := 0
	feedback := make([]string, 0, 6)

	length := utf8.RuneCountInString(password)
	if length >= MinLength {
		score += 2
	} else {
		feedback = append(feedback, FeedbackLength)
	}
	if length >= LongLength {
		score++
	}

	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			symbol = true
		}
	}

	if lower {
		score++
	} else {
		feedback = append(feedback, FeedbackLowercase)
	}
	if upper {
		score++
	} else {
		feedback = append(feedback, FeedbackUppercase)
	}
	if digit {
		score++
	} else {
		feedback = append(feedback, FeedbackDigit)
	}
	if symbol {
		score += 2
	} else {
		feedback = append(feedback, FeedbackSymbol)
	}

	if hasWeakPattern(password) {
		score -= 2
		feedback = append(feedback, FeedbackPattern)
	}

	band := bandFor(score)
	return Result{
		Strength: band,
		Score:    score,
		Feedback: feedback,
		Color:    band.Color(),
	}
}

// bandFor maps a raw score to its band.
func bandFor(score int) Strength {
	switch {
	case score >= 7:
		return Strong
	case score >= 5:
		return Medium
	case score >= 3:
		return Weak
	default:
		return VeryWeak
	}
}

func hasWeakPattern(password string) bool {
	lowered := strings.ToLower(password)
	for _, p := range weakPatterns {
		if strings.Contains(lowered, p) {
			return true
		}
	}
	return false
}
