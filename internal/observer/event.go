package observer

// Event is something that happened in the page.
type Event interface {
	event()
}

// FieldEventKind distinguishes field events.
type FieldEventKind int

const (
	// Focus is sent when a field gains focus.
	Focus FieldEventKind = iota
	// Blur is sent when a field loses focus.
	Blur
	// Input is sent when a field's value changes.
	Input
)

// String returns the DOM event name.
func (k FieldEventKind) String() string {
	switch k {
	case Focus:
		return "focus"
	case Blur:
		return "blur"
	case Input:
		return "input"
	default:
		return "unknown"
	}
}

// ParseFieldEventKind maps a DOM event name to its kind.
func ParseFieldEventKind(name string) (FieldEventKind, bool) {
	switch name {
	case "focus":
		return Focus, true
	case "blur":
		return Blur, true
	case "input":
		return Input, true
	default:
		return 0, false
	}
}

// FieldEvent is a focus, blur or input event on an attached field.
type FieldEvent struct {
	Kind  FieldEventKind
	Field FieldID
	// Value is the field's current value for Input events.
	Value string
}

func (FieldEvent) event() {}

// AddedNode describes a node added to the document.
type AddedNode struct {
	// Element is true for element nodes.
	Element bool `json:"element"`
	// Tag is the upper-case tag name of an element node.
	Tag string `json:"tag"`
	// ContainsPassword is true if the node has a password input descendant.
	ContainsPassword bool `json:"contains_password"`
}

// MutationEvent is one batch of DOM mutations.
type MutationEvent struct {
	Added []AddedNode
}

func (MutationEvent) event() {}

// mayAddFields reports whether the batch plausibly introduced new input
// elements.
func (m MutationEvent) mayAddFields() bool {
	for _, n := range m.Added {
		if !n.Element {
			continue
		}
		if n.Tag == "INPUT" || n.Tag == "input" || n.ContainsPassword {
			return true
		}
	}
	return false
}
