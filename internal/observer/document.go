package observer

import "github.com/nao1215/pageguard/internal/snapshot"

// FieldID identifies a password input within one document.
type FieldID string

// Rect is an element's bounding box in viewport coordinates.
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
}

// Point is a pair of page coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Document is the page surface the observer works against.
//
// Implementations deliver focus, blur and input events for attached fields,
// and mutation notifications once WatchMutations has been called, by calling
// Observer.Dispatch.
type Document interface {
	// PasswordFields lists every password-type input currently in the document.
	PasswordFields() ([]FieldID, error)

	// Attach subscribes to focus, blur and input events of a field.
	Attach(id FieldID) error

	// CreateAdvisory inserts the advisory element into the document.
	CreateAdvisory() error

	// RenderAdvisory updates the advisory element to match a.
	RenderAdvisory(a Advisory) error

	// FieldRect returns the on-screen bounding box of a field.
	FieldRect(id FieldID) (Rect, error)

	// ScrollOffset returns the page scroll offsets.
	ScrollOffset() (Point, error)

	// WatchMutations starts reporting added nodes in the document subtree.
	WatchMutations() error

	// PageInfo collects the raw material for a security snapshot.
	PageInfo() (snapshot.PageInfo, error)
}
