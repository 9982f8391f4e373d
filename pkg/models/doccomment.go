package models

// Unattached marks a doc comment with no subject span.
const Unattached = -1

// DocTag is a single @tag/value pair from a documentation comment.
// Duplicate tag names are preserved in order of appearance.
type DocTag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// DocComment is a documentation block recovered from the token stream.
// Text is the raw comment text, byte-for-byte, including markers.
type DocComment struct {
	Text      string   `json:"text"`
	StartByte uint32   `json:"start_byte"`
	EndByte   uint32   `json:"end_byte"`
	StartLine uint32   `json:"start_line"`
	Span      int      `json:"span"` // Unattached if no subject
	Tags      []DocTag `json:"tags,omitempty"`
}

// Attached reports whether the comment has a subject span.
func (d DocComment) Attached() bool {
	return d.Span != Unattached
}
