package schema

import "errors"

var (
	errDocumentNoSource = errors.New("schema: document needs a source")
	errDocumentNoData   = errors.New("schema: document payload is empty")
)

// Document pairs a raw schema payload with the Source it was loaded from.
// The payload is copied on the way in and on the way out, so a document
// handed to one component cannot be mutated through another.
type Document struct {
	src     Source
	payload []byte
}

// NewDocument wraps a payload and its origin, rejecting empty input early so
// adapters never see a half-formed document.
func NewDocument(src Source, payload []byte) (Document, error) {
	if src == nil {
		return Document{}, errDocumentNoSource
	}
	if len(payload) == 0 {
		return Document{}, errDocumentNoData
	}
	doc := Document{src: src, payload: make([]byte, len(payload))}
	copy(doc.payload, payload)
	return doc, nil
}

// MustNewDocument is NewDocument for fixtures and tests; it panics on error.
func MustNewDocument(src Source, payload []byte) Document {
	doc, err := NewDocument(src, payload)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns the origin the document was loaded from.
func (d Document) Source() Source {
	return d.src
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	out := make([]byte, len(d.payload))
	copy(out, d.payload)
	return out
}

// Location is shorthand for the source's string identifier.
func (d Document) Location() string {
	if d.src == nil {
		return ""
	}
	return d.src.Location()
}
