package structure

import (
	"encoding/json"
	"io"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

// FormatVersion is the interchange format version written by Encode.
const FormatVersion = "1.0.0"

// supportedFormats is the range of interchange versions Decode accepts.
const supportedFormats = "^1.0.0"

// ErrUnsupportedFormat is returned for documents outside supportedFormats.
var ErrUnsupportedFormat = errors.New("structure: unsupported format version")

// Document is the JSON interchange form of a model plus its symmetry
// operators.
type Document struct {
	Version string `json:"version,omitempty"`
	Model
	Operators []Operator `json:"operators,omitempty"`
}

// DecodeDocument reads a Document and checks its format version. A missing
// version is treated as FormatVersion.
func DecodeDocument(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "structure: decode")
	}
	if doc.Version == "" {
		doc.Version = FormatVersion
	}
	v, err := semver.NewVersion(doc.Version)
	if err != nil {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "version %q: %v", doc.Version, err)
	}
	c, err := semver.NewConstraint(supportedFormats)
	if err != nil {
		return nil, errors.Wrap(err, "structure: format constraint")
	}
	if !c.Check(v) {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "version %s, want %s", v, supportedFormats)
	}
	for i := range doc.Atoms {
		doc.Atoms[i].Element = NormalizeSymbol(doc.Atoms[i].Element)
	}
	return &doc, nil
}

// Decode reads a Document and builds its Structure.
func Decode(r io.Reader) (*Structure, error) {
	doc, err := DecodeDocument(r)
	if err != nil {
		return nil, err
	}
	return New(&doc.Model, doc.Operators...)
}

// Encode writes m and ops as a Document.
func Encode(w io.Writer, m *Model, ops ...Operator) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(Document{Version: FormatVersion, Model: *m, Operators: ops}), "structure: encode")
}
