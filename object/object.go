package object

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Document is a mapping of field names to values with a unique ID field.
type Document map[string]any

// NewDocument returns an empty document.
func NewDocument() Document {
	return make(map[string]any)
}

// ID returns the identity field value and true if the document has one.
func (d Document) ID() (any, bool) {
	id, ok := d[IDField]
	return id, ok
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Document:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []byte:
		return bytes.Clone(t)
	default:
		return v
	}
}

// Merge returns a copy of the document with the fields of the given patch applied on top.
func (d Document) Merge(patch Document) Document {
	out := d.Clone()
	if out == nil {
		out = NewDocument()
	}
	for k, v := range patch {
		out[k] = cloneValue(v)
	}
	return out
}

// Pretty returns the document encoded as indented JSON.
func (d Document) Pretty() (string, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// CloneAll returns a deep copy of every document in the list.
func CloneAll(docs []Document) []Document {
	out := make([]Document, len(docs))
	for i, d := range docs {
		out[i] = d.Clone()
	}
	return out
}
