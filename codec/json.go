package codec

import (
	"io"

	"github.com/nasdf/filex/object"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// EncodeJSON writes the named collection as an indented JSON object.
func EncodeJSON(w io.Writer, name string, docs []object.Document) error {
	if docs == nil {
		docs = []object.Document{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string][]object.Document{name: docs})
}

// DecodeJSON reads the documents of the named collection from a JSON object
// written by EncodeJSON.
//
// Identity values that are valid ObjectID hex strings are restored as IDs.
func DecodeJSON(r io.Reader, name string) ([]object.Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var payload map[string][]map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, errors.Wrap(ErrCorrupt, err.Error())
	}
	list, ok := payload[name]
	if !ok {
		return nil, errors.Wrapf(ErrCorrupt, "collection %s not found", name)
	}
	docs := make([]object.Document, len(list))
	for i, m := range list {
		v, err := object.Normalize(m)
		if err != nil {
			return nil, errors.Wrapf(err, "entry %d", i)
		}
		doc := v.(object.Document)
		if s, ok := doc[object.IDField].(string); ok {
			if id, err := object.ParseID(s); err == nil {
				doc[object.IDField] = id
			}
		}
		docs[i] = doc
	}
	return docs, nil
}
