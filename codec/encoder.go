package codec

import (
	"bufio"
	"io"
	"slices"
	"time"

	"github.com/nasdf/filex/object"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Encoder struct {
	w *bufio.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{bufio.NewWriter(w)}
}

func (e *Encoder) Flush() error {
	return e.w.Flush()
}

// Encode writes the BSON encoding of the given snapshot.
func (e *Encoder) Encode(s *object.Snapshot) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	_, err = e.w.Write(data)
	return err
}

// Marshal returns the BSON encoding of the given snapshot.
//
// Collections keep their snapshot order. Document fields are written with the
// ID field first followed by the remaining fields in sorted order.
func Marshal(s *object.Snapshot) ([]byte, error) {
	names := s.Names()
	root := make(bson.D, 0, len(names))
	for _, name := range names {
		docs := s.Collection(name)
		list := make(bson.A, len(docs))
		for i, doc := range docs {
			list[i] = encodeDocument(doc)
		}
		root = append(root, bson.E{Key: name, Value: list})
	}
	return bson.Marshal(root)
}

func encodeDocument(doc object.Document) bson.D {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		if k != object.IDField {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	out := make(bson.D, 0, len(doc))
	if id, ok := doc[object.IDField]; ok {
		out = append(out, bson.E{Key: object.IDField, Value: encodeValue(id)})
	}
	for _, k := range keys {
		out = append(out, bson.E{Key: k, Value: encodeValue(doc[k])})
	}
	return out
}

func encodeValue(value any) any {
	switch t := value.(type) {
	case object.Document:
		return encodeDocument(t)
	case []any:
		list := make(bson.A, len(t))
		for i, v := range t {
			list[i] = encodeValue(v)
		}
		return list
	case time.Time:
		return primitive.NewDateTimeFromTime(t)
	case []byte:
		return primitive.Binary{Data: t}
	default:
		return value
	}
}
