package codec

import (
	"bytes"
	"io"
	"time"

	"github.com/nasdf/filex/object"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

type Decoder struct {
	r io.Reader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r}
}

// Decode reads one BSON encoded snapshot.
func (d *Decoder) Decode() (*object.Snapshot, error) {
	raw, err := bson.NewFromIOReader(d.r)
	if err != nil {
		return nil, errors.Wrap(ErrCorrupt, err.Error())
	}
	return Unmarshal(raw)
}

// Unmarshal decodes a snapshot from its BSON encoding.
func Unmarshal(data []byte) (*object.Snapshot, error) {
	raw := bson.Raw(data)
	if err := raw.Validate(); err != nil {
		return nil, errors.Wrap(ErrCorrupt, err.Error())
	}
	elems, err := raw.Elements()
	if err != nil {
		return nil, errors.Wrap(ErrCorrupt, err.Error())
	}
	snapshot := object.NewSnapshot()
	for _, e := range elems {
		name := e.Key()
		val := e.Value()
		if val.Type != bsontype.Array {
			return nil, errors.Wrapf(ErrCorrupt, "collection %s is a %s", name, val.Type)
		}
		values, err := val.Array().Values()
		if err != nil {
			return nil, errors.Wrap(ErrCorrupt, err.Error())
		}
		docs := make([]object.Document, len(values))
		for i, v := range values {
			if v.Type != bsontype.EmbeddedDocument {
				return nil, errors.Wrapf(ErrCorrupt, "collection %s entry %d is a %s", name, i, v.Type)
			}
			doc, err := decodeDocument(v.Document())
			if err != nil {
				return nil, errors.Wrapf(err, "collection %s entry %d", name, i)
			}
			docs[i] = doc
		}
		snapshot.SetCollection(name, docs)
	}
	return snapshot, nil
}

func decodeDocument(raw bson.Raw) (object.Document, error) {
	elems, err := raw.Elements()
	if err != nil {
		return nil, errors.Wrap(ErrCorrupt, err.Error())
	}
	doc := make(object.Document, len(elems))
	for _, e := range elems {
		v, err := decodeValue(e.Value())
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", e.Key())
		}
		doc[e.Key()] = v
	}
	return doc, nil
}

func decodeList(raw bson.Raw) ([]any, error) {
	values, err := raw.Values()
	if err != nil {
		return nil, errors.Wrap(ErrCorrupt, err.Error())
	}
	out := make([]any, len(values))
	for i, v := range values {
		out[i], err = decodeValue(v)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func decodeValue(v bson.RawValue) (any, error) {
	switch v.Type {
	case bsontype.Null, bsontype.Undefined:
		return nil, nil
	case bsontype.Double:
		return v.Double(), nil
	case bsontype.String:
		return v.StringValue(), nil
	case bsontype.Boolean:
		return v.Boolean(), nil
	case bsontype.Int32:
		return int64(v.Int32()), nil
	case bsontype.Int64:
		return v.Int64(), nil
	case bsontype.ObjectID:
		return v.ObjectID(), nil
	case bsontype.DateTime:
		return time.UnixMilli(v.DateTime()).UTC(), nil
	case bsontype.Binary:
		_, data := v.Binary()
		return bytes.Clone(data), nil
	case bsontype.EmbeddedDocument:
		return decodeDocument(v.Document())
	case bsontype.Array:
		return decodeList(v.Array())
	default:
		return nil, errors.Wrapf(ErrCorrupt, "unsupported bson type %s", v.Type)
	}
}
