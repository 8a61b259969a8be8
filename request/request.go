// Package request describes collection operations as plain data so they can
// be decoded from JSON or YAML and executed against a database.
package request

import (
	"context"
	"io"

	"github.com/nasdf/filex/core"
	"github.com/nasdf/filex/object"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Operation names a collection or database operation.
type Operation string

const (
	ListCollections   Operation = "listCollections"
	Find              Operation = "find"
	FindOne           Operation = "findOne"
	FindByID          Operation = "findById"
	InsertOne         Operation = "insertOne"
	InsertMany        Operation = "insertMany"
	DeleteOne         Operation = "deleteOne"
	DeleteMany        Operation = "deleteMany"
	FindByIDAndDelete Operation = "findByIdAndDelete"
	UpdateOne         Operation = "updateOne"
	UpdateMany        Operation = "updateMany"
	FindByIDAndUpdate Operation = "findByIdAndUpdate"
	Count             Operation = "count"
	Export            Operation = "export"
	Import            Operation = "import"
	Rename            Operation = "rename"
	Drop              Operation = "drop"
)

// ErrUnknownOperation is returned when a request names an unsupported operation.
var ErrUnknownOperation = errors.New("unknown operation")

// Request contains all of the parameters for a single operation.
type Request struct {
	Operation  Operation `json:"operation" yaml:"operation"`
	Collection string    `json:"collection,omitempty" yaml:"collection"`
	// Query selects documents for find, delete and update operations.
	Query map[string]any `json:"query,omitempty" yaml:"query"`
	// ID selects a single document for the by-id operations.
	ID any `json:"id,omitempty" yaml:"id"`
	// Document is inserted by insertOne.
	Document map[string]any `json:"document,omitempty" yaml:"document"`
	// Documents are inserted by insertMany.
	Documents []map[string]any `json:"documents,omitempty" yaml:"documents"`
	// Payload is merged into matched documents by update operations.
	Payload map[string]any `json:"payload,omitempty" yaml:"payload"`
	Sort    *core.Sort     `json:"sort,omitempty" yaml:"sort"`
	Limit   *core.Limit    `json:"limit,omitempty" yaml:"limit"`
	// New returns updated documents instead of the originals.
	New bool `json:"new,omitempty" yaml:"new"`
	// Name is the target of a rename.
	Name string `json:"name,omitempty" yaml:"name"`
	// File is the export or import file.
	File string `json:"file,omitempty" yaml:"file"`
}

// Decode reads a JSON request. Numbers keep their integer form.
func Decode(r io.Reader) (Request, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var req Request
	if err := dec.Decode(&req); err != nil {
		return Request{}, errors.Wrap(err, "decode request")
	}
	return req, nil
}

// Execute runs the request against the given database and returns its result.
func Execute(ctx context.Context, db *core.DB, req Request) (any, error) {
	if req.Operation == ListCollections {
		return db.ListCollections(ctx)
	}
	col, err := db.Collection(ctx, req.Collection)
	if err != nil {
		return nil, err
	}
	query := core.Query(req.Query)
	update := &core.UpdateOptions{New: req.New}

	switch req.Operation {
	case Find:
		return col.Find(ctx, query, &core.FindOptions{Sort: req.Sort, Limit: req.Limit})
	case FindOne:
		return col.FindOne(ctx, query)
	case FindByID:
		return col.FindByID(ctx, req.ID)
	case InsertOne:
		return col.InsertOne(ctx, object.Document(req.Document))
	case InsertMany:
		docs := make([]object.Document, len(req.Documents))
		for i, d := range req.Documents {
			docs[i] = object.Document(d)
		}
		return col.InsertMany(ctx, docs)
	case DeleteOne:
		return col.DeleteOne(ctx, query)
	case DeleteMany:
		return col.DeleteMany(ctx, query)
	case FindByIDAndDelete:
		return col.FindByIDAndDelete(ctx, req.ID)
	case UpdateOne:
		return col.UpdateOne(ctx, query, object.Document(req.Payload), update)
	case UpdateMany:
		return col.UpdateMany(ctx, query, object.Document(req.Payload), update)
	case FindByIDAndUpdate:
		return col.FindByIDAndUpdate(ctx, req.ID, object.Document(req.Payload), update)
	case Count:
		return col.Count(ctx)
	case Export:
		return nil, col.Export(ctx, req.File)
	case Import:
		return col.Import(ctx, req.File)
	case Rename:
		return col.Rename(ctx, req.Name)
	case Drop:
		return nil, col.Drop(ctx)
	default:
		return nil, errors.Wrapf(ErrUnknownOperation, "%q", req.Operation)
	}
}
