package core

import (
	"slices"

	"github.com/nasdf/filex/object"

	"github.com/pkg/errors"
)

// Query is a flat set of field equality predicates.
//
// A document matches when every field of the query is present in the document
// with an equal value. The ID field is compared by string form so ObjectIDs,
// strings and numbers can be used interchangeably.
type Query map[string]any

// Order is the direction of a sort.
type Order string

const (
	Ascending  Order = "asc"
	Descending Order = "desc"
)

// Sort orders results by the values of a single field.
type Sort struct {
	Field string `json:"field" yaml:"field"`
	Order Order  `json:"order" yaml:"order"`
}

// Limit selects the results in the half open range [Start, End).
type Limit struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// FindOptions modify the results of Find.
type FindOptions struct {
	Limit *Limit
	Sort  *Sort
}

// UpdateOptions modify the result of single document updates.
type UpdateOptions struct {
	// New returns the updated document instead of the original.
	New bool
}

// normalize returns a copy of the query with all values in stored form.
func (q Query) normalize() (Query, error) {
	if q == nil {
		return nil, nil
	}
	out := make(Query, len(q))
	for k, v := range q {
		nv, err := object.Normalize(v)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidQuery, "field %s: %v", k, err)
		}
		out[k] = nv
	}
	return out, nil
}

// Matches returns true if the given document satisfies every predicate of the query.
func (q Query) Matches(doc object.Document) bool {
	for k, want := range q {
		got, ok := doc[k]
		if !ok {
			return false
		}
		if k == object.IDField {
			if !object.SameID(got, want) {
				return false
			}
			continue
		}
		if !object.Equal(got, want) {
			return false
		}
	}
	return true
}

func (o *FindOptions) validate() error {
	if o == nil {
		return nil
	}
	if o.Limit != nil {
		if o.Limit.Start < 0 || o.Limit.End < 0 {
			return errors.Wrapf(ErrInvalidLimit, "[%d, %d] must not be negative", o.Limit.Start, o.Limit.End)
		}
		if o.Limit.Start > o.Limit.End {
			return errors.Wrapf(ErrInvalidLimit, "start %d must not be greater than end %d", o.Limit.Start, o.Limit.End)
		}
	}
	if o.Sort != nil {
		if o.Sort.Field == "" {
			return errors.Wrap(ErrInvalidSort, "field is required")
		}
		switch o.Sort.Order {
		case "", Ascending, Descending:
		default:
			return errors.Wrapf(ErrInvalidSort, "order must be %s or %s", Ascending, Descending)
		}
	}
	return nil
}

// apply sorts and slices the given documents.
func (o *FindOptions) apply(docs []object.Document) ([]object.Document, error) {
	if o == nil {
		return docs, nil
	}
	if o.Sort != nil {
		if err := sortDocuments(docs, *o.Sort); err != nil {
			return nil, err
		}
	}
	if o.Limit != nil {
		start := min(o.Limit.Start, len(docs))
		end := min(o.Limit.End, len(docs))
		docs = docs[start:end]
	}
	return docs, nil
}

// sortDocuments performs a stable sort so documents with equal keys keep their stored order.
func sortDocuments(docs []object.Document, s Sort) error {
	for _, doc := range docs {
		if _, ok := doc[s.Field]; !ok {
			id, _ := doc.ID()
			return errors.Wrapf(ErrMissingField, "document %s has no field %s", object.IDString(id), s.Field)
		}
	}
	slices.SortStableFunc(docs, func(a, b object.Document) int {
		c := object.Compare(a[s.Field], b[s.Field])
		if s.Order == Descending {
			return -c
		}
		return c
	})
	return nil
}
