package core

import (
	"context"

	"github.com/nasdf/filex/object"

	"github.com/pkg/errors"
)

// Collection is a named, ordered list of documents within a database.
type Collection struct {
	db   *DB
	name string
}

// Name returns the name of the collection.
func (c *Collection) Name() string {
	c.db.rootLock.RLock()
	defer c.db.rootLock.RUnlock()

	return c.name
}

// Find returns all documents matching the given query.
//
// A nil or empty query returns every document. Results are sorted and then
// limited according to the given options.
func (c *Collection) Find(ctx context.Context, query Query, opts *FindOptions) ([]object.Document, error) {
	query, err := query.normalize()
	if err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	result := []object.Document{}
	err = c.db.view(ctx, func(s *object.Snapshot) error {
		for _, doc := range s.Collection(c.name) {
			if len(query) == 0 || query.Matches(doc) {
				result = append(result, doc.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return opts.apply(result)
}

// FindOne returns the first document matching the given query or nil if there is none.
func (c *Collection) FindOne(ctx context.Context, query Query) (object.Document, error) {
	if query == nil {
		return nil, ErrNullQuery
	}
	query, err := query.normalize()
	if err != nil {
		return nil, err
	}
	var result object.Document
	err = c.db.view(ctx, func(s *object.Snapshot) error {
		_, result = first(s.Collection(c.name), query)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result.Clone(), nil
}

// FindByID returns the document with the given id or nil if there is none.
func (c *Collection) FindByID(ctx context.Context, id any) (object.Document, error) {
	if id == nil {
		return nil, ErrMissingID
	}
	return c.FindOne(ctx, Query{object.IDField: id})
}

// InsertOne adds the given document to the collection and returns the stored copy.
//
// A new ID is assigned when the document does not have one.
func (c *Collection) InsertOne(ctx context.Context, doc object.Document) (object.Document, error) {
	prepared, err := prepareDocument(doc)
	if err != nil {
		return nil, err
	}
	var name string
	err = c.db.update(ctx, func(s *object.Snapshot) (bool, error) {
		name = c.name
		docs := s.Collection(name)
		if err := checkDuplicates(docs, []object.Document{prepared}); err != nil {
			return false, err
		}
		s.SetCollection(name, append(docs, prepared))
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	id, _ := prepared.ID()
	c.db.log.Debugw("inserted document", "collection", name, "id", object.IDString(id))
	return prepared.Clone(), nil
}

// Create is an alias for InsertOne.
func (c *Collection) Create(ctx context.Context, doc object.Document) (object.Document, error) {
	return c.InsertOne(ctx, doc)
}

// InsertMany adds all of the given documents and returns their ids.
//
// Nothing is written if any document is invalid or has a duplicate id.
func (c *Collection) InsertMany(ctx context.Context, docs []object.Document) ([]any, error) {
	prepared := make([]object.Document, len(docs))
	for i, doc := range docs {
		p, err := prepareDocument(doc)
		if err != nil {
			return nil, errors.Wrapf(err, "document %d", i)
		}
		prepared[i] = p
	}
	var name string
	err := c.db.update(ctx, func(s *object.Snapshot) (bool, error) {
		name = c.name
		existing := s.Collection(name)
		if err := checkDuplicates(existing, prepared); err != nil {
			return false, err
		}
		s.SetCollection(name, append(existing, prepared...))
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	ids := make([]any, len(prepared))
	for i, doc := range prepared {
		ids[i], _ = doc.ID()
	}
	c.db.log.Debugw("inserted documents", "collection", name, "count", len(ids))
	return ids, nil
}

// DeleteOne removes the first document matching the given query and returns it.
//
// Nil is returned when no document matched.
func (c *Collection) DeleteOne(ctx context.Context, query Query) (object.Document, error) {
	if query == nil {
		return nil, ErrNullQuery
	}
	query, err := query.normalize()
	if err != nil {
		return nil, err
	}
	var deleted object.Document
	err = c.db.update(ctx, func(s *object.Snapshot) (bool, error) {
		docs := s.Collection(c.name)
		i, doc := first(docs, query)
		if doc == nil {
			return false, nil
		}
		deleted = doc
		s.SetCollection(c.name, append(docs[:i:i], docs[i+1:]...))
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// DeleteMany removes all documents matching the given query and returns their ids.
//
// A nil or empty query removes every document.
func (c *Collection) DeleteMany(ctx context.Context, query Query) ([]any, error) {
	query, err := query.normalize()
	if err != nil {
		return nil, err
	}
	ids := []any{}
	var name string
	err = c.db.update(ctx, func(s *object.Snapshot) (bool, error) {
		name = c.name
		docs := s.Collection(name)
		kept := make([]object.Document, 0, len(docs))
		for _, doc := range docs {
			if len(query) > 0 && !query.Matches(doc) {
				kept = append(kept, doc)
				continue
			}
			id, _ := doc.ID()
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			return false, nil
		}
		s.SetCollection(name, kept)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	c.db.log.Debugw("deleted documents", "collection", name, "count", len(ids))
	return ids, nil
}

// FindByIDAndDelete removes the document with the given id and returns it.
func (c *Collection) FindByIDAndDelete(ctx context.Context, id any) (object.Document, error) {
	if id == nil {
		return nil, ErrMissingID
	}
	return c.DeleteOne(ctx, Query{object.IDField: id})
}

// UpdateOne merges the payload into the first document matching the query.
//
// The original document is returned unless opts.New is set. Nil is returned
// when no document matched.
func (c *Collection) UpdateOne(ctx context.Context, query Query, payload object.Document, opts *UpdateOptions) (object.Document, error) {
	if len(query) == 0 {
		return nil, ErrEmptyQuery
	}
	query, err := query.normalize()
	if err != nil {
		return nil, err
	}
	patch, err := preparePayload(payload)
	if err != nil {
		return nil, err
	}
	var original, updated object.Document
	err = c.db.update(ctx, func(s *object.Snapshot) (bool, error) {
		docs := s.Collection(c.name)
		i, doc := first(docs, query)
		if doc == nil {
			return false, nil
		}
		merged, err := applyPayload(doc, patch)
		if err != nil {
			return false, err
		}
		original, updated = doc, merged
		docs[i] = merged
		return true, nil
	})
	if err != nil || original == nil {
		return nil, err
	}
	if opts != nil && opts.New {
		return updated.Clone(), nil
	}
	return original, nil
}

// UpdateMany merges the payload into every document matching the query and returns their ids.
//
// A nil or empty query matches every document.
func (c *Collection) UpdateMany(ctx context.Context, query Query, payload object.Document, opts *UpdateOptions) ([]any, error) {
	query, err := query.normalize()
	if err != nil {
		return nil, err
	}
	patch, err := preparePayload(payload)
	if err != nil {
		return nil, err
	}
	ids := []any{}
	var name string
	err = c.db.update(ctx, func(s *object.Snapshot) (bool, error) {
		name = c.name
		docs := s.Collection(name)
		updated := make([]object.Document, len(docs))
		copy(updated, docs)
		for i, doc := range docs {
			if len(query) > 0 && !query.Matches(doc) {
				continue
			}
			merged, err := applyPayload(doc, patch)
			if err != nil {
				return false, err
			}
			updated[i] = merged
			id, _ := doc.ID()
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			return false, nil
		}
		s.SetCollection(name, updated)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	c.db.log.Debugw("updated documents", "collection", name, "count", len(ids))
	return ids, nil
}

// FindByIDAndUpdate merges the payload into the document with the given id.
func (c *Collection) FindByIDAndUpdate(ctx context.Context, id any, payload object.Document, opts *UpdateOptions) (object.Document, error) {
	if id == nil || payload == nil {
		return nil, ErrMissingArgs
	}
	return c.UpdateOne(ctx, Query{object.IDField: id}, payload, opts)
}

// Count returns the number of documents in the collection.
func (c *Collection) Count(ctx context.Context) (int, error) {
	var count int
	err := c.db.view(ctx, func(s *object.Snapshot) error {
		count = len(s.Collection(c.name))
		return nil
	})
	return count, err
}

// Rename moves the documents of the collection to a new name and returns it.
//
// Renaming an empty collection leaves it in place under its current name.
// Renaming onto a collection that already holds documents fails with
// ErrInvalidName instead of replacing it. The collection keeps its current
// name when the move can not be written.
func (c *Collection) Rename(ctx context.Context, newName string) (string, error) {
	newName, err := collectionName(newName)
	if err != nil {
		return "", err
	}
	var moved bool
	err = c.db.commit(ctx, func(s *object.Snapshot) (bool, error) {
		docs := s.Collection(c.name)
		if len(docs) == 0 || newName == c.name {
			if s.Has(c.name) {
				return false, nil
			}
			s.SetCollection(c.name, nil)
			return true, nil
		}
		if len(s.Collection(newName)) > 0 {
			return false, errors.Wrapf(ErrInvalidName, "collection %s already exists", newName)
		}
		s.SetCollection(newName, docs)
		s.DeleteCollection(c.name)
		moved = true
		return true, nil
	}, func() {
		if !moved {
			return
		}
		c.db.log.Infow("renamed collection", "from", c.name, "to", newName)
		c.name = newName
	})
	if err != nil {
		return "", err
	}
	return newName, nil
}

// Drop removes the collection and all of its documents.
func (c *Collection) Drop(ctx context.Context) error {
	return c.db.update(ctx, func(s *object.Snapshot) (bool, error) {
		if !s.DeleteCollection(c.name) {
			return false, nil
		}
		c.db.log.Infow("dropped collection", "collection", c.name)
		return true, nil
	})
}

// first returns the index and value of the first document matching the query.
func first(docs []object.Document, query Query) (int, object.Document) {
	for i, doc := range docs {
		if query.Matches(doc) {
			return i, doc
		}
	}
	return -1, nil
}

// prepareDocument returns a normalized copy of the document with an ID assigned.
func prepareDocument(doc object.Document) (object.Document, error) {
	if doc == nil {
		return nil, ErrNullDocument
	}
	v, err := object.Normalize(doc)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidDocument, err.Error())
	}
	prepared := v.(object.Document)
	id, ok := prepared.ID()
	if !ok {
		prepared[object.IDField] = object.NewID()
		return prepared, nil
	}
	switch id.(type) {
	case nil, object.Document, []any:
		return nil, errors.Wrapf(ErrInvalidDocument, "%s must be a scalar value", object.IDField)
	}
	return prepared, nil
}

// checkDuplicates returns an error if any new document shares an ID with an
// existing document or another new document.
func checkDuplicates(existing, docs []object.Document) error {
	seen := make(map[string]struct{}, len(existing)+len(docs))
	for _, doc := range existing {
		id, _ := doc.ID()
		seen[object.IDString(id)] = struct{}{}
	}
	for _, doc := range docs {
		id, _ := doc.ID()
		key := object.IDString(id)
		if _, ok := seen[key]; ok {
			return errors.Wrapf(ErrDuplicateID, "a document with id `%s` already exists", key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func preparePayload(payload object.Document) (object.Document, error) {
	if payload == nil {
		return nil, errors.Wrap(ErrInvalidPayload, "payload is required")
	}
	v, err := object.Normalize(payload)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidPayload, err.Error())
	}
	return v.(object.Document), nil
}

// applyPayload returns the document with the payload fields merged in.
//
// The ID of a document can not change. A payload ID is accepted only when it
// identifies the same document and is otherwise rejected.
func applyPayload(doc, patch object.Document) (object.Document, error) {
	if id, ok := patch.ID(); ok {
		current, _ := doc.ID()
		if !object.SameID(current, id) {
			return nil, errors.Wrapf(ErrInvalidPayload, "%s can not be changed", object.IDField)
		}
		patch = patch.Clone()
		delete(patch, object.IDField)
	}
	return doc.Merge(patch), nil
}
