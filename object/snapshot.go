package object

import (
	"bytes"
	"slices"

	"github.com/goccy/go-json"
)

// Snapshot is the in-memory image of a database.
//
// It maps collection names to ordered document lists and remembers the order
// in which collections were added.
type Snapshot struct {
	names       []string
	collections map[string][]Document
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		collections: make(map[string][]Document),
	}
}

// Names returns the collection names in storage order.
func (s *Snapshot) Names() []string {
	return slices.Clone(s.names)
}

// Has returns true if a collection with the given name exists.
func (s *Snapshot) Has(name string) bool {
	_, ok := s.collections[name]
	return ok
}

// Collection returns the documents of the named collection.
func (s *Snapshot) Collection(name string) []Document {
	return s.collections[name]
}

// SetCollection replaces the documents of the named collection, adding it if needed.
func (s *Snapshot) SetCollection(name string, docs []Document) {
	if docs == nil {
		docs = []Document{}
	}
	if _, ok := s.collections[name]; !ok {
		s.names = append(s.names, name)
	}
	s.collections[name] = docs
}

// DeleteCollection removes the named collection and returns true if it existed.
func (s *Snapshot) DeleteCollection(name string) bool {
	if _, ok := s.collections[name]; !ok {
		return false
	}
	delete(s.collections, name)
	s.names = slices.DeleteFunc(s.names, func(n string) bool { return n == name })
	return true
}

// MarshalJSON encodes the snapshot as a JSON object keeping collection order.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.collections[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Pretty returns the snapshot encoded as indented JSON.
func (s *Snapshot) Pretty() (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
