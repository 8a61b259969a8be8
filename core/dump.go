package core

import (
	"context"

	"github.com/nasdf/filex/object"
)

// Dump returns a map of collections to document ids.
//
// This function is primarily used for testing.
func (db *DB) Dump(ctx context.Context) (map[string][]string, error) {
	docs := make(map[string][]string)
	err := db.view(ctx, func(s *object.Snapshot) error {
		for _, name := range s.Names() {
			ids := []string{}
			for _, doc := range s.Collection(name) {
				id, _ := doc.ID()
				ids = append(ids, object.IDString(id))
			}
			docs[name] = ids
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}
