package request

import (
	"context"
	"strings"
	"testing"

	"github.com/nasdf/filex/core"
	"github.com/nasdf/filex/object"
	"github.com/nasdf/filex/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *core.DB {
	db, err := core.Open(context.Background(), storage.NewMemory(), "test.db")
	require.NoError(t, err)
	return db
}

func TestDecode(t *testing.T) {
	req, err := Decode(strings.NewReader(`{
		"operation": "find",
		"collection": "users",
		"query": {"age": 42},
		"sort": {"field": "name", "order": "desc"},
		"limit": {"start": 0, "end": 2}
	}`))
	require.NoError(t, err)

	assert.Equal(t, Find, req.Operation)
	assert.Equal(t, "users", req.Collection)
	assert.Equal(t, &core.Sort{Field: "name", Order: core.Descending}, req.Sort)
	assert.Equal(t, &core.Limit{Start: 0, End: 2}, req.Limit)

	q, err := object.Normalize(req.Query)
	require.NoError(t, err)
	assert.Equal(t, object.Document{"age": int64(42)}, q)
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"operation":`))
	assert.Error(t, err)
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	res, err := Execute(ctx, db, Request{
		Operation:  InsertMany,
		Collection: "Users",
		Documents: []map[string]any{
			{"_id": "a", "name": "Ann", "age": 30},
			{"_id": "b", "name": "Bob", "age": 42},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, res)

	res, err = Execute(ctx, db, Request{Operation: ListCollections})
	require.NoError(t, err)
	assert.Equal(t, []string{"users"}, res)

	res, err = Execute(ctx, db, Request{
		Operation:  Find,
		Collection: "users",
		Sort:       &core.Sort{Field: "age", Order: core.Descending},
	})
	require.NoError(t, err)
	docs := res.([]object.Document)
	require.Len(t, docs, 2)
	assert.Equal(t, "Bob", docs[0]["name"])

	res, err = Execute(ctx, db, Request{
		Operation:  FindByIDAndUpdate,
		Collection: "users",
		ID:         "a",
		Payload:    map[string]any{"age": 31},
		New:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, object.Document{"_id": "a", "name": "Ann", "age": int64(31)}, res)

	res, err = Execute(ctx, db, Request{Operation: Count, Collection: "users"})
	require.NoError(t, err)
	assert.Equal(t, 2, res)

	res, err = Execute(ctx, db, Request{Operation: Rename, Collection: "users", Name: "People"})
	require.NoError(t, err)
	assert.Equal(t, "people", res)

	_, err = Execute(ctx, db, Request{Operation: Drop, Collection: "people"})
	require.NoError(t, err)

	res, err = Execute(ctx, db, Request{Operation: ListCollections})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestExecuteErrors(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	_, err := Execute(ctx, db, Request{Operation: "explode", Collection: "users"})
	assert.ErrorIs(t, err, ErrUnknownOperation)

	_, err = Execute(ctx, db, Request{Operation: Find, Collection: "_FX"})
	assert.ErrorIs(t, err, core.ErrInvalidName)

	_, err = Execute(ctx, db, Request{Operation: InsertOne, Collection: "users"})
	assert.ErrorIs(t, err, core.ErrNullDocument)

	_, err = Execute(ctx, db, Request{Operation: FindOne, Collection: "users"})
	assert.ErrorIs(t, err, core.ErrNullQuery)
}
