package core

import (
	"context"
	"testing"

	"github.com/nasdf/filex/object"
	"github.com/nasdf/filex/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	db, err := Open(context.Background(), storage.NewMemory(), "data/test.db")
	require.NoError(t, err)
	return db
}

func openTestCollection(t *testing.T, name string) *Collection {
	col, err := openTestDB(t).Collection(context.Background(), name)
	require.NoError(t, err)
	return col
}

func TestOpenCreatesEmptyDatabase(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	db, err := Open(ctx, store, "data/test.db")
	require.NoError(t, err)
	assert.Equal(t, "data/test.db", db.Path())

	ok, err := store.Has(ctx, "data/test.db")
	require.NoError(t, err)
	assert.True(t, ok)

	names, err := db.ListCollections(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestOpenExistingDatabase(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	db, err := Open(ctx, store, "test.db")
	require.NoError(t, err)

	users, err := db.Collection(ctx, "users")
	require.NoError(t, err)

	doc, err := users.InsertOne(ctx, object.Document{"name": "Bob"})
	require.NoError(t, err)

	reopened, err := Open(ctx, store, "test.db")
	require.NoError(t, err)

	users, err = reopened.Collection(ctx, "users")
	require.NoError(t, err)

	actual, err := users.FindByID(ctx, doc["_id"])
	require.NoError(t, err)
	assert.Equal(t, doc, actual)
}

func TestOpenCorruptDatabase(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	err := store.Put(ctx, "test.db", []byte("garbage"))
	require.NoError(t, err)

	_, err = Open(ctx, store, "test.db")
	assert.ErrorIs(t, err, ErrIOFailure)
}

func TestCollectionReservedName(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	for _, name := range []string{"_fx", "_FX", "_Fx"} {
		_, err := db.Collection(ctx, name)
		assert.ErrorIs(t, err, ErrInvalidName)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
}

func TestCollectionNameIsLowercase(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	upper, err := db.Collection(ctx, "Users")
	require.NoError(t, err)
	assert.Equal(t, "users", upper.Name())

	_, err = upper.InsertOne(ctx, object.Document{"name": "Bob"})
	require.NoError(t, err)

	lower, err := db.Collection(ctx, "users")
	require.NoError(t, err)

	count, err := lower.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestListCollections(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	snapshot := object.NewSnapshot()
	snapshot.SetCollection("users", nil)
	snapshot.SetCollection(ReservedName, []object.Document{{"_id": "meta"}})
	snapshot.SetCollection("books", nil)
	err := db.handler.Write(ctx, snapshot)
	require.NoError(t, err)

	names, err := db.ListCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "books"}, names)
}

func TestCancelledContext(t *testing.T) {
	db := openTestDB(t)
	users, err := db.Collection(context.Background(), "users")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = users.InsertOne(ctx, object.Document{"name": "Bob"})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = db.ListCollections(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDump(t *testing.T) {
	ctx := context.Background()
	users := openTestCollection(t, "users")

	_, err := users.InsertMany(ctx, []object.Document{{"_id": "a"}, {"_id": "b"}})
	require.NoError(t, err)

	docs, err := users.db.Dump(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"users": {"a", "b"}}, docs)
}
