package core

import (
	"context"
	"testing"
	"time"

	"github.com/nasdf/filex/object"
	"github.com/nasdf/filex/storage"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	db, err := Open(ctx, store, "test.db")
	require.NoError(t, err)

	users, err := db.Collection(ctx, "users")
	require.NoError(t, err)

	doc, err := users.InsertOne(ctx, object.Document{"name": "Bob", "age": 42})
	require.NoError(t, err)

	err = users.Export(ctx, "")
	require.NoError(t, err)

	data, err := store.Get(ctx, "users.json")
	require.NoError(t, err)

	var actual map[string][]map[string]any
	err = json.Unmarshal(data, &actual)
	require.NoError(t, err)

	expect := map[string][]map[string]any{
		"users": {{"_id": object.IDString(doc["_id"]), "name": "Bob", "age": float64(42)}},
	}
	assert.Equal(t, expect, actual)
}

func TestExportDir(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	db, err := Open(ctx, store, "test.db", WithExportDir("exports"))
	require.NoError(t, err)

	users, err := db.Collection(ctx, "users")
	require.NoError(t, err)

	err = users.Export(ctx, "backup.json")
	require.NoError(t, err)

	ok, err := store.Has(ctx, "exports/backup.json")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	db, err := Open(ctx, store, "test.db")
	require.NoError(t, err)

	users, err := db.Collection(ctx, "users")
	require.NoError(t, err)

	ids, err := users.InsertMany(ctx, []object.Document{{"name": "a"}, {"_id": "custom", "name": "b"}})
	require.NoError(t, err)

	err = users.Export(ctx, "users.json")
	require.NoError(t, err)

	_, err = users.Import(ctx, "users.json")
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = users.DeleteMany(ctx, nil)
	require.NoError(t, err)

	imported, err := users.Import(ctx, "users.json")
	require.NoError(t, err)
	assert.Equal(t, ids, imported)

	doc, err := users.FindByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, object.Document{"_id": ids[0], "name": "a"}, doc)
}

func TestImportMissingFile(t *testing.T) {
	ctx := context.Background()
	users := openTestCollection(t, "users")

	_, err := users.Import(ctx, "missing.json")
	assert.ErrorIs(t, err, ErrIOFailure)
}

func TestImportTimesAndBinaryAsStrings(t *testing.T) {
	ctx := context.Background()
	users := openTestCollection(t, "users")

	at := time.Date(2024, 1, 2, 3, 4, 5, 123000000, time.UTC)
	_, err := users.InsertOne(ctx, object.Document{"_id": "a", "at": at, "raw": []byte{1, 2, 3}})
	require.NoError(t, err)

	err = users.Export(ctx, "")
	require.NoError(t, err)

	_, err = users.DeleteMany(ctx, nil)
	require.NoError(t, err)

	_, err = users.Import(ctx, "")
	require.NoError(t, err)

	doc, err := users.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02T03:04:05.123Z", doc["at"])
	assert.Equal(t, "AQID", doc["raw"])
}
