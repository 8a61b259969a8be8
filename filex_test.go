package filex

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nasdf/filex/core"
	"github.com/nasdf/filex/object"
	"github.com/nasdf/filex/request"
	"github.com/nasdf/filex/test"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilex(t *testing.T) {
	paths, err := test.TestCasePaths()
	require.NoError(t, err, "failed to walk test cases dir")

	for _, path := range paths {
		testCase, err := test.LoadTestCase(path)
		require.NoError(t, err, "failed to load test case %s", path)

		t.Run(path, func(st *testing.T) {
			st.Parallel()

			ctx := context.Background()
			db, err := Open(ctx, filepath.Join(st.TempDir(), "test.db"))
			require.NoError(st, err, "failed to open db")

			for _, op := range testCase.Operations {
				res, err := request.Execute(ctx, db, op.Request)
				if op.Error != "" {
					require.ErrorContains(st, err, op.Error)
					continue
				}
				require.NoError(st, err)
				if op.Result == "" {
					continue
				}
				actual, err := json.Marshal(res)
				require.NoError(st, err)
				assert.JSONEq(st, op.Result, string(actual))
			}
		})
	}
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "app.db")

	db, err := Open(ctx, path, core.WithExportDir(t.TempDir()))
	require.NoError(t, err)

	users, err := db.Collection(ctx, "Users")
	require.NoError(t, err)

	inserted, err := users.InsertOne(ctx, object.Document{"name": "Ann", "tags": []string{"a", "b"}})
	require.NoError(t, err)
	id, ok := inserted.ID()
	require.True(t, ok)
	require.NoError(t, db.Close())

	db, err = Open(ctx, path)
	require.NoError(t, err)

	names, err := db.ListCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"users"}, names)

	users, err = db.Collection(ctx, "users")
	require.NoError(t, err)

	found, err := users.FindByID(ctx, object.IDString(id))
	require.NoError(t, err)
	assert.Equal(t, inserted, found)
}
