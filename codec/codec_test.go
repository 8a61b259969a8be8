package codec

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/nasdf/filex/object"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testID = object.NewID()

var testInput = []object.Document{
	{"_id": testID},
	{"_id": "custom", "name": "Bob"},
	{"_id": int64(7), "empty": ""},
	{"_id": object.NewID(), "count": int64(math.MaxInt64), "min": int64(math.MinInt64)},
	{"_id": object.NewID(), "pi": float64(3.14), "ok": true, "no": false, "none": nil},
	{"_id": object.NewID(), "raw": []byte{0, 1, 2, 3}},
	{"_id": object.NewID(), "list": []any{}, "mixed": []any{int64(5), "hello", nil}},
	{"_id": object.NewID(), "nested": object.Document{"inner": object.Document{"deep": "value"}}},
	{"_id": object.NewID(), "at": time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)},
}

func TestEncodeDecode(t *testing.T) {
	var buffer bytes.Buffer
	enc := NewEncoder(&buffer)
	dec := NewDecoder(&buffer)

	for _, doc := range testInput {
		buffer.Reset()

		expect := object.NewSnapshot()
		expect.SetCollection("users", []object.Document{doc})

		err := enc.Encode(expect)
		require.NoError(t, err)

		err = enc.Flush()
		require.NoError(t, err)

		actual, err := dec.Decode()
		require.NoError(t, err)

		assert.Equal(t, expect, actual)
	}
}

func TestMarshalPreservesCollectionOrder(t *testing.T) {
	expect := object.NewSnapshot()
	expect.SetCollection("zebras", nil)
	expect.SetCollection("apples", []object.Document{{"_id": testID}})
	expect.SetCollection("mangos", nil)

	data, err := Marshal(expect)
	require.NoError(t, err)

	actual, err := Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"zebras", "apples", "mangos"}, actual.Names())
	assert.Equal(t, expect, actual)
}

func TestMarshalEmptySnapshot(t *testing.T) {
	data, err := Marshal(object.NewSnapshot())
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 0, 0, 0, 0}, data)

	actual, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Empty(t, actual.Names())
}

func TestUnmarshalCorrupt(t *testing.T) {
	_, err := Unmarshal([]byte("not bson"))
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = Unmarshal(nil)
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = NewDecoder(bytes.NewReader(nil)).Decode()
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestJSONRoundTrip(t *testing.T) {
	docs := []object.Document{
		{"_id": testID, "name": "Alice", "age": int64(30)},
		{"_id": "custom", "score": float64(1.5), "tags": []any{"a", "b"}},
	}

	var buffer bytes.Buffer
	err := EncodeJSON(&buffer, "users", docs)
	require.NoError(t, err)
	assert.Contains(t, buffer.String(), testID.Hex())
	assert.Contains(t, buffer.String(), "\n  \"users\": [")

	actual, err := DecodeJSON(&buffer, "users")
	require.NoError(t, err)
	assert.Equal(t, docs, actual)
}

func TestDecodeJSONMissingCollection(t *testing.T) {
	var buffer bytes.Buffer
	err := EncodeJSON(&buffer, "users", nil)
	require.NoError(t, err)

	_, err = DecodeJSON(&buffer, "people")
	assert.ErrorIs(t, err, ErrCorrupt)
}
