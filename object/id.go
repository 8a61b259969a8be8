package object

import (
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDField is the name of the document identity field.
const IDField = "_id"

// ID is the unique identifier of a document.
type ID = primitive.ObjectID

// NewID returns a new unique ID.
func NewID() ID {
	return primitive.NewObjectID()
}

// ParseID returns the ID with the given hex representation.
func ParseID(s string) (ID, error) {
	return primitive.ObjectIDFromHex(s)
}

// IDString returns the canonical string form of an identifier value.
//
// Two identifiers are equal iff their string forms are equal, so the
// ObjectID 64d0c0ffee0000000000beef and the string "64d0c0ffee0000000000beef"
// identify the same document.
func IDString(value any) string {
	v, err := Normalize(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	switch t := v.(type) {
	case nil:
		return ""
	case ID:
		return t.Hex()
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// SameID returns true if both identifier values have the same string form.
//
// A nil identifier is never the same as any other, including another nil.
func SameID(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	return IDString(a) == IDString(b)
}
