// Package codec converts snapshots to and from their serialized forms.
//
// The backing file of a database is a single BSON document mapping collection
// names to arrays of documents. Collections can also be exported to and
// imported from indented JSON sidecar files.
package codec

import (
	"github.com/pkg/errors"
)

// ErrCorrupt is returned when serialized data does not describe a valid snapshot.
var ErrCorrupt = errors.New("corrupt snapshot")
