// Package storage holds the backends that keep uploaded submission files.
package storage

import "errors"

// ErrObjectNotFound is returned by Open when no object has the requested name.
var ErrObjectNotFound = errors.New("stored file not found")

// ObjectInfo describes a stored object. ContentType may be empty when the
// backend does not record it.
type ObjectInfo struct {
	Name        string
	Size        int64
	ContentType string
}
