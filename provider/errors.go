package provider

import (
	"errors"
	"fmt"
)

// Error taxonomy for the ingestion core. Controllers map these onto HTTP
// status codes; everything else wraps one of them with %w.
var (
	// ErrNotFound - lookup missed (no record, no payload directory).
	ErrNotFound = errors.New("object not found")

	// ErrConflict - identifier collision or a consistency-count anomaly.
	ErrConflict = errors.New("object identifier conflict")

	// ErrUnsupportedMediaType - payload MIME type outside the accepted set.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrInvalidContents - archive members failed data-type validation.
	ErrInvalidContents = errors.New("invalid archive contents")

	// ErrStorage - filesystem failure while writing or removing a payload.
	ErrStorage = errors.New("payload storage error")

	// ErrArchiveRead - container matched the archive MIME sniff but could
	// not be opened.
	ErrArchiveRead = errors.New("archive read error")

	// ErrBackingStore - record store unavailable or returned an unexpected
	// acknowledgment.
	ErrBackingStore = errors.New("backing store error")
)

func storageErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrStorage, fmt.Sprintf(format, args...))
}

func backingStoreErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrBackingStore, fmt.Sprintf(format, args...))
}
