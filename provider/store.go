package provider

import (
	"context"
	"time"

	"github.com/tnqbao/gau-drs-provider/entity"
)

// RecordStore is the document-store contract the core consumes. The adapter
// (repository package) hides the storage engine and its version quirks; the
// core relies only on single-document insert/update/find/delete atomicity
// and never sees engine-native types.
type RecordStore interface {
	Insert(ctx context.Context, record *entity.ObjectRecord) error
	UpdateFields(ctx context.Context, objectID string, update RecordUpdate) error
	FindOne(ctx context.Context, objectID string) (*entity.ObjectRecord, error)
	FindIDsBySubmitter(ctx context.Context, submitterID string) ([]string, error)
	ListIDs(ctx context.Context) ([]string, error)
	Count(ctx context.Context, objectID string) (int64, error)
	DeleteOne(ctx context.Context, objectID string) (DeleteResult, error)
}

// RecordUpdate is a partial-fields update; nil pointers leave the column
// untouched. Contents distinguishes "leave alone" (nil) from "set to null"
// (pointer to nil slice), which finalize needs for non-archive payloads.
type RecordUpdate struct {
	Size          *int64
	UpdatedTime   *time.Time
	MimeType      *string
	Contents      *[]entity.ContentsEntry
	AccessMethods *[]entity.AccessMethod
	Status        *string
	Stderr        *string
}

// DeleteResult reports the store's acknowledgment of a single-document
// delete. DeletedCount other than 1 for a known id is a consistency alarm.
type DeleteResult struct {
	Acknowledged bool
	DeletedCount int64
}

// EventPublisher is the pipeline's fire-and-forget notification hook.
// Publish failures are logged by the caller, never surfaced to submitters.
type EventPublisher interface {
	ObjectFinished(ctx context.Context, record *entity.ObjectRecord, payloadDir string) error
	ObjectDeleted(ctx context.Context, objectID string) error
}

// ViewCache holds DRS views for the retrieval facade. Implementations must
// treat a miss as an error distinguishable only by the zero result; caching
// is best-effort and never authoritative.
type ViewCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// SelfURIBuilder derives the DRS self_uri for an object identifier from the
// deployment topology. Supplied by configuration, not ambient state.
type SelfURIBuilder func(objectID string) string
