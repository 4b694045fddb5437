package provider

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/tnqbao/gau-drs-provider/infra"
)

// requestedIDPattern limits caller-requested identifiers to characters that
// are safe as a payload directory name.
var requestedIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// IDAllocator assigns object identifiers. A caller-requested identifier is
// honored only when no record claims it yet; reusing a claimed identifier
// could silently overwrite a finished record, so the allocator always falls
// back to a fresh one. Lookup failures also fall back - allocation never
// blocks a submission.
type IDAllocator struct {
	store  RecordStore
	logger *infra.LoggerClient
}

func NewIDAllocator(store RecordStore, logger *infra.LoggerClient) *IDAllocator {
	return &IDAllocator{store: store, logger: logger}
}

func (a *IDAllocator) Allocate(ctx context.Context, prefix, submitterID, requestedID string) string {
	candidate := fmt.Sprintf("%s_%s_%s", prefix, submitterID, uuid.New().String())

	if requestedID == "" {
		return candidate
	}

	if !requestedIDPattern.MatchString(requestedID) {
		a.logger.WarningWithContextf(ctx, "[Allocator] requested object_id %q is not a safe identifier, using %s", requestedID, candidate)
		return candidate
	}

	matches, err := a.store.Count(ctx, requestedID)
	if err != nil {
		a.logger.ErrorWithContextf(ctx, err, "[Allocator] lookup for requested object_id %s failed, using %s", requestedID, candidate)
		return candidate
	}
	if matches > 0 {
		a.logger.InfoWithContextf(ctx, "[Allocator] requested object_id %s already claimed (%d matches), using %s", requestedID, matches, candidate)
		return candidate
	}

	return requestedID
}
