package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/tnqbao/gau-drs-provider/infra"
)

// Deletion outcome statuses. Two independent sub-operations - record
// deletion and filesystem removal - merge into one reported status.
const (
	DeleteStatusDeleted   = "deleted"
	DeleteStatusFailed    = "failed"
	DeleteStatusException = "exception"
)

// DeletionReport is the deterministic result of a delete request; sub-
// operation failures are captured here instead of raised, so a caller
// always gets one report.
type DeletionReport struct {
	Status string `json:"status"`
	Info   string `json:"info"`
	Stderr string `json:"stderr"`
}

// DeleteService removes the metadata record and the payload directory.
// Filesystem removal is attempted even when no record exists, so orphaned
// directories left by earlier partial failures can be cleaned up manually.
type DeleteService struct {
	store    RecordStore
	payloads *PayloadStore
	cache    ViewCache
	events   EventPublisher
	logger   *infra.LoggerClient
}

func NewDeleteService(store RecordStore, payloads *PayloadStore, cache ViewCache, events EventPublisher, logger *infra.LoggerClient) *DeleteService {
	return &DeleteService{
		store:    store,
		payloads: payloads,
		cache:    cache,
		events:   events,
		logger:   logger,
	}
}

// Delete merges the two sub-operations into one status:
//   - deleted: record deletion acknowledged with exactly one record removed
//   - failed: zero or more than one record affected (consistency alarm)
//   - exception: the record deletion errored, or filesystem removal errored
//     without a clean record deletion to stand on
//
// A filesystem error after a clean record deletion is captured in Stderr
// but does not downgrade the deleted status.
func (s *DeleteService) Delete(ctx context.Context, objectID string) DeletionReport {
	s.logger.WarningWithContextf(ctx, "[Delete] deleting object_id %s", objectID)

	var info, stderr []string
	status := DeleteStatusDeleted
	recordErred := false

	result, err := s.store.DeleteOne(ctx, objectID)
	if err != nil {
		recordErred = true
		status = DeleteStatusException
		stderr = append(stderr, fmt.Sprintf("record deletion raised: %v", err))
		s.logger.ErrorWithContextf(ctx, err, "[Delete] record deletion failed for %s", objectID)
	} else {
		if !result.Acknowledged {
			status = DeleteStatusFailed
			stderr = append(stderr, "record deletion not acknowledged")
			s.logger.ErrorWithContextf(ctx, nil, "[Delete] record deletion for %s not acknowledged", objectID)
		}
		if result.DeletedCount != 1 {
			status = DeleteStatusFailed
			stderr = append(stderr, fmt.Sprintf("wrong number of records deleted (%d)", result.DeletedCount))
			s.logger.ErrorWithContextf(ctx, nil, "[Delete] wrong number of records deleted for %s: %d", objectID, result.DeletedCount)
		}
		info = append(info, fmt.Sprintf("deleted count=%d, acknowledged=%t", result.DeletedCount, result.Acknowledged))
	}

	// Filesystem half, attempted unconditionally.
	existed, fsErr := s.payloads.Remove(objectID)
	switch {
	case fsErr != nil:
		stderr = append(stderr, fmt.Sprintf("filesystem removal raised: %v", fsErr))
		s.logger.ErrorWithContextf(ctx, fsErr, "[Delete] filesystem removal failed for %s", objectID)
		if status != DeleteStatusDeleted || recordErred {
			status = DeleteStatusException
		}
	case existed:
		info = append(info, "payload directory removed")
	default:
		info = append(info, "no payload directory on disk")
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, viewCacheKey(objectID)); err != nil {
			s.logger.WarningWithContextf(ctx, "[Delete] failed to invalidate cached view for %s: %v", objectID, err)
		}
	}

	if status == DeleteStatusDeleted && s.events != nil {
		if err := s.events.ObjectDeleted(ctx, objectID); err != nil {
			s.logger.ErrorWithContextf(ctx, err, "[Delete] failed to publish deleted event for %s", objectID)
		}
	}

	return DeletionReport{
		Status: status,
		Info:   strings.Join(info, "; "),
		Stderr: strings.Join(stderr, "; "),
	}
}
