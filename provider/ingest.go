package provider

import (
	"context"
	"io"
	"time"

	"github.com/tnqbao/gau-drs-provider/entity"
	"github.com/tnqbao/gau-drs-provider/infra"
)

// SubmitParams carries the caller-supplied metadata of one submission.
type SubmitParams struct {
	SubmitterID       string
	RequestedObjectID string
	Filename          string
	Description       string
	Version           string
	Aliases           []string
	Checksums         []entity.Checksum
	DataType          string
	FileType          string
}

// IngestService drives the submit state machine: allocate id, insert a
// started record, persist bytes, inspect, finalize. Each object's pipeline
// is strictly sequential and independent of every other object's; the only
// shared resource is the record store, whose single-document atomicity the
// pipeline relies on instead of locking.
type IngestService struct {
	store     RecordStore
	payloads  *PayloadStore
	inspector *Inspector
	allocator *IDAllocator
	selfURI   SelfURIBuilder
	events    EventPublisher
	logger    *infra.LoggerClient
	idPrefix  string
}

func NewIngestService(
	store RecordStore,
	payloads *PayloadStore,
	inspector *Inspector,
	allocator *IDAllocator,
	selfURI SelfURIBuilder,
	events EventPublisher,
	logger *infra.LoggerClient,
	idPrefix string,
) *IngestService {
	return &IngestService{
		store:     store,
		payloads:  payloads,
		inspector: inspector,
		allocator: allocator,
		selfURI:   selfURI,
		events:    events,
		logger:    logger,
		idPrefix:  idPrefix,
	}
}

// Submit ingests one uploaded file and returns the finalized record.
//
// Flow:
//  1. Allocate object_id
//  2. Insert record with status=started, derived fields null
//  3. Write payload bytes under {root}/{object_id}-data
//  4. MIME sniff against the accepted set
//  5. Archive payloads: enumerate contents, validate against data_type rule
//  6. Update record: size, updated_time, mime_type, contents, status=finished
//
// Any failure after step 2 marks the record failed (best-effort) and returns
// a typed error. The payload directory is intentionally not rolled back:
// there is no dual commit between record store and filesystem, and an
// orphaned directory is a recognized, reported state rather than a silent one.
func (s *IngestService) Submit(ctx context.Context, params SubmitParams, file io.Reader) (*entity.ObjectRecord, error) {
	objectID := s.allocator.Allocate(ctx, s.idPrefix, params.SubmitterID, params.RequestedObjectID)
	selfURI := s.selfURI(objectID)

	record := &entity.ObjectRecord{
		ObjectID:    objectID,
		Name:        params.Filename,
		Description: params.Description,
		SelfURI:     selfURI,
		CreatedTime: time.Now().UTC(),
		Version:     params.Version,
		Aliases:     params.Aliases,
		Checksums:   params.Checksums,
		DataType:    params.DataType,
		FileType:    params.FileType,
		SubmitterID: params.SubmitterID,
		Status:      entity.StatusStarted,
	}

	// Step 2 failing leaves nothing to mark failed; the caller gets the
	// raw store error.
	if err := s.store.Insert(ctx, record); err != nil {
		s.logger.ErrorWithContextf(ctx, err, "[Ingest] failed to insert record for %s", objectID)
		return nil, err
	}

	s.logger.InfoWithContextf(ctx, "[Ingest] %s: record created, writing payload %q", objectID, params.Filename)

	finalized, err := s.run(ctx, record, params, file)
	if err != nil {
		s.markFailed(ctx, objectID, err)
		return nil, err
	}

	s.publishFinished(ctx, finalized)
	return finalized, nil
}

// run executes steps 3-6; every returned error sends the record to failed.
func (s *IngestService) run(ctx context.Context, record *entity.ObjectRecord, params SubmitParams, file io.Reader) (*entity.ObjectRecord, error) {
	payloadPath, size, err := s.payloads.Write(record.ObjectID, params.Filename, file)
	if err != nil {
		return nil, err
	}

	mime, err := s.inspector.DetectMimeType(payloadPath)
	if err != nil {
		return nil, err
	}
	s.logger.InfoWithContextf(ctx, "[Ingest] %s: payload written (%d bytes, %s)", record.ObjectID, size, mime)

	var contents []entity.ContentsEntry
	if s.inspector.IsArchive(mime) {
		contents, err = s.inspector.Enumerate(payloadPath, record.SelfURI)
		if err != nil {
			return nil, err
		}
		if err := s.inspector.ValidateContents(params.DataType, contents); err != nil {
			return nil, err
		}
		s.logger.InfoWithContextf(ctx, "[Ingest] %s: archive with %d members", record.ObjectID, len(contents))
	}

	now := time.Now().UTC()
	status := entity.StatusFinished
	update := RecordUpdate{
		Size:        &size,
		UpdatedTime: &now,
		MimeType:    &mime,
		Contents:    &contents,
		Status:      &status,
	}
	if err := s.store.UpdateFields(ctx, record.ObjectID, update); err != nil {
		return nil, backingStoreErrorf("finalizing %s: %v", record.ObjectID, err)
	}

	record.Size = &size
	record.UpdatedTime = &now
	record.MimeType = &mime
	record.Contents = contents
	record.Status = entity.StatusFinished

	s.logger.InfoWithContextf(ctx, "[Ingest] %s: status updated to finished", record.ObjectID)
	return record, nil
}

// markFailed is the best-effort failure transition; its own error is logged
// and swallowed so the original cause reaches the caller.
func (s *IngestService) markFailed(ctx context.Context, objectID string, cause error) {
	now := time.Now().UTC()
	status := entity.StatusFailed
	stderr := cause.Error()
	update := RecordUpdate{
		UpdatedTime: &now,
		Status:      &status,
		Stderr:      &stderr,
	}
	if err := s.store.UpdateFields(ctx, objectID, update); err != nil {
		s.logger.ErrorWithContextf(ctx, err, "[Ingest] could not mark %s as failed", objectID)
		return
	}
	s.logger.WarningWithContextf(ctx, "[Ingest] %s: status updated to failed: %v", objectID, cause)
}

func (s *IngestService) publishFinished(ctx context.Context, record *entity.ObjectRecord) {
	if s.events == nil {
		return
	}
	if err := s.events.ObjectFinished(ctx, record, s.payloads.Dir(record.ObjectID)); err != nil {
		s.logger.ErrorWithContextf(ctx, err, "[Ingest] failed to publish finished event for %s", record.ObjectID)
	}
}
