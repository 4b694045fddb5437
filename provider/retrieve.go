package provider

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tnqbao/gau-drs-provider/entity"
	"github.com/tnqbao/gau-drs-provider/infra"
)

const viewCacheTTL = 5 * time.Minute

// RetrieveService is the read-only facade translating record state into
// DRS-shaped responses. It writes nothing; records are mutated only by the
// ingestion pipeline and the deletion workflow.
type RetrieveService struct {
	store    RecordStore
	payloads *PayloadStore
	cache    ViewCache
	logger   *infra.LoggerClient
}

func NewRetrieveService(store RecordStore, payloads *PayloadStore, cache ViewCache, logger *infra.LoggerClient) *RetrieveService {
	return &RetrieveService{
		store:    store,
		payloads: payloads,
		cache:    cache,
		logger:   logger,
	}
}

func viewCacheKey(objectID string) string {
	return "drs:object:" + objectID
}

// Get returns the DRS view of one record, ErrNotFound unless exactly one
// matches. More than one match for a primary key should never happen and is
// reported as a conflict, not silently tolerated.
func (s *RetrieveService) Get(ctx context.Context, objectID string) (*entity.DrsObject, error) {
	if s.cache != nil {
		var cached entity.DrsObject
		if err := s.cache.Get(ctx, viewCacheKey(objectID), &cached); err == nil {
			return &cached, nil
		}
	}

	matches, err := s.store.Count(ctx, objectID)
	if err != nil {
		return nil, backingStoreErrorf("counting %s: %v", objectID, err)
	}
	if matches == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, objectID)
	}
	if matches > 1 {
		s.logger.ErrorWithContextf(ctx, nil, "[Retrieve] consistency alarm: %d records share object_id %s", matches, objectID)
		return nil, fmt.Errorf("%w: %d records share object_id %s", ErrConflict, matches, objectID)
	}

	record, err := s.store.FindOne(ctx, objectID)
	if err != nil {
		return nil, backingStoreErrorf("fetching %s: %v", objectID, err)
	}
	if record == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, objectID)
	}

	view := record.DRSView()
	if s.cache != nil {
		if err := s.cache.Set(ctx, viewCacheKey(objectID), view, viewCacheTTL); err != nil {
			s.logger.WarningWithContextf(ctx, "[Retrieve] failed to cache view for %s: %v", objectID, err)
		}
	}
	return view, nil
}

// Search lists the object identifiers owned by a submitter. An empty result
// is a valid answer, not an error.
func (s *RetrieveService) Search(ctx context.Context, submitterID string) ([]string, error) {
	ids, err := s.store.FindIDsBySubmitter(ctx, submitterID)
	if err != nil {
		return nil, backingStoreErrorf("searching submitter %s: %v", submitterID, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// ListAll returns every object identifier. Admin surface for debugging
// record/payload inconsistencies.
func (s *RetrieveService) ListAll(ctx context.Context) ([]string, error) {
	ids, err := s.store.ListIDs(ctx)
	if err != nil {
		return nil, backingStoreErrorf("listing objects: %v", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// StreamResult hands the transport layer everything it needs to serve the
// payload bytes: the stream plus the record's name and MIME type.
type StreamResult struct {
	Reader   io.ReadCloser
	Filename string
	MimeType string
}

// Stream opens the stored payload file(s) for an object, concatenated in
// directory order. ErrNotFound when the payload directory is absent or
// empty, or when no record matches.
func (s *RetrieveService) Stream(ctx context.Context, objectID string) (*StreamResult, error) {
	paths, err := s.payloads.List(objectID)
	if err != nil {
		return nil, err
	}

	record, err := s.store.FindOne(ctx, objectID)
	if err != nil {
		return nil, backingStoreErrorf("fetching %s: %v", objectID, err)
	}
	if record == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, objectID)
	}

	files := make([]*os.File, 0, len(paths))
	readers := make([]io.Reader, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			for _, opened := range files {
				_ = opened.Close()
			}
			return nil, storageErrorf("opening payload file: %v", err)
		}
		files = append(files, f)
		readers = append(readers, f)
	}

	mime := "application/octet-stream"
	if record.MimeType != nil {
		mime = *record.MimeType
	}

	return &StreamResult{
		Reader:   &multiFileReader{Reader: io.MultiReader(readers...), files: files},
		Filename: record.Name,
		MimeType: mime,
	}, nil
}

type multiFileReader struct {
	io.Reader
	files []*os.File
}

func (m *multiFileReader) Close() error {
	var firstErr error
	for _, f := range m.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
