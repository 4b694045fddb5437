package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/tnqbao/gau-drs-provider/entity"
	"github.com/tnqbao/gau-drs-provider/infra"
)

func testLogger() *infra.LoggerClient {
	return &infra.LoggerClient{
		Logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
}

// fakeRecordStore is an in-memory RecordStore that records every update so
// tests can assert on the exact field transitions the pipeline performs.
type fakeRecordStore struct {
	mu      sync.Mutex
	records map[string]*entity.ObjectRecord
	updates []appliedUpdate

	insertErr error
	updateErr error
	findErr   error
	countErr  error
	deleteErr error

	countOverride *int64
	deleteResult  *DeleteResult

	countCalls int
}

type appliedUpdate struct {
	objectID string
	update   RecordUpdate
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{records: map[string]*entity.ObjectRecord{}}
}

func (f *fakeRecordStore) Insert(ctx context.Context, record *entity.ObjectRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	if _, ok := f.records[record.ObjectID]; ok {
		return errors.New("duplicate key")
	}
	clone := *record
	f.records[record.ObjectID] = &clone
	return nil
}

func (f *fakeRecordStore) UpdateFields(ctx context.Context, objectID string, update RecordUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, appliedUpdate{objectID: objectID, update: update})
	record, ok := f.records[objectID]
	if !ok {
		return nil
	}
	if update.Size != nil {
		record.Size = update.Size
	}
	if update.UpdatedTime != nil {
		record.UpdatedTime = update.UpdatedTime
	}
	if update.MimeType != nil {
		record.MimeType = update.MimeType
	}
	if update.Contents != nil {
		record.Contents = *update.Contents
	}
	if update.AccessMethods != nil {
		record.AccessMethods = *update.AccessMethods
	}
	if update.Status != nil {
		record.Status = *update.Status
	}
	if update.Stderr != nil {
		record.Stderr = update.Stderr
	}
	return nil
}

func (f *fakeRecordStore) FindOne(ctx context.Context, objectID string) (*entity.ObjectRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	record, ok := f.records[objectID]
	if !ok {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

func (f *fakeRecordStore) FindIDsBySubmitter(ctx context.Context, submitterID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	var ids []string
	for id, record := range f.records {
		if record.SubmitterID == submitterID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeRecordStore) ListIDs(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	var ids []string
	for id := range f.records {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeRecordStore) Count(ctx context.Context, objectID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countCalls++
	if f.countErr != nil {
		return 0, f.countErr
	}
	if f.countOverride != nil {
		return *f.countOverride, nil
	}
	if _, ok := f.records[objectID]; ok {
		return 1, nil
	}
	return 0, nil
}

func (f *fakeRecordStore) DeleteOne(ctx context.Context, objectID string) (DeleteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return DeleteResult{}, f.deleteErr
	}
	if f.deleteResult != nil {
		return *f.deleteResult, nil
	}
	if _, ok := f.records[objectID]; ok {
		delete(f.records, objectID)
		return DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
	}
	return DeleteResult{Acknowledged: true, DeletedCount: 0}, nil
}

func (f *fakeRecordStore) lastUpdate() *appliedUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.updates) == 0 {
		return nil
	}
	return &f.updates[len(f.updates)-1]
}

// fakeViewCache stores JSON-encoded values like the Redis client does.
type fakeViewCache struct {
	mu      sync.Mutex
	values  map[string][]byte
	sets    int
	deletes []string
	getErr  error
	setErr  error
}

func newFakeViewCache() *fakeViewCache {
	return &fakeViewCache{values: map[string][]byte{}}
}

func (f *fakeViewCache) Get(ctx context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return f.getErr
	}
	raw, ok := f.values[key]
	if !ok {
		return errors.New("cache miss")
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeViewCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.values[key] = raw
	f.sets++
	return nil
}

func (f *fakeViewCache) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.values, key)
		f.deletes = append(f.deletes, key)
	}
	return nil
}

// fakeEventPublisher records what the pipeline announced.
type fakeEventPublisher struct {
	mu       sync.Mutex
	finished []string
	deleted  []string
	err      error
}

func (f *fakeEventPublisher) ObjectFinished(ctx context.Context, record *entity.ObjectRecord, payloadDir string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.finished = append(f.finished, record.ObjectID)
	return nil
}

func (f *fakeEventPublisher) ObjectDeleted(ctx context.Context, objectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, objectID)
	return nil
}

func testSelfURI(objectID string) string {
	return "drs:///localhost:8080/drsnet/provider:8080/" + objectID
}
