package provider

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnqbao/gau-drs-provider/entity"
)

func finishedRecord(objectID, submitterID string) *entity.ObjectRecord {
	size := int64(128)
	mime := "text/csv"
	now := time.Now().UTC().Truncate(time.Second)
	return &entity.ObjectRecord{
		ObjectID:    objectID,
		Name:        "matrix.csv",
		SelfURI:     testSelfURI(objectID),
		Size:        &size,
		CreatedTime: now,
		UpdatedTime: &now,
		MimeType:    &mime,
		SubmitterID: submitterID,
		Status:      entity.StatusFinished,
	}
}

func TestGetReturnsDRSView(t *testing.T) {
	store := newFakeRecordStore()
	store.records["obj-1"] = finishedRecord("obj-1", "lab-7")
	svc := NewRetrieveService(store, NewPayloadStore(t.TempDir()), nil, testLogger())

	view, err := svc.Get(context.Background(), "obj-1")
	require.NoError(t, err)

	assert.Equal(t, "obj-1", view.ID)
	assert.Equal(t, "matrix.csv", view.Name)
	assert.Equal(t, testSelfURI("obj-1"), view.SelfURI)
	require.NotNil(t, view.Size)
	assert.Equal(t, int64(128), *view.Size)
}

func TestGetNotFound(t *testing.T) {
	store := newFakeRecordStore()
	svc := NewRetrieveService(store, NewPayloadStore(t.TempDir()), nil, testLogger())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetDuplicateIdentifiersConflict(t *testing.T) {
	store := newFakeRecordStore()
	two := int64(2)
	store.countOverride = &two
	svc := NewRetrieveService(store, NewPayloadStore(t.TempDir()), nil, testLogger())

	_, err := svc.Get(context.Background(), "obj-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestGetPopulatesAndServesFromCache(t *testing.T) {
	store := newFakeRecordStore()
	store.records["obj-1"] = finishedRecord("obj-1", "lab-7")
	cache := newFakeViewCache()
	svc := NewRetrieveService(store, NewPayloadStore(t.TempDir()), cache, testLogger())

	first, err := svc.Get(context.Background(), "obj-1")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	storeCallsAfterMiss := store.countCalls

	// Second read is answered by the cache without touching the store.
	second, err := svc.Get(context.Background(), "obj-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, storeCallsAfterMiss, store.countCalls)
}

func TestGetCacheWriteFailureIsNotFatal(t *testing.T) {
	store := newFakeRecordStore()
	store.records["obj-1"] = finishedRecord("obj-1", "lab-7")
	cache := newFakeViewCache()
	cache.setErr = errors.New("redis down")
	svc := NewRetrieveService(store, NewPayloadStore(t.TempDir()), cache, testLogger())

	view, err := svc.Get(context.Background(), "obj-1")
	require.NoError(t, err)
	assert.Equal(t, "obj-1", view.ID)
}

func TestSearchScopesBySubmitter(t *testing.T) {
	store := newFakeRecordStore()
	store.records["a"] = finishedRecord("a", "lab-7")
	store.records["b"] = finishedRecord("b", "lab-7")
	store.records["c"] = finishedRecord("c", "lab-9")
	svc := NewRetrieveService(store, NewPayloadStore(t.TempDir()), nil, testLogger())

	ids, err := svc.Search(context.Background(), "lab-7")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	none, err := svc.Search(context.Background(), "lab-0")
	require.NoError(t, err)
	require.NotNil(t, none)
	assert.Empty(t, none)
}

func TestListAll(t *testing.T) {
	store := newFakeRecordStore()
	store.records["a"] = finishedRecord("a", "lab-7")
	store.records["b"] = finishedRecord("b", "lab-9")
	svc := NewRetrieveService(store, NewPayloadStore(t.TempDir()), nil, testLogger())

	ids, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
}

func TestStreamServesPayloadBytes(t *testing.T) {
	store := newFakeRecordStore()
	store.records["obj-1"] = finishedRecord("obj-1", "lab-7")
	payloads := NewPayloadStore(t.TempDir())
	_, written, err := payloads.Write("obj-1", "matrix.csv", strings.NewReader("gene,sample\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(len("gene,sample\n")), written)

	svc := NewRetrieveService(store, payloads, nil, testLogger())
	result, err := svc.Stream(context.Background(), "obj-1")
	require.NoError(t, err)
	defer result.Reader.Close()

	body, err := io.ReadAll(result.Reader)
	require.NoError(t, err)
	assert.Equal(t, "gene,sample\n", string(body))
	assert.Equal(t, "matrix.csv", result.Filename)
	assert.Equal(t, "text/csv", result.MimeType)
}

func TestStreamNoPayloadDirectory(t *testing.T) {
	store := newFakeRecordStore()
	store.records["obj-1"] = finishedRecord("obj-1", "lab-7")
	svc := NewRetrieveService(store, NewPayloadStore(t.TempDir()), nil, testLogger())

	_, err := svc.Stream(context.Background(), "obj-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStreamDefaultsMimeType(t *testing.T) {
	store := newFakeRecordStore()
	record := finishedRecord("obj-1", "lab-7")
	record.MimeType = nil
	store.records["obj-1"] = record

	payloads := NewPayloadStore(t.TempDir())
	_, _, err := payloads.Write("obj-1", "blob", strings.NewReader("raw"))
	require.NoError(t, err)

	svc := NewRetrieveService(store, payloads, nil, testLogger())
	result, err := svc.Stream(context.Background(), "obj-1")
	require.NoError(t, err)
	defer result.Reader.Close()

	assert.Equal(t, "application/octet-stream", result.MimeType)
}
