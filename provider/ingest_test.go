package provider

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnqbao/gau-drs-provider/entity"
)

func newTestIngest(t *testing.T, store *fakeRecordStore, events EventPublisher) (*IngestService, *PayloadStore) {
	t.Helper()
	payloads := NewPayloadStore(t.TempDir())
	logger := testLogger()
	svc := NewIngestService(
		store,
		payloads,
		NewInspector(),
		NewIDAllocator(store, logger),
		testSelfURI,
		events,
		logger,
		"upload",
	)
	return svc, payloads
}

func TestSubmitPlainFile(t *testing.T) {
	store := newFakeRecordStore()
	events := &fakeEventPublisher{}
	svc, payloads := newTestIngest(t, store, events)

	body := []byte(`{"assay": "rna-seq", "samples": 12}`)
	record, err := svc.Submit(context.Background(), SubmitParams{
		SubmitterID: "lab-7",
		Filename:    "meta.json",
		Description: "expression metadata",
		Version:     "1",
		Aliases:     []string{"exp-12"},
		Checksums:   []entity.Checksum{{Checksum: "abc", Type: "md5"}},
		DataType:    "metadata",
		FileType:    "json",
	}, bytes.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, entity.StatusFinished, record.Status)
	assert.True(t, strings.HasPrefix(record.ObjectID, "upload_lab-7_"))
	assert.Equal(t, testSelfURI(record.ObjectID), record.SelfURI)
	require.NotNil(t, record.Size)
	assert.Equal(t, int64(len(body)), *record.Size)
	require.NotNil(t, record.MimeType)
	assert.Equal(t, "application/json", *record.MimeType)
	assert.Nil(t, record.Contents)
	require.NotNil(t, record.UpdatedTime)

	// Payload landed under {root}/{object_id}-data/{filename}.
	stored, err := os.ReadFile(filepath.Join(payloads.Dir(record.ObjectID), "meta.json"))
	require.NoError(t, err)
	assert.Equal(t, body, stored)

	// The stored record went through started before finished.
	persisted, err := store.FindOne(context.Background(), record.ObjectID)
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, entity.StatusFinished, persisted.Status)
	assert.Nil(t, persisted.Stderr)

	last := store.lastUpdate()
	require.NotNil(t, last)
	require.NotNil(t, last.update.Contents)
	assert.Nil(t, *last.update.Contents, "non-archive payloads store null contents, not an empty list")

	assert.Equal(t, []string{record.ObjectID}, events.finished)
}

func TestSubmitArchiveExpandsContents(t *testing.T) {
	store := newFakeRecordStore()
	svc, _ := newTestIngest(t, store, nil)

	zipPath := writeZip(t, t.TempDir(), "geneBySampleMatrix.csv", "phenoDataMatrix.csv")
	zipBody, err := os.ReadFile(zipPath)
	require.NoError(t, err)

	record, err := svc.Submit(context.Background(), SubmitParams{
		SubmitterID: "lab-7",
		Filename:    "dataset.zip",
		DataType:    "class_dataset_expression",
		FileType:    "zip",
	}, bytes.NewReader(zipBody))
	require.NoError(t, err)

	assert.Equal(t, entity.StatusFinished, record.Status)
	require.NotNil(t, record.MimeType)
	assert.Equal(t, "application/zip", *record.MimeType)
	require.Len(t, record.Contents, 2)

	names := []string{record.Contents[0].Name, record.Contents[1].Name}
	assert.ElementsMatch(t, []string{"geneBySampleMatrix.csv", "phenoDataMatrix.csv"}, names)
	for _, entry := range record.Contents {
		assert.Equal(t, record.SelfURI+"/"+entry.Name, entry.DrsURI)
	}
}

func TestSubmitUnsupportedMediaType(t *testing.T) {
	store := newFakeRecordStore()
	events := &fakeEventPublisher{}
	svc, payloads := newTestIngest(t, store, events)

	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	_, err := svc.Submit(context.Background(), SubmitParams{
		SubmitterID: "lab-7",
		Filename:    "image.png",
	}, bytes.NewReader(png))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedMediaType)

	// Record moved to failed with the cause captured.
	last := store.lastUpdate()
	require.NotNil(t, last)
	require.NotNil(t, last.update.Status)
	assert.Equal(t, entity.StatusFailed, *last.update.Status)
	require.NotNil(t, last.update.Stderr)
	assert.Contains(t, *last.update.Stderr, "image/png")

	// No finished event for a failed submission.
	assert.Empty(t, events.finished)

	// The payload directory is deliberately left behind.
	_, statErr := os.Stat(payloads.Dir(last.objectID))
	assert.NoError(t, statErr)
}

func TestSubmitArchiveWithWrongMembers(t *testing.T) {
	store := newFakeRecordStore()
	svc, _ := newTestIngest(t, store, nil)

	zipPath := writeZip(t, t.TempDir(), "unexpected.csv")
	zipBody, err := os.ReadFile(zipPath)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), SubmitParams{
		SubmitterID: "lab-7",
		Filename:    "dataset.zip",
		DataType:    "class_dataset_expression",
	}, bytes.NewReader(zipBody))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidContents)

	last := store.lastUpdate()
	require.NotNil(t, last)
	require.NotNil(t, last.update.Status)
	assert.Equal(t, entity.StatusFailed, *last.update.Status)
}

func TestSubmitUnsafeFilename(t *testing.T) {
	store := newFakeRecordStore()
	svc, _ := newTestIngest(t, store, nil)

	_, err := svc.Submit(context.Background(), SubmitParams{
		SubmitterID: "lab-7",
		Filename:    "../escape.txt",
	}, strings.NewReader("body"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)
}

func TestSubmitInsertFailureReturnsRawError(t *testing.T) {
	store := newFakeRecordStore()
	store.insertErr = os.ErrPermission
	svc, _ := newTestIngest(t, store, nil)

	_, err := svc.Submit(context.Background(), SubmitParams{
		SubmitterID: "lab-7",
		Filename:    "meta.json",
	}, strings.NewReader("{}"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrPermission)

	// Nothing to mark failed when the started record never landed.
	assert.Empty(t, store.updates)
}

func TestSubmitRequestedIDCollision(t *testing.T) {
	store := newFakeRecordStore()
	svc, _ := newTestIngest(t, store, nil)

	first, err := svc.Submit(context.Background(), SubmitParams{
		SubmitterID:       "lab-7",
		RequestedObjectID: "dataset-1",
		Filename:          "a.json",
	}, strings.NewReader(`{"v": 1}`))
	require.NoError(t, err)
	assert.Equal(t, "dataset-1", first.ObjectID)

	second, err := svc.Submit(context.Background(), SubmitParams{
		SubmitterID:       "lab-7",
		RequestedObjectID: "dataset-1",
		Filename:          "b.json",
	}, strings.NewReader(`{"v": 2}`))
	require.NoError(t, err)
	assert.NotEqual(t, "dataset-1", second.ObjectID)
}
