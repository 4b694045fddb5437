package provider

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// PayloadStore keeps raw uploaded bytes under one directory per object
// identifier: {root}/{object_id}-data/{filename}. The directory name is
// derived deterministically from the identifier so deletion and streaming
// can locate it without consulting the record store.
type PayloadStore struct {
	root string
}

func NewPayloadStore(root string) *PayloadStore {
	return &PayloadStore{root: root}
}

// Dir returns the payload directory for an object identifier.
func (p *PayloadStore) Dir(objectID string) string {
	return filepath.Join(p.root, objectID+"-data")
}

// Write creates the object's directory and copies the upload into it.
// A pre-existing directory is a collision and fails; the pipeline never
// writes the same identifier twice.
func (p *PayloadStore) Write(objectID, filename string, r io.Reader) (string, int64, error) {
	if filepath.Base(filename) != filename || filename == "." || filename == "" {
		return "", 0, storageErrorf("unsafe filename %q", filename)
	}

	dir := p.Dir(objectID)
	if err := os.MkdirAll(p.root, 0o755); err != nil {
		return "", 0, storageErrorf("creating storage root: %v", err)
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", 0, storageErrorf("creating payload directory: %v", err)
	}

	path := filepath.Join(dir, filename)
	out, err := os.Create(path)
	if err != nil {
		return "", 0, storageErrorf("creating payload file: %v", err)
	}

	written, err := io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", 0, storageErrorf("writing payload bytes: %v", err)
	}

	return path, written, nil
}

// List returns the payload file paths for an object, ErrNotFound when the
// directory is absent or empty.
func (p *PayloadStore) List(objectID string) ([]string, error) {
	dir := p.Dir(objectID)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: no payload directory for %s", ErrNotFound, objectID)
	}
	if err != nil {
		return nil, storageErrorf("reading payload directory: %v", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: empty payload directory for %s", ErrNotFound, objectID)
	}
	return paths, nil
}

// Remove deletes the payload directory. Reports whether a directory existed
// so the deletion workflow can distinguish orphan cleanup from a no-op.
func (p *PayloadStore) Remove(objectID string) (bool, error) {
	dir := p.Dir(objectID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return false, nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return true, storageErrorf("removing payload directory: %v", err)
	}
	return true, nil
}
