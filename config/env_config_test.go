package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnvConfigDefaults(t *testing.T) {
	cfg := LoadEnvConfig()

	assert.Equal(t, "localhost", cfg.DRS.HostName)
	assert.Equal(t, "8080", cfg.DRS.HostPort)
	assert.Equal(t, cfg.DRS.HostPort, cfg.DRS.ContainerPort)
	assert.Equal(t, "/app/data", cfg.DRS.StorageRoot)
	assert.Equal(t, "upload", cfg.DRS.ObjectIDPrefix)
	assert.Equal(t, "drs-mirror", cfg.Minio.MirrorBucket)
}

func TestLoadEnvConfigOverrides(t *testing.T) {
	t.Setenv("HOST_NAME", "drs.example.org")
	t.Setenv("API_PORT", "9000")
	t.Setenv("CONTAINER_PORT", "8081")
	t.Setenv("STORAGE_ROOT", "/srv/drs")
	t.Setenv("OBJECT_ID_PREFIX", "dataset")

	cfg := LoadEnvConfig()

	assert.Equal(t, "drs.example.org", cfg.DRS.HostName)
	assert.Equal(t, "9000", cfg.DRS.HostPort)
	assert.Equal(t, "8081", cfg.DRS.ContainerPort)
	assert.Equal(t, "/srv/drs", cfg.DRS.StorageRoot)
	assert.Equal(t, "dataset", cfg.DRS.ObjectIDPrefix)
}
