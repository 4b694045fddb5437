package provider

import (
	"fmt"

	"github.com/tnqbao/gau-drs-provider/config"
	"github.com/tnqbao/gau-drs-provider/infra"
	"github.com/tnqbao/gau-drs-provider/infra/produce"
)

// Provider bundles the ingestion core services behind one constructor so
// the HTTP layer and the consumer wire against a single type.
type Provider struct {
	Ingest   *IngestService
	Retrieve *RetrieveService
	Delete   *DeleteService
	Payloads *PayloadStore
}

// SelfURIFromConfig derives the DRS self_uri template from the deployment
// topology: drs:///{host}:{port}/{network}/{container}:{container_port}/{id}.
func SelfURIFromConfig(cfg *config.EnvConfig) SelfURIBuilder {
	return func(objectID string) string {
		return fmt.Sprintf("drs:///%s:%s/%s/%s:%s/%s",
			cfg.DRS.HostName,
			cfg.DRS.HostPort,
			cfg.DRS.ContainerNetwork,
			cfg.DRS.ContainerName,
			cfg.DRS.ContainerPort,
			objectID,
		)
	}
}

func InitProvider(cfg *config.Config, inf *infra.Infra, store RecordStore) *Provider {
	payloads := NewPayloadStore(cfg.EnvConfig.DRS.StorageRoot)
	inspector := NewInspector()
	allocator := NewIDAllocator(store, inf.Logger)
	selfURI := SelfURIFromConfig(cfg.EnvConfig)

	var events EventPublisher
	if inf.Produce != nil {
		events = produce.NewObjectEvents(inf.Produce.ObjectService)
	}

	var cache ViewCache
	if inf.Redis != nil {
		cache = inf.Redis
	}

	return &Provider{
		Ingest: NewIngestService(
			store,
			payloads,
			inspector,
			allocator,
			selfURI,
			events,
			inf.Logger,
			cfg.EnvConfig.DRS.ObjectIDPrefix,
		),
		Retrieve: NewRetrieveService(store, payloads, cache, inf.Logger),
		Delete:   NewDeleteService(store, payloads, cache, events, inf.Logger),
		Payloads: payloads,
	}
}
