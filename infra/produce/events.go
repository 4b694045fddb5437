package produce

import (
	"context"

	"github.com/tnqbao/gau-drs-provider/entity"
)

// ObjectEvents adapts the produce service to the notification hook the
// ingestion core calls. Kept separate so the core stays unaware of AMQP
// message shapes.
type ObjectEvents struct {
	service *ObjectProduceService
}

func NewObjectEvents(service *ObjectProduceService) *ObjectEvents {
	return &ObjectEvents{service: service}
}

func (e *ObjectEvents) ObjectFinished(ctx context.Context, record *entity.ObjectRecord, payloadDir string) error {
	mime := ""
	if record.MimeType != nil {
		mime = *record.MimeType
	}
	return e.service.PublishObjectFinished(ctx, ObjectFinishedMessage{
		ObjectID:   record.ObjectID,
		PayloadDir: payloadDir,
		Name:       record.Name,
		MimeType:   mime,
	})
}

func (e *ObjectEvents) ObjectDeleted(ctx context.Context, objectID string) error {
	return e.service.PublishObjectDeleted(ctx, ObjectDeletedMessage{
		ObjectID: objectID,
	})
}
