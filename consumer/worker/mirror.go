package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tnqbao/gau-drs-provider/entity"
	"github.com/tnqbao/gau-drs-provider/infra"
	"github.com/tnqbao/gau-drs-provider/infra/produce"
	"github.com/tnqbao/gau-drs-provider/provider"
	"github.com/tnqbao/gau-drs-provider/repository"
)

// MirrorConsumer copies finalized payloads into the S3 mirror and removes
// them again after deletion. Mirroring runs after the ingestion pipeline
// has finished; a mirror failure never affects the record's status, it
// only means the object keeps serving bytes from local disk alone.
type MirrorConsumer struct {
	channel    *amqp.Channel
	infra      *infra.Infra
	repository *repository.Repository
}

func NewMirrorConsumer(channel *amqp.Channel, infra *infra.Infra, repo *repository.Repository) *MirrorConsumer {
	return &MirrorConsumer{
		channel:    channel,
		infra:      infra,
		repository: repo,
	}
}

func (c *MirrorConsumer) Start(ctx context.Context) error {
	if err := c.startMirrorConsumer(ctx); err != nil {
		return fmt.Errorf("failed to start mirror consumer: %w", err)
	}
	if err := c.startCleanupConsumer(ctx); err != nil {
		return fmt.Errorf("failed to start cleanup consumer: %w", err)
	}
	return nil
}

func (c *MirrorConsumer) startMirrorConsumer(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		produce.ObjectMirrorQueue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register mirror consumer: %w", err)
	}

	c.infra.Logger.InfoWithContextf(ctx, "[Mirror Consumer] Started listening for finished objects on queue: %s", produce.ObjectMirrorQueue)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.infra.Logger.InfoWithContextf(ctx, "[Mirror Consumer] Shutting down...")
				return
			case msg, ok := <-msgs:
				if !ok {
					c.infra.Logger.WarningWithContextf(ctx, "[Mirror Consumer] Channel closed")
					return
				}
				c.handleMirror(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *MirrorConsumer) handleMirror(ctx context.Context, msg amqp.Delivery) {
	var payload produce.ObjectFinishedMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Mirror Consumer] Failed to unmarshal message: %v", err)
		_ = msg.Nack(false, false)
		return
	}

	if c.infra.Minio == nil {
		c.infra.Logger.WarningWithContextf(ctx, "[Mirror Consumer] No mirror configured, skipping object %s", payload.ObjectID)
		_ = msg.Ack(false)
		return
	}

	maxRetries := 3
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		lastErr = c.mirrorObject(ctx, payload)
		if lastErr == nil {
			c.infra.Logger.InfoWithContextf(ctx, "[Mirror Consumer] Mirrored object %s", payload.ObjectID)
			_ = msg.Ack(false)
			return
		}

		c.infra.Logger.ErrorWithContextf(ctx, lastErr, "[Mirror Consumer] Attempt %d/%d failed for %s: %v", attempt, maxRetries, payload.ObjectID, lastErr)

		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * 2 * time.Second)
		}
	}

	c.infra.Logger.ErrorWithContextf(ctx, lastErr, "[Mirror Consumer] Failed after %d attempts, requeueing %s", maxRetries, payload.ObjectID)
	_ = msg.Nack(false, true)
}

func (c *MirrorConsumer) mirrorObject(ctx context.Context, payload produce.ObjectFinishedMessage) error {
	if err := c.infra.Minio.EnsureMirrorBucket(ctx); err != nil {
		return err
	}

	entries, err := os.ReadDir(payload.PayloadDir)
	if err != nil {
		return fmt.Errorf("reading payload directory: %w", err)
	}

	var methods []entity.AccessMethod
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(payload.PayloadDir, entry.Name())
		url, err := c.infra.Minio.MirrorFile(ctx, payload.ObjectID, path, entry.Name(), payload.MimeType)
		if err != nil {
			return err
		}
		methods = append(methods, entity.AccessMethod{
			Type:      "s3",
			AccessURL: entity.AccessURL{URL: url},
			AccessID:  "s3",
		})
	}

	if len(methods) == 0 {
		return fmt.Errorf("no payload files to mirror for %s", payload.ObjectID)
	}

	return c.repository.ObjectRepo.UpdateFields(ctx, payload.ObjectID, provider.RecordUpdate{
		AccessMethods: &methods,
	})
}

func (c *MirrorConsumer) startCleanupConsumer(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		produce.ObjectCleanupQueue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register cleanup consumer: %w", err)
	}

	c.infra.Logger.InfoWithContextf(ctx, "[Mirror Consumer] Started listening for deleted objects on queue: %s", produce.ObjectCleanupQueue)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.infra.Logger.InfoWithContextf(ctx, "[Mirror Consumer - Cleanup] Shutting down...")
				return
			case msg, ok := <-msgs:
				if !ok {
					c.infra.Logger.WarningWithContextf(ctx, "[Mirror Consumer - Cleanup] Channel closed")
					return
				}
				c.handleCleanup(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *MirrorConsumer) handleCleanup(ctx context.Context, msg amqp.Delivery) {
	var payload produce.ObjectDeletedMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Mirror Consumer - Cleanup] Failed to unmarshal message: %v", err)
		_ = msg.Nack(false, false)
		return
	}

	if c.infra.Minio == nil {
		_ = msg.Ack(false)
		return
	}

	maxRetries := 3
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		lastErr = c.infra.Minio.RemoveMirrored(ctx, payload.ObjectID)
		if lastErr == nil {
			c.infra.Logger.InfoWithContextf(ctx, "[Mirror Consumer - Cleanup] Removed mirrored copies of %s", payload.ObjectID)
			_ = msg.Ack(false)
			return
		}

		c.infra.Logger.ErrorWithContextf(ctx, lastErr, "[Mirror Consumer - Cleanup] Attempt %d/%d failed for %s: %v", attempt, maxRetries, payload.ObjectID, lastErr)

		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * 2 * time.Second)
		}
	}

	c.infra.Logger.ErrorWithContextf(ctx, lastErr, "[Mirror Consumer - Cleanup] Failed after %d attempts, requeueing %s", maxRetries, payload.ObjectID)
	_ = msg.Nack(false, true)
}
