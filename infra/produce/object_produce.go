package produce

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ObjectExchange = "drs.object.exchange"

	// ObjectMirrorQueue receives object.finished events; the mirror worker
	// copies the payload into the S3 mirror and back-fills access_methods.
	ObjectMirrorQueue        = "drs.object.mirror"
	ObjectFinishedRoutingKey = "object.finished"

	// ObjectCleanupQueue receives object.deleted events so the mirror copy
	// is removed after the record and payload directory are gone.
	ObjectCleanupQueue      = "drs.object.cleanup"
	ObjectDeletedRoutingKey = "object.deleted"
)

// ObjectFinishedMessage is published when an ingestion reaches status=finished.
type ObjectFinishedMessage struct {
	ObjectID   string `json:"object_id"`
	PayloadDir string `json:"payload_dir"`
	Name       string `json:"name"`
	MimeType   string `json:"mime_type"`
	Timestamp  int64  `json:"timestamp"`
}

// ObjectDeletedMessage is published after a deletion report is produced.
type ObjectDeletedMessage struct {
	ObjectID  string `json:"object_id"`
	Timestamp int64  `json:"timestamp"`
}

// ObjectProduceService publishes object lifecycle events.
type ObjectProduceService struct {
	channel *amqp.Channel
}

func InitObjectProduceService(channel *amqp.Channel) *ObjectProduceService {
	service := &ObjectProduceService{
		channel: channel,
	}

	err := channel.ExchangeDeclare(
		ObjectExchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		panic("Failed to declare Object exchange: " + err.Error())
	}

	_, err = channel.QueueDeclare(
		ObjectMirrorQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		panic("Failed to declare Object Mirror queue: " + err.Error())
	}

	err = channel.QueueBind(
		ObjectMirrorQueue,
		ObjectFinishedRoutingKey,
		ObjectExchange,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to bind Object Mirror queue: " + err.Error())
	}

	_, err = channel.QueueDeclare(
		ObjectCleanupQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to declare Object Cleanup queue: " + err.Error())
	}

	err = channel.QueueBind(
		ObjectCleanupQueue,
		ObjectDeletedRoutingKey,
		ObjectExchange,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to bind Object Cleanup queue: " + err.Error())
	}

	return service
}

func (s *ObjectProduceService) PublishObjectFinished(ctx context.Context, msg ObjectFinishedMessage) error {
	msg.Timestamp = time.Now().Unix()

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return s.channel.PublishWithContext(
		ctx,
		ObjectExchange,
		ObjectFinishedRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
}

func (s *ObjectProduceService) PublishObjectDeleted(ctx context.Context, msg ObjectDeletedMessage) error {
	msg.Timestamp = time.Now().Unix()

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return s.channel.PublishWithContext(
		ctx,
		ObjectExchange,
		ObjectDeletedRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
}
