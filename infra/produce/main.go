package produce

import amqp "github.com/rabbitmq/amqp091-go"

type Produce struct {
	ObjectService *ObjectProduceService
}

var produceInstance *Produce

func InitProduce(channel *amqp.Channel) *Produce {
	if produceInstance != nil {
		return produceInstance
	}

	objectService := InitObjectProduceService(channel)
	if objectService == nil {
		panic("Failed to initialize Object produce service")
	}

	produceInstance = &Produce{
		ObjectService: objectService,
	}

	return produceInstance
}

func GetProduce() *Produce {
	if produceInstance == nil {
		panic("Produce not initialized. Call InitProduce() first.")
	}
	return produceInstance
}
