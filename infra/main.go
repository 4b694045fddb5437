package infra

import (
	"log"

	"github.com/tnqbao/gau-drs-provider/config"
	"github.com/tnqbao/gau-drs-provider/infra/produce"
)

type Infra struct {
	Postgres  *PostgresClient
	Redis     *RedisClient
	Logger    *LoggerClient
	RabbitMQ  *RabbitMQClient
	Minio     *MinioClient
	Produce   *produce.Produce
	Telemetry *Telemetry
}

var infraInstance *Infra

func InitInfra(cfg *config.Config) *Infra {
	if infraInstance != nil {
		return infraInstance
	}

	logger := InitLoggerClient(cfg.EnvConfig)
	if logger == nil {
		panic("Failed to initialize Logger service")
	}

	telemetry := InitTelemetry(cfg.EnvConfig)

	postgres := InitPostgresClient(cfg.EnvConfig)
	if postgres == nil {
		panic("Failed to initialize Postgres service")
	}

	redis := InitRedisClient(cfg.EnvConfig)
	if redis == nil {
		panic("Failed to initialize Redis service")
	}

	rabbitMQ := InitRabbitMQClient(cfg.EnvConfig)
	if rabbitMQ == nil {
		panic("Failed to initialize RabbitMQ service")
	}

	produceService := produce.InitProduce(rabbitMQ.Channel)
	if produceService == nil {
		panic("Failed to initialize Produce service")
	}

	// The S3 mirror is optional - submissions work without it, records just
	// never gain an s3 access method.
	minio, err := InitMinioClient(cfg.EnvConfig)
	if err != nil {
		log.Printf("Warning: Failed to initialize MinIO mirror: %v (records will have no s3 access method)", err)
		minio = nil
	}

	infraInstance = &Infra{
		Postgres:  postgres,
		Redis:     redis,
		Logger:    logger,
		RabbitMQ:  rabbitMQ,
		Minio:     minio,
		Produce:   produceService,
		Telemetry: telemetry,
	}

	return infraInstance
}

func GetClient() *Infra {
	if infraInstance == nil {
		panic("Infra not initialized. Call InitInfra() first.")
	}
	return infraInstance
}
