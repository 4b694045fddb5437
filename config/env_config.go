package config

import (
	"os"
	"strconv"
	"strings"
)

type EnvConfig struct {
	Postgres struct {
		Host     string
		Database string
		Username string
		Password string
		Port     string
	}
	Redis struct {
		Password  string
		Database  int
		RedisHost string
		RedisPort string
	}
	RabbitMQ struct {
		Host     string
		Port     string
		Username string
		Password string
	}
	Minio struct {
		Endpoint     string
		RootUser     string
		RootPassword string
		MirrorBucket string
		UseSSL       bool
	}
	CORS struct {
		AllowDomains string
	}
	DRS struct {
		HostName         string
		HostPort         string
		ContainerNetwork string
		ContainerName    string
		ContainerPort    string
		StorageRoot      string
		ObjectIDPrefix   string
	}
	Grafana struct {
		OTLPEndpoint string
		ServiceName  string
	}
	Environment struct {
		Mode string
	}
}

func LoadEnvConfig() *EnvConfig {
	var config EnvConfig

	// Postgres
	config.Postgres.Host = os.Getenv("PGPOOL_HOST")
	config.Postgres.Database = os.Getenv("PGPOOL_DB")
	config.Postgres.Username = os.Getenv("PGPOOL_USER")
	config.Postgres.Password = os.Getenv("PGPOOL_PASSWORD")
	config.Postgres.Port = os.Getenv("PGPOOL_PORT")
	if config.Postgres.Port == "" {
		config.Postgres.Port = "5432"
	}

	// Redis
	config.Redis.Password = os.Getenv("REDIS_PASSWORD")
	config.Redis.Database, _ = strconv.Atoi(os.Getenv("REDIS_DB"))
	config.Redis.RedisHost = os.Getenv("REDIS_HOST")
	config.Redis.RedisPort = os.Getenv("REDIS_PORT")
	if config.Redis.RedisPort == "" {
		config.Redis.RedisPort = "6379"
	}

	// RabbitMQ
	config.RabbitMQ.Host = os.Getenv("RABBITMQ_HOST")
	if config.RabbitMQ.Host == "" {
		config.RabbitMQ.Host = "localhost"
	}
	config.RabbitMQ.Port = os.Getenv("RABBITMQ_PORT")
	if config.RabbitMQ.Port == "" {
		config.RabbitMQ.Port = "5672"
	}
	config.RabbitMQ.Username = os.Getenv("RABBITMQ_USER")
	if config.RabbitMQ.Username == "" {
		config.RabbitMQ.Username = "guest"
	}
	config.RabbitMQ.Password = os.Getenv("RABBITMQ_PASSWORD")
	if config.RabbitMQ.Password == "" {
		config.RabbitMQ.Password = "guest"
	}

	// MinIO mirror (optional; submissions work without it)
	config.Minio.Endpoint = os.Getenv("MINIO_ENDPOINT")
	config.Minio.RootUser = os.Getenv("MINIO_ROOT_USER")
	config.Minio.RootPassword = os.Getenv("MINIO_ROOT_PASSWORD")
	config.Minio.MirrorBucket = os.Getenv("MINIO_MIRROR_BUCKET")
	if config.Minio.MirrorBucket == "" {
		config.Minio.MirrorBucket = "drs-mirror"
	}
	config.Minio.UseSSL = os.Getenv("MINIO_USE_SSL") == "true"

	config.CORS.AllowDomains = os.Getenv("ALLOWED_DOMAINS")

	// DRS self_uri parts mirror the container topology the service runs in
	config.DRS.HostName = os.Getenv("HOST_NAME")
	if config.DRS.HostName == "" {
		config.DRS.HostName = "localhost"
	}
	config.DRS.HostPort = os.Getenv("API_PORT")
	if config.DRS.HostPort == "" {
		config.DRS.HostPort = "8080"
	}
	config.DRS.ContainerNetwork = os.Getenv("CONTAINER_NETWORK")
	config.DRS.ContainerName = os.Getenv("CONTAINER_NAME")
	config.DRS.ContainerPort = os.Getenv("CONTAINER_PORT")
	if config.DRS.ContainerPort == "" {
		config.DRS.ContainerPort = config.DRS.HostPort
	}
	config.DRS.StorageRoot = os.Getenv("STORAGE_ROOT")
	if config.DRS.StorageRoot == "" {
		config.DRS.StorageRoot = "/app/data"
	}
	config.DRS.ObjectIDPrefix = os.Getenv("OBJECT_ID_PREFIX")
	if config.DRS.ObjectIDPrefix == "" {
		config.DRS.ObjectIDPrefix = "upload"
	}

	// Grafana/OpenTelemetry
	grafanaEndpoint := os.Getenv("GRAFANA_OTLP_ENDPOINT")
	grafanaEndpoint = strings.TrimPrefix(grafanaEndpoint, "https://")
	grafanaEndpoint = strings.TrimPrefix(grafanaEndpoint, "http://")
	config.Grafana.OTLPEndpoint = grafanaEndpoint
	config.Grafana.ServiceName = os.Getenv("OTLP_SERVICE_NAME")
	if config.Grafana.ServiceName == "" {
		config.Grafana.ServiceName = "gau-drs-provider"
	}

	config.Environment.Mode = os.Getenv("ENVIRONMENT_MODE")
	if config.Environment.Mode == "" {
		config.Environment.Mode = "development"
	}

	return &config
}
