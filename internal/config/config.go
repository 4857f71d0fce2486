package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	MinIO    MinIOConfig
	Media    MediaConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
}

type ServerConfig struct {
	Port            int           `envconfig:"API_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"0"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"10s"`
	MaxUploadBytes  int64         `envconfig:"API_MAX_UPLOAD_BYTES" default:"2147483648"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"mediavault"`
	Password string `envconfig:"POSTGRES_PASSWORD" default:"mediavault"`
	DBName   string `envconfig:"POSTGRES_DB" default:"mediavault"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// DeliveryMode selects how stored objects reach clients.
type DeliveryMode string

const (
	// DeliveryDirect proxies object bytes through the API server.
	DeliveryDirect DeliveryMode = "direct"
	// DeliveryPresigned redirects clients to time-limited signed URLs
	// and lets the object store handle range requests.
	DeliveryPresigned DeliveryMode = "presigned"
)

type MinIOConfig struct {
	Endpoint           string        `envconfig:"MINIO_ENDPOINT" default:"localhost:9000"`
	PublicEndpoint     string        `envconfig:"MINIO_PUBLIC_ENDPOINT" default:""`
	AccessKey          string        `envconfig:"MINIO_ACCESS_KEY" default:"minioadmin"`
	SecretKey          string        `envconfig:"MINIO_SECRET_KEY" default:"minioadmin"`
	Bucket             string        `envconfig:"MINIO_BUCKET" default:"mediavault"`
	UseSSL             bool          `envconfig:"MINIO_USE_SSL" default:"false"`
	Delivery           string        `envconfig:"MINIO_DELIVERY_MODE" default:"direct"`
	PresignExpiry      time.Duration `envconfig:"MINIO_PRESIGN_EXPIRY" default:"15m"`
	MultipartThreshold int64         `envconfig:"MINIO_MULTIPART_THRESHOLD" default:"104857600"`
	PartSize           int64         `envconfig:"MINIO_PART_SIZE" default:"104857600"`
	PartConcurrency    uint          `envconfig:"MINIO_PART_CONCURRENCY" default:"4"`
}

// DeliveryMode returns the configured delivery mode, falling back to direct
// proxying for unrecognized values.
func (c MinIOConfig) DeliveryMode() DeliveryMode {
	if DeliveryMode(c.Delivery) == DeliveryPresigned {
		return DeliveryPresigned
	}
	return DeliveryDirect
}

type MediaConfig struct {
	FFmpegPath       string        `envconfig:"MEDIA_FFMPEG_PATH" default:"ffmpeg"`
	FFprobePath      string        `envconfig:"MEDIA_FFPROBE_PATH" default:"ffprobe"`
	TempDir          string        `envconfig:"MEDIA_TEMP_DIR" default:"/tmp/mediavault"`
	ThumbnailCount   int           `envconfig:"MEDIA_THUMBNAIL_COUNT" default:"10"`
	ThumbnailWidth   int           `envconfig:"MEDIA_THUMBNAIL_WIDTH" default:"320"`
	ThumbnailHeight  int           `envconfig:"MEDIA_THUMBNAIL_HEIGHT" default:"180"`
	ProbeTimeout     time.Duration `envconfig:"MEDIA_PROBE_TIMEOUT" default:"30s"`
	ThumbnailTimeout time.Duration `envconfig:"MEDIA_THUMBNAIL_TIMEOUT" default:"60s"`
}

type RedisConfig struct {
	Host     string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int           `envconfig:"REDIS_PORT" default:"6379"`
	Password string        `envconfig:"REDIS_PASSWORD" default:""`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL time.Duration `envconfig:"REDIS_CACHE_TTL" default:"5m"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type RabbitMQConfig struct {
	Host     string `envconfig:"RABBITMQ_HOST" default:"localhost"`
	Port     int    `envconfig:"RABBITMQ_PORT" default:"5672"`
	User     string `envconfig:"RABBITMQ_USER" default:"mediavault"`
	Password string `envconfig:"RABBITMQ_PASSWORD" default:"mediavault"`
	VHost    string `envconfig:"RABBITMQ_VHOST" default:"/"`
}

func (c RabbitMQConfig) URL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%d%s",
		c.User, c.Password, c.Host, c.Port, c.VHost,
	)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
