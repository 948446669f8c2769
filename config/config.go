package config

import "time"

type Config struct {
	AppName    string `env:"APP_NAME" env-default:"clover"`
	Port       int    `env:"PORT" env-default:"3004" validate:"min=1,max=65535"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs bool   `env:"PRETTY_LOGS" env-default:"false"`

	// PostgreSQL (property-management mirror, read only)
	DatabaseDriver          string        `env:"DB_DRIVER" env-default:"postgres"`
	DatabaseHost            string        `env:"DB_HOST" env-default:"localhost"`
	DatabasePort            string        `env:"DB_PORT" env-default:"5432"`
	DatabaseUserName        string        `env:"DB_USER_NAME" env-default:""`
	DatabasePassword        string        `env:"DB_PASSWORD" env-default:""`
	DatabaseName            string        `env:"DB_NAME" env-default:"caphotel"`
	DatabaseSSLMode         string        `env:"DB_SQL_MODE" env-default:"disable"`
	DatabaseMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	DatabaseMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	DatabaseConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"10s"`

	// Redis (canonical guest registry)
	RedisHost     string `env:"REDIS_HOST" env-default:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" env-default:"6379" validate:"min=1,max=65535"`
	RedisPassword string `env:"REDIS_PASSWORD" env-default:""`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`

	// Kafka Producer (guest lifecycle events)
	KafkaEnabled      bool     `env:"KAFKA_ENABLED" env-default:"false"`
	KafkaBrokers      []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaOutputTopic  string   `env:"KAFKA_OUTPUT_TOPIC" env-default:"guest-events"`
	KafkaBatchSize    int      `env:"KAFKA_BATCH_SIZE" env-default:"100"`
	KafkaBatchTimeout int      `env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"100"`
	KafkaRequiredAcks int      `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`
	KafkaCompression  string   `env:"KAFKA_COMPRESSION" env-default:"snappy"`

	// Sync
	SyncEnabled        bool          `env:"SYNC_ENABLED" env-default:"true"`
	SyncInterval       time.Duration `env:"SYNC_INTERVAL" env-default:"15m"`
	SyncLockTTL        time.Duration `env:"SYNC_LOCK_TTL" env-default:"10m"`
	SyncLockingEnabled bool          `env:"SYNC_LOCKING_ENABLED" env-default:"true"`
	SyncRunOnStart     bool          `env:"SYNC_RUN_ON_START" env-default:"true"`
}
