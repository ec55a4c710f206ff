package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type DB struct {
	// URL is optional: when empty the service runs on in-memory ledgers,
	// which is useful for local development and tests.
	URL             string        `env:"DATABASE_URL"`
	MigrationsURL   string        `env:"DB_MIGRATIONS_URL" envDefault:"file://db/migrations"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"16"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"8"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"15m"`
}

type Kafka struct {
	// BootstrapServers is optional: when empty no signals are forwarded to
	// a broker and the signal ledger remains the only sink.
	BootstrapServers string `env:"KAFKA_BOOTSTRAP_SERVERS"`
	ERPTopic         string `env:"KAFKA_ERP_TOPIC" envDefault:"erp.signals.v2"`
}

type Sync struct {
	MaxParallel int `env:"SYNC_MAX_PARALLEL" envDefault:"4"`
}

type Config struct {
	Port  string `env:"PORT" envDefault:"8080"`
	DB    DB
	Kafka Kafka
	Sync  Sync
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
