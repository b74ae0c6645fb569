// Command worker publica en Kafka los eventos pendientes del outbox de documentos.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/jhoicas/Importaciones-api/internal/infrastructure/messaging"
	"github.com/jhoicas/Importaciones-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Importaciones-api/pkg/config"
	"github.com/jhoicas/Importaciones-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})

	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal().Msg("KAFKA_BROKERS es requerido para el worker de outbox")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	writer, err := messaging.NewWriter(cfg.Kafka.Brokers)
	if err != nil {
		log.Fatal().Err(err).Msg("crear writer de Kafka")
	}
	defer func() {
		if err := writer.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar writer de Kafka")
		}
	}()

	worker := messaging.NewOutboxWorker(
		postgres.NewOutboxRepository(pool),
		writer,
		log,
		cfg.Kafka.PollInterval,
		cfg.Kafka.BatchSize,
	)

	log.Info().Strs("brokers", cfg.Kafka.Brokers).Msg("iniciando worker de outbox")
	worker.Run(ctx)
	log.Info().Msg("worker de outbox detenido")
}
