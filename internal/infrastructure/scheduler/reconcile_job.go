// Package scheduler tareas periódicas del servidor.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jhoicas/Importaciones-api/internal/application/dto"
	"github.com/jhoicas/Importaciones-api/pkg/logger"
)

// ReconcileLockKey clave del lock distribuido de la conciliación.
const ReconcileLockKey = "lock:inventory:reconcile"

// Reconciler lo cumple *inventory.ReconcileUseCase.
type Reconciler interface {
	Run(ctx context.Context, repair bool) (*dto.ReconcileResponse, error)
}

// Locker lo cumple *redisstore.Locker.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) (bool, error)
}

// ReconcileJob ejecuta la conciliación de inventario según una expresión cron.
// Con locker, solo una instancia la corre por tick; sin locker corre en cada instancia.
type ReconcileJob struct {
	cron       *cron.Cron
	reconciler Reconciler
	locker     Locker
	repair     bool
	timeout    time.Duration
	log        *logger.Logger
}

// NewReconcileJob registra la tarea con spec (ej. "@every 1h", "15 2 * * *").
func NewReconcileJob(spec string, reconciler Reconciler, locker Locker, repair bool, log *logger.Logger) (*ReconcileJob, error) {
	if log == nil {
		log = logger.Nop()
	}
	j := &ReconcileJob{
		cron:       cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		reconciler: reconciler,
		locker:     locker,
		repair:     repair,
		timeout:    5 * time.Minute,
		log:        log.Named("scheduler.reconcile"),
	}
	if _, err := j.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()
		if err := j.RunOnce(ctx); err != nil {
			j.log.Error().Err(err).Msg("conciliación programada fallida")
		}
	}); err != nil {
		return nil, fmt.Errorf("scheduler: expresión cron %q: %w", spec, err)
	}
	return j, nil
}

// Start arranca el cron en segundo plano.
func (j *ReconcileJob) Start() {
	j.cron.Start()
	j.log.Info().Bool("repair", j.repair).Msg("conciliación programada iniciada")
}

// Stop detiene el cron y espera a la ejecución en curso (o a que ctx venza).
func (j *ReconcileJob) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// RunOnce ejecuta una conciliación, bajo el lock si hay locker.
func (j *ReconcileJob) RunOnce(ctx context.Context) error {
	run := func(ctx context.Context) error {
		res, err := j.reconciler.Run(ctx, j.repair)
		if err != nil {
			return err
		}
		j.log.Info().
			Int("checked", res.Checked).
			Int("drifts", len(res.Drifts)).
			Bool("repaired", res.Repaired).
			Msg("conciliación completada")
		return nil
	}
	if j.locker == nil {
		return run(ctx)
	}
	ran, err := j.locker.WithLock(ctx, ReconcileLockKey, j.timeout, run)
	if err != nil {
		return err
	}
	if !ran {
		j.log.Debug().Msg("conciliación en curso en otra instancia")
	}
	return nil
}
