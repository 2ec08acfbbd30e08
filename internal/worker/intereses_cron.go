package worker

// intereses_cron.go
// Background goroutine that applies the monthly interest accrual to every
// customer carrying a balance. It ticks daily and only acts on the configured
// day of the month; a month-scoped Redis SETNX lock keeps multiple instances
// from racing. The lock is an optimization, not the correctness mechanism —
// the per-customer month guard makes re-runs idempotent either way.

import (
	"context"
	"time"

	"kashflow/internal/dto"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const corteTickInterval = 24 * time.Hour

// CorteRunner is implemented by the credit service.
type CorteRunner interface {
	EjecutarCorteIntereses(ctx context.Context, ahora time.Time, tasa decimal.Decimal) (*dto.CorteInteresesReport, error)
}

// InteresesCronConfig holds all dependencies for the accrual goroutine.
type InteresesCronConfig struct {
	Runner    CorteRunner
	RDB       *redis.Client
	Tasa      decimal.Decimal
	DiaCorte  int // day of month on which the accrual runs
}

// StartInteresesCron launches a goroutine that runs the monthly corte.
// It fires once at startup (catch-up after a restart mid-corte-day) and then
// every 24h. It respects the context for graceful shutdown.
func StartInteresesCron(ctx context.Context, cfg InteresesCronConfig) {
	go func() {
		ticker := time.NewTicker(corteTickInterval)
		defer ticker.Stop()

		log.Info().Int("dia_corte", cfg.DiaCorte).Msg("intereses_cron: started")
		runCorte(ctx, cfg)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("intereses_cron: shutting down")
				return
			case <-ticker.C:
				runCorte(ctx, cfg)
			}
		}
	}()
}

func runCorte(ctx context.Context, cfg InteresesCronConfig) {
	ahora := time.Now()
	if ahora.Day() != cfg.DiaCorte {
		return
	}

	// One runner per month across instances. TTL covers the corte day.
	lockKey := "lock:corte:" + ahora.Format("2006-01")
	ok, err := cfg.RDB.SetNX(ctx, lockKey, "1", 48*time.Hour).Result()
	if err != nil {
		log.Error().Err(err).Msg("intereses_cron: failed to acquire lock")
		return
	}
	if !ok {
		log.Debug().Str("lock", lockKey).Msg("intereses_cron: corte already claimed this month")
		return
	}

	report, err := cfg.Runner.EjecutarCorteIntereses(ctx, ahora, cfg.Tasa)
	if err != nil {
		// Release the lock so a later tick (or instance) can retry the run.
		cfg.RDB.Del(ctx, lockKey)
		log.Error().Err(err).Msg("intereses_cron: corte run failed")
		return
	}
	log.Info().
		Int("aplicados", report.Aplicados).
		Int("ya_aplicados", report.YaAplicados).
		Int("errores", report.Errores).
		Msg("intereses_cron: corte mensual ejecutado")
}
