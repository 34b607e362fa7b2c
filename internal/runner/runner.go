package runner

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"safeloop_bot/internal/models"
	chain "safeloop_bot/internal/modules/chain/service"
	"safeloop_bot/internal/modules/config"
	health "safeloop_bot/internal/modules/health/service"
	storage "safeloop_bot/internal/modules/storage/service"
	"safeloop_bot/pkg/logger"
	"safeloop_bot/pkg/tracing"
)

// Интерфейсы коллабораторов объявлены у потребителя: в тестах цикла
// вместо ноды и Postgres живут фейки.

type Chain interface {
	KeepGasPumping(ctx context.Context)
	PoolPrice(ctx context.Context) float64
	LastStreamedPrice() float64
	Balances(ctx context.Context) (models.Balances, error)
	ExecuteSwap(ctx context.Context, direction models.Action, amount, price float64) (*chain.Fill, error)
}

type Store interface {
	ActiveLots(ctx context.Context, runtimeID string) ([]models.Lot, error)
	ManualFlow(ctx context.Context, runtimeID string) (models.ManualFlow, error)
	ApplyCycle(ctx context.Context, state *models.SystemState, report models.CycleReport, swap *storage.SwapMutation, attempt *storage.SwapAttempt) error
}

type Notifier interface {
	SendReport(ctx context.Context, r models.CycleReport)
	SendError(ctx context.Context, err error)
}

// Runner крутит цикл ребаланса: немедленный первый тик, дальше по таймеру.
// Весь стейт мутируется в одной горутине — гонок по дизайну нет.
type Runner struct {
	cfg      *config.Config
	chain    Chain
	store    Store
	notifier Notifier
	health   *health.State
	metrics  *health.Metrics

	runID string
	state *models.SystemState
}

func NewRunner(
	cfg *config.Config,
	ch Chain,
	store Store,
	notifier Notifier,
	hs *health.State,
	metrics *health.Metrics,
) *Runner {
	return &Runner{
		cfg:      cfg,
		chain:    ch,
		store:    store,
		notifier: notifier,
		health:   hs,
		metrics:  metrics,
		runID:    uuid.NewString(),
	}
}

// Run блокируется до отмены контекста. Стейт уже должен быть прогрет.
func (r *Runner) Run(ctx context.Context) {
	logger.Info("runner started: run_id=%s interval=%s", r.runID, r.cfg.Strategy.CheckInterval)

	r.tick(ctx)
	r.health.SetReady(true)

	t := time.NewTicker(r.cfg.Strategy.CheckInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("runner stopped")
			return
		case <-t.C:
			r.tick(ctx)
		}
	}
}

// tick — граница обработки ошибок: любой исход одного цикла логируется
// и репортится, но петлю не роняет.
func (r *Runner) tick(ctx context.Context) {
	span, ctx := tracing.StartCycleSpan(ctx)
	defer span.Finish()

	report, err := r.runCycle(ctx)
	switch {
	case err == nil:
		r.metrics.ObserveReport(report)
		r.health.TouchCycle(report.Time)
		r.notifier.SendReport(ctx, report)

	case errors.Is(err, models.ErrTransientData):
		// деградация данных: стейт не трогали, подождём следующего тика
		r.metrics.ObserveError()
		logger.Warn("cycle degraded: %v", err)
		r.notifier.SendError(ctx, err)

	case errors.Is(err, models.ErrInvariant):
		// порча стейта: цикл оборван до персиста, нужен оператор
		r.metrics.ObserveError()
		logger.Error("state invariant violated: %v", err)
		r.notifier.SendError(ctx, err)

	default:
		r.metrics.ObserveError()
		logger.Error("cycle failed: %v", err)
		r.notifier.SendError(ctx, err)
	}
}
