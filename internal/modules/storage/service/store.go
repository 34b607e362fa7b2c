package service

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"safeloop_bot/internal/models"
	"safeloop_bot/pkg/db"
)

//go:embed schema.sql
var schemaSQL string

// Store — персистентный стейт движка поверх Postgres.
// Одна строка sf_system на runtime id; лоты, ручные корректировки и
// диагностика — append-only вокруг неё.
type Store struct {
	db          *db.PgTxManager
	priceWindow int
}

func NewStore(m *db.PgTxManager, priceWindow int) *Store {
	return &Store{db: m, priceWindow: priceWindow}
}

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.Conn().Exec(ctx, schemaSQL)
	return errors.Wrap(err, "storage.Migrate")
}

// LoadState возвращает (state, true) либо (nil, false), если строки ещё нет.
// Валидация на границе загрузки: битый base point или кривой JSON серии —
// это порча стейта, не молчаливый дефолт.
func (s *Store) LoadState(ctx context.Context, runtimeID string) (st *models.SystemState, ok bool, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("storage.LoadState: %w", err)
		}
	}()

	row := s.db.Conn().QueryRow(ctx, `
		SELECT current_base_point, prices,
		       usdt_balance_start, btc_balance_start,
		       usdt_balance_now, btc_balance_now,
		       start_value, total_profit, last_swap, created_at, updated_at
		FROM sf_system WHERE runtime_id = $1`, runtimeID)

	var (
		pricesRaw string
		lastSwap  *time.Time
		out       = models.SystemState{RuntimeID: runtimeID}
	)
	err = row.Scan(
		&out.BasePoint, &pricesRaw,
		&out.StartBalances.Quote, &out.StartBalances.Base,
		&out.CurrentBalances.Quote, &out.CurrentBalances.Base,
		&out.StartValue, &out.TotalProfit, &lastSwap, &out.CreatedAt, &out.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if out.BasePoint <= 0 {
		return nil, false, fmt.Errorf("%w: base point %.6f in sf_system", models.ErrInvariant, out.BasePoint)
	}
	if lastSwap != nil {
		out.LastSwap = *lastSwap
	}

	var prices []float64
	if err := sonic.UnmarshalString(pricesRaw, &prices); err != nil {
		return nil, false, fmt.Errorf("decode prices column: %w", err)
	}
	out.Prices = models.RestorePriceWindow(s.priceWindow, prices)

	return &out, true, nil
}

// CreateState заводит строку sf_system при первом запуске runtime id.
func (s *Store) CreateState(ctx context.Context, runtimeID string, price float64, balances models.Balances) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("storage.CreateState: %w", err)
		}
	}()

	if price <= 0 {
		return fmt.Errorf("%w: cannot init state with price %.2f", models.ErrInvariant, price)
	}
	_, err = s.db.Conn().Exec(ctx, `
		INSERT INTO sf_system (runtime_id, current_base_point, prices,
			usdt_balance_start, btc_balance_start,
			usdt_balance_now, btc_balance_now,
			start_value, total_profit)
		VALUES ($1, $2, '[]', $3, $4, $3, $4, $5, 0)
		ON CONFLICT (runtime_id) DO NOTHING`,
		runtimeID, price,
		balances.Quote, balances.Base,
		balances.Total(price),
	)
	return err
}

// ActiveLots — открытые покупки, дешёвые входы первыми.
func (s *Store) ActiveLots(ctx context.Context, runtimeID string) (lots []models.Lot, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("storage.ActiveLots: %w", err)
		}
	}()

	rows, err := s.db.Conn().Query(ctx, `
		SELECT id, amount_btc, price_usd, amount_usd, status, created_at
		FROM sf_assets
		WHERE runtime_id = $1 AND type = 'BUY' AND status = 'active'
		ORDER BY price_usd ASC`, runtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		l := models.Lot{RuntimeID: runtimeID}
		var status string
		if err := rows.Scan(&l.ID, &l.AmountBase, &l.Price, &l.AmountUSD, &status, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.Status = models.LotStatus(status)
		lots = append(lots, l)
	}
	return lots, rows.Err()
}

// ManualFlow — суммы депозитов и выводов для baseline.
func (s *Store) ManualFlow(ctx context.Context, runtimeID string) (flow models.ManualFlow, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("storage.ManualFlow: %w", err)
		}
	}()

	row := s.db.Conn().QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount_usdt) FILTER (WHERE type = 'DEPOSIT'), 0),
			COALESCE(SUM(amount_usdt) FILTER (WHERE type = 'WITHDRAW'), 0)
		FROM sf_manual WHERE runtime_id = $1`, runtimeID)
	err = row.Scan(&flow.Deposits, &flow.Withdraws)
	return flow, err
}

// InsertManual — append-only строка аудита, балансы не трогает.
func (s *Store) InsertManual(ctx context.Context, adj models.ManualAdjustment) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("storage.InsertManual: %w", err)
		}
	}()

	if adj.AmountUSD <= 0 {
		return fmt.Errorf("%w: manual amount %.2f", models.ErrInvariant, adj.AmountUSD)
	}
	_, err = s.db.Conn().Exec(ctx, `
		INSERT INTO sf_manual (runtime_id, type, amount_usdt, notes)
		VALUES ($1, $2, $3, $4)`,
		adj.RuntimeID, string(adj.Type), adj.AmountUSD, adj.Note)
	return err
}

// BackfillPrices восстанавливает окно цен из диагностического лога —
// на случай, когда в sf_system серия короткая (рестарт со старым стейтом).
func (s *Store) BackfillPrices(ctx context.Context, runtimeID string, limit int) (prices []float64, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("storage.BackfillPrices: %w", err)
		}
	}()

	rows, err := s.db.Conn().Query(ctx, `
		SELECT current_price FROM loop_state_log
		WHERE runtime_id = $1 AND current_price > 0
		ORDER BY id DESC LIMIT $2`, runtimeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// лог читали от новых к старым — разворачиваем в хронологию
	for i, j := 0, len(prices)-1; i < j; i, j = i+1, j-1 {
		prices[i], prices[j] = prices[j], prices[i]
	}
	return prices, nil
}

// SwapMutation — мутации леджера при успешном свапе.
type SwapMutation struct {
	Direction  models.Action
	AmountBase float64
	AmountUSD  float64
	Price      float64
	// SELL: какие лоты и на сколько списать
	Sales []models.LotSale
}

// SwapAttempt — неуспешная попытка: только строка в loop_tx_log.
type SwapAttempt struct {
	Direction  models.Action
	AmountBase float64
	AmountUSD  float64
	Price      float64
	Notes      string
}

// ApplyCycle персистит итог одного тика единой транзакцией:
// sf_system, строка loop_state_log и, при свапе, tx-лог с мутацией лотов.
func (s *Store) ApplyCycle(
	ctx context.Context,
	state *models.SystemState,
	report models.CycleReport,
	swap *SwapMutation,
	attempt *SwapAttempt,
) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("storage.ApplyCycle: %w", err)
		}
	}()

	pricesRaw, err := sonic.MarshalString(state.Prices.Values())
	if err != nil {
		return err
	}

	return s.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		var lastSwap *time.Time
		if !state.LastSwap.IsZero() {
			lastSwap = &state.LastSwap
		}
		_, err := tx.Exec(ctxTx, `
			UPDATE sf_system SET
				current_base_point = $2,
				prices = $3,
				usdt_balance_now = $4,
				btc_balance_now = $5,
				start_value = $6,
				total_profit = $7,
				last_swap = $8,
				updated_at = now()
			WHERE runtime_id = $1`,
			state.RuntimeID, state.BasePoint, pricesRaw,
			state.CurrentBalances.Quote, state.CurrentBalances.Base,
			state.StartValue, state.TotalProfit, lastSwap,
		)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctxTx, `
			INSERT INTO loop_state_log (runtime_id, run_id, action, base_price, current_price,
				delta, macd, signal, usdt_balance, btc_balance,
				total_profit, drawdown, did_swap, reason)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			state.RuntimeID, report.RunID, string(report.Action),
			report.BasePoint, report.Price, report.Delta,
			report.Momentum, report.MomentumSignal,
			report.Balances.Quote, report.Balances.Base,
			report.Profit, report.Drawdown, report.DidSwap,
			strings.Join(report.Reasons, "; "),
		)
		if err != nil {
			return err
		}

		if attempt != nil {
			_, err = tx.Exec(ctxTx, `
				INSERT INTO loop_tx_log (runtime_id, direction, amount_base, amount_quote, price, success, notes)
				VALUES ($1, $2, $3, $4, $5, FALSE, $6)`,
				state.RuntimeID, string(attempt.Direction),
				attempt.AmountBase, attempt.AmountUSD, attempt.Price, attempt.Notes)
			if err != nil {
				return err
			}
		}

		if swap == nil {
			return nil
		}

		_, err = tx.Exec(ctxTx, `
			INSERT INTO loop_tx_log (runtime_id, direction, amount_base, amount_quote, price, success, notes)
			VALUES ($1, $2, $3, $4, $5, TRUE, 'swap executed')`,
			state.RuntimeID, string(swap.Direction),
			swap.AmountBase, swap.AmountUSD, swap.Price)
		if err != nil {
			return err
		}

		switch swap.Direction {
		case models.ActionBuy:
			_, err = tx.Exec(ctxTx, `
				INSERT INTO sf_assets (runtime_id, type, amount_btc, price_usd, amount_usd, status)
				VALUES ($1, 'BUY', $2, $3, $4, 'active')`,
				state.RuntimeID, swap.AmountBase, swap.Price, swap.AmountUSD)
			if err != nil {
				return err
			}

		case models.ActionSell:
			// аудит продажи — отдельной закрытой строкой, как исторически
			_, err = tx.Exec(ctxTx, `
				INSERT INTO sf_assets (runtime_id, type, amount_btc, price_usd, amount_usd, status)
				VALUES ($1, 'SELL', $2, $3, $4, 'closed')`,
				state.RuntimeID, swap.AmountBase, swap.Price, swap.AmountUSD)
			if err != nil {
				return err
			}
			for _, sale := range swap.Sales {
				status := string(models.LotActive)
				if sale.Remaining <= 0 {
					status = string(models.LotClosed)
				}
				tag, err := tx.Exec(ctxTx, `
					UPDATE sf_assets SET amount_btc = $2, status = $3
					WHERE id = $1 AND status = 'active'`,
					sale.LotID, sale.Remaining, status)
				if err != nil {
					return err
				}
				if tag.RowsAffected() == 0 {
					return fmt.Errorf("%w: lot %d vanished during sell", models.ErrInvariant, sale.LotID)
				}
			}
		}
		return nil
	})
}
