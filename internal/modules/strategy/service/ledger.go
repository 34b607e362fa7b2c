package service

import (
	"fmt"
	"sort"

	"safeloop_bot/internal/models"
)

// Ledger — чистая логика позиций поверх лотов из sf_assets.
// Персистит их storage; здесь только отбор, списание и ребейз.

// SelectProfitable отбирает активные лоты под продажу по цене priceNow:
// только те, чей профит >= threshold (убыточные не продаются никогда),
// дешёвые входы первыми, суммарно не больше maxAmount — последний
// задействованный лот списывается частично.
// Пустой результат — это HOLD ("no profitable position to sell"), не ошибка.
func SelectProfitable(lots []models.Lot, priceNow, threshold, maxAmount float64) ([]models.LotSale, float64) {
	if maxAmount <= 0 {
		return nil, 0
	}

	profitable := make([]models.Lot, 0, len(lots))
	for _, l := range lots {
		if l.Status != models.LotActive || l.AmountBase <= 0 {
			continue
		}
		if l.ProfitDelta(priceNow) >= threshold {
			profitable = append(profitable, l)
		}
	}
	sort.Slice(profitable, func(i, j int) bool { return profitable[i].Price < profitable[j].Price })

	var (
		sales []models.LotSale
		total float64
	)
	for _, l := range profitable {
		if total >= maxAmount {
			break
		}
		take := l.AmountBase
		if total+take > maxAmount {
			take = maxAmount - total
		}
		sales = append(sales, models.LotSale{
			LotID:     l.ID,
			Amount:    take,
			Remaining: l.AmountBase - take,
		})
		total += take
	}
	return sales, total
}

// Rebase пересчитывает base point как средневзвешенную цену входа по
// остаткам активных лотов; когда лотов не осталось — берём текущую цену.
func Rebase(lots []models.Lot, priceNow float64) (float64, error) {
	var amount, weighted float64
	for _, l := range lots {
		if l.Status != models.LotActive || l.AmountBase <= 0 {
			continue
		}
		amount += l.AmountBase
		weighted += l.AmountBase * l.Price
	}

	if amount <= 0 {
		if priceNow <= 0 {
			return 0, fmt.Errorf("%w: rebase without lots at price %.2f", models.ErrInvariant, priceNow)
		}
		return priceNow, nil
	}

	bp := weighted / amount
	if bp <= 0 {
		return 0, fmt.Errorf("%w: rebase produced base point %.6f", models.ErrInvariant, bp)
	}
	return bp, nil
}

// ApplySales применяет списания к копии лотов (для ребейза до персиста).
// Underflow лота — порча леджера.
func ApplySales(lots []models.Lot, sales []models.LotSale) ([]models.Lot, error) {
	byID := make(map[int64]float64, len(sales))
	for _, s := range sales {
		byID[s.LotID] = s.Amount
	}

	out := make([]models.Lot, len(lots))
	copy(out, lots)
	for i := range out {
		take, ok := byID[out[i].ID]
		if !ok {
			continue
		}
		if take > out[i].AmountBase+1e-12 {
			return nil, fmt.Errorf("%w: lot %d underflow: take %.8f > held %.8f",
				models.ErrInvariant, out[i].ID, take, out[i].AmountBase)
		}
		out[i].AmountBase -= take
		if out[i].AmountBase <= 1e-12 {
			out[i].AmountBase = 0
			out[i].Status = models.LotClosed
		}
	}
	return out, nil
}
