package models

import "errors"

// Таксономия ошибок цикла. Проверяются через errors.Is на границе раннера:
// transient/execution — цикл деградирует и продолжается,
// invariant — цикл прерван до персиста, config — процесс не стартует.
var (
	// ErrTransientData — цена/балансы не получены (RPC сбой, пустые резервы).
	ErrTransientData = errors.New("transient data error")

	// ErrExecutionFailed — свап отклонён исполнителем; стейт не мутирован.
	ErrExecutionFailed = errors.New("swap execution failed")

	// ErrInvariant — порча инвариантов леджера (отрицательный base point,
	// underflow лота). Молча продолжать нельзя.
	ErrInvariant = errors.New("invariant violation")

	// ErrConfig — нет обязательных настроек на старте.
	ErrConfig = errors.New("configuration error")
)
