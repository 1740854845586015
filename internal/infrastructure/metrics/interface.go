package metrics

import "time"

// Исходы обновления скилла
const (
	OutcomeApplied  = "applied"
	OutcomeBlocked  = "blocked"
	OutcomeFailed   = "failed"
	OutcomeRejected = "rejected"
)

// Interface определяет интерфейс для системы метрик планировщика и обновлений
type Interface interface {
	// RecordCheck записывает завершенную проверку обновлений
	RecordCheck(duration time.Duration, err error)

	// SetAvailableUpdates устанавливает число доступных обновлений
	SetAvailableUpdates(count int)

	// SetNextCheck устанавливает время следующей плановой проверки
	SetNextCheck(next time.Time)

	// RecordUpdate записывает исход обновления скилла
	RecordUpdate(outcome string)

	// RecordScanFailure записывает сбой сканера
	RecordScanFailure()

	// SetUpdatesInFlight устанавливает число выполняющихся обновлений
	SetUpdatesInFlight(count int)

	// GetStats возвращает все метрики в виде map
	GetStats() map[string]interface{}
}
