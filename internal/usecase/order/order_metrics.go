package usecase

import "time"

// recordWebhookMetrics - вызывается после обработки вебхука
func (uc *DefaultOrderUsecase) recordWebhookMetrics(source, outcome string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordWebhook(source, outcome)
}

// recordTransitionMetrics - вызывается при применённом переходе
func (uc *DefaultOrderUsecase) recordTransitionMetrics(transition string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordTransition(transition)
}

func (uc *DefaultOrderUsecase) recordPaymentLinkMetrics(outcome string, started time.Time) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordPaymentLink(outcome, time.Since(started).Seconds())
}

func (uc *DefaultOrderUsecase) recordSideEffectFailure(effect string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordSideEffectFailure(effect)
}

func (uc *DefaultOrderUsecase) recordSweepMetrics(started time.Time, pending int) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordSweep(time.Since(started).Seconds(), pending)
}
