package interfaces

import (
	"context"
	"log"

	"fuelstation-cloud/internal/ledger/application"
	ledger "fuelstation-cloud/internal/ledger/domain"
	"fuelstation-cloud/internal/ledger/notify"
)

// LoggingPublisher logs settlement recorded events and forwards variance
// alerts. INVESTIGATE settlements go to the notifier when one is wired.
type LoggingPublisher struct {
	logger   *log.Logger
	notifier notify.Notifier
}

// NewLoggingPublisher constructs a publisher. A nil notifier disables
// webhook alerts.
func NewLoggingPublisher(logger *log.Logger, notifier notify.Notifier) *LoggingPublisher {
	if logger == nil {
		logger = log.Default()
	}
	return &LoggingPublisher{logger: logger, notifier: notifier}
}

// Publish logs the event and alerts on INVESTIGATE.
func (p *LoggingPublisher) Publish(ctx context.Context, event application.SettlementRecorded) {
	if p == nil {
		return
	}
	p.logger.Printf("settlement recorded: station=%s day=%s status=%s variance=%s version=%d",
		event.StationID, event.Day.Format("2006-01-02"), event.Status, event.Variance.StringFixed(2), event.Version)
	if event.Status != ledger.VarianceInvestigate || p.notifier == nil {
		return
	}
	if err := p.notifier.Notify(ctx, notify.AlertMessage{
		StationID:         event.StationID,
		Day:               event.Day.Format("2006-01-02"),
		SettlementID:      event.SettlementID,
		Status:            event.Status,
		Variance:          event.Variance.StringFixed(2),
		VariancePercent:   event.VariancePercent.StringFixed(2),
		RecommendedAction: "recount the drawer and review the day's readings",
	}); err != nil {
		p.logger.Printf("settlement alert failed: %v", err)
	}
}
