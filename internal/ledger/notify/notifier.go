package notify

import "context"

// AlertMessage represents a settlement variance alert payload.
type AlertMessage struct {
	StationID         string            `json:"station_id"`
	Day               string            `json:"day"`
	SettlementID      string            `json:"settlement_id"`
	Status            string            `json:"status"`
	Variance          string            `json:"variance"`
	VariancePercent   string            `json:"variance_percent"`
	RecommendedAction string            `json:"recommended_action"`
	Meta              map[string]string `json:"meta,omitempty"`
}

// Notifier sends notifications.
type Notifier interface {
	Notify(ctx context.Context, msg AlertMessage) error
}
