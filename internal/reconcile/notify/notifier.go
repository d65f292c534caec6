package notify

import "context"

// AlertMessage represents a reconciliation alert payload.
type AlertMessage struct {
	MarketID          string            `json:"market_id"`
	RunID             string            `json:"run_id"`
	Findings          []string          `json:"findings"`
	TotalSupply       string            `json:"total_supply"`
	RecommendedAction string            `json:"recommended_action"`
	Meta              map[string]string `json:"meta,omitempty"`
}

// Notifier sends notifications.
type Notifier interface {
	Notify(ctx context.Context, msg AlertMessage) error
}
