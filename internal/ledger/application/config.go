package application

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	ledger "fuelstation-cloud/internal/ledger/domain"
)

// ThresholdConfig defines variance thresholds as yaml.
type ThresholdConfig struct {
	OKBelowPct     float64 `yaml:"ok_below_pct"`
	ReviewBelowPct float64 `yaml:"review_below_pct"`
}

// SettlementConfig defines settlement tuning.
type SettlementConfig struct {
	Defaults   ThresholdConfig            `yaml:"defaults"`
	Stations   map[string]ThresholdConfig `yaml:"stations"`
	WebhookURL string                     `yaml:"webhook_url"`
}

// LoadSettlementConfig loads settlement thresholds from yaml or env. With no
// config file the 1% / 3% defaults apply.
func LoadSettlementConfig() (SettlementConfig, error) {
	defaults := ledger.DefaultThresholds()
	cfg := SettlementConfig{
		Defaults: ThresholdConfig{
			OKBelowPct:     defaults.OKBelowPct,
			ReviewBelowPct: defaults.ReviewBelowPct,
		},
		WebhookURL: os.Getenv("SETTLEMENT_WEBHOOK_URL"),
	}

	if path := os.Getenv("SETTLEMENT_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.Defaults.OKBelowPct <= 0 || cfg.Defaults.ReviewBelowPct <= cfg.Defaults.OKBelowPct {
		return cfg, errors.New("settlement: thresholds must satisfy 0 < ok < review")
	}
	return cfg, nil
}

// ThresholdsFor resolves the thresholds for a station, falling back to the
// defaults when no per-station override exists.
func (c SettlementConfig) ThresholdsFor(stationID string) ledger.Thresholds {
	if t, ok := c.Stations[stationID]; ok {
		return ledger.Thresholds{OKBelowPct: t.OKBelowPct, ReviewBelowPct: t.ReviewBelowPct}
	}
	return ledger.Thresholds{OKBelowPct: c.Defaults.OKBelowPct, ReviewBelowPct: c.Defaults.ReviewBelowPct}
}
