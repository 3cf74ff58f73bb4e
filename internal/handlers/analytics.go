package handlers

import "github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/config"

// Analytics holds client instrumentation configuration surfaced to templates.
type Analytics struct {
	GA4MeasurementID string // e.g. G-XXXXXXXXXX
}

// AnalyticsFrom builds Analytics from loaded configuration.
func AnalyticsFrom(cfg config.AnalyticsConfig) Analytics {
	return Analytics{GA4MeasurementID: cfg.GA4MeasurementID}
}

// Enabled reports whether any tracker is configured.
func (a Analytics) Enabled() bool {
	return a.GA4MeasurementID != ""
}
