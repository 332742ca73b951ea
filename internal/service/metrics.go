package service

// Metric names emitted by the dashboard.
const (
	MetricAuthLogin      = "auth.login"
	MetricGuardDecision  = "guard.decision"
	MetricCatalogList    = "catalog.list"
	MetricSessionsActive = "sessions.active"
)
