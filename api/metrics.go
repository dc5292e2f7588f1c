package api

import (
	"sync"
	"time"
)

// AlertType identifies the kind of anomaly detected.
type AlertType string

// AlertLoginFailureSpike fires when login failures cluster faster than a
// single fat-fingered user can explain.
const AlertLoginFailureSpike AlertType = "login_failure_spike"

// AlertEvent describes an anomaly that triggered an alert.
type AlertEvent struct {
	Type      AlertType `json:"type"`
	Message   string    `json:"message"`
	Count     int       `json:"count"`
	Threshold int       `json:"threshold"`
	Timestamp time.Time `json:"timestamp"`
}

// AlertFunc is the callback invoked when an anomaly is detected.
type AlertFunc func(AlertEvent)

// metricsCollector tracks a sliding window of login failures for anomaly
// detection.
type metricsCollector struct {
	mu sync.Mutex

	loginFailures  []time.Time
	loginWindow    time.Duration
	loginThreshold int

	alertFn AlertFunc
}

const (
	defaultLoginFailureWindow    = 1 * time.Minute
	defaultLoginFailureThreshold = 20
)

func newMetricsCollector(alertFn AlertFunc) *metricsCollector {
	return &metricsCollector{
		loginWindow:    defaultLoginFailureWindow,
		loginThreshold: defaultLoginFailureThreshold,
		alertFn:        alertFn,
	}
}

func (mc *metricsCollector) recordEvent(event AuditEvent) {
	if event != AuditLoginFailure {
		return
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := time.Now()
	mc.loginFailures = append(mc.loginFailures, now)

	cutoff := now.Add(-mc.loginWindow)
	start := 0
	for start < len(mc.loginFailures) && mc.loginFailures[start].Before(cutoff) {
		start++
	}
	mc.loginFailures = mc.loginFailures[start:]

	if len(mc.loginFailures) >= mc.loginThreshold && mc.alertFn != nil {
		mc.alertFn(AlertEvent{
			Type:      AlertLoginFailureSpike,
			Message:   "login failures exceeded threshold",
			Count:     len(mc.loginFailures),
			Threshold: mc.loginThreshold,
			Timestamp: now,
		})
	}
}
