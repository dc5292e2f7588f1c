package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCollector_AlertsOnFailureSpike(t *testing.T) {
	var fired []AlertEvent
	mc := newMetricsCollector(func(ev AlertEvent) { fired = append(fired, ev) })

	for i := 0; i < defaultLoginFailureThreshold; i++ {
		mc.recordEvent(AuditLoginFailure)
	}

	require.NotEmpty(t, fired)
	assert.Equal(t, AlertLoginFailureSpike, fired[0].Type)
	assert.GreaterOrEqual(t, fired[0].Count, defaultLoginFailureThreshold)
}

func TestMetricsCollector_IgnoresOtherEvents(t *testing.T) {
	var fired []AlertEvent
	mc := newMetricsCollector(func(ev AlertEvent) { fired = append(fired, ev) })

	for i := 0; i < defaultLoginFailureThreshold*2; i++ {
		mc.recordEvent(AuditLoginSuccess)
	}
	assert.Empty(t, fired)
}

func TestMetricsCollector_WindowExpiry(t *testing.T) {
	var fired []AlertEvent
	mc := newMetricsCollector(func(ev AlertEvent) { fired = append(fired, ev) })

	// Seed failures that have already aged out of the window.
	mc.mu.Lock()
	for i := 0; i < defaultLoginFailureThreshold; i++ {
		mc.loginFailures = append(mc.loginFailures, time.Now().Add(-2*defaultLoginFailureWindow))
	}
	mc.mu.Unlock()

	mc.recordEvent(AuditLoginFailure)
	assert.Empty(t, fired, "expired failures must not count toward the threshold")
}

func TestMetricsCollector_NilAlertFunc(t *testing.T) {
	mc := newMetricsCollector(nil)
	for i := 0; i < defaultLoginFailureThreshold+5; i++ {
		mc.recordEvent(AuditLoginFailure)
	}
}
