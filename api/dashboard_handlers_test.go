package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0d 0h 0m"},
		{5 * time.Minute, "0d 0h 5m"},
		{90 * time.Minute, "0d 1h 30m"},
		{26*time.Hour + 7*time.Minute, "1d 2h 7m"},
		{49 * time.Hour, "2d 1h 0m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatUptime(tt.d), tt.d.String())
	}
}
