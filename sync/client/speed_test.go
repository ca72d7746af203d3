package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpeedMeterReportsZeroBeforeTwoCheckpoints(t *testing.T) {
	m := newSpeedMeter(4)
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, float64(0), m.Speed())

	m.Checkpoint()
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, float64(0), m.Speed())
}

func TestSpeedMeterTracksRateOverWindow(t *testing.T) {
	m := newSpeedMeter(3)
	now := time.Now()
	m.times = []time.Time{now, now.Add(1 * time.Second), now.Add(2 * time.Second)}

	assert.Equal(t, 3, m.Len())
	assert.InDelta(t, 1.0, m.Speed(), 0.001)
}

func TestSpeedMeterTrimsToWindow(t *testing.T) {
	m := newSpeedMeter(2)
	now := time.Now()
	m.times = []time.Time{now, now.Add(1 * time.Second)}

	m.Checkpoint()
	assert.Equal(t, 2, m.Len())
}
