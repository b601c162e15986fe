package clock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/clock"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/utils/config"
)

func TestClockAdvance(t *testing.T) {
	ck := clock.New(config.ControlStep{Start: 0, Total: 3, Interval: 1})

	steps := 0
	for !ck.Done() {
		assert.Equal(t, int32(steps), ck.InternalStep)
		assert.Equal(t, float64(steps), ck.T)
		ck.Tick()
		steps++
	}
	assert.Equal(t, 3, steps)
}

func TestClockInterval(t *testing.T) {
	ck := clock.New(config.ControlStep{Start: 100, Total: 10, Interval: 0.5})
	assert.Equal(t, int32(100), ck.InternalStep)
	assert.Equal(t, 50.0, ck.T)
	ck.Tick()
	assert.Equal(t, 50.5, ck.T)
}

func TestClockString(t *testing.T) {
	ck := clock.New(config.ControlStep{Start: 3725, Total: 10, Interval: 1})
	assert.Equal(t, "01:02:05", ck.String())
}
