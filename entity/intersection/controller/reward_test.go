package controller_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity/intersection/controller"
)

func TestReward(t *testing.T) {
	assert.Equal(t, 0.0, controller.Reward(0, 0, 0))
	assert.Equal(t, 10.0, controller.Reward(10, 0, 0))
	assert.Equal(t, 7.5, controller.Reward(10, 2.5, 0))
	// stops weighted at 0.3
	assert.InDelta(t, 6.0, controller.Reward(10, 2.5, 5), 1e-9)
	assert.InDelta(t, -3.5, controller.Reward(0, 3.5, 0), 1e-9)
}
