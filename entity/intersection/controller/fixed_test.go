package controller_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity/intersection"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity/intersection/controller"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/utils/config"
)

// interface conformance
var (
	_ intersection.IController   = (*controller.FixedController)(nil)
	_ intersection.IController   = (*controller.EstimatorController)(nil)
	_ intersection.IController   = (*controller.QLearningController)(nil)
	_ intersection.IIntrospector = (*controller.QLearningController)(nil)
)

func newFixedPlan() config.FixedPlan {
	return config.FixedPlan{Morning: 12, Afternoon: 10, Night: 6, Default: 10}
}

func TestFixedControllerLookup(t *testing.T) {
	c := controller.NewFixedController(newFixedPlan())

	for period, want := range map[entity.TimePeriod]float64{
		entity.PeriodMorning:   12,
		entity.PeriodAfternoon: 10,
		entity.PeriodNight:     6,
	} {
		d := c.Decide(entity.TrafficState{QueueNS: 5, QueueEW: 3, Phase: entity.PhaseNS, Period: period})
		assert.Equal(t, want, d.Duration)
		assert.False(t, d.Exploration)
		assert.Contains(t, d.Explanation, string(period))
	}
}

func TestFixedControllerFallback(t *testing.T) {
	c := controller.NewFixedController(newFixedPlan())

	d := c.Decide(entity.TrafficState{Period: entity.TimePeriod("unknown")})
	assert.Equal(t, 10.0, d.Duration)
}

func TestFixedControllerIgnoresFeedback(t *testing.T) {
	c := controller.NewFixedController(newFixedPlan())
	state := entity.TrafficState{QueueNS: 20, Period: entity.PeriodMorning}

	before := c.Decide(state)
	c.Learn(state, -100, state)
	after := c.Decide(state)
	assert.Equal(t, before, after)
}
