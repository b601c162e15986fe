package controller_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity/intersection/controller"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/utils/randengine"
)

func newEstimator(seed uint64) *controller.EstimatorController {
	return controller.NewEstimatorController(config.Estimator{
		Hidden:      6,
		LR:          0.01,
		MinDuration: 4,
		MaxDuration: 16,
	}, randengine.New(seed))
}

func TestEstimatorDurationBounds(t *testing.T) {
	c := newEstimator(42)

	states := []entity.TrafficState{
		{},
		{QueueNS: 1 << 30, QueueEW: 1 << 30, Phase: entity.PhaseEW, Period: entity.PeriodMorning},
		{QueueNS: 3, QueueEW: 100, Phase: entity.PhaseNS, Period: entity.PeriodNight, Emergency: true},
		{QueueNS: 30, QueueEW: 0, Phase: entity.PhaseNS, Period: entity.PeriodAfternoon},
	}
	for _, state := range states {
		d := c.Decide(state)
		assert.GreaterOrEqual(t, d.Duration, 4.0)
		assert.LessOrEqual(t, d.Duration, 16.0)
		assert.NotEmpty(t, d.Explanation)
	}
}

func TestEstimatorBoundsUnderLearning(t *testing.T) {
	c := newEstimator(42)
	state := entity.TrafficState{QueueNS: 12, QueueEW: 4, Phase: entity.PhaseNS, Period: entity.PeriodMorning}

	// 极端奖励的长序列在线更新也不得把时长推出区间
	for i := 0; i < 200; i++ {
		d := c.Decide(state)
		assert.GreaterOrEqual(t, d.Duration, 4.0)
		assert.LessOrEqual(t, d.Duration, 16.0)
		reward := 1e6
		if i%2 == 0 {
			reward = -1e6
		}
		c.Learn(state, reward, state)
	}
	assert.Zero(t, c.InstabilityCount())
}

func TestEstimatorLearnMovesOutput(t *testing.T) {
	c := newEstimator(7)
	state := entity.TrafficState{QueueNS: 8, QueueEW: 8, Phase: entity.PhaseNS, Period: entity.PeriodAfternoon}

	before := c.Decide(state).Duration
	for i := 0; i < 50; i++ {
		c.Decide(state)
		c.Learn(state, 20, state)
	}
	after := c.Decide(state).Duration
	assert.Greater(t, after, before)

	for i := 0; i < 100; i++ {
		c.Decide(state)
		c.Learn(state, -20, state)
	}
	assert.Less(t, c.Decide(state).Duration, after)
}

func TestEstimatorLearnBeforeDecide(t *testing.T) {
	c := newEstimator(1)
	state := entity.TrafficState{QueueNS: 5, Period: entity.PeriodMorning}

	// 无决策时的反馈应被忽略
	c.Learn(state, 10, state)
	d := c.Decide(state)
	assert.Equal(t, newEstimator(1).Decide(state), d)
}

func TestEstimatorSeedDeterminism(t *testing.T) {
	a := newEstimator(99)
	b := newEstimator(99)
	state := entity.TrafficState{QueueNS: 6, QueueEW: 2, Phase: entity.PhaseEW, Period: entity.PeriodNight}

	for i := 0; i < 20; i++ {
		da := a.Decide(state)
		db := b.Decide(state)
		assert.Equal(t, da, db)
		a.Learn(state, 3, state)
		b.Learn(state, 3, state)
	}
}

func TestEstimatorSeedVariation(t *testing.T) {
	state := entity.TrafficState{QueueNS: 6, QueueEW: 2, Phase: entity.PhaseEW, Period: entity.PeriodMorning}
	assert.NotEqual(t, newEstimator(1).Decide(state).Duration, newEstimator(2).Decide(state).Duration)
}
