package controller_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity/intersection/controller"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/utils/randengine"
)

func newQLearning(epsilon float64, seed uint64) *controller.QLearningController {
	return controller.NewQLearningController(config.QLearning{
		Actions: []float64{10, 12, 14},
		Alpha:   0.08,
		Gamma:   0.9,
		Epsilon: epsilon,
	}, randengine.New(seed))
}

func TestQLearningTieBreakFirstAction(t *testing.T) {
	c := newQLearning(0, 1)

	// 未见过的状态行全零，平局裁决取规范顺序中的第一个动作
	d := c.Decide(entity.TrafficState{QueueNS: 5, QueueEW: 2, Phase: entity.PhaseNS, Period: entity.PeriodMorning})
	assert.Equal(t, 10.0, d.Duration)
	assert.False(t, d.Exploration)
	assert.Contains(t, d.Explanation, "exploiting")
}

func TestQLearningFirstVisitUpdate(t *testing.T) {
	c := newQLearning(0, 1)
	// 排队不变的状态在两次决策间落入同一状态键
	state := entity.TrafficState{Phase: entity.PhaseNS, Period: entity.PeriodAfternoon}

	c.Decide(state)
	c.Learn(state, 7.5, state)

	// 首次更新后该行的值为 α·r = 0.08×7.5 = 0.6
	d := c.Decide(state)
	assert.Equal(t, 10.0, d.Duration)
	assert.Contains(t, d.Explanation, "q=0.600")
}

func TestQLearningNegativeFeedbackSwitchesAction(t *testing.T) {
	c := newQLearning(0, 1)
	state := entity.TrafficState{Phase: entity.PhaseNS, Period: entity.PeriodAfternoon}

	c.Decide(state)
	c.Learn(state, -10, state)

	// 首动作的值降为负，贪心选择转向仍为零值的次一动作
	d := c.Decide(state)
	assert.Equal(t, 12.0, d.Duration)
}

func TestQLearningExplorationMarked(t *testing.T) {
	c := newQLearning(1, 1)

	for i := 0; i < 10; i++ {
		d := c.Decide(entity.TrafficState{QueueNS: i, Phase: entity.PhaseNS, Period: entity.PeriodMorning})
		assert.True(t, d.Exploration)
		assert.Contains(t, d.Explanation, "exploring")
	}
}

func TestQLearningLearnBeforeDecide(t *testing.T) {
	c := newQLearning(0, 1)
	state := entity.TrafficState{QueueNS: 3, Period: entity.PeriodNight}

	c.Learn(state, 100, state)
	assert.Zero(t, c.TableSize())
}

func TestQLearningTableGrowth(t *testing.T) {
	c := newQLearning(0, 1)

	c.Decide(entity.TrafficState{Phase: entity.PhaseNS, Period: entity.PeriodMorning})
	assert.Equal(t, 1, c.TableSize())
	// 同一离散状态不扩表
	c.Decide(entity.TrafficState{Phase: entity.PhaseNS, Period: entity.PeriodMorning})
	assert.Equal(t, 1, c.TableSize())
	// 换桶/换相位/换时段各自成行
	c.Decide(entity.TrafficState{QueueNS: 20, Phase: entity.PhaseNS, Period: entity.PeriodMorning})
	c.Decide(entity.TrafficState{QueueNS: 20, Phase: entity.PhaseEW, Period: entity.PeriodMorning})
	c.Decide(entity.TrafficState{QueueNS: 20, Phase: entity.PhaseEW, Period: entity.PeriodNight})
	assert.Equal(t, 4, c.TableSize())
}

func TestQLearningSeedDeterminism(t *testing.T) {
	a := newQLearning(0.5, 33)
	b := newQLearning(0.5, 33)

	for i := 0; i < 50; i++ {
		state := entity.TrafficState{QueueNS: i % 12, QueueEW: (i * 3) % 15, Phase: entity.PhaseNS, Period: entity.PeriodMorning}
		da := a.Decide(state)
		db := b.Decide(state)
		assert.Equal(t, da, db)
		a.Learn(state, float64(i%7)-3, state)
		b.Learn(state, float64(i%7)-3, state)
	}
	assert.Equal(t, a.TableSize(), b.TableSize())
}
