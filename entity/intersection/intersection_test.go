package intersection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity/intersection"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity/intersection/controller"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/utils/config"
)

func newFixedNetwork(t *testing.T, count int32, serviceRate float64) *intersection.Network {
	plan := config.FixedPlan{Morning: 12, Afternoon: 10, Night: 6, Default: 10}
	controllers := make([]intersection.IController, count)
	for i := range controllers {
		controllers[i] = controller.NewFixedController(plan)
	}
	net, err := intersection.NewNetwork(count, controllers, serviceRate)
	assert.Nil(t, err)
	return net
}

func stepOne(t *testing.T, net *intersection.Network, arrivals []entity.Arrival) []entity.StepRecord {
	net.Prepare()
	records, err := net.Step(arrivals, 1)
	assert.Nil(t, err)
	return records
}

func TestEmergencyOverrideKeepsGreen(t *testing.T) {
	net := newFixedNetwork(t, 1, 4)

	// 南北排队更多且已放行南北：无相位切换，无截停
	records := stepOne(t, net, []entity.Arrival{
		{Period: entity.PeriodMorning, NS: 10, EW: 2, Emergency: true},
	})
	r := records[0]
	assert.True(t, r.EmergencyHandled)
	assert.Equal(t, entity.PhaseNS, r.PhaseUsed)
	assert.Equal(t, 5.0, r.Duration)
	assert.Equal(t, 0, r.Stops)
	assert.Equal(t, 4, r.ServedNS)
	assert.Contains(t, r.Explanation, "emergency override")
	assert.Equal(t, 1, net.TotalEmergencies())

	// 应急不询问策略，但覆盖决策进入历史
	history := net.Get(0).DecisionHistory()
	assert.Len(t, history, 1)
	assert.Equal(t, 5.0, history[0].Duration)
}

func TestEmergencyOverrideSwitchesToBusierApproach(t *testing.T) {
	net := newFixedNetwork(t, 1, 4)

	// 东西排队更多：抢占切换到东西，截停数为切换后变红的南北排队
	records := stepOne(t, net, []entity.Arrival{
		{Period: entity.PeriodMorning, NS: 2, EW: 10, Emergency: true},
	})
	r := records[0]
	assert.True(t, r.EmergencyHandled)
	assert.Equal(t, entity.PhaseEW, r.PhaseUsed)
	assert.Equal(t, 2, r.Stops)
	assert.Equal(t, 4, r.ServedEW)
	assert.Equal(t, 0, r.ServedNS)
}

func TestEmergencyTieFavorsNS(t *testing.T) {
	net := newFixedNetwork(t, 1, 4)

	records := stepOne(t, net, []entity.Arrival{
		{Period: entity.PeriodNight, NS: 3, EW: 3, Emergency: true},
	})
	assert.Equal(t, entity.PhaseNS, records[0].PhaseUsed)
}

func TestZeroArrivalRun(t *testing.T) {
	net := newFixedNetwork(t, 1, 4)

	// 夜间固定6秒相位，空载运行12步
	for step := int32(0); step < 12; step++ {
		records := stepOne(t, net, []entity.Arrival{{Step: step, Period: entity.PeriodNight}})
		r := records[0]
		assert.Zero(t, r.Throughput)
		assert.Zero(t, r.Stops)
		assert.Zero(t, r.QueueNS)
		assert.Zero(t, r.QueueEW)
		assert.Zero(t, r.AvgWaitProxy)
		assert.Equal(t, 6.0, r.Duration)
	}
	// 相位计时归零时才产生决策：第0步与第6步各一次
	assert.Len(t, net.Get(0).DecisionHistory(), 2)
	assert.Zero(t, net.TotalThroughput())
}

func TestQueuesNeverNegative(t *testing.T) {
	net := newFixedNetwork(t, 2, 3)

	for step := int32(0); step < 100; step++ {
		arrivals := []entity.Arrival{
			{Step: step, Period: entity.PeriodMorning, NS: int(step % 7), EW: int(step % 5)},
			{Step: step, Period: entity.PeriodMorning, NS: int(step % 3), EW: int(step % 8), Emergency: step%17 == 0},
		}
		for _, r := range stepOne(t, net, arrivals) {
			assert.GreaterOrEqual(t, r.QueueNS, 0)
			assert.GreaterOrEqual(t, r.QueueEW, 0)
			assert.LessOrEqual(t, r.Throughput, 3)
		}
	}
}

func TestSnapshotReadsPreparedState(t *testing.T) {
	net := newFixedNetwork(t, 1, 4)

	stepOne(t, net, []entity.Arrival{{Period: entity.PeriodMorning, NS: 9, EW: 1}})
	// 快照停留在本步Prepare时的状态
	assert.Zero(t, net.Get(0).QueueNS())

	net.Prepare()
	// 第0步：到达9，切换到东西放行，南北未被服务
	assert.Equal(t, 9, net.Get(0).QueueNS())
	assert.Equal(t, entity.PhaseEW, net.Get(0).Phase())
}
