// 合成交通流生成器，按时段需求档案产生各路口每步的到达车辆与应急事件
package generator

import (
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/utils/randengine"
)

// rateRange 到达率区间（闭区间，辆/步）
type rateRange struct {
	Low  int
	High int
}

// profileRates 单时段的到达率档案
type profileRates struct {
	NS rateRange // 南北进口到达率
	EW rateRange // 东西进口到达率
}

// timeProfiles 各时段需求档案
// 说明：早高峰南北向偏重，夜间整体低峰
var timeProfiles = map[entity.TimePeriod]profileRates{
	entity.PeriodMorning:   {NS: rateRange{3, 6}, EW: rateRange{2, 4}},
	entity.PeriodAfternoon: {NS: rateRange{2, 4}, EW: rateRange{2, 4}},
	entity.PeriodNight:     {NS: rateRange{1, 2}, EW: rateRange{0, 1}},
}

// periodCycle 时段轮换顺序（varied_time模式下全程三等分）
var periodCycle = []entity.TimePeriod{
	entity.PeriodMorning,
	entity.PeriodAfternoon,
	entity.PeriodNight,
}

// Generator 交通流生成器
// 功能：为每个路口每步产生到达车辆数与应急事件标志
// 说明：全部随机量取自显式传入的种子引擎，抽取顺序固定（逐路口先南北后东西再应急），
// 保证同种子逐位复现；应急事件按配置概率做伯努利抽取，核心只消费布尔结果
type Generator struct {
	intersections int32              // 路口数量
	totalSteps    int32              // 总步数，用于时段轮换分段
	period        entity.TimePeriod  // 固定时段（非轮换模式）
	varied        bool               // 是否按三段轮换时段
	emergencyRate float64            // 每路口每步应急概率
	engine        *randengine.Engine // 种子随机引擎
}

// New 创建交通流生成器
// 参数：cfg-路网与需求配置，totalSteps-总步数，engine-种子随机引擎
// 返回：初始化完成的生成器实例
func New(cfg config.Run, totalSteps int32, engine *randengine.Engine) *Generator {
	return &Generator{
		intersections: cfg.Intersections,
		totalSteps:    totalSteps,
		period:        entity.TimePeriod(cfg.Profile),
		varied:        cfg.VariedTime,
		emergencyRate: cfg.EmergencyRate,
		engine:        engine,
	}
}

// PeriodAt 获取指定步所处的时段
// 功能：轮换模式下全程三等分依次为早高峰/平峰/夜间，否则返回固定时段
func (g *Generator) PeriodAt(step int32) entity.TimePeriod {
	if !g.varied {
		return g.period
	}
	periodLength := g.totalSteps / 3
	if periodLength < 1 {
		periodLength = 1
	}
	return periodCycle[(step/periodLength)%3]
}

// Generate 生成一步的到达输入
// 功能：为每个路口抽取南北/东西到达车辆数与应急标志
// 参数：step-仿真步
// 返回：与路口一一对应（上游到下游）的到达输入
func (g *Generator) Generate(step int32) []entity.Arrival {
	period := g.PeriodAt(step)
	rates, ok := timeProfiles[period]
	if !ok {
		rates = timeProfiles[entity.PeriodAfternoon]
	}
	arrivals := make([]entity.Arrival, 0, g.intersections)
	for i := int32(0); i < g.intersections; i++ {
		arrivals = append(arrivals, entity.Arrival{
			Step:      step,
			Period:    period,
			NS:        g.engine.IntRange(rates.NS.Low, rates.NS.High),
			EW:        g.engine.IntRange(rates.EW.Low, rates.EW.High),
			Emergency: g.engine.PTrue(g.emergencyRate),
		})
	}
	return arrivals
}
