package controller

import (
	"fmt"

	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/utils/config"
)

// FixedController 固定配时信控策略
// 功能：按时段查表返回静态绿灯时长，无内部状态，不学习
// 说明：决策完全确定，作为自适应策略的对比基线
type FixedController struct {
	plan     map[entity.TimePeriod]float64 // 时段->绿灯时长映射表
	fallback float64                       // 未知时段的兜底时长
}

// NewFixedController 创建固定配时信控策略
// 参数：cfg-固定配时方案配置
// 返回：初始化完成的固定配时策略实例
func NewFixedController(cfg config.FixedPlan) *FixedController {
	return &FixedController{
		plan: map[entity.TimePeriod]float64{
			entity.PeriodMorning:   cfg.Morning,
			entity.PeriodAfternoon: cfg.Afternoon,
			entity.PeriodNight:     cfg.Night,
		},
		fallback: cfg.Default,
	}
}

// Name 获取策略名
func (c *FixedController) Name() string {
	return "fixed"
}

// Decide 按时段查表产生绿灯时长决策
// 功能：查找当前时段对应的静态配时，解释中记录时段与命中的方案值
// 参数：state-当前交通状态（仅时段字段参与决策）
// 返回：绿灯时长决策
func (c *FixedController) Decide(state entity.TrafficState) entity.Decision {
	duration, ok := c.plan[state.Period]
	if !ok {
		duration = c.fallback
	}
	return entity.Decision{
		Duration:    duration,
		Explanation: fmt.Sprintf("fixed plan: period=%s matched profile %.0fs", state.Period, duration),
	}
}

// Learn 学习接口实现
// 说明：固定配时不自适应，忽略全部奖励反馈
func (c *FixedController) Learn(state entity.TrafficState, reward float64, next entity.TrafficState) {
}
