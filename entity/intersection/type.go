package intersection

import (
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity"
)

// 依赖倒置，表达intersection对信控策略实现的接口需求

// IController 信控策略接口
// 说明：固定配时/前馈估计器/表格型Q学习三种策略互换实现，路口持有任意一种
type IController interface {
	// 策略名
	Name() string
	// 产生绿灯时长决策
	Decide(state entity.TrafficState) entity.Decision
	// 奖励反馈，不学习的策略实现为空操作
	Learn(state entity.TrafficState, reward float64, next entity.TrafficState)
}

// IIntrospector 状态空间自省接口
// 说明：可选实现，暴露内部表规模供调用方监测（状态空间增长不是错误）
type IIntrospector interface {
	TableSize() int // 当前状态行数
}
