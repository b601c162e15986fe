package entity

import "fmt"

// Phase 信号灯放行方向
// 功能：表示当前绿灯放行的进口方向（南北/东西），任意时刻有且仅有一个方向放行
type Phase int32

const (
	PhaseNS Phase = iota // 南北方向放行
	PhaseEW              // 东西方向放行
)

// Opposite 获取对向相位
// 功能：返回与当前相位相反的放行方向，用于相位切换
func (p Phase) Opposite() Phase {
	if p == PhaseNS {
		return PhaseEW
	}
	return PhaseNS
}

func (p Phase) String() string {
	switch p {
	case PhaseNS:
		return "NS"
	case PhaseEW:
		return "EW"
	default:
		return fmt.Sprintf("Phase(%d)", int32(p))
	}
}

// TimePeriod 时段类型（早高峰/平峰/夜间）
// 功能：描述当前需求时段，决定固定配时方案与到达率分布
type TimePeriod string

const (
	PeriodMorning   TimePeriod = "morning"   // 早高峰
	PeriodAfternoon TimePeriod = "afternoon" // 午后平峰
	PeriodNight     TimePeriod = "night"     // 夜间低峰
)

// Valid 判断时段取值是否合法
func (t TimePeriod) Valid() bool {
	switch t {
	case PeriodMorning, PeriodAfternoon, PeriodNight:
		return true
	default:
		return false
	}
}

// Encode 将时段编码为有界标量特征
// 功能：为函数逼近器提供时段的数值编码（早高峰1.0/平峰0.5/夜间0.2）
// 说明：未知时段按平峰处理
func (t TimePeriod) Encode() float64 {
	switch t {
	case PeriodMorning:
		return 1.0
	case PeriodNight:
		return 0.2
	default:
		return 0.5
	}
}
