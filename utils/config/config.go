package config

import (
	"fmt"

	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity"
)

// RuntimeConfig 运行时配置
// 功能：存储校验并填充默认值后的仿真配置
// 说明：所有非法参数在构造时立即报错，绝不静默修正（fail fast）
type RuntimeConfig struct {
	All Config // 全部配置
	C   Control
	Run Run
}

// 各配置项默认值
var defaultConfig = Config{
	Control: Control{
		Step: ControlStep{Total: 200, Interval: 1},
		Seed: 7,
	},
	Run: Run{
		Intersections: 2,
		Controllers:   []string{"fixed"},
		Profile:       string(entity.PeriodAfternoon),
		EmergencyRate: 0.02,
		ServiceRate:   1,
	},
	Controller: Controller{
		Fixed:     FixedPlan{Morning: 12, Afternoon: 10, Night: 6, Default: 10},
		Estimator: Estimator{Hidden: 6, LR: 0.01, MinDuration: 4, MaxDuration: 16},
		QLearning: QLearning{Actions: []float64{10, 12, 14}, Alpha: 0.08, Gamma: 0.9, Epsilon: 0.03},
	},
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：填充默认值并校验配置合法性
// 参数：config-原始配置对象
// 返回：运行时配置指针与校验错误
// 算法说明：
// 1. 填充默认值：零值字段替换为默认配置
// 2. 校验时间控制：总步数与步长必须为正
// 3. 校验路网与需求：路口数≥1、应急概率在[0,1]、服务率为正
// 4. 校验策略参数：时长上下界、学习率、折扣、探索率、动作集
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	rc := &RuntimeConfig{}

	if config.Control.Step.Total == 0 {
		config.Control.Step = defaultConfig.Control.Step
	}
	if config.Control.Step.Interval == 0 {
		config.Control.Step.Interval = defaultConfig.Control.Step.Interval
	}
	if config.Control.Seed == 0 {
		config.Control.Seed = defaultConfig.Control.Seed
	}
	if config.Run.Intersections == 0 {
		config.Run.Intersections = defaultConfig.Run.Intersections
	}
	if len(config.Run.Controllers) == 0 {
		config.Run.Controllers = defaultConfig.Run.Controllers
	}
	if config.Run.Profile == "" {
		config.Run.Profile = defaultConfig.Run.Profile
	}
	if config.Run.ServiceRate == 0 {
		config.Run.ServiceRate = defaultConfig.Run.ServiceRate
	}
	if config.Controller.Fixed == (FixedPlan{}) {
		config.Controller.Fixed = defaultConfig.Controller.Fixed
	}
	if config.Controller.Estimator == (Estimator{}) {
		config.Controller.Estimator = defaultConfig.Controller.Estimator
	}
	if len(config.Controller.QLearning.Actions) == 0 {
		config.Controller.QLearning = defaultConfig.Controller.QLearning
	}

	if config.Control.Step.Total < 0 {
		return nil, fmt.Errorf("config: step total %d must be positive", config.Control.Step.Total)
	}
	if config.Control.Step.Interval <= 0 {
		return nil, fmt.Errorf("config: step interval %f must be positive", config.Control.Step.Interval)
	}
	if config.Run.Intersections < 1 {
		return nil, fmt.Errorf("config: intersection count %d must be >= 1", config.Run.Intersections)
	}
	if !entity.TimePeriod(config.Run.Profile).Valid() {
		return nil, fmt.Errorf("config: unknown time profile %q", config.Run.Profile)
	}
	if config.Run.EmergencyRate < 0 || config.Run.EmergencyRate > 1 {
		return nil, fmt.Errorf("config: emergency rate %f must be in [0, 1]", config.Run.EmergencyRate)
	}
	if config.Run.ServiceRate <= 0 {
		return nil, fmt.Errorf("config: service rate %f must be positive", config.Run.ServiceRate)
	}
	e := config.Controller.Estimator
	if e.MinDuration >= e.MaxDuration {
		return nil, fmt.Errorf("config: estimator duration bounds [%f, %f] must satisfy min < max", e.MinDuration, e.MaxDuration)
	}
	if e.Hidden < 1 {
		return nil, fmt.Errorf("config: estimator hidden width %d must be >= 1", e.Hidden)
	}
	if e.LR <= 0 {
		return nil, fmt.Errorf("config: estimator learning rate %f must be positive", e.LR)
	}
	q := config.Controller.QLearning
	for _, a := range q.Actions {
		if a <= 0 {
			return nil, fmt.Errorf("config: qlearning action %f must be positive", a)
		}
	}
	if q.Alpha <= 0 || q.Alpha > 1 {
		return nil, fmt.Errorf("config: qlearning alpha %f must be in (0, 1]", q.Alpha)
	}
	if q.Gamma < 0 || q.Gamma > 1 {
		return nil, fmt.Errorf("config: qlearning gamma %f must be in [0, 1]", q.Gamma)
	}
	if q.Epsilon < 0 || q.Epsilon > 1 {
		return nil, fmt.Errorf("config: qlearning epsilon %f must be in [0, 1]", q.Epsilon)
	}

	rc.All = config
	rc.C = config.Control
	rc.Run = config.Run
	return rc, nil
}
