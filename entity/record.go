package entity

// TrafficState 单个路口在一次决策时可观测的交通状态
// 功能：提供给信控策略读取的瞬时状态快照，每次决策前构造
// 说明：排队数不会为负；任意时刻有且仅有一个放行相位
type TrafficState struct {
	QueueNS   int        // 南北进口排队车辆数
	QueueEW   int        // 东西进口排队车辆数
	Phase     Phase      // 当前放行相位
	Period    TimePeriod // 当前时段
	Emergency bool       // 本步是否出现应急车辆
}

// Decision 信控策略的一次决策输出
// 功能：记录一次绿灯时长决策及其可解释性说明
// 说明：决策产生后不可变，追加到所属路口的决策历史中
type Decision struct {
	Duration    float64 // 绿灯时长（秒），受策略各自的上下界约束
	Explanation string  // 人类可读的决策解释
	Exploration bool    // 是否来自随机探索（而非习得/静态规则）
}

// Arrival 单个路口一步的外部到达输入
// 功能：由交通流生成器产生，描述一步内各进口的到达车辆与应急事件
type Arrival struct {
	Step      int32      // 所属仿真步
	Period    TimePeriod // 当前时段
	NS        int        // 南北进口到达车辆数
	EW        int        // 东西进口到达车辆数
	Emergency bool       // 是否出现应急车辆
}

// StepRecord 单个路口一步的运行记录
// 功能：记录一步内的服务、排队与决策结果，交由外部聚合与落盘
type StepRecord struct {
	Step             int32      // 仿真步
	Intersection     int32      // 路口ID
	Period           TimePeriod // 时段
	PhaseUsed        Phase      // 本步放行相位
	Duration         float64    // 当前相位绿灯时长
	QueueNS          int        // 服务后南北排队
	QueueEW          int        // 服务后东西排队
	ServedNS         int        // 南北方向服务车辆数
	ServedEW         int        // 东西方向服务车辆数
	Throughput       int        // 本步服务总车辆数
	AvgWaitProxy     float64    // 平均等待代理值
	Stops            int        // 相位切换时被截停的车辆数
	EmergencyHandled bool       // 本步是否处理了应急事件
	Explanation      string     // 本步对应的决策解释（无新决策时为空）
}
