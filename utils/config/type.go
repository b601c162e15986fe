package config

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
// 功能：定义仿真时间控制参数
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒）
}

// Control 全局控制配置
type Control struct {
	Step ControlStep `yaml:"step"` // 时间控制
	Seed uint64      `yaml:"seed"` // 运行种子，同一种子加参数产生逐位一致的运行结果
}

// Run 一次仿真运行的路网与需求配置
type Run struct {
	Intersections int32    `yaml:"intersections"`         // 路口数量（上游到下游顺序排列）
	Controllers   []string `yaml:"controllers"`           // 参与对比的信控策略名列表（fixed/estimator/qlearning）
	Profile       string   `yaml:"profile"`               // 固定时段（varied_time为false时生效）
	VariedTime    bool     `yaml:"varied_time,omitempty"` // 是否按早高峰/平峰/夜间三段轮换时段
	EmergencyRate float64  `yaml:"emergency_rate"`        // 每路口每步出现应急车辆的概率
	ServiceRate   float64  `yaml:"service_rate"`          // 绿灯方向每秒服务车辆数
}

// FixedPlan 固定配时方案（按时段查表）
type FixedPlan struct {
	Morning   float64 `yaml:"morning"`   // 早高峰绿灯时长（秒）
	Afternoon float64 `yaml:"afternoon"` // 平峰绿灯时长（秒）
	Night     float64 `yaml:"night"`     // 夜间绿灯时长（秒）
	Default   float64 `yaml:"default"`   // 未知时段的兜底时长（秒）
}

// Estimator 在线学习前馈估计器配置
type Estimator struct {
	Hidden      int     `yaml:"hidden"`       // 隐层宽度
	LR          float64 `yaml:"lr"`           // 学习率
	MinDuration float64 `yaml:"min_duration"` // 输出时长下界（秒），硬性安全约束
	MaxDuration float64 `yaml:"max_duration"` // 输出时长上界（秒），硬性安全约束
}

// QLearning 表格型Q学习配置
type QLearning struct {
	Actions []float64 `yaml:"actions"` // 离散动作集（绿灯时长候选，声明顺序即平局裁决顺序）
	Alpha   float64   `yaml:"alpha"`   // 学习率α
	Gamma   float64   `yaml:"gamma"`   // 折扣因子γ
	Epsilon float64   `yaml:"epsilon"` // ε-贪心探索概率（固定值）
}

// Controller 信控策略参数配置
type Controller struct {
	Fixed     FixedPlan `yaml:"fixed"`     // 固定配时
	Estimator Estimator `yaml:"estimator"` // 前馈估计器
	QLearning QLearning `yaml:"qlearning"` // Q学习
}

// Mongo MongoDB运行日志输出配置
type Mongo struct {
	URI string `yaml:"uri,omitempty"` // 连接字符串，为空则禁用MongoDB输出
	DB  string `yaml:"db,omitempty"`  // 数据库名
	Col string `yaml:"col,omitempty"` // 集合名
}

// Output 运行日志输出配置
// 说明：所有输出均在一次运行结束后进行，决策路径中不做I/O
type Output struct {
	CSV    string `yaml:"csv,omitempty"`    // CSV文件路径，为空则禁用
	SQLite string `yaml:"sqlite,omitempty"` // SQLite数据库路径，为空则禁用
	Mongo  Mongo  `yaml:"mongo,omitempty"`  // MongoDB输出
}

// Config 仿真配置
type Config struct {
	Control    Control    `yaml:"control"`
	Run        Run        `yaml:"run"`
	Controller Controller `yaml:"controller"`
	Output     Output     `yaml:"output,omitempty"`
}
