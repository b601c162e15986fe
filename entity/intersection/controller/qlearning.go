package controller

import (
	"fmt"

	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/utils/randengine"
)

// queueTrend 排队变化趋势
type queueTrend string

const (
	trendGrowing queueTrend = "growing" // 相对上次决策排队增长
	trendStable  queueTrend = "stable"  // 相对上次决策排队持平或下降
)

// queueBucket 排队数离散化桶
// 说明：离散化是有意的有损设计，保证状态空间有界；桶边界在同种子的多次运行间保持稳定
type queueBucket string

const (
	bucketLow  queueBucket = "low"  // 排队 < 4
	bucketMed  queueBucket = "med"  // 排队 < 10
	bucketHigh queueBucket = "high" // 排队 >= 10
)

// bucketOf 排队数离散化
func bucketOf(queue int) queueBucket {
	switch {
	case queue < 4:
		return bucketLow
	case queue < 10:
		return bucketMed
	default:
		return bucketHigh
	}
}

// stateKey 表格型Q学习的离散状态键
// 功能：由连续排队量与离散上下文确定性构造，作为Q表的键
type stateKey struct {
	BucketNS  queueBucket       // 南北排队桶
	BucketEW  queueBucket       // 东西排队桶
	TrendNS   queueTrend        // 南北排队趋势
	TrendEW   queueTrend        // 东西排队趋势
	Phase     entity.Phase      // 当前放行相位
	Period    entity.TimePeriod // 时段
	Emergency bool              // 应急标志
}

// QLearningController 表格型Q学习信控策略
// 功能：在固定离散动作集（绿灯时长候选）上做ε-贪心选择，按时间差分规则更新动作价值表
// 说明：Q表惰性增长，未见过的状态行初始化为全零；探索决策在决策记录中显式标记；
// 状态空间增长是被监测而非致命的条件，通过TableSize暴露给调用方
type QLearningController struct {
	actions []float64 // 离散动作集，声明顺序即平局裁决的规范顺序
	alpha   float64   // 学习率α
	gamma   float64   // 折扣因子γ
	epsilon float64   // ε-贪心探索概率（固定）

	q      map[stateKey][]float64 // 状态键->各动作价值（与actions对齐）
	engine *randengine.Engine     // 种子随机引擎，保证探索序列可复现

	lastKey     stateKey // 最近一次决策的状态键
	lastAction  int      // 最近一次决策的动作下标
	hasDecision bool     // 是否已有决策可供更新
	lastQueueNS int      // 上次决策时的南北排队，用于趋势判断
	lastQueueEW int      // 上次决策时的东西排队，用于趋势判断
}

// NewQLearningController 创建表格型Q学习信控策略
// 参数：cfg-Q学习配置，engine-种子随机引擎
// 返回：初始化完成的Q学习策略实例
func NewQLearningController(cfg config.QLearning, engine *randengine.Engine) *QLearningController {
	return &QLearningController{
		actions: cfg.Actions,
		alpha:   cfg.Alpha,
		gamma:   cfg.Gamma,
		epsilon: cfg.Epsilon,
		q:       make(map[stateKey][]float64),
		engine:  engine,
	}
}

// Name 获取策略名
func (c *QLearningController) Name() string {
	return "qlearning"
}

// stateKeyOf 构造离散状态键
// 功能：排队分桶、与上次决策排队比较得到趋势符号，拼合相位、时段与应急标志
func (c *QLearningController) stateKeyOf(state entity.TrafficState) stateKey {
	trendNS := trendStable
	if state.QueueNS > c.lastQueueNS {
		trendNS = trendGrowing
	}
	trendEW := trendStable
	if state.QueueEW > c.lastQueueEW {
		trendEW = trendGrowing
	}
	return stateKey{
		BucketNS:  bucketOf(state.QueueNS),
		BucketEW:  bucketOf(state.QueueEW),
		TrendNS:   trendNS,
		TrendEW:   trendEW,
		Phase:     state.Phase,
		Period:    state.Period,
		Emergency: state.Emergency,
	}
}

// ensure 确保状态行存在
// 说明：未见过的状态行初始化为全零（各动作价值均为0）
func (c *QLearningController) ensure(key stateKey) []float64 {
	row, ok := c.q[key]
	if !ok {
		row = make([]float64, len(c.actions))
		c.q[key] = row
	}
	return row
}

// greedy 贪心动作选择
// 功能：返回价值最高的动作下标
// 说明：严格大于比较，价值并列时保留规范顺序中靠前的动作（确定性平局裁决）
func (c *QLearningController) greedy(row []float64) int {
	best := 0
	for i := 1; i < len(row); i++ {
		if row[i] > row[best] {
			best = i
		}
	}
	return best
}

// Decide 产生绿灯时长决策
// 功能：对离散化状态做ε-贪心动作选择，解释中记录探索/利用、动作价值与表规模
// 参数：state-当前交通状态
// 返回：绿灯时长决策，探索决策以Exploration标记
func (c *QLearningController) Decide(state entity.TrafficState) entity.Decision {
	key := c.stateKeyOf(state)
	row := c.ensure(key)

	explore := c.engine.PTrue(c.epsilon)
	var action int
	var mode string
	if explore {
		action = c.engine.Intn(len(c.actions))
		mode = "exploring"
	} else {
		action = c.greedy(row)
		mode = "exploiting"
	}

	c.lastKey = key
	c.lastAction = action
	c.hasDecision = true
	c.lastQueueNS = state.QueueNS
	c.lastQueueEW = state.QueueEW

	return entity.Decision{
		Duration:    c.actions[action],
		Exploration: explore,
		Explanation: fmt.Sprintf(
			"qlearning: %s -> %.0fs green (q=%.3f, states=%d)",
			mode, c.actions[action], row[action], len(c.q)),
	}
}

// Learn 时间差分更新
// 功能：对最近一次决策的(s,a)执行 Q[s,a] += α·(r + γ·max_a' Q[s',a'] − Q[s,a])
// 参数：state-决策时状态（状态键以决策时缓存为准），reward-实际奖励，next-更新时刻状态
// 说明：首个决策产生前的反馈直接忽略；下一状态行不存在时先按全零创建
func (c *QLearningController) Learn(state entity.TrafficState, reward float64, next entity.TrafficState) {
	if !c.hasDecision {
		return
	}
	nextRow := c.ensure(c.stateKeyOf(next))
	nextBest := nextRow[c.greedy(nextRow)]

	row := c.q[c.lastKey]
	row[c.lastAction] += c.alpha * (reward + c.gamma*nextBest - row[c.lastAction])
}

// TableSize 获取Q表当前状态行数
// 说明：状态空间增长的监测口径，核心内不做干预
func (c *QLearningController) TableSize() int {
	return len(c.q)
}
