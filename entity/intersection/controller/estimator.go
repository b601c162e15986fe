package controller

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/utils/randengine"
)

const (
	estimatorInputSize  = 5   // 输入特征维数：南北排队/东西排队/相位/时段/应急
	estimatorQueueNorm  = 30  // 排队数归一化分母，超出按1截断
	estimatorInitRange  = 0.5 // 权重初始化区间[-0.5, 0.5]
	estimatorRewardNorm = 20  // 奖励压缩分母，压缩到[-1, 1]
	estimatorTargetStep = 0.3 // 奖励信号向目标输出的推进步长
)

// EstimatorController 在线学习前馈估计器信控策略
// 功能：以两层前馈函数逼近器将交通状态映射为绿灯时长，每步按观测奖励做一次在线梯度更新
// 说明：输出经饱和非线性并仿射缩放到[minDur, maxDur]，无论权重如何时长绝不越界（硬性安全约束）；
// 前向出现非有限值时以最近一次有效输出替代并记录，绝不向外传播NaN
type EstimatorController struct {
	hidden         int     // 隐层宽度
	lr             float64 // 学习率
	minDur, maxDur float64 // 时长上下界（秒）

	w1 [][]float64 // 输入->隐层权重
	b1 []float64   // 隐层偏置
	w2 []float64   // 隐层->输出权重
	b2 float64     // 输出偏置

	lastFeatures []float64 // 最近一次决策的输入特征，供在线更新重放
	lastGood     float64   // 最近一次有效的归一化输出，数值异常时回退使用
	hasDecision  bool      // 是否已有决策可供学习
	instability  int       // 数值异常发生次数（可观测，不致命）
}

// NewEstimatorController 创建前馈估计器信控策略
// 功能：初始化网络结构并用种子引擎在[-0.5, 0.5]内均匀初始化权重
// 参数：cfg-估计器配置，engine-种子随机引擎（保证同种子逐位复现）
// 返回：初始化完成的估计器策略实例
func NewEstimatorController(cfg config.Estimator, engine *randengine.Engine) *EstimatorController {
	c := &EstimatorController{
		hidden:   cfg.Hidden,
		lr:       cfg.LR,
		minDur:   cfg.MinDuration,
		maxDur:   cfg.MaxDuration,
		w1:       make([][]float64, cfg.Hidden),
		b1:       make([]float64, cfg.Hidden),
		w2:       make([]float64, cfg.Hidden),
		lastGood: 0.5, // 未有有效输出前回退到量程中点
	}
	for i := range c.w1 {
		c.w1[i] = make([]float64, estimatorInputSize)
		for j := range c.w1[i] {
			c.w1[i][j] = (engine.Float64()*2 - 1) * estimatorInitRange
		}
		c.w2[i] = (engine.Float64()*2 - 1) * estimatorInitRange
	}
	return c
}

// Name 获取策略名
func (c *EstimatorController) Name() string {
	return "estimator"
}

// sigmoid 饱和非线性
func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// encode 将交通状态编码为有界特征向量
// 功能：[排队NS/30截断, 排队EW/30截断, 相位标志, 时段权重, 应急标志]，各分量均落在[0, 1]
func (c *EstimatorController) encode(state entity.TrafficState) []float64 {
	ns := math.Min(1, float64(state.QueueNS)/estimatorQueueNorm)
	ew := math.Min(1, float64(state.QueueEW)/estimatorQueueNorm)
	phase := 0.0
	if state.Phase == entity.PhaseNS {
		phase = 1.0
	}
	emergency := 0.0
	if state.Emergency {
		emergency = 1.0
	}
	return []float64{ns, ew, phase, state.Period.Encode(), emergency}
}

// forward 前向计算
// 功能：计算归一化输出（0..1）与隐层激活
// 参数：features-输入特征向量
// 返回：predNorm-归一化输出，hiddenOut-隐层激活（供反向传播使用）
func (c *EstimatorController) forward(features []float64) (predNorm float64, hiddenOut []float64) {
	hiddenOut = make([]float64, c.hidden)
	for i := 0; i < c.hidden; i++ {
		s := c.b1[i]
		for j := 0; j < estimatorInputSize; j++ {
			s += c.w1[i][j] * features[j]
		}
		hiddenOut[i] = sigmoid(s)
	}
	raw := c.b2
	for i := 0; i < c.hidden; i++ {
		raw += c.w2[i] * hiddenOut[i]
	}
	return sigmoid(raw), hiddenOut
}

// Decide 产生绿灯时长决策
// 功能：编码状态、前向计算并仿射缩放到时长区间，解释中记录排队、时段与应急输入
// 参数：state-当前交通状态
// 返回：绿灯时长决策（严格落在[minDur, maxDur]内）
// 说明：前向输出非有限时回退到最近一次有效输出并告警计数
func (c *EstimatorController) Decide(state entity.TrafficState) entity.Decision {
	features := c.encode(state)
	predNorm, _ := c.forward(features)
	if math.IsNaN(predNorm) || math.IsInf(predNorm, 0) {
		c.instability++
		log.Warnf("estimator: non-finite output, falling back to last good %.4f", c.lastGood)
		predNorm = c.lastGood
	} else {
		c.lastGood = predNorm
	}
	duration := lo.Clamp(c.minDur+(c.maxDur-c.minDur)*predNorm, c.minDur, c.maxDur)
	c.lastFeatures = features
	c.hasDecision = true
	return entity.Decision{
		Duration: duration,
		Explanation: fmt.Sprintf(
			"estimator: queues NS/EW=(%d,%d), period=%s, emergency=%v -> %.1fs",
			state.QueueNS, state.QueueEW, state.Period, state.Emergency, duration),
	}
}

// Learn 在线梯度更新
// 功能：以观测奖励构造有界目标并对全部权重做一次梯度下降
// 参数：state-决策时状态（特征以决策时缓存为准），reward-实际奖励，next-更新时刻状态
// 算法说明：
// 1. 重放最近一次决策特征的前向计算
// 2. 奖励压缩：scaled = clamp(reward/20, -1, 1)
// 3. 目标构造：target = clamp(pred + 0.3*scaled, 0, 1)
// 4. 平方误差对输出、隐层、输入层权重反向传播，步长为固定学习率
// 说明：更新不会使后续输出越界（Decide前向后始终重新截断）
func (c *EstimatorController) Learn(state entity.TrafficState, reward float64, next entity.TrafficState) {
	if !c.hasDecision {
		return
	}
	predNorm, hiddenOut := c.forward(c.lastFeatures)
	if math.IsNaN(predNorm) || math.IsInf(predNorm, 0) {
		c.instability++
		log.Warnf("estimator: non-finite output during update, skipping")
		return
	}
	scaled := lo.Clamp(reward/estimatorRewardNorm, -1, 1)
	target := lo.Clamp(predNorm+estimatorTargetStep*scaled, 0, 1)
	errOut := predNorm - target

	gradOut := errOut * predNorm * (1 - predNorm)
	for i := 0; i < c.hidden; i++ {
		gradHidden := gradOut * c.w2[i] * hiddenOut[i] * (1 - hiddenOut[i])
		c.w2[i] -= c.lr * gradOut * hiddenOut[i]
		for j := 0; j < estimatorInputSize; j++ {
			c.w1[i][j] -= c.lr * gradHidden * c.lastFeatures[j]
		}
		c.b1[i] -= c.lr * gradHidden
	}
	c.b2 -= c.lr * gradOut
}

// InstabilityCount 获取数值异常发生次数
// 说明：监测项，供调用方决定是否干预
func (c *EstimatorController) InstabilityCount() int {
	return c.instability
}
