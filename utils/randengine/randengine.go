// 随机数引擎，包装了golang.org/x/exp/rand，提供了一些常用的随机数生成方法
package randengine

import (
	"flag"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎
// 功能：为仿真提供可复现的随机数生成，所有随机行为（到达、应急事件、探索）均从显式传递的引擎中抽取
// 说明：基于golang.org/x/exp/rand库；同一种子加参数必须产生逐位一致的决策与记录序列，因此不使用任何全局随机源
type Engine struct {
	*rand.Rand // 底层随机数生成器
}

// New 创建随机数引擎
// 功能：初始化一个新的随机数引擎实例
// 参数：seed-随机数种子
// 返回：随机数引擎指针
// 说明：种子偏移量允许在不修改代码的情况下整体调整随机数序列
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// PTrue 以指定概率返回true
// 功能：根据给定概率返回布尔值，实现伯努利分布，用于模拟概率事件（如应急车辆出现、ε-贪心探索）
// 参数：p-返回true的概率（0.0到1.0之间）
// 返回：true或false
func (e *Engine) PTrue(p float64) bool {
	return e.Float64() < p
}

// IntRange 在[low, high]闭区间内随机生成整数
// 功能：按均匀分布抽取到达车辆数等离散量
// 参数：low-下界（含），high-上界（含）
// 返回：[low, high]内的随机整数
// 说明：low大于high时直接返回low，视作退化区间
func (e *Engine) IntRange(low, high int) int {
	if low >= high {
		return low
	}
	return low + e.Intn(high-low+1)
}
