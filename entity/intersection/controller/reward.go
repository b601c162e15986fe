package controller

// stopPenaltyWeight 相位切换惩罚权重
// 说明：吞吐是主目标按线性奖励，等待按服务水平线性惩罚，相位切换只按较小权重惩罚（平滑性目标）
const stopPenaltyWeight = 0.3

// Reward 计算一步的标量奖励
// 功能：将一步的吞吐、平均等待与截停数映射为标量奖励，reward = throughput - avgWait - 0.3 * stops
// 参数：throughput-本步服务车辆数，avgWait-平均等待代理值，stops-相位切换截停车辆数
// 返回：标量奖励
// 说明：纯函数，无副作用；所有策略共用同一奖励，保证横向对比公平
func Reward(throughput int, avgWait float64, stops int) float64 {
	return float64(throughput) - avgWait - stopPenaltyWeight*float64(stops)
}
