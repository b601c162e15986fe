package intersection

import (
	"flag"
	"fmt"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity"
)

var (
	coordinationFraction = flag.Float64("signal.coordination_fraction", 0.6, "上游路口当步吞吐传导为下游同步到达的比例")
)

// Network 路口网络
// 功能：持有按上游到下游排列的路口序列，在相邻路口间应用协同规则并聚合运行记录
// 说明：下标0为最上游；下游路口的有效到达 = 自身生成到达 + 协同比例×上游路口当步吞吐，
// 因此一步内必须严格按上游到下游的顺序处理
type Network struct {
	intersections []*Intersection

	totalThroughput  int // 累计吞吐
	totalEmergencies int // 累计处理的应急事件数
}

// NewNetwork 创建路口网络
// 功能：构造N个路口并为每个路口绑定一个信控策略实例
// 参数：count-路口数量，controllers-与路口一一对应的策略实例，serviceRate-绿灯方向每秒服务车辆数
// 返回：初始化完成的Network实例与校验错误
// 说明：并发对比运行时各Network必须独占策略状态，因此策略实例不允许为空或跨网络共享
func NewNetwork(count int32, controllers []IController, serviceRate float64) (*Network, error) {
	if count < 1 {
		return nil, fmt.Errorf("network: intersection count %d must be >= 1", count)
	}
	if len(controllers) != int(count) {
		return nil, fmt.Errorf("network: got %d controllers for %d intersections", len(controllers), count)
	}
	if serviceRate <= 0 {
		return nil, fmt.Errorf("network: service rate %f must be positive", serviceRate)
	}
	for idx, ctrl := range controllers {
		if ctrl == nil {
			return nil, fmt.Errorf("network: nil controller for intersection %d", idx)
		}
	}
	n := &Network{
		intersections: lo.Map(controllers, func(ctrl IController, idx int) *Intersection {
			return newIntersection(int32(idx), ctrl, serviceRate)
		}),
	}
	return n, nil
}

// Prepare 准备阶段，处理所有路口的准备工作
// 功能：对所有路口执行快照拷贝
// 说明：快照只涉及路口自身状态，使用并行处理不影响确定性
func (n *Network) Prepare() {
	parallel.GoFor(n.intersections, func(i *Intersection) { i.prepare() })
}

// Step 推进一步
// 功能：对全部路口按上游到下游顺序执行一步，应用协同规则并聚合运行记录
// 参数：arrivals-各路口本步到达输入（与路口一一对应），dt-时间步长（秒）
// 返回：本步各路口运行记录与输入校验错误
// 算法说明：
// 1. 校验到达输入数量与路口数一致
// 2. 按上游到下游顺序逐路口处理；对除最上游外的路口，先将
//    协同比例×上游当步吞吐 加到该路口的南北到达上，再执行该路口的step
// 3. 聚合吞吐与应急计数
// 说明：协同依赖的是上游本步（而非上一步）的吞吐，处理顺序构成步内依赖
func (n *Network) Step(arrivals []entity.Arrival, dt float64) ([]entity.StepRecord, error) {
	if len(arrivals) != len(n.intersections) {
		return nil, fmt.Errorf("network: got %d arrivals for %d intersections", len(arrivals), len(n.intersections))
	}
	records := make([]entity.StepRecord, 0, len(n.intersections))
	inflow := 0
	for idx, inter := range n.intersections {
		arrival := arrivals[idx]
		arrival.NS += inflow
		record := inter.step(arrival, dt)
		records = append(records, record)

		inflow = int(*coordinationFraction * float64(record.Throughput))
		n.totalThroughput += record.Throughput
		if record.EmergencyHandled {
			n.totalEmergencies++
		}
	}
	return records, nil
}

// Intersections 获取按上游到下游排列的路口序列
func (n *Network) Intersections() []*Intersection {
	return n.intersections
}

// Get 根据ID获取路口实例
// 功能：通过路口ID查找对应的路口对象，如果不存在则panic
func (n *Network) Get(id int32) *Intersection {
	if id < 0 || int(id) >= len(n.intersections) {
		log.Panicf("no id %d in network data", id)
		return nil
	}
	return n.intersections[id]
}

// TotalThroughput 获取累计吞吐
func (n *Network) TotalThroughput() int {
	return n.totalThroughput
}

// TotalEmergencies 获取累计处理的应急事件数
func (n *Network) TotalEmergencies() int {
	return n.totalEmergencies
}
