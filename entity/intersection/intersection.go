package intersection

import (
	"flag"
	"fmt"

	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity/intersection/controller"
)

var (
	emergencyGreenTime = flag.Float64("signal.emergency_green_time", 5, "应急放行的强制绿灯时长（秒）")
)

// runtime 路口运行时数据结构
// 功能：存储可被外部观测的路口状态，Prepare时整体拷贝为快照
type runtime struct {
	queueNS        int          // 南北进口排队
	queueEW        int          // 东西进口排队
	phase          entity.Phase // 当前放行相位
	phaseRemaining float64      // 当前相位剩余时长（秒）
	duration       float64      // 当前相位总时长（秒）
}

// Intersection 单路口信控状态机
// 功能：维护一个路口的排队、相位与相位计时，应用信控策略给出的绿灯时长，
// 服务车辆、计算奖励并在使用学习策略时做在线反馈
// 说明：状态为{南北放行, 东西放行}，应急覆盖可在任一状态下抢占；
// 相位切换只在相位计时归零的决策时刻发生，应急覆盖在控制器主动制造的相位边界上生效，
// 不会打断正在服务中的车辆
type Intersection struct {
	id          int32       // 路口ID
	serviceRate float64     // 绿灯方向每秒服务车辆数
	controller  IController // 绑定的信控策略

	runtime  runtime // 运行时数据
	snapshot runtime // 快照，Prepare时写入，供外部读取

	history        []entity.Decision // 决策历史，供可解释性输出消费
	lastThroughput int               // 最近一步的吞吐，用于上下游协同
}

// newIntersection 创建并初始化一个新的Intersection实例
// 功能：以零排队、南北放行、相位计时归零（首步即产生决策）初始化路口
// 参数：id-路口ID，ctrl-信控策略，serviceRate-绿灯方向每秒服务车辆数
// 返回：初始化完成的Intersection实例
func newIntersection(id int32, ctrl IController, serviceRate float64) *Intersection {
	return &Intersection{
		id:          id,
		serviceRate: serviceRate,
		controller:  ctrl,
		runtime:     runtime{phase: entity.PhaseNS},
		history:     make([]entity.Decision, 0),
	}
}

// prepare 准备阶段
// 功能：将运行时数据整体拷贝为快照，供外部并发读取
func (i *Intersection) prepare() {
	i.snapshot = i.runtime
}

// observe 构造当前交通状态快照
// 功能：组装供信控策略读取的瞬时状态
// 参数：period-当前时段，emergency-本步应急标志
func (i *Intersection) observe(period entity.TimePeriod, emergency bool) entity.TrafficState {
	return entity.TrafficState{
		QueueNS:   i.runtime.queueNS,
		QueueEW:   i.runtime.queueEW,
		Phase:     i.runtime.phase,
		Period:    period,
		Emergency: emergency,
	}
}

// step 推进一步
// 功能：执行一步内的完整路口逻辑
// 参数：arrival-本步到达输入（含协同修正），dt-时间步长（秒）
// 返回：本步运行记录
// 算法说明：
// 1. 到达车辆入队
// 2. 应急检查（先于一切）：强制放行排队较多的方向（并列时南北优先），
//    丢弃原相位剩余时间，强制固定应急绿灯时长，不询问策略，记录覆盖决策
// 3. 否则相位计时归零时询问策略产生新时长并翻转相位，这是唯一计入相位切换的时刻，
//    截停数取切换后变为红灯方向的排队车辆数
// 4. 按每步服务能力从放行方向服务车辆，排队绝不减到负数
// 5. 平均等待代理值取服务后两方向排队的均值
// 6. 计算奖励；非应急步将奖励反馈给策略做在线更新（应急覆盖不作为训练样本）
// 7. 相位计时递减，产出运行记录
func (i *Intersection) step(arrival entity.Arrival, dt float64) entity.StepRecord {
	i.runtime.queueNS += arrival.NS
	i.runtime.queueEW += arrival.EW

	state := i.observe(arrival.Period, arrival.Emergency)

	stops := 0
	emergencyHandled := false
	explanation := ""
	if arrival.Emergency {
		// 应急覆盖：放行排队较多的方向，并列时南北优先
		target := entity.PhaseNS
		if i.runtime.queueEW > i.runtime.queueNS {
			target = entity.PhaseEW
		}
		if target != i.runtime.phase {
			stops = i.waitingOnRed(target)
		}
		i.runtime.phase = target
		i.runtime.duration = *emergencyGreenTime
		i.runtime.phaseRemaining = *emergencyGreenTime
		d := entity.Decision{
			Duration: *emergencyGreenTime,
			Explanation: fmt.Sprintf(
				"emergency override: granted immediate green to %s approach (queues NS/EW=(%d,%d))",
				target, i.runtime.queueNS, i.runtime.queueEW),
		}
		i.history = append(i.history, d)
		explanation = d.Explanation
		emergencyHandled = true
		log.Debugf("intersection %d: %s", i.id, d.Explanation)
	} else if i.runtime.phaseRemaining <= 0 {
		d := i.controller.Decide(state)
		next := i.runtime.phase.Opposite()
		stops = i.waitingOnRed(next)
		i.runtime.phase = next
		i.runtime.duration = d.Duration
		i.runtime.phaseRemaining = d.Duration
		i.history = append(i.history, d)
		explanation = d.Explanation
	}

	servedNS, servedEW := 0, 0
	capacity := int(i.serviceRate * dt)
	if i.runtime.phase == entity.PhaseNS {
		servedNS = min(i.runtime.queueNS, capacity)
		i.runtime.queueNS -= servedNS
	} else {
		servedEW = min(i.runtime.queueEW, capacity)
		i.runtime.queueEW -= servedEW
	}
	throughput := servedNS + servedEW

	// 平均等待代理值：服务后两方向排队的均值（不追踪单车等待时间）
	avgWait := float64(i.runtime.queueNS+i.runtime.queueEW) / 2

	reward := controller.Reward(throughput, avgWait, stops)
	if !emergencyHandled {
		i.controller.Learn(state, reward, i.observe(arrival.Period, false))
	}

	i.runtime.phaseRemaining -= dt
	i.lastThroughput = throughput

	return entity.StepRecord{
		Step:             arrival.Step,
		Intersection:     i.id,
		Period:           arrival.Period,
		PhaseUsed:        i.runtime.phase,
		Duration:         i.runtime.duration,
		QueueNS:          i.runtime.queueNS,
		QueueEW:          i.runtime.queueEW,
		ServedNS:         servedNS,
		ServedEW:         servedEW,
		Throughput:       throughput,
		AvgWaitProxy:     avgWait,
		Stops:            stops,
		EmergencyHandled: emergencyHandled,
		Explanation:      explanation,
	}
}

// waitingOnRed 计算给定放行相位下红灯方向的排队车辆数
// 说明：相位切换时被截停的车辆即切换后红灯方向的排队
func (i *Intersection) waitingOnRed(green entity.Phase) int {
	if green == entity.PhaseNS {
		return i.runtime.queueEW
	}
	return i.runtime.queueNS
}

// ID 获取路口的唯一标识符
func (i *Intersection) ID() int32 {
	if i == nil {
		return -1
	}
	return i.id
}

// QueueNS 获取快照中的南北排队
func (i *Intersection) QueueNS() int {
	return i.snapshot.queueNS
}

// QueueEW 获取快照中的东西排队
func (i *Intersection) QueueEW() int {
	return i.snapshot.queueEW
}

// Phase 获取快照中的放行相位
func (i *Intersection) Phase() entity.Phase {
	return i.snapshot.phase
}

// PhaseRemaining 获取快照中的相位剩余时长
func (i *Intersection) PhaseRemaining() float64 {
	return i.snapshot.phaseRemaining
}

// Controller 获取绑定的信控策略
func (i *Intersection) Controller() IController {
	return i.controller
}

// DecisionHistory 获取决策历史
// 功能：返回按时间顺序排列的全部决策，供日志与可解释性展示消费
// 说明：仅在产生新相位时长的时刻（含应急覆盖时刻）追加，不是每步都有
func (i *Intersection) DecisionHistory() []entity.Decision {
	return i.history
}
