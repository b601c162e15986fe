package task

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/google/uuid"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/clock"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity/intersection"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity/intersection/controller"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/output"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/utils/generator"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/utils/metrics"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/utils/randengine"
)

const (
	SelfName = "signalopt" // 本程序名，用于日志与输出标识

	// 各组件种子偏移，保证组件间随机流相互独立且同种子逐位复现
	seedOffsetEstimator = 100 // 估计器权重初始化
	seedOffsetQLearning = 200 // Q学习探索
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// RunResult 单策略一次运行的结果
// 功能：汇集一次运行的全部记录、决策历史与指标，供落盘与对比消费
type RunResult struct {
	Controller string              // 策略名
	RunID      string              // 运行标识（UUID），区分同一存储中的多次运行
	Records    []entity.StepRecord // 全部运行记录
	Histories  [][]entity.Decision // 各路口的决策历史（上游到下游）
	Summary    metrics.Summary     // 指标汇总
}

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有配置与状态，驱动单策略或多策略对比运行
// 说明：对比运行的各策略各自独占Network、策略状态与随机引擎，互不共享可变状态
type Context struct {
	runtimeConfig *config.RuntimeConfig
}

// NewContext 创建新的仿真任务上下文
// 功能：校验配置并初始化上下文
// 参数：c-配置对象
// 返回：初始化完成的Context实例与配置错误
// 说明：所有策略名在此处提前校验，运行阶段不再出现配置类错误
func NewContext(c config.Config) (*Context, error) {
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		return nil, err
	}
	for _, name := range rc.Run.Controllers {
		if _, err := buildController(name, rc, 0); err != nil {
			return nil, err
		}
	}
	return &Context{runtimeConfig: rc}, nil
}

// RuntimeConfig 获取运行时配置
func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

// buildController 按名字构造信控策略实例
// 功能：为指定路口创建独占的策略实例，学习策略的随机引擎按运行种子+组件偏移+路口ID派生
// 参数：name-策略名，rc-运行时配置，id-路口ID
// 返回：策略实例与未知策略名错误
func buildController(name string, rc *config.RuntimeConfig, id int32) (intersection.IController, error) {
	switch name {
	case "fixed":
		return controller.NewFixedController(rc.All.Controller.Fixed), nil
	case "estimator":
		engine := randengine.New(rc.C.Seed + seedOffsetEstimator + uint64(id))
		return controller.NewEstimatorController(rc.All.Controller.Estimator, engine), nil
	case "qlearning":
		engine := randengine.New(rc.C.Seed + seedOffsetQLearning + uint64(id))
		return controller.NewQLearningController(rc.All.Controller.QLearning, engine), nil
	default:
		return nil, fmt.Errorf("task: unknown controller name %q", name)
	}
}

// runOne 执行单策略的一次完整运行
// 功能：构造生成器、路口网络与策略实例，推进全部仿真步并汇总结果
// 参数：name-策略名
// 返回：运行结果
// 算法说明：
// 1. 以运行种子构造生成器引擎（各策略运行使用相同到达流，保证对比公平）
// 2. 为每个路口构造独占的策略实例
// 3. 逐步执行：Prepare快照 -> 生成到达 -> Network.Step -> 收集记录
// 4. 汇总指标，输出Q表规模等自省信息
// 说明：配置已在NewContext校验，此处的失败属于编程错误，直接panic
func (ctx *Context) runOne(name string) *RunResult {
	rc := ctx.runtimeConfig
	ck := clock.New(rc.C.Step)
	gen := generator.New(rc.Run, rc.C.Step.Total, randengine.New(rc.C.Seed))

	controllers := make([]intersection.IController, 0, rc.Run.Intersections)
	for id := int32(0); id < rc.Run.Intersections; id++ {
		ctrl, err := buildController(name, rc, id)
		if err != nil {
			log.Panicf("build controller error: %v", err)
		}
		controllers = append(controllers, ctrl)
	}
	net, err := intersection.NewNetwork(rc.Run.Intersections, controllers, rc.Run.ServiceRate)
	if err != nil {
		log.Panicf("build network error: %v", err)
	}

	records := make([]entity.StepRecord, 0, int(rc.C.Step.Total)*int(rc.Run.Intersections))
	for !ck.Done() {
		if ck.InternalStep%int32(*heartBeatInterval) == 0 {
			log.Infof("[%s] STEP: %d(%s)", name, ck.InternalStep, ck)
		}
		net.Prepare()
		stepRecords, err := net.Step(gen.Generate(ck.InternalStep), ck.DT)
		if err != nil {
			log.Panicf("network step error: %v", err)
		}
		records = append(records, stepRecords...)
		ck.Tick()
	}

	result := &RunResult{
		Controller: name,
		RunID:      uuid.New().String(),
		Records:    records,
		Summary:    metrics.Summarize(records),
	}
	for _, inter := range net.Intersections() {
		result.Histories = append(result.Histories, inter.DecisionHistory())
		if introspector, ok := inter.Controller().(intersection.IIntrospector); ok {
			// 状态空间增长是被监测而非致命的条件
			log.Infof("[%s] intersection %d: %d states in table", name, inter.ID(), introspector.TableSize())
		}
	}
	log.Infof("[%s] %s", name, result.Summary)
	return result
}

// Run 运行
// 功能：对配置的全部策略各执行一次完整运行，落盘运行日志并输出对比表
// 返回：与策略顺序对应的运行结果与输出阶段的错误
// 说明：各策略运行相互独立（独占网络/策略状态/随机引擎），并行执行不影响确定性；
// 全部I/O在运行结束后进行
func (ctx *Context) Run() ([]*RunResult, error) {
	rc := ctx.runtimeConfig
	results := parallel.GoMap(rc.Run.Controllers, func(name string) *RunResult {
		return ctx.runOne(name)
	})

	comparison := make(map[string]metrics.Summary)
	for _, result := range results {
		comparison[result.Controller] = result.Summary
		if err := ctx.persist(result, len(results) > 1); err != nil {
			return nil, err
		}
	}

	if len(results) > 1 {
		log.Infof("comparison (by throughput):")
		for _, row := range metrics.ComparisonTable(comparison) {
			log.Infof("  %-10s %s", row.Controller, row.Summary)
		}
	}
	return results, nil
}

// persist 落盘单次运行结果
// 功能：按配置写入CSV、SQLite与MongoDB，未配置的输出跳过
// 参数：result-运行结果，suffixed-是否在CSV文件名中追加策略名（多策略对比时）
func (ctx *Context) persist(result *RunResult, suffixed bool) error {
	out := ctx.runtimeConfig.All.Output
	if out.CSV != "" {
		path := out.CSV
		if suffixed {
			ext := filepath.Ext(path)
			path = strings.TrimSuffix(path, ext) + "_" + result.Controller + ext
		}
		if err := output.WriteCSV(path, result.Records); err != nil {
			return err
		}
	}
	if out.SQLite != "" {
		store, err := output.NewStore(out.SQLite)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.WriteRun(result.RunID, result.Controller, result.Records); err != nil {
			return err
		}
	}
	if out.Mongo.URI != "" {
		if err := output.WriteMongo(out.Mongo, result.RunID, result.Controller, result.Records); err != nil {
			return err
		}
	}
	return nil
}
