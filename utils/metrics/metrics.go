// 运行指标汇总与多策略对比
package metrics

import (
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/utils/container"
)

// Summary 一次运行的指标汇总
type Summary struct {
	AvgWaitProxy       float64 // 平均等待代理值的全程均值（保留三位小数）
	Throughput         int     // 累计吞吐
	Stops              int     // 累计截停车辆数
	EmergenciesHandled int     // 处理的应急事件数
	Records            int     // 记录条数
}

func (s Summary) String() string {
	return fmt.Sprintf(
		"avg_wait_proxy=%.3f throughput=%d stops=%d emergencies_handled=%d",
		s.AvgWaitProxy, s.Throughput, s.Stops, s.EmergenciesHandled)
}

// Summarize 汇总一次运行的全部记录
// 功能：计算平均等待均值与吞吐/截停/应急累计值
// 参数：records-一次运行的全部StepRecord
// 返回：指标汇总
func Summarize(records []entity.StepRecord) Summary {
	s := Summary{
		Throughput: lo.SumBy(records, func(r entity.StepRecord) int { return r.Throughput }),
		Stops:      lo.SumBy(records, func(r entity.StepRecord) int { return r.Stops }),
		EmergenciesHandled: lo.CountBy(records, func(r entity.StepRecord) bool {
			return r.EmergencyHandled
		}),
		Records: len(records),
	}
	if len(records) > 0 {
		mean := lo.SumBy(records, func(r entity.StepRecord) float64 { return r.AvgWaitProxy }) / float64(len(records))
		s.AvgWaitProxy = math.Round(mean*1000) / 1000
	}
	return s
}

// Row 对比表中的一行
type Row struct {
	Controller string // 策略名
	Summary
}

// ComparisonTable 构建多策略对比表
// 功能：将各策略的指标汇总按累计吞吐从高到低排序
// 参数：results-策略名->指标汇总
// 返回：排序后的对比表行
// 说明：先对策略名排序再入堆，保证吞吐并列时行序确定
func ComparisonTable(results map[string]Summary) []Row {
	names := lo.Keys(results)
	sort.Strings(names)

	pq := container.NewPriorityQueue[Row]()
	for _, name := range names {
		s := results[name]
		pq.Push(Row{Controller: name, Summary: s}, -float64(s.Throughput))
	}
	pq.Heapify()

	rows := make([]Row, 0, len(names))
	for pq.Len() > 0 {
		row, _ := pq.HeapPop()
		rows = append(rows, row)
	}
	return rows
}
