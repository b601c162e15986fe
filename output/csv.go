// 运行日志落盘，仅在一次运行结束后调用，决策路径中不做I/O
package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity"
)

// csvHeader 运行日志CSV表头
var csvHeader = []string{
	"step", "intersection", "time_of_day", "phase_used", "duration",
	"queue_ns", "queue_ew", "served_ns", "served_ew", "throughput",
	"avg_wait_proxy", "stops", "emergency", "explanation",
}

// WriteCSV 将一次运行的全部记录写入CSV文件
// 功能：按固定表头落盘运行日志，供仪表盘与离线分析消费
// 参数：path-目标文件路径（父目录不存在时自动创建），records-一次运行的全部记录
// 返回：写入错误
func WriteCSV(path string, records []entity.StepRecord) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("output: create csv dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("output: write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(int(r.Step)),
			strconv.Itoa(int(r.Intersection)),
			string(r.Period),
			r.PhaseUsed.String(),
			strconv.FormatFloat(r.Duration, 'f', -1, 64),
			strconv.Itoa(r.QueueNS),
			strconv.Itoa(r.QueueEW),
			strconv.Itoa(r.ServedNS),
			strconv.Itoa(r.ServedEW),
			strconv.Itoa(r.Throughput),
			strconv.FormatFloat(r.AvgWaitProxy, 'f', -1, 64),
			strconv.Itoa(r.Stops),
			strconv.FormatBool(r.EmergencyHandled),
			r.Explanation,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("output: write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("output: flush csv: %w", err)
	}
	log.Infof("run log -> %s (%d records)", path, len(records))
	return nil
}
