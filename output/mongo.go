package output

import (
	"context"
	"fmt"
	"time"

	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoWriteTimeout 单次批量写入的超时时间
const mongoWriteTimeout = 30 * time.Second

// WriteMongo 将一次运行的全部记录写入MongoDB
// 功能：按配置连接数据库并批量插入记录文档，URI为空时由调用方跳过
// 参数：cfg-MongoDB输出配置，runID-运行标识，controller-策略名，records-一次运行的全部记录
// 返回：连接或写入错误
func WriteMongo(cfg config.Mongo, runID, controller string, records []entity.StepRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoWriteTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return fmt.Errorf("output: connect mongodb: %w", err)
	}
	defer client.Disconnect(context.Background())

	docs := make([]interface{}, 0, len(records))
	for _, r := range records {
		docs = append(docs, bson.M{
			"run_id":       runID,
			"controller":   controller,
			"step":         r.Step,
			"intersection": r.Intersection,
			"time_of_day":  string(r.Period),
			"phase_used":   r.PhaseUsed.String(),
			"duration":     r.Duration,
			"queue_ns":     r.QueueNS,
			"queue_ew":     r.QueueEW,
			"served_ns":    r.ServedNS,
			"served_ew":    r.ServedEW,
			"throughput":   r.Throughput,
			"avg_wait":     r.AvgWaitProxy,
			"stops":        r.Stops,
			"emergency":    r.EmergencyHandled,
			"explanation":  r.Explanation,
		})
	}
	if len(docs) == 0 {
		return nil
	}
	col := client.Database(cfg.DB).Collection(cfg.Col)
	if _, err := col.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("output: insert mongodb docs: %w", err)
	}
	log.Infof("run log -> mongodb %s.%s run %s/%s (%d records)", cfg.DB, cfg.Col, runID, controller, len(docs))
	return nil
}
