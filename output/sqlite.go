package output

import (
	"database/sql"
	"fmt"

	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity"
	_ "modernc.org/sqlite"
)

// runLogSchema 运行日志表结构
// 说明：run_id区分同一数据库中的多次运行，controller区分对比运行中的策略
const runLogSchema = `
CREATE TABLE IF NOT EXISTS run_log (
	run_id       TEXT NOT NULL,
	controller   TEXT NOT NULL,
	step         INTEGER NOT NULL,
	intersection INTEGER NOT NULL,
	time_of_day  TEXT NOT NULL,
	phase_used   TEXT NOT NULL,
	duration     REAL NOT NULL,
	queue_ns     INTEGER NOT NULL,
	queue_ew     INTEGER NOT NULL,
	served_ns    INTEGER NOT NULL,
	served_ew    INTEGER NOT NULL,
	throughput   INTEGER NOT NULL,
	avg_wait     REAL NOT NULL,
	stops        INTEGER NOT NULL,
	emergency    INTEGER NOT NULL,
	explanation  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_run_log_run ON run_log(run_id, controller);
`

// Store 嵌入式SQLite运行日志存储
// 功能：将多次运行的记录写入同一数据库文件，供离线查询与对比
type Store struct {
	db *sql.DB
}

// NewStore 打开SQLite运行日志存储
// 功能：打开数据库连接并初始化表结构
// 参数：path-数据库文件路径
// 返回：存储实例与错误
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("output: open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("output: set sqlite journal mode: %w", err)
	}
	if _, err := db.Exec(runLogSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("output: init sqlite schema: %w", err)
	}
	return &Store{db: db}, nil
}

// WriteRun 写入一次运行的全部记录
// 功能：在单个事务中批量插入记录
// 参数：runID-运行标识，controller-策略名，records-一次运行的全部记录
// 返回：写入错误
func (s *Store) WriteRun(runID, controller string, records []entity.StepRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("output: begin sqlite tx: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO run_log (
		run_id, controller, step, intersection, time_of_day, phase_used, duration,
		queue_ns, queue_ew, served_ns, served_ew, throughput, avg_wait, stops,
		emergency, explanation
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("output: prepare sqlite insert: %w", err)
	}
	defer stmt.Close()
	for _, r := range records {
		if _, err := stmt.Exec(
			runID, controller, r.Step, r.Intersection, string(r.Period),
			r.PhaseUsed.String(), r.Duration, r.QueueNS, r.QueueEW,
			r.ServedNS, r.ServedEW, r.Throughput, r.AvgWaitProxy, r.Stops,
			r.EmergencyHandled, r.Explanation,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("output: insert sqlite row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("output: commit sqlite tx: %w", err)
	}
	log.Infof("run log -> sqlite run %s/%s (%d records)", runID, controller, len(records))
	return nil
}

// CountRun 查询指定运行的记录条数
// 功能：供落盘后校验与离线工具使用
func (s *Store) CountRun(runID, controller string) (int, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM run_log WHERE run_id = ? AND controller = ?",
		runID, controller,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("output: count sqlite rows: %w", err)
	}
	return count, nil
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	return s.db.Close()
}
