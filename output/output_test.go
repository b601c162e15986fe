package output_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/entity"
	"github.com/tsinghua-fib-lab/signalopt-sim-oss/output"
)

func sampleRecords() []entity.StepRecord {
	return []entity.StepRecord{
		{
			Step: 0, Intersection: 0, Period: entity.PeriodMorning,
			PhaseUsed: entity.PhaseNS, Duration: 12,
			QueueNS: 3, QueueEW: 5, ServedNS: 4, ServedEW: 0,
			Throughput: 4, AvgWaitProxy: 4, Stops: 5,
			Explanation: "fixed plan: period=morning matched profile 12s",
		},
		{
			Step: 1, Intersection: 1, Period: entity.PeriodMorning,
			PhaseUsed: entity.PhaseEW, Duration: 5,
			QueueNS: 2, QueueEW: 0, ServedNS: 0, ServedEW: 3,
			Throughput: 3, AvgWaitProxy: 1, Stops: 2,
			EmergencyHandled: true,
			Explanation:      "emergency override: granted immediate green to EW approach (queues NS/EW=(2,3))",
		},
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "run.csv")
	assert.Nil(t, output.WriteCSV(path, sampleRecords()))

	f, err := os.Open(path)
	assert.Nil(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	assert.Nil(t, err)

	assert.Len(t, rows, 3)
	assert.Equal(t, "step", rows[0][0])
	assert.Equal(t, "explanation", rows[0][13])
	assert.Equal(t, []string{
		"0", "0", "morning", "NS", "12", "3", "5", "4", "0", "4", "4", "5",
		"false", "fixed plan: period=morning matched profile 12s",
	}, rows[1])
	assert.Equal(t, "true", rows[2][12])
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := output.NewStore(path)
	assert.Nil(t, err)
	defer store.Close()

	records := sampleRecords()
	assert.Nil(t, store.WriteRun("run-1", "fixed", records))
	assert.Nil(t, store.WriteRun("run-1", "qlearning", records[:1]))

	count, err := store.CountRun("run-1", "fixed")
	assert.Nil(t, err)
	assert.Equal(t, 2, count)
	count, err = store.CountRun("run-1", "qlearning")
	assert.Nil(t, err)
	assert.Equal(t, 1, count)
	count, err = store.CountRun("run-2", "fixed")
	assert.Nil(t, err)
	assert.Zero(t, count)
}
