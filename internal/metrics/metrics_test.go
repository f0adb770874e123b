package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounters(t *testing.T) {
	r := NewRecorder(false)

	r.ProjectScanned(false)
	r.ProjectScanned(false)
	r.ProjectScanned(true)
	r.CommitsKept(10, 2)
	r.ForkCommitsSkipped(4)
	r.ProjectFailed()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.projects.WithLabelValues("source")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.projects.WithLabelValues("fork")))
	assert.Equal(t, 10.0, testutil.ToFloat64(r.commits.WithLabelValues("unique")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.commits.WithLabelValues("duplicate")))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.forkSkipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.failures))
}

func TestRecorderReportTotals(t *testing.T) {
	r := NewRecorder(false)
	r.ReportTotals(17, map[string]int{"internal": 3, "external": 2})

	assert.Equal(t, 17.0, testutil.ToFloat64(r.reportCommits))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.contributors.WithLabelValues("internal")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.contributors.WithLabelValues("external")))
}

func TestRecordersAreIndependent(t *testing.T) {
	a := NewRecorder(false)
	b := NewRecorder(false)
	a.ProjectFailed()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.failures))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder(false)
	r.CommitsKept(3, 0)
	r.ObserveCollect(2 * time.Second)

	path := filepath.Join(t.TempDir(), "gitcensus.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `gitcensus_commits_collected_total{status="unique"} 3`)
	assert.Contains(t, string(data), "gitcensus_collect_duration_seconds_count 1")
}

func TestWriteTextfileBadPath(t *testing.T) {
	r := NewRecorder(false)
	assert.Error(t, r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "out.prom")))
}
