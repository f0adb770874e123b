package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotCommitCount(t *testing.T) {
	snap := Snapshot{
		"group/a": {{RawCommit: RawCommit{ID: "1"}}, {RawCommit: RawCommit{ID: "2"}}},
		"group/b": {{RawCommit: RawCommit{ID: "3"}, Duplicate: true}},
		"group/c": {},
	}
	assert.Equal(t, 3, snap.CommitCount())
	assert.Equal(t, 0, Snapshot{}.CommitCount())
}

func TestReportBundleOrder(t *testing.T) {
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 14)
	b := NewReportBundle(from, to, 7, false)

	b.AddTable(TotalCommitsReport, Table{Header: []string{"total_commits"}, Rows: [][]string{{"3"}}})
	b.AddChart(ByUserByProjectReport, ChartSeries{Labels: []string{"x"}})
	b.AddTable(AllCommitsReport, Table{Header: []string{"name"}})
	b.AddChart(AllCommitsReport, ChartSeries{})
	b.AddTable(TotalCommitsReport, Table{Header: []string{"total_commits"}, Rows: [][]string{{"4"}}})

	assert.Equal(t, []string{TotalCommitsReport, ByUserByProjectReport, AllCommitsReport}, b.Order)
	assert.Equal(t, []string{TotalCommitsReport, AllCommitsReport}, b.TableNames())
	assert.Equal(t, []string{ByUserByProjectReport, AllCommitsReport}, b.ChartNames())
	assert.Equal(t, "4", b.Tables[TotalCommitsReport].Rows[0][0])
}

func TestValidBackendSets(t *testing.T) {
	_, ok := ValidRunBackends[FileBackend]
	assert.False(t, ok, "file snapshots cannot track runs")
	_, ok = ValidSnapshotBackends[RedisBackend]
	assert.True(t, ok)
	_, ok = ValidLabeledUserTypes[UnknownUser]
	assert.False(t, ok, "unknown is a lookup default, not a table value")
}
