package agg

import (
	"testing"
	"time"

	"github.com/huangsam/gitcensus/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2020, 1, d, 12, 0, 0, 0, time.UTC)
}

func commit(id, key, path string, when time.Time, ut schema.UserType, cat schema.ProjectCategory, group string, dup bool) schema.ClassifiedCommit {
	c := schema.ClassifiedCommit{UserType: ut, Project: schema.ProjectClassification{Group: group, Category: cat}}
	c.ID = id
	c.CanonicalKey = key
	c.ProjectPath = path
	c.CommittedDate = when
	c.Duplicate = dup
	return c
}

func fixture() *Dataset {
	return NewDataset([]schema.ClassifiedCommit{
		commit("1", "ben", "Module1/x", day(1), schema.InternalUser, schema.SchoolhouseProject, "Example Course", false),
		commit("2", "ben", "Module1/x", day(2), schema.InternalUser, schema.SchoolhouseProject, "Example Course", false),
		commit("3", "eve", "Module1/x", day(2), schema.ExternalUser, schema.SchoolhouseProject, "Example Course", false),
		commit("4", "eve", "eve/dots", day(9), schema.ExternalUser, schema.PersonalProject, "eve", false),
		commit("5", "zed", "ops/infra", day(10), schema.UnknownUser, schema.OperationalProject, "ops", false),
		commit("2", "ben", "Module1/y", day(2), schema.InternalUser, schema.SchoolhouseProject, "Example Course", true),
		commit("6", "amy", "ops/infra", day(20), schema.InternalUser, schema.OperationalProject, "ops", false),
	})
}

func january() Query {
	return Query{Range: Range{From: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)}}
}

func TestRangeHalfOpen(t *testing.T) {
	r := Range{From: day(1), To: day(2)}
	assert.True(t, r.Contains(day(1)))
	assert.False(t, r.Contains(day(2)))
	assert.False(t, r.Contains(day(1).Add(-time.Nanosecond)))
}

func TestTotal(t *testing.T) {
	d := fixture()
	assert.Equal(t, 5, d.Total(january()))

	q := january()
	q.IncludeDuplicates = true
	assert.Equal(t, 6, d.Total(q))
	assert.Equal(t, 7, d.Len())
}

func TestByUser(t *testing.T) {
	got := fixture().ByUser(january())
	assert.Equal(t, []schema.UserCount{
		{Key: "ben", Count: 2},
		{Key: "eve", Count: 2},
		{Key: "zed", Count: 1},
	}, got)
}

func TestByProject(t *testing.T) {
	got := fixture().ByProject(january())
	assert.Equal(t, []schema.ProjectCount{
		{Path: "Module1/x", Count: 3},
		{Path: "eve/dots", Count: 1},
		{Path: "ops/infra", Count: 1},
	}, got)
}

func TestByProjectByUser(t *testing.T) {
	got := fixture().ByProjectByUser(january())
	require.Len(t, got, 4)
	assert.Equal(t, schema.UserProjectCount{Key: "ben", Path: "Module1/x", Count: 2}, got[0])
	assert.Equal(t, schema.UserProjectCount{Key: "eve", Path: "Module1/x", Count: 1}, got[1])
	assert.Equal(t, "eve/dots", got[2].Path)
	assert.Equal(t, "ops/infra", got[3].Path)
}

func TestByUserByProject(t *testing.T) {
	got := fixture().ByUserByProject(january())
	keys := []string{}
	for _, r := range got {
		keys = append(keys, r.Key+"|"+r.Path)
	}
	assert.Equal(t, []string{"ben|Module1/x", "eve|Module1/x", "eve|eve/dots", "zed|ops/infra"}, keys)
}

func TestUserGroupMatrixZeroFill(t *testing.T) {
	m := fixture().UserGroupMatrix(january(), GroupLabel)
	assert.Equal(t, []string{"Example Course", "ops", "personal"}, m.Labels)
	assert.Equal(t, []schema.MatrixRow{
		{Key: "ben", Values: []int{2, 0, 0}},
		{Key: "eve", Values: []int{1, 0, 1}},
		{Key: "zed", Values: []int{0, 1, 0}},
	}, m.Rows)
}

func TestBucketsTwoWeeks(t *testing.T) {
	buckets, err := fixture().Buckets(january(), 7)
	require.NoError(t, err)
	require.Len(t, buckets, 2)

	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), buckets[0].Start)
	assert.Equal(t, time.Date(2020, 1, 8, 0, 0, 0, 0, time.UTC), buckets[0].End)
	assert.Equal(t, time.Date(2020, 1, 8, 0, 0, 0, 0, time.UTC), buckets[1].Start)
	assert.Equal(t, time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), buckets[1].End)

	assert.Equal(t, 2, buckets[0].Internal)
	assert.Equal(t, 1, buckets[0].External)
	assert.Equal(t, 0, buckets[1].Internal)
	assert.Equal(t, 2, buckets[1].External, "unknown contributors count as external")
	assert.Len(t, buckets[0].Rows, 2)
}

func TestBucketRowsOrderedByUserThenProject(t *testing.T) {
	d := NewDataset([]schema.ClassifiedCommit{
		commit("1", "zed", "a/p", day(2), schema.UnknownUser, schema.PersonalProject, "a", false),
		commit("2", "zed", "a/p", day(3), schema.UnknownUser, schema.PersonalProject, "a", false),
		commit("3", "amy", "b/q", day(4), schema.InternalUser, schema.PersonalProject, "b", false),
		commit("4", "amy", "a/p", day(5), schema.InternalUser, schema.PersonalProject, "a", false),
	})
	buckets, err := d.Buckets(january(), 7)
	require.NoError(t, err)
	require.NotEmpty(t, buckets)

	assert.Equal(t, []schema.UserProjectCount{
		{Key: "amy", Path: "a/p", Count: 1},
		{Key: "amy", Path: "b/q", Count: 1},
		{Key: "zed", Path: "a/p", Count: 2},
	}, buckets[0].Rows)
}

func TestBucketsShortFinalBucket(t *testing.T) {
	q := january()
	q.To = time.Date(2020, 1, 11, 0, 0, 0, 0, time.UTC)
	buckets, err := fixture().Buckets(q, 7)
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, q.To, buckets[1].End)
}

func TestBucketsInvalidInterval(t *testing.T) {
	_, err := fixture().Buckets(january(), 0)
	assert.ErrorIs(t, err, ErrInvalidInterval)
	_, err = fixture().Buckets(january(), -3)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestBucketsEmptyRange(t *testing.T) {
	q := january()
	q.To = q.From
	buckets, err := fixture().Buckets(q, 7)
	require.NoError(t, err)
	assert.Empty(t, buckets)
}

func TestDailyByUser(t *testing.T) {
	m := fixture().DailyByUser(january())
	assert.Equal(t, []string{"2020-01-10", "2020-01-09", "2020-01-02", "2020-01-01"}, m.Labels)
	require.Len(t, m.Rows, 3)
	assert.Equal(t, schema.MatrixRow{Key: "ben", Values: []int{0, 0, 1, 1}}, m.Rows[0])
	assert.Equal(t, schema.MatrixRow{Key: "zed", Values: []int{1, 0, 0, 0}}, m.Rows[2])
}

func TestDailyByUserUsesCommitZone(t *testing.T) {
	zone := time.FixedZone("UTC-5", -5*60*60)
	late := time.Date(2020, 1, 2, 23, 30, 0, 0, zone) // 2020-01-03 in UTC
	d := NewDataset([]schema.ClassifiedCommit{
		commit("1", "ben", "Module1/x", late, schema.InternalUser, schema.SchoolhouseProject, "Example Course", false),
	})
	m := d.DailyByUser(january())
	assert.Equal(t, []string{"2020-01-02"}, m.Labels)
	assert.Equal(t, []schema.MatrixRow{{Key: "ben", Values: []int{1}}}, m.Rows)
}

func TestCommitsOrder(t *testing.T) {
	got := fixture().Commits(january())
	ids := []string{}
	for _, c := range got {
		ids = append(ids, c.CanonicalKey+":"+c.ID)
	}
	assert.Equal(t, []string{"ben:1", "ben:2", "eve:3", "eve:4", "zed:5"}, ids)
}

func TestQueriesDoNotMutate(t *testing.T) {
	d := fixture()
	before := append([]schema.ClassifiedCommit(nil), d.commits...)

	first := d.ByUser(january())
	d.Commits(january())
	_, _ = d.Buckets(january(), 7)
	second := d.ByUser(january())

	assert.Equal(t, first, second)
	assert.Equal(t, before, d.commits)
}

func TestIdentities(t *testing.T) {
	c := commit("1", "ben", "a/b", day(1), schema.InternalUser, schema.PersonalProject, "a", false)
	c.CommitterEmail = "jianmin@x.org"
	c.AuthorName = "Ben"
	d := NewDataset([]schema.ClassifiedCommit{c})
	assert.Equal(t, map[string][]string{"ben": {"Ben", "jianmin@x.org"}}, d.Identities())
}
