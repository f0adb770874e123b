// Package agg answers grouped-count queries over a classified commit dataset.
package agg

import (
	"errors"
	"sort"
	"time"

	"github.com/huangsam/gitcensus/schema"
)

// DayLayout is the label format for calendar days.
const DayLayout = "2006-01-02"

// ErrInvalidInterval is returned when a bucket interval is not positive.
var ErrInvalidInterval = errors.New("interval must be a positive number of days")

// Range is a half-open window [From, To) on the committed date.
type Range struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}

// Query selects commits for an aggregation.
type Query struct {
	Range
	IncludeDuplicates bool
}

// LabelFunc maps a commit to the column label used by UserGroupMatrix.
type LabelFunc func(schema.ClassifiedCommit) string

// GroupLabel uses the project group, folding every personal project into one label.
func GroupLabel(c schema.ClassifiedCommit) string {
	if c.Project.Category == schema.PersonalProject {
		return string(schema.PersonalProject)
	}
	return c.Project.Group
}

// Dataset is an immutable list of classified commits. Queries never modify it.
type Dataset struct {
	commits []schema.ClassifiedCommit
}

// NewDataset copies commits into a Dataset.
func NewDataset(commits []schema.ClassifiedCommit) *Dataset {
	return &Dataset{commits: append([]schema.ClassifiedCommit(nil), commits...)}
}

// Len returns the number of commits held, duplicates included.
func (d *Dataset) Len() int { return len(d.commits) }

func (d *Dataset) selectCommits(q Query) []schema.ClassifiedCommit {
	var out []schema.ClassifiedCommit
	for _, c := range d.commits {
		if c.Duplicate && !q.IncludeDuplicates {
			continue
		}
		if !q.Contains(c.CommittedDate) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Total counts qualifying commits.
func (d *Dataset) Total(q Query) int {
	return len(d.selectCommits(q))
}

// ByUser counts commits per contributor, count descending then key ascending.
func (d *Dataset) ByUser(q Query) []schema.UserCount {
	counts := make(map[string]int)
	for _, c := range d.selectCommits(q) {
		counts[c.CanonicalKey]++
	}
	out := make([]schema.UserCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, schema.UserCount{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// ByProject counts commits per project path, path ascending.
func (d *Dataset) ByProject(q Query) []schema.ProjectCount {
	counts := make(map[string]int)
	for _, c := range d.selectCommits(q) {
		counts[c.ProjectPath]++
	}
	out := make([]schema.ProjectCount, 0, len(counts))
	for p, n := range counts {
		out = append(out, schema.ProjectCount{Path: p, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func pairCounts(commits []schema.ClassifiedCommit) []schema.UserProjectCount {
	type pair struct{ key, path string }
	counts := make(map[pair]int)
	for _, c := range commits {
		counts[pair{c.CanonicalKey, c.ProjectPath}]++
	}
	out := make([]schema.UserProjectCount, 0, len(counts))
	for p, n := range counts {
		out = append(out, schema.UserProjectCount{Key: p.key, Path: p.path, Count: n})
	}
	return out
}

func sortByProjectThenCount(rows []schema.UserProjectCount) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Path != rows[j].Path {
			return rows[i].Path < rows[j].Path
		}
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Key < rows[j].Key
	})
}

// ByProjectByUser counts (project, contributor) pairs, path ascending then count descending.
func (d *Dataset) ByProjectByUser(q Query) []schema.UserProjectCount {
	rows := pairCounts(d.selectCommits(q))
	sortByProjectThenCount(rows)
	return rows
}

func sortByUserThenProject(rows []schema.UserProjectCount) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Key != rows[j].Key {
			return rows[i].Key < rows[j].Key
		}
		return rows[i].Path < rows[j].Path
	})
}

// ByUserByProject counts (contributor, project) pairs, key ascending then path ascending.
func (d *Dataset) ByUserByProject(q Query) []schema.UserProjectCount {
	rows := pairCounts(d.selectCommits(q))
	sortByUserThenProject(rows)
	return rows
}

// UserGroupMatrix counts commits per contributor and label. Labels are sorted,
// rows follow ascending contributor key, and absent pairs are zero.
func (d *Dataset) UserGroupMatrix(q Query, label LabelFunc) schema.Matrix {
	if label == nil {
		label = GroupLabel
	}
	counts := make(map[string]map[string]int)
	labelSet := make(map[string]struct{})
	for _, c := range d.selectCommits(q) {
		l := label(c)
		labelSet[l] = struct{}{}
		if counts[c.CanonicalKey] == nil {
			counts[c.CanonicalKey] = make(map[string]int)
		}
		counts[c.CanonicalKey][l]++
	}
	return buildMatrix(counts, sortedKeys(labelSet, false))
}

// DailyByUser counts commits per contributor and calendar day, taken in the
// commit's own time zone. Days are sorted descending and every contributor
// row covers every observed day.
func (d *Dataset) DailyByUser(q Query) schema.Matrix {
	counts := make(map[string]map[string]int)
	days := make(map[string]struct{})
	for _, c := range d.selectCommits(q) {
		day := c.CommittedDate.Format(DayLayout)
		days[day] = struct{}{}
		if counts[c.CanonicalKey] == nil {
			counts[c.CanonicalKey] = make(map[string]int)
		}
		counts[c.CanonicalKey][day]++
	}
	return buildMatrix(counts, sortedKeys(days, true))
}

func buildMatrix(counts map[string]map[string]int, labels []string) schema.Matrix {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m := schema.Matrix{Labels: labels, Rows: make([]schema.MatrixRow, 0, len(keys))}
	for _, k := range keys {
		values := make([]int, len(labels))
		for i, l := range labels {
			values[i] = counts[k][l]
		}
		m.Rows = append(m.Rows, schema.MatrixRow{Key: k, Values: values})
	}
	return m
}

func sortedKeys(set map[string]struct{}, descending bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	if descending {
		sort.Sort(sort.Reverse(sort.StringSlice(out)))
	} else {
		sort.Strings(out)
	}
	return out
}

// Buckets splits the query range into consecutive windows of intervalDays,
// starting at From. The last window ends at To and may be shorter.
// Rows in each window are ordered by contributor key, then project path.
func (d *Dataset) Buckets(q Query, intervalDays int) ([]schema.TimeBucket, error) {
	if intervalDays <= 0 {
		return nil, ErrInvalidInterval
	}
	selected := d.selectCommits(q)

	var buckets []schema.TimeBucket
	for start := q.From; start.Before(q.To); start = start.AddDate(0, 0, intervalDays) {
		end := start.AddDate(0, 0, intervalDays)
		if end.After(q.To) {
			end = q.To
		}
		window := Range{From: start, To: end}

		var inWindow []schema.ClassifiedCommit
		bucket := schema.TimeBucket{Start: start, End: end}
		for _, c := range selected {
			if !window.Contains(c.CommittedDate) {
				continue
			}
			inWindow = append(inWindow, c)
			if c.UserType == schema.InternalUser {
				bucket.Internal++
			} else {
				bucket.External++
			}
		}
		bucket.Rows = pairCounts(inWindow)
		sortByUserThenProject(bucket.Rows)
		buckets = append(buckets, bucket)
	}
	return buckets, nil
}

// Commits returns qualifying commits ordered by contributor key, committed date, then id.
func (d *Dataset) Commits(q Query) []schema.ClassifiedCommit {
	out := d.selectCommits(q)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CanonicalKey != out[j].CanonicalKey {
			return out[i].CanonicalKey < out[j].CanonicalKey
		}
		if !out[i].CommittedDate.Equal(out[j].CommittedDate) {
			return out[i].CommittedDate.Before(out[j].CommittedDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Identities returns, per contributor key, the distinct raw identity strings
// (emails and names) that resolved to it, sorted. Duplicates are included.
func (d *Dataset) Identities() map[string][]string {
	sets := make(map[string]map[string]struct{})
	for _, c := range d.commits {
		if sets[c.CanonicalKey] == nil {
			sets[c.CanonicalKey] = make(map[string]struct{})
		}
		for _, v := range []string{c.CommitterEmail, c.AuthorEmail, c.CommitterName, c.AuthorName} {
			if v != "" {
				sets[c.CanonicalKey][v] = struct{}{}
			}
		}
	}
	out := make(map[string][]string, len(sets))
	for k, set := range sets {
		out[k] = sortedKeys(set, false)
	}
	return out
}
