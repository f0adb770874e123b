package core

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/huangsam/gitcensus/core/agg"
	"github.com/huangsam/gitcensus/core/anon"
	"github.com/huangsam/gitcensus/core/classify"
	"github.com/huangsam/gitcensus/schema"
)

// Layouts used in report cells.
const (
	BucketLayout    = "2006-01-02 15:04:05"
	RangeLayout     = "2006-01-02T15:04:05.000Z"
	CommitDayLayout = time.RFC3339
)

// Series names and colors of the internal/external chart.
const (
	externalSeries = "External Users"
	internalSeries = "Internal Users"
	externalColor  = "#00FF00"
	internalColor  = "#0000FF"
)

// allTime covers every committed date a provider can return.
var allTime = agg.Range{To: time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)}

// ReportOptions selects the window and filters of a report bundle.
type ReportOptions struct {
	Range             agg.Range
	IntervalDays      int
	IncludeDuplicates bool
}

// reportBuilder carries the shared state of one BuildReports call.
type reportBuilder struct {
	ds         *agg.Dataset
	classifier *classify.Classifier
	anonymizer *anon.Anonymizer
	query      agg.Query
	bundle     schema.ReportBundle
}

// BuildReports computes every report over the dataset, in write order.
// Contributor names and project paths are anonymized when the anonymizer is enabled;
// chart colors are always derived from the displayed name.
func BuildReports(ds *agg.Dataset, classifier *classify.Classifier, anonymizer *anon.Anonymizer, opts ReportOptions) (schema.ReportBundle, error) {
	if opts.IntervalDays <= 0 {
		return schema.ReportBundle{}, agg.ErrInvalidInterval
	}
	b := &reportBuilder{
		ds:         ds,
		classifier: classifier,
		anonymizer: anonymizer,
		query:      agg.Query{Range: opts.Range, IncludeDuplicates: opts.IncludeDuplicates},
		bundle:     schema.NewReportBundle(opts.Range.From, opts.Range.To, opts.IntervalDays, anonymizer.Enabled()),
	}

	b.totalCommits()
	b.byProject()
	b.byUser()
	b.byUserAndProject()
	b.byUserByProject()
	if err := b.overTime(opts.IntervalDays); err != nil {
		return schema.ReportBundle{}, err
	}
	b.allCommits()
	b.bundle.DateRange = fmt.Sprintf("%s to %s", opts.Range.From.UTC().Format(RangeLayout), opts.Range.To.UTC().Format(RangeLayout))
	b.bundle.AddTable(schema.DateRangeReport, schema.Table{
		Header: []string{"date_range"},
		Rows:   [][]string{{b.bundle.DateRange}},
	})
	return b.bundle, nil
}

func (b *reportBuilder) name(key string) string {
	return b.anonymizer.Anonymize(key)
}

func (b *reportBuilder) project(path string) string {
	return b.anonymizer.Anonymize(path)
}

// group hides the namespace of personal projects, which is usually a person.
func (b *reportBuilder) group(class schema.ProjectClassification) string {
	if class.Category == schema.PersonalProject {
		return b.anonymizer.Anonymize(class.Group)
	}
	return class.Group
}

func (b *reportBuilder) userType(key string) string {
	return string(b.classifier.ClassifyContributor(key))
}

func (b *reportBuilder) totalCommits() {
	total := b.ds.Total(b.query)
	b.bundle.TotalCommits = total
	b.bundle.AddTable(schema.TotalCommitsReport, schema.Table{
		Header: []string{"total_commits"},
		Rows:   [][]string{{strconv.Itoa(total)}},
	})
}

func (b *reportBuilder) byProject() {
	table := schema.Table{Header: []string{"project_path", "commit_count", "project_group", "project_type"}}
	for _, row := range b.ds.ByProject(b.query) {
		class := b.classifier.ClassifyProject(row.Path)
		table.Rows = append(table.Rows, []string{
			b.project(row.Path), strconv.Itoa(row.Count), b.group(class), string(class.Category),
		})
	}
	b.bundle.AddTable(schema.ByProjectReport, table)
}

func (b *reportBuilder) byUser() {
	table := schema.Table{Header: []string{"name", "commit_count", "user_type"}}
	for _, row := range b.ds.ByUser(b.query) {
		table.Rows = append(table.Rows, []string{b.name(row.Key), strconv.Itoa(row.Count), b.userType(row.Key)})
	}
	b.bundle.AddTable(schema.ByUserReport, table)
}

func (b *reportBuilder) byUserAndProject() {
	table := schema.Table{Header: []string{"name", "user_type", "project", "commit_count", "project_group", "project_type"}}
	for _, row := range b.ds.ByProjectByUser(b.query) {
		class := b.classifier.ClassifyProject(row.Path)
		table.Rows = append(table.Rows, []string{
			b.name(row.Key), b.userType(row.Key), b.project(row.Path),
			strconv.Itoa(row.Count), b.group(class), string(class.Category),
		})
	}
	b.bundle.AddTable(schema.ByUserAndProjectReport, table)
}

func (b *reportBuilder) byUserByProject() {
	matrix := b.ds.UserGroupMatrix(b.query, agg.GroupLabel)
	chart := schema.ChartSeries{Labels: matrix.Labels, Datasets: make([]schema.ChartDataset, 0, len(matrix.Rows))}
	for _, row := range matrix.Rows {
		label := b.name(row.Key)
		chart.Datasets = append(chart.Datasets, schema.ChartDataset{
			Label:           label,
			Data:            row.Values,
			Stack:           "0",
			BackgroundColor: b.anonymizer.Color(label),
		})
	}
	b.bundle.AddChart(schema.ByUserByProjectReport, chart)
}

func (b *reportBuilder) overTime(intervalDays int) error {
	buckets, err := b.ds.Buckets(b.query, intervalDays)
	if err != nil {
		return err
	}

	table := schema.Table{Header: []string{
		"name", "user_type", "project", "project_group", "project_type", "commit_count",
		fmt.Sprintf("interval (%d days)", intervalDays),
	}}
	external := schema.ChartDataset{Label: externalSeries, BackgroundColor: externalColor, BorderColor: externalColor, Fill: boolPtr(false)}
	internal := schema.ChartDataset{Label: internalSeries, BackgroundColor: internalColor, BorderColor: internalColor, Fill: boolPtr(false)}
	chart := schema.ChartSeries{}

	for _, bucket := range buckets {
		start := bucket.Start.UTC().Format(BucketLayout)
		for _, row := range bucket.Rows {
			class := b.classifier.ClassifyProject(row.Path)
			table.Rows = append(table.Rows, []string{
				b.name(row.Key), b.userType(row.Key), b.project(row.Path),
				b.group(class), string(class.Category), strconv.Itoa(row.Count), start,
			})
		}
		chart.Labels = append(chart.Labels, bucket.Start.UTC().Format(agg.DayLayout))
		external.Data = append(external.Data, bucket.External)
		internal.Data = append(internal.Data, bucket.Internal)
	}
	chart.Datasets = []schema.ChartDataset{external, internal}

	b.bundle.AddTable(schema.ByUserAndProjectOverTimeName, table)
	b.bundle.AddChart(schema.InternalExternalReport, chart)
	return nil
}

func (b *reportBuilder) allCommits() {
	table := schema.Table{Header: []string{"name", "user_type", "project", "project_group", "project_type", "date"}}
	for _, c := range b.ds.Commits(b.query) {
		entry := schema.CommitEntry{
			Name:          b.name(c.CanonicalKey),
			UserType:      c.UserType,
			Project:       b.project(c.ProjectPath),
			ProjectGroup:  b.group(c.Project),
			ProjectType:   c.Project.Category,
			CommitID:      c.ID,
			CommittedDate: c.CommittedDate,
			Duplicate:     c.Duplicate,
		}
		b.bundle.Commits = append(b.bundle.Commits, entry)
		table.Rows = append(table.Rows, []string{
			entry.Name, string(entry.UserType), entry.Project, entry.ProjectGroup,
			string(entry.ProjectType), entry.CommittedDate.UTC().Format(CommitDayLayout),
		})
	}
	b.bundle.AddTable(schema.AllCommitsReport, table)

	matrix := b.ds.DailyByUser(b.query)
	chart := schema.ChartSeries{Labels: matrix.Labels, Datasets: make([]schema.ChartDataset, 0, len(matrix.Rows))}
	for _, row := range matrix.Rows {
		label := b.name(row.Key)
		color := b.anonymizer.Color(label)
		chart.Datasets = append(chart.Datasets, schema.ChartDataset{
			Label:           label,
			Data:            row.Values,
			Fill:            boolPtr(false),
			BackgroundColor: color,
			BorderColor:     color,
		})
	}
	b.bundle.AddChart(schema.AllCommitsReport, chart)
}

// UnknownContributors lists contributor keys missing from the internal/external
// table, with their commit counts over all time and the raw identities behind them.
// Duplicate commits are not counted. Order is commits descending, then key.
func UnknownContributors(ds *agg.Dataset, classifier *classify.Classifier) []schema.UnknownContributor {
	counts := make(map[string]int)
	for _, row := range ds.ByUser(agg.Query{Range: allTime}) {
		counts[row.Key] = row.Count
	}

	var out []schema.UnknownContributor
	for key, identities := range ds.Identities() {
		if classifier.IsLabeled(key) {
			continue
		}
		out = append(out, schema.UnknownContributor{Key: key, Commits: counts[key], Identities: identities})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Commits != out[j].Commits {
			return out[i].Commits > out[j].Commits
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func boolPtr(v bool) *bool { return &v }
