package schema

import "time"

// Report names in the order they are built and written.
const (
	TotalCommitsReport           = "total_commits"
	ByProjectReport              = "by_project"
	ByUserReport                 = "by_user"
	ByUserAndProjectReport       = "by_user_and_project"
	ByUserByProjectReport        = "by_user_by_project"
	ByUserAndProjectOverTimeName = "by_user_and_project_over_time"
	InternalExternalReport       = "internal_external"
	AllCommitsReport             = "all_commits"
	DateRangeReport              = "date_range"
)

// UserCount is a commit count for one contributor.
type UserCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// ProjectCount is a commit count for one project.
type ProjectCount struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// UserProjectCount is a commit count for one (contributor, project) pair.
type UserProjectCount struct {
	Key   string `json:"key"`
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// TimeBucket holds the grouped counts of one half-open window [Start, End).
type TimeBucket struct {
	Start    time.Time          `json:"start"`
	End      time.Time          `json:"end"`
	Rows     []UserProjectCount `json:"rows"`
	Internal int                `json:"internal"`
	External int                `json:"external"`
}

// Matrix is a zero-filled count grid: one row per contributor, one column per label.
type Matrix struct {
	Labels []string    `json:"labels"`
	Rows   []MatrixRow `json:"rows"`
}

// MatrixRow is a single contributor's counts aligned with Matrix.Labels.
type MatrixRow struct {
	Key    string `json:"key"`
	Values []int  `json:"values"`
}

// Table is a tabular report: a header and string rows.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// ChartDataset is one labeled series with optional style hints.
type ChartDataset struct {
	Label           string `json:"label"`
	Data            []int  `json:"data"`
	Stack           string `json:"stack,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	BorderColor     string `json:"borderColor,omitempty"`
	Fill            *bool  `json:"fill,omitempty"`
}

// ChartSeries is a labeled series structure ready for chart rendering.
type ChartSeries struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

// ReportBundle is the run-level set of reports keyed by report name.
type ReportBundle struct {
	From         time.Time              `json:"from"`
	To           time.Time              `json:"to"`
	IntervalDays int                    `json:"interval_days"`
	Anonymized   bool                   `json:"anonymized"`
	TotalCommits int                    `json:"total_commits"`
	DateRange    string                 `json:"date_range"`
	Order        []string               `json:"order"`
	Tables       map[string]Table       `json:"tables"`
	Charts       map[string]ChartSeries `json:"charts"`
	Commits      []CommitEntry          `json:"-"`
}

// NewReportBundle returns an empty bundle with initialized maps.
func NewReportBundle(from, to time.Time, intervalDays int, anonymized bool) ReportBundle {
	return ReportBundle{
		From:         from,
		To:           to,
		IntervalDays: intervalDays,
		Anonymized:   anonymized,
		Tables:       make(map[string]Table),
		Charts:       make(map[string]ChartSeries),
	}
}

// AddTable registers a tabular report and records its position.
func (b *ReportBundle) AddTable(name string, table Table) {
	if _, ok := b.Tables[name]; !ok {
		b.addName(name)
	}
	b.Tables[name] = table
}

// AddChart registers a chart report and records its position.
func (b *ReportBundle) AddChart(name string, chart ChartSeries) {
	if _, ok := b.Charts[name]; !ok {
		b.addName(name)
	}
	b.Charts[name] = chart
}

func (b *ReportBundle) addName(name string) {
	for _, existing := range b.Order {
		if existing == name {
			return
		}
	}
	b.Order = append(b.Order, name)
}

// TableNames returns the tabular report names in bundle order.
func (b *ReportBundle) TableNames() []string {
	var names []string
	for _, name := range b.Order {
		if _, ok := b.Tables[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// ChartNames returns the chart report names in bundle order.
func (b *ReportBundle) ChartNames() []string {
	var names []string
	for _, name := range b.Order {
		if _, ok := b.Charts[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// UnknownContributor is a contributor key with no internal/external label.
type UnknownContributor struct {
	Key        string   `json:"key"`
	Commits    int      `json:"commits"`
	Identities []string `json:"identities"`
}

// CommitEntry is one in-range commit as displayed in reports, after anonymization.
type CommitEntry struct {
	Name          string          `json:"name"`
	UserType      UserType        `json:"user_type"`
	Project       string          `json:"project"`
	ProjectGroup  string          `json:"project_group"`
	ProjectType   ProjectCategory `json:"project_type"`
	CommitID      string          `json:"commit_id"`
	CommittedDate time.Time       `json:"committed_date"`
	Duplicate     bool            `json:"duplicate"`
}
