// Package metrics records collection and report counters in a prometheus registry
// and writes them in the text exposition format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "gitcensus"

// Recorder owns an independent registry so repeated runs in one process never collide.
type Recorder struct {
	registry *prometheus.Registry

	projects        *prometheus.CounterVec
	commits         *prometheus.CounterVec
	forkSkipped     prometheus.Counter
	failures        prometheus.Counter
	collectDuration prometheus.Histogram
	reportCommits   prometheus.Gauge
	contributors    *prometheus.GaugeVec
}

// NewRecorder creates a Recorder with all gitcensus collectors registered.
// Go runtime collectors are added when withRuntime is set.
func NewRecorder(withRuntime bool) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		projects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "projects_scanned_total",
			Help:      "Projects whose commits were listed, by kind.",
		}, []string{"kind"}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commits_collected_total",
			Help:      "Commits stored in the snapshot, by duplicate status.",
		}, []string{"status"}),
		forkSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fork_commits_skipped_total",
			Help:      "Fork commits dropped because their id was already seen.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "project_failures_total",
			Help:      "Projects whose commit listing failed.",
		}),
		collectDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collect_duration_seconds",
			Help:      "Wall time of collection runs.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		reportCommits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "report_commits",
			Help:      "Commits counted in the last report range.",
		}),
		contributors: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "report_contributors",
			Help:      "Distinct contributors in the last report range, by user type.",
		}, []string{"user_type"}),
	}

	r.registry.MustRegister(r.projects, r.commits, r.forkSkipped, r.failures,
		r.collectDuration, r.reportCommits, r.contributors)
	if withRuntime {
		r.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ProjectScanned counts one successfully listed project.
func (r *Recorder) ProjectScanned(fork bool) {
	kind := "source"
	if fork {
		kind = "fork"
	}
	r.projects.WithLabelValues(kind).Inc()
}

// CommitsKept counts stored commits split by their duplicate flag.
func (r *Recorder) CommitsKept(unique, duplicates int) {
	r.commits.WithLabelValues("unique").Add(float64(unique))
	r.commits.WithLabelValues("duplicate").Add(float64(duplicates))
}

// ForkCommitsSkipped counts fork commits that were dropped.
func (r *Recorder) ForkCommitsSkipped(n int) { r.forkSkipped.Add(float64(n)) }

// ProjectFailed counts one failed project listing.
func (r *Recorder) ProjectFailed() { r.failures.Inc() }

// ObserveCollect records the duration of a collection run.
func (r *Recorder) ObserveCollect(d time.Duration) { r.collectDuration.Observe(d.Seconds()) }

// ReportTotals sets the report-level gauges.
func (r *Recorder) ReportTotals(commits int, contributorsByType map[string]int) {
	r.reportCommits.Set(float64(commits))
	for userType, n := range contributorsByType {
		r.contributors.WithLabelValues(userType).Set(float64(n))
	}
}

// WriteTextfile writes the registry in text exposition format to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
