package outwriter

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/schema"
	"github.com/olekukonko/tablewriter"
)

// PrintCollectionSummary writes the outcome of a collection run to stderr.
func PrintCollectionSummary(summary schema.CollectionSummary, cfg *contract.Config, duration time.Duration) {
	writeCollectionSummary(os.Stderr, summary, cfg, duration)
}

func writeCollectionSummary(w io.Writer, summary schema.CollectionSummary, cfg *contract.Config, duration time.Duration) {
	_, _ = fmt.Fprintf(w, "Collected %s commits from %s projects (%s forks) in %v\n",
		humanize.Comma(int64(summary.CommitsKept)),
		humanize.Comma(int64(summary.ProjectsScanned)),
		humanize.Comma(int64(summary.ForksScanned)),
		duration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(w, "Duplicates flagged: %s, fork commits skipped: %s\n",
		humanize.Comma(int64(summary.Duplicates)),
		humanize.Comma(int64(summary.ForkSkipped)))

	if len(summary.Failures) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "⚠️  %d projects failed:\n", len(summary.Failures))
	for _, f := range summary.Failures {
		if cfg != nil && cfg.Quiet {
			_, _ = fmt.Fprintf(w, "  %s\n", f.ProjectPath)
			continue
		}
		_, _ = fmt.Fprintf(w, "  %s: %s\n", f.ProjectPath, f.Reason)
	}
}

// PrintUnknownContributors prints contributors without an internal/external label.
func PrintUnknownContributors(rows []schema.UnknownContributor, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if rows == nil {
				rows = []schema.UnknownContributor{}
			}
			return writeJSON(w, rows)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, unknownHeader, unknownRows(rows))
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeUnknownTable(w, rows, cfg)
		}, "Wrote table")
	}
}

var unknownHeader = []string{"name", "commit_count", "identities"}

func unknownRows(rows []schema.UnknownContributor) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{r.Key, strconv.Itoa(r.Commits), strings.Join(r.Identities, "|")}
	}
	return out
}

func writeUnknownTable(w io.Writer, rows []schema.UnknownContributor, cfg *contract.Config) error {
	width := GetMaxTableCellWidth(cfg, len(unknownHeader))
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Name", "Commits", "Identities"})

	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = []string{
			contract.TruncatePath(r.Key, width),
			humanize.Comma(int64(r.Commits)),
			contract.TruncatePath(strings.Join(r.Identities, ", "), width),
		}
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s contributors without a label\n", humanize.Comma(int64(len(rows))))
	return err
}
