package outwriter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/internal/parquet"
	"github.com/huangsam/gitcensus/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Default file names used when --output-file is not given.
const (
	ChartJSFile = "chartjsdata.js"
	HTMLFile    = "gitcensus.html"
	ParquetFile = "commits.parquet"
)

// WriteReport outputs the report bundle, dispatching based on the output format configured.
func WriteReport(bundle schema.ReportBundle, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, bundle)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeReportCSV(bundle, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ChartJSOut:
		if err := writeReportChartJS(bundle, cfg); err != nil {
			return fmt.Errorf("error writing chartjs output: %w", err)
		}
	case schema.HTMLOut:
		if err := writeReportHTML(bundle, cfg); err != nil {
			return fmt.Errorf("error writing HTML output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeReportParquet(bundle, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable tables
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportTables(w, bundle, cfg, duration)
		}, "Wrote tables")
	}
	return nil
}

// writeReportCSV writes one <output-dir>/<report>.csv per tabular report.
func writeReportCSV(bundle schema.ReportBundle, cfg *contract.Config) error {
	dir, err := ensureDir(cfg.OutputDir)
	if err != nil {
		return err
	}
	for _, name := range bundle.TableNames() {
		table := bundle.Tables[name]
		path := filepath.Join(dir, name+".csv")
		if err := writeWithFile(path, func(w io.Writer) error {
			return writeCSVWithHeader(w, table.Header, table.Rows)
		}, "Wrote CSV"); err != nil {
			return err
		}
	}
	return nil
}

// writeReportChartJS writes every chart plus the scalar reports as JavaScript variables.
func writeReportChartJS(bundle schema.ReportBundle, cfg *contract.Config) error {
	path, err := outputPath(cfg, ChartJSFile)
	if err != nil {
		return err
	}
	return writeWithFile(path, func(w io.Writer) error {
		return writeChartJSVars(w, bundle)
	}, "Wrote chartjs data")
}

func writeChartJSVars(w io.Writer, bundle schema.ReportBundle) error {
	writeVar := func(name string, value any) error {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", name, err)
		}
		_, err = fmt.Fprintf(w, "var %s = %s;\n", name, data)
		return err
	}

	if err := writeVar(schema.TotalCommitsReport, bundle.TotalCommits); err != nil {
		return err
	}
	for _, name := range bundle.ChartNames() {
		if err := writeVar(name, bundle.Charts[name]); err != nil {
			return err
		}
	}
	return writeVar(schema.DateRangeReport, bundle.DateRange)
}

// writeReportParquet writes the in-range commit rows as a Parquet file.
func writeReportParquet(bundle schema.ReportBundle, cfg *contract.Config) error {
	path, err := outputPath(cfg, ParquetFile)
	if err != nil {
		return err
	}
	if err := parquet.WriteCommitsParquet(parquet.ConvertCommitEntries(bundle.Commits), path); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote %s commits to %s\n", humanize.Comma(int64(len(bundle.Commits))), path)
	return nil
}

// writeReportTables renders every tabular report as a text table followed by a summary.
func writeReportTables(w io.Writer, bundle schema.ReportBundle, cfg *contract.Config, duration time.Duration) error {
	for _, name := range bundle.TableNames() {
		if name == schema.TotalCommitsReport || name == schema.DateRangeReport {
			continue // shown in the summary
		}
		if _, err := fmt.Fprintf(w, "\n%s\n", strings.ToUpper(strings.ReplaceAll(name, "_", " "))); err != nil {
			return err
		}
		if err := writeTextTable(w, bundle.Tables[name], cfg); err != nil {
			return err
		}
	}

	anonymized := ""
	if bundle.Anonymized {
		anonymized = ", anonymized"
	}
	if _, err := fmt.Fprintf(w, "\nTotal commits: %s (%s%s)\n",
		humanize.Comma(int64(bundle.TotalCommits)), bundle.DateRange, anonymized); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Report built in %v. Snapshot backend: %s\n", duration.Round(time.Millisecond), cfg.SnapshotBackend)
	return err
}

func writeTextTable(w io.Writer, data schema.Table, cfg *contract.Config) error {
	width := GetMaxTableCellWidth(cfg, len(data.Header))
	userTypeCol := -1
	for i, h := range data.Header {
		if h == "user_type" {
			userTypeCol = i
		}
	}

	table := tablewriter.NewWriter(w)
	table.Header(data.Header)
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignLeft
	})

	rows := make([][]string, len(data.Rows))
	for i, row := range data.Rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			if j == userTypeCol && cfg.UseColors {
				cells[j] = contract.GetColorLabel(schema.UserType(cell))
				continue
			}
			cells[j] = contract.TruncatePath(cell, width)
		}
		rows[i] = cells
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}
