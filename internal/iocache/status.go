package iocache

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/gitcensus/schema"
)

// PrintSnapshotStatus prints snapshot store status information.
func PrintSnapshotStatus(status schema.SnapshotStatus) {
	fmt.Printf("Snapshot Backend: %s\n", status.Backend)
	if status.Location != "" {
		fmt.Printf("Location: %s\n", status.Location)
	}
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Projects: %s\n", humanize.Comma(int64(status.TotalProjects)))
	fmt.Printf("Commits: %s (%s flagged duplicate)\n",
		humanize.Comma(int64(status.TotalCommits)), humanize.Comma(int64(status.Duplicates)))
	if !status.LastCollected.IsZero() {
		fmt.Printf("Last Collected: %s (%s)\n",
			status.LastCollected.Format("2006-01-02 15:04:05"), humanize.Time(status.LastCollected))
	}
	fmt.Printf("Storage Size: %s\n", humanize.Bytes(uint64(max(status.StorageBytes, 0))))
}

// PrintRunStatus prints run store status information.
func PrintRunStatus(status schema.RunStatus) {
	fmt.Printf("Runs Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Runs: %s\n", humanize.Comma(int64(status.TotalRuns)))
	if status.TotalRuns > 0 {
		fmt.Printf("Last Run ID: %d\n", status.LastRunID)
		fmt.Printf("Last Run: %s (%s)\n", status.LastRunTime.Format("2006-01-02 15:04:05"), humanize.Time(status.LastRunTime))
		fmt.Printf("Oldest Run: %s\n", status.OldestRunTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Total Commits Kept: %s\n", humanize.Comma(int64(status.TotalCommits)))
		fmt.Printf("Total Failures: %s\n", humanize.Comma(int64(status.TotalFailures)))
	}

	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	fmt.Println("Table Sizes:")
	for _, table := range tables {
		fmt.Printf("  %s: %s rows\n", table, humanize.Comma(status.TableSizes[table]))
	}
}
