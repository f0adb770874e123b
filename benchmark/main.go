// Package main provides a performance benchmarking tool for the gitcensus CLI.
// It measures report times across local repository roots and snapshot backends,
// running each test multiple times, treating the first successful run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - gitcensus binary installed and available in PATH
// - Each root under the base directory holds cloned Git repositories (one per subdirectory)
//
// Usage: go run benchmark/main.go [root-base-dir] [root...]
//
//	root-base-dir: Directory containing local roots to collect from
//	root:          Names of the roots to benchmark (default: every subdirectory)
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-snapshot average, cold run and average of warm runs).
type BenchmarkResult struct {
	Root           string
	Backend        string
	NoSnapshotTime string
	ColdTime       string
	WarmTime       string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	RootBase       string
	Timeout        time.Duration
	NoSnapshotRuns int
	SnapshotRuns   int
	Roots          []string
	Backends       []string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Printf("Usage: %s [root-base-dir] [root...]\n", os.Args[0])
		os.Exit(1)
	}
	rootBase := os.Args[1]

	roots := os.Args[2:]
	if len(roots) == 0 {
		var err error
		if roots, err = listRoots(rootBase); err != nil {
			fmt.Printf("Cannot list roots: %v\n", err)
			os.Exit(1)
		}
	}

	config := BenchmarkConfig{
		RootBase:       rootBase,
		Timeout:        10 * time.Minute,
		NoSnapshotRuns: 3,
		SnapshotRuns:   4,
		Roots:          roots,
		Backends:       []string{"file", "sqlite"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// listRoots returns every subdirectory of base.
func listRoots(base string) ([]string, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, err
	}
	var roots []string
	for _, e := range entries {
		if e.IsDir() {
			roots = append(roots, e.Name())
		}
	}
	return roots, nil
}

// checkPrerequisites verifies that gitcensus binary and local roots exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("gitcensus"); err != nil {
		return fmt.Errorf("gitcensus binary not found in PATH")
	}
	if len(config.Roots) == 0 {
		return fmt.Errorf("no roots found under %s", config.RootBase)
	}
	for _, root := range config.Roots {
		rootPath := filepath.Join(config.RootBase, root)
		if _, err := os.Stat(rootPath); os.IsNotExist(err) {
			return fmt.Errorf("root %s not found at %s", root, rootPath)
		}
	}
	return nil
}

// runBenchmarks executes the report benchmark for every root and backend
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d roots, %v timeout, no-snapshot: %d runs, snapshot: %d runs\n",
		len(config.Roots), config.Timeout, config.NoSnapshotRuns, config.SnapshotRuns)

	for _, root := range config.Roots {
		rootPath := filepath.Join(config.RootBase, root)
		for _, backend := range config.Backends {
			results = append(results, runBenchmarkSuite(config, root, rootPath, backend))
		}
	}

	return results
}

// runBenchmarkSuite runs both no-snapshot and snapshot benchmarks for a backend
func runBenchmarkSuite(config BenchmarkConfig, root, rootPath, backend string) BenchmarkResult {
	fmt.Printf("Running report on %s with %s snapshots\n", root, backend)

	workDir, err := os.MkdirTemp("", "gitcensus-bench-*")
	if err != nil {
		fmt.Printf("  Cannot create work dir: %v\n", err)
		return BenchmarkResult{Root: root, Backend: backend, NoSnapshotTime: "ERROR", ColdTime: "ERROR", WarmTime: "ERROR"}
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	// Helper to run a benchmark phase
	runPhase := func(snapshotBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, rootPath, workDir, snapshotBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: every run collects
	_, noSnapshotAvg := runPhase("none", config.NoSnapshotRuns, "No-snapshot")

	// Phase 2: the first run collects, the rest read the stored snapshot
	coldTime, warmAvg := runPhase(backend, config.SnapshotRuns, "Snapshot")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-snapshot average: %s, Cold time: %s, Warm average: %s\n", noSnapshotAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Root:           root,
		Backend:        backend,
		NoSnapshotTime: noSnapshotAvg,
		ColdTime:       coldTimeStr,
		WarmTime:       warmAvg,
	}
}

// runBenchmark executes gitcensus report multiple times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, rootPath, workDir, snapshotBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		"report",
		"--provider", "local",
		"--local-root", rootPath,
		"--snapshot-backend", snapshotBackend,
		"--quiet",
		"--color", "no",
	}
	switch snapshotBackend {
	case "file":
		args = append(args, "--snapshot-connect", filepath.Join(workDir, "snapshot.json"))
	case "sqlite":
		args = append(args, "--snapshot-connect", filepath.Join(workDir, "snapshot.db"))
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("gitcensus", args...)
		cmd.Dir = workDir

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Report built in") &&
		strings.Contains(outputStr, "Snapshot backend")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/gitcensus_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"root", "backend", "no_snapshot_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Root, result.Backend, result.NoSnapshotTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-16s %-7s: No-snapshot: %s, Cold: %s, Warm: %s\n",
			result.Root, result.Backend, result.NoSnapshotTime, result.ColdTime, result.WarmTime)
	}
}
