package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/internal/parquet"
)

// ExecuteRunExport exports run history from store to Parquet files next to outputFile.
func ExecuteRunExport(store contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is not configured. Set --runs-backend")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total failure records: %d\n", status.TableSizes[runFailuresTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	failures, err := store.GetAllFailures()
	if err != nil {
		return fmt.Errorf("failed to retrieve run failures: %w", err)
	}

	parquetRuns := parquet.ConvertRunRecords(runs)
	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	parquetFailures := parquet.ConvertFailureRecords(failures)
	failuresFile := outputFile + ".failures.parquet"
	if err := parquet.WriteFailuresParquet(parquetFailures, failuresFile); err != nil {
		return fmt.Errorf("failed to write run failures: %w", err)
	}
	fmt.Printf("Exported %d failure records to: %s\n", len(parquetFailures), failuresFile)

	fmt.Println("\nExport complete! The Parquet files can be read with DuckDB, Pandas (via pyarrow) or Apache Spark.")
	return nil
}
