// main is the entry point for the gitcensus CLI.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/gitcensus/cmd"
	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/internal/iocache"
)

func main() {
	err := cmd.Execute()

	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Cannot stop profiling", stopErr)
	}
	iocache.CloseStores()

	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
