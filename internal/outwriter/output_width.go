package outwriter

import (
	"os"

	"github.com/huangsam/gitcensus/internal/contract"
	"golang.org/x/term"
)

// getTerminalWidth returns the width override, the detected terminal width, or 80.
func getTerminalWidth(cfg *contract.Config) int {
	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// GetMaxTableCellWidth calculates the maximum width of one text cell
// for a table with the given number of columns.
func GetMaxTableCellWidth(cfg *contract.Config, columns int) int {
	if columns <= 0 {
		columns = 1
	}
	// Reserve space for borders, separators and padding
	available := (getTerminalWidth(cfg) - 3*columns - 1) / columns
	if available < 12 {
		return 12
	}
	if available > 60 {
		return 60
	}
	return available
}
