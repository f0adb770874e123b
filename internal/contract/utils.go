package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/gitcensus/schema"
	"github.com/mitchellh/go-homedir"
)

// Color variables for console output.
var (
	InternalColor = color.New(color.FgGreen)            // InternalColor marks known internal contributors.
	ExternalColor = color.New(color.FgYellow)           // ExternalColor marks known external contributors.
	UnknownColor  = color.New(color.FgRed, color.Bold) // UnknownColor marks contributors missing from the table.
)

// GetColorLabel returns a colored user type label for console output (table).
func GetColorLabel(userType schema.UserType) string {
	text := string(userType)
	switch userType {
	case schema.InternalUser:
		return InternalColor.Sprint(text)
	case schema.ExternalUser:
		return ExternalColor.Sprint(text)
	default:
		return UnknownColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when the path is empty.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// ExpandPath resolves a leading "~" to the user's home directory.
// The input is returned unchanged when expansion fails.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}

// GetSnapshotDBFilePath returns the path to the SQLite DB file for snapshot storage.
func GetSnapshotDBFilePath() string {
	homeDir, err := homedir.Dir()
	if err != nil {
		return ".gitcensus_snapshot.db"
	}
	return filepath.Join(homeDir, ".gitcensus_snapshot.db")
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run tracking.
func GetRunsDBFilePath() string {
	homeDir, err := homedir.Dir()
	if err != nil {
		return ".gitcensus_runs.db"
	}
	return filepath.Join(homeDir, ".gitcensus_runs.db")
}

// TruncatePath truncates a project path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 so there is room for the "..." prefix and one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
