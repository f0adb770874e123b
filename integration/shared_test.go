//go:build integration || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

var (
	// sharedBinaryPath holds the path to a shared gitcensus binary built once for all tests.
	sharedBinaryPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getBinary returns the path to the gitcensus binary, building it once if needed.
func getBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "gitcensus-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binaryPath := filepath.Join(tempDir, "gitcensus")
		buildCmd := exec.Command("go", "build", "-o", binaryPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if err := buildCmd.Run(); err != nil {
			panic(fmt.Sprintf("failed to build gitcensus: %v", err))
		}

		sharedBinaryPath = binaryPath
	})

	return sharedBinaryPath
}

// runCommand runs the CLI with args and returns its stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getBinary(), args...)
	cmd.Dir = t.TempDir()
	output, err := cmd.Output()
	if err != nil {
		var stderr string
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = string(exitErr.Stderr)
		}
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), string(output), stderr)
		return string(output), err
	}
	return string(output), nil
}

// localCommit describes one commit to create in a fixture repository.
type localCommit struct {
	email string
	when  time.Time
}

// makeLocalRoot creates one Git repository per entry of repos under a fresh directory.
func makeLocalRoot(t *testing.T, repos map[string][]localCommit) string {
	t.Helper()
	root := t.TempDir()
	for name, commits := range repos {
		dir := filepath.Join(root, name)
		repo, err := git.PlainInit(dir, false)
		require.NoError(t, err)
		wt, err := repo.Worktree()
		require.NoError(t, err)

		for i, c := range commits {
			file := filepath.Join(dir, "README.md")
			require.NoError(t, os.WriteFile(file, []byte(fmt.Sprintf("revision %d\n", i)), 0o644))
			_, err = wt.Add("README.md")
			require.NoError(t, err)
			sig := &object.Signature{Name: c.email, Email: c.email, When: c.when}
			_, err = wt.Commit(fmt.Sprintf("change %d", i), &git.CommitOptions{Author: sig, Committer: sig})
			require.NoError(t, err)
		}
	}
	return root
}

// fixtureRoot holds two Module1 projects with three commits in March 2020.
func fixtureRoot(t *testing.T) string {
	t.Helper()
	day := func(d int) time.Time { return time.Date(2020, 3, d, 12, 0, 0, 0, time.UTC) }
	return makeLocalRoot(t, map[string][]localCommit{
		"Module1/lab1": {
			{email: "jianmin@corp.example", when: day(2)},
			{email: "visitor@other.example", when: day(9)},
		},
		"Module1/lab2": {
			{email: "jianmin@corp.example", when: day(3)},
		},
	})
}

// baseArgs are the flags every fixture run needs.
func baseArgs(root string) []string {
	return []string{
		"--provider", "local",
		"--local-root", root,
		"--start", "2020-03-01T00:00:00Z",
		"--end", "2020-03-15T00:00:00Z",
		"--quiet",
		"--color", "no",
	}
}
