package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initRepo creates a repository at dir with one commit per message.
func initRepo(t *testing.T, dir string, email string, messages ...string) *git.Repository {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	when := time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, msg := range messages {
		name := filepath.Join(dir, "file.txt")
		require.NoError(t, os.WriteFile(name, []byte(msg), 0o644))
		_, err := wt.Add("file.txt")
		require.NoError(t, err)
		sig := &object.Signature{Name: "Sam", Email: email, When: when.AddDate(0, 0, i)}
		_, err = wt.Commit(msg, &git.CommitOptions{Author: sig, Committer: sig})
		require.NoError(t, err)
	}
	return repo
}

func TestNewLocalProviderValidatesRoot(t *testing.T) {
	_, err := NewLocalProvider(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, contract.ErrConfiguration)

	file := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = NewLocalProvider(file)
	assert.ErrorIs(t, err, contract.ErrConfiguration)
}

func TestLocalListProjects(t *testing.T) {
	root := t.TempDir()
	initRepo(t, filepath.Join(root, "Module1", "x"), "s@example.com", "init")
	fork := initRepo(t, filepath.Join(root, "Module1", "x-fork"), "s@example.com", "init")
	_, err := fork.CreateRemote(&config.RemoteConfig{Name: UpstreamRemote, URLs: []string{"https://example.com/Module1/x.git"}})
	require.NoError(t, err)
	initRepo(t, filepath.Join(root, "solo"), "a@example.com", "one")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty-ns", "not-a-repo"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".hidden"), 0o755))

	p, err := NewLocalProvider(root)
	require.NoError(t, err)
	projects, err := p.ListProjects(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []schema.Project{
		{Path: "Module1/x"},
		{Path: "Module1/x-fork", Fork: true, ForkedFrom: "https://example.com/Module1/x.git"},
		{Path: "solo"},
	}, projects)
}

func TestLocalListCommits(t *testing.T) {
	root := t.TempDir()
	initRepo(t, filepath.Join(root, "grp", "p"), "s@example.com", "first", "second\n\nbody")

	p, err := NewLocalProvider(root)
	require.NoError(t, err)
	commits, err := p.ListCommits(context.Background(), schema.Project{Path: "grp/p"})
	require.NoError(t, err)
	require.Len(t, commits, 2)

	newest := commits[0]
	assert.Equal(t, "second", newest.Title)
	assert.Equal(t, "grp/p", newest.ProjectPath)
	assert.Equal(t, "s@example.com", newest.CommitterEmail)
	assert.Len(t, newest.ID, 40)
	assert.Equal(t, []string{commits[1].ID}, newest.ParentIDs)
	assert.Empty(t, commits[1].ParentIDs)
}

func TestLocalListCommitsEmptyRepo(t *testing.T) {
	root := t.TempDir()
	_, err := git.PlainInit(filepath.Join(root, "fresh"), false)
	require.NoError(t, err)

	p, err := NewLocalProvider(root)
	require.NoError(t, err)
	commits, err := p.ListCommits(context.Background(), schema.Project{Path: "fresh"})
	require.NoError(t, err)
	assert.Empty(t, commits)
}

func TestLocalListCommitsMissingRepo(t *testing.T) {
	p, err := NewLocalProvider(t.TempDir())
	require.NoError(t, err)
	_, err = p.ListCommits(context.Background(), schema.Project{Path: "nope"})
	assert.Error(t, err)
}
