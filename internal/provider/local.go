package provider

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/schema"
)

// UpstreamRemote is the remote name that marks a local repository as a fork.
const UpstreamRemote = "upstream"

// LocalProvider treats git repositories under a root directory as projects.
// A repository one level down is a namespace-less project; two levels down
// gives the usual "namespace/project" path.
type LocalProvider struct {
	root string
}

var _ contract.CommitProvider = &LocalProvider{} // Compile-time check

// NewLocalProvider creates a provider rooted at dir.
func NewLocalProvider(dir string) (*LocalProvider, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: local root %s: %w", contract.ErrConfiguration, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: local root %s is not a directory", contract.ErrConfiguration, dir)
	}
	return &LocalProvider{root: dir}, nil
}

// ListProjects implements the CommitProvider interface.
func (p *LocalProvider) ListProjects(ctx context.Context) ([]schema.Project, error) {
	top, err := subdirs(p.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read local root: %w", err)
	}

	var projects []schema.Project
	for _, dir := range top {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if project, ok := p.openProject(dir); ok {
			projects = append(projects, project)
			continue
		}
		nested, err := subdirs(dir)
		if err != nil {
			continue
		}
		for _, sub := range nested {
			if project, ok := p.openProject(sub); ok {
				projects = append(projects, project)
			}
		}
	}
	return projects, nil
}

func (p *LocalProvider) openProject(dir string) (schema.Project, bool) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return schema.Project{}, false
	}
	rel, err := filepath.Rel(p.root, dir)
	if err != nil {
		return schema.Project{}, false
	}
	project := schema.Project{Path: filepath.ToSlash(rel)}
	if remote, err := repo.Remote(UpstreamRemote); err == nil {
		project.Fork = true
		if urls := remote.Config().URLs; len(urls) > 0 {
			project.ForkedFrom = urls[0]
		}
	}
	return project, true
}

// ListCommits implements the CommitProvider interface.
// A repository without a HEAD yields an empty listing.
func (p *LocalProvider) ListCommits(ctx context.Context, project schema.Project) ([]schema.RawCommit, error) {
	repo, err := git.PlainOpen(filepath.Join(p.root, filepath.FromSlash(project.Path)))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", project.Path, err)
	}
	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return []schema.RawCommit{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD of %s: %w", project.Path, err)
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("unable to collect the commit history of %s: %w", project.Path, err)
	}
	defer iter.Close()

	var commits []schema.RawCommit
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		commits = append(commits, fromGitCommit(c, project.Path))
		return nil
	})
	return commits, err
}

func fromGitCommit(c *object.Commit, projectPath string) schema.RawCommit {
	parents := make([]string, len(c.ParentHashes))
	for i, h := range c.ParentHashes {
		parents[i] = h.String()
	}
	return schema.RawCommit{
		ID:             c.Hash.String(),
		CreatedAt:      c.Committer.When,
		ParentIDs:      parents,
		Title:          firstLine(c.Message),
		Message:        c.Message,
		AuthorName:     c.Author.Name,
		AuthorEmail:    c.Author.Email,
		AuthoredDate:   c.Author.When,
		CommitterName:  c.Committer.Name,
		CommitterEmail: c.Committer.Email,
		CommittedDate:  c.Committer.When,
		ProjectPath:    projectPath,
	}
}

// subdirs returns the non-hidden child directories of dir, sorted.
func subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() || e.Name()[0] == '.' {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}
