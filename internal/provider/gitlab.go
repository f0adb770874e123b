// Package provider lists projects and commits from source-control backends.
package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/schema"
	"github.com/xanzy/go-gitlab"
)

// pageSize is the number of items requested per GitLab API page.
const pageSize = 100

// GitLabProvider lists every project visible to a token and each project's full history.
type GitLabProvider struct {
	client *gitlab.Client
}

var _ contract.CommitProvider = &GitLabProvider{} // Compile-time check

// NewGitLabProvider creates a provider for the GitLab instance at baseURL.
func NewGitLabProvider(baseURL, token string) (*GitLabProvider, error) {
	if err := contract.ValidateGitLabToken(token); err != nil {
		return nil, err
	}
	client, err := gitlab.NewClient(token, gitlab.WithBaseURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create GitLab client: %w", contract.ErrConfiguration, err)
	}
	return &GitLabProvider{client: client}, nil
}

// ListProjects implements the CommitProvider interface.
func (p *GitLabProvider) ListProjects(ctx context.Context) ([]schema.Project, error) {
	opt := &gitlab.ListProjectsOptions{
		ListOptions: gitlab.ListOptions{PerPage: pageSize, Page: 1},
	}

	var projects []schema.Project
	for {
		page, resp, err := p.client.Projects.ListProjects(opt, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list projects: %w", err)
		}
		for _, pr := range page {
			project := schema.Project{Path: pr.PathWithNamespace, ID: pr.ID}
			if pr.ForkedFromProject != nil {
				project.Fork = true
				project.ForkedFrom = pr.ForkedFromProject.PathWithNamespace
			}
			projects = append(projects, project)
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return projects, nil
}

// ListCommits implements the CommitProvider interface. It lists the history
// of the project's default branch, following every page.
func (p *GitLabProvider) ListCommits(ctx context.Context, project schema.Project) ([]schema.RawCommit, error) {
	opt := &gitlab.ListCommitsOptions{
		ListOptions: gitlab.ListOptions{PerPage: pageSize, Page: 1},
	}

	var pid any = project.ID
	if project.ID == 0 {
		pid = project.Path
	}

	var commits []schema.RawCommit
	for {
		page, resp, err := p.client.Commits.ListCommits(pid, opt, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list commits for %s: %w", project.Path, err)
		}
		for _, c := range page {
			commits = append(commits, fromGitLabCommit(c, project.Path))
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return commits, nil
}

func fromGitLabCommit(c *gitlab.Commit, projectPath string) schema.RawCommit {
	return schema.RawCommit{
		ID:             c.ID,
		CreatedAt:      derefTime(c.CreatedAt),
		ParentIDs:      append([]string(nil), c.ParentIDs...),
		Title:          c.Title,
		Message:        c.Message,
		AuthorName:     c.AuthorName,
		AuthorEmail:    c.AuthorEmail,
		AuthoredDate:   derefTime(c.AuthoredDate),
		CommitterName:  c.CommitterName,
		CommitterEmail: c.CommitterEmail,
		CommittedDate:  derefTime(c.CommittedDate),
		ProjectPath:    projectPath,
	}
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// firstLine returns the commit subject line.
func firstLine(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(line)
}
