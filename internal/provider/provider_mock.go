package provider

import (
	"context"

	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/schema"
	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of CommitProvider for testing.
type MockProvider struct {
	mock.Mock
}

var _ contract.CommitProvider = &MockProvider{} // Compile-time check

// ListProjects mocks the ListProjects method.
func (m *MockProvider) ListProjects(ctx context.Context) ([]schema.Project, error) {
	args := m.Called(ctx)
	projects, _ := args.Get(0).([]schema.Project)
	return projects, args.Error(1)
}

// ListCommits mocks the ListCommits method.
func (m *MockProvider) ListCommits(ctx context.Context, project schema.Project) ([]schema.RawCommit, error) {
	args := m.Called(ctx, project)
	commits, _ := args.Get(0).([]schema.RawCommit)
	return commits, args.Error(1)
}
