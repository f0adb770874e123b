package mcp_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/huangsam/gitcensus/core"
	"github.com/huangsam/gitcensus/internal/contract"
	mcp_internal "github.com/huangsam/gitcensus/internal/mcp"
	"github.com/huangsam/gitcensus/internal/provider"
	"github.com/huangsam/gitcensus/internal/refdata"
	"github.com/huangsam/gitcensus/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestEnv() *core.Env {
	source := schema.Project{Path: "Module1/x"}
	p := &provider.MockProvider{}
	p.On("ListProjects", mock.Anything).Return([]schema.Project{source}, nil)
	p.On("ListCommits", mock.Anything, source).Return([]schema.RawCommit{
		{ID: "a", CommitterEmail: "jianmin@corp.example", CommittedDate: time.Date(2020, 3, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "b", CommitterEmail: "visitor@other.example", CommittedDate: time.Date(2020, 3, 9, 0, 0, 0, 0, time.UTC)},
	}, nil)

	return &core.Env{
		Config: &contract.Config{
			StartTime:    time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC),
			EndTime:      time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC),
			IntervalDays: 7,
			Quiet:        true,
		},
		Tables:      refdata.Default(),
		NewProvider: func(*contract.Config) (contract.CommitProvider, error) { return p, nil },
	}
}

func callTool(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(newTestEnv())
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotEmpty(t, res.Content)
	return res
}

func resultText(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerRegistersTools(t *testing.T) {
	s := mcp_internal.NewMCPServer(newTestEnv())
	for _, name := range []string{"get_report", "resolve_contributor", "classify_project", "list_unknown_contributors"} {
		assert.NotNil(t, s.GetTool(name), "Tool %s should exist", name)
	}
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		tool     string
		args     map[string]any
		contains string
	}{
		{"get_report unknown report", "get_report", map[string]any{"report": "by_weather"}, "unknown report"},
		{"get_report bad start", "get_report", map[string]any{"start": "yesterday-ish"}, "invalid start"},
		{"get_report zero interval", "get_report", map[string]any{"interval": 0.0}, "greater than 0"},
		{"get_report start after end", "get_report", map[string]any{"start": "2021-01-01T00:00:00Z", "end": "2020-01-01T00:00:00Z"}, "start is after end"},
		{"resolve_contributor empty", "resolve_contributor", map[string]any{}, "at least one identity field"},
		{"classify_project missing path", "classify_project", map[string]any{}, "project_path is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, tt.tool, tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, resultText(res), tt.contains)
		})
	}
}

func TestClassifyProjectTool(t *testing.T) {
	res := callTool(t, "classify_project", map[string]any{"project_path": "Module1/x"})
	require.False(t, res.IsError)

	var got schema.ProjectClassification
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &got))
	assert.Equal(t, "Example Course", got.Group)
	assert.Equal(t, schema.SchoolhouseProject, got.Category)
}

func TestResolveContributorTool(t *testing.T) {
	res := callTool(t, "resolve_contributor", map[string]any{"committer_email": "jianmin@corp.example"})
	require.False(t, res.IsError)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &got))
	assert.Equal(t, "ben", got["key"])
	assert.Equal(t, string(schema.InternalUser), got["user_type"])
	assert.Equal(t, true, got["labeled"])
}

func TestGetReportTool(t *testing.T) {
	t.Run("total commits", func(t *testing.T) {
		res := callTool(t, "get_report", map[string]any{"report": schema.TotalCommitsReport})
		require.False(t, res.IsError, resultText(res))
		assert.JSONEq(t, `{"total_commits": 2}`, resultText(res))
	})

	t.Run("table report", func(t *testing.T) {
		res := callTool(t, "get_report", map[string]any{"report": schema.ByUserReport})
		require.False(t, res.IsError, resultText(res))

		var table schema.Table
		require.NoError(t, json.Unmarshal([]byte(resultText(res)), &table))
		assert.Equal(t, []string{"name", "commit_count", "user_type"}, table.Header)
		assert.Len(t, table.Rows, 2)
	})

	t.Run("narrowed range", func(t *testing.T) {
		res := callTool(t, "get_report", map[string]any{
			"report": schema.TotalCommitsReport,
			"start":  "2020-03-05T00:00:00Z",
		})
		require.False(t, res.IsError, resultText(res))
		assert.JSONEq(t, `{"total_commits": 1}`, resultText(res))
	})

	t.Run("all commits carries table and chart", func(t *testing.T) {
		res := callTool(t, "get_report", map[string]any{"report": schema.AllCommitsReport})
		require.False(t, res.IsError, resultText(res))

		var got map[string]json.RawMessage
		require.NoError(t, json.Unmarshal([]byte(resultText(res)), &got))
		assert.Contains(t, got, "table")
		assert.Contains(t, got, "chart")
	})
}

func TestListUnknownContributorsTool(t *testing.T) {
	res := callTool(t, "list_unknown_contributors", map[string]any{})
	require.False(t, res.IsError, resultText(res))

	var got []schema.UnknownContributor
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "visitor", got[0].Key)
	assert.Equal(t, 1, got[0].Commits)
}
