// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/gitcensus/core"
	"github.com/huangsam/gitcensus/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// reportNames lists the values accepted by get_report, plus "all".
var reportNames = []string{
	"all",
	schema.TotalCommitsReport,
	schema.ByProjectReport,
	schema.ByUserReport,
	schema.ByUserAndProjectReport,
	schema.ByUserByProjectReport,
	schema.ByUserAndProjectOverTimeName,
	schema.InternalExternalReport,
	schema.AllCommitsReport,
	schema.DateRangeReport,
}

// NewMCPServer initializes and configures the gitcensus MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(env *core.Env) *server.MCPServer {
	s := server.NewMCPServer(
		"gitcensus Contribution Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{env: env}

	// --- 1. Tool: get_report ---
	s.AddTool(mcp.NewTool("get_report",
		mcp.WithDescription("Build a contribution report from the stored commit snapshot. Collects first when no snapshot exists."),
		mcp.WithString("report", mcp.Description("Report to return. Defaults to 'all'."), mcp.Enum(reportNames...)),
		mcp.WithString("start", mcp.Description("Range start (RFC3339 or relative such as '6 months ago').")),
		mcp.WithString("end", mcp.Description("Range end, exclusive (RFC3339 or relative).")),
		mcp.WithNumber("interval", mcp.Description("Bucket width in days for time-based reports.")),
		mcp.WithBoolean("anonymize", mcp.Description("Replace contributor names and project paths with salted digests.")),
		mcp.WithBoolean("include_duplicates", mcp.Description("Count commits flagged as duplicates.")),
	), h.handleGetReport)

	// --- 2. Tool: resolve_contributor ---
	s.AddTool(mcp.NewTool("resolve_contributor",
		mcp.WithDescription("Resolve commit identity fields to the canonical contributor key and its internal/external label."),
		mcp.WithString("committer_email", mcp.Description("Committer email of the commit.")),
		mcp.WithString("author_email", mcp.Description("Author email of the commit.")),
		mcp.WithString("committer_name", mcp.Description("Committer name of the commit.")),
		mcp.WithString("author_name", mcp.Description("Author name of the commit.")),
		mcp.WithString("project_path", mcp.Description("Project path, used when every identity field is anonymous.")),
	), h.handleResolveContributor)

	// --- 3. Tool: classify_project ---
	s.AddTool(mcp.NewTool("classify_project",
		mcp.WithDescription("Derive the (group, category) pair of a project path."),
		mcp.WithString("project_path", mcp.Description("Project path such as 'Module1/x'."), mcp.Required()),
	), h.handleClassifyProject)

	// --- 4. Tool: list_unknown_contributors ---
	s.AddTool(mcp.NewTool("list_unknown_contributors",
		mcp.WithDescription("List contributor keys without an internal/external label, with commit counts and raw identities."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleListUnknownContributors)

	return s
}

// StartMCPServer starts the gitcensus MCP server on stdio.
func StartMCPServer(_ context.Context, env *core.Env) error {
	s := NewMCPServer(env)
	return server.ServeStdio(s)
}
