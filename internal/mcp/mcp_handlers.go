package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/gitcensus/core"
	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	env *core.Env
}

// withConfig returns a shallow copy of the environment carrying cfg.
func (h *toolHandler) withConfig(cfg *contract.Config) *core.Env {
	env := *h.env
	env.Config = cfg
	return &env
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleGetReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.env.Config.Clone()
	now := time.Now()

	if s := request.GetString("start", ""); s != "" {
		t, err := contract.ParseTimeValue(s, now)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid start: %v", err)), nil
		}
		cfg.StartTime = t
	}
	if s := request.GetString("end", ""); s != "" {
		t, err := contract.ParseTimeValue(s, now)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid end: %v", err)), nil
		}
		cfg.EndTime = t
	}
	if cfg.StartTime.After(cfg.EndTime) {
		return mcp.NewToolResultError("invalid range: start is after end"), nil
	}
	if request.GetArguments()["interval"] != nil {
		interval := request.GetInt("interval", 0)
		if interval <= 0 {
			return mcp.NewToolResultError(fmt.Sprintf("invalid interval: must be greater than 0 days (received %d)", interval)), nil
		}
		cfg.IntervalDays = interval
	}
	cfg.Anonymize = request.GetBool("anonymize", cfg.Anonymize)
	cfg.IncludeDuplicates = request.GetBool("include_duplicates", cfg.IncludeDuplicates)

	name := request.GetString("report", "all")
	if !validReportName(name) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown report %q", name)), nil
	}

	bundle, _, err := core.BuildBundle(core.WithSuppressHeader(ctx), h.withConfig(cfg))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("report failed: %v", err)), nil
	}

	switch name {
	case "all":
		return jsonResult(bundle), nil
	case schema.TotalCommitsReport:
		return jsonResult(map[string]int{name: bundle.TotalCommits}), nil
	case schema.DateRangeReport:
		return jsonResult(map[string]string{name: bundle.DateRange}), nil
	}
	if chart, ok := bundle.Charts[name]; ok {
		if table, ok := bundle.Tables[name]; ok {
			return jsonResult(map[string]any{"table": table, "chart": chart}), nil
		}
		return jsonResult(chart), nil
	}
	return jsonResult(bundle.Tables[name]), nil
}

func validReportName(name string) bool {
	for _, n := range reportNames {
		if n == name {
			return true
		}
	}
	return false
}

// resolvedContributor is the answer of resolve_contributor.
type resolvedContributor struct {
	Key      string          `json:"key"`
	UserType schema.UserType `json:"user_type"`
	Labeled  bool            `json:"labeled"`
}

func (h *toolHandler) handleResolveContributor(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	commit := schema.RawCommit{
		CommitterEmail: request.GetString("committer_email", ""),
		AuthorEmail:    request.GetString("author_email", ""),
		CommitterName:  request.GetString("committer_name", ""),
		AuthorName:     request.GetString("author_name", ""),
	}
	projectPath := request.GetString("project_path", "")
	if commit.CommitterEmail == "" && commit.AuthorEmail == "" && commit.CommitterName == "" &&
		commit.AuthorName == "" && projectPath == "" {
		return mcp.NewToolResultError("at least one identity field or project_path is required"), nil
	}

	classifier := h.env.Tables.Classifier()
	key := h.env.Tables.Normalizer().Resolve(commit, projectPath)
	return jsonResult(resolvedContributor{
		Key:      key,
		UserType: classifier.ClassifyContributor(key),
		Labeled:  classifier.IsLabeled(key),
	}), nil
}

func (h *toolHandler) handleClassifyProject(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("project_path")
	if err != nil || path == "" {
		return mcp.NewToolResultError("project_path is required"), nil
	}
	return jsonResult(h.env.Tables.Classifier().ClassifyProject(path)), nil
}

func (h *toolHandler) handleListUnknownContributors(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ds, err := core.LoadDataset(core.WithSuppressHeader(ctx), h.env)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading snapshot failed: %v", err)), nil
	}
	unknown := core.UnknownContributors(ds, h.env.Tables.Classifier())
	if limit := request.GetInt("limit", 0); limit > 0 && limit < len(unknown) {
		unknown = unknown[:limit]
	}
	if unknown == nil {
		unknown = []schema.UnknownContributor{}
	}
	return jsonResult(unknown), nil
}
