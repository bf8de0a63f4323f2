package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/RevCBH/mergetrain/internal/mcp"
)

const (
	ToolPlan     = "plan_merge_forward"
	ToolContext  = "gather_merge_context"
	ToolPlaybook = "get_playbook"
)

// Instructions is sent to MCP clients on initialize.
const Instructions = "Plans merge-forward trains across release branches. " +
	"Call plan_merge_forward first, then gather_merge_context before each hop, " +
	"and get_playbook before resolving any conflict. Nothing here modifies the repository."

var zero = 0

// Tools implements mcp.ToolHandler.
func (s *Service) Tools() []mcp.ToolDefinition {
	return []mcp.ToolDefinition{
		{
			Name: ToolPlan,
			Description: "Plan a merge-forward train. Returns one hop per target branch; each hop " +
				"merges the previous branch into the next and lists the commits it would bring over.",
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]mcp.Property{
					"from_branch": {
						Type:        "string",
						Description: "Branch the fix lands on first",
					},
					"to_branches": {
						Type:        "array",
						Description: "Target branches in merge order, e.g. [release/2, release/3, main]",
						Items:       &mcp.Property{Type: "string"},
					},
				},
				Required: []string{"from_branch", "to_branches"},
			},
		},
		{
			Name: ToolContext,
			Description: "Summarize how two branches diverged since their merge base, including files " +
				"changed on both sides (potential conflicts). Set include_details for commit and file lists.",
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]mcp.Property{
					"into_branch": {
						Type:        "string",
						Description: "Branch being merged into",
					},
					"merge_branch": {
						Type:        "string",
						Description: "Branch being merged in",
					},
					"include_details": {
						Type:        "boolean",
						Description: "Include recent commits and changed file lists",
						Default:     false,
					},
					"max_commits": {
						Type:        "integer",
						Description: "Recent commits shown per side in details mode",
						Default:     s.defaults.MaxCommits,
						Minimum:     &zero,
					},
					"max_files": {
						Type:        "integer",
						Description: "Non-conflicting files shown per side in details mode",
						Default:     s.defaults.MaxFiles,
						Minimum:     &zero,
					},
				},
				Required: []string{"into_branch", "merge_branch"},
			},
		},
		{
			Name:        ToolPlaybook,
			Description: "Return the conflict resolution playbook to follow before resolving conflicts.",
			InputSchema: mcp.InputSchema{
				Type:       "object",
				Properties: map[string]mcp.Property{},
			},
		},
	}
}

// CallTool implements mcp.ToolHandler. The result text is the response
// document as indented JSON.
func (s *Service) CallTool(ctx context.Context, name string, args json.RawMessage) (*mcp.ToolCallResult, error) {
	var (
		resp    any
		success bool
	)

	switch name {
	case ToolPlan:
		var in PlanArgs
		if err := decodeArgs(args, &in); err != nil {
			return nil, &mcp.ArgumentError{Tool: name, Err: err}
		}
		r := s.Plan(ctx, in)
		resp, success = r, r.Success
	case ToolContext:
		var in ContextArgs
		if err := decodeArgs(args, &in); err != nil {
			return nil, &mcp.ArgumentError{Tool: name, Err: err}
		}
		r := s.Context(ctx, in)
		resp, success = r, r.Success
	case ToolPlaybook:
		r := s.Playbook()
		resp, success = r, r.Success
	default:
		return nil, fmt.Errorf("%w: %s", mcp.ErrUnknownTool, name)
	}

	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s response: %w", name, err)
	}
	return mcp.TextResult(string(data), !success), nil
}

func decodeArgs(raw json.RawMessage, v any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	return json.Unmarshal(raw, v)
}
