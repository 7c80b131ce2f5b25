package tools

import (
	"context"
	"encoding/json"

	"planka-mcp/internal/service"
)

func init() {
	Register(&ListProjectsTool{})
	Register(&ListBoardsTool{})
	Register(&CreateBoardTool{})
}

// ListProjectsTool implements list_projects.
type ListProjectsTool struct{}

func (t *ListProjectsTool) Name() string              { return "list_projects" }
func (t *ListProjectsTool) Description() string       { return "List all Planka projects" }
func (t *ListProjectsTool) Annotations() *Annotations { return programmatic() }

func (t *ListProjectsTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{},"required":[]}`)
}

// Call ignores its arguments.
func (t *ListProjectsTool) Call(ctx context.Context, svc service.Service, _ json.RawMessage) Result {
	projects, err := svc.ListProjects(ctx)
	return respond("list projects", projects, err)
}

// ListBoardsTool implements list_boards.
type ListBoardsTool struct{}

func (t *ListBoardsTool) Name() string              { return "list_boards" }
func (t *ListBoardsTool) Description() string       { return "List all boards in a project" }
func (t *ListBoardsTool) Annotations() *Annotations { return programmatic() }

func (t *ListBoardsTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "project_id": {"type": "string", "description": "The project ID"}
  },
  "required": ["project_id"]
}`)
}

func (t *ListBoardsTool) Call(ctx context.Context, svc service.Service, args json.RawMessage) Result {
	var a struct {
		ProjectID string `json:"project_id"`
	}
	if res := decodeArgs(args, &a, "project_id"); res != nil {
		return *res
	}
	boards, err := svc.ListBoards(ctx, a.ProjectID)
	return respond("list boards", boards, err)
}

// CreateBoardTool implements create_board.
type CreateBoardTool struct{}

func (t *CreateBoardTool) Name() string              { return "create_board" }
func (t *CreateBoardTool) Description() string       { return "Create a new board in a project" }
func (t *CreateBoardTool) Annotations() *Annotations { return programmatic() }

func (t *CreateBoardTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "project_id": {"type": "string", "description": "The project ID to create the board in"},
    "name": {"type": "string", "description": "The board name"}
  },
  "required": ["project_id", "name"]
}`)
}

func (t *CreateBoardTool) Call(ctx context.Context, svc service.Service, args json.RawMessage) Result {
	var a struct {
		ProjectID string `json:"project_id"`
		Name      string `json:"name"`
	}
	if res := decodeArgs(args, &a, "project_id", "name"); res != nil {
		return *res
	}
	board, err := svc.CreateBoard(ctx, a.ProjectID, a.Name)
	return respond("create board", board, err)
}
