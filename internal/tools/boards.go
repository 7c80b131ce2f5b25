package tools

import (
	"context"
	"encoding/json"

	"planka-mcp/internal/service"
)

func init() {
	Register(&ListListsTool{})
	Register(&ListCardsTool{})
	Register(&CreateListTool{})
	Register(&DeleteListTool{})
}

// boardArgs is shared by the tools that read a board.
type boardArgs struct {
	BoardID string `json:"board_id"`
}

const boardSchema = `{
  "type": "object",
  "properties": {
    "board_id": {"type": "string", "description": "The board ID"}
  },
  "required": ["board_id"]
}`

// ListListsTool implements list_lists.
type ListListsTool struct{}

func (t *ListListsTool) Name() string                 { return "list_lists" }
func (t *ListListsTool) Description() string          { return "List all lists (columns) on a board" }
func (t *ListListsTool) Annotations() *Annotations    { return programmatic() }
func (t *ListListsTool) InputSchema() json.RawMessage { return json.RawMessage(boardSchema) }

func (t *ListListsTool) Call(ctx context.Context, svc service.Service, args json.RawMessage) Result {
	var a boardArgs
	if res := decodeArgs(args, &a, "board_id"); res != nil {
		return *res
	}
	lists, err := svc.ListLists(ctx, a.BoardID)
	return respond("list lists", lists, err)
}

// ListCardsTool implements list_cards.
type ListCardsTool struct{}

func (t *ListCardsTool) Name() string                 { return "list_cards" }
func (t *ListCardsTool) Description() string          { return "List all cards on a board" }
func (t *ListCardsTool) Annotations() *Annotations    { return programmatic() }
func (t *ListCardsTool) InputSchema() json.RawMessage { return json.RawMessage(boardSchema) }

func (t *ListCardsTool) Call(ctx context.Context, svc service.Service, args json.RawMessage) Result {
	var a boardArgs
	if res := decodeArgs(args, &a, "board_id"); res != nil {
		return *res
	}
	cards, err := svc.ListCards(ctx, a.BoardID)
	return respond("list cards", cards, err)
}

// CreateListTool implements create_list.
type CreateListTool struct{}

func (t *CreateListTool) Name() string              { return "create_list" }
func (t *CreateListTool) Description() string       { return "Create a new list (column) on a board" }
func (t *CreateListTool) Annotations() *Annotations { return programmatic() }

func (t *CreateListTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "board_id": {"type": "string", "description": "The board ID to create the list on"},
    "name": {"type": "string", "description": "The list name"}
  },
  "required": ["board_id", "name"]
}`)
}

func (t *CreateListTool) Call(ctx context.Context, svc service.Service, args json.RawMessage) Result {
	var a struct {
		BoardID string `json:"board_id"`
		Name    string `json:"name"`
	}
	if res := decodeArgs(args, &a, "board_id", "name"); res != nil {
		return *res
	}
	list, err := svc.CreateList(ctx, a.BoardID, a.Name)
	return respond("create list", list, err)
}

// DeleteListTool implements delete_list. It is destructive and carries no annotations.
type DeleteListTool struct{}

func (t *DeleteListTool) Name() string              { return "delete_list" }
func (t *DeleteListTool) Description() string       { return "Delete a list and all its cards" }
func (t *DeleteListTool) Annotations() *Annotations { return nil }

func (t *DeleteListTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "list_id": {"type": "string", "description": "The list ID to delete"}
  },
  "required": ["list_id"]
}`)
}

func (t *DeleteListTool) Call(ctx context.Context, svc service.Service, args json.RawMessage) Result {
	var a struct {
		ListID string `json:"list_id"`
	}
	if res := decodeArgs(args, &a, "list_id"); res != nil {
		return *res
	}
	if err := svc.DeleteList(ctx, a.ListID); err != nil {
		return ErrorResult("Failed to delete list: %v", err)
	}
	return TextResult("List deleted successfully")
}
