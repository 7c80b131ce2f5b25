package tools

import (
	"context"
	"encoding/json"

	"planka-mcp/internal/service"
)

func init() {
	Register(&CreateCardTool{})
	Register(&UpdateCardTool{})
	Register(&MoveCardTool{})
	Register(&DeleteCardTool{})
}

const invalidCardType = "Invalid card type. Must be 'project' or 'story'"

// CreateCardTool implements create_card.
type CreateCardTool struct{}

func (t *CreateCardTool) Name() string              { return "create_card" }
func (t *CreateCardTool) Description() string       { return "Create a new card in a list" }
func (t *CreateCardTool) Annotations() *Annotations { return programmatic() }

func (t *CreateCardTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "list_id": {"type": "string", "description": "The list ID to create the card in"},
    "type": {
      "type": "string",
      "enum": ["project", "story"],
      "description": "Type of the card (project or story)",
      "default": "project"
    },
    "name": {"type": "string", "description": "The card title"},
    "description": {"type": "string", "description": "Optional card description"},
    "due_date": {"type": "string", "format": "date-time", "description": "Optional due date (ISO 8601 format)"},
    "is_due_completed": {"type": "boolean", "description": "Whether the due date is completed"}
  },
  "required": ["list_id", "name"]
}`)
}

type createCardArgs struct {
	ListID         string        `json:"list_id"`
	Type           presentString `json:"type"`
	Name           string        `json:"name"`
	Description    *string       `json:"description"`
	DueDate        *string       `json:"due_date"`
	IsDueCompleted *bool         `json:"is_due_completed"`
}

func (t *CreateCardTool) Call(ctx context.Context, svc service.Service, args json.RawMessage) Result {
	var a createCardArgs
	if res := decodeArgs(args, &a, "list_id", "name"); res != nil {
		return *res
	}

	// An absent type means project; a null type is rejected like any unknown one.
	cardType := service.CardTypeProject
	if a.Type.Set {
		if a.Type.Value == nil {
			return ErrorResult(invalidCardType)
		}
		parsed, err := service.ParseCardType(*a.Type.Value)
		if err != nil {
			return ErrorResult(invalidCardType)
		}
		cardType = parsed
	}

	card, err := svc.CreateCard(ctx, service.CreateCardOptions{
		ListID:         a.ListID,
		Type:           cardType,
		Name:           a.Name,
		Description:    a.Description,
		DueDate:        a.DueDate,
		IsDueCompleted: a.IsDueCompleted,
	})
	return respond("create card", card, err)
}

// UpdateCardTool implements update_card.
type UpdateCardTool struct{}

func (t *UpdateCardTool) Name() string { return "update_card" }
func (t *UpdateCardTool) Description() string {
	return "Update a card's properties (name, description, type, due date, etc.)"
}
func (t *UpdateCardTool) Annotations() *Annotations { return programmatic() }

func (t *UpdateCardTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "card_id": {"type": "string", "description": "The card ID to update"},
    "name": {"type": "string", "description": "New card title (optional)"},
    "description": {"type": "string", "description": "New card description (optional)"},
    "type": {"type": "string", "enum": ["project", "story"], "description": "Card type (optional)"},
    "due_date": {"type": "string", "format": "date-time", "description": "Due date in ISO 8601 format (optional)"},
    "is_due_completed": {"type": "boolean", "description": "Whether the due date is completed (optional)"},
    "board_id": {"type": "string", "description": "Move card to different board (optional)"},
    "cover_attachment_id": {"type": "string", "description": "Set cover image attachment ID (optional)"}
  },
  "required": ["card_id"]
}`)
}

type updateCardArgs struct {
	CardID            string  `json:"card_id"`
	Name              *string `json:"name"`
	Description       *string `json:"description"`
	Type              *string `json:"type"`
	DueDate           *string `json:"due_date"`
	IsDueCompleted    *bool   `json:"is_due_completed"`
	BoardID           *string `json:"board_id"`
	CoverAttachmentID *string `json:"cover_attachment_id"`
}

func (t *UpdateCardTool) Call(ctx context.Context, svc service.Service, args json.RawMessage) Result {
	var a updateCardArgs
	if res := decodeArgs(args, &a, "card_id"); res != nil {
		return *res
	}

	opts := service.UpdateCardOptions{
		Name:              a.Name,
		Description:       a.Description,
		DueDate:           a.DueDate,
		IsDueCompleted:    a.IsDueCompleted,
		BoardID:           a.BoardID,
		CoverAttachmentID: a.CoverAttachmentID,
	}
	if a.Type != nil {
		parsed, err := service.ParseCardType(*a.Type)
		if err != nil {
			return ErrorResult(invalidCardType)
		}
		opts.Type = &parsed
	}

	card, err := svc.UpdateCard(ctx, a.CardID, opts)
	return respond("update card", card, err)
}

// MoveCardTool implements move_card.
type MoveCardTool struct{}

func (t *MoveCardTool) Name() string              { return "move_card" }
func (t *MoveCardTool) Description() string       { return "Move a card to a different list" }
func (t *MoveCardTool) Annotations() *Annotations { return programmatic() }

func (t *MoveCardTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "card_id": {"type": "string", "description": "The card ID to move"},
    "list_id": {"type": "string", "description": "The target list ID"},
    "position": {"type": "number", "description": "Position in the list (optional)"}
  },
  "required": ["card_id", "list_id"]
}`)
}

func (t *MoveCardTool) Call(ctx context.Context, svc service.Service, args json.RawMessage) Result {
	var a struct {
		CardID   string   `json:"card_id"`
		ListID   string   `json:"list_id"`
		Position *float64 `json:"position"`
	}
	if res := decodeArgs(args, &a, "card_id", "list_id"); res != nil {
		return *res
	}
	card, err := svc.MoveCard(ctx, a.CardID, a.ListID, a.Position)
	return respond("move card", card, err)
}

// DeleteCardTool implements delete_card. It is destructive and carries no annotations.
type DeleteCardTool struct{}

func (t *DeleteCardTool) Name() string              { return "delete_card" }
func (t *DeleteCardTool) Description() string       { return "Delete a card" }
func (t *DeleteCardTool) Annotations() *Annotations { return nil }

func (t *DeleteCardTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "card_id": {"type": "string", "description": "The card ID to delete"}
  },
  "required": ["card_id"]
}`)
}

func (t *DeleteCardTool) Call(ctx context.Context, svc service.Service, args json.RawMessage) Result {
	var a struct {
		CardID string `json:"card_id"`
	}
	if res := decodeArgs(args, &a, "card_id"); res != nil {
		return *res
	}
	if err := svc.DeleteCard(ctx, a.CardID); err != nil {
		return ErrorResult("Failed to delete card: %v", err)
	}
	return TextResult("Card deleted successfully")
}
