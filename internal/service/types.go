// Package service defines the backend-agnostic interface for kanban operations.
package service

import (
	"errors"
	"strings"
)

// DefaultPosition places a new board, list or card at the end of its parent.
const DefaultPosition = 65535.0

// CardType is the kind of a card.
type CardType string

const (
	CardTypeProject CardType = "project"
	CardTypeStory   CardType = "story"
)

// ErrInvalidCardType is returned by ParseCardType for anything but project or story.
var ErrInvalidCardType = errors.New("invalid card type: must be 'project' or 'story'")

// ParseCardType matches s case-insensitively against the known card types.
func ParseCardType(s string) (CardType, error) {
	switch strings.ToLower(s) {
	case string(CardTypeProject):
		return CardTypeProject, nil
	case string(CardTypeStory):
		return CardTypeStory, nil
	default:
		return "", ErrInvalidCardType
	}
}

// Project is a top-level container of boards.
type Project struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Slug *string `json:"slug,omitempty"`
}

// Board belongs to a project and holds lists.
type Board struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Position  *float64 `json:"position,omitempty"`
	ProjectID string   `json:"projectId,omitempty"`
}

// List is a column on a board.
type List struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Position *float64 `json:"position,omitempty"`
	BoardID  string   `json:"boardId"`
}

// Stopwatch tracks time spent on a card.
// StartedAt is nil while the stopwatch is stopped; Total is in seconds.
type Stopwatch struct {
	StartedAt *string `json:"startedAt"`
	Total     int64   `json:"total"`
}

// Card is a single item in a list.
type Card struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Type              CardType   `json:"type,omitempty"`
	Description       *string    `json:"description,omitempty"`
	ListID            string     `json:"listId"`
	BoardID           *string    `json:"boardId,omitempty"`
	Position          *float64   `json:"position,omitempty"`
	DueDate           *string    `json:"dueDate,omitempty"`
	IsDueCompleted    *bool      `json:"isDueCompleted,omitempty"`
	Stopwatch         *Stopwatch `json:"stopwatch,omitempty"`
	CoverAttachmentID *string    `json:"coverAttachmentId,omitempty"`
}

// CreateCardOptions describes a card to create.
// Nil pointers are left out of the request.
type CreateCardOptions struct {
	ListID         string
	Type           CardType
	Name           string
	Description    *string
	DueDate        *string
	IsDueCompleted *bool
	Stopwatch      *Stopwatch
}

// UpdateCardOptions is a partial card update.
// Only non-nil fields are sent; there is no way to clear a field.
type UpdateCardOptions struct {
	Name              *string
	Description       *string
	Type              *CardType
	DueDate           *string
	IsDueCompleted    *bool
	BoardID           *string
	CoverAttachmentID *string
}
