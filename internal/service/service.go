// Package service defines the backend-agnostic interface for kanban operations.
package service

import "context"

// Service defines the interface for kanban backend operations.
// All Planka API calls go through this interface.
// Tools never import the HTTP backend directly.
type Service interface {
	// ListProjects returns all projects visible to the caller.
	ListProjects(ctx context.Context) ([]Project, error)

	// ListBoards returns the boards included with a project.
	ListBoards(ctx context.Context, projectID string) ([]Board, error)

	// ListLists returns the lists included with a board.
	ListLists(ctx context.Context, boardID string) ([]List, error)

	// ListCards returns the cards included with a board.
	ListCards(ctx context.Context, boardID string) ([]Card, error)

	// CreateBoard creates a board at the end of a project.
	CreateBoard(ctx context.Context, projectID, name string) (Board, error)

	// CreateList creates a list at the end of a board.
	CreateList(ctx context.Context, boardID, name string) (List, error)

	// CreateCard creates a card at the end of a list.
	CreateCard(ctx context.Context, opts CreateCardOptions) (Card, error)

	// UpdateCard patches only the fields set in opts.
	UpdateCard(ctx context.Context, cardID string, opts UpdateCardOptions) (Card, error)

	// MoveCard moves a card to a list. A nil position means the end of the list.
	MoveCard(ctx context.Context, cardID, listID string, position *float64) (Card, error)

	// DeleteCard deletes a card.
	DeleteCard(ctx context.Context, cardID string) error

	// DeleteList deletes a list and, remotely, all of its cards.
	DeleteList(ctx context.Context, listID string) error
}
