// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"planka-mcp/internal/service"
)

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = errors.New("not found")

// FakeService is an in-memory implementation of service.Service for testing.
// IDs are sequential per kind ("board-1", "card-2") so output is stable.
type FakeService struct {
	mu       sync.RWMutex
	seq      map[string]int
	projects []service.Project
	boards   []service.Board
	lists    []service.List
	cards    []service.Card
	calls    []string

	// LastCreateCard and LastUpdateCard hold the options of the latest call.
	LastCreateCard *service.CreateCardOptions
	LastUpdateCard *service.UpdateCardOptions

	// Error injection for testing
	ListProjectsErr error
	ListBoardsErr   error
	ListListsErr    error
	ListCardsErr    error
	CreateBoardErr  error
	CreateListErr   error
	CreateCardErr   error
	UpdateCardErr   error
	MoveCardErr     error
	DeleteCardErr   error
	DeleteListErr   error
}

var _ service.Service = (*FakeService)(nil)

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{seq: make(map[string]int)}
}

func (f *FakeService) nextID(kind string) string {
	f.seq[kind]++
	return fmt.Sprintf("%s-%d", kind, f.seq[kind])
}

func (f *FakeService) record(call string) {
	f.calls = append(f.calls, call)
}

// Calls returns the names of the service methods invoked so far.
func (f *FakeService) Calls() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// AddProject adds a project and returns its ID.
func (f *FakeService) AddProject(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID("project")
	f.projects = append(f.projects, service.Project{ID: id, Name: name})
	return id
}

// AddBoard adds a board to a project and returns its ID.
func (f *FakeService) AddBoard(projectID, name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addBoard(projectID, name).ID
}

func (f *FakeService) addBoard(projectID, name string) service.Board {
	pos := service.DefaultPosition
	b := service.Board{ID: f.nextID("board"), Name: name, Position: &pos, ProjectID: projectID}
	f.boards = append(f.boards, b)
	return b
}

// AddList adds a list to a board and returns its ID.
func (f *FakeService) AddList(boardID, name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addList(boardID, name).ID
}

func (f *FakeService) addList(boardID, name string) service.List {
	pos := service.DefaultPosition
	l := service.List{ID: f.nextID("list"), Name: name, Position: &pos, BoardID: boardID}
	f.lists = append(f.lists, l)
	return l
}

// AddCard adds a project card to a list and returns its ID.
func (f *FakeService) AddCard(listID, name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	pos := service.DefaultPosition
	c := service.Card{ID: f.nextID("card"), Name: name, Type: service.CardTypeProject, ListID: listID, Position: &pos}
	if l, ok := f.findList(listID); ok {
		c.BoardID = &l.BoardID
	}
	f.cards = append(f.cards, c)
	return c.ID
}

// Card returns a card by ID.
func (f *FakeService) Card(id string) (service.Card, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	i := f.cardIndex(id)
	if i < 0 {
		return service.Card{}, false
	}
	return f.cards[i], true
}

func (f *FakeService) findList(id string) (service.List, bool) {
	for _, l := range f.lists {
		if l.ID == id {
			return l, true
		}
	}
	return service.List{}, false
}

func (f *FakeService) cardIndex(id string) int {
	for i, c := range f.cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// ListProjects implements service.Service.
func (f *FakeService) ListProjects(ctx context.Context) ([]service.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListProjects")
	if f.ListProjectsErr != nil {
		return nil, f.ListProjectsErr
	}
	result := make([]service.Project, len(f.projects))
	copy(result, f.projects)
	return result, nil
}

// ListBoards implements service.Service.
func (f *FakeService) ListBoards(ctx context.Context, projectID string) ([]service.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListBoards")
	if f.ListBoardsErr != nil {
		return nil, f.ListBoardsErr
	}
	result := []service.Board{}
	for _, b := range f.boards {
		if b.ProjectID == projectID {
			result = append(result, b)
		}
	}
	return result, nil
}

// ListLists implements service.Service.
func (f *FakeService) ListLists(ctx context.Context, boardID string) ([]service.List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListLists")
	if f.ListListsErr != nil {
		return nil, f.ListListsErr
	}
	result := []service.List{}
	for _, l := range f.lists {
		if l.BoardID == boardID {
			result = append(result, l)
		}
	}
	return result, nil
}

// ListCards implements service.Service.
func (f *FakeService) ListCards(ctx context.Context, boardID string) ([]service.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListCards")
	if f.ListCardsErr != nil {
		return nil, f.ListCardsErr
	}
	result := []service.Card{}
	for _, c := range f.cards {
		if l, ok := f.findList(c.ListID); ok && l.BoardID == boardID {
			result = append(result, c)
		}
	}
	return result, nil
}

// CreateBoard implements service.Service.
func (f *FakeService) CreateBoard(ctx context.Context, projectID, name string) (service.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateBoard")
	if f.CreateBoardErr != nil {
		return service.Board{}, f.CreateBoardErr
	}
	return f.addBoard(projectID, name), nil
}

// CreateList implements service.Service.
func (f *FakeService) CreateList(ctx context.Context, boardID, name string) (service.List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateList")
	if f.CreateListErr != nil {
		return service.List{}, f.CreateListErr
	}
	return f.addList(boardID, name), nil
}

// CreateCard implements service.Service.
func (f *FakeService) CreateCard(ctx context.Context, opts service.CreateCardOptions) (service.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateCard")
	f.LastCreateCard = &opts
	if f.CreateCardErr != nil {
		return service.Card{}, f.CreateCardErr
	}

	cardType := opts.Type
	if cardType == "" {
		cardType = service.CardTypeProject
	}
	pos := service.DefaultPosition
	c := service.Card{
		ID:             f.nextID("card"),
		Name:           opts.Name,
		Type:           cardType,
		Description:    opts.Description,
		ListID:         opts.ListID,
		Position:       &pos,
		DueDate:        opts.DueDate,
		IsDueCompleted: opts.IsDueCompleted,
		Stopwatch:      opts.Stopwatch,
	}
	if l, ok := f.findList(opts.ListID); ok {
		c.BoardID = &l.BoardID
	}
	f.cards = append(f.cards, c)
	return c, nil
}

// UpdateCard implements service.Service.
func (f *FakeService) UpdateCard(ctx context.Context, cardID string, opts service.UpdateCardOptions) (service.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateCard")
	f.LastUpdateCard = &opts
	if f.UpdateCardErr != nil {
		return service.Card{}, f.UpdateCardErr
	}

	i := f.cardIndex(cardID)
	if i < 0 {
		return service.Card{}, ErrNotFound
	}
	c := &f.cards[i]
	if opts.Name != nil {
		c.Name = *opts.Name
	}
	if opts.Description != nil {
		c.Description = opts.Description
	}
	if opts.Type != nil {
		c.Type = *opts.Type
	}
	if opts.DueDate != nil {
		c.DueDate = opts.DueDate
	}
	if opts.IsDueCompleted != nil {
		c.IsDueCompleted = opts.IsDueCompleted
	}
	if opts.BoardID != nil {
		c.BoardID = opts.BoardID
	}
	if opts.CoverAttachmentID != nil {
		c.CoverAttachmentID = opts.CoverAttachmentID
	}
	return *c, nil
}

// MoveCard implements service.Service.
func (f *FakeService) MoveCard(ctx context.Context, cardID, listID string, position *float64) (service.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("MoveCard")
	if f.MoveCardErr != nil {
		return service.Card{}, f.MoveCardErr
	}

	i := f.cardIndex(cardID)
	if i < 0 {
		return service.Card{}, ErrNotFound
	}
	pos := service.DefaultPosition
	if position != nil {
		pos = *position
	}
	c := &f.cards[i]
	c.ListID = listID
	c.Position = &pos
	return *c, nil
}

// DeleteCard implements service.Service.
func (f *FakeService) DeleteCard(ctx context.Context, cardID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteCard")
	if f.DeleteCardErr != nil {
		return f.DeleteCardErr
	}

	i := f.cardIndex(cardID)
	if i < 0 {
		return ErrNotFound
	}
	f.cards = append(f.cards[:i], f.cards[i+1:]...)
	return nil
}

// DeleteList implements service.Service. Cards in the list go with it.
func (f *FakeService) DeleteList(ctx context.Context, listID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteList")
	if f.DeleteListErr != nil {
		return f.DeleteListErr
	}

	for i, l := range f.lists {
		if l.ID == listID {
			f.lists = append(f.lists[:i], f.lists[i+1:]...)
			kept := f.cards[:0]
			for _, c := range f.cards {
				if c.ListID != listID {
					kept = append(kept, c)
				}
			}
			f.cards = kept
			return nil
		}
	}
	return ErrNotFound
}
