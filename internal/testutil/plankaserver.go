package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"

	"github.com/google/uuid"

	"planka-mcp/internal/service"
)

// RecordedRequest is one request received by PlankaServer.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	Body          []byte
}

// JSONBody decodes the recorded body into a generic map.
func (r RecordedRequest) JSONBody() map[string]any {
	var m map[string]any
	_ = json.Unmarshal(r.Body, &m)
	return m
}

type cannedResponse struct {
	status int
	body   string
}

// PlankaServer is an in-memory stand-in for the Planka HTTP API.
type PlankaServer struct {
	*httptest.Server

	mu sync.Mutex

	// Email and Password are the accepted login credentials.
	Email    string
	Password string

	// Token is the only accepted bearer token and the one issued on login.
	Token string

	// LoginFailures rejects that many login attempts with 401 before succeeding.
	LoginFailures int

	// OmitLoginToken makes a successful login answer without the token field.
	OmitLoginToken bool

	logins   int
	requests []RecordedRequest
	canned   map[string]cannedResponse

	projects []service.Project
	boards   []service.Board
	lists    []service.List
	cards    []service.Card
}

// NewPlankaServer starts a fake Planka server. Close it when done.
func NewPlankaServer() *PlankaServer {
	s := &PlankaServer{
		Email:    "demo@example.com",
		Password: "demo",
		Token:    "test-token",
		canned:   make(map[string]cannedResponse),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/access-tokens", s.login)
	mux.HandleFunc("GET /api/projects", s.authed(s.listProjects))
	mux.HandleFunc("GET /api/projects/{id}", s.authed(s.getProject))
	mux.HandleFunc("POST /api/projects/{id}/boards", s.authed(s.createBoard))
	mux.HandleFunc("GET /api/boards/{id}", s.authed(s.getBoard))
	mux.HandleFunc("POST /api/boards/{id}/lists", s.authed(s.createList))
	mux.HandleFunc("POST /api/lists/{id}/cards", s.authed(s.createCard))
	mux.HandleFunc("DELETE /api/lists/{id}", s.authed(s.deleteList))
	mux.HandleFunc("PATCH /api/cards/{id}", s.authed(s.patchCard))
	mux.HandleFunc("DELETE /api/cards/{id}", s.authed(s.deleteCard))

	s.Server = httptest.NewServer(s.record(mux))
	return s
}

// BaseURL returns the server URL parsed.
func (s *PlankaServer) BaseURL() *url.URL {
	u, err := url.Parse(s.URL)
	if err != nil {
		panic(err)
	}
	return u
}

// Respond makes every method+path request answer status and body verbatim.
func (s *PlankaServer) Respond(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canned[method+" "+path] = cannedResponse{status: status, body: body}
}

// Requests returns a copy of all requests received so far.
func (s *PlankaServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request.
func (s *PlankaServer) LastRequest() RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return RecordedRequest{}
	}
	return s.requests[len(s.requests)-1]
}

// Logins returns the number of login attempts.
func (s *PlankaServer) Logins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

// AddProject seeds a project and returns its ID.
func (s *PlankaServer) AddProject(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.projects = append(s.projects, service.Project{ID: id, Name: name})
	return id
}

// AddBoard seeds a board and returns its ID.
func (s *PlankaServer) AddBoard(projectID, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertBoard(projectID, name, service.DefaultPosition).ID
}

// AddList seeds a list and returns its ID.
func (s *PlankaServer) AddList(boardID, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertList(boardID, name, service.DefaultPosition).ID
}

// AddCard seeds a project card and returns its ID.
func (s *PlankaServer) AddCard(listID, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos := service.DefaultPosition
	card := service.Card{
		ID:       uuid.NewString(),
		Name:     name,
		Type:     service.CardTypeProject,
		ListID:   listID,
		BoardID:  s.boardOfList(listID),
		Position: &pos,
	}
	s.cards = append(s.cards, card)
	return card.ID
}

// Card returns the stored card with id.
func (s *PlankaServer) Card(id string) (service.Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cards {
		if c.ID == id {
			return c, true
		}
	}
	return service.Card{}, false
}

func (s *PlankaServer) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			Body:          body,
		})
		canned, ok := s.canned[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if ok {
			w.WriteHeader(canned.status)
			io.WriteString(w, canned.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *PlankaServer) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		want := "Bearer " + s.Token
		s.mu.Unlock()
		if r.Header.Get("Authorization") != want {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"code": "E_UNAUTHORIZED", "message": "Access token is missing or invalid"})
			return
		}
		next(w, r)
	}
}

func (s *PlankaServer) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmailOrUsername string `json:"emailOrUsername"`
		Password        string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.logins++

	if s.LoginFailures > 0 {
		s.LoginFailures--
		writeJSON(w, http.StatusUnauthorized, map[string]string{"code": "E_UNAUTHORIZED", "message": "Invalid credentials"})
		return
	}
	if req.EmailOrUsername != s.Email || req.Password != s.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"code": "E_UNAUTHORIZED", "message": "Invalid credentials"})
		return
	}
	if s.OmitLoginToken {
		writeJSON(w, http.StatusOK, map[string]string{})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"item": s.Token})
}

func (s *PlankaServer) listProjects(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	projects := append([]service.Project{}, s.projects...)
	writeJSON(w, http.StatusOK, map[string]any{"items": projects, "included": map[string]any{}})
}

func (s *PlankaServer) getProject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.projects {
		if p.ID != id {
			continue
		}
		boards := []service.Board{}
		for _, b := range s.boards {
			if b.ProjectID == id {
				boards = append(boards, b)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"item":     p,
			"included": map[string]any{"boards": boards, "boardMemberships": []any{}},
		})
		return
	}
	notFound(w, "Project not found")
}

func (s *PlankaServer) getBoard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.boards {
		if b.ID != id {
			continue
		}
		lists := []service.List{}
		listIDs := make(map[string]bool)
		for _, l := range s.lists {
			if l.BoardID == id {
				lists = append(lists, l)
				listIDs[l.ID] = true
			}
		}
		cards := []service.Card{}
		for _, c := range s.cards {
			if listIDs[c.ListID] {
				cards = append(cards, c)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"item":     b,
			"included": map[string]any{"lists": lists, "cards": cards, "labels": []any{}},
		})
		return
	}
	notFound(w, "Board not found")
}

func (s *PlankaServer) createBoard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string  `json:"name"`
		Position float64 `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	board := s.insertBoard(r.PathValue("id"), req.Name, req.Position)
	writeJSON(w, http.StatusOK, map[string]any{"item": board})
}

func (s *PlankaServer) createList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string  `json:"name"`
		Position float64 `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.insertList(r.PathValue("id"), req.Name, req.Position)
	writeJSON(w, http.StatusOK, map[string]any{"item": list})
}

func (s *PlankaServer) createCard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type           service.CardType   `json:"type"`
		Name           string             `json:"name"`
		Description    *string            `json:"description"`
		Position       float64            `json:"position"`
		DueDate        *string            `json:"dueDate"`
		IsDueCompleted *bool              `json:"isDueCompleted"`
		Stopwatch      *service.Stopwatch `json:"stopwatch"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, err.Error())
		return
	}
	listID := r.PathValue("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	pos := req.Position
	card := service.Card{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Type:           req.Type,
		Description:    req.Description,
		ListID:         listID,
		BoardID:        s.boardOfList(listID),
		Position:       &pos,
		DueDate:        req.DueDate,
		IsDueCompleted: req.IsDueCompleted,
		Stopwatch:      req.Stopwatch,
	}
	s.cards = append(s.cards, card)
	writeJSON(w, http.StatusOK, map[string]any{"item": card})
}

func (s *PlankaServer) patchCard(w http.ResponseWriter, r *http.Request) {
	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		badRequest(w, err.Error())
		return
	}
	id := r.PathValue("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cards {
		if s.cards[i].ID != id {
			continue
		}
		card := s.cards[i]
		// Round-trip through JSON so patched keys land on the same fields.
		merged, _ := json.Marshal(card)
		var fields map[string]json.RawMessage
		_ = json.Unmarshal(merged, &fields)
		for k, v := range patch {
			fields[k] = v
		}
		merged, _ = json.Marshal(fields)
		var updated service.Card
		if err := json.Unmarshal(merged, &updated); err != nil {
			badRequest(w, err.Error())
			return
		}
		s.cards[i] = updated
		writeJSON(w, http.StatusOK, map[string]any{"item": updated})
		return
	}
	notFound(w, "Card not found")
}

func (s *PlankaServer) deleteCard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.cards {
		if c.ID == id {
			s.cards = append(s.cards[:i], s.cards[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]any{"item": c})
			return
		}
	}
	notFound(w, "Card not found")
}

func (s *PlankaServer) deleteList(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.lists {
		if l.ID != id {
			continue
		}
		s.lists = append(s.lists[:i], s.lists[i+1:]...)
		kept := s.cards[:0]
		for _, c := range s.cards {
			if c.ListID != id {
				kept = append(kept, c)
			}
		}
		s.cards = kept
		writeJSON(w, http.StatusOK, map[string]any{"item": l})
		return
	}
	notFound(w, "List not found")
}

// insertBoard and the helpers below expect s.mu to be held.
func (s *PlankaServer) insertBoard(projectID, name string, position float64) service.Board {
	board := service.Board{ID: uuid.NewString(), Name: name, Position: &position, ProjectID: projectID}
	s.boards = append(s.boards, board)
	return board
}

func (s *PlankaServer) insertList(boardID, name string, position float64) service.List {
	list := service.List{ID: uuid.NewString(), Name: name, Position: &position, BoardID: boardID}
	s.lists = append(s.lists, list)
	return list
}

func (s *PlankaServer) boardOfList(listID string) *string {
	for _, l := range s.lists {
		if l.ID == listID {
			id := l.BoardID
			return &id
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusNotFound, map[string]string{"code": "E_NOT_FOUND", "message": msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"code": "E_MISSING_OR_INVALID_PARAMS", "message": msg})
}
