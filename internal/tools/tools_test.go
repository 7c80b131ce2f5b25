package tools_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"

	"planka-mcp/internal/service"
	"planka-mcp/internal/testutil"
	"planka-mcp/internal/tools"
)

func call(t *testing.T, svc service.Service, name string, args string) tools.Result {
	t.Helper()
	var raw json.RawMessage
	if args != "" {
		raw = json.RawMessage(args)
	}
	return tools.DefaultRegistry.Call(context.Background(), svc, name, raw)
}

func TestDefaultRegistry_AllTools(t *testing.T) {
	var names []string
	for _, tool := range tools.DefaultRegistry.All() {
		names = append(names, tool.Name())
	}
	assert.Equal(t, []string{
		"create_board",
		"create_card",
		"create_list",
		"delete_card",
		"delete_list",
		"list_boards",
		"list_cards",
		"list_lists",
		"list_projects",
		"move_card",
		"update_card",
	}, names)
}

func TestRegistry_DuplicateName(t *testing.T) {
	r := tools.NewRegistry()
	require.NoError(t, r.Register(&tools.DeleteCardTool{}))
	err := r.Register(&tools.DeleteCardTool{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool already registered: delete_card")
}

func TestAnnotations_DestructiveToolsExcluded(t *testing.T) {
	for _, d := range tools.DefaultRegistry.Catalog() {
		switch d.Name {
		case "delete_card", "delete_list":
			assert.Nil(t, d.Annotations, d.Name)
		default:
			require.NotNil(t, d.Annotations, d.Name)
			assert.Equal(t, []string{tools.ProgrammaticCaller}, d.Annotations.AllowedCallers, d.Name)
		}
	}
}

func TestCatalog_WireShape(t *testing.T) {
	raw, err := json.Marshal(tools.DefaultRegistry.Catalog())
	require.NoError(t, err)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(raw, &entries))
	require.Len(t, entries, 11)

	for _, e := range entries {
		assert.Contains(t, e, "inputSchema")
		if e["name"] == "delete_list" {
			assert.NotContains(t, e, "annotations")
		}
		if e["name"] == "list_projects" {
			assert.Equal(t, map[string]any{"allowedCallers": []any{"code_execution_20250825"}}, e["annotations"])
		}
	}
}

func TestInputSchemas_AcceptSampleArguments(t *testing.T) {
	samples := map[string]string{
		"list_projects": `{}`,
		"list_boards":   `{"project_id":"p1"}`,
		"list_lists":    `{"board_id":"b1"}`,
		"list_cards":    `{"board_id":"b1"}`,
		"create_board":  `{"project_id":"p1","name":"Roadmap"}`,
		"create_list":   `{"board_id":"b1","name":"Todo"}`,
		"create_card":   `{"list_id":"l1","name":"Task","type":"story","due_date":"2025-01-31T12:00:00Z","is_due_completed":false}`,
		"update_card":   `{"card_id":"c1","name":"New","cover_attachment_id":"a1"}`,
		"move_card":     `{"card_id":"c1","list_id":"l2","position":1024.5}`,
		"delete_card":   `{"card_id":"c1"}`,
		"delete_list":   `{"list_id":"l1"}`,
	}

	for _, tool := range tools.DefaultRegistry.All() {
		t.Run(tool.Name(), func(t *testing.T) {
			schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(tool.InputSchema()))
			require.NoError(t, err)

			sample, ok := samples[tool.Name()]
			require.True(t, ok, "no sample for %s", tool.Name())
			res, err := schema.Validate(gojsonschema.NewStringLoader(sample))
			require.NoError(t, err)
			assert.True(t, res.Valid(), "%v", res.Errors())

			res, err = schema.Validate(gojsonschema.NewStringLoader(`[]`))
			require.NoError(t, err)
			assert.False(t, res.Valid())
		})
	}
}

func TestUnknownTool(t *testing.T) {
	svc := testutil.NewFakeService()
	res := call(t, svc, "frobnicate", `{}`)
	assert.True(t, res.IsError)
	assert.Equal(t, "Unknown tool: frobnicate", res.Text())
	assert.Empty(t, svc.Calls())
}

func TestMissingArguments(t *testing.T) {
	tests := []struct {
		tool string
		want string
	}{
		{"list_boards", "Missing required argument: project_id"},
		{"list_lists", "Missing required argument: board_id"},
		{"list_cards", "Missing required argument: board_id"},
		{"create_board", "Missing required arguments: project_id, name"},
		{"create_list", "Missing required arguments: board_id, name"},
		{"create_card", "Missing required arguments: list_id, name"},
		{"update_card", "Missing required argument: card_id"},
		{"move_card", "Missing required arguments: card_id, list_id"},
		{"delete_card", "Missing required argument: card_id"},
		{"delete_list", "Missing required argument: list_id"},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			svc := testutil.NewFakeService()
			for _, args := range []string{"", "null"} {
				res := call(t, svc, tt.tool, args)
				assert.True(t, res.IsError)
				assert.Equal(t, tt.want, res.Text())
			}
			assert.Empty(t, svc.Calls())
		})
	}
}

func TestInvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		tool string
		args string
		want string
	}{
		{"wrong type", "list_boards", `{"project_id":5}`, "Invalid arguments: json: cannot unmarshal number"},
		{"not an object", "list_cards", `["b1"]`, "Invalid arguments: json: cannot unmarshal array"},
		{"missing field", "create_board", `{"project_id":"p1"}`, "Invalid arguments: missing field `name`"},
		{"null field", "move_card", `{"card_id":"c1","list_id":null}`, "Invalid arguments: missing field `list_id`"},
		{"position not a number", "move_card", `{"card_id":"c1","list_id":"l1","position":"top"}`, "Invalid arguments:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := testutil.NewFakeService()
			res := call(t, svc, tt.tool, tt.args)
			assert.True(t, res.IsError)
			assert.Contains(t, res.Text(), tt.want)
			assert.Empty(t, svc.Calls())
		})
	}
}

func TestListProjects_IgnoresArguments(t *testing.T) {
	svc := testutil.NewFakeService()

	res := call(t, svc, "list_projects", "")
	assert.False(t, res.IsError)
	assert.Equal(t, "[]", res.Text())

	svc.AddProject("Alpha")
	res = call(t, svc, "list_projects", `{"unused":true}`)
	assert.False(t, res.IsError)
	assert.JSONEq(t, `[{"id":"project-1","name":"Alpha"}]`, res.Text())
}

func TestListTools_PrettyJSON(t *testing.T) {
	svc := testutil.NewFakeService()
	boardID := svc.AddBoard(svc.AddProject("Alpha"), "Roadmap")
	listID := svc.AddList(boardID, "Todo")
	svc.AddCard(listID, "Card")

	res := call(t, svc, "list_lists", `{"board_id":"`+boardID+`"}`)
	require.False(t, res.IsError)
	assert.Equal(t, "[\n  {\n    \"id\": \"list-1\",\n    \"name\": \"Todo\",\n    \"position\": 65535,\n    \"boardId\": \"board-1\"\n  }\n]", res.Text())

	res = call(t, svc, "list_cards", `{"board_id":"`+boardID+`"}`)
	require.False(t, res.IsError)
	var cards []service.Card
	require.NoError(t, json.Unmarshal([]byte(res.Text()), &cards))
	require.Len(t, cards, 1)
	assert.Equal(t, "Card", cards[0].Name)

	res = call(t, svc, "list_boards", `{"project_id":"project-1"}`)
	require.False(t, res.IsError)
	assert.Contains(t, res.Text(), `"name": "Roadmap"`)
}

func TestCreateBoardAndList(t *testing.T) {
	svc := testutil.NewFakeService()

	res := call(t, svc, "create_board", `{"project_id":"project-9","name":"Roadmap"}`)
	require.False(t, res.IsError)
	assert.JSONEq(t, `{"id":"board-1","name":"Roadmap","position":65535,"projectId":"project-9"}`, res.Text())

	res = call(t, svc, "create_list", `{"board_id":"board-1","name":"Todo"}`)
	require.False(t, res.IsError)
	assert.JSONEq(t, `{"id":"list-1","name":"Todo","position":65535,"boardId":"board-1"}`, res.Text())
}

func TestCreateCard_Golden(t *testing.T) {
	svc := testutil.NewFakeService()
	listID := svc.AddList(svc.AddBoard(svc.AddProject("P"), "B"), "Todo")

	res := call(t, svc, "create_card", `{
		"list_id": "`+listID+`",
		"name": "Write docs",
		"type": "story",
		"description": "<b>draft</b> & review",
		"due_date": "2025-01-31T12:00:00Z",
		"is_due_completed": false
	}`)
	require.False(t, res.IsError, res.Text())
	testutil.Golden(t, "create_card", res.Text())
}

func TestCreateCard_DefaultsToProject(t *testing.T) {
	svc := testutil.NewFakeService()

	res := call(t, svc, "create_card", `{"list_id":"l1","name":"Task"}`)
	require.False(t, res.IsError)
	require.NotNil(t, svc.LastCreateCard)
	assert.Equal(t, service.CreateCardOptions{ListID: "l1", Type: service.CardTypeProject, Name: "Task"}, *svc.LastCreateCard)
}

func TestCreateCard_TypeIsCaseInsensitive(t *testing.T) {
	svc := testutil.NewFakeService()

	res := call(t, svc, "create_card", `{"list_id":"l1","name":"Task","type":"STORY"}`)
	require.False(t, res.IsError)
	assert.Equal(t, service.CardTypeStory, svc.LastCreateCard.Type)
}

func TestInvalidCardType_RejectedBeforeCall(t *testing.T) {
	tests := []struct {
		tool string
		args string
	}{
		{"create_card", `{"list_id":"l1","name":"Task","type":"epic"}`},
		{"create_card", `{"list_id":"l1","name":"Task","type":null}`},
		{"update_card", `{"card_id":"c1","type":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.tool+" "+tt.args, func(t *testing.T) {
			svc := testutil.NewFakeService()
			res := call(t, svc, tt.tool, tt.args)
			assert.True(t, res.IsError)
			assert.Equal(t, "Invalid card type. Must be 'project' or 'story'", res.Text())
			assert.Empty(t, svc.Calls())
		})
	}
}

func TestCreateCard_MistypedTypeIsInvalidArguments(t *testing.T) {
	svc := testutil.NewFakeService()

	res := call(t, svc, "create_card", `{"list_id":"l1","name":"Task","type":7}`)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text(), "Invalid arguments:")
	assert.Empty(t, svc.Calls())
}

func TestUpdateCard_NullTypeLeavesTypeUnchanged(t *testing.T) {
	svc := testutil.NewFakeService()
	cardID := svc.AddCard("l1", "Card")

	res := call(t, svc, "update_card", `{"card_id":"`+cardID+`","type":null}`)
	require.False(t, res.IsError, res.Text())
	assert.Nil(t, svc.LastUpdateCard.Type)
}

func TestUpdateCard_OnlyProvidedFields(t *testing.T) {
	svc := testutil.NewFakeService()
	cardID := svc.AddCard("l1", "Old")

	res := call(t, svc, "update_card", `{"card_id":"`+cardID+`","name":"New","type":"Story"}`)
	require.False(t, res.IsError, res.Text())

	opts := svc.LastUpdateCard
	require.NotNil(t, opts)
	require.NotNil(t, opts.Name)
	assert.Equal(t, "New", *opts.Name)
	require.NotNil(t, opts.Type)
	assert.Equal(t, service.CardTypeStory, *opts.Type)
	assert.Nil(t, opts.Description)
	assert.Nil(t, opts.DueDate)
	assert.Nil(t, opts.IsDueCompleted)
	assert.Nil(t, opts.BoardID)
	assert.Nil(t, opts.CoverAttachmentID)

	card, ok := svc.Card(cardID)
	require.True(t, ok)
	assert.Equal(t, "New", card.Name)
}

func TestMoveCard(t *testing.T) {
	svc := testutil.NewFakeService()
	cardID := svc.AddCard("l1", "Card")

	res := call(t, svc, "move_card", `{"card_id":"`+cardID+`","list_id":"l2"}`)
	require.False(t, res.IsError)
	assert.Contains(t, res.Text(), `"position": 65535`)

	res = call(t, svc, "move_card", `{"card_id":"`+cardID+`","list_id":"l3","position":1024.5}`)
	require.False(t, res.IsError)
	card, _ := svc.Card(cardID)
	assert.Equal(t, "l3", card.ListID)
	assert.Equal(t, 1024.5, *card.Position)
}

func TestDeleteTools(t *testing.T) {
	svc := testutil.NewFakeService()
	listID := svc.AddList("b1", "Todo")
	cardID := svc.AddCard(listID, "Card")
	other := svc.AddCard(listID, "Other")

	res := call(t, svc, "delete_card", `{"card_id":"`+cardID+`"}`)
	assert.False(t, res.IsError)
	assert.Equal(t, "Card deleted successfully", res.Text())

	res = call(t, svc, "delete_list", `{"list_id":"`+listID+`"}`)
	assert.False(t, res.IsError)
	assert.Equal(t, "List deleted successfully", res.Text())
	_, ok := svc.Card(other)
	assert.False(t, ok)
}

func TestServiceFailures(t *testing.T) {
	boom := errors.New("HTTP status 500: boom")
	tests := []struct {
		tool   string
		args   string
		inject func(*testutil.FakeService)
		want   string
	}{
		{"list_projects", ``, func(f *testutil.FakeService) { f.ListProjectsErr = boom }, "Failed to list projects: "},
		{"list_boards", `{"project_id":"p"}`, func(f *testutil.FakeService) { f.ListBoardsErr = boom }, "Failed to list boards: "},
		{"list_lists", `{"board_id":"b"}`, func(f *testutil.FakeService) { f.ListListsErr = boom }, "Failed to list lists: "},
		{"list_cards", `{"board_id":"b"}`, func(f *testutil.FakeService) { f.ListCardsErr = boom }, "Failed to list cards: "},
		{"create_board", `{"project_id":"p","name":"n"}`, func(f *testutil.FakeService) { f.CreateBoardErr = boom }, "Failed to create board: "},
		{"create_list", `{"board_id":"b","name":"n"}`, func(f *testutil.FakeService) { f.CreateListErr = boom }, "Failed to create list: "},
		{"create_card", `{"list_id":"l","name":"n"}`, func(f *testutil.FakeService) { f.CreateCardErr = boom }, "Failed to create card: "},
		{"update_card", `{"card_id":"c"}`, func(f *testutil.FakeService) { f.UpdateCardErr = boom }, "Failed to update card: "},
		{"move_card", `{"card_id":"c","list_id":"l"}`, func(f *testutil.FakeService) { f.MoveCardErr = boom }, "Failed to move card: "},
		{"delete_card", `{"card_id":"c"}`, func(f *testutil.FakeService) { f.DeleteCardErr = boom }, "Failed to delete card: "},
		{"delete_list", `{"list_id":"l"}`, func(f *testutil.FakeService) { f.DeleteListErr = boom }, "Failed to delete list: "},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			svc := testutil.NewFakeService()
			tt.inject(svc)
			res := call(t, svc, tt.tool, tt.args)
			assert.True(t, res.IsError)
			assert.Equal(t, tt.want+boom.Error(), res.Text())
		})
	}
}

func TestResult_WireShape(t *testing.T) {
	raw, err := json.Marshal(tools.TextResult("ok"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[{"type":"text","text":"ok"}]}`, string(raw))

	raw, err = json.Marshal(tools.ErrorResult("bad %d", 1))
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[{"type":"text","text":"bad 1"}],"isError":true}`, string(raw))
}
