package delivery

import (
	"context"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanladin-backend/internal/kanban/repository"
	"kanladin-backend/internal/kanban/usecase"
	"kanladin-backend/pkg/events"
	"kanladin-backend/pkg/store"
)

type testServices struct {
	boards  usecase.BoardUsecase
	columns usecase.ColumnUsecase
	cards   usecase.CardUsecase
	events  *events.Recorder
}

// newTestServices wires the usecases over a seeded memory store
func newTestServices(t *testing.T) *testServices {
	t.Helper()
	gw := store.NewMemoryGateway()
	boardRepo := repository.NewBoardRepository(gw)
	columnRepo := repository.NewColumnRepository(gw)
	cardRepo := repository.NewCardRepository(gw)
	require.NoError(t, repository.Seed(context.Background(), boardRepo, columnRepo, cardRepo))

	rec := &events.Recorder{}
	engine := usecase.NewOrderingEngine(cardRepo, usecase.ModeAtomic, 3)
	return &testServices{
		boards:  usecase.NewBoardUsecase(boardRepo, rec),
		columns: usecase.NewColumnUsecase(columnRepo, boardRepo, rec),
		cards:   usecase.NewCardUsecase(cardRepo, columnRepo, engine, rec),
		events:  rec,
	}
}

func execute(t *testing.T, s *testServices, query string, vars map[string]interface{}) *graphql.Result {
	t.Helper()
	schema, err := NewSchema(NewResolver(s.boards, s.columns, s.cards))
	require.NoError(t, err)
	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  query,
		VariableValues: vars,
		Context:        context.Background(),
	})
}

func TestGraphQLNestedBoard(t *testing.T) {
	s := newTestServices(t)
	result := execute(t, s, `{ board(id: "board-1") { title columns { id order cards { id order } } } }`, nil)
	require.Empty(t, result.Errors)

	board := result.Data.(map[string]interface{})["board"].(map[string]interface{})
	assert.Equal(t, "Kanladin Project Board", board["title"])

	columns := board["columns"].([]interface{})
	require.Len(t, columns, 3)
	first := columns[0].(map[string]interface{})
	assert.Equal(t, "col-1", first["id"])

	cards := first["cards"].([]interface{})
	require.Len(t, cards, 3)
	for i, c := range cards {
		assert.Equal(t, i, c.(map[string]interface{})["order"])
	}
}

func TestGraphQLMissingEntitiesAreNull(t *testing.T) {
	s := newTestServices(t)
	result := execute(t, s, `{ board(id: "board-404") { id } card(id: "card-404") { id } column(id: "col-404") { id } }`, nil)
	require.Empty(t, result.Errors)

	data := result.Data.(map[string]interface{})
	assert.Nil(t, data["board"])
	assert.Nil(t, data["card"])
	assert.Nil(t, data["column"])
}

func TestGraphQLCardMutations(t *testing.T) {
	s := newTestServices(t)

	result := execute(t, s, `mutation($title: String!) {
		createCard(title: $title, columnId: "col-2", order: 0) { card { id title order columnId } }
	}`, map[string]interface{}{"title": "  Review PR "})
	require.Empty(t, result.Errors)
	card := result.Data.(map[string]interface{})["createCard"].(map[string]interface{})["card"].(map[string]interface{})
	assert.Equal(t, "Review PR", card["title"])
	assert.Equal(t, 0, card["order"])

	result = execute(t, s, `mutation { moveCard(id: "card-1", columnId: "col-3") { card { columnId order } } }`, nil)
	require.Empty(t, result.Errors)
	moved := result.Data.(map[string]interface{})["moveCard"].(map[string]interface{})["card"].(map[string]interface{})
	assert.Equal(t, "col-3", moved["columnId"])
	assert.Equal(t, 1, moved["order"])

	result = execute(t, s, `mutation { updateCardOrder(id: "card-3", order: 0) { card { order } } }`, nil)
	require.Empty(t, result.Errors)

	result = execute(t, s, `{ columnOrderReport(columnId: "col-1") { consistent cardCount orders } }`, nil)
	require.Empty(t, result.Errors)
	report := result.Data.(map[string]interface{})["columnOrderReport"].(map[string]interface{})
	assert.Equal(t, true, report["consistent"])
	assert.Equal(t, 2, report["cardCount"])

	result = execute(t, s, `mutation { deleteCard(id: "card-2") { success } }`, nil)
	require.Empty(t, result.Errors)
	assert.Equal(t, true, result.Data.(map[string]interface{})["deleteCard"].(map[string]interface{})["success"])

	assert.Equal(t, []string{"card.created", "card.moved", "card.reordered", "card.deleted"}, s.events.Types())
}

func TestGraphQLErrorExtensions(t *testing.T) {
	s := newTestServices(t)

	result := execute(t, s, `mutation { createCard(title: "Orphan", columnId: "col-404") { card { id } } }`, nil)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Column with ID 'col-404' not found", result.Errors[0].Message)
	assert.Equal(t, "NOT_FOUND", result.Errors[0].Extensions["code"])
	assert.Equal(t, "Column", result.Errors[0].Extensions["resourceType"])
	assert.Equal(t, "col-404", result.Errors[0].Extensions["resourceId"])

	result = execute(t, s, `mutation { createBoard(title: "   ") { board { id } } }`, nil)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "VALIDATION_ERROR", result.Errors[0].Extensions["code"])
}

func TestGraphQLColumnMutations(t *testing.T) {
	s := newTestServices(t)

	result := execute(t, s, `mutation { createColumn(title: "Review", boardId: "board-1", order: 3) { column { id order boardId } } }`, nil)
	require.Empty(t, result.Errors)
	created := result.Data.(map[string]interface{})["createColumn"].(map[string]interface{})["column"].(map[string]interface{})["id"]

	reorder := `mutation($ids: [ID!]!) { updateColumnOrder(columns: $ids) { columns { id order } } }`
	result = execute(t, s, reorder, map[string]interface{}{"ids": []interface{}{"col-3", "col-2"}})
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "VALIDATION_ERROR", result.Errors[0].Extensions["code"])

	result = execute(t, s, reorder, map[string]interface{}{"ids": []interface{}{"col-3", "col-2", "col-1", created}})
	require.Empty(t, result.Errors)
	columns := result.Data.(map[string]interface{})["updateColumnOrder"].(map[string]interface{})["columns"].([]interface{})
	require.Len(t, columns, 4)
	assert.Equal(t, "col-3", columns[0].(map[string]interface{})["id"])
	assert.Equal(t, 0, columns[0].(map[string]interface{})["order"])

	result = execute(t, s, `{ columns(boardId: "board-1") { id } }`, nil)
	require.Empty(t, result.Errors)
	listed := result.Data.(map[string]interface{})["columns"].([]interface{})
	require.Len(t, listed, 4)
	assert.Equal(t, "col-3", listed[0].(map[string]interface{})["id"])
}
