package delivery

import (
	"github.com/graphql-go/graphql"
	log "github.com/sirupsen/logrus"

	"kanladin-backend/internal/kanban/domain"
	"kanladin-backend/internal/kanban/usecase"
	"kanladin-backend/pkg/apperrors"
)

// Resolver resolves the kanban graph against the usecases
type Resolver struct {
	boards  usecase.BoardUsecase
	columns usecase.ColumnUsecase
	cards   usecase.CardUsecase
}

func NewResolver(boards usecase.BoardUsecase, columns usecase.ColumnUsecase, cards usecase.CardUsecase) *Resolver {
	return &Resolver{boards: boards, columns: columns, cards: cards}
}

// NewSchema builds the kanban GraphQL schema
func NewSchema(r *Resolver) (graphql.Schema, error) {
	card := graphql.NewObject(graphql.ObjectConfig{
		Name:        "Card",
		Description: "A card placed in a column",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.ID},
			"title":       &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"columnId":    &graphql.Field{Type: graphql.String},
			"order": &graphql.Field{
				Type:        graphql.Int,
				Description: "Zero-based position within the column",
			},
		},
	})

	column := graphql.NewObject(graphql.ObjectConfig{
		Name: "Column",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.ID},
			"title":   &graphql.Field{Type: graphql.String},
			"boardId": &graphql.Field{Type: graphql.String},
			"order":   &graphql.Field{Type: graphql.Int},
			"cards": &graphql.Field{
				Type:        graphql.NewList(card),
				Description: "Cards of the column sorted by order",
				Resolve:     r.ColumnCards,
			},
		},
	})

	board := graphql.NewObject(graphql.ObjectConfig{
		Name: "Board",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.ID},
			"title": &graphql.Field{Type: graphql.String},
			"columns": &graphql.Field{
				Type:        graphql.NewList(column),
				Description: "Columns of the board sorted by order",
				Resolve:     r.BoardColumns,
			},
		},
	})

	orderReport := graphql.NewObject(graphql.ObjectConfig{
		Name:        "ColumnOrderReport",
		Description: "How far a column's card orders are from 0..n-1",
		Fields: graphql.Fields{
			"columnId":   &graphql.Field{Type: graphql.ID},
			"cardCount":  &graphql.Field{Type: graphql.Int},
			"orders":     &graphql.Field{Type: graphql.NewList(graphql.Int)},
			"duplicates": &graphql.Field{Type: graphql.NewList(graphql.Int)},
			"gaps":       &graphql.Field{Type: graphql.NewList(graphql.Int)},
			"consistent": &graphql.Field{Type: graphql.Boolean},
		},
	})

	boardPayload := payload("BoardPayload", "board", board)
	columnPayload := payload("ColumnPayload", "column", column)
	columnsPayload := payload("ColumnOrderPayload", "columns", graphql.NewList(column))
	cardPayload := payload("CardPayload", "card", card)
	deletePayload := payload("DeletePayload", "success", graphql.Boolean)

	id := &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"boards": &graphql.Field{
				Type:    graphql.NewList(board),
				Resolve: r.Boards,
			},
			"board": &graphql.Field{
				Type:    board,
				Args:    graphql.FieldConfigArgument{"id": id},
				Resolve: r.Board,
			},
			"columns": &graphql.Field{
				Type:    graphql.NewList(column),
				Args:    graphql.FieldConfigArgument{"boardId": {Type: graphql.ID}},
				Resolve: r.Columns,
			},
			"column": &graphql.Field{
				Type:    column,
				Args:    graphql.FieldConfigArgument{"id": id},
				Resolve: r.Column,
			},
			"cards": &graphql.Field{
				Type:    graphql.NewList(card),
				Args:    graphql.FieldConfigArgument{"columnId": {Type: graphql.ID}},
				Resolve: r.Cards,
			},
			"card": &graphql.Field{
				Type:    card,
				Args:    graphql.FieldConfigArgument{"id": id},
				Resolve: r.Card,
			},
			"columnOrderReport": &graphql.Field{
				Type:    orderReport,
				Args:    graphql.FieldConfigArgument{"columnId": id},
				Resolve: r.ColumnOrderReport,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createBoard": &graphql.Field{
				Type: boardPayload,
				Args: graphql.FieldConfigArgument{
					"title": {Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.CreateBoard,
			},
			"updateBoard": &graphql.Field{
				Type: boardPayload,
				Args: graphql.FieldConfigArgument{
					"id":    id,
					"title": {Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.UpdateBoard,
			},
			"deleteBoard": &graphql.Field{
				Type:    deletePayload,
				Args:    graphql.FieldConfigArgument{"id": id},
				Resolve: r.DeleteBoard,
			},
			"createColumn": &graphql.Field{
				Type: columnPayload,
				Args: graphql.FieldConfigArgument{
					"title":   {Type: graphql.NewNonNull(graphql.String)},
					"boardId": id,
					"order":   {Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: r.CreateColumn,
			},
			"updateColumn": &graphql.Field{
				Type: columnPayload,
				Args: graphql.FieldConfigArgument{
					"id":    id,
					"title": {Type: graphql.String},
					"order": {Type: graphql.Int},
				},
				Resolve: r.UpdateColumn,
			},
			"deleteColumn": &graphql.Field{
				Type:    deletePayload,
				Args:    graphql.FieldConfigArgument{"id": id},
				Resolve: r.DeleteColumn,
			},
			"updateColumnOrder": &graphql.Field{
				Type: columnsPayload,
				Args: graphql.FieldConfigArgument{
					"columns": {Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.ID)))},
				},
				Resolve: r.UpdateColumnOrder,
			},
			"createCard": &graphql.Field{
				Type: cardPayload,
				Args: graphql.FieldConfigArgument{
					"title":       {Type: graphql.NewNonNull(graphql.String)},
					"description": {Type: graphql.String, DefaultValue: ""},
					"columnId":    id,
					"order":       {Type: graphql.Int},
				},
				Resolve: r.CreateCard,
			},
			"updateCard": &graphql.Field{
				Type: cardPayload,
				Args: graphql.FieldConfigArgument{
					"id":          id,
					"title":       {Type: graphql.String},
					"description": {Type: graphql.String},
					"columnId":    {Type: graphql.ID},
					"order":       {Type: graphql.Int},
				},
				Resolve: r.UpdateCard,
			},
			"deleteCard": &graphql.Field{
				Type:    deletePayload,
				Args:    graphql.FieldConfigArgument{"id": id},
				Resolve: r.DeleteCard,
			},
			"moveCard": &graphql.Field{
				Type: cardPayload,
				Args: graphql.FieldConfigArgument{
					"id":       id,
					"columnId": id,
					"order":    {Type: graphql.Int},
				},
				Resolve: r.MoveCard,
			},
			"updateCardOrder": &graphql.Field{
				Type: cardPayload,
				Args: graphql.FieldConfigArgument{
					"id":    id,
					"order": {Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: r.UpdateCardOrder,
			},
			"repairColumnOrder": &graphql.Field{
				Type:    orderReport,
				Args:    graphql.FieldConfigArgument{"columnId": id},
				Resolve: r.RepairColumnOrder,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}

// payload is a mutation result object with a single field
func payload(name, field string, typ graphql.Output) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name:   name,
		Fields: graphql.Fields{field: &graphql.Field{Type: typ}},
	})
}

func stringArg(p graphql.ResolveParams, name string) string {
	v, _ := p.Args[name].(string)
	return v
}

func optionalString(p graphql.ResolveParams, name string) *string {
	if v, ok := p.Args[name].(string); ok {
		return &v
	}
	return nil
}

func optionalInt(p graphql.ResolveParams, name string) *int {
	if v, ok := p.Args[name].(int); ok {
		return &v
	}
	return nil
}

func (r *Resolver) fail(p graphql.ResolveParams, err error) (interface{}, error) {
	entry := log.WithFields(log.Fields{
		"component": "graphql",
		"field":     p.Info.FieldName,
		"code":      apperrors.Code(err),
	})
	if statusFor(err) >= 500 {
		entry.Errorf("graphql error: %v", err)
	} else {
		entry.Debugf("graphql error: %v", err)
	}
	return nil, clientError(err)
}

// optional turns a NotFoundError into a null result
func (r *Resolver) optional(p graphql.ResolveParams, v interface{}, err error) (interface{}, error) {
	if apperrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return r.fail(p, err)
	}
	return v, nil
}

func (r *Resolver) BoardColumns(p graphql.ResolveParams) (interface{}, error) {
	b, ok := p.Source.(*domain.Board)
	if !ok {
		return nil, nil
	}
	columns, err := r.columns.GetColumnsByBoardID(p.Context, b.ID)
	if err != nil {
		return r.fail(p, err)
	}
	return columns, nil
}

func (r *Resolver) ColumnCards(p graphql.ResolveParams) (interface{}, error) {
	c, ok := p.Source.(*domain.Column)
	if !ok {
		return nil, nil
	}
	cards, err := r.cards.GetCardsByColumnID(p.Context, c.ID)
	if err != nil {
		return r.fail(p, err)
	}
	return cards, nil
}

func (r *Resolver) Boards(p graphql.ResolveParams) (interface{}, error) {
	boards, err := r.boards.GetAllBoards(p.Context)
	if err != nil {
		return r.fail(p, err)
	}
	return boards, nil
}

func (r *Resolver) Board(p graphql.ResolveParams) (interface{}, error) {
	board, err := r.boards.GetBoardByID(p.Context, stringArg(p, "id"))
	return r.optional(p, board, err)
}

// Columns lists the columns of boardId, or every column without it
func (r *Resolver) Columns(p graphql.ResolveParams) (interface{}, error) {
	var (
		columns []*domain.Column
		err     error
	)
	if boardID := stringArg(p, "boardId"); boardID != "" {
		columns, err = r.columns.GetColumnsByBoardID(p.Context, boardID)
	} else {
		columns, err = r.columns.GetAllColumns(p.Context)
	}
	if err != nil {
		return r.fail(p, err)
	}
	return columns, nil
}

func (r *Resolver) Column(p graphql.ResolveParams) (interface{}, error) {
	column, err := r.columns.GetColumnByID(p.Context, stringArg(p, "id"))
	return r.optional(p, column, err)
}

// Cards lists the cards of columnId, or every card without it
func (r *Resolver) Cards(p graphql.ResolveParams) (interface{}, error) {
	var (
		cards []*domain.Card
		err   error
	)
	if columnID := stringArg(p, "columnId"); columnID != "" {
		cards, err = r.cards.GetCardsByColumnID(p.Context, columnID)
	} else {
		cards, err = r.cards.GetAllCards(p.Context)
	}
	if err != nil {
		return r.fail(p, err)
	}
	return cards, nil
}

func (r *Resolver) Card(p graphql.ResolveParams) (interface{}, error) {
	card, err := r.cards.GetCardByID(p.Context, stringArg(p, "id"))
	return r.optional(p, card, err)
}

func (r *Resolver) ColumnOrderReport(p graphql.ResolveParams) (interface{}, error) {
	report, err := r.cards.CheckColumnOrder(p.Context, stringArg(p, "columnId"))
	if err != nil {
		return r.fail(p, err)
	}
	return report, nil
}

func (r *Resolver) CreateBoard(p graphql.ResolveParams) (interface{}, error) {
	board, err := r.boards.CreateBoard(p.Context, stringArg(p, "title"))
	if err != nil {
		return r.fail(p, err)
	}
	return map[string]interface{}{"board": board}, nil
}

func (r *Resolver) UpdateBoard(p graphql.ResolveParams) (interface{}, error) {
	board, err := r.boards.UpdateBoard(p.Context, stringArg(p, "id"), stringArg(p, "title"))
	if err != nil {
		return r.fail(p, err)
	}
	return map[string]interface{}{"board": board}, nil
}

func (r *Resolver) DeleteBoard(p graphql.ResolveParams) (interface{}, error) {
	ok, err := r.boards.DeleteBoard(p.Context, stringArg(p, "id"))
	if err != nil {
		return r.fail(p, err)
	}
	return map[string]interface{}{"success": ok}, nil
}

func (r *Resolver) CreateColumn(p graphql.ResolveParams) (interface{}, error) {
	order, _ := p.Args["order"].(int)
	column, err := r.columns.CreateColumn(p.Context, stringArg(p, "title"), stringArg(p, "boardId"), order)
	if err != nil {
		return r.fail(p, err)
	}
	return map[string]interface{}{"column": column}, nil
}

func (r *Resolver) UpdateColumn(p graphql.ResolveParams) (interface{}, error) {
	column, err := r.columns.UpdateColumn(p.Context, stringArg(p, "id"), usecase.ColumnUpdateRequest{
		Title: optionalString(p, "title"),
		Order: optionalInt(p, "order"),
	})
	if err != nil {
		return r.fail(p, err)
	}
	return map[string]interface{}{"column": column}, nil
}

func (r *Resolver) DeleteColumn(p graphql.ResolveParams) (interface{}, error) {
	ok, err := r.columns.DeleteColumn(p.Context, stringArg(p, "id"))
	if err != nil {
		return r.fail(p, err)
	}
	return map[string]interface{}{"success": ok}, nil
}

func (r *Resolver) UpdateColumnOrder(p graphql.ResolveParams) (interface{}, error) {
	raw, _ := p.Args["columns"].([]interface{})
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}

	columns, err := r.columns.ReorderColumns(p.Context, ids)
	if err != nil {
		return r.fail(p, err)
	}
	return map[string]interface{}{"columns": columns}, nil
}

func (r *Resolver) CreateCard(p graphql.ResolveParams) (interface{}, error) {
	card, err := r.cards.CreateCard(p.Context, usecase.CreateCardRequest{
		Title:       stringArg(p, "title"),
		Description: stringArg(p, "description"),
		ColumnID:    stringArg(p, "columnId"),
		Order:       optionalInt(p, "order"),
	})
	if err != nil {
		return r.fail(p, err)
	}
	return map[string]interface{}{"card": card}, nil
}

func (r *Resolver) UpdateCard(p graphql.ResolveParams) (interface{}, error) {
	card, err := r.cards.UpdateCard(p.Context, stringArg(p, "id"), usecase.CardUpdateRequest{
		Title:       optionalString(p, "title"),
		Description: optionalString(p, "description"),
		ColumnID:    optionalString(p, "columnId"),
		Order:       optionalInt(p, "order"),
	})
	if err != nil {
		return r.fail(p, err)
	}
	return map[string]interface{}{"card": card}, nil
}

func (r *Resolver) DeleteCard(p graphql.ResolveParams) (interface{}, error) {
	ok, err := r.cards.DeleteCard(p.Context, stringArg(p, "id"))
	if err != nil {
		return r.fail(p, err)
	}
	return map[string]interface{}{"success": ok}, nil
}

func (r *Resolver) MoveCard(p graphql.ResolveParams) (interface{}, error) {
	card, err := r.cards.MoveCard(p.Context, stringArg(p, "id"), stringArg(p, "columnId"), optionalInt(p, "order"))
	if err != nil {
		return r.fail(p, err)
	}
	return map[string]interface{}{"card": card}, nil
}

func (r *Resolver) UpdateCardOrder(p graphql.ResolveParams) (interface{}, error) {
	order, _ := p.Args["order"].(int)
	card, err := r.cards.UpdateCardOrder(p.Context, stringArg(p, "id"), order)
	if err != nil {
		return r.fail(p, err)
	}
	return map[string]interface{}{"card": card}, nil
}

func (r *Resolver) RepairColumnOrder(p graphql.ResolveParams) (interface{}, error) {
	report, err := r.cards.RepairColumnOrder(p.Context, stringArg(p, "columnId"))
	if err != nil {
		return r.fail(p, err)
	}
	return report, nil
}
