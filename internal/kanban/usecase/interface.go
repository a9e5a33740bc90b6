package usecase

import (
	"context"

	"kanladin-backend/internal/kanban/domain"
)

// BoardUsecase defines the interface for board business logic
type BoardUsecase interface {
	GetAllBoards(ctx context.Context) ([]*domain.Board, error)
	GetBoardByID(ctx context.Context, id string) (*domain.Board, error)
	CreateBoard(ctx context.Context, title string) (*domain.Board, error)
	UpdateBoard(ctx context.Context, id, title string) (*domain.Board, error)
	DeleteBoard(ctx context.Context, id string) (bool, error)
}

// ColumnUsecase defines the interface for column business logic.
// Column orders are taken as given: nothing is shifted on create, update or delete.
type ColumnUsecase interface {
	GetAllColumns(ctx context.Context) ([]*domain.Column, error)
	GetColumnByID(ctx context.Context, id string) (*domain.Column, error)
	// GetColumnsByBoardID returns the board's columns sorted by order
	GetColumnsByBoardID(ctx context.Context, boardID string) ([]*domain.Column, error)
	CreateColumn(ctx context.Context, title, boardID string, order int) (*domain.Column, error)
	UpdateColumn(ctx context.Context, id string, updates ColumnUpdateRequest) (*domain.Column, error)
	DeleteColumn(ctx context.Context, id string) (bool, error)
	// ReorderColumns gives each listed column its index as order. The list
	// must name every column of one board exactly once.
	ReorderColumns(ctx context.Context, ids []string) ([]*domain.Column, error)
}

// CardUsecase defines the interface for card business logic
type CardUsecase interface {
	// GetAllCards returns every card sorted by order
	GetAllCards(ctx context.Context) ([]*domain.Card, error)
	GetCardByID(ctx context.Context, id string) (*domain.Card, error)
	// GetCardsByColumnID returns the column's cards sorted by order
	GetCardsByColumnID(ctx context.Context, columnID string) ([]*domain.Card, error)
	CreateCard(ctx context.Context, req CreateCardRequest) (*domain.Card, error)
	UpdateCard(ctx context.Context, id string, updates CardUpdateRequest) (*domain.Card, error)
	DeleteCard(ctx context.Context, id string) (bool, error)
	// MoveCard moves a card to another column, appending when order is nil
	MoveCard(ctx context.Context, id, columnID string, order *int) (*domain.Card, error)
	// UpdateCardOrder moves a card within its column
	UpdateCardOrder(ctx context.Context, id string, order int) (*domain.Card, error)
	CheckColumnOrder(ctx context.Context, columnID string) (*domain.OrderReport, error)
	RepairColumnOrder(ctx context.Context, columnID string) (*domain.OrderReport, error)
}

// ColumnUpdateRequest represents the column fields that can be updated
type ColumnUpdateRequest struct {
	Title *string `json:"title,omitempty"`
	Order *int    `json:"order,omitempty"`
}

// CreateCardRequest represents a new card
type CreateCardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ColumnID    string `json:"columnId"`
	Order       *int   `json:"order,omitempty"`
}

// CardUpdateRequest represents the card fields that can be updated.
// Each field is optional and patched independently.
type CardUpdateRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	ColumnID    *string `json:"columnId,omitempty"`
	Order       *int    `json:"order,omitempty"`
}
