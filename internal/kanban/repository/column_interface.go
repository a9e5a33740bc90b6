package repository

import (
	"context"

	"kanladin-backend/internal/kanban/domain"
)

// ColumnRepository defines the interface for column data access
type ColumnRepository interface {
	// Get all columns, unordered
	GetAll(ctx context.Context) ([]*domain.Column, error)
	// Get a column by ID, nil when absent
	GetByID(ctx context.Context, id string) (*domain.Column, error)
	// Get the columns of a board, unordered
	GetByBoardID(ctx context.Context, boardID string) ([]*domain.Column, error)
	// Create a column; fails with a ConflictError when the ID is taken
	Create(ctx context.Context, column *domain.Column) (*domain.Column, error)
	// Update a column; fails with a NotFoundError when it does not exist
	Update(ctx context.Context, column *domain.Column) (*domain.Column, error)
	// Delete a column, reporting whether it existed
	Delete(ctx context.Context, id string) (bool, error)
	// Write several columns in one transaction
	UpdateOrders(ctx context.Context, columns []*domain.Column) error
}
