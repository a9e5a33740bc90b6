package repository

import (
	"context"

	"kanladin-backend/internal/kanban/domain"
)

// BoardRepository defines the interface for board data access
type BoardRepository interface {
	// Get all boards, unordered
	GetAll(ctx context.Context) ([]*domain.Board, error)
	// Get a board by ID, nil when absent
	GetByID(ctx context.Context, id string) (*domain.Board, error)
	// Create a board; fails with a ConflictError when the ID is taken
	Create(ctx context.Context, board *domain.Board) (*domain.Board, error)
	// Update a board; fails with a NotFoundError when it does not exist
	Update(ctx context.Context, board *domain.Board) (*domain.Board, error)
	// Delete a board, reporting whether it existed
	Delete(ctx context.Context, id string) (bool, error)
}
