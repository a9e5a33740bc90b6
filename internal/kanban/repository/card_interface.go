package repository

import (
	"context"
	"errors"

	"kanladin-backend/internal/kanban/domain"
)

// ErrStaleOrder is returned by Apply when a card no longer has the column or
// order it was read with
var ErrStaleOrder = errors.New("card position changed since it was read")

// ChangeKind is the kind of write a CardChange performs
type ChangeKind int

const (
	ChangeCreate ChangeKind = iota
	ChangeUpdate
	ChangeDelete
)

// CardChange is one write of an ordering plan. Updates and deletes are
// guarded on Before's column and order.
type CardChange struct {
	Kind   ChangeKind
	Card   *domain.Card
	Before *domain.Card
}

// CardRepository defines the interface for card data access
type CardRepository interface {
	// Get all cards, unordered
	GetAll(ctx context.Context) ([]*domain.Card, error)
	// Get a card by ID, nil when absent
	GetByID(ctx context.Context, id string) (*domain.Card, error)
	// Get the cards of a column, unordered
	GetByColumnID(ctx context.Context, columnID string) ([]*domain.Card, error)
	// Create a card; fails with a ConflictError when the ID is taken
	Create(ctx context.Context, card *domain.Card) (*domain.Card, error)
	// Update a card; fails with a NotFoundError when it does not exist
	Update(ctx context.Context, card *domain.Card) (*domain.Card, error)
	// Delete a card, reporting whether it existed
	Delete(ctx context.Context, id string) (bool, error)
	// Apply commits every change atomically or returns ErrStaleOrder
	Apply(ctx context.Context, changes []CardChange) error
}
