package repository

import (
	"context"
	"errors"

	"kanladin-backend/internal/kanban/domain"
	"kanladin-backend/pkg/apperrors"
	"kanladin-backend/pkg/store"
)

const columnResource = "Column"

// columnRepository implements ColumnRepository on the storage gateway
type columnRepository struct {
	gw store.Gateway
}

// NewColumnRepository creates a new instance of columnRepository
func NewColumnRepository(gw store.Gateway) ColumnRepository {
	return &columnRepository{gw: gw}
}

func columnToItem(c *domain.Column) store.Item {
	return store.Item{"id": c.ID, "title": c.Title, "boardId": c.BoardID, "order": c.Order}
}

func columnFromItem(item store.Item) *domain.Column {
	return &domain.Column{
		ID:      item.ID(),
		Title:   item.String("title"),
		BoardID: item.String("boardId"),
		Order:   item.Int("order"),
	}
}

func columnsFromItems(items []store.Item) []*domain.Column {
	columns := make([]*domain.Column, 0, len(items))
	for _, item := range items {
		columns = append(columns, columnFromItem(item))
	}
	return columns
}

func (r *columnRepository) GetAll(ctx context.Context) ([]*domain.Column, error) {
	items, err := r.gw.Scan(ctx, store.Columns)
	if err != nil {
		return nil, err
	}
	return columnsFromItems(items), nil
}

func (r *columnRepository) GetByID(ctx context.Context, id string) (*domain.Column, error) {
	item, err := r.gw.Get(ctx, store.Columns, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return columnFromItem(item), nil
}

func (r *columnRepository) GetByBoardID(ctx context.Context, boardID string) ([]*domain.Column, error) {
	items, err := r.gw.Query(ctx, store.Columns, "boardId", boardID)
	if err != nil {
		return nil, err
	}
	return columnsFromItems(items), nil
}

func (r *columnRepository) Create(ctx context.Context, column *domain.Column) (*domain.Column, error) {
	if err := r.gw.Put(ctx, store.Columns, columnToItem(column), store.NotExists()); err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return nil, apperrors.NewConflict(columnResource, column.ID)
		}
		return nil, err
	}
	return column, nil
}

func (r *columnRepository) Update(ctx context.Context, column *domain.Column) (*domain.Column, error) {
	if err := r.gw.Put(ctx, store.Columns, columnToItem(column), existing(column.ID)); err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return nil, apperrors.NewNotFound(columnResource, column.ID)
		}
		return nil, err
	}
	return column, nil
}

func (r *columnRepository) Delete(ctx context.Context, id string) (bool, error) {
	return deleteItem(ctx, r.gw, store.Columns, id)
}

// UpdateOrders writes every column in one transaction. A column deleted
// since it was read fails the whole write.
func (r *columnRepository) UpdateOrders(ctx context.Context, columns []*domain.Column) error {
	ops := make([]store.Op, 0, len(columns))
	for _, c := range columns {
		ops = append(ops, store.PutOp(store.Columns, columnToItem(c), existing(c.ID)))
	}
	if err := r.gw.Transact(ctx, ops); err != nil {
		switch {
		case errors.Is(err, store.ErrConditionFailed):
			return apperrors.NewConflict(columnResource, "order")
		case errors.Is(err, store.ErrTooManyWrites):
			return apperrors.NewValidation("Too many columns to reorder in one change (%d writes)", len(ops))
		}
		return err
	}
	return nil
}
