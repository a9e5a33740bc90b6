package repository

import (
	"context"
	"errors"

	"kanladin-backend/internal/kanban/domain"
	"kanladin-backend/pkg/apperrors"
	"kanladin-backend/pkg/store"
)

const boardResource = "Board"

// boardRepository implements BoardRepository on the storage gateway
type boardRepository struct {
	gw store.Gateway
}

// NewBoardRepository creates a new instance of boardRepository
func NewBoardRepository(gw store.Gateway) BoardRepository {
	return &boardRepository{gw: gw}
}

func boardToItem(b *domain.Board) store.Item {
	return store.Item{"id": b.ID, "title": b.Title}
}

func boardFromItem(item store.Item) *domain.Board {
	return &domain.Board{ID: item.ID(), Title: item.String("title")}
}

func (r *boardRepository) GetAll(ctx context.Context) ([]*domain.Board, error) {
	items, err := r.gw.Scan(ctx, store.Boards)
	if err != nil {
		return nil, err
	}
	boards := make([]*domain.Board, 0, len(items))
	for _, item := range items {
		boards = append(boards, boardFromItem(item))
	}
	return boards, nil
}

func (r *boardRepository) GetByID(ctx context.Context, id string) (*domain.Board, error) {
	item, err := r.gw.Get(ctx, store.Boards, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return boardFromItem(item), nil
}

func (r *boardRepository) Create(ctx context.Context, board *domain.Board) (*domain.Board, error) {
	if err := r.gw.Put(ctx, store.Boards, boardToItem(board), store.NotExists()); err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return nil, apperrors.NewConflict(boardResource, board.ID)
		}
		return nil, err
	}
	return board, nil
}

func (r *boardRepository) Update(ctx context.Context, board *domain.Board) (*domain.Board, error) {
	if err := r.gw.Put(ctx, store.Boards, boardToItem(board), existing(board.ID)); err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return nil, apperrors.NewNotFound(boardResource, board.ID)
		}
		return nil, err
	}
	return board, nil
}

func (r *boardRepository) Delete(ctx context.Context, id string) (bool, error) {
	return deleteItem(ctx, r.gw, store.Boards, id)
}

// existing guards an overwrite so it cannot recreate a deleted item
func existing(id string) *store.Condition {
	return store.AttrEquals(map[string]any{store.KeyAttr: id})
}

func deleteItem(ctx context.Context, gw store.Gateway, table store.Table, id string) (bool, error) {
	if err := gw.Delete(ctx, table, id, nil); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
