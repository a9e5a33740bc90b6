package usecase

import (
	"context"

	"kanladin-backend/internal/kanban/domain"
	"kanladin-backend/internal/kanban/repository"
	"kanladin-backend/pkg/apperrors"
	"kanladin-backend/pkg/events"
)

// boardUsecase implements BoardUsecase interface
type boardUsecase struct {
	boardRepo repository.BoardRepository
	events    notifier
}

// NewBoardUsecase creates a new instance of boardUsecase
func NewBoardUsecase(boardRepo repository.BoardRepository, pub events.Publisher) BoardUsecase {
	return &boardUsecase{boardRepo: boardRepo, events: newNotifier(pub)}
}

func (u *boardUsecase) GetAllBoards(ctx context.Context) ([]*domain.Board, error) {
	return u.boardRepo.GetAll(ctx)
}

func (u *boardUsecase) GetBoardByID(ctx context.Context, id string) (*domain.Board, error) {
	board, err := u.boardRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, apperrors.NewNotFound("Board", id)
	}
	return board, nil
}

func (u *boardUsecase) CreateBoard(ctx context.Context, title string) (*domain.Board, error) {
	title, err := validateTitle(title)
	if err != nil {
		return nil, err
	}

	board, err := u.boardRepo.Create(ctx, &domain.Board{ID: newID("board"), Title: title})
	if err != nil {
		return nil, err
	}
	u.events.emit(ctx, "board.created", board.ID, board)
	return board, nil
}

func (u *boardUsecase) UpdateBoard(ctx context.Context, id, title string) (*domain.Board, error) {
	title, err := validateTitle(title)
	if err != nil {
		return nil, err
	}
	board, err := u.GetBoardByID(ctx, id)
	if err != nil {
		return nil, err
	}

	board.Title = title
	if board, err = u.boardRepo.Update(ctx, board); err != nil {
		return nil, err
	}
	u.events.emit(ctx, "board.updated", board.ID, board)
	return board, nil
}

// DeleteBoard leaves the board's columns and cards in place
func (u *boardUsecase) DeleteBoard(ctx context.Context, id string) (bool, error) {
	if _, err := u.GetBoardByID(ctx, id); err != nil {
		return false, err
	}

	deleted, err := u.boardRepo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		u.events.emit(ctx, "board.deleted", id, nil)
	}
	return deleted, nil
}
