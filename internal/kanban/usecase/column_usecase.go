package usecase

import (
	"context"

	"kanladin-backend/internal/kanban/domain"
	"kanladin-backend/internal/kanban/repository"
	"kanladin-backend/pkg/apperrors"
	"kanladin-backend/pkg/events"
)

// columnUsecase implements ColumnUsecase interface
type columnUsecase struct {
	columnRepo repository.ColumnRepository
	boardRepo  repository.BoardRepository
	events     notifier
}

// NewColumnUsecase creates a new instance of columnUsecase
func NewColumnUsecase(columnRepo repository.ColumnRepository, boardRepo repository.BoardRepository, pub events.Publisher) ColumnUsecase {
	return &columnUsecase{
		columnRepo: columnRepo,
		boardRepo:  boardRepo,
		events:     newNotifier(pub),
	}
}

func (u *columnUsecase) GetAllColumns(ctx context.Context) ([]*domain.Column, error) {
	columns, err := u.columnRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	domain.SortColumns(columns)
	return columns, nil
}

func (u *columnUsecase) GetColumnByID(ctx context.Context, id string) (*domain.Column, error) {
	column, err := u.columnRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if column == nil {
		return nil, apperrors.NewNotFound("Column", id)
	}
	return column, nil
}

func (u *columnUsecase) GetColumnsByBoardID(ctx context.Context, boardID string) ([]*domain.Column, error) {
	columns, err := u.columnRepo.GetByBoardID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	domain.SortColumns(columns)
	return columns, nil
}

func (u *columnUsecase) CreateColumn(ctx context.Context, title, boardID string, order int) (*domain.Column, error) {
	title, err := validateTitle(title)
	if err != nil {
		return nil, err
	}
	if err := validateOrder(&order); err != nil {
		return nil, err
	}

	board, err := u.boardRepo.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, apperrors.NewNotFound("Board", boardID)
	}

	column, err := u.columnRepo.Create(ctx, &domain.Column{
		ID:      newID("col"),
		Title:   title,
		BoardID: boardID,
		Order:   order,
	})
	if err != nil {
		return nil, err
	}
	u.events.emit(ctx, "column.created", column.ID, column)
	return column, nil
}

func (u *columnUsecase) UpdateColumn(ctx context.Context, id string, updates ColumnUpdateRequest) (*domain.Column, error) {
	column, err := u.GetColumnByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if updates.Title != nil {
		title, err := validateTitle(*updates.Title)
		if err != nil {
			return nil, err
		}
		column.Title = title
	}
	if updates.Order != nil {
		if err := validateOrder(updates.Order); err != nil {
			return nil, err
		}
		column.Order = *updates.Order
	}

	if column, err = u.columnRepo.Update(ctx, column); err != nil {
		return nil, err
	}
	u.events.emit(ctx, "column.updated", column.ID, column)
	return column, nil
}

// DeleteColumn leaves the column's cards and its siblings' orders untouched
func (u *columnUsecase) DeleteColumn(ctx context.Context, id string) (bool, error) {
	if _, err := u.GetColumnByID(ctx, id); err != nil {
		return false, err
	}

	deleted, err := u.columnRepo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		u.events.emit(ctx, "column.deleted", id, nil)
	}
	return deleted, nil
}

func (u *columnUsecase) ReorderColumns(ctx context.Context, ids []string) ([]*domain.Column, error) {
	if len(ids) == 0 {
		return nil, apperrors.NewValidation("At least one column is required")
	}

	seen := make(map[string]bool, len(ids))
	columns := make([]*domain.Column, 0, len(ids))
	for i, id := range ids {
		if seen[id] {
			return nil, apperrors.NewValidation("Column %s is listed more than once", id)
		}
		seen[id] = true

		column, err := u.GetColumnByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(columns) > 0 && column.BoardID != columns[0].BoardID {
			return nil, apperrors.NewValidation("Columns must belong to the same board")
		}
		column.Order = i
		columns = append(columns, column)
	}

	boardID := columns[0].BoardID
	siblings, err := u.columnRepo.GetByBoardID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if len(siblings) != len(columns) {
		return nil, apperrors.NewValidation("Column order must list all %d columns of board %s", len(siblings), boardID)
	}

	if err := u.columnRepo.UpdateOrders(ctx, columns); err != nil {
		return nil, err
	}
	u.events.emit(ctx, "column.reordered", boardID, ids)
	return columns, nil
}

