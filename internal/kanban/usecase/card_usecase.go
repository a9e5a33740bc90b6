package usecase

import (
	"context"

	"kanladin-backend/internal/kanban/domain"
	"kanladin-backend/internal/kanban/repository"
	"kanladin-backend/pkg/apperrors"
	"kanladin-backend/pkg/events"
)

// cardUsecase implements CardUsecase interface. Every write that changes a
// card's position goes through the ordering engine.
type cardUsecase struct {
	cardRepo   repository.CardRepository
	columnRepo repository.ColumnRepository
	ordering   *OrderingEngine
	events     notifier
}

// NewCardUsecase creates a new instance of cardUsecase
func NewCardUsecase(cardRepo repository.CardRepository, columnRepo repository.ColumnRepository, ordering *OrderingEngine, pub events.Publisher) CardUsecase {
	return &cardUsecase{
		cardRepo:   cardRepo,
		columnRepo: columnRepo,
		ordering:   ordering,
		events:     newNotifier(pub),
	}
}

func (u *cardUsecase) GetAllCards(ctx context.Context) ([]*domain.Card, error) {
	cards, err := u.cardRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	domain.SortCards(cards)
	return cards, nil
}

func (u *cardUsecase) GetCardByID(ctx context.Context, id string) (*domain.Card, error) {
	card, err := u.cardRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, apperrors.NewNotFound("Card", id)
	}
	return card, nil
}

func (u *cardUsecase) GetCardsByColumnID(ctx context.Context, columnID string) ([]*domain.Card, error) {
	cards, err := u.cardRepo.GetByColumnID(ctx, columnID)
	if err != nil {
		return nil, err
	}
	domain.SortCards(cards)
	return cards, nil
}

func (u *cardUsecase) CreateCard(ctx context.Context, req CreateCardRequest) (*domain.Card, error) {
	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, err
	}
	if err := validateOrder(req.Order); err != nil {
		return nil, err
	}
	if err := u.requireColumn(ctx, req.ColumnID); err != nil {
		return nil, err
	}

	card, err := u.ordering.Insert(ctx, &domain.Card{
		ID:          newID("card"),
		Title:       title,
		Description: req.Description,
		ColumnID:    req.ColumnID,
	}, req.Order)
	if err != nil {
		return nil, err
	}
	u.events.emit(ctx, "card.created", card.ID, card)
	return card, nil
}

func (u *cardUsecase) UpdateCard(ctx context.Context, id string, updates CardUpdateRequest) (*domain.Card, error) {
	card, err := u.GetCardByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := &CardPatch{Description: updates.Description}
	if updates.Title != nil {
		title, err := validateTitle(*updates.Title)
		if err != nil {
			return nil, err
		}
		patch.Title = &title
	}
	if err := validateOrder(updates.Order); err != nil {
		return nil, err
	}

	switch {
	case updates.ColumnID != nil && *updates.ColumnID != card.ColumnID:
		if err := u.requireColumn(ctx, *updates.ColumnID); err != nil {
			return nil, err
		}
		if card, err = u.ordering.Move(ctx, id, *updates.ColumnID, updates.Order, patch); err != nil {
			return nil, err
		}
		u.events.emit(ctx, "card.moved", card.ID, card)

	case updates.Order != nil && *updates.Order != card.Order:
		if card, err = u.ordering.Reorder(ctx, id, *updates.Order, patch); err != nil {
			return nil, err
		}
		u.events.emit(ctx, "card.reordered", card.ID, card)

	default:
		if card, err = u.ordering.Edit(ctx, id, patch); err != nil {
			return nil, err
		}
		u.events.emit(ctx, "card.updated", card.ID, card)
	}
	return card, nil
}

// DeleteCard removes the card and compacts the orders of its column
func (u *cardUsecase) DeleteCard(ctx context.Context, id string) (bool, error) {
	card, err := u.ordering.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	u.events.emit(ctx, "card.deleted", card.ID, card)
	return true, nil
}

func (u *cardUsecase) MoveCard(ctx context.Context, id, columnID string, order *int) (*domain.Card, error) {
	if _, err := u.GetCardByID(ctx, id); err != nil {
		return nil, err
	}
	if err := u.requireColumn(ctx, columnID); err != nil {
		return nil, err
	}

	card, err := u.ordering.Move(ctx, id, columnID, order, nil)
	if err != nil {
		return nil, err
	}
	u.events.emit(ctx, "card.moved", card.ID, card)
	return card, nil
}

func (u *cardUsecase) UpdateCardOrder(ctx context.Context, id string, order int) (*domain.Card, error) {
	card, err := u.ordering.Reorder(ctx, id, order, nil)
	if err != nil {
		return nil, err
	}
	u.events.emit(ctx, "card.reordered", card.ID, card)
	return card, nil
}

func (u *cardUsecase) CheckColumnOrder(ctx context.Context, columnID string) (*domain.OrderReport, error) {
	if err := u.requireColumn(ctx, columnID); err != nil {
		return nil, err
	}
	cards, err := u.cardRepo.GetByColumnID(ctx, columnID)
	if err != nil {
		return nil, err
	}
	return BuildOrderReport(columnID, cards), nil
}

func (u *cardUsecase) RepairColumnOrder(ctx context.Context, columnID string) (*domain.OrderReport, error) {
	if err := u.requireColumn(ctx, columnID); err != nil {
		return nil, err
	}
	cards, err := u.ordering.Compact(ctx, columnID)
	if err != nil {
		return nil, err
	}
	report := BuildOrderReport(columnID, cards)
	u.events.emit(ctx, "column.repaired", columnID, report)
	return report, nil
}

func (u *cardUsecase) requireColumn(ctx context.Context, columnID string) error {
	column, err := u.columnRepo.GetByID(ctx, columnID)
	if err != nil {
		return err
	}
	if column == nil {
		return apperrors.NewNotFound("Column", columnID)
	}
	return nil
}
