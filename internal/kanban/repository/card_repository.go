package repository

import (
	"context"
	"errors"

	"kanladin-backend/internal/kanban/domain"
	"kanladin-backend/pkg/apperrors"
	"kanladin-backend/pkg/store"
)

const cardResource = "Card"

// cardRepository implements CardRepository on the storage gateway
type cardRepository struct {
	gw store.Gateway
}

// NewCardRepository creates a new instance of cardRepository
func NewCardRepository(gw store.Gateway) CardRepository {
	return &cardRepository{gw: gw}
}

func cardToItem(c *domain.Card) store.Item {
	return store.Item{
		"id":          c.ID,
		"title":       c.Title,
		"description": c.Description,
		"columnId":    c.ColumnID,
		"order":       c.Order,
	}
}

func cardFromItem(item store.Item) *domain.Card {
	return &domain.Card{
		ID:          item.ID(),
		Title:       item.String("title"),
		Description: item.String("description"),
		ColumnID:    item.String("columnId"),
		Order:       item.Int("order"),
	}
}

func cardsFromItems(items []store.Item) []*domain.Card {
	cards := make([]*domain.Card, 0, len(items))
	for _, item := range items {
		cards = append(cards, cardFromItem(item))
	}
	return cards
}

// positionGuard requires the stored card to still sit where before says
func positionGuard(before *domain.Card) *store.Condition {
	return store.AttrEquals(map[string]any{
		"columnId": before.ColumnID,
		"order":    before.Order,
	})
}

func (r *cardRepository) GetAll(ctx context.Context) ([]*domain.Card, error) {
	items, err := r.gw.Scan(ctx, store.Cards)
	if err != nil {
		return nil, err
	}
	return cardsFromItems(items), nil
}

func (r *cardRepository) GetByID(ctx context.Context, id string) (*domain.Card, error) {
	item, err := r.gw.Get(ctx, store.Cards, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return cardFromItem(item), nil
}

func (r *cardRepository) GetByColumnID(ctx context.Context, columnID string) ([]*domain.Card, error) {
	items, err := r.gw.Query(ctx, store.Cards, "columnId", columnID)
	if err != nil {
		return nil, err
	}
	return cardsFromItems(items), nil
}

func (r *cardRepository) Create(ctx context.Context, card *domain.Card) (*domain.Card, error) {
	if err := r.gw.Put(ctx, store.Cards, cardToItem(card), store.NotExists()); err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return nil, apperrors.NewConflict(cardResource, card.ID)
		}
		return nil, err
	}
	return card, nil
}

func (r *cardRepository) Update(ctx context.Context, card *domain.Card) (*domain.Card, error) {
	if err := r.gw.Put(ctx, store.Cards, cardToItem(card), existing(card.ID)); err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return nil, apperrors.NewNotFound(cardResource, card.ID)
		}
		return nil, err
	}
	return card, nil
}

func (r *cardRepository) Delete(ctx context.Context, id string) (bool, error) {
	return deleteItem(ctx, r.gw, store.Cards, id)
}

func (r *cardRepository) Apply(ctx context.Context, changes []CardChange) error {
	ops := make([]store.Op, 0, len(changes))
	for _, ch := range changes {
		switch ch.Kind {
		case ChangeCreate:
			ops = append(ops, store.PutOp(store.Cards, cardToItem(ch.Card), store.NotExists()))
		case ChangeUpdate:
			ops = append(ops, store.PutOp(store.Cards, cardToItem(ch.Card), positionGuard(ch.Before)))
		case ChangeDelete:
			ops = append(ops, store.DeleteOp(store.Cards, ch.Before.ID, positionGuard(ch.Before)))
		}
	}
	if err := r.gw.Transact(ctx, ops); err != nil {
		switch {
		case errors.Is(err, store.ErrConditionFailed):
			return ErrStaleOrder
		case errors.Is(err, store.ErrTooManyWrites):
			return apperrors.NewValidation("Too many cards to reposition in one change (%d writes)", len(ops))
		}
		return err
	}
	return nil
}
