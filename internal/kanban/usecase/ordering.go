package usecase

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"kanladin-backend/internal/kanban/domain"
	"kanladin-backend/internal/kanban/repository"
	"kanladin-backend/pkg/apperrors"
)

// OrderingMode selects how a plan of card writes is persisted
type OrderingMode string

const (
	// ModeAtomic commits a whole plan in one conditional transaction
	ModeAtomic OrderingMode = "atomic"
	// ModeSequential persists each write on its own, shifted cards first and
	// the moved card last. A failure part way leaves the earlier writes applied.
	ModeSequential OrderingMode = "sequential"
)

func ParseOrderingMode(s string) (OrderingMode, error) {
	switch OrderingMode(s) {
	case ModeAtomic, "":
		return ModeAtomic, nil
	case ModeSequential:
		return ModeSequential, nil
	}
	return "", fmt.Errorf("unknown ordering mode %q", s)
}

// CardPatch carries text edits applied to a card as part of a position change
type CardPatch struct {
	Title       *string
	Description *string
}

func (p *CardPatch) apply(c *domain.Card) {
	if p == nil {
		return
	}
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
}

// plan is every write one operation needs, in persistence order
type plan struct {
	changes []repository.CardChange
	result  *domain.Card
}

func (p *plan) shift(c *domain.Card, delta int) {
	moved := c.Clone()
	moved.Order += delta
	p.changes = append(p.changes, repository.CardChange{Kind: repository.ChangeUpdate, Card: moved, Before: c})
}

// OrderingEngine keeps card orders of every column dense and zero-based
// across insert, move, reorder and delete.
type OrderingEngine struct {
	cards       repository.CardRepository
	mode        OrderingMode
	maxAttempts int
	logger      *log.Entry
}

func NewOrderingEngine(cards repository.CardRepository, mode OrderingMode, maxAttempts int) *OrderingEngine {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &OrderingEngine{
		cards:       cards,
		mode:        mode,
		maxAttempts: maxAttempts,
		logger:      log.WithField("component", "ordering"),
	}
}

func (e *OrderingEngine) Mode() OrderingMode {
	return e.mode
}

// NextOrder is the order a card appended to the column receives
func (e *OrderingEngine) NextOrder(ctx context.Context, columnID string) (int, error) {
	siblings, err := e.cards.GetByColumnID(ctx, columnID)
	if err != nil {
		return 0, err
	}
	return nextOrder(siblings, ""), nil
}

// Insert creates card in its column. A nil order appends after the highest
// existing order without touching other cards; an explicit order is clamped
// to the column and every card at or after it moves down by one.
func (e *OrderingEngine) Insert(ctx context.Context, card *domain.Card, order *int) (*domain.Card, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}
	return e.run(ctx, "insert", card.ID, func(ctx context.Context) (*plan, error) {
		siblings, err := e.cards.GetByColumnID(ctx, card.ColumnID)
		if err != nil {
			return nil, err
		}

		created := card.Clone()
		p := &plan{result: created}
		created.Order = nextOrder(siblings, "")
		if order != nil {
			created.Order = clamp(*order, 0, created.Order)
			for _, c := range siblings {
				if c.Order >= created.Order {
					p.shift(c, 1)
				}
			}
		}
		p.changes = append(p.changes, repository.CardChange{Kind: repository.ChangeCreate, Card: created})
		return p, nil
	})
}

// Move places a card in columnID at order, or at the end of it when order is
// nil. Moving within the same column is a reorder.
func (e *OrderingEngine) Move(ctx context.Context, cardID, columnID string, order *int, patch *CardPatch) (*domain.Card, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}
	return e.run(ctx, "move", cardID, func(ctx context.Context) (*plan, error) {
		card, err := e.load(ctx, cardID)
		if err != nil {
			return nil, err
		}
		if card.ColumnID == columnID {
			return e.planReorder(ctx, card, order, patch)
		}

		source, err := e.cards.GetByColumnID(ctx, card.ColumnID)
		if err != nil {
			return nil, err
		}
		dest, err := e.cards.GetByColumnID(ctx, columnID)
		if err != nil {
			return nil, err
		}

		target := nextOrder(dest, card.ID)
		if order != nil {
			target = clamp(*order, 0, target)
		}

		p := &plan{}
		// close the gap left in the source column
		for _, c := range source {
			if c.ID != card.ID && c.Order > card.Order {
				p.shift(c, -1)
			}
		}
		// open space in the destination column
		for _, c := range dest {
			if c.ID != card.ID && c.Order >= target {
				p.shift(c, 1)
			}
		}

		moved := card.Clone()
		patch.apply(moved)
		moved.ColumnID = columnID
		moved.Order = target
		p.changes = append(p.changes, repository.CardChange{Kind: repository.ChangeUpdate, Card: moved, Before: card})
		p.result = moved
		return p, nil
	})
}

// Reorder moves a card to order within its current column
func (e *OrderingEngine) Reorder(ctx context.Context, cardID string, order int, patch *CardPatch) (*domain.Card, error) {
	if err := validateOrder(&order); err != nil {
		return nil, err
	}
	return e.run(ctx, "reorder", cardID, func(ctx context.Context) (*plan, error) {
		card, err := e.load(ctx, cardID)
		if err != nil {
			return nil, err
		}
		return e.planReorder(ctx, card, &order, patch)
	})
}

// planReorder shifts the interval between the old and new position by one.
// A nil order means the end of the column.
func (e *OrderingEngine) planReorder(ctx context.Context, card *domain.Card, order *int, patch *CardPatch) (*plan, error) {
	siblings, err := e.cards.GetByColumnID(ctx, card.ColumnID)
	if err != nil {
		return nil, err
	}

	last := nextOrder(siblings, card.ID)
	if last > 0 {
		last--
	}
	if card.Order > last {
		last = card.Order
	}
	target := last
	if order != nil {
		target = clamp(*order, 0, last)
	}

	p := &plan{}
	original := card.Order
	for _, c := range siblings {
		if c.ID == card.ID {
			continue
		}
		switch {
		case target > original && c.Order > original && c.Order <= target:
			p.shift(c, -1)
		case target < original && c.Order >= target && c.Order < original:
			p.shift(c, 1)
		}
	}

	moved := card.Clone()
	patch.apply(moved)
	moved.Order = target
	p.changes = append(p.changes, repository.CardChange{Kind: repository.ChangeUpdate, Card: moved, Before: card})
	p.result = moved
	return p, nil
}

// Edit applies a text patch and writes the card back at the position it
// holds when the write commits.
func (e *OrderingEngine) Edit(ctx context.Context, cardID string, patch *CardPatch) (*domain.Card, error) {
	return e.run(ctx, "edit", cardID, func(ctx context.Context) (*plan, error) {
		card, err := e.load(ctx, cardID)
		if err != nil {
			return nil, err
		}

		edited := card.Clone()
		patch.apply(edited)
		return &plan{
			changes: []repository.CardChange{{Kind: repository.ChangeUpdate, Card: edited, Before: card}},
			result:  edited,
		}, nil
	})
}

// Delete removes a card and closes the gap it leaves, so the column stays
// 0..n-1.
func (e *OrderingEngine) Delete(ctx context.Context, cardID string) (*domain.Card, error) {
	return e.run(ctx, "delete", cardID, func(ctx context.Context) (*plan, error) {
		card, err := e.load(ctx, cardID)
		if err != nil {
			return nil, err
		}
		siblings, err := e.cards.GetByColumnID(ctx, card.ColumnID)
		if err != nil {
			return nil, err
		}

		p := &plan{result: card}
		p.changes = append(p.changes, repository.CardChange{Kind: repository.ChangeDelete, Before: card})
		for _, c := range siblings {
			if c.ID != card.ID && c.Order > card.Order {
				p.shift(c, -1)
			}
		}
		return p, nil
	})
}

// Compact renumbers a column to 0..n-1, keeping the current relative order
// and breaking ties by ID. It returns the cards in their new order.
func (e *OrderingEngine) Compact(ctx context.Context, columnID string) ([]*domain.Card, error) {
	var result []*domain.Card
	_, err := e.run(ctx, "compact", columnID, func(ctx context.Context) (*plan, error) {
		siblings, err := e.cards.GetByColumnID(ctx, columnID)
		if err != nil {
			return nil, err
		}
		sortByOrderThenID(siblings)

		p := &plan{}
		result = make([]*domain.Card, 0, len(siblings))
		for i, c := range siblings {
			next := c.Clone()
			next.Order = i
			if c.Order != i {
				p.changes = append(p.changes, repository.CardChange{Kind: repository.ChangeUpdate, Card: next, Before: c})
			}
			result = append(result, next)
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// run builds and commits a plan, rebuilding it from fresh reads when an
// atomic commit finds a card has moved underneath it.
func (e *OrderingEngine) run(ctx context.Context, op, subject string, build func(context.Context) (*plan, error)) (*domain.Card, error) {
	attempts := e.maxAttempts
	if e.mode == ModeSequential {
		attempts = 1
	}

	for attempt := 1; ; attempt++ {
		p, err := build(ctx)
		if err != nil {
			return nil, err
		}

		err = e.commit(ctx, op, p)
		if err == nil {
			e.logger.WithFields(log.Fields{
				"operation": op,
				"subject":   subject,
				"writes":    len(p.changes),
				"attempt":   attempt,
			}).Debug("ordering plan committed")
			return p.result, nil
		}
		if !errors.Is(err, repository.ErrStaleOrder) {
			return nil, err
		}

		e.logger.WithFields(log.Fields{
			"operation": op,
			"subject":   subject,
			"attempt":   attempt,
		}).Warn("card positions changed concurrently")
		if attempt >= attempts {
			return nil, apperrors.NewConflict("Card", subject)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}

func (e *OrderingEngine) commit(ctx context.Context, op string, p *plan) error {
	if len(p.changes) == 0 {
		return nil
	}
	if e.mode == ModeAtomic {
		return e.cards.Apply(ctx, p.changes)
	}

	for i, ch := range p.changes {
		var err error
		switch ch.Kind {
		case repository.ChangeCreate:
			_, err = e.cards.Create(ctx, ch.Card)
		case repository.ChangeUpdate:
			_, err = e.cards.Update(ctx, ch.Card)
		case repository.ChangeDelete:
			_, err = e.cards.Delete(ctx, ch.Before.ID)
		}
		if err != nil {
			e.logger.WithFields(log.Fields{
				"operation": op,
				"completed": i,
				"total":     len(p.changes),
			}).Errorf("sequential ordering write failed, column orders may be inconsistent: %v", err)
			return err
		}
	}
	return nil
}

func (e *OrderingEngine) load(ctx context.Context, cardID string) (*domain.Card, error) {
	card, err := e.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, apperrors.NewNotFound("Card", cardID)
	}
	return card, nil
}

// nextOrder is max(order)+1 over cards other than exclude, or 0 for none
func nextOrder(cards []*domain.Card, exclude string) int {
	next := 0
	for _, c := range cards {
		if c.ID != exclude && c.Order+1 > next {
			next = c.Order + 1
		}
	}
	return next
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func validateOrder(order *int) error {
	if order != nil && *order < 0 {
		return apperrors.NewValidation("Order must be zero or greater")
	}
	return nil
}
