package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"kanladin-backend/internal/kanban/domain"
	"kanladin-backend/internal/kanban/repository"
	"kanladin-backend/pkg/events"
	"kanladin-backend/pkg/store"
)

type fixture struct {
	boards  repository.BoardRepository
	columns repository.ColumnRepository
	cards   repository.CardRepository
	events  *events.Recorder
}

// newFixture creates board-1 with the empty columns col-1 and col-2
func newFixture(t *testing.T) *fixture {
	t.Helper()
	gw := store.NewMemoryGateway()
	f := &fixture{
		boards:  repository.NewBoardRepository(gw),
		columns: repository.NewColumnRepository(gw),
		cards:   repository.NewCardRepository(gw),
		events:  &events.Recorder{},
	}

	ctx := context.Background()
	_, err := f.boards.Create(ctx, &domain.Board{ID: "board-1", Title: "Board"})
	require.NoError(t, err)
	for i, id := range []string{"col-1", "col-2"} {
		_, err := f.columns.Create(ctx, &domain.Column{ID: id, Title: id, BoardID: "board-1", Order: i})
		require.NoError(t, err)
	}
	return f
}

// addCards stores cards directly with orders 0..n-1
func (f *fixture) addCards(t *testing.T, columnID string, ids ...string) {
	t.Helper()
	for i, id := range ids {
		f.addCardAt(t, columnID, id, i)
	}
}

func (f *fixture) addCardAt(t *testing.T, columnID, id string, order int) {
	t.Helper()
	_, err := f.cards.Create(context.Background(), &domain.Card{ID: id, Title: id, ColumnID: columnID, Order: order})
	require.NoError(t, err)
}

// orders maps card ID to order for one column
func (f *fixture) orders(t *testing.T, columnID string) map[string]int {
	t.Helper()
	cards, err := f.cards.GetByColumnID(context.Background(), columnID)
	require.NoError(t, err)
	out := make(map[string]int, len(cards))
	for _, c := range cards {
		out[c.ID] = c.Order
	}
	return out
}

func (f *fixture) engine(mode OrderingMode) *OrderingEngine {
	return NewOrderingEngine(f.cards, mode, 3)
}

func (f *fixture) cardUsecase(engine *OrderingEngine) CardUsecase {
	return NewCardUsecase(f.cards, f.columns, engine, f.events)
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

// flakyCards fails Apply for the first staleApplies calls and Update on the
// failUpdateAt-th call
type flakyCards struct {
	repository.CardRepository

	mu           sync.Mutex
	staleApplies int
	applies      int
	failUpdateAt int
	updates      int
}

var errDiskFull = errors.New("disk full")

func (r *flakyCards) Apply(ctx context.Context, changes []repository.CardChange) error {
	r.mu.Lock()
	r.applies++
	stale := r.applies <= r.staleApplies
	r.mu.Unlock()
	if stale {
		return repository.ErrStaleOrder
	}
	return r.CardRepository.Apply(ctx, changes)
}

func (r *flakyCards) Update(ctx context.Context, card *domain.Card) (*domain.Card, error) {
	r.mu.Lock()
	r.updates++
	fail := r.updates == r.failUpdateAt
	r.mu.Unlock()
	if fail {
		return nil, errDiskFull
	}
	return r.CardRepository.Update(ctx, card)
}

// interleavedCards runs hook once, right after the at-th GetByID of cardID
// has read the card, so a concurrent write lands between read and commit
type interleavedCards struct {
	repository.CardRepository

	cardID string
	at     int
	reads  int
	hook   func()
}

func (r *interleavedCards) GetByID(ctx context.Context, id string) (*domain.Card, error) {
	card, err := r.CardRepository.GetByID(ctx, id)
	if id == r.cardID {
		r.reads++
		if r.reads == r.at {
			r.hook()
		}
	}
	return card, err
}
