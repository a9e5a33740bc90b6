package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanladin-backend/internal/kanban/domain"
	"kanladin-backend/pkg/apperrors"
)

func TestParseOrderingMode(t *testing.T) {
	mode, err := ParseOrderingMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeAtomic, mode)

	mode, err = ParseOrderingMode("sequential")
	require.NoError(t, err)
	assert.Equal(t, ModeSequential, mode)

	_, err = ParseOrderingMode("eventual")
	assert.Error(t, err)
}

func TestOrderingInsert(t *testing.T) {
	ctx := context.Background()

	for _, mode := range []OrderingMode{ModeAtomic, ModeSequential} {
		t.Run(string(mode), func(t *testing.T) {
			t.Run("appends without touching siblings", func(t *testing.T) {
				f := newFixture(t)
				f.addCards(t, "col-1", "card-a", "card-b", "card-c")

				card, err := f.engine(mode).Insert(ctx, &domain.Card{ID: "card-x", Title: "X", ColumnID: "col-1"}, nil)
				require.NoError(t, err)
				assert.Equal(t, 3, card.Order)
				assert.Equal(t, map[string]int{"card-a": 0, "card-b": 1, "card-c": 2, "card-x": 3}, f.orders(t, "col-1"))
			})

			t.Run("first card of an empty column", func(t *testing.T) {
				f := newFixture(t)
				card, err := f.engine(mode).Insert(ctx, &domain.Card{ID: "card-x", Title: "X", ColumnID: "col-2"}, nil)
				require.NoError(t, err)
				assert.Equal(t, 0, card.Order)
			})

			t.Run("inserts at a position and shifts the rest", func(t *testing.T) {
				f := newFixture(t)
				f.addCards(t, "col-1", "card-a", "card-b", "card-c")

				card, err := f.engine(mode).Insert(ctx, &domain.Card{ID: "card-x", Title: "X", ColumnID: "col-1"}, intPtr(1))
				require.NoError(t, err)
				assert.Equal(t, 1, card.Order)
				assert.Equal(t, map[string]int{"card-a": 0, "card-x": 1, "card-b": 2, "card-c": 3}, f.orders(t, "col-1"))
			})

			t.Run("clamps past the end", func(t *testing.T) {
				f := newFixture(t)
				f.addCards(t, "col-1", "card-a", "card-b")

				card, err := f.engine(mode).Insert(ctx, &domain.Card{ID: "card-x", Title: "X", ColumnID: "col-1"}, intPtr(40))
				require.NoError(t, err)
				assert.Equal(t, 2, card.Order)
				assert.Equal(t, map[string]int{"card-a": 0, "card-b": 1, "card-x": 2}, f.orders(t, "col-1"))
			})
		})
	}

	t.Run("negative order is rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine(ModeAtomic).Insert(ctx, &domain.Card{ID: "card-x", Title: "X", ColumnID: "col-1"}, intPtr(-1))
		assert.True(t, apperrors.IsValidation(err))
		assert.Empty(t, f.orders(t, "col-1"))
	})
}

func TestOrderingReorder(t *testing.T) {
	tests := []struct {
		name   string
		card   string
		order  int
		expect map[string]int
	}{
		{
			name:   "down the column",
			card:   "card-a",
			order:  2,
			expect: map[string]int{"card-b": 0, "card-c": 1, "card-a": 2, "card-d": 3},
		},
		{
			name:   "up the column",
			card:   "card-d",
			order:  1,
			expect: map[string]int{"card-a": 0, "card-d": 1, "card-b": 2, "card-c": 3},
		},
		{
			name:   "to the top",
			card:   "card-c",
			order:  0,
			expect: map[string]int{"card-c": 0, "card-a": 1, "card-b": 2, "card-d": 3},
		},
		{
			name:   "past the end clamps to last",
			card:   "card-a",
			order:  99,
			expect: map[string]int{"card-b": 0, "card-c": 1, "card-d": 2, "card-a": 3},
		},
		{
			name:   "same position is a no-op",
			card:   "card-b",
			order:  1,
			expect: map[string]int{"card-a": 0, "card-b": 1, "card-c": 2, "card-d": 3},
		},
	}

	for _, mode := range []OrderingMode{ModeAtomic, ModeSequential} {
		for _, tt := range tests {
			t.Run(string(mode)+"/"+tt.name, func(t *testing.T) {
				f := newFixture(t)
				f.addCards(t, "col-1", "card-a", "card-b", "card-c", "card-d")

				card, err := f.engine(mode).Reorder(context.Background(), tt.card, tt.order, nil)
				require.NoError(t, err)
				assert.Equal(t, tt.expect[tt.card], card.Order)
				assert.Equal(t, tt.expect, f.orders(t, "col-1"))
			})
		}
	}
}

func TestOrderingReorderAppliesPatch(t *testing.T) {
	f := newFixture(t)
	f.addCards(t, "col-1", "card-a", "card-b")

	card, err := f.engine(ModeAtomic).Reorder(context.Background(), "card-b", 0, &CardPatch{Title: strPtr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", card.Title)

	stored, err := f.cards.GetByID(context.Background(), "card-b")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Title)
	assert.Equal(t, 0, stored.Order)
}

func TestOrderingReorderMissingCard(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine(ModeAtomic).Reorder(context.Background(), "card-zz", 0, nil)

	var notFound *apperrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Card", notFound.ResourceType)
}

func TestOrderingMove(t *testing.T) {
	ctx := context.Background()

	for _, mode := range []OrderingMode{ModeAtomic, ModeSequential} {
		t.Run(string(mode), func(t *testing.T) {
			t.Run("between columns at a position", func(t *testing.T) {
				f := newFixture(t)
				f.addCards(t, "col-1", "card-a", "card-b", "card-c")
				f.addCards(t, "col-2", "card-x", "card-y")

				card, err := f.engine(mode).Move(ctx, "card-b", "col-2", intPtr(1), nil)
				require.NoError(t, err)
				assert.Equal(t, "col-2", card.ColumnID)
				assert.Equal(t, 1, card.Order)
				assert.Equal(t, map[string]int{"card-a": 0, "card-c": 1}, f.orders(t, "col-1"))
				assert.Equal(t, map[string]int{"card-x": 0, "card-b": 1, "card-y": 2}, f.orders(t, "col-2"))
			})

			t.Run("appends when no order is given", func(t *testing.T) {
				f := newFixture(t)
				f.addCards(t, "col-1", "card-a", "card-b")
				f.addCards(t, "col-2", "card-x", "card-y")

				card, err := f.engine(mode).Move(ctx, "card-a", "col-2", nil, nil)
				require.NoError(t, err)
				assert.Equal(t, 2, card.Order)
				assert.Equal(t, map[string]int{"card-b": 0}, f.orders(t, "col-1"))
				assert.Equal(t, map[string]int{"card-x": 0, "card-y": 1, "card-a": 2}, f.orders(t, "col-2"))
			})

			t.Run("into an empty column clamps to zero", func(t *testing.T) {
				f := newFixture(t)
				f.addCards(t, "col-1", "card-a", "card-b")

				card, err := f.engine(mode).Move(ctx, "card-a", "col-2", intPtr(5), nil)
				require.NoError(t, err)
				assert.Equal(t, 0, card.Order)
				assert.Equal(t, map[string]int{"card-b": 0}, f.orders(t, "col-1"))
				assert.Equal(t, map[string]int{"card-a": 0}, f.orders(t, "col-2"))
			})

			t.Run("within the same column reorders", func(t *testing.T) {
				f := newFixture(t)
				f.addCards(t, "col-1", "card-a", "card-b", "card-c")

				card, err := f.engine(mode).Move(ctx, "card-c", "col-1", intPtr(0), nil)
				require.NoError(t, err)
				assert.Equal(t, 0, card.Order)
				assert.Equal(t, map[string]int{"card-c": 0, "card-a": 1, "card-b": 2}, f.orders(t, "col-1"))
			})
		})
	}
}

func TestOrderingDeleteCompacts(t *testing.T) {
	for _, mode := range []OrderingMode{ModeAtomic, ModeSequential} {
		t.Run(string(mode), func(t *testing.T) {
			f := newFixture(t)
			f.addCards(t, "col-1", "card-a", "card-b", "card-c")

			deleted, err := f.engine(mode).Delete(context.Background(), "card-b")
			require.NoError(t, err)
			assert.Equal(t, "card-b", deleted.ID)
			assert.Equal(t, map[string]int{"card-a": 0, "card-c": 1}, f.orders(t, "col-1"))
		})
	}
}

func TestOrderingCompact(t *testing.T) {
	f := newFixture(t)
	f.addCardAt(t, "col-1", "card-b", 4)
	f.addCardAt(t, "col-1", "card-a", 4)
	f.addCardAt(t, "col-1", "card-c", 9)

	cards, err := f.engine(ModeAtomic).Compact(context.Background(), "col-1")
	require.NoError(t, err)
	require.Len(t, cards, 3)
	assert.Equal(t, "card-a", cards[0].ID)
	assert.Equal(t, map[string]int{"card-a": 0, "card-b": 1, "card-c": 2}, f.orders(t, "col-1"))
}

func TestOrderingAtomicRetriesStalePlans(t *testing.T) {
	ctx := context.Background()

	t.Run("recovers after a stale read", func(t *testing.T) {
		f := newFixture(t)
		f.addCards(t, "col-1", "card-a", "card-b", "card-c")
		flaky := &flakyCards{CardRepository: f.cards, staleApplies: 1}

		card, err := NewOrderingEngine(flaky, ModeAtomic, 3).Reorder(ctx, "card-a", 2, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, card.Order)
		assert.Equal(t, 2, flaky.applies)
		assert.Equal(t, map[string]int{"card-b": 0, "card-c": 1, "card-a": 2}, f.orders(t, "col-1"))
	})

	t.Run("gives up with a conflict", func(t *testing.T) {
		f := newFixture(t)
		f.addCards(t, "col-1", "card-a", "card-b", "card-c")
		flaky := &flakyCards{CardRepository: f.cards, staleApplies: 100}

		_, err := NewOrderingEngine(flaky, ModeAtomic, 3).Reorder(ctx, "card-a", 2, nil)

		var conflict *apperrors.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "Card", conflict.ResourceType)
		assert.Equal(t, "card-a", conflict.Identifier)
		assert.Equal(t, 3, flaky.applies)
		assert.Equal(t, map[string]int{"card-a": 0, "card-b": 1, "card-c": 2}, f.orders(t, "col-1"))
	})
}

func TestOrderingAtomicConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addCards(t, "col-1", "card-r0", "card-r1", "card-r2", "card-r3", "card-m0", "card-d0")
	f.addCards(t, "col-2", "card-p0", "card-p1", "card-m1", "card-d1")
	engine := NewOrderingEngine(f.cards, ModeAtomic, 100)

	// each card has a single writer; the others only shift it
	var wg sync.WaitGroup
	run := func(id string, ops int, op func(k int) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := 0; k < ops; k++ {
				if err := op(k); err != nil {
					assert.True(t, apperrors.IsConflict(err), "%s: %v", id, err)
				}
			}
		}()
	}

	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("card-r%d", i)
		i := i
		run(id, 20, func(k int) error {
			_, err := engine.Reorder(ctx, id, (i+k*3)%7, nil)
			return err
		})
	}
	for i, dests := range [][2]string{{"col-2", "col-1"}, {"col-1", "col-2"}} {
		id := fmt.Sprintf("card-m%d", i)
		dests := dests
		run(id, 20, func(k int) error {
			_, err := engine.Move(ctx, id, dests[k%2], intPtr(0), nil)
			return err
		})
	}
	for _, id := range []string{"card-d0", "card-d1"} {
		id := id
		run(id, 1, func(int) error {
			_, err := engine.Delete(ctx, id)
			return err
		})
	}
	wg.Wait()

	total := 0
	for _, columnID := range []string{"col-1", "col-2"} {
		cards, err := f.cards.GetByColumnID(ctx, columnID)
		require.NoError(t, err)
		report := BuildOrderReport(columnID, cards)
		assert.True(t, report.Consistent, "%s: %+v", columnID, report)
		total += len(cards)
	}
	assert.Equal(t, 8, total)
}

func TestOrderingSequentialPartialFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addCards(t, "col-1", "card-a", "card-b", "card-c", "card-d")
	flaky := &flakyCards{CardRepository: f.cards, failUpdateAt: 2}
	engine := NewOrderingEngine(flaky, ModeSequential, 3)

	_, err := engine.Reorder(ctx, "card-d", 0, nil)
	require.ErrorIs(t, err, errDiskFull)

	// the first shift landed, nothing after it did
	assert.Equal(t, map[string]int{"card-a": 1, "card-b": 1, "card-c": 2, "card-d": 3}, f.orders(t, "col-1"))

	cards, err := f.cards.GetByColumnID(ctx, "col-1")
	require.NoError(t, err)
	report := BuildOrderReport("col-1", cards)
	assert.False(t, report.Consistent)
	assert.Equal(t, []int{1}, report.Duplicates)
	assert.Equal(t, []int{0}, report.Gaps)

	_, err = engine.Compact(ctx, "col-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"card-a": 0, "card-b": 1, "card-c": 2, "card-d": 3}, f.orders(t, "col-1"))
}
