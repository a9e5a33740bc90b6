package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func card(id, column string, order int) Item {
	return Item{"id": id, "title": id, "description": "", "columnId": column, "order": order}
}

func TestMemoryGateway(t *testing.T) {
	ctx := context.Background()

	t.Run("new gateway is empty", func(t *testing.T) {
		gw := NewMemoryGateway()

		items, err := gw.Scan(ctx, Cards)
		require.NoError(t, err)
		assert.Empty(t, items)

		_, err = gw.Get(ctx, Cards, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("put and get return copies", func(t *testing.T) {
		gw := NewMemoryGateway()
		in := card("card-1", "col-1", 0)
		require.NoError(t, gw.Put(ctx, Cards, in, nil))

		in["title"] = "mutated after put"
		got, err := gw.Get(ctx, Cards, "card-1")
		require.NoError(t, err)
		assert.Equal(t, "card-1", got.String("title"))

		got["title"] = "mutated after get"
		again, _ := gw.Get(ctx, Cards, "card-1")
		assert.Equal(t, "card-1", again.String("title"))
	})

	t.Run("put with not-exists condition", func(t *testing.T) {
		gw := NewMemoryGateway()
		require.NoError(t, gw.Put(ctx, Boards, Item{"id": "board-1", "title": "A"}, NotExists()))

		err := gw.Put(ctx, Boards, Item{"id": "board-1", "title": "B"}, NotExists())
		assert.ErrorIs(t, err, ErrConditionFailed)

		got, _ := gw.Get(ctx, Boards, "board-1")
		assert.Equal(t, "A", got.String("title"))
	})

	t.Run("put with equals condition", func(t *testing.T) {
		gw := NewMemoryGateway()
		require.NoError(t, gw.Put(ctx, Cards, card("card-1", "col-1", 2), nil))

		err := gw.Put(ctx, Cards, card("card-1", "col-1", 3), AttrEquals(map[string]any{"order": 1}))
		assert.ErrorIs(t, err, ErrConditionFailed)

		err = gw.Put(ctx, Cards, card("card-1", "col-1", 3), AttrEquals(map[string]any{"order": int64(2)}))
		require.NoError(t, err)

		got, _ := gw.Get(ctx, Cards, "card-1")
		assert.Equal(t, 3, got.Int("order"))
	})

	t.Run("delete", func(t *testing.T) {
		gw := NewMemoryGateway()
		require.NoError(t, gw.Put(ctx, Cards, card("card-1", "col-1", 0), nil))

		require.NoError(t, gw.Delete(ctx, Cards, "card-1", nil))
		assert.ErrorIs(t, gw.Delete(ctx, Cards, "card-1", nil), ErrNotFound)
	})

	t.Run("query filters by attribute", func(t *testing.T) {
		gw := NewMemoryGateway()
		require.NoError(t, gw.Put(ctx, Cards, card("card-1", "col-1", 0), nil))
		require.NoError(t, gw.Put(ctx, Cards, card("card-2", "col-2", 0), nil))
		require.NoError(t, gw.Put(ctx, Cards, card("card-3", "col-1", 1), nil))

		items, err := gw.Query(ctx, Cards, "columnId", "col-1")
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "card-1", items[0].ID())
		assert.Equal(t, "card-3", items[1].ID())
	})
}

func TestMemoryGatewayTransact(t *testing.T) {
	ctx := context.Background()

	t.Run("applies every op", func(t *testing.T) {
		gw := NewMemoryGateway()
		require.NoError(t, gw.Put(ctx, Cards, card("a", "col-1", 0), nil))
		require.NoError(t, gw.Put(ctx, Cards, card("b", "col-1", 1), nil))

		err := gw.Transact(ctx, []Op{
			PutOp(Cards, card("a", "col-1", 1), AttrEquals(map[string]any{"order": 0})),
			PutOp(Cards, card("b", "col-1", 0), AttrEquals(map[string]any{"order": 1})),
		})
		require.NoError(t, err)

		a, _ := gw.Get(ctx, Cards, "a")
		b, _ := gw.Get(ctx, Cards, "b")
		assert.Equal(t, 1, a.Int("order"))
		assert.Equal(t, 0, b.Int("order"))
	})

	t.Run("applies nothing when one condition fails", func(t *testing.T) {
		gw := NewMemoryGateway()
		require.NoError(t, gw.Put(ctx, Cards, card("a", "col-1", 0), nil))
		require.NoError(t, gw.Put(ctx, Cards, card("b", "col-1", 1), nil))

		err := gw.Transact(ctx, []Op{
			PutOp(Cards, card("a", "col-1", 5), nil),
			PutOp(Cards, card("b", "col-1", 0), AttrEquals(map[string]any{"order": 9})),
		})
		assert.ErrorIs(t, err, ErrConditionFailed)

		a, _ := gw.Get(ctx, Cards, "a")
		assert.Equal(t, 0, a.Int("order"))
	})

	t.Run("delete of a missing item fails the transaction", func(t *testing.T) {
		gw := NewMemoryGateway()
		require.NoError(t, gw.Put(ctx, Cards, card("a", "col-1", 0), nil))

		err := gw.Transact(ctx, []Op{
			PutOp(Cards, card("a", "col-1", 1), nil),
			DeleteOp(Cards, "ghost", nil),
		})
		assert.ErrorIs(t, err, ErrConditionFailed)
	})

	t.Run("rejects duplicate keys", func(t *testing.T) {
		gw := NewMemoryGateway()
		err := gw.Transact(ctx, []Op{
			PutOp(Cards, card("a", "col-1", 0), nil),
			PutOp(Cards, card("a", "col-1", 1), nil),
		})
		assert.Error(t, err)
	})
}

func TestMemoryGatewayConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	gw := NewMemoryGateway()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := "card-" + string(rune('a'+n%26)) + string(rune('a'+n/26))
			_ = gw.Put(ctx, Cards, card(id, "col-1", n), nil)
			_, _ = gw.Query(ctx, Cards, "columnId", "col-1")
		}(i)
	}
	wg.Wait()

	items, err := gw.Scan(ctx, Cards)
	require.NoError(t, err)
	assert.Len(t, items, 50)
}

func TestItemAccessors(t *testing.T) {
	item := Item{"id": "x", "order": float64(4), "n64": int64(7), "s": "12"}

	assert.Equal(t, "x", item.ID())
	assert.Equal(t, 4, item.Int("order"))
	assert.Equal(t, 7, item.Int("n64"))
	assert.Equal(t, 12, item.Int("s"))
	assert.Equal(t, 0, item.Int("missing"))
	assert.Equal(t, "", item.String("missing"))

	assert.True(t, item.Matches(map[string]any{"order": 4, "id": "x"}))
	assert.False(t, item.Matches(map[string]any{"order": 5}))
	assert.False(t, item.Matches(map[string]any{"absent": 1}))
}
