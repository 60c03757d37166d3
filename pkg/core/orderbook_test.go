package core

import (
	"testing"
	"time"

	"github.com/nikolaydubina/fpdecimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLimit(t *testing.T, id int64, side Side, quantity int64, p fpdecimal.Decimal) *Order {
	t.Helper()
	broker := NewBroker(id, price(0))
	shareholder := NewShareholder(id)
	order, err := NewLimitOrder(id, "SAIPA", side, quantity, p, broker, shareholder, time.Now())
	require.NoError(t, err)
	return order
}

func TestOrderBook_PricePriority(t *testing.T) {
	book := NewOrderBook("SAIPA")

	book.Enqueue(mustLimit(t, 1, Buy, 10, price(15450)))
	book.Enqueue(mustLimit(t, 2, Buy, 10, price(15700)))
	book.Enqueue(mustLimit(t, 3, Buy, 10, price(15500)))

	book.Enqueue(mustLimit(t, 4, Sell, 10, price(15820)))
	book.Enqueue(mustLimit(t, 5, Sell, 10, price(15800)))
	book.Enqueue(mustLimit(t, 6, Sell, 10, price(15810)))

	assert.Equal(t, int64(2), book.BestOf(Buy).ID())
	assert.Equal(t, int64(5), book.BestOf(Sell).ID())
	assert.Equal(t, int64(5), book.BestOpposite(Buy).ID())
	assert.Equal(t, int64(2), book.BestOpposite(Sell).ID())
}

func TestOrderBook_TimePriorityWithinLevel(t *testing.T) {
	book := NewOrderBook("SAIPA")

	book.Enqueue(mustLimit(t, 1, Buy, 10, price(15450)))
	book.Enqueue(mustLimit(t, 2, Buy, 10, price(15450)))
	book.Enqueue(mustLimit(t, 3, Buy, 10, price(15450)))

	assert.Equal(t, int64(1), book.BestOf(Buy).ID())

	_, err := book.RemoveByOrderID(Buy, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), book.BestOf(Buy).ID())

	_, err = book.RemoveByOrderID(Buy, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), book.BestOf(Buy).ID())
}

func TestOrderBook_RemoveDropsEmptyLevel(t *testing.T) {
	book := NewOrderBook("SAIPA")

	book.Enqueue(mustLimit(t, 1, Sell, 10, price(15800)))
	book.Enqueue(mustLimit(t, 2, Sell, 10, price(15810)))

	_, err := book.RemoveByOrderID(Sell, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), book.BestOf(Sell).ID())
	assert.Equal(t, 1, book.OrderCount(Sell))

	_, err = book.RemoveByOrderID(Sell, 1)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderBook_RestoreKeepsOriginalPosition(t *testing.T) {
	book := NewOrderBook("SAIPA")

	first := mustLimit(t, 1, Buy, 10, price(15450))
	second := mustLimit(t, 2, Buy, 10, price(15450))
	third := mustLimit(t, 3, Buy, 10, price(15450))
	book.Enqueue(first)
	book.Enqueue(second)
	book.Enqueue(third)

	_, err := book.RemoveByOrderID(Buy, 2)
	require.NoError(t, err)

	// back into the middle of the level, not the end
	book.Restore(second)
	_, err = book.RemoveByOrderID(Buy, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), book.BestOf(Buy).ID())
}

func TestOrderBook_RequeueMovesToBackOfLevel(t *testing.T) {
	book := NewOrderBook("SAIPA")

	first := mustLimit(t, 1, Sell, 10, price(15800))
	second := mustLimit(t, 2, Sell, 10, price(15800))
	book.Enqueue(first)
	book.Enqueue(second)

	book.Requeue(first)
	assert.Equal(t, int64(2), book.BestOf(Sell).ID())
}

func TestOrderBook_FindByOrderID(t *testing.T) {
	book := NewOrderBook("SAIPA")
	book.Enqueue(mustLimit(t, 1, Buy, 10, price(15450)))

	assert.NotNil(t, book.FindByOrderID(Buy, 1))
	assert.Nil(t, book.FindByOrderID(Sell, 1))
	assert.Nil(t, book.FindByOrderID(Buy, 2))
}

func TestOrderBook_TotalSellQuantityByShareholder(t *testing.T) {
	book := NewOrderBook("SAIPA")
	broker := NewBroker(1, price(0))
	owner := NewShareholder(1)
	other := NewShareholder(2)

	o1, err := NewLimitOrder(1, "SAIPA", Sell, 100, price(15800), broker, owner, time.Now())
	require.NoError(t, err)
	o2, err := NewLimitOrder(2, "SAIPA", Sell, 50, price(15810), broker, owner, time.Now())
	require.NoError(t, err)
	o3, err := NewLimitOrder(3, "SAIPA", Sell, 70, price(15820), broker, other, time.Now())
	require.NoError(t, err)
	o4, err := NewLimitOrder(4, "SAIPA", Buy, 30, price(15700), broker, owner, time.Now())
	require.NoError(t, err)

	book.Enqueue(o1)
	book.Enqueue(o2)
	book.Enqueue(o3)
	book.Enqueue(o4)

	assert.Equal(t, int64(150), book.TotalSellQuantityByShareholder(owner))
	assert.Equal(t, int64(70), book.TotalSellQuantityByShareholder(other))
}

func TestOrderBook_HasIcebergOrders(t *testing.T) {
	book := NewOrderBook("SAIPA")
	broker := NewBroker(1, price(0))
	shareholder := NewShareholder(1)

	book.Enqueue(mustLimit(t, 1, Sell, 10, price(15800)))
	assert.False(t, book.HasIcebergOrders(Sell))

	iceberg, err := NewIcebergOrder(2, "SAIPA", Sell, 500, price(15830), broker, shareholder, 100, time.Now())
	require.NoError(t, err)
	book.Enqueue(iceberg)
	assert.True(t, book.HasIcebergOrders(Sell))
}
