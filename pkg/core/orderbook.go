package core

import (
	"fmt"
	"strings"

	"github.com/gammazero/deque"
	"github.com/huandu/skiplist"
	"github.com/nikolaydubina/fpdecimal"
)

// priceLevel is a FIFO queue of resting orders sharing one price
type priceLevel struct {
	price  fpdecimal.Decimal
	orders deque.Deque[*Order]
}

// bookSide holds one side of the book: a skiplist of price levels ordered
// best-first (bids descending, asks ascending), a price index into the
// skiplist, and an order-id index.
type bookSide struct {
	side   Side
	levels *skiplist.SkipList
	prices map[fpdecimal.Decimal]*skiplist.Element
	byID   map[int64]*Order
}

func newBookSide(side Side) *bookSide {
	cmp := skiplist.GreaterThanFunc(func(lhs, rhs any) int {
		d1, _ := lhs.(fpdecimal.Decimal)
		d2, _ := rhs.(fpdecimal.Decimal)

		if side == Buy {
			// highest price first
			if d1.LessThan(d2) {
				return 1
			} else if d1.GreaterThan(d2) {
				return -1
			}
			return 0
		}

		// lowest price first
		if d1.GreaterThan(d2) {
			return 1
		} else if d1.LessThan(d2) {
			return -1
		}
		return 0
	})

	return &bookSide{
		side:   side,
		levels: skiplist.New(cmp),
		prices: make(map[fpdecimal.Decimal]*skiplist.Element),
		byID:   make(map[int64]*Order),
	}
}

// insert places the order into its price level by priority sequence. Fresh
// orders carry the highest sequence and land at the back; a restored order
// keeps its old sequence and slots back into its original position.
func (bs *bookSide) insert(order *Order) {
	el, ok := bs.prices[order.price]
	if !ok {
		lvl := &priceLevel{price: order.price}
		lvl.orders.PushBack(order)
		bs.prices[order.price] = bs.levels.Set(order.price, lvl)
		bs.byID[order.id] = order
		return
	}

	lvl, _ := el.Value.(*priceLevel)
	i := lvl.orders.Len()
	for i > 0 && lvl.orders.At(i-1).priority > order.priority {
		i--
	}
	if i == lvl.orders.Len() {
		lvl.orders.PushBack(order)
	} else {
		lvl.orders.Insert(i, order)
	}
	bs.byID[order.id] = order
}

// remove takes the order out of its price level, dropping the level when it
// empties
func (bs *bookSide) remove(order *Order) bool {
	el, ok := bs.prices[order.price]
	if !ok {
		return false
	}

	lvl, _ := el.Value.(*priceLevel)
	for i := 0; i < lvl.orders.Len(); i++ {
		if lvl.orders.At(i).id == order.id {
			lvl.orders.Remove(i)
			break
		}
	}
	if lvl.orders.Len() == 0 {
		bs.levels.Remove(order.price)
		delete(bs.prices, order.price)
	}
	delete(bs.byID, order.id)
	return true
}

// best returns the first order of the best price level, nil when empty
func (bs *bookSide) best() *Order {
	front := bs.levels.Front()
	if front == nil {
		return nil
	}
	lvl, _ := front.Value.(*priceLevel)
	return lvl.orders.Front()
}

func (bs *bookSide) find(id int64) *Order {
	return bs.byID[id]
}

func (bs *bookSide) orderCount() int {
	return len(bs.byID)
}

// OrderBook keeps the two price-ordered queues of one security. It is not
// safe for concurrent use; Security serializes access per instrument.
type OrderBook struct {
	symbol string
	bids   *bookSide
	asks   *bookSide
	seq    uint64
}

// NewOrderBook creates an empty book for symbol
func NewOrderBook(symbol string) *OrderBook {
	return &OrderBook{
		symbol: symbol,
		bids:   newBookSide(Buy),
		asks:   newBookSide(Sell),
	}
}

// Symbol returns the security symbol
func (b *OrderBook) Symbol() string {
	return b.symbol
}

func (b *OrderBook) sideOf(side Side) *bookSide {
	if side == Buy {
		return b.bids
	}
	return b.asks
}

// Enqueue inserts the order maintaining price-time priority. The order is
// stamped with the next priority sequence, placing it behind every order
// already resting at its price level.
func (b *OrderBook) Enqueue(order *Order) {
	b.seq++
	order.priority = b.seq
	b.sideOf(order.side).insert(order)
}

// Restore reinserts an order preserving its original priority sequence,
// used to undo removals during rollback and rejected amendments
func (b *OrderBook) Restore(order *Order) {
	b.sideOf(order.side).insert(order)
}

// Requeue moves a replenished iceberg slice to the back of its price level
// by stamping a fresh priority sequence
func (b *OrderBook) Requeue(order *Order) {
	bs := b.sideOf(order.side)
	bs.remove(order)
	b.seq++
	order.priority = b.seq
	bs.insert(order)
}

// FindByOrderID returns the resting order or nil
func (b *OrderBook) FindByOrderID(side Side, id int64) *Order {
	return b.sideOf(side).find(id)
}

// RemoveByOrderID removes and returns the identified order
func (b *OrderBook) RemoveByOrderID(side Side, id int64) (*Order, error) {
	bs := b.sideOf(side)
	order := bs.find(id)
	if order == nil {
		return nil, ErrOrderNotFound
	}
	bs.remove(order)
	return order, nil
}

// BestOf returns the best-priced resting order on side, nil when empty
func (b *OrderBook) BestOf(side Side) *Order {
	return b.sideOf(side).best()
}

// BestOpposite returns the best-priced resting order on the other side
func (b *OrderBook) BestOpposite(side Side) *Order {
	return b.sideOf(side.Opposite()).best()
}

// OrderCount returns the number of resting orders on side
func (b *OrderBook) OrderCount(side Side) int {
	return b.sideOf(side).orderCount()
}

// HasIcebergOrders reports whether any resting order on side hides quantity
func (b *OrderBook) HasIcebergOrders(side Side) bool {
	for _, order := range b.sideOf(side).byID {
		if order.IsIceberg() {
			return true
		}
	}
	return false
}

// ForEachOrder visits every resting order on side in unspecified order
func (b *OrderBook) ForEachOrder(side Side, fn func(*Order)) {
	for _, order := range b.sideOf(side).byID {
		fn(order)
	}
}

// TotalSellQuantityByShareholder sums the resting sell quantity owned by
// the shareholder, the amount already committed against its position
func (b *OrderBook) TotalSellQuantityByShareholder(sh *Shareholder) int64 {
	var total int64
	for _, order := range b.asks.byID {
		if order.shareholder == sh {
			total += order.quantity
		}
	}
	return total
}

// String implements fmt.Stringer interface
func (b *OrderBook) String() string {
	sb := strings.Builder{}

	sb.WriteString("Ask:")
	for el := b.asks.levels.Front(); el != nil; el = el.Next() {
		lvl, _ := el.Value.(*priceLevel)
		sb.WriteString(fmt.Sprintf("\n%s -> orders: %d", lvl.price.String(), lvl.orders.Len()))
	}
	sb.WriteString("\nBid:")
	for el := b.bids.levels.Front(); el != nil; el = el.Next() {
		lvl, _ := el.Value.(*priceLevel)
		sb.WriteString(fmt.Sprintf("\n%s -> orders: %d", lvl.price.String(), lvl.orders.Len()))
	}
	sb.WriteString("\n")

	return sb.String()
}
