package core

import (
	"time"

	"github.com/nikolaydubina/fpdecimal"
)

// Trade is the record of a single execution. The price is always the
// resting order's price; price improvement goes to the incoming side.
type Trade struct {
	symbol     string
	price      fpdecimal.Decimal
	quantity   int64
	buy        *Order
	sell       *Order
	executedAt time.Time
}

func newTrade(buy, sell *Order, price fpdecimal.Decimal, quantity int64) *Trade {
	return &Trade{
		symbol:     buy.symbol,
		price:      price,
		quantity:   quantity,
		buy:        buy,
		sell:       sell,
		executedAt: time.Now(),
	}
}

// Symbol returns the traded security
func (t *Trade) Symbol() string {
	return t.symbol
}

// Price returns the execution price
func (t *Trade) Price() fpdecimal.Decimal {
	return t.price
}

// Quantity returns the executed quantity
func (t *Trade) Quantity() int64 {
	return t.quantity
}

// BuyOrderID returns the buy-side order id
func (t *Trade) BuyOrderID() int64 {
	return t.buy.id
}

// SellOrderID returns the sell-side order id
func (t *Trade) SellOrderID() int64 {
	return t.sell.id
}

// ExecutedAt returns the execution timestamp
func (t *Trade) ExecutedAt() time.Time {
	return t.executedAt
}

// Value returns price times quantity
func (t *Trade) Value() fpdecimal.Decimal {
	return t.price.Mul(fpdecimal.FromInt(t.quantity))
}

func (t *Trade) buyerHasEnoughCredit() bool {
	return t.buy.broker.HasEnoughCredit(t.Value())
}

func (t *Trade) decreaseBuyersCredit() {
	t.buy.broker.DecreaseCredit(t.Value())
}

func (t *Trade) increaseBuyersCredit() {
	t.buy.broker.IncreaseCredit(t.Value())
}

func (t *Trade) increaseSellersCredit() {
	t.sell.broker.IncreaseCredit(t.Value())
}

func (t *Trade) decreaseSellersCredit() {
	t.sell.broker.DecreaseCredit(t.Value())
}

func (t *Trade) transferPositions() {
	t.buy.shareholder.IncPosition(t.symbol, t.quantity)
	t.sell.shareholder.DecPosition(t.symbol, t.quantity)
}

func (t *Trade) revertPositions() {
	t.buy.shareholder.DecPosition(t.symbol, t.quantity)
	t.sell.shareholder.IncPosition(t.symbol, t.quantity)
}
