package core

import (
	"encoding/json"
	"time"

	"github.com/nikolaydubina/fpdecimal"
)

// Side represents buy or sell side of the order
type Side int

// Order sides
const (
	Sell Side = iota
	Buy
)

// String returns side as string
func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Opposite returns the other side of the book
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrderType represents type of the order
type OrderType string

// Order types
const (
	TypeLimit   OrderType = "LIMIT"
	TypeIceberg OrderType = "ICEBERG"
)

// OrderStatus represents the lifecycle state of an order.
// Filled and Cancelled are terminal.
type OrderStatus string

// Order statuses
const (
	StatusNew             OrderStatus = "NEW"
	StatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	StatusFilled          OrderStatus = "FILLED"
	StatusCancelled       OrderStatus = "CANCELLED"
)

// Order stores the state of a resting or incoming order. Limit and iceberg
// orders share the struct; an iceberg carries a peak size and exposes only
// its displayed slice to the book.
type Order struct {
	id          int64
	symbol      string
	orderType   OrderType
	side        Side
	quantity    int64 // remaining unfilled quantity
	displayed   int64 // visible slice, equals quantity for limit orders
	peakSize    int64 // 0 for limit orders
	price       fpdecimal.Decimal
	broker      *Broker
	shareholder *Shareholder
	status      OrderStatus
	entryTime   time.Time
	priority    uint64 // book insertion sequence, 0 until first enqueue
}

// NewLimitOrder creates a plain limit order
func NewLimitOrder(id int64, symbol string, side Side, quantity int64, price fpdecimal.Decimal, broker *Broker, shareholder *Shareholder, entryTime time.Time) (*Order, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if price.LessThanOrEqual(fpdecimal.Zero) {
		return nil, ErrInvalidPrice
	}

	return &Order{
		id:          id,
		symbol:      symbol,
		orderType:   TypeLimit,
		side:        side,
		quantity:    quantity,
		displayed:   quantity,
		price:       price,
		broker:      broker,
		shareholder: shareholder,
		status:      StatusNew,
		entryTime:   entryTime,
	}, nil
}

// NewIcebergOrder creates an iceberg order exposing at most peakSize at a time
func NewIcebergOrder(id int64, symbol string, side Side, quantity int64, price fpdecimal.Decimal, broker *Broker, shareholder *Shareholder, peakSize int64, entryTime time.Time) (*Order, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if price.LessThanOrEqual(fpdecimal.Zero) {
		return nil, ErrInvalidPrice
	}
	if peakSize <= 0 || peakSize > quantity {
		return nil, ErrInvalidPeakSize
	}

	return &Order{
		id:          id,
		symbol:      symbol,
		orderType:   TypeIceberg,
		side:        side,
		quantity:    quantity,
		displayed:   min(peakSize, quantity),
		peakSize:    peakSize,
		price:       price,
		broker:      broker,
		shareholder: shareholder,
		status:      StatusNew,
		entryTime:   entryTime,
	}, nil
}

// ID returns the order id, unique per security
func (o *Order) ID() int64 {
	return o.id
}

// Symbol returns the security symbol the order belongs to
func (o *Order) Symbol() string {
	return o.symbol
}

// Side returns side of the Order
func (o *Order) Side() Side {
	return o.side
}

// OrderType returns the order type tag
func (o *Order) OrderType() OrderType {
	return o.orderType
}

// Status returns the lifecycle state
func (o *Order) Status() OrderStatus {
	return o.status
}

// Quantity returns the remaining unfilled quantity
func (o *Order) Quantity() int64 {
	return o.quantity
}

// VisibleQuantity returns the quantity exposed to the book: the displayed
// slice for an iceberg, the full remaining quantity otherwise
func (o *Order) VisibleQuantity() int64 {
	if o.orderType == TypeIceberg {
		return o.displayed
	}
	return o.quantity
}

// PeakSize returns the iceberg peak, 0 for limit orders
func (o *Order) PeakSize() int64 {
	return o.peakSize
}

// Price returns the limit price
func (o *Order) Price() fpdecimal.Decimal {
	return o.price
}

// Broker returns the broker whose credit the order consumes or earns
func (o *Order) Broker() *Broker {
	return o.broker
}

// Shareholder returns the position owner
func (o *Order) Shareholder() *Shareholder {
	return o.shareholder
}

// EntryTime returns the time the order entered the system
func (o *Order) EntryTime() time.Time {
	return o.entryTime
}

// IsIceberg returns true for iceberg orders
func (o *Order) IsIceberg() bool {
	return o.orderType == TypeIceberg
}

// Value returns price times remaining quantity, the amount a buy order
// reserves while resting
func (o *Order) Value() fpdecimal.Decimal {
	return o.price.Mul(fpdecimal.FromInt(o.quantity))
}

// DecreaseQuantity consumes quantity filled by a trade
func (o *Order) DecreaseQuantity(quantity int64) {
	o.quantity -= quantity
	if o.orderType == TypeIceberg {
		o.displayed -= min(o.displayed, quantity)
		if o.displayed > o.quantity {
			o.displayed = o.quantity
		}
	} else {
		o.displayed = o.quantity
	}
}

// Replenish refreshes the displayed slice from hidden quantity. Returns
// false when nothing is hidden anymore.
func (o *Order) Replenish() bool {
	if o.orderType != TypeIceberg || o.quantity == 0 {
		return false
	}
	o.displayed = min(o.peakSize, o.quantity)
	return true
}

// Snapshot returns a copy used to restore book state on rollback
func (o *Order) Snapshot() *Order {
	c := *o
	return &c
}

// restoreFrom reinstates the mutable fields captured by Snapshot
func (o *Order) restoreFrom(s *Order) {
	o.quantity = s.quantity
	o.displayed = s.displayed
	o.peakSize = s.peakSize
	o.price = s.price
	o.status = s.status
	o.entryTime = s.entryTime
	o.priority = s.priority
}

// applyAmendment rewrites the mutable fields from an update request.
// Terminal orders are never amended; callers look the order up in the book.
func (o *Order) applyAmendment(quantity int64, price fpdecimal.Decimal, peakSize int64) {
	o.quantity = quantity
	o.price = price
	if o.orderType == TypeIceberg {
		o.peakSize = peakSize
		o.displayed = min(o.displayed, o.peakSize)
		if o.displayed == 0 {
			o.displayed = min(o.peakSize, o.quantity)
		}
	}
	if o.displayed > o.quantity {
		o.displayed = o.quantity
	}
}

// resetPriority makes the order a fresh priority point, used when an
// amendment re-enters matching
func (o *Order) resetPriority(entryTime time.Time) {
	o.entryTime = entryTime
	o.priority = 0
	o.status = StatusNew
	if o.orderType == TypeIceberg {
		o.displayed = min(o.peakSize, o.quantity)
	} else {
		o.displayed = o.quantity
	}
}

func (o *Order) markFilled() {
	o.status = StatusFilled
}

func (o *Order) markPartiallyFilled() {
	o.status = StatusPartiallyFilled
}

func (o *Order) markCancelled() {
	o.status = StatusCancelled
}

// MarshalJSON implements custom JSON marshaling for Order
func (o *Order) MarshalJSON() ([]byte, error) {
	type OrderJSON struct {
		ID        int64       `json:"id"`
		Symbol    string      `json:"symbol"`
		OrderType OrderType   `json:"orderType"`
		Side      string      `json:"side"`
		Quantity  int64       `json:"quantity"`
		Displayed int64       `json:"displayed"`
		PeakSize  int64       `json:"peakSize,omitempty"`
		Price     string      `json:"price"`
		Status    OrderStatus `json:"status"`
	}

	return json.Marshal(OrderJSON{
		ID:        o.id,
		Symbol:    o.symbol,
		OrderType: o.orderType,
		Side:      o.side.String(),
		Quantity:  o.quantity,
		Displayed: o.displayed,
		PeakSize:  o.peakSize,
		Price:     o.price.String(),
		Status:    o.status,
	})
}

// String implements Stringer interface
func (o *Order) String() string {
	j, _ := o.MarshalJSON()
	return string(j)
}
