package core

import (
	"sync"
	"time"

	"github.com/nikolaydubina/fpdecimal"
)

// EnterOrder carries the validated fields of a new-order or update-order
// request. PeakSize 0 means a plain limit order.
type EnterOrder struct {
	OrderID   int64
	Side      Side
	Quantity  int64
	Price     fpdecimal.Decimal
	PeakSize  int64
	EntryTime time.Time
}

// Security orchestrates one instrument: its order book plus the
// request-level operations combining matching with credit and position
// mutation. A per-security mutex serializes every mutating request, so one
// instrument's book and the brokers it touches never see interleaved
// mutation; different securities process in parallel.
type Security struct {
	mu     sync.Mutex
	symbol string
	book   *OrderBook
}

// NewSecurity creates a security with an empty book
func NewSecurity(symbol string) *Security {
	return &Security{
		symbol: symbol,
		book:   NewOrderBook(symbol),
	}
}

// Symbol returns the instrument symbol
func (s *Security) Symbol() string {
	return s.symbol
}

// Book exposes the order book for seeding and inspection. Callers must not
// mutate it while requests are in flight.
func (s *Security) Book() *OrderBook {
	return s.book
}

// NewOrder builds the order and runs it through matching. An insufficient
// credit or position outcome is a business result, not an error: the
// request returns a rejected MatchResult with zero effect on any state.
func (s *Security) NewOrder(req EnterOrder, broker *Broker, shareholder *Shareholder, matcher *Matcher) (*MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.book.FindByOrderID(req.Side, req.OrderID) != nil {
		return nil, ErrOrderExists
	}

	order, err := s.buildOrder(req, broker, shareholder)
	if err != nil {
		return nil, err
	}

	if req.Side == Sell {
		committed := s.book.TotalSellQuantityByShareholder(shareholder)
		if !shareholder.HasEnoughPositions(s.symbol, committed+req.Quantity) {
			return rejectedResult(OutcomeNotEnoughPositions, order), nil
		}
	}

	return matcher.Execute(order, s.book), nil
}

// DeleteOrder removes a resting order. A resting buy releases its credit
// reservation; positions are untouched.
func (s *Security) DeleteOrder(side Side, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := s.book.FindByOrderID(side, orderID)
	if order == nil {
		return ErrOrderNotFound
	}

	if order.side == Buy {
		order.broker.IncreaseCredit(order.Value())
	}
	s.book.RemoveByOrderID(side, orderID)
	order.markCancelled()
	return nil
}

// UpdateOrder amends a resting order. A price change or a quantity increase
// resets time priority and re-submits the order through matching; a pure
// shrink or a peak-size change applies in place. The amendment is all or
// nothing: on a rejected re-match the original order returns to its exact
// book position with its reservation restored.
func (s *Security) UpdateOrder(req EnterOrder, matcher *Matcher) (*MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := s.book.FindByOrderID(req.Side, req.OrderID)
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if req.Price.LessThanOrEqual(fpdecimal.Zero) {
		return nil, ErrInvalidPrice
	}
	if order.IsIceberg() && req.PeakSize <= 0 {
		return nil, ErrInvalidPeakSize
	}
	if !order.IsIceberg() && req.PeakSize != 0 {
		return nil, ErrInvalidPeakSize
	}
	if req.PeakSize > req.Quantity {
		return nil, ErrInvalidPeakSize
	}

	if req.Side == Sell {
		committed := s.book.TotalSellQuantityByShareholder(order.shareholder)
		if !order.shareholder.HasEnoughPositions(s.symbol, committed-order.quantity+req.Quantity) {
			return rejectedResult(OutcomeNotEnoughPositions, order), nil
		}
	}

	losesPriority := req.Quantity > order.quantity || !req.Price.Equal(order.price)

	if !losesPriority {
		// in-place amendment: shrink and peak-size changes keep priority
		if order.side == Buy {
			order.broker.IncreaseCredit(order.Value())
		}
		order.applyAmendment(req.Quantity, req.Price, req.PeakSize)
		if order.side == Buy {
			order.broker.DecreaseCredit(order.Value())
		}
		return executedResult(order, nil, 0, true), nil
	}

	original := order.Snapshot()
	if order.side == Buy {
		order.broker.IncreaseCredit(order.Value())
	}
	s.book.RemoveByOrderID(order.side, order.id)
	order.applyAmendment(req.Quantity, req.Price, req.PeakSize)
	order.resetPriority(req.EntryTime)

	result := matcher.Execute(order, s.book)
	if !result.Accepted() {
		order.restoreFrom(original)
		s.book.Restore(order)
		if order.side == Buy {
			order.broker.DecreaseCredit(order.Value())
		}
	}
	return result, nil
}

func (s *Security) buildOrder(req EnterOrder, broker *Broker, shareholder *Shareholder) (*Order, error) {
	if req.PeakSize > 0 {
		return NewIcebergOrder(req.OrderID, s.symbol, req.Side, req.Quantity, req.Price, broker, shareholder, req.PeakSize, req.EntryTime)
	}
	return NewLimitOrder(req.OrderID, s.symbol, req.Side, req.Quantity, req.Price, broker, shareholder, req.EntryTime)
}
