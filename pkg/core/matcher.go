package core

// Matcher runs the matching algorithm: it walks the opposite side of the
// book best-price-first, producing trades while the incoming order crosses,
// and rolls back the whole attempt when a credit check fails. The cross
// predicate is configurable; price comparison is the default policy.
type Matcher struct {
	crosses func(incoming, resting *Order) bool
}

// MatcherOption configures a Matcher
type MatcherOption func(*Matcher)

// WithCrossPredicate overrides the policy deciding whether the incoming
// order can trade against a resting one
func WithCrossPredicate(f func(incoming, resting *Order) bool) MatcherOption {
	return func(m *Matcher) {
		m.crosses = f
	}
}

// NewMatcher creates a Matcher with the default price-cross policy
func NewMatcher(opts ...MatcherOption) *Matcher {
	m := &Matcher{crosses: crossesOnPrice}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func crossesOnPrice(incoming, resting *Order) bool {
	if incoming.side == Buy {
		return incoming.price.GreaterThanOrEqual(resting.price)
	}
	return incoming.price.LessThanOrEqual(resting.price)
}

// execStep records one applied trade and the pre-trade snapshot of the
// resting order, enough to undo the step exactly
type execStep struct {
	trade   *Trade
	resting *Order
	before  *Order
	removed bool
}

// Execute matches the incoming order against the book and settles every
// trade as it happens: the buyer pays at the resting price, the seller is
// credited, positions transfer. A residual buy reserves its full value
// before entering the book. Any credit shortfall undoes the entire attempt
// and leaves book, brokers and shareholders untouched.
func (m *Matcher) Execute(order *Order, book *OrderBook) *MatchResult {
	snapshot := order.Snapshot()
	var steps []execStep

	for order.quantity > 0 {
		resting := book.BestOpposite(order.side)
		if resting == nil || !m.crosses(order, resting) {
			break
		}

		quantity := min(order.quantity, resting.VisibleQuantity())

		var trade *Trade
		if order.side == Buy {
			trade = newTrade(order, resting, resting.price, quantity)
			if !trade.buyerHasEnoughCredit() {
				m.rollback(order, snapshot, book, steps)
				return rejectedResult(OutcomeNotEnoughCredit, order)
			}
			trade.decreaseBuyersCredit()
		} else {
			// the resting buyer reserved its value on enqueue, at its own
			// limit price, which is the trade price
			trade = newTrade(resting, order, resting.price, quantity)
		}
		trade.increaseSellersCredit()
		trade.transferPositions()

		step := execStep{trade: trade, resting: resting, before: resting.Snapshot()}
		resting.DecreaseQuantity(quantity)
		if resting.quantity == 0 {
			book.RemoveByOrderID(resting.side, resting.id)
			resting.markFilled()
			step.removed = true
		} else {
			resting.markPartiallyFilled()
			if resting.IsIceberg() && resting.displayed == 0 {
				// replenished slice goes to the back of its price level
				resting.Replenish()
				book.Requeue(resting)
			}
		}

		order.DecreaseQuantity(quantity)
		steps = append(steps, step)
	}

	processed := snapshot.quantity - order.quantity

	if order.quantity > 0 {
		if order.side == Buy {
			if !order.broker.HasEnoughCredit(order.Value()) {
				m.rollback(order, snapshot, book, steps)
				return rejectedResult(OutcomeNotEnoughCredit, order)
			}
			order.broker.DecreaseCredit(order.Value())
		}
		if processed > 0 {
			order.markPartiallyFilled()
		}
		if order.IsIceberg() {
			order.Replenish()
		}
		book.Enqueue(order)
		return executedResult(order, collectTrades(steps), processed, true)
	}

	order.markFilled()
	return executedResult(order, collectTrades(steps), processed, false)
}

// rollback undoes every applied step in reverse order: credits back the
// buyer, takes back the seller's proceeds, reverts position transfers and
// reinstates the resting orders at their original priority.
func (m *Matcher) rollback(order, snapshot *Order, book *OrderBook, steps []execStep) {
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		if order.side == Buy {
			step.trade.increaseBuyersCredit()
		}
		step.trade.decreaseSellersCredit()
		step.trade.revertPositions()

		if !step.removed {
			book.RemoveByOrderID(step.resting.side, step.resting.id)
		}
		step.resting.restoreFrom(step.before)
		book.Restore(step.resting)
	}
	order.restoreFrom(snapshot)
}

func collectTrades(steps []execStep) []*Trade {
	trades := make([]*Trade, 0, len(steps))
	for _, step := range steps {
		trades = append(trades, step.trade)
	}
	return trades
}
