package core

import "github.com/nikolaydubina/fpdecimal"

// Broker is a registered participant holding a cash credit balance in
// currency minor units. All credit mutation goes through its methods so a
// failed match attempt can be undone step by step. Credit never stays
// negative: a shortfall is detected before the debit is applied.
type Broker struct {
	id     int64
	credit fpdecimal.Decimal
}

// NewBroker creates a broker with an initial credit balance
func NewBroker(id int64, credit fpdecimal.Decimal) *Broker {
	return &Broker{id: id, credit: credit}
}

// ID returns the broker id
func (b *Broker) ID() int64 {
	return b.id
}

// Credit returns the available balance
func (b *Broker) Credit() fpdecimal.Decimal {
	return b.credit
}

// HasEnoughCredit reports whether amount can be debited
func (b *Broker) HasEnoughCredit(amount fpdecimal.Decimal) bool {
	return b.credit.GreaterThanOrEqual(amount)
}

// DecreaseCredit debits the balance: a trade settlement or a buy-side
// reservation taken when an order enters the book
func (b *Broker) DecreaseCredit(amount fpdecimal.Decimal) {
	b.credit = b.credit.Sub(amount)
}

// IncreaseCredit credits the balance: sale proceeds or a released
// reservation
func (b *Broker) IncreaseCredit(amount fpdecimal.Decimal) {
	b.credit = b.credit.Add(amount)
}

// Shareholder owns per-security positions. Positions are share counts and
// never go negative as an observable state; sells are checked against the
// position before any mutation.
type Shareholder struct {
	id        int64
	positions map[string]int64
}

// NewShareholder creates a shareholder with no positions
func NewShareholder(id int64) *Shareholder {
	return &Shareholder{
		id:        id,
		positions: make(map[string]int64),
	}
}

// ID returns the shareholder id
func (s *Shareholder) ID() int64 {
	return s.id
}

// PositionOn returns the position held in symbol
func (s *Shareholder) PositionOn(symbol string) int64 {
	return s.positions[symbol]
}

// HasEnoughPositions reports whether required shares of symbol are held
func (s *Shareholder) HasEnoughPositions(symbol string, required int64) bool {
	return s.positions[symbol] >= required
}

// IncPosition adds shares of symbol
func (s *Shareholder) IncPosition(symbol string, quantity int64) {
	s.positions[symbol] += quantity
}

// DecPosition removes shares of symbol
func (s *Shareholder) DecPosition(symbol string, quantity int64) {
	s.positions[symbol] -= quantity
}
