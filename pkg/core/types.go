package core

import (
	"strconv"

	"github.com/openbourse/tradecore/pkg/messaging"
)

// MatchOutcome classifies the result of a match attempt
type MatchOutcome int

// Match outcomes. NotEnoughCredit and NotEnoughPositions mean the attempt
// was fully rolled back: no trades, no credit or position change.
const (
	OutcomeExecuted MatchOutcome = iota
	OutcomeNotEnoughCredit
	OutcomeNotEnoughPositions
)

// String returns the outcome as string
func (o MatchOutcome) String() string {
	switch o {
	case OutcomeExecuted:
		return "EXECUTED"
	case OutcomeNotEnoughCredit:
		return "NOT_ENOUGH_CREDIT"
	case OutcomeNotEnoughPositions:
		return "NOT_ENOUGH_POSITIONS"
	default:
		return "UNKNOWN"
	}
}

// MatchResult contains the execution result of one request: the trades
// produced, the quantity processed, and whether the residual rests on the
// book
type MatchResult struct {
	// Outcome of the attempt
	Outcome MatchOutcome
	// Order processed
	Order *Order
	// Trades executed, in match order
	Trades []*Trade
	// Quantity executed for the incoming order
	Processed int64
	// Remaining quantity of the incoming order
	Remainder int64
	// Whether the residual was enqueued into the book
	Stored bool
}

func executedResult(order *Order, trades []*Trade, processed int64, stored bool) *MatchResult {
	return &MatchResult{
		Outcome:   OutcomeExecuted,
		Order:     order,
		Trades:    trades,
		Processed: processed,
		Remainder: order.Quantity(),
		Stored:    stored,
	}
}

func rejectedResult(outcome MatchOutcome, order *Order) *MatchResult {
	return &MatchResult{
		Outcome:   outcome,
		Order:     order,
		Trades:    nil,
		Remainder: order.Quantity(),
	}
}

// Accepted reports whether the request took effect
func (r *MatchResult) Accepted() bool {
	return r.Outcome == OutcomeExecuted
}

// ToExecutionReport converts the result to the messaging boundary format
func (r *MatchResult) ToExecutionReport(requestID int64) *messaging.ExecutionReport {
	status := messaging.StatusAccepted
	reason := ""
	switch r.Outcome {
	case OutcomeNotEnoughCredit:
		status = messaging.StatusRejected
		reason = "not enough credit"
	case OutcomeNotEnoughPositions:
		status = messaging.StatusRejected
		reason = "not enough positions"
	}

	trades := make([]messaging.TradeMessage, 0, len(r.Trades))
	for _, t := range r.Trades {
		trades = append(trades, messaging.TradeMessage{
			BuyOrderID:  t.BuyOrderID(),
			SellOrderID: t.SellOrderID(),
			Price:       t.Price().String(),
			Quantity:    strconv.FormatInt(t.Quantity(), 10),
		})
	}

	return &messaging.ExecutionReport{
		RequestID:    requestID,
		OrderID:      r.Order.ID(),
		Symbol:       r.Order.Symbol(),
		Status:       status,
		Reason:       reason,
		ExecutedQty:  strconv.FormatInt(r.Processed, 10),
		RemainingQty: strconv.FormatInt(r.Remainder, 10),
		Stored:       r.Stored,
		Trades:       trades,
	}
}
