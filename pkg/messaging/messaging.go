package messaging

import "context"

// MessageSender defines an interface for publishing execution reports.
// It decouples the engine from the concrete queue implementation in the
// queue package.
type MessageSender interface {
	SendExecutionReport(ctx context.Context, report *ExecutionReport) error
	Close() error
}

// Report statuses
const (
	StatusAccepted = "ACCEPTED"
	StatusRejected = "REJECTED"
)

// ExecutionReport is the per-request outcome notification exposed to
// external collaborators: accepted or rejected with a reason, plus one
// TradeMessage per resulting trade.
type ExecutionReport struct {
	RequestID    int64          `json:"requestID"`
	OrderID      int64          `json:"orderID"`
	Symbol       string         `json:"symbol"`
	Status       string         `json:"status"`
	Reason       string         `json:"reason,omitempty"`
	ExecutedQty  string         `json:"executedQty"`
	RemainingQty string         `json:"remainingQty"`
	Stored       bool           `json:"stored"`
	Trades       []TradeMessage `json:"trades,omitempty"`
}

// TradeMessage represents a single trade execution
type TradeMessage struct {
	BuyOrderID  int64  `json:"buyOrderID"`
	SellOrderID int64  `json:"sellOrderID"`
	Price       string `json:"price"`
	Quantity    string `json:"quantity"`
}
