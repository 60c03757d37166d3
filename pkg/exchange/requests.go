package exchange

import (
	"errors"
	"time"

	"github.com/nikolaydubina/fpdecimal"
	"github.com/openbourse/tradecore/pkg/core"
)

// Request validation errors
var (
	ErrSecurityExists      = errors.New("security with this symbol already exists")
	ErrSecurityNotFound    = errors.New("security not found")
	ErrBrokerExists        = errors.New("broker with this id already exists")
	ErrBrokerNotFound      = errors.New("broker not found")
	ErrShareholderExists   = errors.New("shareholder with this id already exists")
	ErrShareholderNotFound = errors.New("shareholder not found")
	ErrInvalidSide         = errors.New("side must be BUY or SELL")
)

// EnterOrderRequest carries a new-order or update-order submission. Price is
// a decimal string so callers never round through floats.
type EnterOrderRequest struct {
	RequestID     int64     `json:"requestID"`
	Symbol        string    `json:"symbol"`
	OrderID       int64     `json:"orderID"`
	Side          string    `json:"side"`
	Quantity      int64     `json:"quantity"`
	Price         string    `json:"price"`
	BrokerID      int64     `json:"brokerID"`
	ShareholderID int64     `json:"shareholderID"`
	PeakSize      int64     `json:"peakSize,omitempty"`
	Timestamp     time.Time `json:"timestamp,omitempty"`
}

// DeleteOrderRequest identifies a resting order to cancel
type DeleteOrderRequest struct {
	RequestID int64  `json:"requestID"`
	Symbol    string `json:"symbol"`
	OrderID   int64  `json:"orderID"`
	Side      string `json:"side"`
}

func parseSide(s string) (core.Side, error) {
	switch s {
	case "BUY":
		return core.Buy, nil
	case "SELL":
		return core.Sell, nil
	default:
		return 0, ErrInvalidSide
	}
}

// toEnterOrder validates the request fields and converts them to the engine
// representation
func (r *EnterOrderRequest) toEnterOrder(now time.Time) (core.EnterOrder, error) {
	side, err := parseSide(r.Side)
	if err != nil {
		return core.EnterOrder{}, err
	}
	if r.Quantity <= 0 {
		return core.EnterOrder{}, core.ErrInvalidQuantity
	}
	price, err := fpdecimal.FromString(r.Price)
	if err != nil {
		return core.EnterOrder{}, core.ErrInvalidPrice
	}
	if price.LessThanOrEqual(fpdecimal.Zero) {
		return core.EnterOrder{}, core.ErrInvalidPrice
	}
	if r.PeakSize < 0 || r.PeakSize > r.Quantity {
		return core.EnterOrder{}, core.ErrInvalidPeakSize
	}
	if !r.Timestamp.IsZero() {
		now = r.Timestamp
	}

	return core.EnterOrder{
		OrderID:   r.OrderID,
		Side:      side,
		Quantity:  r.Quantity,
		Price:     price,
		PeakSize:  r.PeakSize,
		EntryTime: now,
	}, nil
}
