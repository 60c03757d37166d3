package exchange

import (
	"context"
	"sync"
	"time"

	"github.com/nikolaydubina/fpdecimal"
	"github.com/openbourse/tradecore/pkg/core"
	"github.com/openbourse/tradecore/pkg/logging"
	"github.com/openbourse/tradecore/pkg/messaging"
	"github.com/openbourse/tradecore/pkg/otel"
)

// Exchange manages the securities, brokers and shareholders of one venue and
// routes order requests to the right matching engine. Every processed request
// produces an execution report on the message sender.
type Exchange struct {
	mu           sync.RWMutex
	securities   map[string]*core.Security
	brokers      map[int64]*core.Broker
	shareholders map[int64]*core.Shareholder

	matcher *core.Matcher
	sender  messaging.MessageSender
	metrics *otel.EngineMetrics
}

// NewExchange creates an empty exchange publishing reports on sender
func NewExchange(sender messaging.MessageSender) *Exchange {
	return &Exchange{
		securities:   make(map[string]*core.Security),
		brokers:      make(map[int64]*core.Broker),
		shareholders: make(map[int64]*core.Shareholder),
		matcher:      core.NewMatcher(),
		sender:       sender,
		metrics:      otel.GetEngineMetrics(),
	}
}

// CreateSecurity registers a new instrument with an empty book
func (e *Exchange) CreateSecurity(ctx context.Context, symbol string) (*core.Security, error) {
	logger := logging.FromContext(ctx).With().Str("symbol", symbol).Logger()

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.securities[symbol]; exists {
		logger.Error().Msg("Security already exists")
		return nil, ErrSecurityExists
	}

	security := core.NewSecurity(symbol)
	e.securities[symbol] = security

	logger.Info().Msg("Created new security")
	return security, nil
}

// CreateBroker registers a broker with its initial credit
func (e *Exchange) CreateBroker(ctx context.Context, id int64, credit fpdecimal.Decimal) (*core.Broker, error) {
	logger := logging.FromContext(ctx).With().Int64("broker_id", id).Logger()

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.brokers[id]; exists {
		logger.Error().Msg("Broker already exists")
		return nil, ErrBrokerExists
	}

	broker := core.NewBroker(id, credit)
	e.brokers[id] = broker

	logger.Info().Str("credit", credit.String()).Msg("Created new broker")
	return broker, nil
}

// CreateShareholder registers a shareholder with no positions
func (e *Exchange) CreateShareholder(ctx context.Context, id int64) (*core.Shareholder, error) {
	logger := logging.FromContext(ctx).With().Int64("shareholder_id", id).Logger()

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.shareholders[id]; exists {
		logger.Error().Msg("Shareholder already exists")
		return nil, ErrShareholderExists
	}

	shareholder := core.NewShareholder(id)
	e.shareholders[id] = shareholder

	logger.Info().Msg("Created new shareholder")
	return shareholder, nil
}

// Security returns the registered security or ErrSecurityNotFound
func (e *Exchange) Security(symbol string) (*core.Security, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	security, ok := e.securities[symbol]
	if !ok {
		return nil, ErrSecurityNotFound
	}
	return security, nil
}

// Broker returns the registered broker or ErrBrokerNotFound
func (e *Exchange) Broker(id int64) (*core.Broker, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	broker, ok := e.brokers[id]
	if !ok {
		return nil, ErrBrokerNotFound
	}
	return broker, nil
}

// Shareholder returns the registered shareholder or ErrShareholderNotFound
func (e *Exchange) Shareholder(id int64) (*core.Shareholder, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	shareholder, ok := e.shareholders[id]
	if !ok {
		return nil, ErrShareholderNotFound
	}
	return shareholder, nil
}

// ListSecurities returns the registered symbols
func (e *Exchange) ListSecurities() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	symbols := make([]string, 0, len(e.securities))
	for symbol := range e.securities {
		symbols = append(symbols, symbol)
	}
	return symbols
}

// NewOrder processes a new-order request. Malformed requests and unknown
// entities return an error; insufficient credit or positions come back as a
// rejected report with no state change.
func (e *Exchange) NewOrder(ctx context.Context, req *EnterOrderRequest) (*messaging.ExecutionReport, error) {
	logger := logging.FromContext(ctx).With().
		Str("symbol", req.Symbol).
		Int64("order_id", req.OrderID).
		Str("side", req.Side).
		Logger()

	security, err := e.Security(req.Symbol)
	if err != nil {
		return nil, err
	}
	broker, err := e.Broker(req.BrokerID)
	if err != nil {
		return nil, err
	}
	shareholder, err := e.Shareholder(req.ShareholderID)
	if err != nil {
		return nil, err
	}
	enter, err := req.toEnterOrder(time.Now())
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := security.NewOrder(enter, broker, shareholder, e.matcher)
	if err != nil {
		logger.Error().Err(err).Msg("New order rejected")
		return nil, err
	}
	e.observe(ctx, "new_order", req.Symbol, result, time.Since(start))

	logger.Info().
		Str("outcome", result.Outcome.String()).
		Int64("processed", result.Processed).
		Int64("remaining", result.Remainder).
		Int("trades", len(result.Trades)).
		Msg("New order processed")

	return e.publish(ctx, result.ToExecutionReport(req.RequestID))
}

// UpdateOrder processes an amendment of a resting order
func (e *Exchange) UpdateOrder(ctx context.Context, req *EnterOrderRequest) (*messaging.ExecutionReport, error) {
	logger := logging.FromContext(ctx).With().
		Str("symbol", req.Symbol).
		Int64("order_id", req.OrderID).
		Str("side", req.Side).
		Logger()

	security, err := e.Security(req.Symbol)
	if err != nil {
		return nil, err
	}
	enter, err := req.toEnterOrder(time.Now())
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := security.UpdateOrder(enter, e.matcher)
	if err != nil {
		logger.Error().Err(err).Msg("Order update rejected")
		return nil, err
	}
	e.observe(ctx, "update_order", req.Symbol, result, time.Since(start))

	logger.Info().
		Str("outcome", result.Outcome.String()).
		Int("trades", len(result.Trades)).
		Msg("Order update processed")

	return e.publish(ctx, result.ToExecutionReport(req.RequestID))
}

// DeleteOrder cancels a resting order and releases any credit reservation
func (e *Exchange) DeleteOrder(ctx context.Context, req *DeleteOrderRequest) (*messaging.ExecutionReport, error) {
	logger := logging.FromContext(ctx).With().
		Str("symbol", req.Symbol).
		Int64("order_id", req.OrderID).
		Str("side", req.Side).
		Logger()

	security, err := e.Security(req.Symbol)
	if err != nil {
		return nil, err
	}
	side, err := parseSide(req.Side)
	if err != nil {
		return nil, err
	}

	if err := security.DeleteOrder(side, req.OrderID); err != nil {
		logger.Error().Err(err).Msg("Order delete rejected")
		return nil, err
	}
	e.metrics.RecordOrder(ctx, "delete_order", "EXECUTED")

	logger.Info().Msg("Order deleted")

	report := &messaging.ExecutionReport{
		RequestID: req.RequestID,
		OrderID:   req.OrderID,
		Symbol:    req.Symbol,
		Status:    messaging.StatusAccepted,
	}
	return e.publish(ctx, report)
}

// Close releases the message sender
func (e *Exchange) Close() error {
	if e.sender == nil {
		return nil
	}
	return e.sender.Close()
}

func (e *Exchange) observe(ctx context.Context, operation, symbol string, result *core.MatchResult, elapsed time.Duration) {
	e.metrics.RecordOrder(ctx, operation, result.Outcome.String())
	e.metrics.RecordTrades(ctx, symbol, int64(len(result.Trades)))
	e.metrics.RecordMatchDuration(ctx, symbol, elapsed)
	if !result.Accepted() {
		e.metrics.RecordRollback(ctx, symbol)
	}
}

func (e *Exchange) publish(ctx context.Context, report *messaging.ExecutionReport) (*messaging.ExecutionReport, error) {
	if e.sender == nil {
		return report, nil
	}
	if err := e.sender.SendExecutionReport(ctx, report); err != nil {
		// the book already moved, so surface the delivery failure but
		// keep the report for the caller
		logger := logging.FromContext(ctx)
		logger.Error().Err(err).Msg("Failed to publish execution report")
	}
	return report, nil
}
