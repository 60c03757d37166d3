package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nikolaydubina/fpdecimal"
	"github.com/openbourse/tradecore/config"
	"github.com/openbourse/tradecore/pkg/exchange"
	"github.com/openbourse/tradecore/pkg/logging"
	"github.com/openbourse/tradecore/pkg/messaging"
	"github.com/openbourse/tradecore/pkg/otel"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(logging.Config{
		Level:  cfg.Server.LogLevel,
		Pretty: cfg.Server.LogFormat == "pretty",
	})

	shutdown, err := otel.Init(otel.Config{
		Endpoint:         cfg.Otel.Endpoint,
		CollectorEnabled: cfg.Otel.CollectorEnabled,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Metrics disabled")
	}
	defer shutdown()

	// reports stay in memory; swap in queue.NewQueueMessageSender to
	// publish them to Kafka
	sender := messaging.NewMockMessageSender()
	ex := exchange.NewExchange(sender)
	defer ex.Close()

	ctx := context.Background()

	security, err := ex.CreateSecurity(ctx, "SAIPA")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create security")
	}
	if _, err := ex.CreateBroker(ctx, 1, fpdecimal.FromInt(20_000_000)); err != nil {
		log.Fatal().Err(err).Msg("Failed to create broker")
	}
	if _, err := ex.CreateBroker(ctx, 2, fpdecimal.FromInt(10_000_000)); err != nil {
		log.Fatal().Err(err).Msg("Failed to create broker")
	}
	shareholder, err := ex.CreateShareholder(ctx, 1)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create shareholder")
	}
	shareholder.IncPosition("SAIPA", 100_000)

	requests := []*exchange.EnterOrderRequest{
		{RequestID: 1, Symbol: "SAIPA", OrderID: 1, Side: "SELL", Quantity: 350, Price: "15800", BrokerID: 2, ShareholderID: 1},
		{RequestID: 2, Symbol: "SAIPA", OrderID: 2, Side: "SELL", Quantity: 500, Price: "15830", BrokerID: 2, ShareholderID: 1, PeakSize: 100},
		{RequestID: 3, Symbol: "SAIPA", OrderID: 3, Side: "BUY", Quantity: 304, Price: "15700", BrokerID: 1, ShareholderID: 1},
	}
	for _, req := range requests {
		if _, err := ex.NewOrder(ctx, req); err != nil {
			log.Fatal().Err(err).Int64("order_id", req.OrderID).Msg("Order failed")
		}
	}

	// crosses the book: 350 at 15800, then two iceberg slices at 15830
	report, err := ex.NewOrder(ctx, &exchange.EnterOrderRequest{
		RequestID: 4, Symbol: "SAIPA", OrderID: 4, Side: "BUY",
		Quantity: 550, Price: "15840", BrokerID: 1, ShareholderID: 1,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Order failed")
	}
	for _, trade := range report.Trades {
		log.Info().
			Int64("buy", trade.BuyOrderID).
			Int64("sell", trade.SellOrderID).
			Str("price", trade.Price).
			Str("quantity", trade.Quantity).
			Msg("Trade")
	}

	// shrink the resting buy in place, then cancel it
	if _, err := ex.UpdateOrder(ctx, &exchange.EnterOrderRequest{
		RequestID: 5, Symbol: "SAIPA", OrderID: 3, Side: "BUY",
		Quantity: 200, Price: "15700", BrokerID: 1, ShareholderID: 1,
	}); err != nil {
		log.Fatal().Err(err).Msg("Update failed")
	}
	if _, err := ex.DeleteOrder(ctx, &exchange.DeleteOrderRequest{
		RequestID: 6, Symbol: "SAIPA", OrderID: 3, Side: "BUY",
	}); err != nil {
		log.Fatal().Err(err).Msg("Delete failed")
	}

	fmt.Println(security.Book())
	fmt.Printf("reports published: %d\n", len(sender.Reports))
}
