package core

import (
	"testing"
	"time"

	"github.com/nikolaydubina/fpdecimal"
	"pgregory.net/rapid"
)

// The engine must conserve value no matter the request mix: cash only moves
// between broker balances and resting buy reservations, shares only move
// between shareholders, and the book never stays crossed.
func TestEngineInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		security := NewSecurity("SAIPA")
		matcher := NewMatcher()

		const startCredit = 1_000_000
		const startPosition = 10_000

		brokers := []*Broker{
			NewBroker(1, price(startCredit)),
			NewBroker(2, price(startCredit)),
			NewBroker(3, price(startCredit)),
		}
		shareholders := []*Shareholder{
			NewShareholder(1),
			NewShareholder(2),
		}
		for _, sh := range shareholders {
			sh.IncPosition("SAIPA", startPosition)
		}

		totalCredit := price(int64(len(brokers)) * startCredit)
		totalPosition := int64(len(shareholders)) * startPosition

		var nextID int64
		var entered []int64

		sideGen := rapid.SampledFrom([]Side{Buy, Sell})
		qtyGen := rapid.Int64Range(1, 50)
		priceGen := rapid.Int64Range(90, 110)

		ops := rapid.IntRange(1, 60).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0, 1:
				nextID++
				side := sideGen.Draw(t, "side")
				quantity := qtyGen.Draw(t, "quantity")
				var peak int64
				if rapid.Bool().Draw(t, "isIceberg") {
					peak = rapid.Int64Range(1, quantity).Draw(t, "peak")
				}
				broker := brokers[rapid.IntRange(0, len(brokers)-1).Draw(t, "broker")]
				shareholder := shareholders[rapid.IntRange(0, len(shareholders)-1).Draw(t, "shareholder")]

				_, err := security.NewOrder(EnterOrder{
					OrderID:   nextID,
					Side:      side,
					Quantity:  quantity,
					Price:     price(priceGen.Draw(t, "price")),
					PeakSize:  peak,
					EntryTime: time.Now(),
				}, broker, shareholder, matcher)
				if err != nil {
					t.Fatalf("new order: %v", err)
				}
				entered = append(entered, nextID)

			case 2:
				if len(entered) == 0 {
					continue
				}
				id := entered[rapid.IntRange(0, len(entered)-1).Draw(t, "victim")]
				side := Buy
				if security.Book().FindByOrderID(Buy, id) == nil {
					side = Sell
				}
				if security.Book().FindByOrderID(side, id) == nil {
					continue
				}
				if err := security.DeleteOrder(side, id); err != nil {
					t.Fatalf("delete order: %v", err)
				}

			case 3:
				if len(entered) == 0 {
					continue
				}
				id := entered[rapid.IntRange(0, len(entered)-1).Draw(t, "target")]
				side := Buy
				order := security.Book().FindByOrderID(Buy, id)
				if order == nil {
					side = Sell
					order = security.Book().FindByOrderID(Sell, id)
				}
				if order == nil {
					continue
				}
				quantity := qtyGen.Draw(t, "newQuantity")
				var peak int64
				if order.IsIceberg() {
					peak = rapid.Int64Range(1, quantity).Draw(t, "newPeak")
				}
				_, err := security.UpdateOrder(EnterOrder{
					OrderID:   id,
					Side:      side,
					Quantity:  quantity,
					Price:     price(priceGen.Draw(t, "newPrice")),
					PeakSize:  peak,
					EntryTime: time.Now(),
				}, matcher)
				if err != nil {
					t.Fatalf("update order: %v", err)
				}
			}

			checkConservation(t, security, brokers, shareholders, totalCredit, totalPosition)
		}
	})
}

func checkConservation(t *rapid.T, security *Security, brokers []*Broker, shareholders []*Shareholder, totalCredit fpdecimal.Decimal, totalPosition int64) {
	t.Helper()
	book := security.Book()

	cash := fpdecimal.Zero
	for _, b := range brokers {
		if b.Credit().LessThan(fpdecimal.Zero) {
			t.Fatalf("broker %d credit went negative: %s", b.ID(), b.Credit())
		}
		cash = cash.Add(b.Credit())
	}
	reserved := fpdecimal.Zero
	book.ForEachOrder(Buy, func(order *Order) {
		reserved = reserved.Add(order.Value())
	})
	if !cash.Add(reserved).Equal(totalCredit) {
		t.Fatalf("cash not conserved: credits %s + reservations %s != %s", cash, reserved, totalCredit)
	}

	var positions int64
	for _, sh := range shareholders {
		positions += sh.PositionOn("SAIPA")
	}
	if positions != totalPosition {
		t.Fatalf("positions not conserved: %d != %d", positions, totalPosition)
	}

	bestBid := book.BestOf(Buy)
	bestAsk := book.BestOf(Sell)
	if bestBid != nil && bestAsk != nil && bestBid.Price().GreaterThanOrEqual(bestAsk.Price()) {
		t.Fatalf("book crossed: bid %s >= ask %s", bestBid.Price(), bestAsk.Price())
	}
}
