package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/openbourse/tradecore/pkg/messaging"
)

var (
	senderPool   chan messaging.MessageSender
	poolInitOnce sync.Once
	maxPoolSize  = 32
)

// initSenderPool initializes the sender pool
func initSenderPool() {
	poolInitOnce.Do(func() {
		senderPool = make(chan messaging.MessageSender, maxPoolSize)
		// Pre-populate the entire pool
		for i := 0; i < maxPoolSize; i++ {
			sender, err := NewQueueMessageSender()
			if err != nil {
				fmt.Printf("Error creating sender: %v\n", err)
				continue
			}
			if sender != nil {
				senderPool <- sender
			}
		}
	})
}

// GetSender gets a sender from the pool
func GetSender() messaging.MessageSender {
	initSenderPool()

	select {
	case sender := <-senderPool:
		return sender
	default:
		fmt.Printf("Warning: sender pool is empty\n")
		return nil
	}
}

// ReturnSender returns a sender to the pool
func ReturnSender(sender messaging.MessageSender) {
	if sender == nil {
		return
	}

	select {
	case senderPool <- sender:
	default:
		// pool full, close the extra sender
		fmt.Printf("Warning: sender pool is full\n")
		_ = sender.Close()
	}
}

// SendReport publishes an execution report using a pooled sender
func SendReport(ctx context.Context, report *messaging.ExecutionReport) error {
	sender := GetSender()
	if sender == nil {
		return fmt.Errorf("failed to get message sender from pool")
	}
	defer ReturnSender(sender)

	if err := sender.SendExecutionReport(ctx, report); err != nil {
		// a failed sender may hold a dead connection, drop it
		_ = sender.Close()
		return err
	}

	return nil
}
