package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/IBM/sarama"
	"github.com/openbourse/tradecore/pkg/messaging"
)

var (
	brokerList = "localhost:9092"
	topic      = "execution-reports"
)

// SetBrokerList overrides the default Kafka broker address
func SetBrokerList(addr string) {
	brokerList = addr
}

// SetTopic overrides the default execution report topic
func SetTopic(t string) {
	topic = t
}

// newSyncProducer is swapped out in tests
var newSyncProducer = sarama.NewSyncProducer

// QueueMessageSender implements the MessageSender interface
// for sending execution reports to Kafka
type QueueMessageSender struct {
	producer sarama.SyncProducer
}

// NewQueueMessageSender creates a sender with its own producer connection
func NewQueueMessageSender() (*QueueMessageSender, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 5

	producer, err := newSyncProducer([]string{brokerList}, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &QueueMessageSender{producer: producer}, nil
}

// SendExecutionReport publishes the report to the Kafka queue, keyed by
// order id so reports for one order stay in partition order
func (q *QueueMessageSender) SendExecutionReport(ctx context.Context, report *messaging.ExecutionReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	messageBytes, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal execution report: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(report.OrderID, 10)),
		Value: sarama.ByteEncoder(messageBytes),
	}

	if _, _, err := q.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	return nil
}

// Close closes the underlying producer
func (q *QueueMessageSender) Close() error {
	return q.producer.Close()
}

// Ensure QueueMessageSender implements MessageSender
var _ messaging.MessageSender = (*QueueMessageSender)(nil)

// QueueMessageConsumer reads execution reports back off the queue
type QueueMessageConsumer struct {
	consumer sarama.Consumer
	done     chan struct{}
}

// NewQueueMessageConsumer creates a consumer on the configured broker
func NewQueueMessageConsumer() (*QueueMessageConsumer, error) {
	consumer, err := sarama.NewConsumer([]string{brokerList}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer: %w", err)
	}

	return &QueueMessageConsumer{
		consumer: consumer,
		done:     make(chan struct{}),
	}, nil
}

// ConsumeExecutionReports reads reports from partition 0 and hands each to
// handler until Close is called
func (q *QueueMessageConsumer) ConsumeExecutionReports(handler func(*messaging.ExecutionReport) error) error {
	partitionConsumer, err := q.consumer.ConsumePartition(topic, 0, sarama.OffsetNewest)
	if err != nil {
		return fmt.Errorf("failed to create partition consumer: %w", err)
	}
	defer partitionConsumer.Close()

	for {
		select {
		case msg, ok := <-partitionConsumer.Messages():
			if !ok {
				return nil
			}
			var report messaging.ExecutionReport
			if err := json.Unmarshal(msg.Value, &report); err != nil {
				return fmt.Errorf("failed to unmarshal execution report: %w", err)
			}
			if err := handler(&report); err != nil {
				return err
			}
		case kerr, ok := <-partitionConsumer.Errors():
			if !ok {
				return nil
			}
			return kerr
		case <-q.done:
			return nil
		}
	}
}

// Close stops consumption and closes the consumer
func (q *QueueMessageConsumer) Close() error {
	close(q.done)
	return q.consumer.Close()
}
