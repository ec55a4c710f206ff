package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hr-bridge/internal/domain"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	log "github.com/sirupsen/logrus"
)

// ERPPublisher forwards emitted ERP signals to a Kafka topic consumed by the
// external system of record. Messages are keyed by entity so signals for one
// employee land on one partition.
type ERPPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewERPPublisher(bootstrapServers, topic string) (*ERPPublisher, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{"bootstrap.servers": bootstrapServers})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.WithField("topic", topic).Info("ERP Kafka producer created")

	return &ERPPublisher{producer: p, topic: topic}, nil
}

func (p *ERPPublisher) Publish(ctx context.Context, signal domain.ERPSignal) error {
	payload, err := json.Marshal(signal)
	if err != nil {
		return fmt.Errorf("failed to marshal erp signal: %w", err)
	}

	deliveryChan := make(chan kafka.Event, 1)
	defer close(deliveryChan)

	if err := p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Key:            []byte(signal.EntityID),
		Value:          payload,
		Opaque:         deliveryChan,
	}, nil); err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	select {
	case e := <-deliveryChan:
		msg, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected event type: %T", e)
		}
		if msg.TopicPartition.Error != nil {
			return fmt.Errorf("delivery failed: %w", msg.TopicPartition.Error)
		}
		return nil
	case <-time.After(10 * time.Second):
		return fmt.Errorf("delivery timeout")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *ERPPublisher) Close() {
	log.Info("Closing ERP Kafka producer...")
	p.producer.Flush(15 * 1000)
	p.producer.Close()
}
